package tmxvre

import "strconv"

// Property is one name/type/value triple from a properties node. Type is
// the document's declared type string ("bool", "int", "float", ...) and is
// empty for plain strings.
type Property struct {
	Name  string
	Type  string
	Value string
}

// Properties is the ordered property bag attached to maps, layers, objects,
// tilesets and tile definitions.
type Properties []Property

// Get returns the raw value for name and whether it exists.
func (p Properties) Get(name string) (string, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// GetString returns the value for name, or "" when absent.
func (p Properties) GetString(name string) string {
	v, _ := p.Get(name)
	return v
}

// GetInt returns the value for name parsed as an int, or 0 when absent or
// not numeric.
func (p Properties) GetInt(name string) int {
	v, ok := p.Get(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// GetFloat returns the value for name parsed as a float64, or 0 when absent
// or not numeric.
func (p Properties) GetFloat(name string) float64 {
	v, ok := p.Get(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// GetBool returns the value for name parsed as a bool, or false when absent
// or unparseable.
func (p Properties) GetBool(name string) bool {
	v, ok := p.Get(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
