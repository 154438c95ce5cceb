package tmxvre

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ParseMap decodes a TMX map document from r. Parsing is all-or-nothing:
// any malformed structure, unsupported encoding or corrupt tile data aborts
// the whole document and no partial map is returned. External tilesets are
// not resolved here; see LoadMap and (*Map).AttachTileset.
func ParseMap(r io.Reader) (*Map, error) {
	var raw xmlMap
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return buildMap(&raw)
}

// Raw document shapes. Numeric attributes stay strings here so the builder
// can tell a missing attribute from a zero; the public model in types.go is
// only constructed once all of its parts decoded cleanly.

type xmlContainer struct {
	Layers       []xmlLayer       `xml:"layer"`
	ObjectGroups []xmlObjectGroup `xml:"objectgroup"`
	ImageLayers  []xmlImageLayer  `xml:"imagelayer"`
	Groups       []xmlGroup       `xml:"group"`
}

type xmlMap struct {
	Version         string `xml:"version,attr"`
	TiledVersion    string `xml:"tiledversion,attr"`
	Orientation     string `xml:"orientation,attr"`
	RenderOrder     string `xml:"renderorder,attr"`
	Width           string `xml:"width,attr"`
	Height          string `xml:"height,attr"`
	TileWidth       string `xml:"tilewidth,attr"`
	TileHeight      string `xml:"tileheight,attr"`
	Infinite        string `xml:"infinite,attr"`
	BackgroundColor string `xml:"backgroundcolor,attr"`
	ParallaxOriginX string `xml:"parallaxoriginx,attr"`
	ParallaxOriginY string `xml:"parallaxoriginy,attr"`
	Properties      xmlProperties   `xml:"properties"`
	Tilesets        []xmlTilesetRef `xml:"tileset"`
	xmlContainer
}

type xmlTilesetRef struct {
	FirstGID string `xml:"firstgid,attr"`
	Source   string `xml:"source,attr"`
}

type xmlLayer struct {
	ID         string        `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	Class      string        `xml:"class,attr"`
	Width      string        `xml:"width,attr"`
	Height     string        `xml:"height,attr"`
	Opacity    string        `xml:"opacity,attr"`
	Visible    string        `xml:"visible,attr"`
	Locked     string        `xml:"locked,attr"`
	OffsetX    string        `xml:"offsetx,attr"`
	OffsetY    string        `xml:"offsety,attr"`
	ParallaxX  string        `xml:"parallaxx,attr"`
	ParallaxY  string        `xml:"parallaxy,attr"`
	Tint       string        `xml:"tintcolor,attr"`
	Properties xmlProperties `xml:"properties"`
	Data       *xmlData      `xml:"data"`
}

type xmlData struct {
	Encoding    string     `xml:"encoding,attr"`
	Compression string     `xml:"compression,attr"`
	Chunks      []xmlChunk `xml:"chunk"`
	Text        string     `xml:",chardata"`
}

type xmlChunk struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Text   string `xml:",chardata"`
}

type xmlObjectGroup struct {
	ID         string        `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	Class      string        `xml:"class,attr"`
	Color      string        `xml:"color,attr"`
	DrawOrder  string        `xml:"draworder,attr"`
	Opacity    string        `xml:"opacity,attr"`
	Visible    string        `xml:"visible,attr"`
	Locked     string        `xml:"locked,attr"`
	OffsetX    string        `xml:"offsetx,attr"`
	OffsetY    string        `xml:"offsety,attr"`
	ParallaxX  string        `xml:"parallaxx,attr"`
	ParallaxY  string        `xml:"parallaxy,attr"`
	Tint       string        `xml:"tintcolor,attr"`
	Properties xmlProperties `xml:"properties"`
	Objects    []xmlObject   `xml:"object"`
}

type xmlObject struct {
	ID         string        `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	Class      string        `xml:"type,attr"`
	X          string        `xml:"x,attr"`
	Y          string        `xml:"y,attr"`
	Width      string        `xml:"width,attr"`
	Height     string        `xml:"height,attr"`
	Rotation   string        `xml:"rotation,attr"`
	GID        string        `xml:"gid,attr"`
	Visible    string        `xml:"visible,attr"`
	Point      *struct{}     `xml:"point"`
	Ellipse    *struct{}     `xml:"ellipse"`
	Polygon    *xmlPoints    `xml:"polygon"`
	Polyline   *xmlPoints    `xml:"polyline"`
	Properties xmlProperties `xml:"properties"`
}

type xmlPoints struct {
	Points string `xml:"points,attr"`
}

type xmlImageLayer struct {
	ID         string        `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	Class      string        `xml:"class,attr"`
	Opacity    string        `xml:"opacity,attr"`
	Visible    string        `xml:"visible,attr"`
	Locked     string        `xml:"locked,attr"`
	OffsetX    string        `xml:"offsetx,attr"`
	OffsetY    string        `xml:"offsety,attr"`
	ParallaxX  string        `xml:"parallaxx,attr"`
	ParallaxY  string        `xml:"parallaxy,attr"`
	Tint       string        `xml:"tintcolor,attr"`
	RepeatX    string        `xml:"repeatx,attr"`
	RepeatY    string        `xml:"repeaty,attr"`
	Image      *xmlImage     `xml:"image"`
	Properties xmlProperties `xml:"properties"`
}

type xmlImage struct {
	Source string `xml:"source,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Trans  string `xml:"trans,attr"`
}

type xmlGroup struct {
	ID         string        `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	Opacity    string        `xml:"opacity,attr"`
	Visible    string        `xml:"visible,attr"`
	Locked     string        `xml:"locked,attr"`
	OffsetX    string        `xml:"offsetx,attr"`
	OffsetY    string        `xml:"offsety,attr"`
	Tint       string        `xml:"tintcolor,attr"`
	Properties xmlProperties `xml:"properties"`
	xmlContainer
}

type xmlProperties struct {
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

func buildMap(raw *xmlMap) (*Map, error) {
	m := &Map{
		Version:      raw.Version,
		TiledVersion: raw.TiledVersion,
		Orientation:  raw.Orientation,
		RenderOrder:  raw.RenderOrder,
		Properties:   buildProperties(raw.Properties),
	}
	if m.Version == "" {
		return nil, fmt.Errorf("map: %w: version", ErrMissingAttr)
	}
	if m.Orientation == "" {
		return nil, fmt.Errorf("map: %w: orientation", ErrMissingAttr)
	}
	if m.RenderOrder == "" {
		return nil, fmt.Errorf("map: %w: renderorder", ErrMissingAttr)
	}

	var err error
	if m.Width, err = requireInt("map", "width", raw.Width); err != nil {
		return nil, err
	}
	if m.Height, err = requireInt("map", "height", raw.Height); err != nil {
		return nil, err
	}
	if m.TileWidth, err = requireInt("map", "tilewidth", raw.TileWidth); err != nil {
		return nil, err
	}
	if m.TileHeight, err = requireInt("map", "tileheight", raw.TileHeight); err != nil {
		return nil, err
	}
	if raw.Infinite == "" {
		return nil, fmt.Errorf("map: %w: infinite", ErrMissingAttr)
	}
	m.Infinite = raw.Infinite == "1" || raw.Infinite == "true"

	if raw.BackgroundColor != "" {
		c, err := ParseColor(raw.BackgroundColor)
		if err != nil {
			return nil, fmt.Errorf("map: backgroundcolor: %w", err)
		}
		m.BackgroundColor = &c
	}
	if m.ParallaxOriginX, err = optFloat("map", "parallaxoriginx", raw.ParallaxOriginX, 0); err != nil {
		return nil, err
	}
	if m.ParallaxOriginY, err = optFloat("map", "parallaxoriginy", raw.ParallaxOriginY, 0); err != nil {
		return nil, err
	}

	m.TilesetRefs = make([]TilesetRef, len(raw.Tilesets))
	for i, ref := range raw.Tilesets {
		first, err := requireUint("tileset", "firstgid", ref.FirstGID)
		if err != nil {
			return nil, err
		}
		m.TilesetRefs[i] = TilesetRef{FirstGID: first, Source: ref.Source}
	}
	// The resolver depends on the refs being ascending by firstgid.
	sort.Slice(m.TilesetRefs, func(i, j int) bool {
		return m.TilesetRefs[i].FirstGID < m.TilesetRefs[j].FirstGID
	})

	if m.Layers, m.Groups, err = buildContainer(&raw.xmlContainer, m.Infinite); err != nil {
		return nil, err
	}
	return m, nil
}

// buildContainer turns one container node, the map root or any group, into
// its layer list and nested groups. It is the single recursion point: every
// nesting level runs the same code. Layer kinds merge kind-grouped per
// container: tile layers first, then object groups, then image layers.
func buildContainer(c *xmlContainer, infinite bool) ([]Layer, []Group, error) {
	layers := make([]Layer, 0, len(c.Layers)+len(c.ObjectGroups)+len(c.ImageLayers))
	for i := range c.Layers {
		l, err := buildTileLayer(&c.Layers[i], infinite)
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, l)
	}
	for i := range c.ObjectGroups {
		l, err := buildObjectLayer(&c.ObjectGroups[i])
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, l)
	}
	for i := range c.ImageLayers {
		l, err := buildImageLayer(&c.ImageLayers[i])
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, l)
	}

	var groups []Group
	for i := range c.Groups {
		g, err := buildGroup(&c.Groups[i], infinite)
		if err != nil {
			return nil, nil, err
		}
		groups = append(groups, g)
	}
	return layers, groups, nil
}

func buildGroup(raw *xmlGroup, infinite bool) (Group, error) {
	g := Group{
		Name:       raw.Name,
		Properties: buildProperties(raw.Properties),
	}
	node := "group " + strconv.Quote(raw.Name)

	var err error
	if g.ID, err = requireUint(node, "id", raw.ID); err != nil {
		return Group{}, err
	}
	if g.Opacity, err = optFloat(node, "opacity", raw.Opacity, 1); err != nil {
		return Group{}, err
	}
	if g.Visible, err = optBool(node, "visible", raw.Visible, true); err != nil {
		return Group{}, err
	}
	if g.Locked, err = optBool(node, "locked", raw.Locked, false); err != nil {
		return Group{}, err
	}
	if g.OffsetX, err = optFloat(node, "offsetx", raw.OffsetX, 0); err != nil {
		return Group{}, err
	}
	if g.OffsetY, err = optFloat(node, "offsety", raw.OffsetY, 0); err != nil {
		return Group{}, err
	}
	if g.Tint, err = optColor(node, "tintcolor", raw.Tint); err != nil {
		return Group{}, err
	}

	if g.Layers, g.Groups, err = buildContainer(&raw.xmlContainer, infinite); err != nil {
		return Group{}, err
	}
	return g, nil
}

// layerAttrs is the attribute set shared by all three layer kinds.
type layerAttrs struct {
	id, name, class                              string
	opacity, visible, locked                     string
	offsetX, offsetY, parallaxX, parallaxY, tint string
}

func buildLayerCommon(node string, a layerAttrs, props xmlProperties) (Layer, error) {
	l := Layer{
		Name:       a.name,
		Class:      a.class,
		Properties: buildProperties(props),
	}
	var err error
	if l.ID, err = requireUint(node, "id", a.id); err != nil {
		return Layer{}, err
	}
	if l.Opacity, err = optFloat(node, "opacity", a.opacity, 1); err != nil {
		return Layer{}, err
	}
	if l.Visible, err = optBool(node, "visible", a.visible, true); err != nil {
		return Layer{}, err
	}
	if l.Locked, err = optBool(node, "locked", a.locked, false); err != nil {
		return Layer{}, err
	}
	if l.OffsetX, err = optFloat(node, "offsetx", a.offsetX, 0); err != nil {
		return Layer{}, err
	}
	if l.OffsetY, err = optFloat(node, "offsety", a.offsetY, 0); err != nil {
		return Layer{}, err
	}
	// Absent parallax attributes stay 0 rather than snapping to the editor's
	// implied factor of 1, so a consumer can tell "unset" apart from "set to 1".
	if l.ParallaxX, err = optFloat(node, "parallaxx", a.parallaxX, 0); err != nil {
		return Layer{}, err
	}
	if l.ParallaxY, err = optFloat(node, "parallaxy", a.parallaxY, 0); err != nil {
		return Layer{}, err
	}
	if l.Tint, err = optColor(node, "tintcolor", a.tint); err != nil {
		return Layer{}, err
	}
	return l, nil
}

func buildTileLayer(raw *xmlLayer, infinite bool) (Layer, error) {
	node := "layer " + strconv.Quote(raw.Name)
	l, err := buildLayerCommon(node, layerAttrs{
		id: raw.ID, name: raw.Name, class: raw.Class,
		opacity: raw.Opacity, visible: raw.Visible, locked: raw.Locked,
		offsetX: raw.OffsetX, offsetY: raw.OffsetY,
		parallaxX: raw.ParallaxX, parallaxY: raw.ParallaxY, tint: raw.Tint,
	}, raw.Properties)
	if err != nil {
		return Layer{}, err
	}

	tl := &TileLayer{}
	if tl.Width, err = requireInt(node, "width", raw.Width); err != nil {
		return Layer{}, err
	}
	if tl.Height, err = requireInt(node, "height", raw.Height); err != nil {
		return Layer{}, err
	}
	if raw.Data == nil {
		return Layer{}, fmt.Errorf("%s: %w: data node", node, ErrMissingAttr)
	}
	if raw.Data.Encoding == "" {
		// XML-encoded <tile> children are a legacy form this decoder does not
		// accept.
		return Layer{}, fmt.Errorf("%s: %w: %q", node, ErrUnsupportedEncoding, raw.Data.Encoding)
	}

	if infinite {
		tl.Chunks = make([]Chunk, 0, len(raw.Data.Chunks))
		for i := range raw.Data.Chunks {
			ch, err := buildChunk(node, &raw.Data.Chunks[i], raw.Data.Encoding, raw.Data.Compression)
			if err != nil {
				return Layer{}, err
			}
			tl.Chunks = append(tl.Chunks, ch)
		}
	} else {
		cells, err := decodeTileData(raw.Data.Text, raw.Data.Encoding, raw.Data.Compression)
		if err != nil {
			return Layer{}, fmt.Errorf("%s: %w", node, err)
		}
		if len(cells) != tl.Width*tl.Height {
			return Layer{}, fmt.Errorf("%s: %w: got %d cells, want %d",
				node, ErrInvalidDataLen, len(cells), tl.Width*tl.Height)
		}
		tl.Cells = cells
	}

	l.Kind = TileLayerKind
	l.Tiles = tl
	return l, nil
}

func buildChunk(node string, raw *xmlChunk, encoding, compression string) (Chunk, error) {
	var ch Chunk
	var err error
	if ch.X, err = requireInt(node, "chunk x", raw.X); err != nil {
		return Chunk{}, err
	}
	if ch.Y, err = requireInt(node, "chunk y", raw.Y); err != nil {
		return Chunk{}, err
	}
	if ch.Width, err = requireInt(node, "chunk width", raw.Width); err != nil {
		return Chunk{}, err
	}
	if ch.Height, err = requireInt(node, "chunk height", raw.Height); err != nil {
		return Chunk{}, err
	}

	cells, err := decodeTileData(raw.Text, encoding, compression)
	if err != nil {
		return Chunk{}, fmt.Errorf("%s: chunk (%d,%d): %w", node, ch.X, ch.Y, err)
	}
	if len(cells) != ch.Width*ch.Height {
		return Chunk{}, fmt.Errorf("%s: chunk (%d,%d): %w: got %d cells, want %d",
			node, ch.X, ch.Y, ErrInvalidDataLen, len(cells), ch.Width*ch.Height)
	}
	ch.Cells = cells
	return ch, nil
}

func buildObjectLayer(raw *xmlObjectGroup) (Layer, error) {
	node := "objectgroup " + strconv.Quote(raw.Name)
	l, err := buildLayerCommon(node, layerAttrs{
		id: raw.ID, name: raw.Name, class: raw.Class,
		opacity: raw.Opacity, visible: raw.Visible, locked: raw.Locked,
		offsetX: raw.OffsetX, offsetY: raw.OffsetY,
		parallaxX: raw.ParallaxX, parallaxY: raw.ParallaxY, tint: raw.Tint,
	}, raw.Properties)
	if err != nil {
		return Layer{}, err
	}

	ol := &ObjectLayer{DrawOrder: raw.DrawOrder}
	if ol.Color, err = optColor(node, "color", raw.Color); err != nil {
		return Layer{}, err
	}
	ol.Objects = make([]Object, 0, len(raw.Objects))
	for i := range raw.Objects {
		o, err := buildObject(node, &raw.Objects[i])
		if err != nil {
			return Layer{}, err
		}
		ol.Objects = append(ol.Objects, o)
	}

	l.Kind = ObjectLayerKind
	l.Objects = ol
	return l, nil
}

func buildObject(node string, raw *xmlObject) (Object, error) {
	o := Object{
		Name:       raw.Name,
		Class:      raw.Class,
		Point:      raw.Point != nil,
		Ellipse:    raw.Ellipse != nil,
		Properties: buildProperties(raw.Properties),
	}
	var err error
	if o.ID, err = requireUint(node, "object id", raw.ID); err != nil {
		return Object{}, err
	}
	if o.X, err = optFloat(node, "object x", raw.X, 0); err != nil {
		return Object{}, err
	}
	if o.Y, err = optFloat(node, "object y", raw.Y, 0); err != nil {
		return Object{}, err
	}
	if o.Width, err = optFloat(node, "object width", raw.Width, 0); err != nil {
		return Object{}, err
	}
	if o.Height, err = optFloat(node, "object height", raw.Height, 0); err != nil {
		return Object{}, err
	}
	if o.Rotation, err = optFloat(node, "object rotation", raw.Rotation, 0); err != nil {
		return Object{}, err
	}
	if o.Visible, err = optBool(node, "object visible", raw.Visible, true); err != nil {
		return Object{}, err
	}
	if raw.GID != "" {
		if o.GID, err = requireUint(node, "object gid", raw.GID); err != nil {
			return Object{}, err
		}
	}
	if raw.Polygon != nil {
		if o.Polygon, err = decodePoints(node, raw.Polygon.Points); err != nil {
			return Object{}, err
		}
	}
	if raw.Polyline != nil {
		if o.Polyline, err = decodePoints(node, raw.Polyline.Points); err != nil {
			return Object{}, err
		}
	}
	return o, nil
}

// decodePoints parses a "x0,y0 x1,y1 ..." points attribute.
func decodePoints(node, s string) ([]Point, error) {
	fields := strings.Fields(s)
	points := make([]Point, len(fields))
	for i, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("%s: %w: point %q", node, ErrMalformed, f)
		}
		var err error
		if points[i].X, err = strconv.ParseFloat(xs, 64); err != nil {
			return nil, fmt.Errorf("%s: %w: point %q", node, ErrMalformed, f)
		}
		if points[i].Y, err = strconv.ParseFloat(ys, 64); err != nil {
			return nil, fmt.Errorf("%s: %w: point %q", node, ErrMalformed, f)
		}
	}
	return points, nil
}

func buildImageLayer(raw *xmlImageLayer) (Layer, error) {
	node := "imagelayer " + strconv.Quote(raw.Name)
	l, err := buildLayerCommon(node, layerAttrs{
		id: raw.ID, name: raw.Name, class: raw.Class,
		opacity: raw.Opacity, visible: raw.Visible, locked: raw.Locked,
		offsetX: raw.OffsetX, offsetY: raw.OffsetY,
		parallaxX: raw.ParallaxX, parallaxY: raw.ParallaxY, tint: raw.Tint,
	}, raw.Properties)
	if err != nil {
		return Layer{}, err
	}

	il := &ImageLayer{}
	if il.RepeatX, err = optBool(node, "repeatx", raw.RepeatX, false); err != nil {
		return Layer{}, err
	}
	if il.RepeatY, err = optBool(node, "repeaty", raw.RepeatY, false); err != nil {
		return Layer{}, err
	}
	if raw.Image != nil {
		if il.Image, err = buildImage(node, raw.Image); err != nil {
			return Layer{}, err
		}
	}

	l.Kind = ImageLayerKind
	l.Image = il
	return l, nil
}

func buildImage(node string, raw *xmlImage) (Image, error) {
	img := Image{Source: raw.Source}
	var err error
	if img.Width, err = optInt(node, "image width", raw.Width, 0); err != nil {
		return Image{}, err
	}
	if img.Height, err = optInt(node, "image height", raw.Height, 0); err != nil {
		return Image{}, err
	}
	if img.Trans, err = optColor(node, "trans", raw.Trans); err != nil {
		return Image{}, err
	}
	return img, nil
}

func buildProperties(raw xmlProperties) Properties {
	if len(raw.Properties) == 0 {
		return nil
	}
	props := make(Properties, len(raw.Properties))
	for i, p := range raw.Properties {
		v := p.Value
		if v == "" {
			// Multiline string properties carry their value as element text.
			v = strings.TrimSpace(p.Text)
		}
		props[i] = Property{Name: p.Name, Type: p.Type, Value: v}
	}
	return props
}

// ParseColor parses a hex color attribute: an optional leading '#' followed
// by exactly six hex digits. No alpha channel.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: color %q", ErrMalformed, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q", ErrMalformed, s)
	}
	return Color{Red: uint8(v >> 16), Green: uint8(v >> 8), Blue: uint8(v)}, nil
}

// Attribute helpers. node and attr only feed error context.

func requireInt(node, attr, v string) (int, error) {
	if v == "" {
		return 0, fmt.Errorf("%s: %w: %s", node, ErrMissingAttr, attr)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w: %q", node, attr, ErrMalformed, v)
	}
	return n, nil
}

func requireUint(node, attr, v string) (uint32, error) {
	if v == "" {
		return 0, fmt.Errorf("%s: %w: %s", node, ErrMissingAttr, attr)
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w: %q", node, attr, ErrMalformed, v)
	}
	return uint32(n), nil
}

func optInt(node, attr, v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return requireInt(node, attr, v)
}

func optFloat(node, attr, v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w: %q", node, attr, ErrMalformed, v)
	}
	return f, nil
}

func optBool(node, attr, v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %s: %w: %q", node, attr, ErrMalformed, v)
	}
	return b, nil
}

func optColor(node, attr, v string) (*Color, error) {
	if v == "" {
		return nil, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", node, attr, err)
	}
	return &c, nil
}
