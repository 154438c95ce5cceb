package tmxvre

import (
	"encoding/xml"
	"fmt"
	"io"
)

// ParseTileset decodes a TSX tileset document from r. Like ParseMap it is
// all-or-nothing.
func ParseTileset(r io.Reader) (*Tileset, error) {
	var raw xmlTilesetDoc
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return buildTileset(&raw)
}

type xmlTilesetDoc struct {
	Version    string        `xml:"version,attr"`
	Name       string        `xml:"name,attr"`
	TileWidth  string        `xml:"tilewidth,attr"`
	TileHeight string        `xml:"tileheight,attr"`
	TileCount  string        `xml:"tilecount,attr"`
	Columns    string        `xml:"columns,attr"`
	Margin     string        `xml:"margin,attr"`
	Spacing    string        `xml:"spacing,attr"`
	Image      *xmlImage     `xml:"image"`
	Tiles      []xmlTileDef  `xml:"tile"`
	Properties xmlProperties `xml:"properties"`
}

type xmlTileDef struct {
	ID         string        `xml:"id,attr"`
	Class      string        `xml:"type,attr"`
	Properties xmlProperties `xml:"properties"`
	Image      *xmlImage     `xml:"image"`
	Animation  *xmlAnimation `xml:"animation"`
}

type xmlAnimation struct {
	Frames []xmlFrame `xml:"frame"`
}

type xmlFrame struct {
	TileID   string `xml:"tileid,attr"`
	Duration string `xml:"duration,attr"`
}

func buildTileset(raw *xmlTilesetDoc) (*Tileset, error) {
	ts := &Tileset{
		Version:    raw.Version,
		Name:       raw.Name,
		Properties: buildProperties(raw.Properties),
	}
	if ts.Version == "" {
		return nil, fmt.Errorf("tileset: %w: version", ErrMissingAttr)
	}
	node := "tileset " + ts.Name

	var err error
	if ts.TileWidth, err = requireInt(node, "tilewidth", raw.TileWidth); err != nil {
		return nil, err
	}
	if ts.TileHeight, err = requireInt(node, "tileheight", raw.TileHeight); err != nil {
		return nil, err
	}
	if ts.TileCount, err = requireInt(node, "tilecount", raw.TileCount); err != nil {
		return nil, err
	}
	if ts.Columns, err = requireInt(node, "columns", raw.Columns); err != nil {
		return nil, err
	}
	if ts.Margin, err = optInt(node, "margin", raw.Margin, 0); err != nil {
		return nil, err
	}
	if ts.Spacing, err = optInt(node, "spacing", raw.Spacing, 0); err != nil {
		return nil, err
	}
	if raw.Image != nil {
		if ts.Image, err = buildImage(node, raw.Image); err != nil {
			return nil, err
		}
	}

	// Only tiles with extra metadata appear in the document; the slice stays
	// sparse rather than expanding to tilecount entries.
	ts.Tiles = make([]TileDef, 0, len(raw.Tiles))
	for i := range raw.Tiles {
		td, err := buildTileDef(node, &raw.Tiles[i])
		if err != nil {
			return nil, err
		}
		ts.Tiles = append(ts.Tiles, td)
	}
	return ts, nil
}

func buildTileDef(node string, raw *xmlTileDef) (TileDef, error) {
	td := TileDef{
		Class:      raw.Class,
		Properties: buildProperties(raw.Properties),
	}
	var err error
	if td.ID, err = requireUint(node, "tile id", raw.ID); err != nil {
		return TileDef{}, err
	}
	if raw.Image != nil {
		img, err := buildImage(node, raw.Image)
		if err != nil {
			return TileDef{}, err
		}
		td.Image = &img
	}
	if raw.Animation != nil {
		td.Animation = make([]Frame, len(raw.Animation.Frames))
		for i, f := range raw.Animation.Frames {
			var fr Frame
			if fr.TileID, err = requireUint(node, "frame tileid", f.TileID); err != nil {
				return TileDef{}, err
			}
			if fr.DurationMS, err = requireInt(node, "frame duration", f.Duration); err != nil {
				return TileDef{}, err
			}
			td.Animation[i] = fr
		}
	}
	return td, nil
}

// TileDef returns the sparse metadata entry for the given local tile id, or
// nil when the tileset declares none for it.
func (t *Tileset) TileDef(localID uint32) *TileDef {
	for i := range t.Tiles {
		if t.Tiles[i].ID == localID {
			return &t.Tiles[i]
		}
	}
	return nil
}
