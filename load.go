package tmxvre

import (
	"fmt"
	"io/fs"
	"path"
)

// LoadMap reads and parses a TMX map from fsys, then loads every external
// tileset the map references, resolving each source relative to the map's
// directory. Callers pass embed.FS or os.DirFS as suits them. Names use
// slash-separated fs paths.
func LoadMap(fsys fs.FS, name string) (*Map, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open map %s: %w", name, err)
	}
	defer f.Close()

	m, err := ParseMap(f)
	if err != nil {
		return nil, fmt.Errorf("parse map %s: %w", name, err)
	}

	dir := path.Dir(name)
	for _, ref := range m.TilesetRefs {
		if ref.Source == "" {
			continue
		}
		ts, err := LoadTileset(fsys, path.Join(dir, ref.Source))
		if err != nil {
			return nil, err
		}
		m.AttachTileset(ref.FirstGID, ts)
	}
	return m, nil
}

// LoadTileset reads and parses a TSX tileset from fsys.
func LoadTileset(fsys fs.FS, name string) (*Tileset, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open tileset %s: %w", name, err)
	}
	defer f.Close()

	ts, err := ParseTileset(f)
	if err != nil {
		return nil, fmt.Errorf("parse tileset %s: %w", name, err)
	}
	return ts, nil
}
