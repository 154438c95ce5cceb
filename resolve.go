package tmxvre

import "image"

// FindTilesetRef scans refs, which must be ascending by FirstGID, and
// returns the ref whose range contains gid. Each ref's range ends where the
// next one begins; the last ref's range is open-ended, so any gid at or
// above its FirstGID resolves to it. Returns nil only for an empty list.
//
// A gid of 0 means "no tile" and callers are expected to branch on that
// before resolving; passed in anyway, it falls through to the last ref.
func FindTilesetRef(refs []TilesetRef, gid uint32) *TilesetRef {
	for i := range refs {
		if i < len(refs)-1 {
			if gid >= refs[i].FirstGID && gid < refs[i+1].FirstGID {
				return &refs[i]
			}
			continue
		}
		return &refs[i]
	}
	return nil
}

// FindTilesetRef resolves gid against the map's ref list.
func (m *Map) FindTilesetRef(gid uint32) *TilesetRef {
	return FindTilesetRef(m.TilesetRefs, gid)
}

// SourceRect returns the pixel rectangle of the tile with the given local id
// inside the tileset image, walking the image as a row-major grid of
// imageWidth/tileWidth columns. Margin and spacing are not accounted for.
// ok is false when localID falls outside [0, tilecount); that is an expected
// miss, not an error.
func (t *Tileset) SourceRect(localID uint32) (image.Rectangle, bool) {
	cols := 0
	if t.TileWidth > 0 {
		cols = t.Image.Width / t.TileWidth
	}
	if cols <= 0 || localID >= uint32(t.TileCount) {
		return image.Rectangle{}, false
	}
	col := int(localID) % cols
	row := int(localID) / cols
	x := col * t.TileWidth
	y := row * t.TileHeight
	return image.Rect(x, y, x+t.TileWidth, y+t.TileHeight), true
}

// SourceRect resolves a global id to its tileset and source rectangle in one
// step. ok is false for the empty gid, an unresolvable ref, a ref with no
// attached tileset, or a local id outside the tileset.
func (m *Map) SourceRect(gid uint32) (image.Rectangle, bool) {
	if gid == 0 {
		return image.Rectangle{}, false
	}
	ref := m.FindTilesetRef(gid)
	if ref == nil {
		return image.Rectangle{}, false
	}
	ts := m.Tileset(ref.FirstGID)
	if ts == nil {
		return image.Rectangle{}, false
	}
	return ts.SourceRect(gid - ref.FirstGID)
}
