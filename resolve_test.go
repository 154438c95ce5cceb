package tmxvre

import (
	"image"
	"testing"
)

func TestFindTilesetRef(t *testing.T) {
	refs := []TilesetRef{
		{FirstGID: 1, Source: "a"},
		{FirstGID: 50, Source: "b"},
		{FirstGID: 200, Source: "c"},
	}
	tests := []struct {
		gid  uint32
		want string
	}{
		{1, "a"},
		{49, "a"},
		{50, "b"},
		{199, "b"},
		{200, "c"},
		{9999, "c"}, // the last range is open-ended
	}
	for _, tt := range tests {
		got := FindTilesetRef(refs, tt.gid)
		if got == nil || got.Source != tt.want {
			t.Errorf("FindTilesetRef(%d) = %+v, want %q", tt.gid, got, tt.want)
		}
	}

	if got := FindTilesetRef(nil, 7); got != nil {
		t.Errorf("empty ref list resolved to %+v", got)
	}
}

func TestSourceRect(t *testing.T) {
	ts := &Tileset{
		TileWidth:  16,
		TileHeight: 16,
		TileCount:  8,
		Image:      Image{Width: 64, Height: 32}, // 4 columns
	}
	tests := []struct {
		localID uint32
		want    image.Rectangle
		ok      bool
	}{
		{0, image.Rect(0, 0, 16, 16), true},
		{5, image.Rect(16, 16, 32, 32), true}, // row 1, col 1
		{7, image.Rect(48, 16, 64, 32), true},
		{8, image.Rectangle{}, false}, // past tilecount
	}
	for _, tt := range tests {
		got, ok := ts.SourceRect(tt.localID)
		if ok != tt.ok || got != tt.want {
			t.Errorf("SourceRect(%d) = %v, %v; want %v, %v", tt.localID, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMapSourceRect(t *testing.T) {
	m := &Map{
		TilesetRefs: []TilesetRef{{FirstGID: 1, Source: "a"}, {FirstGID: 9, Source: "b"}},
	}
	m.AttachTileset(1, &Tileset{
		TileWidth: 8, TileHeight: 8, TileCount: 8,
		Image: Image{Width: 32, Height: 16},
	})

	if _, ok := m.SourceRect(0); ok {
		t.Error("gid 0 is the no-tile sentinel and must not resolve")
	}
	got, ok := m.SourceRect(6) // local id 5 in the first tileset
	if !ok || got != image.Rect(8, 8, 16, 16) {
		t.Errorf("SourceRect(6) = %v, %v", got, ok)
	}
	if _, ok := m.SourceRect(9); ok {
		t.Error("gid in a ref without an attached tileset should miss, not panic")
	}
}
