package tmxvre

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
)

var (
	redPx   = color.NRGBA{R: 0xff, A: 0xff}
	greenPx = color.NRGBA{G: 0xff, A: 0xff}
	bluePx  = color.NRGBA{B: 0xff, A: 0xff}
	whitePx = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func quad() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, redPx)
	img.SetNRGBA(1, 0, greenPx)
	img.SetNRGBA(0, 1, bluePx)
	img.SetNRGBA(1, 1, whitePx)
	return img
}

func TestOrient(t *testing.T) {
	tests := []struct {
		name string
		tile Tile
		want [4]color.NRGBA // (0,0) (1,0) (0,1) (1,1)
	}{
		{"none", Tile{}, [4]color.NRGBA{redPx, greenPx, bluePx, whitePx}},
		{"x flip", Tile{XFlip: true}, [4]color.NRGBA{greenPx, redPx, whitePx, bluePx}},
		{"y flip", Tile{YFlip: true}, [4]color.NRGBA{bluePx, whitePx, redPx, greenPx}},
		// The anti-diagonal flip leaves the anti-diagonal itself in place.
		{"diagonal flip", Tile{DiagonalFlip: true}, [4]color.NRGBA{whitePx, greenPx, bluePx, redPx}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orient(quad(), tt.tile)
			pixels := [4]color.NRGBA{
				got.NRGBAAt(0, 0), got.NRGBAAt(1, 0),
				got.NRGBAAt(0, 1), got.NRGBAAt(1, 1),
			}
			if pixels != tt.want {
				t.Errorf("pixels = %v, want %v", pixels, tt.want)
			}
		})
	}
}

func TestRenderTileLayer(t *testing.T) {
	// Two 8x8 tiles side by side: tile 0 solid red, tile 1 solid green.
	sheet := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			sheet.SetNRGBA(x, y, redPx)
			sheet.SetNRGBA(x+8, y, greenPx)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		t.Fatal(err)
	}
	fsys := fstest.MapFS{"ground.png": {Data: buf.Bytes()}}

	m := &Map{
		TileWidth:   8,
		TileHeight:  8,
		TilesetRefs: []TilesetRef{{FirstGID: 1, Source: "ground.tsx"}},
	}
	m.AttachTileset(1, &Tileset{
		TileWidth: 8, TileHeight: 8, TileCount: 2,
		Image: Image{Source: "ground.png", Width: 16, Height: 8},
	})

	r, err := NewRenderer(m, fsys, ".")
	if err != nil {
		t.Fatal(err)
	}

	layer := &TileLayer{
		Width:  3,
		Height: 1,
		Cells:  []Tile{{Index: 1}, {Index: 2}, {}},
	}
	out, err := r.RenderTileLayer(layer)
	if err != nil {
		t.Fatal(err)
	}

	if got := out.Bounds(); got.Dx() != 24 || got.Dy() != 8 {
		t.Fatalf("bounds = %v", got)
	}
	if got := out.NRGBAAt(3, 3); got != redPx {
		t.Errorf("first cell = %v, want red", got)
	}
	if got := out.NRGBAAt(11, 3); got != greenPx {
		t.Errorf("second cell = %v, want green", got)
	}
	if got := out.NRGBAAt(19, 3); got.A != 0 {
		t.Errorf("empty cell = %v, want transparent", got)
	}
}

func TestTileImageMisses(t *testing.T) {
	m := &Map{TileWidth: 8, TileHeight: 8}
	r := &Renderer{m: m, images: map[uint32]image.Image{}}

	if _, ok := r.TileImage(Tile{}); ok {
		t.Error("empty cell should miss")
	}
	if _, ok := r.TileImage(Tile{Index: 3}); ok {
		t.Error("a map without tilesets cannot resolve any tile")
	}
}

func TestRenderChunkedLayerUnsupported(t *testing.T) {
	r := &Renderer{m: &Map{TileWidth: 8, TileHeight: 8}}
	layer := &TileLayer{Width: 4, Height: 4, Chunks: []Chunk{{Width: 4, Height: 4}}}
	if _, err := r.RenderTileLayer(layer); err == nil {
		t.Fatal("chunked layers are not renderable and must error")
	}
}
