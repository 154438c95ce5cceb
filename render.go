package tmxvre

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"path"

	"github.com/disintegration/imaging"
	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
)

// Renderer composites decoded tile layers into plain CPU images using the
// map's attached tilesets and their images. The GPU upload is a separate
// step; see EbitenImage.
type Renderer struct {
	m      *Map
	images map[uint32]image.Image // tileset image keyed by firstgid
}

// NewRenderer loads the image of every attached tileset from fsys, with
// image sources resolved relative to dir (normally the directory holding the
// tileset documents).
func NewRenderer(m *Map, fsys fs.FS, dir string) (*Renderer, error) {
	r := &Renderer{m: m, images: make(map[uint32]image.Image)}
	for _, ref := range m.TilesetRefs {
		ts := m.Tileset(ref.FirstGID)
		if ts == nil {
			return nil, fmt.Errorf("tmxvre: no tileset attached for firstgid %d", ref.FirstGID)
		}
		if ts.Image.Source == "" {
			continue
		}
		img, err := loadImage(fsys, path.Join(dir, ts.Image.Source))
		if err != nil {
			return nil, err
		}
		r.images[ref.FirstGID] = img
	}
	return r, nil
}

func loadImage(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", name, err)
	}
	return img, nil
}

// TileImage returns the cell image for one decoded tile with its orientation
// flags applied. ok is false for an empty cell or when the tile cannot be
// resolved against the attached tilesets; that is the caller's "no tile"
// branch, not a failure.
func (r *Renderer) TileImage(t Tile) (*image.NRGBA, bool) {
	if t.IsNil() {
		return nil, false
	}
	ref := FindTilesetRef(r.m.TilesetRefs, t.Index)
	if ref == nil {
		return nil, false
	}
	ts := r.m.Tileset(ref.FirstGID)
	src := r.images[ref.FirstGID]
	if ts == nil || src == nil {
		return nil, false
	}
	rect, ok := ts.SourceRect(t.Index - ref.FirstGID)
	if !ok {
		return nil, false
	}
	return orient(imaging.Crop(src, rect), t), true
}

// orient applies the three flip flags to a cell image. The anti-diagonal
// flip runs first, then the axis flips, so that the flag combinations the
// editor writes for 90/270 degree rotations come out right.
func orient(img *image.NRGBA, t Tile) *image.NRGBA {
	if t.DiagonalFlip {
		img = imaging.FlipH(imaging.Rotate90(img))
	}
	if t.XFlip {
		img = imaging.FlipH(img)
	}
	if t.YFlip {
		img = imaging.FlipV(img)
	}
	return img
}

// RenderTileLayer composites one finite tile layer at full pixel size.
// Cells that resolve to no tile stay transparent.
func (r *Renderer) RenderTileLayer(l *TileLayer) (*image.NRGBA, error) {
	if len(l.Chunks) > 0 {
		return nil, fmt.Errorf("tmxvre: rendering chunked layers of infinite maps is not supported")
	}
	if len(l.Cells) != l.Width*l.Height {
		return nil, fmt.Errorf("%w: got %d cells, want %d", ErrInvalidDataLen, len(l.Cells), l.Width*l.Height)
	}

	tw, th := r.m.TileWidth, r.m.TileHeight
	out := imaging.New(l.Width*tw, l.Height*th, color.NRGBA{})
	for row := 0; row < l.Height; row++ {
		for col := 0; col < l.Width; col++ {
			cell, ok := r.TileImage(l.At(col, row))
			if !ok {
				continue
			}
			out = imaging.Overlay(out, cell, image.Pt(col*tw, row*th), 1.0)
		}
	}
	return out, nil
}

// EbitenImage uploads a composited image for use with ebiten's draw calls.
func EbitenImage(img image.Image) *ebiten.Image {
	return ebiten.NewImageFromImage(img)
}
