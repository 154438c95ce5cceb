// Package tmxvre decodes Tiled's TMX map documents and TSX tileset
// documents into an in-memory model: tile layers with their per-cell
// orientation flags, object and image layers, nested groups, and tileset
// lookups for rendering.
package tmxvre

// Color is an RGB triple parsed from a "#RRGGBB" or "RRGGBB" attribute.
// Tiled map and tileset documents carry no alpha channel in these fields.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Tile is a single decoded cell of a tile layer: the tile identifier with
// the three orientation flag bits cleared, plus the flags themselves.
// Index 0 means the cell holds no tile.
type Tile struct {
	Index        uint32
	XFlip        bool
	YFlip        bool
	DiagonalFlip bool
}

// IsNil reports whether the cell holds no tile.
func (t Tile) IsNil() bool { return t.Index == 0 }

// LayerKind discriminates the three layer payloads.
type LayerKind int

const (
	TileLayerKind LayerKind = iota
	ObjectLayerKind
	ImageLayerKind
)

// Layer is one entry of a container's layer list. The fields every layer
// kind shares live here; exactly one of Tiles, Objects, Image is non-nil,
// selected by Kind.
type Layer struct {
	ID         uint32
	Name       string
	Class      string
	Opacity    float64
	Visible    bool
	Locked     bool
	OffsetX    float64
	OffsetY    float64
	ParallaxX  float64
	ParallaxY  float64
	Tint       *Color // nil when the document sets no tint
	Properties Properties

	Kind    LayerKind
	Tiles   *TileLayer
	Objects *ObjectLayer
	Image   *ImageLayer
}

// TileLayer is an ordered 2D tile grid. Finite maps fill Cells with exactly
// Width*Height entries in row-major order; infinite maps leave Cells empty
// and carry their data in Chunks instead.
type TileLayer struct {
	Width  int
	Height int
	Cells  []Tile
	Chunks []Chunk
}

// CellIndex converts a (col, row) pair into the flat row-major index.
func (l *TileLayer) CellIndex(col, row int) int { return col + row*l.Width }

// At returns the decoded cell at (col, row) of a finite layer.
func (l *TileLayer) At(col, row int) Tile { return l.Cells[l.CellIndex(col, row)] }

// IsXFlipped reports whether the cell at flat index i is mirrored
// horizontally.
func (l *TileLayer) IsXFlipped(i int) bool { return l.Cells[i].XFlip }

// IsYFlipped reports whether the cell at flat index i is mirrored
// vertically.
func (l *TileLayer) IsYFlipped(i int) bool { return l.Cells[i].YFlip }

// IsDiagonalFlipped reports whether the cell at flat index i is flipped
// along the anti-diagonal.
func (l *TileLayer) IsDiagonalFlipped(i int) bool { return l.Cells[i].DiagonalFlip }

// IsXFlippedAt is IsXFlipped addressed by (col, row).
func (l *TileLayer) IsXFlippedAt(col, row int) bool { return l.IsXFlipped(l.CellIndex(col, row)) }

// IsYFlippedAt is IsYFlipped addressed by (col, row).
func (l *TileLayer) IsYFlippedAt(col, row int) bool { return l.IsYFlipped(l.CellIndex(col, row)) }

// IsDiagonalFlippedAt is IsDiagonalFlipped addressed by (col, row).
func (l *TileLayer) IsDiagonalFlippedAt(col, row int) bool {
	return l.IsDiagonalFlipped(l.CellIndex(col, row))
}

// Chunk is a rectangular sparse region of an infinite tile layer, positioned
// in tile space by X and Y. Cells holds Width*Height entries in row-major
// order.
type Chunk struct {
	X      int
	Y      int
	Width  int
	Height int
	Cells  []Tile
}

// ObjectLayer holds the objects of an object group node.
type ObjectLayer struct {
	Color     *Color
	DrawOrder string
	Objects   []Object
}

// Object is a single placed object. Point and Ellipse mark the shape kinds
// that carry no extra geometry; Polygon and Polyline hold decoded point
// lists relative to (X, Y).
type Object struct {
	ID         uint32
	Name       string
	Class      string
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Rotation   float64
	GID        uint32
	Visible    bool
	Point      bool
	Ellipse    bool
	Polygon    []Point
	Polyline   []Point
	Properties Properties
}

// Point is one vertex of a polygon or polyline, in pixels relative to the
// owning object's position.
type Point struct {
	X float64
	Y float64
}

// ImageLayer is a layer consisting of a single image.
type ImageLayer struct {
	Image   Image
	RepeatX bool
	RepeatY bool
}

// Image describes an image referenced by a tileset or image layer.
type Image struct {
	Source string
	Width  int
	Height int
	Trans  *Color // color keyed as transparent, nil when unset
}

// Group is a recursive container of layers and nested groups.
type Group struct {
	ID         uint32
	Name       string
	Opacity    float64
	Visible    bool
	Locked     bool
	OffsetX    float64
	OffsetY    float64
	Tint       *Color
	Properties Properties

	Layers []Layer
	Groups []Group
}

// TilesetRef binds the contiguous global-id range starting at FirstGID to an
// external tileset document. A map's refs are kept sorted ascending by
// FirstGID; each ref's range ends where the next one begins and the last
// range is open-ended.
type TilesetRef struct {
	FirstGID uint32
	Source   string
}

// Tileset is a parsed TSX tileset document.
type Tileset struct {
	Version    string
	Name       string
	TileWidth  int
	TileHeight int
	TileCount  int
	Columns    int
	Margin     int
	Spacing    int
	Image      Image
	Tiles      []TileDef
	Properties Properties
}

// TileDef is the sparse per-tile metadata a tileset declares only for tiles
// that have any: a class, properties, an animation, or a dedicated image.
type TileDef struct {
	ID         uint32
	Class      string
	Properties Properties
	Animation  []Frame
	Image      *Image
}

// Frame is one step of a tile animation.
type Frame struct {
	TileID     uint32
	DurationMS int
}

// Map is the decoded form of a TMX map document.
type Map struct {
	Version         string
	TiledVersion    string
	Orientation     string
	RenderOrder     string
	Width           int
	Height          int
	TileWidth       int
	TileHeight      int
	Infinite        bool
	BackgroundColor *Color
	ParallaxOriginX float64
	ParallaxOriginY float64
	Properties      Properties
	TilesetRefs     []TilesetRef
	Layers          []Layer
	Groups          []Group

	tilesets map[uint32]*Tileset
}

// AttachTileset registers an already-parsed tileset for the ref with the
// given firstgid. LoadMap attaches external tilesets automatically; callers
// that obtain tilesets by other means use this directly.
func (m *Map) AttachTileset(firstGID uint32, ts *Tileset) {
	if m.tilesets == nil {
		m.tilesets = make(map[uint32]*Tileset)
	}
	m.tilesets[firstGID] = ts
}

// Tileset returns the tileset attached for firstGID, or nil.
func (m *Map) Tileset(firstGID uint32) *Tileset {
	return m.tilesets[firstGID]
}
