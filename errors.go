package tmxvre

import "errors"

// Every fatal parse failure surfaces from ParseMap or ParseTileset wrapping
// one of these values, so callers can distinguish the failure classes with
// errors.Is. Resolution misses (FindTilesetRef returning nil, SourceRect
// returning ok=false) are normal outcomes, not errors.
var (
	ErrMissingAttr            = errors.New("tmxvre: required attribute missing")
	ErrMalformed              = errors.New("tmxvre: malformed value")
	ErrUnsupportedEncoding    = errors.New("tmxvre: unsupported layer encoding")
	ErrUnsupportedCompression = errors.New("tmxvre: unsupported compression method")
	ErrInvalidDataLen         = errors.New("tmxvre: decoded tile data has wrong length")
	ErrDecompress             = errors.New("tmxvre: corrupt compressed tile data")
)
