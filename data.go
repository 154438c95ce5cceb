package tmxvre

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// decodeTileData turns the raw payload of a data or chunk node into decoded
// cells, in payload order (row-major). It knows nothing about the expected
// dimensions; the caller validates the length.
func decodeTileData(payload, encoding, compression string) ([]Tile, error) {
	switch encoding {
	case "csv":
		// The format never compresses csv; the attribute is ignored if present.
		return decodeCSV(payload)
	case "base64":
		return decodeBase64(payload, compression)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
}

func decodeCSV(payload string) ([]Tile, error) {
	tokens := strings.Split(strings.TrimSpace(payload), ",")
	tiles := make([]Tile, len(tokens))
	for i, tok := range tokens {
		raw, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: csv token %q", ErrMalformed, strings.TrimSpace(tok))
		}
		tiles[i] = DecodeGID(uint32(raw))
	}
	return tiles, nil
}

func decodeBase64(payload, compression string) ([]Tile, error) {
	buf, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformed, err)
	}

	switch compression {
	case "":
	case "zlib":
		if buf, err = inflate(buf); err != nil {
			return nil, err
		}
	case "gzip":
		if buf, err = gunzip(buf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, compression)
	}

	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of cells", ErrInvalidDataLen, len(buf))
	}

	tiles := make([]Tile, len(buf)/4)
	for i := range tiles {
		tiles[i] = DecodeGID(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return tiles, nil
}

// inflate strips the two-byte zlib container header and raw-inflates the
// deflate stream behind it. The adler32 trailer stays unread; the reader is
// closed on every path.
func inflate(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: zlib stream shorter than its header", ErrDecompress)
	}
	r := flate.NewReader(bytes.NewReader(data[2:]))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", ErrDecompress, err)
	}
	return out, nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", ErrDecompress, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", ErrDecompress, err)
	}
	return out, nil
}
