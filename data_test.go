package tmxvre

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func leBytes(gids []uint32) []byte {
	buf := make([]byte, 4*len(gids))
	for i, g := range gids {
		binary.LittleEndian.PutUint32(buf[i*4:], g)
	}
	return buf
}

func csvPayload(gids []uint32) string {
	tokens := make([]string, len(gids))
	for i, g := range gids {
		tokens[i] = strconv.FormatUint(uint64(g), 10)
	}
	return strings.Join(tokens, ",")
}

func zlibPayload(t *testing.T, gids []uint32) string {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(leBytes(gids)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func gzipPayload(t *testing.T, gids []uint32) string {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(leBytes(gids)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeCSVScenario(t *testing.T) {
	// The third value is 2^31+5: index 5 with a horizontal flip.
	got, err := decodeTileData("5,0,2147483653,1", "csv", "")
	if err != nil {
		t.Fatal(err)
	}
	want := []Tile{
		{Index: 5},
		{},
		{Index: 5, XFlip: true},
		{Index: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCSVAndBase64Agree(t *testing.T) {
	gids := []uint32{0, 1, 17, GIDHorizontalFlip | 3, GIDVerticalFlip | GIDDiagonalFlip | 8}

	fromCSV, err := decodeTileData(csvPayload(gids), "csv", "")
	if err != nil {
		t.Fatal(err)
	}
	fromB64, err := decodeTileData(base64.StdEncoding.EncodeToString(leBytes(gids)), "base64", "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromCSV, fromB64) {
		t.Errorf("csv %+v and base64 %+v disagree", fromCSV, fromB64)
	}
}

func TestDecodeCompressed(t *testing.T) {
	gids := []uint32{1, 2, 3, 0, GIDHorizontalFlip | 5, 6, 7, 8}
	want := make([]Tile, len(gids))
	for i, g := range gids {
		want[i] = DecodeGID(g)
	}

	for _, compression := range []string{"zlib", "gzip"} {
		var payload string
		if compression == "zlib" {
			payload = zlibPayload(t, gids)
		} else {
			payload = gzipPayload(t, gids)
		}
		got, err := decodeTileData(payload, "base64", compression)
		if err != nil {
			t.Fatalf("%s: %v", compression, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got %+v, want %+v", compression, got, want)
		}
	}
}

func TestDecodeCSVIgnoresCompression(t *testing.T) {
	got, err := decodeTileData("1,2", "csv", "zlib")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Index != 1 || got[1].Index != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeWhitespaceTolerance(t *testing.T) {
	got, err := decodeTileData("\n\t 1, 2,\n3 , 4 \n", "csv", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d cells, want 4", len(got))
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name                           string
		payload, encoding, compression string
		want                           error
	}{
		{"bad csv token", "12,abc,3", "csv", "", ErrMalformed},
		{"bad base64", "not!!base64", "base64", "", ErrMalformed},
		{"ragged buffer", base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4, 5}), "base64", "", ErrInvalidDataLen},
		{"unknown encoding", "1,2", "hex", "", ErrUnsupportedEncoding},
		{"unknown compression", base64.StdEncoding.EncodeToString([]byte{0, 0, 0, 0}), "base64", "zstd", ErrUnsupportedCompression},
		{"truncated zlib", base64.StdEncoding.EncodeToString([]byte{0x78}), "base64", "zlib", ErrDecompress},
		{"corrupt gzip", base64.StdEncoding.EncodeToString([]byte{0x1f, 0x8b, 0xff, 0x00}), "base64", "gzip", ErrDecompress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeTileData(tt.payload, tt.encoding, tt.compression)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeTruncatedZlibStream(t *testing.T) {
	full := zlibPayload(t, []uint32{1, 2, 3, 4, 5, 6, 7, 8})
	raw, err := base64.StdEncoding.DecodeString(full)
	if err != nil {
		t.Fatal(err)
	}
	cut := base64.StdEncoding.EncodeToString(raw[:len(raw)/2])
	if _, err := decodeTileData(cut, "base64", "zlib"); !errors.Is(err, ErrDecompress) {
		t.Errorf("err = %v, want %v", err, ErrDecompress)
	}
}
