package tmxvre

/* Stored tile values pack three orientation flags into their high bits:
Bit 31 (0x80000000) - horizontal flip
Bit 30 (0x40000000) - vertical flip
Bit 29 (0x20000000) - anti-diagonal flip
The remaining 29 bits are the tile identifier. A diagonal flip combined with
the axis flips encodes the editor's 90/270 degree rotations; this codec only
exposes the three booleans and leaves composing them to the renderer.
*/

const (
	GIDHorizontalFlip uint32 = 0x80000000
	GIDVerticalFlip   uint32 = 0x40000000
	GIDDiagonalFlip   uint32 = 0x20000000
	GIDFlipMask              = GIDHorizontalFlip | GIDVerticalFlip | GIDDiagonalFlip
)

// DecodeGID unpacks a raw 32-bit stored value into a Tile. It is total:
// every input is valid, and the returned Index never has the three flag bits
// set.
func DecodeGID(raw uint32) Tile {
	return Tile{
		Index:        raw &^ GIDFlipMask,
		XFlip:        raw&GIDHorizontalFlip != 0,
		YFlip:        raw&GIDVerticalFlip != 0,
		DiagonalFlip: raw&GIDDiagonalFlip != 0,
	}
}
