// Package frame holds the PPU's output: a palette-indexed framebuffer and
// the small bitmap font used to overlay debug text (FPS counters and the
// like) on top of it before handoff to the host.
package frame

const (
	Width  = 256
	Height = 240
)

// RGBA is a fully resolved 32-bit color, alpha always 0xff.
type RGBA struct {
	R, G, B, A uint8
}

// Buffer is the 256x240 palette-indexed picture the PPU renders into once
// per frame. It is single-writer (PPU) / single-reader (host, only during
// the VBlank handoff).
type Buffer struct {
	pixels [Width * Height]uint8
}

// Set stores a palette index at (x, y). Out-of-bounds writes are dropped;
// sprite evaluation and background rendering both produce coordinates that
// can momentarily fall outside the visible area during edge scanlines.
func (b *Buffer) Set(x, y int, idx uint8) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	b.pixels[y*Width+x] = idx
}

// At returns the palette index stored at (x, y).
func (b *Buffer) At(x, y int) uint8 {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0
	}
	return b.pixels[y*Width+x]
}

// RGBAAt resolves the palette index at (x, y) to a concrete color using
// resolve, typically (*ppu.PPU).Resolve.
func (b *Buffer) RGBAAt(x, y int, resolve func(idx uint8) RGBA) RGBA {
	return resolve(b.At(x, y))
}

// Pixels exposes the raw indexed plane for a host that wants to convert the
// whole frame in one pass (cmd/gintendo reads pixels one at a time via At
// instead).
func (b *Buffer) Pixels() *[Width * Height]uint8 {
	return &b.pixels
}

// font3x5 is a minimal 3x5 bitmap digit font, enough to render an FPS
// counter in the corner of the frame. Each entry is 5 rows of a 3-bit mask,
// MSB-first.
var font3x5 = map[rune][5]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b001, 0b001},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	' ': {0, 0, 0, 0, 0},
}

// DrawText blits s onto the buffer at (x, y) using the overlay font and
// palette index idx, for any rune with a glyph; unknown runes are skipped.
func DrawText(b *Buffer, s string, x, y int, idx uint8) {
	cursor := x
	for _, r := range s {
		glyph, ok := font3x5[r]
		if !ok {
			cursor += 4
			continue
		}
		for row, bits := range glyph {
			for col := 0; col < 3; col++ {
				if bits&(1<<(2-col)) != 0 {
					b.Set(cursor+col, y+row, idx)
				}
			}
		}
		cursor += 4
	}
}
