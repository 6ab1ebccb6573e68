package ppu

type priority uint8

const (
	FRONT priority = iota
	BACK
)

// oam is one sprite entry decoded out of primary or secondary OAM.
type oam struct {
	// Y position of top of sprite. Sprite data is delayed by one
	// scanline; you must subtract 1 from the sprite's Y
	// coordinate before writing it here. Hide a sprite by moving
	// it down offscreen, by writing any values between #$EF-#$FF
	// here.
	y uint8
	// For 8x8 sprites, this is the tile number of this sprite
	// within the pattern table selected in bit 3 of PPUCTRL
	// ($2000). For 8x16 sprites (bit 5 of PPUCTRL set), the PPU
	// ignores the pattern table selection and selects a pattern
	// table from bit 0 of this number.
	tileId uint8

	palette      uint8
	renderP      priority
	flipV, flipH bool

	// X position of left side of sprite.
	x uint8

	// Which primary OAM slot this sprite came from; sprite 0 hit
	// detection needs to know whether slot 0 survived evaluation.
	index int
}

func OAMFromBytes(in []uint8, index int) oam {
	// 76543210 -> in[2]
	// ||||||||
	// ||||||++- Palette (4 to 7) of sprite
	// |||+++--- Unimplemented (read 0)
	// ||+------ Priority (0: in front of background; 1: behind background)
	// |+------- Flip sprite horizontally
	// +-------- Flip sprite vertically
	return oam{
		y:       in[0],
		tileId:  in[1],
		palette: (in[2] & 0x03),
		renderP: priority((in[2] & 0x20) >> 5),
		flipH:   ((in[2] & 0x40) >> 6) == 1,
		flipV:   ((in[2] & 0x80) >> 7) == 1,
		x:       in[3],
		index:   index,
	}
}

func (o oam) attributes() uint8 {
	a := o.palette | uint8(o.renderP)<<5
	if o.flipH {
		a |= (1 << 6)
	}
	if o.flipV {
		a |= (1 << 7)
	}

	return a
}

// evaluateSprites implements the "64 in, 8 out" OAM scan that happens
// across dots 65-256 of a visible scanline: primary OAM is walked
// looking for sprites whose Y range intersects the *next* scanline.
// Only the first 8 hits survive into secondary OAM. The search for a 9th
// reproduces the hardware's overflow bug: every miss advances the byte
// index within a sprite along with the sprite index, so tile, attribute
// and X bytes get compared as Y and the overflow flag can be set or missed
// spuriously.
func evaluateSprites(primary [OAM_SIZE]uint8, nextScanline, spriteHeight int) (secondary []oam, overflow bool) {
	for i := 0; i < 64; i++ {
		base := i * 4
		row := nextScanline - int(primary[base])
		if row < 0 || row >= spriteHeight {
			continue
		}
		secondary = append(secondary, OAMFromBytes(primary[base:base+4], i))
		if len(secondary) < 8 {
			continue
		}
		m := 0
		for n := i + 1; n < 64; n++ {
			r := nextScanline - int(primary[n*4+m])
			if r >= 0 && r < spriteHeight {
				overflow = true
				break
			}
			m = (m + 1) & 3
		}
		break
	}
	return secondary, overflow
}
