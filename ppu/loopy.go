package ppu

// loopy packs the PPU's internal scroll/address registers (v and t) in the
// canonical layout:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
//
// Only the low 15 bits are ever meaningful.
type loopy struct {
	data uint16
}

func (l *loopy) coarseX() uint16 { return l.data & 0x001F }

func (l *loopy) setCoarseX(n uint16) { l.data = (l.data & 0xFFE0) | (n & 0x001F) }

func (l *loopy) incrementCoarseX() {
	if l.coarseX() == 31 {
		l.data &^= 0x001F
		l.data ^= 0x0400 // wrap into the next horizontal nametable
	} else {
		l.data++
	}
}

func (l *loopy) coarseY() uint16 { return (l.data & 0x03E0) >> 5 }

func (l *loopy) setCoarseY(n uint16) { l.data = (l.data & 0xFC1F) | ((n & 0x001F) << 5) }

// incrementFineY implements the nesdev "increment vertical position"
// recipe: fine Y rolls into coarse Y, which itself wraps (with a
// nametable-select flip) at row 29, the last row of actual tile data; rows
// 30-31 are attribute space and wrap silently without flipping.
func (l *loopy) incrementFineY() {
	if l.fineY() < 7 {
		l.data += 0x1000
		return
	}
	l.data &^= 0x7000
	y := l.coarseY()
	switch y {
	case 29:
		y = 0
		l.data ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	l.setCoarseY(y)
}

func (l *loopy) setFineY(n uint16) { l.data = (l.data &^ 0x7000) | ((n & 0x0007) << 12) }

func (l *loopy) fineY() uint16 { return (l.data & 0x7000) >> 12 }

func (l *loopy) nametableX() uint16 { return (l.data & 0x0400) >> 10 }
func (l *loopy) nametableY() uint16 { return (l.data & 0x0800) >> 11 }

// copyHorizontalBits copies the nametable-X and coarse-X bits from t into
// v, as hardware does at dot 257 of every scanline.
func (v *loopy) copyHorizontalBits(t *loopy) {
	v.data = (v.data &^ 0x041F) | (t.data & 0x041F)
}

// copyVerticalBits copies fine-Y, nametable-Y and coarse-Y from t into v,
// as hardware does at dots 280-304 of the pre-render scanline.
func (v *loopy) copyVerticalBits(t *loopy) {
	v.data = (v.data &^ 0x7BE0) | (t.data & 0x7BE0)
}
