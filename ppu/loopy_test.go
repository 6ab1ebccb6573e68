package ppu

import (
	"testing"
)

func TestLoopyGet(t *testing.T) {
	cases := []struct {
		data                           uint16
		wantCoarseX, wantCoarseY       uint16
		wantNameTableX, wantNameTableY uint16
		wantFineY                      uint16
	}{
		{0b0000_0000_0000_0000, 0, 0, 0, 0, 0},
		{0b0111_1011_1001_1000, 0b11000, 0b11100, 0, 1, 0b111},
		{0b0011_0111_1001_0111, 0b10111, 0b11100, 1, 0, 0b011},
		{0b0011_1111_1001_0111, 0b10111, 0b11100, 1, 1, 0b011},
		{0b0011_0011_1011_0111, 0b10111, 0b11101, 0, 0, 0b011},
		{0b0011_0000_0001_0111, 0b10111, 0, 0, 0, 0b011},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		cx, cy, ntx, nty, fy := l.coarseX(), l.coarseY(), l.nametableX(), l.nametableY(), l.fineY()
		if cx != tc.wantCoarseX || cy != tc.wantCoarseY || ntx != tc.wantNameTableX || nty != tc.wantNameTableY || fy != tc.wantFineY {
			t.Errorf("%d: Got %05b, %05b, %b, %b, %03b, wanted %05b, %05b, %b, %b, %03b", i, cx, cy, ntx, nty, fy, tc.wantCoarseX, tc.wantCoarseY, tc.wantNameTableX, tc.wantNameTableY, tc.wantFineY)
		}
	}
}

func TestLoopyIncrementCoarseXWrapsIntoNextNametable(t *testing.T) {
	var l loopy
	l.setCoarseX(31)
	l.incrementCoarseX()
	if l.coarseX() != 0 {
		t.Fatalf("coarseX after wrap = %d, wanted 0", l.coarseX())
	}
	if l.nametableX() != 1 {
		t.Fatalf("nametableX after coarseX wrap = %d, wanted 1", l.nametableX())
	}
}

func TestLoopyFineYWrapsIntoCoarseYAtRow29(t *testing.T) {
	var l loopy
	l.setFineY(7)
	l.setCoarseY(29)
	l.incrementFineY()
	if l.fineY() != 0 {
		t.Fatalf("fineY after wrap = %d, wanted 0", l.fineY())
	}
	if l.coarseY() != 0 {
		t.Fatalf("coarseY after row 29 wrap = %d, wanted 0", l.coarseY())
	}
	if l.nametableY() != 1 {
		t.Fatalf("nametableY after row 29 wrap = %d, wanted 1", l.nametableY())
	}
}

func TestLoopyFineYWrapsAtRow31WithoutFlip(t *testing.T) {
	var l loopy
	l.setFineY(7)
	l.setCoarseY(31)
	l.incrementFineY()
	if l.coarseY() != 0 {
		t.Fatalf("coarseY after row 31 wrap = %d, wanted 0", l.coarseY())
	}
	if l.nametableY() != 0 {
		t.Fatalf("nametableY must not flip on a row 31 wrap, got %d", l.nametableY())
	}
}

func TestLoopyScrollThenAddrSequence(t *testing.T) {
	// PPUADDR's two writes fully overwrite t's 15 bits, so a prior
	// PPUSCROLL pair must not leak into the final v.
	p := New(&stubBus{}, nil)
	p.WriteReg(PPUSCROLL, 0x7D)
	p.WriteReg(PPUSCROLL, 0x5E)
	p.WriteReg(PPUADDR, 0x3D)
	p.WriteReg(PPUADDR, 0xF0)

	if p.v.data != 0x3DF0 {
		t.Fatalf("v after PPUADDR sequence = 0x%04x, wanted 0x3df0", p.v.data)
	}
}
