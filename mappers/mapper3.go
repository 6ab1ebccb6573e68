package mappers

import "github.com/bwalton/nescore/nesrom"

func init() { register(3, newCNROM) }

// cnrom implements mapper 3: fixed PRG (NROM-style, 16K mirrored or 32K),
// with an 8 KiB CHR bank selected by any write to $8000-$FFFF.
type cnrom struct {
	rom     *nesrom.ROM
	prg     []byte
	prgMask uint16
	chrBank uint8
	mirror  uint8
}

func newCNROM(rom *nesrom.ROM) Mapper {
	mask := uint16(0x3FFF)
	if rom.PrgSize() > 0x4000 {
		mask = 0x7FFF
	}
	return &cnrom{rom: rom, prg: rom.PrgBank(0, int(mask)+1), prgMask: mask, mirror: mirrorFromHeader(rom)}
}

func (m *cnrom) ID() uint16   { return 3 }
func (m *cnrom) Name() string { return "CNROM" }

func (m *cnrom) PrgRead(addr uint16) uint8   { return m.prg[addr&m.prgMask] }
func (m *cnrom) PrgWrite(addr uint16, val uint8) {
	if addr >= 0x8000 {
		m.chrBank = val & 0x03 // most CNROM boards only ever wire 2 bits
	}
}

func (m *cnrom) ChrRead(addr uint16) uint8 {
	return m.rom.ChrBank(int(m.chrBank), 8192)[addr&0x1FFF]
}

func (m *cnrom) ChrWrite(addr uint16, val uint8) {
	if m.rom.ChrIsRAM() {
		m.rom.ChrBank(int(m.chrBank), 8192)[addr&0x1FFF] = val
	}
}

func (m *cnrom) MirroringMode() uint8 { return m.mirror }
func (m *cnrom) NotifyScanline() bool      { return false }
func (m *cnrom) IRQAsserted() bool         { return false }
