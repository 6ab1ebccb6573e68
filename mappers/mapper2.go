package mappers

import "github.com/bwalton/nescore/nesrom"

func init() { register(2, newUxROM) }

// uxrom implements mapper 2: a single PRG bank-select register switches
// 16 KiB at $8000-$BFFF; $C000-$FFFF is hardwired to the cartridge's last
// bank. CHR is always RAM (8 KiB, never banked).
type uxrom struct {
	rom     *nesrom.ROM
	prgBank uint8
	mirror  uint8
}

func newUxROM(rom *nesrom.ROM) Mapper {
	return &uxrom{rom: rom, mirror: mirrorFromHeader(rom)}
}

func (m *uxrom) ID() uint16   { return 2 }
func (m *uxrom) Name() string { return "UxROM" }

func (m *uxrom) PrgRead(addr uint16) uint8 {
	if addr < 0xC000 {
		return m.rom.PrgBank(int(m.prgBank), 16384)[addr&0x3FFF]
	}
	return m.rom.PrgBank(-1, 16384)[addr&0x3FFF]
}

func (m *uxrom) PrgWrite(addr uint16, val uint8) {
	if addr >= 0x8000 {
		m.prgBank = val
	}
}

func (m *uxrom) ChrRead(addr uint16) uint8 {
	return m.rom.ChrBank(0, 8192)[addr&0x1FFF]
}

func (m *uxrom) ChrWrite(addr uint16, val uint8) {
	m.rom.ChrBank(0, 8192)[addr&0x1FFF] = val
}

func (m *uxrom) MirroringMode() uint8 { return m.mirror }
func (m *uxrom) NotifyScanline() bool      { return false }
func (m *uxrom) IRQAsserted() bool         { return false }
