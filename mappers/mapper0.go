package mappers

import "github.com/bwalton/nescore/nesrom"

func init() { register(0, newNROM) }

// nrom implements mapper 0 (NROM): no bank switching at all. PRG is 16 KiB
// (mirrored at $C000) or 32 KiB; CHR is a single fixed 8 KiB bank, ROM or
// RAM.
type nrom struct {
	rom     *nesrom.ROM
	prg     []byte
	prgMask uint16 // 0x3FFF for 16K carts, 0x7FFF for 32K carts
	mirror  uint8
}

func newNROM(rom *nesrom.ROM) Mapper {
	mask := uint16(0x3FFF)
	if rom.PrgSize() > 0x4000 {
		mask = 0x7FFF
	}
	return &nrom{rom: rom, prg: rom.PrgBank(0, int(mask)+1), prgMask: mask, mirror: mirrorFromHeader(rom)}
}

func (m *nrom) ID() uint16   { return 0 }
func (m *nrom) Name() string { return "NROM" }

func (m *nrom) PrgRead(addr uint16) uint8 {
	return m.prg[addr&m.prgMask]
}

func (m *nrom) PrgWrite(addr uint16, val uint8) {} // PRG is ROM; ignored per BusFault semantics

func (m *nrom) ChrRead(addr uint16) uint8 {
	return m.rom.ChrBank(0, 0x2000)[addr&0x1FFF]
}

func (m *nrom) ChrWrite(addr uint16, val uint8) {
	if m.rom.ChrIsRAM() {
		m.rom.ChrBank(0, 0x2000)[addr&0x1FFF] = val
	}
}

func (m *nrom) MirroringMode() uint8 { return m.mirror }
func (m *nrom) NotifyScanline() bool      { return false }
func (m *nrom) IRQAsserted() bool         { return false }
