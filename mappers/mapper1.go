package mappers

import (
	"github.com/bwalton/nescore/nesrom"
	"github.com/bwalton/nescore/ppu"
)

func init() { register(1, newMMC1) }

// mmc1 implements mapper 1: a serial-shift-register-programmed bank
// switcher with selectable PRG mode (32K switch, or 16K fixed-low/fixed-high)
// and CHR mode (one 8K bank or two independent 4K banks), plus
// software-controlled mirroring.
type mmc1 struct {
	rom *nesrom.ROM

	shift      uint8
	shiftCount uint8

	control uint8 // bit0-1 mirroring, bit2-3 prg mode, bit4 chr mode
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

func newMMC1(rom *nesrom.ROM) Mapper {
	return &mmc1{rom: rom, control: 0x0C}
}

func (m *mmc1) ID() uint16   { return 1 }
func (m *mmc1) Name() string { return "MMC1" }

func (m *mmc1) PrgRead(addr uint16) uint8 {
	bankSize := 16384
	switch (m.control >> 2) & 0x03 {
	case 0, 1:
		bank := int(m.prgBank&0x0E) >> 1
		return m.rom.PrgBank(bank, 32768)[addr&0x7FFF]
	case 2:
		if addr < 0xC000 {
			return m.rom.PrgBank(0, bankSize)[addr&0x3FFF]
		}
		return m.rom.PrgBank(int(m.prgBank&0x0F), bankSize)[addr&0x3FFF]
	default: // 3
		if addr < 0xC000 {
			return m.rom.PrgBank(int(m.prgBank&0x0F), bankSize)[addr&0x3FFF]
		}
		return m.rom.PrgBank(-1, bankSize)[addr&0x3FFF]
	}
}

func (m *mmc1) PrgWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		return
	}
	if val&0x80 != 0 {
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift |= (val & 1) << m.shiftCount
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	switch {
	case addr < 0xA000:
		m.control = m.shift
	case addr < 0xC000:
		m.chrBank0 = m.shift
	case addr < 0xE000:
		m.chrBank1 = m.shift
	default:
		m.prgBank = m.shift
	}
	m.shift = 0
	m.shiftCount = 0
}

func (m *mmc1) ChrRead(addr uint16) uint8 {
	return m.chrByte(addr)
}

func (m *mmc1) ChrWrite(addr uint16, val uint8) {
	if m.rom.ChrIsRAM() {
		m.chrBankFor(addr)[m.chrOffset(addr)] = val
	}
}

func (m *mmc1) chrByte(addr uint16) uint8 {
	return m.chrBankFor(addr)[m.chrOffset(addr)]
}

func (m *mmc1) chrBankFor(addr uint16) []byte {
	if m.control&0x10 == 0 { // 8K mode
		return m.rom.ChrBank(int(m.chrBank0>>1), 8192)
	}
	if addr < 0x1000 {
		return m.rom.ChrBank(int(m.chrBank0), 4096)
	}
	return m.rom.ChrBank(int(m.chrBank1), 4096)
}

func (m *mmc1) chrOffset(addr uint16) uint16 {
	if m.control&0x10 == 0 {
		return addr & 0x1FFF
	}
	return addr & 0x0FFF
}

func (m *mmc1) MirroringMode() uint8 {
	switch m.control & 0x03 {
	case 0:
		return ppu.MIRROR_SINGLE_LOW
	case 1:
		return ppu.MIRROR_SINGLE_HIGH
	case 2:
		return ppu.MIRROR_VERTICAL
	default:
		return ppu.MIRROR_HORIZONTAL
	}
}

func (m *mmc1) NotifyScanline() bool { return false }
func (m *mmc1) IRQAsserted() bool    { return false }
