package mappers

import (
	"github.com/bwalton/nescore/nesrom"
	"github.com/bwalton/nescore/ppu"
)

func init() { register(4, newMMC3) }

// mmc3 implements mapper 4: eight bank registers (R0-R7) loaded through a
// bank-select/bank-data register pair, independently switchable PRG mode
// and CHR mode bits, software mirroring, and a scanline IRQ counter that
// the PPU clocks once per visible/pre-render scanline, while rendering is
// enabled, via NotifyScanline.
type mmc3 struct {
	rom *nesrom.ROM

	bankSelect uint8 // last value written to $8000 (even)
	bank       [8]uint8

	mirror uint8

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	irqPending bool // sustained IRQ output, cleared by the $E000 acknowledge write
}

func newMMC3(rom *nesrom.ROM) Mapper {
	return &mmc3{rom: rom, mirror: mirrorFromHeader(rom)}
}

func (m *mmc3) ID() uint16   { return 4 }
func (m *mmc3) Name() string { return "MMC3" }

func (m *mmc3) prgMode() uint8 { return (m.bankSelect >> 6) & 1 }
func (m *mmc3) chrMode() uint8 { return (m.bankSelect >> 7) & 1 }

func (m *mmc3) PrgRead(addr uint16) uint8 {
	slot := (addr - 0x8000) / 0x2000
	secondLast := -2
	last := -1
	r6, r7 := int(m.bank[6]), int(m.bank[7])

	var bank int
	switch {
	case slot == 0:
		if m.prgMode() == 0 {
			bank = r6
		} else {
			bank = secondLast
		}
	case slot == 1:
		bank = r7
	case slot == 2:
		if m.prgMode() == 0 {
			bank = secondLast
		} else {
			bank = r6
		}
	default:
		bank = last
	}
	return m.rom.PrgBank(bank, 8192)[addr&0x1FFF]
}

func (m *mmc3) PrgWrite(addr uint16, val uint8) {
	even := addr%2 == 0
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		if even {
			m.bankSelect = val
		} else {
			m.bank[m.bankSelect&0x07] = val
		}
	case addr >= 0xA000 && addr < 0xC000:
		if even {
			if val&1 == 0 {
				m.mirror = ppu.MIRROR_VERTICAL
			} else {
				m.mirror = ppu.MIRROR_HORIZONTAL
			}
		}
		// odd: PRG-RAM protect, not modeled
	case addr >= 0xC000 && addr < 0xE000:
		if even {
			m.irqLatch = val
		} else {
			m.irqReload = true
		}
	default: // $E000-$FFFF
		if even {
			m.irqEnabled = false
			m.irqPending = false // $E000 both disables and acknowledges
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) ChrRead(addr uint16) uint8 {
	return m.chrBankFor(addr)[m.chrOffsetFor(addr)]
}

func (m *mmc3) ChrWrite(addr uint16, val uint8) {
	if m.rom.ChrIsRAM() {
		m.chrBankFor(addr)[m.chrOffsetFor(addr)] = val
	}
}

// chrLayout resolves addr to (register index, byte offset within that
// register's window), honoring the CHR-mode bit that swaps the 2K and 1K
// halves of the $0000-$1FFF window.
func (m *mmc3) chrLayout(addr uint16) (reg int, twoK bool, offset uint16) {
	a := addr & 0x1FFF
	half := a < 0x1000
	if m.chrMode() == 1 {
		half = !half
	}
	if half {
		if a&0x0800 == 0 {
			return 0, true, a & 0x07FF
		}
		return 1, true, a & 0x07FF
	}
	quad := (a & 0x0C00) >> 10
	return 2 + int(quad), false, a & 0x03FF
}

func (m *mmc3) chrBankFor(addr uint16) []byte {
	reg, twoK, _ := m.chrLayout(addr)
	bank := int(m.bank[reg])
	if twoK {
		return m.rom.ChrBank(bank>>1, 2048)
	}
	return m.rom.ChrBank(bank, 1024)
}

func (m *mmc3) chrOffsetFor(addr uint16) uint16 {
	_, _, off := m.chrLayout(addr)
	return off
}

func (m *mmc3) MirroringMode() uint8 { return m.mirror }

// NotifyScanline clocks the IRQ counter. Real MMC3 clocks it off PPU
// address-line A12 transitions; this core approximates that with one
// clock per rendered scanline, which is accurate for the common case of
// one background/sprite fetch pattern per scanline.
func (m *mmc3) NotifyScanline() bool {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
	return m.irqPending
}

// IRQAsserted reports whether this mapper's IRQ line is still held low. It
// stays true across scanlines until a write to $E000 acknowledges it, even
// though NotifyScanline only clocks the counter once per scanline.
func (m *mmc3) IRQAsserted() bool { return m.irqPending }
