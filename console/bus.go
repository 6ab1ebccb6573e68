// Package console wires the CPU, PPU, mapper and joypad into one NES:
// the address-decoded system bus the CPU reads and writes through, and
// the synchronizer that clocks everything at the fixed 3 PPU dots per
// CPU cycle ratio.
package console

import (
	"fmt"
	"log"

	"github.com/bwalton/nescore/joypad"
	"github.com/bwalton/nescore/mappers"
	"github.com/bwalton/nescore/ppu"
)

const (
	NES_BASE_MEMORY = 0x800 // 2KB built in RAM

	MAX_NES_BASE_RAM     = 0x1FFF
	MAX_PPU_REG_MIRRORED = 0x3FFF
	MAX_IO_REG           = 0x4018
	MAX_SRAM             = 0x7FFF
)

const (
	OAMDMA  = 0x4014 // Triggers DMA from CPU memory to OAM
	JOYPAD1 = 0x4016
	JOYPAD2 = 0x4017
)

// Bus implements mos6502.Bus for a cartridge session. It is the CPU's
// only window onto the rest of the machine; the PPU and mapper are
// owned by the synchronizer and reached here through plain references,
// never recursively ticked from inside a bus call.
type Bus struct {
	ram    []uint8
	ppu    *ppu.PPU
	mapper mappers.Mapper
	pad    *joypad.Joypad

	// stallCPU is wired in by the synchronizer after both the bus
	// and the CPU exist, so OAMDMA can charge its cycle penalty
	// without the bus holding a reference back to the CPU.
	stallCPU func(n int)

	cycleParity func() bool // true on an odd CPU cycle, for OAMDMA's 513/514 split

	// setIRQ mirrors the mapper's sustained IRQ output onto the
	// CPU's IRQ line after every PRG write, so a game's acknowledge
	// write (MMC3's $E000) deasserts IRQ immediately rather than on
	// the next scanline.
	setIRQ func(asserted bool)

	logBusFaults bool
}

// newBus constructs a bus wired to m (the cartridge's mapper), p (the
// PPU) and pad. SetStallFunc, SetCycleParityFunc and SetIRQFunc are
// wired by the synchronizer immediately afterward, before the first
// instruction runs.
func newBus(m mappers.Mapper, p *ppu.PPU, pad *joypad.Joypad) *Bus {
	return &Bus{mapper: m, ppu: p, pad: pad, ram: make([]uint8, NES_BASE_MEMORY)}
}

// SetStallFunc wires the callback used to charge OAMDMA's CPU stall.
func (b *Bus) SetStallFunc(f func(n int)) { b.stallCPU = f }

// SetCycleParityFunc wires the callback the bus uses to decide whether
// an OAMDMA transfer costs 513 or 514 cycles (514 when it starts on an
// odd CPU cycle).
func (b *Bus) SetCycleParityFunc(f func() bool) { b.cycleParity = f }

// SetIRQFunc wires the callback used to level the CPU's IRQ line from
// the mapper's sustained IRQAsserted state.
func (b *Bus) SetIRQFunc(f func(asserted bool)) { b.setIRQ = f }

// EnableBusFaultLogging turns on logging of writes into unmapped ROM
// space, the core's BusFault condition. It is never fatal.
func (b *Bus) EnableBusFaultLogging(on bool) { b.logBusFaults = on }

func (b *Bus) Read(addr uint16) uint8 {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		return b.ram[addr&0x7FF]
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored between 0x2000 and 0x4000
		return b.ppu.ReadReg(addr & 0x2007)
	case addr == JOYPAD1:
		return b.pad.Read4016()
	case addr == JOYPAD2:
		return b.pad.Read4017()
	case addr < MAX_IO_REG:
		// APU registers are out of scope and read as open bus
		return 0
	default:
		return b.mapper.PrgRead(addr)
	}
}

func (b *Bus) Write(addr uint16, val uint8) {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		b.ram[addr&0x07FF] = val
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored between 0x2000 and 0x4000
		b.ppu.WriteReg(addr&0x2007, val)
	case addr == OAMDMA:
		b.doOAMDMA(val)
	case addr == JOYPAD1:
		b.pad.WriteStrobe(val)
	case addr < MAX_IO_REG:
		// APU registers are out of scope; writes accepted and
		// ignored
	case addr <= MAX_SRAM:
		// No PRG-RAM board in the supported mapper set: a
		// BusFault class write into unmapped space, logged and
		// ignored, never fatal.
		if b.logBusFaults {
			log.Printf("console: BusFault write 0x%02x to unmapped 0x%04x (ignored)", val, addr)
		}
	default:
		b.mapper.PrgWrite(addr, val)
		if b.setIRQ != nil {
			b.setIRQ(b.mapper.IRQAsserted())
		}
	}
}

// doOAMDMA copies 256 bytes from CPU page val<<8 into OAM through the
// OAMDATA port (so the copy starts at the PPU's current OAMADDR), then
// charges the CPU 513 or 514 stall cycles.
func (b *Bus) doOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.ppu.WriteReg(ppu.OAMDATA, b.Read(base+uint16(i)))
	}
	cycles := 513
	if b.cycleParity != nil && b.cycleParity() {
		cycles = 514
	}
	if b.stallCPU != nil {
		b.stallCPU(cycles)
	}
}

func (b *Bus) String() string {
	return fmt.Sprintf("console.Bus{mapper=%s}", b.mapper.Name())
}
