// Package mappers implements and registers mappers that are
// referenced numerically by iNES ROM files.
package mappers

import (
	"fmt"

	"github.com/bwalton/nescore/nesrom"
	"github.com/bwalton/nescore/ppu"
)

// Mapper mediates every CPU and PPU access into cartridge space. Its only
// mutable state is its bank-selection registers; any read of PRG/CHR space
// yields the byte currently mapped, and writes to a mapper's control
// window reconfigure banks atomically between CPU instructions.
type Mapper interface {
	ID() uint16
	Name() string

	// PrgRead/PrgWrite take the raw CPU address ($8000-$FFFF); mappers
	// with PRG RAM windows below $8000 handle $6000-$7FFF through the
	// same two methods.
	PrgRead(addr uint16) uint8
	PrgWrite(addr uint16, val uint8)
	// ChrRead/ChrWrite take the raw PPU address ($0000-$1FFF).
	ChrRead(addr uint16) uint8
	ChrWrite(addr uint16, val uint8)

	// MirroringMode reports which ppu.MIRROR_* layout tilemap
	// data is stored in.
	MirroringMode() uint8

	// NotifyScanline is called once per visible/pre-render scanline while
	// rendering is enabled (via the PPU's ScanlineNotifier callback) and
	// reports whether the
	// mapper's IRQ counter wants to assert CPU IRQ on this scanline.
	NotifyScanline() bool

	// IRQAsserted reports the mapper's current sustained IRQ output
	// level. The bus queries this after every PrgWrite so that a game's
	// acknowledge write (MMC3's $E000) deasserts CPU IRQ immediately
	// instead of waiting for the next scanline boundary.
	IRQAsserted() bool
}

type factory func(*nesrom.ROM) Mapper

// A global registry of mapper constructors, keyed by mapper id
var allMappers = map[uint16]factory{}

func register(id uint16, f factory) {
	if _, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("Can't re-register mapper id %d.", id))
	}
	allMappers[id] = f
}

// Get returns a mapper for rom's header mapper id or an error if we
// don't have a mapper for that id yet.
func Get(rom *nesrom.ROM) (Mapper, error) {
	f, ok := allMappers[rom.MapperNum()]
	if !ok {
		return nil, fmt.Errorf("unknown mapper id %d", rom.MapperNum())
	}
	return f(rom), nil
}

func mirrorFromHeader(rom *nesrom.ROM) uint8 {
	if rom.FourScreen() {
		return ppu.MIRROR_FOUR_SCREEN
	}
	if rom.MirroringMode() == 1 {
		return ppu.MIRROR_VERTICAL
	}
	return ppu.MIRROR_HORIZONTAL
}
