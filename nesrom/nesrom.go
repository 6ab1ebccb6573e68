package nesrom

import (
	"fmt"
	"io"
	"os"
)

const (
	trainerSize  = 512
	prgBlockSize = 16384
	chrBlockSize = 8192
)

// ROM holds one loaded cartridge image: its parsed header, optional
// trainer, and PRG/CHR banks. Mapper bank switching never mutates it, only
// which slice of it is currently windowed into CPU/PPU address space; the
// one exception is CHR-RAM, whose writes land in the slice ChrBank returns.
type ROM struct {
	path    string
	h       *header
	trainer []byte
	prg     []byte
	chr     []byte // allocated even when the cartridge uses CHR-RAM
	chrRAM  bool
}

// New loads and parses path as an iNES image.
func New(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nesrom: couldn't open %q: %w", path, err)
	}
	defer f.Close()
	return load(path, f)
}

func load(path string, r io.Reader) (*ROM, error) {
	hb := make([]byte, 16)
	if _, err := io.ReadFull(r, hb); err != nil {
		return nil, fmt.Errorf("nesrom: couldn't read header: %w", err)
	}
	h, err := parseHeader(hb)
	if err != nil {
		return nil, err
	}

	rom := &ROM{path: path, h: h}

	if h.hasTrainer() {
		rom.trainer = make([]byte, trainerSize)
		if _, err := io.ReadFull(r, rom.trainer); err != nil {
			return nil, fmt.Errorf("nesrom: truncated trainer: %w", err)
		}
	}

	rom.prg = make([]byte, prgBlockSize*int(h.prgSize))
	if _, err := io.ReadFull(r, rom.prg); err != nil {
		return nil, fmt.Errorf("nesrom: truncated PRG ROM (wanted %d bytes): %w", len(rom.prg), err)
	}

	if h.chrSize == 0 {
		rom.chrRAM = true
		rom.chr = make([]byte, chrBlockSize) // one bank of CHR-RAM
	} else {
		rom.chr = make([]byte, chrBlockSize*int(h.chrSize))
		if _, err := io.ReadFull(r, rom.chr); err != nil {
			return nil, fmt.Errorf("nesrom: truncated CHR ROM (wanted %d bytes): %w", len(rom.chr), err)
		}
	}

	return rom, nil
}

func (r *ROM) String() string { return fmt.Sprintf("%s: %s", r.path, r.h) }

func (r *ROM) PrgSize() int { return len(r.prg) }
func (r *ROM) ChrSize() int { return len(r.chr) }
func (r *ROM) ChrIsRAM() bool { return r.chrRAM }

// PrgBank returns banksize bytes of PRG ROM starting at bank index n,
// wrapping modulo the ROM's total bank count. A bank select beyond the
// last bank is an invariant of real boards, not an error.
func (r *ROM) PrgBank(n, banksize int) []byte {
	count := len(r.prg) / banksize
	n = ((n % count) + count) % count
	return r.prg[n*banksize : (n+1)*banksize]
}

// ChrBank returns banksize bytes of CHR space starting at bank index n,
// wrapping modulo the bank count the same way PrgBank does.
func (r *ROM) ChrBank(n, banksize int) []byte {
	count := len(r.chr) / banksize
	if count == 0 {
		count = 1
	}
	n = ((n % count) + count) % count
	return r.chr[n*banksize : (n+1)*banksize]
}

func (r *ROM) MapperNum() uint16       { return r.h.mapperNum() }
func (r *ROM) MirroringMode() uint8    { return r.h.mirroringMode() }
func (r *ROM) FourScreen() bool        { return r.h.fourScreen() }
func (r *ROM) HasBatteryBackedRAM() bool { return r.h.hasBattery() }
