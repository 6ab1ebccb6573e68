package mappers

import (
	"bytes"
	"os"
	"testing"

	"github.com/bwalton/nescore/nesrom"
	"github.com/bwalton/nescore/ppu"
)

func newTempFile(t *testing.T, data []byte) (string, error) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "mapper-test-*.nes")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func buildROM(t *testing.T, prgBanks, chrBanks int, flags6, flags7 byte, fill func(prg, chr []byte)) *nesrom.ROM {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(byte(prgBanks))
	buf.WriteByte(byte(chrBanks))
	buf.WriteByte(flags6)
	buf.WriteByte(flags7)
	buf.Write(make([]byte, 8))
	prg := make([]byte, 16384*prgBanks)
	chrSize := chrBanks
	if chrSize == 0 {
		chrSize = 1
	}
	chr := make([]byte, 8192*chrSize)
	if fill != nil {
		fill(prg, chr)
	}
	buf.Write(prg)
	if chrBanks > 0 {
		buf.Write(chr)
	}

	rom, err := nesrom.New(writeTemp(t, buf.Bytes()))
	if err != nil {
		t.Fatalf("buildROM: %v", err)
	}
	return rom
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	f, err := newTempFile(t, data)
	if err != nil {
		t.Fatalf("writeTemp: %v", err)
	}
	return f
}

func TestNROMMirrorsSmallPRGAcrossBothBanks(t *testing.T) {
	rom := buildROM(t, 1, 1, 0x00, 0x00, func(prg, chr []byte) {
		prg[0] = 0xAA
		prg[len(prg)-1] = 0xBB
	})
	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.PrgRead(0x8000) != 0xAA {
		t.Errorf("PrgRead($8000) = %02X, want AA", m.PrgRead(0x8000))
	}
	if m.PrgRead(0xC000) != 0xAA {
		t.Errorf("PrgRead($C000) = %02X, want AA (16K mirror)", m.PrgRead(0xC000))
	}
	if m.PrgRead(0xFFFF) != 0xBB {
		t.Errorf("PrgRead($FFFF) = %02X, want BB", m.PrgRead(0xFFFF))
	}
	if m.MirroringMode() != ppu.MIRROR_HORIZONTAL {
		t.Errorf("MirroringMode = %v, want horizontal", m.MirroringMode())
	}
}

func TestUxROMFixesLastBankAndSwitchesLow(t *testing.T) {
	rom := buildROM(t, 4, 0, 0x20, 0x00, func(prg, chr []byte) {
		prg[0] = 0x01       // bank 0 first byte
		prg[16384] = 0x02   // bank 1 first byte
		prg[16384*3] = 0xFE // bank 3 (last) first byte
	})
	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := m.PrgRead(0xC000); got != 0xFE {
		t.Fatalf("fixed last bank PrgRead($C000) = %02X, want FE", got)
	}
	m.PrgWrite(0x8000, 1)
	if got := m.PrgRead(0x8000); got != 0x02 {
		t.Fatalf("after selecting bank 1, PrgRead($8000) = %02X, want 02", got)
	}
}

func TestCNROMSwitchesCHRBank(t *testing.T) {
	rom := buildROM(t, 1, 2, 0x30, 0x00, func(prg, chr []byte) {
		chr[0] = 0x10
		chr[8192] = 0x20
	})
	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := m.ChrRead(0); got != 0x10 {
		t.Fatalf("ChrRead(0) before bank switch = %02X, want 10", got)
	}
	m.PrgWrite(0x8000, 1)
	if got := m.ChrRead(0); got != 0x20 {
		t.Fatalf("ChrRead(0) after bank switch = %02X, want 20", got)
	}
}

func TestMMC1PRGMode3FixesLastBankAtC000(t *testing.T) {
	rom := buildROM(t, 8, 0, 0x10, 0x00, func(prg, chr []byte) {
		prg[16384*5] = 0x55 // bank 5
		prg[16384*7] = 0x77 // bank 7 (last)
	})
	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	mm := m.(*mmc1)
	loadMMC1(mm, 0xE000, 0x05) // PRG bank register = 5

	if got := m.PrgRead(0x8000); got != 0x55 {
		t.Fatalf("PrgRead($8000) with bank 5 selected = %02X, want 55", got)
	}
	if got := m.PrgRead(0xC000); got != 0x77 {
		t.Fatalf("PrgRead($C000) fixed-last = %02X, want 77", got)
	}
}

// loadMMC1 feeds five bits through the serial port, LSB first, the way
// real MMC1-writing code does.
func loadMMC1(m *mmc1, addr uint16, val uint8) {
	for i := 0; i < 5; i++ {
		m.PrgWrite(addr, (val>>i)&1)
	}
}

func TestMMC3BankSelectAndIRQCounter(t *testing.T) {
	rom := buildROM(t, 8, 8, 0x40, 0x00, nil) // mapper 4
	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	mm := m.(*mmc3)
	mm.PrgWrite(0xC000, 4) // IRQ latch = 4
	mm.PrgWrite(0xE001, 0) // enable IRQ
	mm.PrgWrite(0xC001, 0) // request reload

	var fired bool
	for i := 0; i < 6; i++ {
		if mm.NotifyScanline() {
			fired = true
			break
		}
	}
	if !fired {
		t.Fatalf("expected IRQ to fire within 6 scanlines of a latch=4 reload")
	}
}
