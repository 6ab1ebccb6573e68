package nesrom

import (
	"bytes"
	"testing"
)

func buildImage(prgBanks, chrBanks int, flags6, flags7 byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(byte(prgBanks))
	buf.WriteByte(byte(chrBanks))
	buf.WriteByte(flags6)
	buf.WriteByte(flags7)
	buf.Write(make([]byte, 8)) // flags8-10 + unused padding, all zero
	buf.Write(make([]byte, prgBlockSize*prgBanks))
	buf.Write(make([]byte, chrBlockSize*chrBanks))
	return buf.Bytes()
}

func TestLoadParsesBankCounts(t *testing.T) {
	img := buildImage(2, 1, 0x11, 0x00) // mapper 1, mirroring vertical
	rom, err := load("test.nes", bytes.NewReader(img))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rom.PrgSize() != prgBlockSize*2 {
		t.Errorf("PrgSize = %d, want %d", rom.PrgSize(), prgBlockSize*2)
	}
	if rom.ChrSize() != chrBlockSize {
		t.Errorf("ChrSize = %d, want %d", rom.ChrSize(), chrBlockSize)
	}
	if rom.MapperNum() != 1 {
		t.Errorf("MapperNum = %d, want 1", rom.MapperNum())
	}
	if rom.MirroringMode() != 1 {
		t.Errorf("MirroringMode = %d, want 1 (vertical)", rom.MirroringMode())
	}
}

func TestLoadWithZeroCHRBanksAllocatesCHRRAM(t *testing.T) {
	img := buildImage(1, 0, 0x00, 0x00)
	rom, err := load("test.nes", bytes.NewReader(img))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !rom.ChrIsRAM() {
		t.Fatalf("expected CHR-RAM when chrSize header byte is 0")
	}
	if rom.ChrSize() != chrBlockSize {
		t.Errorf("ChrSize = %d, want one bank (%d)", rom.ChrSize(), chrBlockSize)
	}
}

func TestRejectsBadMagic(t *testing.T) {
	img := buildImage(1, 1, 0, 0)
	img[0] = 'X'
	if _, err := load("test.nes", bytes.NewReader(img)); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestMapperNumberCombinesBothNibbles(t *testing.T) {
	img := buildImage(1, 1, 0x10, 0x40) // low nibble from flags6 high nibble (1), high from flags7 high nibble (4)
	rom, err := load("test.nes", bytes.NewReader(img))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rom.MapperNum() != 0x41 {
		t.Errorf("MapperNum = %#x, want 0x41", rom.MapperNum())
	}
}

func TestIgnoreHighNibbleWhenPaddingIsDirty(t *testing.T) {
	img := buildImage(1, 1, 0x10, 0x40)
	copy(img[7:16], []byte("DiskDude!"))
	rom, err := load("test.nes", bytes.NewReader(img))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// flags7 is now part of "DiskDude!" (0x44), so its high nibble must
	// be ignored, leaving only flags6's high nibble (1).
	if rom.MapperNum() != 1 {
		t.Errorf("MapperNum = %#x, want 1 (high nibble ignored)", rom.MapperNum())
	}
}

func TestTrainerIsReadWhenPresent(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(1)
	buf.WriteByte(1)
	buf.WriteByte(flag6Trainer)
	buf.WriteByte(0)
	buf.Write(make([]byte, 8))
	buf.Write(make([]byte, trainerSize))
	buf.Write(make([]byte, prgBlockSize))
	buf.Write(make([]byte, chrBlockSize))
	rom, err := load("test.nes", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rom.trainer) != trainerSize {
		t.Fatalf("trainer not loaded, len=%d", len(rom.trainer))
	}
}
