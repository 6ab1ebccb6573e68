package debugger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bwalton/nescore/mos6502"
	"github.com/bwalton/nescore/ppu"
)

// flatBus is a bare 64KB RAM implementing both mos6502.Bus and ppu.Bus, so
// these tests can drive a CPU+PPU pair without a cartridge or synchronizer.
type flatBus struct {
	mem [0x10000]uint8
}

func (b *flatBus) Read(addr uint16) uint8          { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, val uint8)    { b.mem[addr] = val }
func (b *flatBus) ChrRead(addr uint16) uint8       { return 0 }
func (b *flatBus) ChrWrite(addr uint16, val uint8) {}
func (b *flatBus) MirroringMode() uint8            { return ppu.MIRROR_HORIZONTAL }

// fakeMachine satisfies Machine with a CPU ticking against flatBus and a
// PPU that's never actually clocked, enough to exercise the debugger's
// step/breakpoint/watch logic in isolation from the synchronizer.
type fakeMachine struct {
	bus *flatBus
	cpu *mos6502.CPU
	ppu *ppu.PPU
}

func newFakeMachine() *fakeMachine {
	b := &flatBus{}
	// NOP ($EA) everywhere, reset vector -> $8000.
	for i := range b.mem {
		b.mem[i] = 0xEA
	}
	b.mem[0xFFFC], b.mem[0xFFFD] = 0x00, 0x80
	return &fakeMachine{bus: b, cpu: mos6502.New(b), ppu: ppu.New(b, nil)}
}

func (f *fakeMachine) Tick() int         { return f.cpu.Step() }
func (f *fakeMachine) CPU() *mos6502.CPU { return f.cpu }
func (f *fakeMachine) PPU() *ppu.PPU     { return f.ppu }

func TestStepAdvancesPC(t *testing.T) {
	m := newFakeMachine()
	d := New(m)
	start := m.CPU().PC()
	d.Step()
	if m.CPU().PC() != start+1 {
		t.Fatalf("PC after one NOP step = %04X, want %04X", m.CPU().PC(), start+1)
	}
}

func TestContinueStopsAtBreakpoint(t *testing.T) {
	m := newFakeMachine()
	d := New(m)
	target := m.CPU().PC() + 5
	d.SetBreakpoint(target)

	n := d.Continue(1000)

	if m.CPU().PC() != target {
		t.Fatalf("PC after Continue = %04X, want breakpoint at %04X", m.CPU().PC(), target)
	}
	if n != 5 {
		t.Fatalf("Continue retired %d instructions, want 5", n)
	}
}

func TestContinueStopsAtMaxWithoutBreakpoint(t *testing.T) {
	m := newFakeMachine()
	d := New(m)
	if n := d.Continue(10); n != 10 {
		t.Fatalf("Continue(10) with no breakpoint retired %d, want 10", n)
	}
}

func TestWatchpointFiresOnChange(t *testing.T) {
	m := newFakeMachine()
	d := New(m)

	var gotAddr uint16
	var gotOld, gotNew uint8
	fires := 0
	d.Watch(0x0010, 0x0010, func(addr uint16, old, new uint8) {
		fires++
		gotAddr, gotOld, gotNew = addr, old, new
	})

	m.bus.mem[0x0010] = 0x7F
	d.Step()

	if fires != 1 {
		t.Fatalf("watchpoint fired %d times, want 1", fires)
	}
	if gotAddr != 0x0010 || gotOld != 0xEA || gotNew != 0x7F {
		t.Fatalf("watchpoint callback got (%04X, %02X, %02X), want (0010, EA, 7F)", gotAddr, gotOld, gotNew)
	}

	fires = 0
	d.Step()
	if fires != 0 {
		t.Fatalf("watchpoint fired again with no change, want 0")
	}
}

func TestEnableTraceWritesOneLinePerStep(t *testing.T) {
	m := newFakeMachine()
	d := New(m)
	var buf bytes.Buffer
	d.EnableTrace(&buf)

	d.Step()
	d.Step()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d trace lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "A:") || !strings.Contains(lines[0], "CYC:") {
		t.Fatalf("trace line missing expected fields: %q", lines[0])
	}
}

func TestDumpStateIncludesRegisters(t *testing.T) {
	m := newFakeMachine()
	d := New(m)
	dump := d.DumpState()
	if !strings.Contains(dump, "pc") {
		t.Fatalf("DumpState() didn't mention the program counter: %q", dump)
	}
}
