package console

import (
	"testing"

	"github.com/bwalton/nescore/frame"
	"github.com/bwalton/nescore/joypad"
)

// nopMapper is a testMapper preloaded with NOP ($EA) across all of PRG
// space, so the CPU free-runs at a fixed 2 cycles/instruction without
// needing a real cartridge image.
func nopMapper() *testMapper {
	m := &testMapper{}
	for i := range m.prg {
		m.prg[i] = 0xEA
	}
	// Reset vector -> $8000.
	m.prg[0xFFFC] = 0x00
	m.prg[0xFFFD] = 0x80
	return m
}

// countingHost is a Host double that counts renders and optionally
// advances a synthetic clock by a fixed step on every ElapsedMillis call,
// standing in for the real host the frame-pacing and VBlank-timing
// scenarios describe.
type countingHost struct {
	renders     int
	elapsedStep uint64
	elapsed     uint64
	delays      []uint64
	outcome     HostOutcome
}

func (h *countingHost) Render(f *frame.Buffer) { h.renders++ }

func (h *countingHost) PollEvents(pad *joypad.Joypad) HostOutcome { return h.outcome }

func (h *countingHost) ElapsedMillis() uint64 {
	h.elapsed += h.elapsedStep
	return h.elapsed
}

func (h *countingHost) Delay(ms uint64) { h.delays = append(h.delays, ms) }

func TestVBlankFiresExactlyOncePerFrame(t *testing.T) {
	host := &countingHost{}
	n := newNes(nopMapper(), host)

	var cycles int
	for cycles < 29781 {
		cycles += n.Tick()
	}

	if host.renders != 1 {
		t.Fatalf("renders after one frame's worth of cycles = %d, want 1", host.renders)
	}
}

func TestFramePacingDelaysRemainderOfTargetPeriod(t *testing.T) {
	host := &countingHost{elapsedStep: 5}
	n := newNes(nopMapper(), host)
	n.SetTargetFPS(60) // frameLimitMs = 1000/60 = 16

	for host.renders < 2 {
		n.Tick()
	}

	if len(host.delays) == 0 {
		t.Fatalf("no Delay() call recorded after the second frame")
	}
	if got := host.delays[len(host.delays)-1]; got != 11 {
		t.Fatalf("delay = %dms, want 11ms (16ms target - 5ms elapsed)", got)
	}
}

func TestResetOutcomeResetsCPU(t *testing.T) {
	host := &countingHost{outcome: HostReset}
	n := newNes(nopMapper(), host)

	sp := n.cpu.SP()
	for host.renders < 1 {
		n.Tick()
	}
	if n.cpu.SP() != sp-3 {
		t.Fatalf("SP after reset-on-VBlank = %02X, want %02X", n.cpu.SP(), sp-3)
	}
	if !n.Powered() {
		t.Fatalf("Powered() = false after a Reset outcome, want true")
	}
}

func TestShutdownOutcomeStopsRun(t *testing.T) {
	host := &countingHost{outcome: HostShutdown}
	n := newNes(nopMapper(), host)

	for host.renders < 1 {
		n.Tick()
	}
	if n.Powered() {
		t.Fatalf("Powered() = true after a Shutdown outcome, want false")
	}
}
