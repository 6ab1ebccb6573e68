package console

import (
	"context"

	"github.com/bwalton/nescore/frame"
	"github.com/bwalton/nescore/joypad"
	"github.com/bwalton/nescore/mappers"
	"github.com/bwalton/nescore/mos6502"
	"github.com/bwalton/nescore/nesrom"
	"github.com/bwalton/nescore/ppu"
)

const defaultTargetFPS = 60

// HostOutcome is what the host's PollEvents call tells the synchronizer to
// do next.
type HostOutcome uint8

const (
	HostContinue HostOutcome = iota
	HostReset
	HostShutdown
)

// Host is the capability the synchronizer needs from whatever's driving it
// (an ebiten window, a headless test harness, a "nestest" runner). It is
// called exactly once per VBlank, in this order: Render, then PollEvents,
// then however many ElapsedMillis/Delay calls frame pacing needs.
type Host interface {
	Render(f *frame.Buffer)
	PollEvents(pad *joypad.Joypad) HostOutcome
	ElapsedMillis() uint64
	Delay(ms uint64)
}

// Nes is the synchronizer: it owns the CPU, PPU, mapper, bus and joypad for
// one cartridge session and drives them at the fixed 3-PPU-dots-per-CPU-cycle
// ratio, handing completed frames and interrupts back and forth between the
// CPU and PPU. It is the only thing in the core allowed to tick the PPU.
type Nes struct {
	cpu    *mos6502.CPU
	ppu    *ppu.PPU
	bus    *Bus
	mapper mappers.Mapper
	pad    *joypad.Joypad
	host   Host

	timing  frameTiming
	prevNMI bool // edge-detector for "NMI line asserted", see Tick

	shutdown bool
}

// New constructs a synchronizer for rom, wired to host. It loads the
// mapper from rom's header, powers up the CPU from the reset vector, and
// is ready to Tick or Run.
func New(rom *nesrom.ROM, host Host) (*Nes, error) {
	m, err := mappers.Get(rom)
	if err != nil {
		return nil, err
	}
	return newNes(m, host), nil
}

// newNes builds a synchronizer around an already-constructed mapper,
// shared by New and by tests that drive a bare test double instead of a
// parsed cartridge image.
func newNes(m mappers.Mapper, host Host) *Nes {
	pad := &joypad.Joypad{}
	n := &Nes{mapper: m, pad: pad, host: host, timing: newFrameTiming(defaultTargetFPS)}

	n.ppu = ppu.New(m, m.NotifyScanline)
	n.bus = newBus(m, n.ppu, pad)
	n.cpu = mos6502.New(n.bus)
	n.bus.SetStallFunc(n.cpu.AddDMACycles)
	n.bus.SetCycleParityFunc(func() bool { return n.cpu.Cycles()%2 != 0 })
	n.bus.SetIRQFunc(n.cpu.SetIRQ)

	return n
}

// SetTargetFPS changes the synchronizer's frame-pacing target. The default
// is 60.
func (n *Nes) SetTargetFPS(fps int) { n.timing.setTargetFPS(fps) }

// EnableBusFaultLogging turns on logging of writes into unmapped PRG space.
func (n *Nes) EnableBusFaultLogging(on bool) { n.bus.EnableBusFaultLogging(on) }

// CPU exposes the synchronizer's CPU for debuggers and trace tools. It must
// never be ticked directly; only Nes.Tick or Nes.Run may advance it.
func (n *Nes) CPU() *mos6502.CPU { return n.cpu }

// PPU exposes the synchronizer's PPU for debuggers and trace tools, under
// the same non-ticking restriction as CPU.
func (n *Nes) PPU() *ppu.PPU { return n.ppu }

// Joypad exposes the controller ports so a host can feed button state
// between PollEvents calls.
func (n *Nes) Joypad() *joypad.Joypad { return n.pad }

// Mapper exposes the loaded cartridge mapper, mainly for display in a
// debugger or window title.
func (n *Nes) Mapper() mappers.Mapper { return n.mapper }

// Powered reports whether the synchronizer is still running; it goes false
// once the host requests Shutdown.
func (n *Nes) Powered() bool { return !n.shutdown }

// Tick executes exactly one CPU instruction, credits the PPU 3x that many
// dots, and reacts to whatever the PPU reports: entering VBlank triggers
// the render/poll/pace/NMI handoff, and a mapper IRQ request raises the
// CPU's IRQ line. It returns the number of CPU cycles the instruction took.
func (n *Nes) Tick() int {
	cycles := n.cpu.Step()
	ev := n.ppu.Tick(cycles * 3)

	// NMI is edge-triggered on the PPU side (TriggerNMI one-shot-latches
	// on the CPU) but the *line* it's derived from - VBlank set AND NMI
	// output enabled - is a level. Edge-detecting that level here, rather
	// than only on the EnteredVBlank event, is what lets a PPUCTRL write
	// that enables NMI output while VBlank is already set raise its own
	// NMI, and what lets disabling NMI output suppress one that hasn't
	// been serviced yet.
	level := n.ppu.NMIPending()
	if level && !n.prevNMI {
		n.cpu.TriggerNMI()
	}
	n.prevNMI = level

	switch ev {
	case ppu.EventEnteredVBlank:
		n.handleVBlank()
	case ppu.EventTriggerIRQ:
		n.cpu.SetIRQ(true)
	}

	return cycles
}

func (n *Nes) handleVBlank() {
	n.host.Render(&n.ppu.Frame)

	outcome := n.host.PollEvents(n.pad)

	now := n.host.ElapsedMillis()
	if delay, ok := n.timing.postRender(now); ok {
		n.host.Delay(delay)
	}
	n.timing.postDelay(n.host.ElapsedMillis())

	switch outcome {
	case HostReset:
		n.cpu.Reset()
	case HostShutdown:
		n.shutdown = true
	}
}

// Run ticks the synchronizer until the host requests Shutdown or ctx is
// cancelled, whichever comes first.
func (n *Nes) Run(ctx context.Context) {
	for !n.shutdown {
		select {
		case <-ctx.Done():
			return
		default:
			n.Tick()
		}
	}
}

// frameTiming implements the synchronizer's pacing policy: after each
// rendered frame, sleep out the remainder of the target frame period if
// the host rendered faster than that, otherwise don't delay at all.
type frameTiming struct {
	frameN             uint64
	lastFrameTimestamp uint64
	haveLastFrame      bool
	frameLimitMs       uint64
}

func newFrameTiming(targetFPS int) frameTiming {
	return frameTiming{frameLimitMs: uint64(1000 / targetFPS)}
}

func (f *frameTiming) setTargetFPS(fps int) { f.frameLimitMs = uint64(1000 / fps) }

// fpsAvg returns the frame count averaged over elapsed wall-clock seconds,
// for an optional on-screen FPS overlay.
func (f *frameTiming) fpsAvg(elapsedMs uint64) uint64 {
	secs := elapsedMs / 1000
	if secs == 0 {
		return 0
	}
	return f.frameN / secs
}

// postRender reports how many milliseconds to delay to hit the target
// frame period, or ok=false if the frame already took at least that long.
func (f *frameTiming) postRender(elapsedMs uint64) (delayMs uint64, ok bool) {
	if !f.haveLastFrame {
		return 0, false
	}
	took := elapsedMs - f.lastFrameTimestamp
	if took < f.frameLimitMs {
		return f.frameLimitMs - took, true
	}
	return 0, false
}

func (f *frameTiming) postDelay(elapsedMs uint64) {
	f.frameN++
	f.lastFrameTimestamp = elapsedMs
	f.haveLastFrame = true
}
