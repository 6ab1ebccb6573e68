// Package debugger implements step/continue/breakpoint execution control
// and a nestest-compatible instruction trace, the tools described by the
// spec's "Debugger & Trace" component. It drives any Machine - in
// practice a *console.Nes - without needing to know anything about its
// cartridge or mapper.
package debugger

import (
	"fmt"

	"github.com/bwalton/nescore/mos6502"
	"github.com/bwalton/nescore/ppu"
)

// Machine is the capability the debugger needs from whatever it's
// stepping. *console.Nes satisfies it without this package importing
// console, keeping the dependency direction the same way the synchronizer
// keeps its own dependencies on CPU/PPU: one-directional, no back-edges.
type Machine interface {
	Tick() int
	CPU() *mos6502.CPU
	PPU() *ppu.PPU
}

// Tracer formats nestest-compatible trace lines from a Machine's current
// state: PC, registers, flags byte, stack pointer, PPU scanline/dot, and
// cumulative CPU cycle count. Bit-exact against the community reference
// log through the documented-opcode section is the target in §8.
type Tracer struct {
	m Machine
}

// NewTracer wraps m for trace-line formatting.
func NewTracer(m Machine) *Tracer { return &Tracer{m: m} }

// Line renders the current state as one nestest-format trace line:
//
//	PC A:aa X:xx Y:yy P:pp SP:ss PPU:sss,ccc CYC:nnn
//
// The scanline field is right-justified to width 3; the dot field drops
// the separating space once it reaches 3 digits itself, matching the
// community reference log's alignment.
func (t *Tracer) Line() string {
	c := t.m.CPU()
	p := t.m.PPU()

	sep := ", "
	if p.Dot() >= 100 {
		sep = ","
	}

	return fmt.Sprintf("%04X A:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d%s%2d CYC:%d",
		c.PC(), c.A(), c.X(), c.Y(), c.FlagsByte(), c.SP(), p.Scanline(), sep, p.Dot(), c.Cycles())
}
