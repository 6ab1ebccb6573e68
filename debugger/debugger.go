package debugger

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

// Watchpoint watches every byte in [Low, High] (inclusive) and invokes
// Callback whenever the debugger observes one change value across a Step.
type Watchpoint struct {
	Low, High uint16
	Callback  func(addr uint16, old, new uint8)
}

// Debugger drives a Machine one instruction (Step) or many (Continue) at a
// time, stopping at PC breakpoints and reporting byte changes within
// registered memory watchpoints.
type Debugger struct {
	m Machine

	breakpoints map[uint16]bool
	watches     []Watchpoint
	snapshot    map[uint16]uint8 // last-seen byte for every watched address

	trace  io.Writer // if non-nil, Step writes a trace line here before executing
	tracer *Tracer
}

// New constructs a Debugger driving m.
func New(m Machine) *Debugger {
	return &Debugger{
		m:           m,
		breakpoints: make(map[uint16]bool),
		snapshot:    make(map[uint16]uint8),
		tracer:      NewTracer(m),
	}
}

// SetBreakpoint arms a stop on PC == pc.
func (d *Debugger) SetBreakpoint(pc uint16) { d.breakpoints[pc] = true }

// ClearBreakpoint disarms a single breakpoint.
func (d *Debugger) ClearBreakpoint(pc uint16) { delete(d.breakpoints, pc) }

// ClearBreakpoints disarms every breakpoint.
func (d *Debugger) ClearBreakpoints() { d.breakpoints = make(map[uint16]bool) }

// Watch registers a watchpoint over [low, high], taking an initial snapshot
// of every byte in range so the first Step can detect changes against it.
func (d *Debugger) Watch(low, high uint16, callback func(addr uint16, old, new uint8)) {
	d.watches = append(d.watches, Watchpoint{Low: low, High: high, Callback: callback})
	for addr := uint32(low); addr <= uint32(high); addr++ {
		a := uint16(addr)
		d.snapshot[a] = d.m.CPU().Read(a)
	}
}

// ClearWatches removes every registered watchpoint.
func (d *Debugger) ClearWatches() {
	d.watches = nil
	d.snapshot = make(map[uint16]uint8)
}

// EnableTrace makes every Step write a nestest-format trace line to w
// before executing the instruction at the current PC.
func (d *Debugger) EnableTrace(w io.Writer) { d.trace = w }

// DisableTrace stops trace output.
func (d *Debugger) DisableTrace() { d.trace = nil }

// Step executes exactly one instruction (and, transparently, any pending
// interrupt service routine the Machine's Tick happens to run instead) and
// returns the cycle count Tick reported. Trace output and watchpoint
// callbacks, if any, fire as part of this call.
func (d *Debugger) Step() int {
	if d.trace != nil {
		io.WriteString(d.trace, d.tracer.Line()+"\n")
	}
	cycles := d.m.Tick()
	d.checkWatches()
	return cycles
}

// Continue steps the Machine until PC lands on an armed breakpoint or max
// instructions have executed (a safety bound against a runaway program with
// no breakpoints at all), returning the number of instructions retired.
func (d *Debugger) Continue(max int) int {
	n := 0
	for n < max {
		d.Step()
		n++
		if d.breakpoints[d.m.CPU().PC()] {
			break
		}
	}
	return n
}

func (d *Debugger) checkWatches() {
	if len(d.watches) == 0 {
		return
	}
	for _, w := range d.watches {
		for addr := uint32(w.Low); addr <= uint32(w.High); addr++ {
			a := uint16(addr)
			old := d.snapshot[a]
			cur := d.m.CPU().Read(a)
			if cur != old {
				d.snapshot[a] = cur
				if w.Callback != nil {
					w.Callback(a, old, cur)
				}
			}
		}
	}
}

// dumpConfig bypasses String methods, so the CPU is dumped field by field
// rather than as its one-line String() summary.
var dumpConfig = spew.ConfigState{Indent: " ", DisableMethods: true}

// DumpState renders the CPU and PPU structs field by field with go-spew, for
// interactive inspection at a breakpoint - deeper than the one-line nestest
// trace, and unbounded in what it shows.
func (d *Debugger) DumpState() string {
	return dumpConfig.Sdump(d.m.CPU()) + dumpConfig.Sdump(d.m.PPU())
}
