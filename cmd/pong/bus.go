// Command pong runs a bare 6502 program against a tiny memory-mapped
// display port instead of the full NES PPU, grounded in the original
// "Pong" demo: 32 KiB of RAM, a handful of display-port registers, and
// the program ROM from $A580 to the top of memory above it. It exists to exercise mos6502.Bus against
// something that isn't the NES console bus at all.
package main

import "log"

const (
	ramSize     = 0x8000
	displayBase = 0x8000
	displaySize = 0x2580
	romBase     = 0xA580
)

const (
	portX uint16 = iota
	portY
	portColor
	portCommand
)

const (
	cmdNop uint8 = iota
	cmdDraw
	cmdClear
	cmdFlush
)

// display is the memory-mapped device a Pong program pokes pixels
// through: write the coordinates and color to their ports, then a Draw
// command to the command port latches one pixel; Flush tells the host a
// frame is ready to present.
type display struct {
	buffer  [displayWidth * displayHeight]uint8
	updated bool
	px, py, pc uint8
}

const (
	displayWidth  = 240
	displayHeight = 192
)

func (d *display) write(offset uint16, val uint8) {
	switch offset {
	case portX:
		d.px = val
	case portY:
		d.py = val
	case portColor:
		d.pc = val
	case portCommand:
		switch val {
		case cmdDraw:
			d.draw()
		case cmdClear:
			d.clear()
		case cmdFlush:
			d.updated = true
		}
	}
}

func (d *display) draw() {
	x, y := int(d.px), int(d.py)
	if x < 0 || x >= displayWidth || y < 0 || y >= displayHeight {
		return
	}
	d.buffer[y*displayWidth+x] = d.pc
}

func (d *display) clear() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
}

// consumeUpdated reports whether a Flush happened since the last call,
// clearing the flag - the same latch-and-clear shape as reading
// PPUSTATUS clears the V flag in the main console package.
func (d *display) consumeUpdated() bool {
	u := d.updated
	d.updated = false
	return u
}

// pongBus maps [0x0000,0x7FFF] to RAM, [0x8000,0xA57F] to the display
// port, and [0xA580,0xFFFF] to the fixed program ROM. Writes into the ROM
// region are dropped rather than panicking, matching this codebase's
// BusFault-is-logged-and-ignored policy instead of the original's panic.
type pongBus struct {
	ram     [ramSize]uint8
	disp    *display
	rom     []uint8
	verbose bool
}

func newPongBus(rom []uint8, d *display) *pongBus {
	return &pongBus{rom: rom, disp: d}
}

func (b *pongBus) Read(addr uint16) uint8 {
	switch {
	case addr < displayBase:
		return b.ram[addr]
	case addr < romBase:
		return 0 // display ports are write-only
	default:
		off := int(addr) - romBase
		if off >= len(b.rom) {
			return 0
		}
		return b.rom[off]
	}
}

func (b *pongBus) Write(addr uint16, val uint8) {
	switch {
	case addr < displayBase:
		b.ram[addr] = val
	case addr < romBase:
		b.disp.write(addr-displayBase, val)
	default:
		if b.verbose {
			log.Printf("pong: BusFault write $%02X to ROM $%04X (ignored)", val, addr)
		}
	}
}
