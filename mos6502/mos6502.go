// Package mos6502 implements the MOS Technologies 6502 processor as
// used in the NES (whose 2A03 never wires up decimal mode arithmetic).
// https://en.wikipedia.org/wiki/MOS_Technology_6502
package mos6502

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// 6502 Interrupt Vectors
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	INT_IRQ   = 0xFFFE
	INT_BRK   = INT_IRQ
	INT_RESET = 0xFFFC
	INT_NMI   = 0xFFFA
)

// 6502 Processor Status Flags
// https://www.nesdev.org/obelisk-6502-guide/registers.html
const (
	STATUS_FLAG_CARRY             = 1 << 0 // C
	STATUS_FLAG_ZERO              = 1 << 1 // Z
	STATUS_FLAG_INTERRUPT_DISABLE = 1 << 2 // I
	STATUS_FLAG_DECIMAL           = 1 << 3 // D
	STATUS_FLAG_BREAK             = 1 << 4 // B
	UNUSED_STATUS_FLAG            = 1 << 5 // This is never used but is always on
	STATUS_FLAG_OVERFLOW          = 1 << 6 // V
	STATUS_FLAG_NEGATIVE          = 1 << 7 // N
)

const STACK_PAGE = 0x0100

// How much addressable memory we have
const MEM_SIZE = math.MaxUint16 + 1

// Bus is what the CPU reads and writes through. The NES console bus,
// the Pong demo's display-port bus and the flat test memory all
// implement it.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// Debug, when true, makes the CPU panic on an invalid instruction
// instead of degrading it to a 2 cycle NOP. Host shells flip it on
// with --debug.
var Debug = false

var flagMap map[uint8]byte = map[uint8]byte{
	STATUS_FLAG_CARRY:             'C',
	STATUS_FLAG_ZERO:              'Z',
	STATUS_FLAG_INTERRUPT_DISABLE: 'I',
	STATUS_FLAG_DECIMAL:           'D',
	STATUS_FLAG_BREAK:             'B',
	UNUSED_STATUS_FLAG:            '-',
	STATUS_FLAG_OVERFLOW:          'V',
	STATUS_FLAG_NEGATIVE:          'N',
}

func statusString(p uint8) string {
	var sb strings.Builder

	flags := []uint8{
		STATUS_FLAG_NEGATIVE,
		STATUS_FLAG_OVERFLOW,
		UNUSED_STATUS_FLAG,
		STATUS_FLAG_BREAK,
		STATUS_FLAG_DECIMAL,
		STATUS_FLAG_INTERRUPT_DISABLE,
		STATUS_FLAG_ZERO,
		STATUS_FLAG_CARRY,
	}

	for _, f := range flags {
		if p&f > 0 {
			sb.WriteByte(flagMap[f])
		} else {
			sb.WriteByte('.')
		}
	}

	return sb.String()
}

// type CPU implements all of the machine state for the 6502
type CPU struct {
	acc    uint8  // main register
	x, y   uint8  // index registers
	status uint8  // a register for storing various status bits
	sp     uint8  // stack pointer - stack is 0x0100-0x01FF so only 8 bits needed
	pc     uint16 // the program counter
	bus    Bus    // 64k addressable memory behind the console's decoder

	cycles    int    // cycles consumed by the instruction being executed
	pageCross int    // page cross penalty recorded by getOperandAddr
	ticks     uint64 // total cycles since power on, never reset

	nmiPending bool // edge latched by TriggerNMI
	irqLine    bool // level set by SetIRQ, gated by the I flag
	dmaCycles  int  // stall cycles owed for an OAMDMA transfer
}

func (c *CPU) String() string {
	return fmt.Sprintf("A,X,Y: %4d, %4d, %4d; PC: 0x%04x, SP: 0x%02x, P: %s; OP: %s", c.acc, c.x, c.y, c.pc, c.sp, statusString(c.status), opcodes[c.memRead(c.pc)])
}

func New(b Bus) *CPU {
	// Power on state values from:
	// https://nesdev-wiki.nes.science/wikipages/CPU_ALL.xhtml#Power_up_state
	c := &CPU{
		sp:     0xFD,
		bus:    b,
		status: UNUSED_STATUS_FLAG | STATUS_FLAG_INTERRUPT_DISABLE,
	}
	c.pc = c.memRead16(INT_RESET)
	return c
}

var invalidInstruction = errors.New("invalid instruction")

// Reset is what the console's reset button reaches: SP drops by 3
// without anything actually being pushed, I is set, and PC reloads
// from the reset vector.
func (c *CPU) Reset() {
	c.sp -= 3
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE | UNUSED_STATUS_FLAG)
	c.pc = c.memRead16(INT_RESET)
	c.nmiPending = false
}

// TriggerNMI is used by the PPU to signal the CPU that it is in
// vblank. The edge is latched until the next Step services it.
func (c *CPU) TriggerNMI() {
	c.nmiPending = true
}

// SetIRQ levels the maskable interrupt line. Mappers with scanline
// counters (MMC3) hold this high until their IRQ is acknowledged.
func (c *CPU) SetIRQ(asserted bool) {
	c.irqLine = asserted
}

// AddDMACycles charges the stall an OAMDMA transfer costs (513 or 514
// cycles depending on cycle parity), paid out before the next
// instruction runs.
func (c *CPU) AddDMACycles(n int) {
	c.dmaCycles += n
}

func (c *CPU) PC() uint16 { return c.pc }

// SetPC forces the program counter, for debuggers and for test ROMs
// like nestest that document a non-vector entry point.
func (c *CPU) SetPC(addr uint16) { c.pc = addr }

func (c *CPU) A() uint8  { return c.acc }
func (c *CPU) X() uint8  { return c.x }
func (c *CPU) Y() uint8  { return c.y }
func (c *CPU) SP() uint8 { return c.sp }

// Cycles returns the total cycle count since power on.
func (c *CPU) Cycles() uint64 { return c.ticks }

// StackAddr returns the current top-of-stack address.
func (c *CPU) StackAddr() uint16 { return c.getStackAddr() }

// FlagsByte returns the status register as pushes of it are observed:
// with the unused bit forced on.
func (c *CPU) FlagsByte() uint8 {
	return c.status | UNUSED_STATUS_FLAG
}

// SetFlagsByte loads the status register from a byte (PLP/RTI and
// debuggers), discarding B, which is never a real storage bit.
func (c *CPU) SetFlagsByte(v uint8) {
	c.status = (v &^ STATUS_FLAG_BREAK) | UNUSED_STATUS_FLAG
}

// Inst returns the memory locations and bytes of the instruction at
// the current program counter.
func (c *CPU) Inst() string {
	var sb strings.Builder
	op := opcodes[c.memRead(c.pc)]
	for i := 0; i < int(op.bytes); i++ {
		m := c.pc + uint16(i)
		fmt.Fprintf(&sb, "0x%04x: 0x%02x ", m, c.memRead(m))
	}
	return sb.String()
}

// Read returns the byte from memory at addr, exposed for debuggers
// and tests that want raw bus access without stepping the CPU.
func (c *CPU) Read(addr uint16) uint8 {
	return c.memRead(addr)
}

// Write stores val to memory at addr.
func (c *CPU) Write(addr uint16, val uint8) {
	c.memWrite(addr, val)
}

// memRead returns the byte from memory at addr
func (c *CPU) memRead(addr uint16) uint8 {
	return c.bus.Read(addr)
}

// memWrite writes val to memory at addr
func (c *CPU) memWrite(addr uint16, val uint8) {
	c.bus.Write(addr, val)
}

// memRead16 returns the two bytes from memory at addr (lower byte is
// first).
func (c *CPU) memRead16(addr uint16) uint16 {
	lsb := uint16(c.memRead(addr))
	msb := uint16(c.memRead(addr + 1))

	return (msb << 8) | lsb
}

// memRead16Bug reproduces the JMP ($xxFF) hardware bug: the high byte
// of the pointer is fetched from $xx00, not $(xx+1)00.
func (c *CPU) memRead16Bug(addr uint16) uint16 {
	lsb := uint16(c.memRead(addr))
	msb := uint16(c.memRead((addr & 0xFF00) | uint16(uint8(addr)+1)))

	return (msb << 8) | lsb
}

// memRead16ZP reads a 16 bit pointer from the zero page, wrapping at
// the page boundary the way the silicon does.
func (c *CPU) memRead16ZP(ptr uint8) uint16 {
	lsb := uint16(c.memRead(uint16(ptr)))
	msb := uint16(c.memRead(uint16(ptr + 1)))

	return (msb << 8) | lsb
}

// getOperandAddr takes a mode and returns an address for the operand
// referenced by the program counter. It assumes that the counter was
// incremented past the actual instruction itself.
func (c *CPU) getOperandAddr(mode uint8) uint16 {
	var addr uint16
	switch mode {
	case ACCUMULATOR:
		panic("ACCUMULATOR Address mode should never use this method")
	case IMPLICIT:
		panic("IMPLICIT Address mode should never use this method")
	case IMMEDIATE:
		addr = c.pc
	case ZERO_PAGE:
		addr = uint16(c.memRead(c.pc))
	case ZERO_PAGE_X:
		return uint16(c.memRead(c.pc) + c.x)
	case ZERO_PAGE_Y:
		return uint16(c.memRead(c.pc) + c.y)
	case ABSOLUTE:
		return c.memRead16(c.pc)
	case ABSOLUTE_X:
		a := c.memRead16(c.pc)
		addr = a + uint16(c.x)
		c.pageCross = extraCycles(a, addr)
	case ABSOLUTE_Y:
		a := c.memRead16(c.pc)
		addr = a + uint16(c.y)
		c.pageCross = extraCycles(a, addr)
	case INDIRECT:
		return c.memRead16Bug(c.memRead16(c.pc))
	case INDIRECT_X:
		return c.memRead16ZP(c.memRead(c.pc) + c.x)
	case INDIRECT_Y:
		a := c.memRead16ZP(c.memRead(c.pc))
		addr = a + uint16(c.y)
		c.pageCross = extraCycles(a, addr)
	case RELATIVE:
		// Relative from PC at time of instruction
		// execution. We advance pc as soon as we eat the byte
		// from memory to decode the instruction, so we need
		// to account for that here and step over the relative
		// argument while calculating the new target address.
		addr = (c.pc + 1) + uint16(int8(c.memRead(c.pc)))
	default:
		panic("Invalid addressing mode")

	}

	return addr
}

// interrupt services a hardware interrupt: return address and status
// (B clear) pushed, I set, PC loaded from vector, 7 cycles charged.
func (c *CPU) interrupt(vector uint16) int {
	c.pushAddress(c.pc)
	c.pushStack((c.status &^ STATUS_FLAG_BREAK) | UNUSED_STATUS_FLAG)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	c.pc = c.memRead16(vector)
	c.ticks += 7
	return 7
}

// Step executes exactly one instruction - after paying out any owed
// OAMDMA stall and servicing any pending interrupt (NMI ahead of IRQ,
// IRQ only when I is clear) - and returns the number of cycles it
// consumed, page cross and branch penalties included.
func (c *CPU) Step() int {
	if c.dmaCycles > 0 {
		n := c.dmaCycles
		c.dmaCycles = 0
		c.ticks += uint64(n)
		return n
	}

	if c.nmiPending {
		c.nmiPending = false
		return c.interrupt(INT_NMI)
	}
	if c.irqLine && c.status&STATUS_FLAG_INTERRUPT_DISABLE == 0 {
		return c.interrupt(INT_IRQ)
	}

	m := c.memRead(c.pc)
	op, ok := opcodes[m]
	if !ok {
		if Debug {
			panic(fmt.Errorf("pc: %d, inst: 0x%02x - %w", c.pc, m, invalidInstruction))
		}
		// Outside of debug builds an invalid instruction
		// degrades to a 2 cycle NOP.
		c.pc += 1
		c.ticks += 2
		return 2
	}

	c.cycles = int(op.cycles)
	c.pageCross = 0
	c.pc += 1
	opc := c.pc

	v := reflect.ValueOf(c)
	v.MethodByName(op.name).Call([]reflect.Value{reflect.ValueOf(op.mode)})

	if pageCrossPenalty[m] {
		c.cycles += c.pageCross
	}

	// If we didn't branch, move the PC beyond the full width of
	// the instruction. We consumed the first byte for the
	// instruction code, so only skip over the remaining argument
	// bytes.
	if c.pc == opc {
		c.pc += uint16(op.bytes) - 1
	}

	c.ticks += uint64(c.cycles)
	return c.cycles
}

// setNegativeAndZeroFlags sets the STATUS_FLAG_NEGATIVE and
// STATUS_FLAG_ZERO bits of the status register accordingly for the
// value specified in n.
func (c *CPU) setNegativeAndZeroFlags(n uint8) {
	if n == 0 {
		c.flagsOn(STATUS_FLAG_ZERO)
	} else {
		c.flagsOff(STATUS_FLAG_ZERO)
	}

	if n&0b1000_0000 != 0 {
		c.flagsOn(STATUS_FLAG_NEGATIVE)
	} else {
		c.flagsOff(STATUS_FLAG_NEGATIVE)
	}
}

func (c *CPU) getStackAddr() uint16 {
	return STACK_PAGE + uint16(c.sp)
}

func (c *CPU) pushStack(val uint8) {
	c.memWrite(c.getStackAddr(), val)
	c.sp -= 1
}

func (c *CPU) popStack() uint8 {
	c.sp += 1
	return c.memRead(c.getStackAddr())
}

func (c *CPU) pushAddress(addr uint16) {
	c.pushStack(uint8(addr >> 8))     // high
	c.pushStack(uint8(addr & 0x00FF)) // low
}

func (c *CPU) popAddress() uint16 {
	return uint16(c.popStack()) | (uint16(c.popStack()) << 8)
}

// flagsOn forces the flags in mask (STATUS_FLAG_XXX|STATUS_FLAG_YYY)
// on in the status register.
func (c *CPU) flagsOn(mask uint8) {
	c.status = c.status | mask
}

// flagsOff forces the flags in mask (STATUS_FLAG_XXX|STATUS_FLAG_YYY)
// off in the status register.
func (c *CPU) flagsOff(mask uint8) {
	c.status = c.status &^ mask
}

// extraCycles returns 0 if addr1 and addr2 are in the same page, 1
// otherwise. This is useful for instructions that take a variable
// number of cycles, depending on whether or not a page boundary is
// crossed.
func extraCycles(addr1, addr2 uint16) int {
	if addr1&0xFF00 != addr2&0xFF00 {
		return 1
	}
	return 0
}

// branch will adjust the PC conditionally based on whether the mask
// bits are set and the resulting comparison is expected to be true or
// false. This allows you to check for STATUS_FLAG being set or
// cleared by: branch(STATUS_FLAG_OVERFLOW, false) -> branch when
// OVERFLOW not set.
func (c *CPU) branch(mask uint8, predicate bool) {
	if (c.status&mask > 0) == predicate {
		a := c.getOperandAddr(RELATIVE)
		// Successful branches take an extra cycle, and one
		// more when the target sits on a different page than
		// the instruction that follows the branch (pc+1, with
		// pc still parked on the relative argument here).
		c.cycles += 1
		c.cycles += extraCycles(a, c.pc+1)
		c.pc = a
	}
}

// addWithOverflow adds b to c.acc handling overflow, carry and ZN
// flag setting as appropriate.
func (c *CPU) addWithOverflow(b uint8) {
	res16 := uint16(c.acc) + uint16(b) + uint16(c.status&STATUS_FLAG_CARRY)
	res := uint8(res16)

	var mask uint8
	if (res16 & 0x100) != 0 {
		mask = mask | STATUS_FLAG_CARRY
	}
	if (c.acc^res)&(b^res)&0x80 != 0 {
		mask = mask | STATUS_FLAG_OVERFLOW
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.flagsOn(mask)

	c.acc = res
	c.setNegativeAndZeroFlags(c.acc)
}

// baseCMP does comparison operations on a and b, setting flags
// accordingly.
func (c *CPU) baseCMP(a, b uint8) {
	c.setNegativeAndZeroFlags(a - b)
	if a >= b {
		c.flagsOn(STATUS_FLAG_CARRY)
	} else {
		c.flagsOff(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ADC(mode uint8) {
	c.addWithOverflow(c.memRead(c.getOperandAddr(mode)))
}

func (c *CPU) AND(mode uint8) {
	c.acc = c.acc & c.memRead(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) ASL(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc << 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.memRead(addr)
		nv = ov << 1
		c.memWrite(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) BCC(mode uint8) {
	c.branch(STATUS_FLAG_CARRY, false)
}

func (c *CPU) BCS(mode uint8) {
	c.branch(STATUS_FLAG_CARRY, true)
}

func (c *CPU) BEQ(mode uint8) {
	c.branch(STATUS_FLAG_ZERO, true)
}

func (c *CPU) BIT(mode uint8) {
	o := c.memRead(c.getOperandAddr(mode))

	c.flagsOff(STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW | STATUS_FLAG_ZERO)
	var flags uint8
	if (o & c.acc) == 0 {
		flags = flags | STATUS_FLAG_ZERO
	}
	flags = flags | (o & (STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW))

	c.flagsOn(flags)
}

func (c *CPU) BMI(mode uint8) {
	c.branch(STATUS_FLAG_NEGATIVE, true)
}

func (c *CPU) BNE(mode uint8) {
	c.branch(STATUS_FLAG_ZERO, false)
}

func (c *CPU) BPL(mode uint8) {
	c.branch(STATUS_FLAG_NEGATIVE, false)
}

func (c *CPU) BRK(mode uint8) {
	// BRK is 2 bytes
	c.pushAddress(c.pc + 1)
	c.pushStack(c.status | STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG)
	c.pc = c.memRead16(INT_BRK)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) BVC(mode uint8) {
	c.branch(STATUS_FLAG_OVERFLOW, false)
}

func (c *CPU) BVS(mode uint8) {
	c.branch(STATUS_FLAG_OVERFLOW, true)
}

func (c *CPU) CLC(mode uint8) {
	c.flagsOff(STATUS_FLAG_CARRY)
}

func (c *CPU) CLD(mode uint8) {
	c.flagsOff(STATUS_FLAG_DECIMAL)
}

func (c *CPU) CLI(mode uint8) {
	c.flagsOff(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) CLV(mode uint8) {
	c.flagsOff(STATUS_FLAG_OVERFLOW)
}

func (c *CPU) CMP(mode uint8) {
	c.baseCMP(c.acc, c.memRead(c.getOperandAddr(mode)))
}

func (c *CPU) CPX(mode uint8) {
	c.baseCMP(c.x, c.memRead(c.getOperandAddr(mode)))
}

func (c *CPU) CPY(mode uint8) {
	c.baseCMP(c.y, c.memRead(c.getOperandAddr(mode)))
}

func (c *CPU) DEC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.memWrite(a, c.memRead(a)-1)
	c.setNegativeAndZeroFlags(c.memRead(a))
}

func (c *CPU) DEX(mode uint8) {
	c.x -= 1
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) DEY(mode uint8) {
	c.y -= 1
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) EOR(mode uint8) {
	c.acc = c.acc ^ c.memRead(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) INC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.memWrite(a, c.memRead(a)+1)
	c.setNegativeAndZeroFlags(c.memRead(a))
}

func (c *CPU) INX(mode uint8) {
	c.x += 1
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) INY(mode uint8) {
	c.y += 1
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) JMP(mode uint8) {
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) JSR(mode uint8) {
	c.pushAddress(c.pc + 1) // this is the second byte of the JSR argument
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) LDA(mode uint8) {
	c.acc = c.memRead(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) LDX(mode uint8) {
	c.x = c.memRead(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) LDY(mode uint8) {
	c.y = c.memRead(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) LSR(mode uint8) {
	var ov, nv uint8
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc >> 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.memRead(addr)
		nv = ov >> 1
		c.memWrite(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}

}

func (c *CPU) NOP(mode uint8) {
	// The multi byte undocumented NOPs still read their operand,
	// which is where the absolute,X variants get their page cross
	// penalty from.
	if mode != IMPLICIT {
		c.memRead(c.getOperandAddr(mode))
	}
}

func (c *CPU) ORA(mode uint8) {
	c.acc = c.acc | c.memRead(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PHA(mode uint8) {
	c.pushStack(c.acc)
}

func (c *CPU) PHP(mode uint8) {
	// 6502 always sets BREAK when pushing the status register to
	// the stack
	c.pushStack(c.status | STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG)
}

func (c *CPU) PLA(mode uint8) {
	c.acc = c.popStack()
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PLP(mode uint8) {
	c.SetFlagsByte(c.popStack())
}

func (c *CPU) ROL(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = (ov << 1) | (c.status & STATUS_FLAG_CARRY)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.memRead(addr)
		c.memWrite(addr, (ov<<1)|(c.status&STATUS_FLAG_CARRY))
		nv = c.memRead(addr)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ROR(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = (ov >> 1) | ((c.status & STATUS_FLAG_CARRY) << 7)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.memRead(addr)
		c.memWrite(addr, (ov>>1)|((c.status&STATUS_FLAG_CARRY)<<7))
		nv = c.memRead(addr)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 { // was carry bit set in the old _value_?
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) RTI(mode uint8) {
	c.SetFlagsByte(c.popStack())
	c.pc = c.popAddress()
}

func (c *CPU) RTS(mode uint8) {
	c.pc = c.popAddress() + 1
}

func (c *CPU) SBC(mode uint8) {
	c.addWithOverflow(^c.memRead(c.getOperandAddr(mode)))
}

func (c *CPU) SEC(mode uint8) {
	c.flagsOn(STATUS_FLAG_CARRY)
}

func (c *CPU) SED(mode uint8) {
	c.flagsOn(STATUS_FLAG_DECIMAL)
}

func (c *CPU) SEI(mode uint8) {
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) STA(mode uint8) {
	c.memWrite(c.getOperandAddr(mode), c.acc)
}

func (c *CPU) STX(mode uint8) {
	c.memWrite(c.getOperandAddr(mode), c.x)
}

func (c *CPU) STY(mode uint8) {
	c.memWrite(c.getOperandAddr(mode), c.y)
}

func (c *CPU) TAX(mode uint8) {
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TAY(mode uint8) {
	c.y = c.acc
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) TSX(mode uint8) {
	c.x = c.sp
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TXA(mode uint8) {
	c.acc = c.x
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) TXS(mode uint8) {
	c.sp = c.x
}

func (c *CPU) TYA(mode uint8) {
	c.acc = c.y
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) LAX(mode uint8) {
	c.acc = c.memRead(c.getOperandAddr(mode))
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) SAX(mode uint8) {
	c.memWrite(c.getOperandAddr(mode), c.acc&c.x)
}

func (c *CPU) DCM(mode uint8) {
	a := c.getOperandAddr(mode)
	c.memWrite(a, c.memRead(a)-1)
	c.baseCMP(c.acc, c.memRead(a))
}

func (c *CPU) ISB(mode uint8) {
	a := c.getOperandAddr(mode)
	c.memWrite(a, c.memRead(a)+1)
	c.addWithOverflow(^c.memRead(a))
}

func (c *CPU) SLO(mode uint8) {
	a := c.getOperandAddr(mode)
	ov := c.memRead(a)
	nv := ov << 1
	c.memWrite(a, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.acc = c.acc | nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) RLA(mode uint8) {
	a := c.getOperandAddr(mode)
	ov := c.memRead(a)
	nv := (ov << 1) | (c.status & STATUS_FLAG_CARRY)
	c.memWrite(a, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.acc = c.acc & nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) SRE(mode uint8) {
	a := c.getOperandAddr(mode)
	ov := c.memRead(a)
	nv := ov >> 1
	c.memWrite(a, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.acc = c.acc ^ nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) RRA(mode uint8) {
	a := c.getOperandAddr(mode)
	ov := c.memRead(a)
	nv := (ov >> 1) | ((c.status & STATUS_FLAG_CARRY) << 7)
	c.memWrite(a, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.addWithOverflow(nv)
}

func (c *CPU) ANC(mode uint8) {
	c.acc = c.acc & c.memRead(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
	c.flagsOff(STATUS_FLAG_CARRY)
	if c.acc&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ALR(mode uint8) {
	c.acc = c.acc & c.memRead(c.getOperandAddr(mode))
	c.flagsOff(STATUS_FLAG_CARRY)
	if c.acc&0x01 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.acc = c.acc >> 1
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) ARR(mode uint8) {
	c.acc = c.acc & c.memRead(c.getOperandAddr(mode))
	c.acc = (c.acc >> 1) | ((c.status & STATUS_FLAG_CARRY) << 7)
	c.setNegativeAndZeroFlags(c.acc)

	// Carry and overflow come out of bits 6 and 5 of the rotated
	// result rather than the shift itself.
	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW)
	if c.acc&0x40 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	if (c.acc>>6)&1 != (c.acc>>5)&1 {
		c.flagsOn(STATUS_FLAG_OVERFLOW)
	}
}

func (c *CPU) AXS(mode uint8) {
	// X = (ACC & X) - operand; a pure subtract, no overflow or
	// decimal handling like SBC.
	v := c.memRead(c.getOperandAddr(mode))
	ax := c.acc & c.x
	c.x = ax - v
	if ax >= v {
		c.flagsOn(STATUS_FLAG_CARRY)
	} else {
		c.flagsOff(STATUS_FLAG_CARRY)
	}
	c.setNegativeAndZeroFlags(c.x)
}
