// Package cpu implements the SM83 fetch-decode-execute loop: the register
// file, the primary and CB-prefixed opcode tables, and the interrupt/HALT
// state machine that ties instruction dispatch to the bus.
package cpu

import "fmt"

// Bus is everything the CPU needs from the memory bus. It is satisfied by
// *memory.MMU; the CPU never holds a reference back to anything but this
// narrow interface, so the bus owns no pointer back to the CPU (spec.md §9).
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	Advance(mcycles int)
	PendingInterrupt() (vector uint16, ok bool)
	PendingMask() byte
}

// CPU is the SM83 interpreter: register file, bus handle, and the
// IME/halt state machine from spec.md §4.4.4.
type CPU struct {
	regs registers
	bus  Bus

	ime     bool
	imeNext bool
	halted  bool
}

// New returns a CPU wired to bus, in the documented post-boot reset state.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.regs.reset()
	return c
}

// PC returns the program counter, mainly for host/debug inspection.
func (c *CPU) PC() uint16 { return c.regs.pc }

// SP returns the stack pointer.
func (c *CPU) SP() uint16 { return c.regs.sp }

// IME reports whether the master interrupt enable is currently set.
func (c *CPU) IME() bool { return c.ime }

// Halted reports whether the CPU is in the HALT low-power state.
func (c *CPU) Halted() bool { return c.halted }

// Step executes spec.md §4.4.1 in order: leave HALT on a pending
// interrupt, service one pending interrupt, commit the delayed IME
// shadow, and either sleep one cycle (halted) or fetch-decode-execute one
// instruction. It returns the number of machine cycles consumed.
func (c *CPU) Step() int {
	if c.halted && c.bus.PendingMask() != 0 {
		c.halted = false
	}

	if c.ime {
		if vector, ok := c.bus.PendingInterrupt(); ok {
			c.ime = false
			c.imeNext = false
			c.pushStack(c.regs.pc)
			c.regs.pc = vector
			c.bus.Advance(5)
			return 5
		}
	}

	c.ime = c.imeNext

	if c.halted {
		c.bus.Advance(1)
		return 1
	}

	startPC := c.regs.pc
	code := c.fetchByte()

	var op opcode
	if code == 0xCB {
		cb := c.fetchByte()
		op = cbTable[cb]
		if op == nil {
			panic(fmt.Sprintf("cpu: unknown CB opcode 0x%02X at PC=0x%04X", cb, startPC))
		}
	} else {
		op = primaryTable[code]
		if op == nil {
			panic(fmt.Sprintf("cpu: unknown opcode 0x%02X at PC=0x%04X", code, startPC))
		}
	}

	cycles := op(c)
	c.bus.Advance(cycles)
	return cycles
}

// opcode is the shape of every entry in the primary and CB dispatch
// tables: it receives the CPU, performs its effect, and returns the
// instruction's machine-cycle cost.
type opcode func(c *CPU) int

// fetchByte reads the byte at PC and post-increments PC, wrapping
// (spec.md §4.4.2).
func (c *CPU) fetchByte() byte {
	v := c.bus.Read(c.regs.pc)
	c.regs.pc++
	return v
}

// fetchWord reads a little-endian word at PC, low byte then high byte.
func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return combine(hi, lo)
}

// pushStack pre-decrements SP and writes high then low (spec.md §4.4.2).
func (c *CPU) pushStack(v uint16) {
	c.regs.sp--
	c.bus.Write(c.regs.sp, high(v))
	c.regs.sp--
	c.bus.Write(c.regs.sp, low(v))
}

// popStack is the inverse of pushStack.
func (c *CPU) popStack() uint16 {
	lo := c.bus.Read(c.regs.sp)
	c.regs.sp++
	hi := c.bus.Read(c.regs.sp)
	c.regs.sp++
	return combine(hi, lo)
}
