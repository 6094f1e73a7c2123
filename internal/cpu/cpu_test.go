package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeBus is a minimal Bus implementation for unit-testing the CPU in
// isolation, without a real memory.MMU.
type fakeBus struct {
	ram        [0x10000]byte
	advanced   int
	pending    uint16
	pendingOK  bool
	pendingAck int
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(address uint16) byte          { return b.ram[address] }
func (b *fakeBus) Write(address uint16, value byte)  { b.ram[address] = value }
func (b *fakeBus) Advance(mcycles int)               { b.advanced += mcycles }
func (b *fakeBus) PendingMask() byte {
	if b.pendingOK {
		return 1
	}
	return 0
}
func (b *fakeBus) PendingInterrupt() (uint16, bool) {
	if !b.pendingOK {
		return 0, false
	}
	b.pendingAck++
	b.pendingOK = false
	return b.pending, true
}

func (b *fakeBus) load(pc uint16, bytes ...byte) {
	for i, v := range bytes {
		b.ram[pc+uint16(i)] = v
	}
}

func newCPUAt(pc uint16, bytes ...byte) (*CPU, *fakeBus) {
	bus := newFakeBus()
	bus.load(pc, bytes...)
	c := New(bus)
	c.regs.pc = pc
	return c, bus
}

func TestReset(t *testing.T) {
	c, _ := newCPUAt(0x0100)
	assert.Equal(t, byte(0x01), c.regs.a)
	assert.Equal(t, byte(0xB0), c.regs.f)
	assert.Equal(t, uint16(0xFFFE), c.regs.sp)
	assert.Equal(t, uint16(0x0100), c.regs.pc)
}

func TestStep_NOP(t *testing.T) {
	c, bus := newCPUAt(0xC000, 0x00)
	cycles := c.Step()
	assert.Equal(t, 1, cycles)
	assert.Equal(t, uint16(0xC001), c.regs.pc)
	assert.Equal(t, 1, bus.advanced)
}

func TestStep_UnknownOpcodePanics(t *testing.T) {
	c, _ := newCPUAt(0xC000, 0xDD)
	assert.Panics(t, func() { c.Step() })
}

func TestStep_UnknownCBOpcodeNeverPanics(t *testing.T) {
	// Every CB opcode is defined; this asserts the full table is populated.
	for op := 0; op <= 0xFF; op++ {
		c, _ := newCPUAt(0xC000, 0xCB, byte(op))
		assert.NotPanics(t, func() { c.Step() }, "CB opcode 0x%02X", op)
	}
}

func TestStep_AllPrimaryOpcodesDefinedExceptUnused(t *testing.T) {
	unused := map[int]bool{
		0xD3: true, 0xDB: true, 0xDD: true,
		0xE3: true, 0xE4: true, 0xEB: true, 0xEC: true, 0xED: true,
		0xF4: true, 0xFC: true, 0xFD: true,
		0xCB: true, // prefix byte, not a standalone opcode
	}
	for op := 0; op <= 0xFF; op++ {
		if unused[op] {
			continue
		}
		assert.NotNil(t, primaryTable[op], "opcode 0x%02X should be defined", op)
	}
}

func TestLD_BC(t *testing.T) {
	c, _ := newCPUAt(0xC000, 0x01, 0x34, 0x12) // LD BC,0x1234
	cycles := c.Step()
	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0x1234), c.regs.bc())
}

func TestLD_IndirectHLPlusIncrementsHL(t *testing.T) {
	c, bus := newCPUAt(0xC000, 0x22) // LD (HL+),A
	c.regs.a = 0x42
	c.regs.setHL(0xD000)
	c.Step()
	assert.Equal(t, byte(0x42), bus.ram[0xD000])
	assert.Equal(t, uint16(0xD001), c.regs.hl())
}

func TestJR_TakenAndNotTaken(t *testing.T) {
	c, _ := newCPUAt(0xC000, 0x20, 0xFE) // JR NZ,-2 (loop on itself)
	c.regs.set(FlagZ, false)
	cycles := c.Step()
	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0xC000), c.regs.pc)

	c2, _ := newCPUAt(0xC100, 0x28, 0x05) // JR Z,+5
	c2.regs.set(FlagZ, false)
	cycles2 := c2.Step()
	assert.Equal(t, 2, cycles2)
	assert.Equal(t, uint16(0xC102), c2.regs.pc)
}

func TestCALL_And_RET(t *testing.T) {
	c, bus := newCPUAt(0xC000, 0xCD, 0x00, 0xD0) // CALL 0xD000
	c.regs.sp = 0xFFFE
	cycles := c.Step()
	assert.Equal(t, 6, cycles)
	assert.Equal(t, uint16(0xD000), c.regs.pc)
	assert.Equal(t, uint16(0xFFFC), c.regs.sp)

	bus.load(0xD000, 0xC9) // RET
	cycles = c.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0xC003), c.regs.pc)
	assert.Equal(t, uint16(0xFFFE), c.regs.sp)
}

func TestPUSH_POP_AF_MasksLowNibble(t *testing.T) {
	c, _ := newCPUAt(0xC000, 0xF5, 0xF1) // PUSH AF; POP AF
	c.regs.setAF(0x1234)
	c.Step() // PUSH AF
	c.regs.setAF(0x0000)
	c.Step() // POP AF
	assert.Equal(t, uint16(0x1230), c.regs.af())
}

func TestHALT_WakesOnPendingInterruptMask(t *testing.T) {
	c, bus := newCPUAt(0xC000, 0x76, 0x00) // HALT; NOP
	c.Step()                               // enter HALT
	assert.True(t, c.Halted())

	cycles := c.Step() // still halted, no pending interrupt
	assert.Equal(t, 1, cycles)
	assert.True(t, c.Halted())

	bus.pendingOK = true
	c.Step() // wakes, but IME is false so no service happens
	assert.False(t, c.Halted())
}

func TestEI_DelaysEnableByOneInstruction(t *testing.T) {
	c, bus := newCPUAt(0xC000, 0xFB, 0x00, 0x00) // EI; NOP; NOP
	bus.pending = 0x0040
	bus.pendingOK = true

	c.Step() // EI executes: imeNext=true, but ime is committed from the old (false) value first
	assert.False(t, c.IME())
	assert.Equal(t, 0, bus.pendingAck)

	c.Step() // NOP: ime is committed true here, but the pending check already ran against the old value
	assert.True(t, c.IME())
	assert.Equal(t, 0, bus.pendingAck)

	c.Step() // ime is now set, so the pending interrupt is serviced before the second NOP runs
	assert.False(t, c.IME())
	assert.Equal(t, 1, bus.pendingAck)
	assert.Equal(t, uint16(0x0040), c.regs.pc)
}

func TestDI_DisablesImmediately(t *testing.T) {
	c, bus := newCPUAt(0xC000, 0xF3, 0x00) // DI; NOP
	c.ime = false
	c.imeNext = true
	c.Step() // this step's commit sets ime=true from imeNext, then DI clears both
	assert.False(t, c.IME())
	assert.False(t, c.imeNext)

	bus.pendingOK = true
	c.Step() // ime stays false across the next instruction, so no service happens
	assert.Equal(t, 0, bus.pendingAck)
}

func TestADD_SP_SignedDisplacement_UsesUnsignedByteForHC(t *testing.T) {
	c, _ := newCPUAt(0xC000, 0xE8, 0xFF) // ADD SP,-1
	c.regs.sp = 0x0005
	c.Step()
	assert.Equal(t, uint16(0x0004), c.regs.sp)
	assert.False(t, c.regs.has(FlagZ))
	assert.False(t, c.regs.has(FlagN))
	assert.True(t, c.regs.has(FlagH)) // 0x5 + 0xF > 0xF
	assert.True(t, c.regs.has(FlagC)) // 0x05 + 0xFF > 0xFF
}

func TestCB_BIT_SetsZWithoutModifyingOperand(t *testing.T) {
	c, _ := newCPUAt(0xC000, 0xCB, 0x40) // BIT 0,B
	c.regs.b = 0x00
	c.regs.set(FlagC, true)
	cycles := c.Step()
	assert.Equal(t, 2, cycles)
	assert.True(t, c.regs.has(FlagZ))
	assert.True(t, c.regs.has(FlagH))
	assert.False(t, c.regs.has(FlagN))
	assert.True(t, c.regs.has(FlagC)) // preserved
	assert.Equal(t, byte(0x00), c.regs.b)
}

func TestCB_RES_SET_OnIndirectHL(t *testing.T) {
	c, bus := newCPUAt(0xC000, 0xCB, 0x86, 0xCB, 0xDE) // RES 0,(HL); SET 3,(HL)
	c.regs.setHL(0xD000)
	bus.ram[0xD000] = 0xFF

	cycles := c.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, byte(0xFE), bus.ram[0xD000])

	c.Step()
	assert.Equal(t, byte(0xFE), bus.ram[0xD000]) // bit 3 was already set
}
