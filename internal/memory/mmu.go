// Package memory implements the DMG memory bus (MMU) and the peripherals
// it owns: the interval timer, the joypad, and the passive PPU register
// surface. The serial port is a serial.Sink from package serial that the
// bus routes SB/SC to.
package memory

import (
	"github.com/lrazavi/dmgo/internal/addr"
	"github.com/lrazavi/dmgo/internal/serial"
)

// MMU owns the full 64 KiB address space and dispatches reads/writes to
// RAM or to memory-mapped peripherals (spec.md §4.2).
type MMU struct {
	cart *Cartridge
	ram  [0x10000]byte

	Timer  *Timer
	Joypad *Joypad
	PPU    *PPU
	Serial serial.Sink

	ie byte
}

// New returns an MMU with no cartridge loaded and every peripheral in its
// post-boot reset state (spec.md §3): IE=0xE1.
func New() *MMU {
	m := &MMU{
		cart:   NewCartridge(),
		Timer:  NewTimer(),
		Joypad: NewJoypad(),
		PPU:    NewPPU(),
		Serial: serial.NewLogSink(),
		ie:     0xE1,
	}
	return m
}

// NewWithCartridge returns an MMU with cart's ROM mapped at 0x0000-0x7FFF.
func NewWithCartridge(cart *Cartridge) *MMU {
	m := New()
	m.cart = cart
	return m
}

// Read dispatches a pure read by address range; it never mutates bus
// state (spec.md §4.2).
func (m *MMU) Read(address uint16) byte {
	switch {
	case address <= 0x7FFF:
		return m.cart.Read(address)
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		return m.PPU.ReadVRAM(address)
	case address == addr.P1:
		return m.Joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.Serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return m.Timer.Read(address)
	case address == addr.IF:
		return m.ram[address]
	case isLCDRegister(address):
		return m.PPU.Read(address)
	case address == addr.IE:
		return m.ie
	default:
		return m.ram[address]
	}
}

// Write dispatches a write by address range. Side effects per spec.md
// §4.2: FF04 resets the divider, FF44 is ignored, FF46 triggers DMA, FF00
// only updates the row-select bits.
func (m *MMU) Write(address uint16, value byte) {
	switch {
	case address <= 0x7FFF:
		// ROM is read-only for this core; bank switching is out of scope.
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		m.PPU.WriteVRAM(address, value)
	case address == addr.P1:
		m.Joypad.WriteSelect(value)
	case address == addr.SB || address == addr.SC:
		m.Serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		m.Timer.Write(address, value)
	case address == addr.IF:
		m.ram[address] = value
	case address == addr.DMA:
		m.runDMA(value)
		m.Advance(DMACycles)
	case isLCDRegister(address):
		m.PPU.Write(address, value)
	case address == addr.IE:
		m.ie = value
	default:
		m.ram[address] = value
	}
}

// runDMA copies 160 bytes from value*0x100 into OAM (spec.md §4.2). This
// is synchronous: the 160 machine-cycle cost is charged by the caller via
// Advance, since OAM-bus contention is out of scope.
func (m *MMU) runDMA(value byte) {
	src := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		m.ram[addr.OAMStart+i] = m.Read(src + i)
	}
}

// DMACycles is the fixed machine-cycle cost of a DMA transfer.
const DMACycles = 160

// Advance steps the timer and samples the PPU/joypad interrupt predicates
// by delta machine cycles, raising IF bits as described in spec.md §4.2.
func (m *MMU) Advance(delta int) {
	if m.Timer.Advance(delta) {
		m.raiseIF(addr.Timer)
	}
	if m.PPU.ShouldVBlankInterrupt() {
		m.raiseIF(addr.VBlank)
	}
	if m.PPU.ShouldStatInterrupt() {
		m.raiseIF(addr.LCDStat)
	}
	if m.Joypad.AnyPressed() {
		m.raiseIF(addr.Joypad)
	}
}

func (m *MMU) raiseIF(i addr.Interrupt) {
	m.ram[addr.IF] |= 1 << i.Bit()
}

// PendingInterrupt returns the service vector of the highest-priority
// pending interrupt and clears its IF bit as a side effect, or ok=false
// when IE & IF == 0 (spec.md §4.2).
func (m *MMU) PendingInterrupt() (vector uint16, ok bool) {
	pending := m.ie & m.ram[addr.IF] & 0x1F
	if pending == 0 {
		return 0, false
	}

	for _, i := range addr.Priority {
		if pending&(1<<i.Bit()) != 0 {
			m.ram[addr.IF] &^= 1 << i.Bit()
			return i.Vector(), true
		}
	}

	panic("memory: pending interrupt mask non-zero with no matching priority entry")
}

// PendingMask returns IE & IF & 0x1F without side effects, used by the CPU
// to decide whether to leave HALT.
func (m *MMU) PendingMask() byte {
	return m.ie & m.ram[addr.IF] & 0x1F
}

// RequestInterrupt sets i's IF bit directly; used by peripherals whose
// events fall outside the Advance sampling above (e.g. a host-driven
// joypad press edge).
func (m *MMU) RequestInterrupt(i addr.Interrupt) {
	m.raiseIF(i)
}

// Press forwards a button-down event to the joypad and raises the joypad
// interrupt on a released-to-pressed transition.
func (m *MMU) Press(key Key) {
	if m.Joypad.Press(key) {
		m.RequestInterrupt(addr.Joypad)
	}
}

// Release forwards a button-up event to the joypad.
func (m *MMU) Release(key Key) {
	m.Joypad.Release(key)
}

// CartridgeTitle exposes the loaded ROM's header title, for host logging.
func (m *MMU) CartridgeTitle() string {
	return m.cart.Title()
}

func isLCDRegister(address uint16) bool {
	return address >= addr.LCDC && address <= addr.WX
}
