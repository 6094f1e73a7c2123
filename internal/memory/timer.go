package memory

import "github.com/lrazavi/dmgo/internal/addr"

// tacPeriods maps TAC bits 1-0 to the TIMA step size in machine cycles
// (spec.md §4.3).
var tacPeriods = [4]int{256, 4, 16, 64}

// Timer implements DIV/TIMA/TMA/TAC as a pure function of cycle deltas, per
// spec.md §4.3: a DIV accumulator and a TIMA accumulator, each stepped by
// whole-period subtraction rather than per-cycle edge detection.
type Timer struct {
	div  byte
	tima byte
	tma  byte
	tac  byte

	divAccum  int
	timaAccum int
}

// NewTimer returns a timer in its post-boot reset state (spec.md §3).
func NewTimer() *Timer {
	return &Timer{div: 0xAB, tac: 0xF8}
}

// Advance runs the timer forward by delta machine cycles, reporting whether
// TIMA overflowed (the caller sets IF bit 2 on true).
func (t *Timer) Advance(delta int) (overflowed bool) {
	t.divAccum += delta
	for t.divAccum >= 64 {
		t.divAccum -= 64
		t.div++
	}

	if t.tac&0x04 == 0 {
		return false
	}

	period := tacPeriods[t.tac&0x03]
	t.timaAccum += delta
	for t.timaAccum >= period {
		t.timaAccum -= period
		t.tima++
		if t.tima == 0 {
			t.tima = t.tma
			overflowed = true
		}
	}
	return overflowed
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		panic("memory: timer read at unmapped address")
	}
}

// Write implements the timer side of the MMU write contract: any write to
// DIV resets it (and its accumulator) to zero, regardless of the value
// written (spec.md §3 invariant).
func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.div = 0
		t.divAccum = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	default:
		panic("memory: timer write at unmapped address")
	}
}
