package cpu

import "github.com/lrazavi/dmgo/internal/bit"

// Flag identifies one of the four condition bits packed into F's high
// nibble (spec.md §3).
type Flag uint8

const (
	FlagZ Flag = 1 << 7
	FlagN Flag = 1 << 6
	FlagH Flag = 1 << 5
	FlagC Flag = 1 << 4
)

// registers holds the eight 8-bit programmer-visible cells plus SP and PC.
// AF/BC/DE/HL pairing is exposed through get/set helpers rather than a
// union type, so each 8-bit register stays individually addressable the
// way opcode operands reference it.
type registers struct {
	a, f byte
	b, c byte
	d, e byte
	h, l byte
	sp   uint16
	pc   uint16
}

// reset loads the documented post-boot register values (spec.md §3).
func (r *registers) reset() {
	r.a, r.f = 0x01, 0xB0
	r.b, r.c = 0x00, 0x13
	r.d, r.e = 0x00, 0xD8
	r.h, r.l = 0x01, 0x4D
	r.sp = 0xFFFE
	r.pc = 0x0100
}

func (r *registers) af() uint16 { return combine(r.a, r.f) }
func (r *registers) bc() uint16 { return combine(r.b, r.c) }
func (r *registers) de() uint16 { return combine(r.d, r.e) }
func (r *registers) hl() uint16 { return combine(r.h, r.l) }

// setAF masks the low nibble of F to zero on every write, the invariant
// spec.md §3 requires of any 16-bit write to AF.
func (r *registers) setAF(v uint16) {
	r.a = high(v)
	r.f = low(v) & 0xF0
}

func (r *registers) setBC(v uint16) { r.b, r.c = high(v), low(v) }
func (r *registers) setDE(v uint16) { r.d, r.e = high(v), low(v) }
func (r *registers) setHL(v uint16) { r.h, r.l = high(v), low(v) }

// has reports whether flag is currently set.
func (r *registers) has(flag Flag) bool {
	return bit.IsSet(flagIndex(flag), r.f)
}

// set composes rather than replaces: it touches only the requested flag
// bit and leaves the others intact (spec.md §4.1 contract).
func (r *registers) set(flag Flag, on bool) {
	r.f = bit.SetTo(flagIndex(flag), r.f, on)
}

// flagIndex converts a Flag bitmask into the bit.IsSet/SetTo index it
// occupies in F's high nibble.
func flagIndex(flag Flag) uint8 {
	switch flag {
	case FlagC:
		return 4
	case FlagH:
		return 5
	case FlagN:
		return 6
	case FlagZ:
		return 7
	default:
		panic("cpu: unknown flag")
	}
}

func combine(hi, lo byte) uint16 { return bit.Combine(hi, lo) }
func high(v uint16) byte         { return bit.High(v) }
func low(v uint16) byte          { return bit.Low(v) }
