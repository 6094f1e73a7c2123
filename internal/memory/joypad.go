package memory

// Key enumerates the eight DMG buttons. No particular wire ordering is
// required externally (spec.md §4.5).
type Key uint8

const (
	KeyRight Key = iota
	KeyLeft
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeySelect
	KeyStart
)

// Joypad composes the FF00 register out of a row-select and two
// active-low 4-bit button nibbles (spec.md §4.5). The two select fields
// store the raw, active-low P1 bits: true means that column's bit is set,
// i.e. NOT selected.
type Joypad struct {
	dirsBitSet    bool // P1 bit 4 as last written
	actionsBitSet bool // P1 bit 5 as last written
	actions       uint8
	dirs          uint8
}

// NewJoypad returns a joypad with nothing selected and no buttons pressed.
func NewJoypad() *Joypad {
	return &Joypad{dirsBitSet: true, actionsBitSet: true, actions: 0x0F, dirs: 0x0F}
}

// Read composes the FF00 value: bits 6-7 constant 1, bits 4-5 echo the
// current selection, bits 0-3 are the selected column (0xF if neither
// column is selected; the AND of both nibbles if both are selected).
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0)
	if j.dirsBitSet {
		result |= 0x10
	}
	if j.actionsBitSet {
		result |= 0x20
	}

	dirsSelected := !j.dirsBitSet
	actionsSelected := !j.actionsBitSet

	switch {
	case dirsSelected && actionsSelected:
		result |= j.dirs & j.actions
	case dirsSelected:
		result |= j.dirs
	case actionsSelected:
		result |= j.actions
	default:
		result |= 0x0F
	}

	return result
}

// WriteSelect updates the row-select bits (4-5) from a write to FF00; bits
// 0-3 are read-only and ignored.
func (j *Joypad) WriteSelect(value uint8) {
	j.dirsBitSet = value&0x10 != 0
	j.actionsBitSet = value&0x20 != 0
}

// Press clears the active-low bit for key and reports whether any bit
// transitioned from released to pressed (used to raise the joypad
// interrupt).
func (j *Joypad) Press(key Key) (transitioned bool) {
	actionsBefore, dirsBefore := j.actions, j.dirs
	j.setBit(key, false)
	return actionsBefore&^j.actions != 0 || dirsBefore&^j.dirs != 0
}

// Release sets the active-low bit for key back to released.
func (j *Joypad) Release(key Key) {
	j.setBit(key, true)
}

// AnyPressed reports whether any of the eight buttons is currently held,
// used to drive the joypad bus-advance predicate in spec.md §4.2.
func (j *Joypad) AnyPressed() bool {
	return j.actions != 0x0F || j.dirs != 0x0F
}

func (j *Joypad) setBit(key Key, released bool) {
	var target *uint8
	var mask uint8

	switch key {
	case KeyRight:
		target, mask = &j.dirs, 0x01
	case KeyLeft:
		target, mask = &j.dirs, 0x02
	case KeyUp:
		target, mask = &j.dirs, 0x04
	case KeyDown:
		target, mask = &j.dirs, 0x08
	case KeyA:
		target, mask = &j.actions, 0x01
	case KeyB:
		target, mask = &j.actions, 0x02
	case KeySelect:
		target, mask = &j.actions, 0x04
	case KeyStart:
		target, mask = &j.actions, 0x08
	default:
		panic("memory: unknown joypad key")
	}

	if released {
		*target |= mask
	} else {
		*target &^= mask
	}
}
