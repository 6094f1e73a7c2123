package memory

import "github.com/lrazavi/dmgo/internal/addr"

// statMode bits 0-1 of STAT.
const statModeMask = 0x03

// PPU is a passive register surface: the programmer-visible LCD registers
// and 8 KiB of VRAM, with no tile fetch/OAM scan/sprite compositing
// (spec.md §4.6 — that pipeline is out of scope for this core). LY is
// hard-wired to read 0x90 so that ROMs polling for "past vblank" make
// progress without a real scanline counter.
type PPU struct {
	vram [0x2000]byte

	lcdc byte
	stat byte
	scy  byte
	scx  byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte
}

// NewPPU returns the PPU registers in their post-boot reset state
// (spec.md §3).
func NewPPU() *PPU {
	return &PPU{lcdc: 0x91, stat: 0x85, bgp: 0xFC}
}

func (p *PPU) ReadVRAM(address uint16) byte {
	return p.vram[address-addr.VRAMStart]
}

func (p *PPU) WriteVRAM(address uint16, value byte) {
	p.vram[address-addr.VRAMStart] = value
}

func (p *PPU) Read(address uint16) byte {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return 0x90
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		panic("memory: ppu read at unmapped address")
	}
}

// Write stores a register value; FF44 (LY) is read-only and writes to it
// are silently ignored (spec.md §4.2).
func (p *PPU) Write(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		p.lcdc = value
	case addr.STAT:
		// bits 0-2 are status/derived bits, not directly writable; keep the
		// interrupt-select bits 3-6 and the unused bit 7.
		p.stat = (p.stat & 0x07) | (value & 0xF8)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only, ignored
	case addr.LYC:
		p.lyc = value
		p.updateLYCFlag()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	default:
		panic("memory: ppu write at unmapped address")
	}
}

// updateLYCFlag latches STAT bit 2 (coincidence flag) using the hard-wired
// LY value, matching the LY==LYC condition the interrupt predicate reads.
func (p *PPU) updateLYCFlag() {
	if p.lyc == 0x90 {
		p.stat |= 0x04
	} else {
		p.stat &^= 0x04
	}
}

// ShouldVBlankInterrupt reports the vblank predicate from spec.md §4.6:
// STAT's mode bits (0-1) equal 1.
func (p *PPU) ShouldVBlankInterrupt() bool {
	return p.stat&statModeMask == 1
}

// ShouldStatInterrupt reports whether any of STAT's four interrupt-select
// bits (3-6) is set and the condition it selects currently holds:
// mode 0, mode 1, mode 2, or LY==LYC (latched into STAT bit 2).
func (p *PPU) ShouldStatInterrupt() bool {
	mode := p.stat & statModeMask
	lycMatch := p.stat&0x04 != 0

	if p.stat&0x08 != 0 && mode == 0 {
		return true
	}
	if p.stat&0x10 != 0 && mode == 1 {
		return true
	}
	if p.stat&0x20 != 0 && mode == 2 {
		return true
	}
	if p.stat&0x40 != 0 && lycMatch {
		return true
	}
	return false
}
