package memory

import (
	"strings"
	"unicode"
)

const (
	titleAddress = 0x134
	titleLength  = 16
	romWindow    = 0x8000
)

// Cartridge holds the ROM image mapped at 0x0000-0x7FFF. Bank switching is
// out of scope for this core: only the first 32 KiB of the image is ever
// visible, matching a "no MBC" cartridge.
type Cartridge struct {
	rom   []byte
	title string
}

// NewCartridge returns an empty cartridge, useful for a bus with nothing
// loaded yet.
func NewCartridge() *Cartridge {
	return &Cartridge{rom: make([]byte, romWindow)}
}

// NewCartridgeWithData copies up to the first 32 KiB of data into the
// cartridge's ROM window; a shorter image is zero-padded, a longer one is
// truncated (spec.md §6).
func NewCartridgeWithData(data []byte) *Cartridge {
	c := &Cartridge{rom: make([]byte, romWindow)}
	copy(c.rom, data)
	if len(data) >= titleAddress+titleLength {
		c.title = cleanTitle(data[titleAddress : titleAddress+titleLength])
	}
	return c
}

// Title returns the cartridge's header title, or "(untitled)" if the image
// was too short to carry one.
func (c *Cartridge) Title() string {
	if c.title == "" {
		return "(untitled)"
	}
	return c.title
}

// Read returns the byte at addr within the ROM window.
func (c *Cartridge) Read(addr uint16) byte {
	return c.rom[addr]
}

func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		switch {
		case b == 0:
			runes = append(runes, ' ')
		case unicode.IsPrint(rune(b)):
			runes = append(runes, rune(b))
		default:
			runes = append(runes, '?')
		}
	}
	return strings.TrimSpace(string(runes))
}
