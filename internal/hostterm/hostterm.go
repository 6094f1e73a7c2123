// Package hostterm is a terminal host collaborator for the core: it polls
// keyboard input into joypad presses and renders a text status dashboard
// (PC/SP, IME/HALT, LY/LCDC/STAT, frame and instruction counts, cartridge
// title) off the emulator's public accessors. It is presentation, not emulation — the core (package dmgo)
// has no dependency on it, and this package does not decode pixels: the
// full tile-fetch/OAM-scan/sprite-compositing pipeline is out of scope
// for the PPU this core implements.
package hostterm

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lrazavi/dmgo"
	"github.com/lrazavi/dmgo/internal/addr"
	"github.com/lrazavi/dmgo/internal/memory"
)

const frameTime = time.Second / 60

// keyBindings maps the terminal keys a player would naturally reach for
// onto the eight DMG buttons.
var keyBindings = map[rune]memory.Key{
	'w': memory.KeyUp,
	'a': memory.KeyLeft,
	's': memory.KeyDown,
	'd': memory.KeyRight,
	'j': memory.KeyB,
	'k': memory.KeyA,
	'n': memory.KeySelect,
	'm': memory.KeyStart,
}

// Host drives an Emulator from a tcell terminal screen: it polls keyboard
// events into joypad presses/releases and redraws a status dashboard once
// per frame.
type Host struct {
	screen   tcell.Screen
	emulator *dmgo.Emulator
	running  bool
}

// New initializes a tcell screen and returns a Host wired to emu.
func New(emu *dmgo.Emulator) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("hostterm: init terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("hostterm: init terminal: %w", err)
	}

	return &Host{
		screen:   screen,
		emulator: emu,
		running:  true,
	}, nil
}

// Run starts the 60Hz dashboard loop and blocks until the user quits
// (Escape) or the process receives SIGINT/SIGTERM.
func (h *Host) Run() error {
	defer func() {
		slog.Info("closing terminal")
		h.screen.Fini()
	}()

	h.screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))
	h.screen.Clear()

	go h.pollInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for h.running {
		select {
		case <-ticker.C:
			h.emulator.RunFrame()
			h.render()
			h.screen.Show()
		case <-signals:
			h.running = false
			slog.Info("received stop signal")
			return nil
		}
	}

	return nil
}

// pollInput translates tcell key events into joypad presses. It never sees
// the emulated hardware directly — only Emulator.Press/Release.
func (h *Host) pollInput() {
	for h.running {
		ev := h.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				h.running = false
				return
			}
			if key, ok := keyBindings[ev.Rune()]; ok {
				h.emulator.Press(key)
				h.emulator.Release(key)
			}
		case *tcell.EventResize:
			h.screen.Sync()
		}
	}
}

// render draws a one-screen status dashboard: PC/SP, IME/HALT, LY/LCDC/STAT,
// the running frame/instruction counters, and the cartridge title. There is no pixel
// framebuffer to paint, since the PPU this core implements is a register
// surface, not a renderer.
func (h *Host) render() {
	h.screen.Clear()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	c := h.emulator.CPU()
	mem := h.emulator.MMU()

	lines := []string{
		fmt.Sprintf("dmgo — %s", h.emulator.CartridgeTitle()),
		fmt.Sprintf("PC=0x%04X SP=0x%04X IME=%v HALT=%v", c.PC(), c.SP(), c.IME(), c.Halted()),
		fmt.Sprintf("LY=0x%02X LCDC=0x%02X STAT=0x%02X", mem.Read(addr.LY), mem.Read(addr.LCDC), mem.Read(addr.STAT)),
		fmt.Sprintf("frame=%d instructions=%d", h.emulator.FrameCount(), h.emulator.InstructionCount()),
		"",
		"wasd move, j/k = B/A, n/m = select/start, esc quits",
	}

	for row, line := range lines {
		for col, r := range line {
			h.screen.SetContent(col, row, r, nil, style)
		}
	}
}
