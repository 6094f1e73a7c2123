// Package dmgo wires the SM83 interpreter and the memory bus into a single
// runnable core: load a cartridge, press/release buttons, and step the
// system one instruction or one frame at a time.
package dmgo

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lrazavi/dmgo/internal/cpu"
	"github.com/lrazavi/dmgo/internal/memory"
)

// mcyclesPerFrame is one DMG frame's worth of machine cycles: 70224
// T-cycles at 4 T-cycles per M-cycle.
const mcyclesPerFrame = 70224 / 4

// Emulator is the root struct tying the CPU to the bus it drives. It holds
// no presentation state; rendering, input polling, and ROM-file handling
// are host concerns layered on top (spec.md Non-goals).
type Emulator struct {
	cpu *cpu.CPU
	mem *memory.MMU

	instructionCount uint64
	frameCount       uint64
}

// New returns an Emulator with no cartridge loaded.
func New() *Emulator {
	return newWithMMU(memory.New())
}

// NewWithFile returns an Emulator with the ROM at path mapped at
// 0x0000-0x7FFF.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dmgo: read ROM: %w", err)
	}

	cart := memory.NewCartridgeWithData(data)
	slog.Debug("loaded ROM", "path", path, "size", len(data), "title", cart.Title())

	return newWithMMU(memory.NewWithCartridge(cart)), nil
}

// NewWithData returns an Emulator with cartridge data already in memory,
// for embedding the core in a host that loads ROMs itself.
func NewWithData(data []byte) *Emulator {
	return newWithMMU(memory.NewWithCartridge(memory.NewCartridgeWithData(data)))
}

func newWithMMU(mem *memory.MMU) *Emulator {
	return &Emulator{
		cpu: cpu.New(mem),
		mem: mem,
	}
}

// Step executes a single CPU instruction (or one HALT/interrupt-service
// cycle) and returns the machine cycles it consumed.
func (e *Emulator) Step() int {
	cycles := e.cpu.Step()
	e.instructionCount++
	return cycles
}

// RunFrame runs instructions until at least one frame's worth of machine
// cycles (17556) has elapsed, then returns.
func (e *Emulator) RunFrame() {
	total := 0
	for total < mcyclesPerFrame {
		total += e.Step()
	}
	e.frameCount++
	if e.frameCount%60 == 0 {
		slog.Debug("frame completed", "frame", e.frameCount, "pc", fmt.Sprintf("0x%04X", e.cpu.PC()))
	}
}

// Press forwards a button-down event to the joypad.
func (e *Emulator) Press(key memory.Key) { e.mem.Press(key) }

// Release forwards a button-up event to the joypad.
func (e *Emulator) Release(key memory.Key) { e.mem.Release(key) }

// CPU exposes the underlying interpreter, mainly for host debug surfaces.
func (e *Emulator) CPU() *cpu.CPU { return e.cpu }

// MMU exposes the underlying bus, mainly for host debug surfaces.
func (e *Emulator) MMU() *memory.MMU { return e.mem }

// InstructionCount returns the number of Step calls executed so far.
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

// FrameCount returns the number of completed RunFrame calls.
func (e *Emulator) FrameCount() uint64 { return e.frameCount }

// CartridgeTitle exposes the loaded ROM header's title, for host logging.
func (e *Emulator) CartridgeTitle() string { return e.mem.CartridgeTitle() }
