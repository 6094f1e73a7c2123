package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/lrazavi/dmgo"
	"github.com/lrazavi/dmgo/internal/hostterm"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgo"
	app.Description = "A Game Boy (DMG) core: SM83 interpreter, memory bus, timer, and joypad"
	app.Usage = "dmgo [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a terminal display, for --frames scripted runs",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "In --headless mode, run this many frames then exit",
			Value: 60,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug-level logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgo exiting with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := dmgo.NewWithFile(romPath)
	if err != nil {
		return err
	}
	slog.Info("loaded cartridge", "title", emu.CartridgeTitle())

	if c.Bool("headless") {
		frames := c.Int("frames")
		for i := 0; i < frames; i++ {
			emu.RunFrame()
		}
		slog.Info("headless run complete", "frames", emu.FrameCount(), "instructions", emu.InstructionCount())
		return nil
	}

	host, err := hostterm.New(emu)
	if err != nil {
		return err
	}
	return host.Run()
}
