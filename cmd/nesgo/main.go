// Command nesgo runs the NES emulation core against a host loop: a live
// Ebitengine window by default, or a fixed number of headless frames for
// scripted/CI use.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/nesgo/nescore/internal/console"
	"github.com/nesgo/nescore/internal/version"
)

// cli is the kong command-line grammar, grounded on the kong CLI shape used
// by richardwooding-nostalgiza (another Ebitengine-based NES emulator in the
// retrieval pack) rather than the teacher's stdlib flag package.
var cli struct {
	ROM         string `arg:"" optional:"" name:"rom" help:"Path to an iNES/NES 2.0 ROM file." type:"path"`
	SampleRate  int    `default:"44100" help:"Audio sample rate in Hz."`
	RAMInit     string `default:"zero" enum:"zero,ones,random" help:"Initial RAM fill pattern."`
	FrameRate   int    `default:"60" help:"Preferred frame rate (does not change emulation speed)."`
	Headless    bool   `help:"Run without opening a window, for scripted use."`
	Frames      int    `default:"0" help:"With --headless, number of frames to run before exiting (0 = run forever)."`
	Port2Zapper bool   `help:"Treat controller port 2 as a Zapper light gun instead of a standard pad."`
	Version     bool   `short:"v" help:"Print version information and exit."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("nesgo"),
		kong.Description("A Go NES (Nintendo Entertainment System) emulator."),
		kong.UsageOnError(),
	)

	if cli.Version {
		version.PrintBuildInfo()
		return
	}

	cfg := console.DefaultConfig()
	cfg.SampleRate = cli.SampleRate
	cfg.PreferredFrameRate = cli.FrameRate
	cfg.Port2Zapper = cli.Port2Zapper
	cfg.RAMInitPattern = parseRAMInit(cli.RAMInit)

	c := console.New(cfg)

	if cli.ROM == "" {
		if cli.Headless {
			log.Fatal("--headless requires a ROM path")
		}
		fmt.Println("nesgo: no ROM given, starting with no cartridge loaded")
	} else {
		data, err := os.ReadFile(cli.ROM)
		if err != nil {
			log.Fatalf("reading rom: %v", err)
		}
		if err := c.LoadROM(data); err != nil {
			log.Fatalf("loading rom: %v", err)
		}
		c.PowerOn()
	}

	if cli.Headless {
		runHeadless(c, cli.Frames)
		return
	}

	if err := runGUI(c); err != nil {
		log.Fatalf("gui: %v", err)
	}
}

func parseRAMInit(s string) console.RAMInitPattern {
	switch s {
	case "ones":
		return console.RAMInitAllOnes
	case "random":
		return console.RAMInitRandom
	default:
		return console.RAMInitZero
	}
}

func runHeadless(c *console.Console, frames int) {
	if frames <= 0 {
		for {
			c.RunFrame()
		}
	}
	for i := 0; i < frames; i++ {
		c.RunFrame()
	}
}
