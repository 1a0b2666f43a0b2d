// Package console is the orchestrator: it owns the CPU, PPU, APU, attached
// cartridge/mapper, and the two controller ports, and is the sole scheduler
// driving them through a frame. It implements cpu.Bus, routing every CPU
// bus access to the right device and running the catch-up synchronizer that
// keeps PPU/mapper state correct at the exact cycle of each access.
package console

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"

	"github.com/nesgo/nescore/internal/apu"
	"github.com/nesgo/nescore/internal/cartridge"
	"github.com/nesgo/nescore/internal/cpu"
	"github.com/nesgo/nescore/internal/input"
	"github.com/nesgo/nescore/internal/mapper"
	"github.com/nesgo/nescore/internal/ppu"
)

// RAMInitPattern selects how internal RAM and cartridge work-RAM are filled
// on power-on, for deterministic-replay parity with a chosen host.
type RAMInitPattern int

const (
	RAMInitZero RAMInitPattern = iota
	RAMInitAllOnes
	RAMInitRandom
)

// Config holds the host-tunable options named in spec.md §6.
type Config struct {
	SampleRate         int
	EmulateSound       bool
	RAMInitPattern     RAMInitPattern
	PreferredFrameRate int

	// Port2Zapper, when true, routes $4017 reads to the Zapper instead of
	// the second standard controller — real NES hardware can only have one
	// device plugged into the expansion port at a time.
	Port2Zapper bool
}

// DefaultConfig matches real NES power-on behavior: 60 fps, sound on, RAM
// initialized to all-zero (the most common "cold emulator" choice among the
// {zero, all-ones, random} options the spec enumerates).
func DefaultConfig() Config {
	return Config{
		SampleRate:         44100,
		EmulateSound:       true,
		RAMInitPattern:     RAMInitZero,
		PreferredFrameRate: 60,
	}
}

const ramSize = 0x0800

// Console wires CPU/PPU/APU/mapper/controllers together and implements
// cpu.Bus, running the catch-up-based interleaving described in spec.md
// §4.1/§5 instead of the teacher's after-the-fact block stepping.
type Console struct {
	cfg Config

	cpu *cpu.CPU
	ppu *ppu.PPU
	apu *apu.APU

	rom   *cartridge.ROM
	mpr   mapper.Mapper
	mprOK bool

	devices *input.Devices

	ram [ramSize]uint8

	// Per-instruction catch-up bookkeeping (spec.md §4.1): instrCyclesSoFar
	// counts every CPU bus access (read or write) made so far by the
	// instruction in progress, standing in for its elapsed cycles;
	// instrPPUCaughtUp/instrCPUClockCaughtUp record how many PPU dots and
	// mapper CPU clocks have already been pushed into the PPU/mapper via
	// catch-up, so the outer per-instruction advance only drives the
	// remainder.
	instrCyclesSoFar    uint64
	instrPPUCaughtUp    uint64
	instrCPUClockCaughtUp uint64

	stop          bool
	frameComplete bool

	frameBuffer [256 * 240]uint32

	logger *log.Logger
}

// New builds an unloaded Console: call LoadROM then PowerOn before running
// frames.
func New(cfg Config) *Console {
	c := &Console{cfg: cfg, logger: log.Default()}

	c.apu = apu.New()
	c.apu.SetSampleRate(cfg.SampleRate)

	c.ppu = ppu.New()
	c.devices = input.NewDevices()

	c.cpu = cpu.New(c)
	c.apu.SetCPUAccessor(c.cpu)
	c.cpu.SetControllerReadHook(c.devices.Advance)

	c.ppu.SetNMICallback(c.cpu.SetNMI)
	c.ppu.SetFrameCompleteCallback(func() { c.frameComplete = true })

	return c
}

// SetLogger replaces the default logger (log.Default()) Console warns
// through for unknown-mapper fallback and save-state checksum mismatches.
func (c *Console) SetLogger(l *log.Logger) { c.logger = l }

// LoadROM parses rom bytes and attaches a mapper for it, per spec.md §6's
// iNES/iNES-2.0 parsing rules and §7's "bad cartridge image" failure mode.
func (c *Console) LoadROM(data []uint8) error {
	rom, err := cartridge.Load(data)
	if err != nil {
		return fmt.Errorf("load rom: %w", err)
	}
	m, ok := mapper.New(rom)
	if !ok && c.logger != nil {
		c.logger.Printf("warning: unrecognized mapper id %d, falling back to NROM behavior", rom.MapperID)
	}

	c.rom = rom
	c.mpr = m
	c.mprOK = ok
	c.ppu.AttachMapper(m)
	c.ppu.SetMirror(m.Mirror())

	if src, isSource := m.(mapper.ExpansionAudioSource); isSource && m.Capabilities().ExpansionAudio {
		c.apu.RegisterExpansionAudio(src)
	}

	return nil
}

// MapperRecognized reports whether the loaded cartridge's mapper id was
// actually implemented, or the factory fell back to NROM per spec.md §7's
// "unknown mapper" taxonomy entry.
func (c *Console) MapperRecognized() bool { return c.mprOK }

// PowerOn initializes RAM per the configured fill pattern and resets every
// component, matching a real NES's cold-boot state.
func (c *Console) PowerOn() {
	c.fillRAM()
	c.cpu.Reset()
	c.ppu.Reset()
	c.apu.Reset()
	c.devices.Reset()
	if c.mpr != nil {
		c.mpr.Reset()
	}
	c.stop = false
}

// Reset runs the CPU's documented reset sequence without reinitializing RAM
// or the mapper's persistent state, matching a console's reset button.
func (c *Console) Reset() {
	c.cpu.RequestReset()
}

func (c *Console) fillRAM() {
	switch c.cfg.RAMInitPattern {
	case RAMInitAllOnes:
		for i := range c.ram {
			c.ram[i] = 0xFF
		}
	case RAMInitRandom:
		for i := range c.ram {
			c.ram[i] = uint8(rand.Intn(256))
		}
	default:
		for i := range c.ram {
			c.ram[i] = 0
		}
	}
}

// Stop requests that RunFrame return at the next instruction boundary, per
// spec.md §5's host-settable stop flag. A request made between frames makes
// the next RunFrame return before it executes any instruction; RunFrame
// clears the request when it returns.
func (c *Console) Stop() { c.stop = true }

// RunFrame drives the CPU/APU/PPU/mapper through exactly one PPU frame (or
// until Stop is observed between instructions), per spec.md §4.1's frame
// algorithm.
func (c *Console) RunFrame() {
	c.frameComplete = false

	for !c.frameComplete && !c.stop {
		c.instrCyclesSoFar = 0
		c.instrPPUCaughtUp = 0
		c.instrCPUClockCaughtUp = 0

		instCycles := c.cpu.Step()

		if c.cfg.EmulateSound {
			for i := uint64(0); i < instCycles; i++ {
				c.apu.Step()
			}
		}

		remainingPPUDots := 3*instCycles - c.instrPPUCaughtUp
		for i := uint64(0); i < remainingPPUDots; i++ {
			c.ppu.Step()
		}

		remainingCPUClocks := instCycles - c.instrCPUClockCaughtUp
		if clocker, ok := c.mpr.(mapper.CPUClocker); ok && remainingCPUClocks > 0 {
			clocker.CPUClock(remainingCPUClocks)
		}

		if observer, ok := c.mpr.(mapper.InstructionBoundaryObserver); ok {
			observer.EndInstruction()
		}

		irq := c.apu.IRQAsserted()
		if c.mpr != nil {
			irq = irq || c.mpr.IRQLine()
		}
		c.cpu.SetIRQ(irq)
	}
	c.stop = false

	c.frameBuffer = c.ppu.GetFrameBuffer()
}

// GetFrameBuffer returns the most recently completed frame: 256x240,
// row-major, packed 0xAARRGGBB with the alpha byte always 0xFF.
func (c *Console) GetFrameBuffer() [256 * 240]uint32 { return c.frameBuffer }

// GetAudioSamples drains the APU's interleaved stereo float buffer.
func (c *Console) GetAudioSamples() []float32 { return c.apu.GetSamples() }

// ButtonDown/ButtonUp implement spec.md §6's controller input surface.
func (c *Console) ButtonDown(pad int, b input.Button) { c.pad(pad).SetButton(b, true) }
func (c *Console) ButtonUp(pad int, b input.Button)   { c.pad(pad).SetButton(b, false) }

func (c *Console) pad(n int) *input.Controller {
	if n == 2 {
		return c.devices.Pad2
	}
	return c.devices.Pad1
}

// ZapperMove updates the light gun's cursor position.
func (c *Console) ZapperMove(x, y int) { c.devices.Zapper.Move(x, y) }

// ZapperFireDown/ZapperFireUp implement the trigger half of spec.md §6's
// zapper_fire_down/up operation.
func (c *Console) ZapperFireDown() { c.devices.Zapper.TriggerDown() }
func (c *Console) ZapperFireUp()   { c.devices.Zapper.TriggerUp() }

// catchUpTriggered reports whether addr is one of the ranges spec.md §4.1
// names as requiring the PPU/mapper to be caught up to the exact
// intra-instruction cycle before the access is observed.
func catchUpTriggered(addr uint16) bool {
	switch {
	case addr >= 0x2000 && addr <= 0x3FFF:
		return true
	case addr == 0x4014, addr == 0x4016, addr == 0x4017:
		return true
	case addr >= 0x6000:
		return true
	default:
		return false
	}
}

// catchUp advances the PPU one dot at a time (clocking the mapper once
// every three dots) until it reflects the CPU cycle the current instruction
// has reached, per spec.md §4.1's catch-up description. It only runs for
// addresses in the spec's named trigger list; RAM and $4020-$5FFF accesses
// never disturb PPU/mapper timing.
func (c *Console) catchUp(addr uint16) {
	c.instrCyclesSoFar++
	if !catchUpTriggered(addr) {
		return
	}

	targetPPUDots := 3 * c.instrCyclesSoFar
	for c.instrPPUCaughtUp < targetPPUDots {
		c.ppu.Step()
		c.instrPPUCaughtUp++
		if c.instrPPUCaughtUp%3 == 0 {
			c.instrCPUClockCaughtUp++
			if clocker, ok := c.mpr.(mapper.CPUClocker); ok {
				clocker.CPUClock(1)
			}
		}
	}
}

// Read implements cpu.Bus: the CPU address-range dispatch table from
// spec.md §4.2.
func (c *Console) Read(addr uint16) (uint8, bool) {
	c.catchUp(addr)

	switch {
	case addr <= 0x1FFF:
		return c.ram[addr&0x07FF], true

	case addr >= 0x2000 && addr <= 0x3FFF:
		return c.ppu.ReadRegister(addr), true

	case addr == 0x4015:
		return c.apu.ReadStatus(), true

	case addr == 0x4016:
		return c.devices.Pad1.Read(), true

	case addr == 0x4017:
		if c.cfg.Port2Zapper {
			return c.devices.Zapper.Read(c.ppu), true
		}
		return c.devices.Pad2.Read(), true

	case addr >= 0x4020:
		if c.mpr == nil {
			return 0, false
		}
		return c.mpr.CPURead(addr)

	default:
		return 0, false
	}
}

// Write implements cpu.Bus.
func (c *Console) Write(addr uint16, value uint8) {
	c.catchUp(addr)

	switch {
	case addr <= 0x1FFF:
		c.ram[addr&0x07FF] = value

	case addr >= 0x2000 && addr <= 0x3FFF:
		c.ppu.WriteRegister(addr, value)

	case addr == 0x4014:
		// The actual 256-byte DMA copy and stall-cycle charge happen inside
		// cpu.CPU.runOAMDMA, driven by further Read/Write calls through this
		// same Bus; this case only needs to have triggered catch-up above.

	case addr == 0x4015:
		c.apu.WriteRegister(addr, value)

	case addr == 0x4016:
		c.devices.WriteStrobe(value)

	case addr == 0x4017:
		c.apu.WriteRegister(addr, value)

	case addr >= 0x4000 && addr <= 0x4013:
		c.apu.WriteRegister(addr, value)

	case addr >= 0x4020:
		if c.mpr != nil {
			c.mpr.CPUWrite(addr, value)
			c.ppu.SetMirror(c.mpr.Mirror())
		}
	}
}

// state is the versioned top-level save document aggregating every
// component's own Serialize output plus a ROM checksum for load-time sanity
// checking (spec.md §6).
type state struct {
	Version     int             `json:"version"`
	ROMChecksum uint32          `json:"rom_checksum"`
	CPU         json.RawMessage `json:"cpu"`
	PPU         json.RawMessage `json:"ppu"`
	APU         json.RawMessage `json:"apu"`
	Devices     json.RawMessage `json:"devices"`
	Mapper      json.RawMessage `json:"mapper"`
	RAM         [ramSize]uint8  `json:"ram"`
}

const consoleStateVersion = 1

// SaveState captures every component's state into one versioned document.
func (c *Console) SaveState() (json.RawMessage, error) {
	s := state{
		Version: consoleStateVersion,
		CPU:     c.cpu.Serialize(),
		PPU:     c.ppu.Serialize(),
		APU:     c.apu.Serialize(),
		Devices: c.devices.Serialize(),
		RAM:     c.ram,
	}
	if c.rom != nil {
		s.ROMChecksum = c.rom.Checksum
	}
	if c.mpr != nil {
		s.Mapper = c.mpr.Serialize()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return data, nil
}

// LoadState restores a document previously produced by SaveState, refusing
// one that does not match the currently loaded cartridge.
func (c *Console) LoadState(data json.RawMessage) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if c.rom != nil && s.ROMChecksum != c.rom.Checksum {
		if c.logger != nil {
			c.logger.Printf("warning: save state checksum %08x does not match loaded cartridge %08x", s.ROMChecksum, c.rom.Checksum)
		}
		return fmt.Errorf("load state: checksum %08x does not match loaded cartridge %08x", s.ROMChecksum, c.rom.Checksum)
	}
	if err := c.cpu.Deserialize(s.CPU); err != nil {
		return fmt.Errorf("load state: cpu: %w", err)
	}
	if err := c.ppu.Deserialize(s.PPU); err != nil {
		return fmt.Errorf("load state: ppu: %w", err)
	}
	if err := c.apu.Deserialize(s.APU); err != nil {
		return fmt.Errorf("load state: apu: %w", err)
	}
	if err := c.devices.Deserialize(s.Devices); err != nil {
		return fmt.Errorf("load state: devices: %w", err)
	}
	if c.mpr != nil && len(s.Mapper) > 0 {
		if err := c.mpr.Deserialize(s.Mapper); err != nil {
			return fmt.Errorf("load state: mapper: %w", err)
		}
	}
	c.ram = s.RAM
	return nil
}
