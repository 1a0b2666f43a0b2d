package console

import (
	"bytes"
	"log"
	"testing"
)

// buildNROM assembles a minimal 32KiB-PRG/8KiB-CHR iNES image mapped at
// $8000-$FFFF, with a reset vector pointing at $8000 and PRG filled with
// NOPs, so a frame's worth of execution from $8000 runs only NOPs and never
// reaches an undefined opcode.
func buildNROM(prgFill func(prg []uint8)) []uint8 {
	header := []uint8{'N', 'E', 'S', 0x1A, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]uint8, 32*1024)
	for i := range prg {
		prg[i] = 0xEA // NOP
	}
	if prgFill != nil {
		prgFill(prg)
	}
	// Reset vector at the end of the second 16KiB bank -> $FFFC/$FFFD.
	prg[0x7FFC] = 0x00
	prg[0x7FFD] = 0x80

	chr := make([]uint8, 8*1024)

	data := append([]uint8{}, header...)
	data = append(data, prg...)
	data = append(data, chr...)
	return data
}

func newTestConsole(t *testing.T, rom []uint8) *Console {
	t.Helper()
	c := New(DefaultConfig())
	if err := c.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	c.PowerOn()
	return c
}

func TestPowerOnResetsToVector(t *testing.T) {
	c := newTestConsole(t, buildNROM(nil))
	if c.cpu.PC != 0x8000 {
		t.Fatalf("PC = %#x, want 0x8000", c.cpu.PC)
	}
}

func TestRunFrameAdvancesOneFullFrame(t *testing.T) {
	c := newTestConsole(t, buildNROM(nil))
	startFrame := c.ppu.FrameCount()

	c.RunFrame()

	if c.ppu.FrameCount() != startFrame+1 {
		t.Fatalf("frame count = %d, want %d", c.ppu.FrameCount(), startFrame+1)
	}
}

func TestStopFlagEndsRunFrameEarly(t *testing.T) {
	c := newTestConsole(t, buildNROM(nil))
	startFrame := c.ppu.FrameCount()
	c.Stop()

	c.RunFrame()

	if c.ppu.FrameCount() != startFrame {
		t.Fatalf("frame count advanced despite Stop being set before any instruction ran")
	}
}

func TestControllerRoundTripsThroughBus(t *testing.T) {
	c := newTestConsole(t, buildNROM(nil))
	c.ButtonDown(1, 0x01) // ButtonA

	c.Write(0x4016, 1)
	c.Write(0x4016, 0)
	v, ok := c.Read(0x4016)
	if !ok {
		t.Fatalf("read $4016 reported ok=false")
	}
	if v&1 != 1 {
		t.Fatalf("bit 0 = %d, want 1 (button A held)", v&1)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	rom := buildNROM(nil)
	c := newTestConsole(t, rom)
	c.RunFrame()

	data, err := c.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	restored := newTestConsole(t, rom)
	if err := restored.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if restored.cpu.PC != c.cpu.PC || restored.cpu.Cycles() != c.cpu.Cycles() {
		t.Fatalf("restored CPU state does not match: PC %#x/%#x cycles %d/%d",
			restored.cpu.PC, c.cpu.PC, restored.cpu.Cycles(), c.cpu.Cycles())
	}
}

func TestLoadStateRejectsMismatchedChecksum(t *testing.T) {
	romA := buildNROM(nil)
	romB := buildNROM(func(prg []uint8) { prg[0] = 0x00 }) // BRK instead of NOP changes the checksum

	a := newTestConsole(t, romA)
	data, err := a.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	b := newTestConsole(t, romB)
	var logged bytes.Buffer
	b.SetLogger(log.New(&logged, "", 0))
	if err := b.LoadState(data); err == nil {
		t.Fatalf("LoadState accepted a save document from a different cartridge")
	}
	if logged.Len() == 0 {
		t.Fatalf("expected a warning logged for the checksum mismatch")
	}
}

func TestUnrecognizedMapperFallsBackToNROMButStillRuns(t *testing.T) {
	header := []uint8{'N', 'E', 'S', 0x1A, 2, 1, 0xF0, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]uint8, 32*1024)
	for i := range prg {
		prg[i] = 0xEA
	}
	prg[0x7FFC], prg[0x7FFD] = 0x00, 0x80
	chr := make([]uint8, 8*1024)
	data := append([]uint8{}, header...)
	data = append(data, prg...)
	data = append(data, chr...)

	c := New(DefaultConfig())
	var logged bytes.Buffer
	c.SetLogger(log.New(&logged, "", 0))
	if err := c.LoadROM(data); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if c.MapperRecognized() {
		t.Fatalf("expected an unrecognized high mapper id to report MapperRecognized() == false")
	}
	if logged.Len() == 0 {
		t.Fatalf("expected a warning logged for the unrecognized mapper fallback")
	}
	c.PowerOn()
	c.RunFrame() // must not panic despite the fallback mapper
}
