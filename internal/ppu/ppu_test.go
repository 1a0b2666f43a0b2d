package ppu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nesgo/nescore/internal/cartridge"
	"github.com/nesgo/nescore/internal/mapper"
)

// mockMapper is a flat 8KiB CHR space with no banking, enough to exercise
// the PPU's fetch pipeline, A12 filter, and mirroring without pulling in a
// real mapper variant.
type mockMapper struct {
	chr    [0x2000]uint8
	mirror cartridge.MirrorMode

	scanlineClocks int
}

func (m *mockMapper) CPURead(addr uint16) (uint8, bool) { return 0, false }
func (m *mockMapper) CPUWrite(addr uint16, value uint8) {}
func (m *mockMapper) PPURead(addr uint16, ctx mapper.PPUFetchContext) (uint8, bool) {
	if addr < 0x2000 {
		return m.chr[addr], true
	}
	return 0, false
}
func (m *mockMapper) PPUWrite(addr uint16, value uint8) bool {
	if addr < 0x2000 {
		m.chr[addr] = value
		return true
	}
	return false
}
func (m *mockMapper) Reset()                            {}
func (m *mockMapper) Capabilities() mapper.Capabilities { return mapper.Capabilities{} }
func (m *mockMapper) Mirror() cartridge.MirrorMode      { return m.mirror }
func (m *mockMapper) IRQLine() bool                     { return false }
func (m *mockMapper) Serialize() json.RawMessage        { return json.RawMessage("{}") }
func (m *mockMapper) Deserialize(json.RawMessage) error { return nil }

func (m *mockMapper) ClockScanline() { m.scanlineClocks++ }

func newTestPPU() (*PPU, *mockMapper) {
	m := &mockMapper{mirror: cartridge.MirrorVertical}
	p := New()
	p.AttachMapper(m)
	p.warmingUp = false
	return p, m
}

func TestFrameDotCountEvenVsOddFrame(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuMask = maskShowBG // enable rendering so the odd-frame skip applies

	startFrame := p.frame
	dots := 0
	for p.frame == startFrame {
		p.Step()
		dots++
	}
	require.Equal(t, 89342, dots, "first frame out of reset is even and has no skipped dot")

	dots = 0
	nextFrame := p.frame
	for p.frame == nextFrame {
		p.Step()
		dots++
	}
	require.Equal(t, 89341, dots, "odd frames skip one dot when rendering is enabled")
}

func TestVBlankSetAndClearedAtDocumentedDots(t *testing.T) {
	p, _ := newTestPPU()

	// p.dot always reads one dot ahead of whatever Step just finished
	// processing (advanceDot runs last), so the call that actually sets
	// VBlank is the next one after p.dot first reads 241/1.
	for !(p.scanline == 241 && p.dot == 1) {
		p.Step()
	}
	require.False(t, p.IsVBlank(), "VBlank is set by the Step call that processes dot 1, not observable a dot earlier")
	p.Step()
	require.True(t, p.IsVBlank())

	for !(p.scanline == preRenderLine && p.dot == 1) {
		p.Step()
	}
	p.Step()
	require.False(t, p.IsVBlank())
}

func TestReadingSTATUSAtExactVBlankSetDotSuppressesNMIForTheFrame(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuCtrl |= ctrlNMIEnable

	nmiAsserted := false
	p.SetNMICallback(func(asserted bool) {
		if asserted {
			nmiAsserted = true
		}
	})

	for !(p.scanline == 241 && p.dot == 1) {
		p.Step()
	}
	// This read lands exactly one dot before Step's own VBlank-setting
	// branch runs (spec.md §4.3): it must suppress both the flag and the
	// scheduled NMI for the rest of this frame.
	status := p.ReadRegister(0x2002)
	require.Zero(t, status&statusVBlank, "STATUS read at the race dot must report VBlank clear")

	p.Step() // the dot that would otherwise set VBlank and schedule the NMI
	require.False(t, p.IsVBlank(), "VBlank must stay clear for the rest of this frame after the race read")

	for i := 0; i < 10; i++ {
		p.Step()
	}
	require.False(t, nmiAsserted, "the NMI must never fire this frame once the race read suppressed it")
}

func TestReadingSTATUSOneDotAfterVBlankSetDoesNotSuppressIt(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuCtrl |= ctrlNMIEnable

	for !(p.scanline == 241 && p.dot == 1) {
		p.Step()
	}
	p.Step() // process dot 1: sets VBlank and schedules the NMI

	status := p.ReadRegister(0x2002)
	require.NotZero(t, status&statusVBlank, "a read one dot after the set must observe VBlank already set")
}

func TestBufferedPPUDataReadWithPaletteException(t *testing.T) {
	p, m := newTestPPU()
	m.chr[0x0010] = 0x55

	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2006, 0x10)
	first := p.ReadRegister(0x2007)
	require.NotEqual(t, uint8(0x55), first, "first post-seek read returns the stale buffered value")
	second := p.ReadRegister(0x2007)
	require.Equal(t, uint8(0x55), second)

	p.palette[0x00] = 0x2A
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	immediate := p.ReadRegister(0x2007)
	require.Equal(t, uint8(0x2A), immediate, "palette reads are immediate, not buffered")
}

func TestPaletteMirroring(t *testing.T) {
	p, _ := newTestPPU()
	p.writePalette(0x3F10, 0x16)
	require.Equal(t, uint8(0x16), p.paletteByte(0x3F00))

	p.writePalette(0x3F04, 0x09)
	require.Equal(t, uint8(0x09), p.paletteByte(0x3F14))
}

func TestCoarseYWrapToggle(t *testing.T) {
	p, _ := newTestPPU()
	p.v = 0x7000 | (29 << 5) // fine Y maxed out, so incrementY rolls coarse Y
	p.incrementY()
	require.Equal(t, uint16(0), (p.v>>5)&0x1F)
	require.NotEqual(t, uint16(0), p.v&0x0800, "Y=29 wrap toggles the vertical nametable bit")

	p.v = 0x7000 | (31 << 5)
	p.incrementY()
	require.Equal(t, uint16(0), (p.v>>5)&0x1F)
}

func TestMirroredCPUVisibleNametableRAM(t *testing.T) {
	p, _ := newTestPPU()
	p.SetMirror(cartridge.MirrorHorizontal)

	p.writeByte(0x2000, 0x77)
	require.Equal(t, uint8(0x77), p.readByte(0x2400), "horizontal mirroring maps $2000 and $2400 to the same physical row")
	require.NotEqual(t, uint8(0x77), p.readByte(0x2800))
}

func TestA12RisingEdgeClocksMapperAfterFilterWindow(t *testing.T) {
	p, m := newTestPPU()

	p.fetchPattern(0x0000, mapper.FetchBackground)
	p.fetchPattern(0x1000, mapper.FetchBackground)
	require.Equal(t, 1, m.scanlineClocks, "the very first rising edge always counts")

	// A second rising edge inside the filter window must not clock again.
	p.fetchPattern(0x0000, mapper.FetchBackground)
	p.fetchPattern(0x1000, mapper.FetchBackground)
	require.Equal(t, 1, m.scanlineClocks, "an edge within the filter window is suppressed")

	// Advance past the filter window before the next rising edge.
	p.totalDots += a12FilterDots + 1
	p.fetchPattern(0x0000, mapper.FetchBackground)
	p.fetchPattern(0x1000, mapper.FetchBackground)
	require.Equal(t, 2, m.scanlineClocks, "an edge separated by more than the filter window counts again")
}

func TestSprite0HitSetOnlyAfterOverlappingScanlineRenders(t *testing.T) {
	p, m := newTestPPU()
	p.ppuMask = maskShowBG | maskShowSprites

	// Opaque background tile 1 everywhere, so any sprite pixel over it is a
	// non-transparent-over-non-transparent overlap (spec.md §8 Scenario 2).
	for i := 0; i < 0x3C0; i++ {
		p.nametables[i] = 1
	}
	for row := uint16(0); row < 8; row++ {
		m.chr[1*16+row] = 0xFF
		m.chr[1*16+8+row] = 0xFF
	}

	// Sprite 0 at screen (100, 120): OAM Y is one less than the first
	// screen row the sprite occupies, since evaluateSprites computes
	// row = nextScanline - y - 1.
	p.oam[0] = 119
	p.oam[1] = 1
	p.oam[2] = 0
	p.oam[3] = 100

	for !(p.scanline == 120 && p.dot == 0) {
		p.Step()
	}
	require.Zero(t, p.ppuStatus&statusSprite0, "sprite-0 hit must be clear before the overlapping scanline renders")

	for !(p.scanline == 121 && p.dot == 0) {
		p.Step()
	}
	require.NotZero(t, p.ppuStatus&statusSprite0, "sprite-0 hit must be set once scanline 120 has rendered the overlap")
}

func TestSpriteOverflowFlagSetPastEightSprites(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 9; i++ {
		p.oam[i*4] = 10 // all visible on scanline 11
		p.oam[i*4+3] = uint8(i * 8)
	}
	p.scanline = 10
	p.evaluateSprites()
	require.True(t, p.spriteOverflow)
	require.Equal(t, 8, p.spriteCount)
}
