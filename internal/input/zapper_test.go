package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeBeam struct {
	scanline, dot int
	frame         [256 * 240]uint32
}

func (f *fakeBeam) Scanline() int                        { return f.scanline }
func (f *fakeBeam) Dot() int                              { return f.dot }
func (f *fakeBeam) GetFrameBuffer() [256 * 240]uint32 { return f.frame }

func TestZapperTriggerBitReflectsHeldState(t *testing.T) {
	z := NewZapper()
	beam := &fakeBeam{}

	require.Equal(t, uint8(0x08), z.Read(beam), "no trigger, no light: only the no-light bit is set")

	z.TriggerDown()
	require.Equal(t, uint8(0x18), z.Read(beam))

	z.TriggerUp()
	require.Equal(t, uint8(0x08), z.Read(beam))
}

func TestZapperSensesLightUnderCursorWithinWindow(t *testing.T) {
	z := NewZapper()
	z.Move(100, 50)

	beam := &fakeBeam{scanline: 51, dot: 100}
	beam.frame[50*256+100] = 0xFFFFFFFF // bright white pixel

	require.Equal(t, uint8(0), z.Read(beam)&0x08, "a bright pixel the beam just passed is sensed as light")
}

func TestZapperMissesDimPixel(t *testing.T) {
	z := NewZapper()
	z.Move(100, 50)

	beam := &fakeBeam{scanline: 50, dot: 100}
	beam.frame[50*256+100] = 0xFF101010 // dark pixel

	require.NotEqual(t, uint8(0), z.Read(beam)&0x08)
}

func TestZapperMissesWhenBeamHasNotReachedCursorYet(t *testing.T) {
	z := NewZapper()
	z.Move(100, 50)

	beam := &fakeBeam{scanline: 49, dot: 100} // beam hasn't reached the cursor's row yet
	beam.frame[50*256+100] = 0xFFFFFFFF

	require.NotEqual(t, uint8(0), z.Read(beam)&0x08)
}

func TestZapperMissesWhenBeamHasLongSincePassed(t *testing.T) {
	z := NewZapper()
	z.Move(100, 50)

	beam := &fakeBeam{scanline: 50 + zapperScanlineWindow + 1, dot: 100}
	beam.frame[50*256+100] = 0xFFFFFFFF

	require.NotEqual(t, uint8(0), z.Read(beam)&0x08)
}

func TestZapperOutOfBoundsCursorNeverSensesLight(t *testing.T) {
	z := NewZapper() // starts off-screen at (-1, -1)
	beam := &fakeBeam{scanline: 0, dot: 0}

	require.NotEqual(t, uint8(0), z.Read(beam)&0x08)
}
