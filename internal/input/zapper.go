package input

// BeamSource is the narrow slice of PPU state the zapper needs to judge
// whether the host cursor sits over freshly painted light: the beam's
// current position and the rendered frame. Defining it here instead of
// importing internal/ppu keeps the package decoupled, the same way
// internal/ppu only depends on internal/mapper's capability interfaces.
type BeamSource interface {
	Scanline() int
	Dot() int
	GetFrameBuffer() [256 * 240]uint32
}

const (
	zapperBrightnessThreshold = 0x60 // per-channel; NES palette entries used for bright scenery clear this
	zapperDotWindow           = 20   // +/- beam dots tolerated on the cursor's own scanline
	zapperScanlineWindow      = 4    // scanlines the beam may have already passed, approximating phosphor persistence
)

// Zapper is the NES light gun: a trigger plus a photodiode that senses
// whether the CRT spot under the cursor was recently lit.
type Zapper struct {
	x, y        int
	triggerHeld bool
}

// NewZapper returns a zapper with the cursor off-screen and the trigger
// released.
func NewZapper() *Zapper { return &Zapper{x: -1, y: -1} }

// Move updates the host-reported cursor position, in PPU pixel coordinates.
func (z *Zapper) Move(x, y int) { z.x, z.y = x, y }

// TriggerDown and TriggerUp track the gun's trigger button.
func (z *Zapper) TriggerDown() { z.triggerHeld = true }
func (z *Zapper) TriggerUp()   { z.triggerHeld = false }

func (z *Zapper) reset() { *z = Zapper{x: -1, y: -1} }

// Read answers $4017's zapper bits: bit 4 is the trigger, bit 3 is clear
// while light was just sensed under the cursor and set otherwise (spec.md
// §4.6). The caller must have caught the PPU up to the exact dot of this
// read before calling Read.
func (z *Zapper) Read(beam BeamSource) uint8 {
	var out uint8
	if z.triggerHeld {
		out |= 0x10
	}
	if !z.sensesLight(beam) {
		out |= 0x08
	}
	return out
}

func (z *Zapper) sensesLight(beam BeamSource) bool {
	if z.x < 0 || z.y < 0 || z.x >= 256 || z.y >= 240 {
		return false
	}

	scanlineLag := beam.Scanline() - z.y
	if scanlineLag < 0 || scanlineLag > zapperScanlineWindow {
		return false
	}
	if scanlineLag == 0 {
		dotLag := beam.Dot() - z.x
		if dotLag < 0 || dotLag > zapperDotWindow {
			return false
		}
	}

	frame := beam.GetFrameBuffer()
	return isBright(frame[z.y*256+z.x])
}

func isBright(pixel uint32) bool {
	r := uint8(pixel >> 16)
	g := uint8(pixel >> 8)
	b := uint8(pixel)
	return r >= zapperBrightnessThreshold || g >= zapperBrightnessThreshold || b >= zapperBrightnessThreshold
}
