package main

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/nesgo/nescore/internal/console"
	"github.com/nesgo/nescore/internal/input"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// sampleStream adapts the console's pulled [-1,1] float32 stereo samples
// into the io.Reader ebiten/audio.Player expects: signed 16-bit little-
// endian PCM, interleaved left/right. No pack example streams real-time
// audio through ebiten; this follows ebiten/audio's own documented
// io.Reader contract, the same ecosystem library the teacher already
// depends on for graphics.
type sampleStream struct {
	mu  sync.Mutex
	buf []byte
}

func (s *sampleStream) push(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range samples {
		v := int16(clampFloat(f) * 32767)
		s.buf = append(s.buf, byte(v), byte(v>>8))
	}
}

func (s *sampleStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	if n < len(p) {
		// Starve silently rather than blocking: an underrun just emits
		// silence for the remainder instead of stalling the audio callback.
		for i := n; i < len(p); i++ {
			p[i] = 0
		}
		return len(p), nil
	}
	return n, nil
}

func clampFloat(f float32) float32 {
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	return f
}

// game implements ebiten.Game, grounded on the teacher's
// internal/graphics/ebitengine_backend.go EbitengineGame (Update/Draw/Layout
// shape, frame-image blit, key-to-button mapping), trimmed of its adaptive
// frame-timing/debug-logging machinery since that is host-loop polish with
// no bearing on emulation correctness.
type game struct {
	console *console.Console
	image   *ebiten.Image
	stream  *sampleStream
	player  *audio.Player
}

func newGame(c *console.Console, sampleRate int) *game {
	g := &game{
		console: c,
		image:   ebiten.NewImage(nesWidth, nesHeight),
		stream:  &sampleStream{},
	}

	ctx := audio.NewContext(sampleRate)
	player, err := ctx.NewPlayer(g.stream)
	if err == nil {
		player.Play()
		g.player = player
	}

	return g
}

var keyButtons = map[ebiten.Key]input.Button{
	ebiten.KeyZ:          input.ButtonA,
	ebiten.KeyX:          input.ButtonB,
	ebiten.KeyShiftRight: input.ButtonSelect,
	ebiten.KeyEnter:      input.ButtonStart,
	ebiten.KeyArrowUp:    input.ButtonUp,
	ebiten.KeyArrowDown:  input.ButtonDown,
	ebiten.KeyArrowLeft:  input.ButtonLeft,
	ebiten.KeyArrowRight: input.ButtonRight,
}

func (g *game) Update() error {
	for key, button := range keyButtons {
		if inpututil.IsKeyJustPressed(key) {
			g.console.ButtonDown(1, button)
		} else if inpututil.IsKeyJustReleased(key) {
			g.console.ButtonUp(1, button)
		}
	}

	g.console.RunFrame()
	g.stream.push(g.console.GetAudioSamples())

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.console.GetFrameBuffer()
	pixels := make([]byte, nesWidth*nesHeight*4)
	for i, packed := range fb {
		pixels[i*4+0] = byte(packed >> 16)
		pixels[i*4+1] = byte(packed >> 8)
		pixels[i*4+2] = byte(packed)
		pixels[i*4+3] = 0xFF
	}
	g.image.WritePixels(pixels)

	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scaleX := float64(sw) / float64(nesWidth)
	scaleY := float64(sh) / float64(nesHeight)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(g.image, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func runGUI(c *console.Console) error {
	ebiten.SetWindowTitle("nesgo")
	ebiten.SetWindowSize(nesWidth*3, nesHeight*3)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := newGame(c, cli.SampleRate)
	return ebiten.RunGame(g)
}
