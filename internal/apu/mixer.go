package apu

// dcBlocker is a one-pole high-pass filter that removes the DC bias the
// non-linear mixer formula otherwise leaves in the signal.
type dcBlocker struct {
	prevIn  float32
	prevOut float32
}

const dcBlockPole = 0.999

func (f *dcBlocker) apply(x float32) float32 {
	y := x - f.prevIn + dcBlockPole*f.prevOut
	f.prevIn = x
	f.prevOut = y
	return y
}

// mixSide combines one stereo side's pan-weighted channel outputs through
// the non-linear lookup tables, per spec.md §4.4: square_table[pulse1+pulse2]
// + tnd_table[3*triangle+2*noise+dmc].
func mixSide(p1, p2, triangle, noise, dmc uint8, pan [5]float64) float32 {
	pulseSum := float64(p1)*pan[0] + float64(p2)*pan[1]
	tndSum := 3*float64(triangle)*pan[2] + 2*float64(noise)*pan[3] + float64(dmc)*pan[4]

	squareIdx := clampIndex(int(pulseSum*16+0.5), len(squareTable)-1)
	tndIdx := clampIndex(int(tndSum*16+0.5), len(tndTable)-1)

	return float32(squareTable[squareIdx] + tndTable[tndIdx])
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
