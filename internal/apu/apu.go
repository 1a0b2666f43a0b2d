// Package apu implements the five-channel NES Audio Processing Unit:
// two pulse channels, a triangle, a noise channel, and the delta-
// modulation channel, mixed through the documented non-linear lookup
// tables and a DC-blocking filter (spec.md §4.4).
package apu

import (
	"github.com/nesgo/nescore/internal/mapper"
)

const (
	cpuFrequencyNTSC = 1789773.0
	defaultSampleRate = 44100
)

// APU is the NES sound chip plus the mixer that turns its five channels
// (and any attached expansion audio) into stereo float samples.
type APU struct {
	pulse1   pulseChannel
	pulse2   pulseChannel
	triangle triangleChannel
	noise    noiseChannel
	dmc      dmcChannel

	channelEnable [5]bool // pulse1, pulse2, triangle, noise, dmc

	// Frame sequencer.
	cycles         uint64
	frameCounter   uint16
	frameMode      bool // false = 4-step, true = 5-step
	frameIRQEnable bool
	frameIRQFlag   bool

	// A write to $4017 takes effect after a 3- or 4-cycle delay chosen by
	// the CPU cycle parity at the time of the write (spec.md §4.4).
	frameWritePending     bool
	frameWriteDelay       uint8
	pendingFrameMode      bool
	pendingFrameIRQOff    bool

	cpuBus CPUAccessor

	expansion mapper.ExpansionAudioSource

	pan [5][5]float64 // pan[channel][0]=left weight, pan[channel][1]=right weight

	leftFilter  dcBlocker
	rightFilter dcBlocker

	sampleRate       int
	cycleAccumulator float64

	// sampleBuffer is interleaved left/right float32 samples, drained by
	// GetSamples once per host audio callback.
	sampleBuffer []float32
}

// New creates an APU with 4-step frame mode, the frame IRQ enabled, and
// every channel panned to the center, matching power-on NES state.
func New() *APU {
	a := &APU{
		sampleRate:     defaultSampleRate,
		frameIRQEnable: true,
		sampleBuffer:   make([]float32, 0, 4096),
	}
	a.noise.shiftReg = 1
	a.dmc.sampleEmpty = true
	for ch := range a.pan {
		a.pan[ch] = [5]float64{1, 1, 1, 1, 1}
	}
	a.pulse1.onesComplement = true
	return a
}

// SetCPUAccessor wires the DMC channel's sample-fetch path to the CPU.
func (a *APU) SetCPUAccessor(bus CPUAccessor) { a.cpuBus = bus }

// RegisterExpansionAudio attaches a mapper-provided audio source (spec.md
// §4.4's "register expansion source" mechanism); its sample is summed into
// the mix ahead of DC blocking.
func (a *APU) RegisterExpansionAudio(src mapper.ExpansionAudioSource) { a.expansion = src }

// SetSampleRate changes the host output sample rate.
func (a *APU) SetSampleRate(rate int) {
	a.sampleRate = rate
	a.cycleAccumulator = 0
}

// SetChannelPan adjusts a channel's left/right mix weight, where channel is
// 0=pulse1, 1=pulse2, 2=triangle, 3=noise, 4=dmc.
func (a *APU) SetChannelPan(channel int, left, right float64) {
	if channel < 0 || channel >= len(a.pan) {
		return
	}
	a.pan[channel][0] = left
	a.pan[channel][1] = right
}

// Reset restores power-on state.
func (a *APU) Reset() {
	a.pulse1 = pulseChannel{onesComplement: true}
	a.pulse2 = pulseChannel{}
	a.triangle = triangleChannel{}
	a.noise = noiseChannel{shiftReg: 1}
	a.dmc = dmcChannel{sampleEmpty: true}

	a.cycles = 0
	a.frameCounter = 0
	a.frameMode = false
	a.frameIRQEnable = true
	a.frameIRQFlag = false
	a.frameWritePending = false

	for i := range a.channelEnable {
		a.channelEnable[i] = false
	}

	a.cycleAccumulator = 0
	a.sampleBuffer = a.sampleBuffer[:0]
	a.leftFilter = dcBlocker{}
	a.rightFilter = dcBlocker{}
}

// Step advances every channel and the frame sequencer by one CPU cycle,
// then emits an audio sample if the sample-rate accumulator has filled.
func (a *APU) Step() {
	a.cycles++

	a.stepFrameCounterWrite()
	a.stepFrameCounter()

	if a.channelEnable[0] {
		a.pulse1.stepTimer()
	}
	if a.channelEnable[1] {
		a.pulse2.stepTimer()
	}
	if a.channelEnable[2] {
		a.triangle.stepTimer()
	}
	if a.channelEnable[3] {
		a.noise.stepTimer()
	}
	if a.channelEnable[4] {
		a.dmc.stepTimer(a.cpuBus)
	}
	if a.expansion != nil {
		a.expansion.ClockCPUCycle()
	}

	a.generateSample()
}

func (a *APU) stepFrameCounterWrite() {
	if !a.frameWritePending {
		return
	}
	a.frameWriteDelay--
	if a.frameWriteDelay != 0 {
		return
	}
	a.frameWritePending = false
	a.frameMode = a.pendingFrameMode
	a.frameIRQEnable = !a.pendingFrameIRQOff
	if a.pendingFrameIRQOff {
		a.frameIRQFlag = false
	}
	a.frameCounter = 0
	if a.frameMode {
		a.clockQuarterFrame()
		a.clockHalfFrame()
	}
}

func (a *APU) stepFrameCounter() {
	a.frameCounter++

	if a.frameMode {
		switch a.frameCounter {
		case 7457:
			a.clockQuarterFrame()
		case 14913:
			a.clockQuarterFrame()
			a.clockHalfFrame()
		case 22371:
			a.clockQuarterFrame()
		case 37281:
			a.clockQuarterFrame()
			a.clockHalfFrame()
			a.frameCounter = 0
		}
		return
	}

	switch a.frameCounter {
	case 7457:
		a.clockQuarterFrame()
	case 14913:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case 22371:
		a.clockQuarterFrame()
	case 29829:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case 29830:
		if a.frameIRQEnable {
			a.frameIRQFlag = true
		}
		a.frameCounter = 0
	}
}

func (a *APU) clockQuarterFrame() {
	a.pulse1.envelope.clock()
	a.pulse2.envelope.clock()
	a.noise.envelope.clock()
	a.triangle.clockLinear()
}

func (a *APU) clockHalfFrame() {
	a.pulse1.length.clock()
	a.pulse1.clockSweep()
	a.pulse2.length.clock()
	a.pulse2.clockSweep()
	a.triangle.length.clock()
	a.noise.length.clock()
}

// generateSample converts CPU-cycle time into sample-rate time and, once a
// sample period has elapsed, mixes and appends one interleaved L/R pair.
func (a *APU) generateSample() {
	a.cycleAccumulator += float64(a.sampleRate) / cpuFrequencyNTSC
	if a.cycleAccumulator < 1.0 {
		return
	}
	a.cycleAccumulator -= 1.0

	p1 := a.pulse1.output()
	p2 := a.pulse2.output()
	tr := a.triangle.output()
	no := a.noise.output()
	dm := a.dmc.output()

	leftPan := [5]float64{a.pan[0][0], a.pan[1][0], a.pan[2][0], a.pan[3][0], a.pan[4][0]}
	rightPan := [5]float64{a.pan[0][1], a.pan[1][1], a.pan[2][1], a.pan[3][1], a.pan[4][1]}
	left := mixSide(p1, p2, tr, no, dm, leftPan)
	right := mixSide(p1, p2, tr, no, dm, rightPan)

	if a.expansion != nil {
		extra := a.expansion.Sample()
		left += extra
		right += extra
	}

	left = clampSample(a.leftFilter.apply(left))
	right = clampSample(a.rightFilter.apply(right))

	a.sampleBuffer = append(a.sampleBuffer, left, right)
}

func clampSample(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// GetSamples drains and returns the accumulated interleaved L/R samples.
func (a *APU) GetSamples() []float32 {
	out := make([]float32, len(a.sampleBuffer))
	copy(out, a.sampleBuffer)
	a.sampleBuffer = a.sampleBuffer[:0]
	return out
}

// IRQAsserted reports whether the frame counter or the DMC currently wants
// an interrupt serviced.
func (a *APU) IRQAsserted() bool { return a.frameIRQFlag || a.dmc.irqFlag }

// WriteRegister dispatches a CPU write in $4000-$4017 to the owning
// channel or control register.
func (a *APU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x4000:
		a.pulse1.writeControl(value)
	case 0x4001:
		a.pulse1.writeSweep(value)
	case 0x4002:
		a.pulse1.writeTimerLow(value)
	case 0x4003:
		a.pulse1.writeTimerHigh(value)

	case 0x4004:
		a.pulse2.writeControl(value)
	case 0x4005:
		a.pulse2.writeSweep(value)
	case 0x4006:
		a.pulse2.writeTimerLow(value)
	case 0x4007:
		a.pulse2.writeTimerHigh(value)

	case 0x4008:
		a.triangle.writeControl(value)
	case 0x400A:
		a.triangle.writeTimerLow(value)
	case 0x400B:
		a.triangle.writeTimerHigh(value)

	case 0x400C:
		a.noise.writeControl(value)
	case 0x400E:
		a.noise.writePeriod(value)
	case 0x400F:
		a.noise.writeLength(value)

	case 0x4010:
		a.dmc.writeControl(value)
	case 0x4011:
		a.dmc.writeDirectLoad(value)
	case 0x4012:
		a.dmc.writeSampleAddress(value)
	case 0x4013:
		a.dmc.writeSampleLength(value)

	case 0x4015:
		a.writeChannelEnable(value)
	case 0x4017:
		a.writeFrameCounter(value)
	}
}

func (a *APU) writeChannelEnable(value uint8) {
	a.channelEnable[0] = value&0x01 != 0
	a.channelEnable[1] = value&0x02 != 0
	a.channelEnable[2] = value&0x04 != 0
	a.channelEnable[3] = value&0x08 != 0
	a.channelEnable[4] = value&0x10 != 0

	if !a.channelEnable[0] {
		a.pulse1.length.value = 0
	}
	if !a.channelEnable[1] {
		a.pulse2.length.value = 0
	}
	if !a.channelEnable[2] {
		a.triangle.length.value = 0
	}
	if !a.channelEnable[3] {
		a.noise.length.value = 0
	}
	if !a.channelEnable[4] {
		a.dmc.bytesRemaining = 0
	} else if !a.dmc.active() {
		a.dmc.restart()
	}

	a.dmc.irqFlag = false
}

// writeFrameCounter schedules the mode-change write's delayed effect; the
// delay is 3 CPU cycles if the write lands on an odd cycle, 4 otherwise
// (spec.md §4.4).
func (a *APU) writeFrameCounter(value uint8) {
	a.pendingFrameMode = value&0x80 != 0
	a.pendingFrameIRQOff = value&0x40 != 0
	a.frameWriteDelay = 4
	if a.cycles%2 == 1 {
		a.frameWriteDelay = 3
	}
	a.frameWritePending = true
}

// ReadStatus answers $4015: the only APU register the CPU can read.
// Reading it clears the frame IRQ flag (not the DMC IRQ flag).
func (a *APU) ReadStatus() uint8 {
	status := uint8(0)
	if a.pulse1.length.active() {
		status |= 0x01
	}
	if a.pulse2.length.active() {
		status |= 0x02
	}
	if a.triangle.length.active() {
		status |= 0x04
	}
	if a.noise.length.active() {
		status |= 0x08
	}
	if a.dmc.active() {
		status |= 0x10
	}
	if a.frameIRQFlag {
		status |= 0x40
	}
	if a.dmc.irqFlag {
		status |= 0x80
	}
	a.frameIRQFlag = false
	return status
}
