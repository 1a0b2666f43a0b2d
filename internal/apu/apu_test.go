package apu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type stubBus struct {
	reads  []uint16
	stalls uint64
	byteToReturn uint8
}

func (s *stubBus) ReadOpenBus(addr uint16) uint8 {
	s.reads = append(s.reads, addr)
	return s.byteToReturn
}

func (s *stubBus) AddStallCycles(n uint64) { s.stalls += n }

func TestPulseSilentUntilLengthLoaded(t *testing.T) {
	a := New()
	a.channelEnable[0] = true
	a.pulse1.writeControl(0x3F) // duty 0, constant volume 15
	require.Equal(t, uint8(0), a.pulse1.output(), "length counter starts at zero")

	a.pulse1.writeTimerLow(0x00)
	a.pulse1.writeTimerHigh(0x08) // loads lengthTable[1] = 254
	require.True(t, a.pulse1.length.active())
}

func TestPulseSweepMutesBelowMinimumPeriod(t *testing.T) {
	a := New()
	a.pulse1.writeControl(0x3F)
	a.pulse1.writeTimerLow(0x03)
	a.pulse1.writeTimerHigh(0x00) // timer = 3, below the 8-cycle floor
	require.True(t, a.pulse1.sweepMutes())
	require.Equal(t, uint8(0), a.pulse1.output())
}

func TestTriangleSequencerGatedByBothCounters(t *testing.T) {
	a := New()
	a.channelEnable[2] = true
	a.triangle.writeControl(0x10) // halt clear, linear load 0x10
	a.triangle.writeTimerLow(0x01)
	a.triangle.writeTimerHigh(0x00) // timer=1, loads a length counter

	require.Equal(t, uint8(0), a.triangle.linear, "linear counter has not been clocked yet")
	a.clockQuarterFrame()
	require.Equal(t, uint8(0x10), a.triangle.linear)

	before := a.triangle.sequencePos
	for i := 0; i < 4; i++ {
		a.triangle.stepTimer()
	}
	require.NotEqual(t, before, a.triangle.sequencePos, "sequencer advances once both counters are non-zero")
}

func TestNoiseMode1RepeatsWithPeriod93(t *testing.T) {
	n := &noiseChannel{shiftReg: 1, mode: true}
	start := n.shiftReg
	for i := 0; i < 93; i++ {
		n.clockShift()
	}
	require.Equal(t, start, n.shiftReg, "mode 1's short tap (bit6) cycles back to the seed every 93 shifts")
}

func TestNoiseMode0DoesNotRepeatAt93(t *testing.T) {
	n := &noiseChannel{shiftReg: 1, mode: false}
	start := n.shiftReg
	for i := 0; i < 93; i++ {
		n.clockShift()
	}
	require.NotEqual(t, start, n.shiftReg, "mode 0's full 15-bit LFSR has a much longer period than 93")
}

func TestFrameCounterFourStepIRQAtDocumentedCycle(t *testing.T) {
	a := New()
	for i := 0; i < 29829; i++ {
		a.Step()
	}
	require.False(t, a.frameIRQFlag)

	a.Step()
	require.True(t, a.frameIRQFlag, "the frame IRQ fires on the 29830th cycle of 4-step mode")
	require.Equal(t, uint16(0), a.frameCounter)

	require.NotEqual(t, uint8(0), a.ReadStatus()&0x40)
	require.False(t, a.frameIRQFlag, "reading $4015 clears the frame IRQ flag")
}

func TestFrameCounterWriteDelayAppliesModeChangeAndImmediateClock(t *testing.T) {
	a := New()
	a.triangle.writeControl(0x00) // halt clear
	a.triangle.writeTimerHigh(0x00) // loads lengthTable[0] = 10

	a.WriteRegister(0x4017, 0x80) // switch to 5-step mode, write on an even cycle -> 4-cycle delay

	for i := 0; i < 3; i++ {
		a.Step()
		require.Equal(t, uint8(10), a.triangle.length.value, "the mode switch has not landed yet")
	}
	a.Step()
	require.True(t, a.frameMode)
	require.Equal(t, uint8(9), a.triangle.length.value, "5-step mode writes clock an immediate half+quarter frame")
}

func TestDMCRefillFetchesOverCPUBusAndChargesStall(t *testing.T) {
	a := New()
	bus := &stubBus{byteToReturn: 0xAA}
	a.SetCPUAccessor(bus)

	a.WriteRegister(0x4012, 0x00) // sample address $C000
	a.WriteRegister(0x4013, 0x00) // sample length 1
	a.WriteRegister(0x4015, 0x10) // enable DMC

	a.dmc.stepTimer(bus)
	require.Len(t, bus.reads, 1)
	require.Equal(t, uint16(0xC000), bus.reads[0])
	require.Equal(t, uint64(4), bus.stalls)
	require.False(t, a.dmc.sampleEmpty)
}

func TestMixerSilentOnZeroInputs(t *testing.T) {
	pan := [5]float64{1, 1, 1, 1, 1}
	require.Equal(t, float32(0), mixSide(0, 0, 0, 0, 0, pan))
	require.Greater(t, mixSide(15, 15, 0, 0, 0, pan), float32(0))
}
