package apu

import "encoding/json"

const apuStateVersion = 1

type pulseState struct {
	EnvStart    bool    `json:"env_start"`
	EnvLoop     bool    `json:"env_loop"`
	EnvConstant bool    `json:"env_constant"`
	EnvVolume   uint8   `json:"env_volume"`
	EnvDecay    uint8   `json:"env_decay"`
	EnvDivider  uint8   `json:"env_divider"`
	LengthHalt  bool    `json:"length_halt"`
	LengthValue uint8   `json:"length_value"`
	DutyCycle   uint8   `json:"duty_cycle"`
	DutyPos     uint8   `json:"duty_pos"`
	SweepEnable bool    `json:"sweep_enable"`
	SweepPeriod uint8   `json:"sweep_period"`
	SweepNegate bool    `json:"sweep_negate"`
	SweepShift  uint8   `json:"sweep_shift"`
	SweepReload bool    `json:"sweep_reload"`
	SweepCount  uint8   `json:"sweep_count"`
	Timer       uint16  `json:"timer"`
	TimerCount  uint16  `json:"timer_count"`
}

type triangleState struct {
	Control      bool   `json:"control"`
	LengthHalt   bool   `json:"length_halt"`
	LengthValue  uint8  `json:"length_value"`
	LinearLoad   uint8  `json:"linear_load"`
	Linear       uint8  `json:"linear"`
	LinearReload bool   `json:"linear_reload"`
	Timer        uint16 `json:"timer"`
	TimerCount   uint16 `json:"timer_count"`
	SequencePos  uint8  `json:"sequence_pos"`
}

type noiseState struct {
	EnvStart    bool   `json:"env_start"`
	EnvLoop     bool   `json:"env_loop"`
	EnvConstant bool   `json:"env_constant"`
	EnvVolume   uint8  `json:"env_volume"`
	EnvDecay    uint8  `json:"env_decay"`
	EnvDivider  uint8  `json:"env_divider"`
	LengthHalt  bool   `json:"length_halt"`
	LengthValue uint8  `json:"length_value"`
	Mode        bool   `json:"mode"`
	PeriodIndex uint8  `json:"period_index"`
	TimerCount  uint16 `json:"timer_count"`
	ShiftReg    uint16 `json:"shift_reg"`
}

type dmcState struct {
	IRQEnable      bool   `json:"irq_enable"`
	Loop           bool   `json:"loop"`
	RateIndex      uint8  `json:"rate_index"`
	OutputLevel    uint8  `json:"output_level"`
	SampleAddress  uint16 `json:"sample_address"`
	SampleLength   uint16 `json:"sample_length"`
	TimerCount     uint16 `json:"timer_count"`
	ShiftRegister  uint8  `json:"shift_register"`
	BitsRemaining  uint8  `json:"bits_remaining"`
	SampleEmpty    bool   `json:"sample_empty"`
	BytesRemaining uint16 `json:"bytes_remaining"`
	CurrentAddress uint16 `json:"current_address"`
	IRQFlag        bool   `json:"irq_flag"`
}

type state struct {
	Version int `json:"version"`

	Pulse1   pulseState    `json:"pulse1"`
	Pulse2   pulseState    `json:"pulse2"`
	Triangle triangleState `json:"triangle"`
	Noise    noiseState    `json:"noise"`
	DMC      dmcState      `json:"dmc"`

	ChannelEnable [5]bool `json:"channel_enable"`

	Cycles         uint64 `json:"cycles"`
	FrameCounter   uint16 `json:"frame_counter"`
	FrameMode      bool   `json:"frame_mode"`
	FrameIRQEnable bool   `json:"frame_irq_enable"`
	FrameIRQFlag   bool   `json:"frame_irq_flag"`
}

func snapshotPulse(p *pulseChannel) pulseState {
	return pulseState{
		EnvStart: p.envelope.start, EnvLoop: p.envelope.loop, EnvConstant: p.envelope.constant,
		EnvVolume: p.envelope.volume, EnvDecay: p.envelope.decay, EnvDivider: p.envelope.divider,
		LengthHalt: p.length.halt, LengthValue: p.length.value,
		DutyCycle: p.dutyCycle, DutyPos: p.dutyPos,
		SweepEnable: p.sweepEnable, SweepPeriod: p.sweepPeriod, SweepNegate: p.sweepNegate,
		SweepShift: p.sweepShift, SweepReload: p.sweepReload, SweepCount: p.sweepCounter,
		Timer: p.timer, TimerCount: p.timerCounter,
	}
}

func restorePulse(p *pulseChannel, s pulseState) {
	onesComplement := p.onesComplement
	*p = pulseChannel{onesComplement: onesComplement}
	p.envelope = envelope{start: s.EnvStart, loop: s.EnvLoop, constant: s.EnvConstant, volume: s.EnvVolume, decay: s.EnvDecay, divider: s.EnvDivider}
	p.length = lengthCounter{halt: s.LengthHalt, value: s.LengthValue}
	p.dutyCycle, p.dutyPos = s.DutyCycle, s.DutyPos
	p.sweepEnable, p.sweepPeriod, p.sweepNegate = s.SweepEnable, s.SweepPeriod, s.SweepNegate
	p.sweepShift, p.sweepReload, p.sweepCounter = s.SweepShift, s.SweepReload, s.SweepCount
	p.timer, p.timerCounter = s.Timer, s.TimerCount
}

// Serialize captures the APU's channel, channel-enable and frame-sequencer
// state as a versioned JSON document, following the pattern established by
// internal/mapper's per-mapper state. A $4017 write still waiting out its
// delay, the pan weights, the resampler accumulator and the DC-blocking
// filter state are not saved.
func (a *APU) Serialize() json.RawMessage {
	s := state{
		Version: apuStateVersion,
		Pulse1:  snapshotPulse(&a.pulse1),
		Pulse2:  snapshotPulse(&a.pulse2),
		Triangle: triangleState{
			Control: a.triangle.controlFlag, LengthHalt: a.triangle.length.halt, LengthValue: a.triangle.length.value,
			LinearLoad: a.triangle.linearLoad, Linear: a.triangle.linear, LinearReload: a.triangle.linearReload,
			Timer: a.triangle.timer, TimerCount: a.triangle.timerCounter, SequencePos: a.triangle.sequencePos,
		},
		Noise: noiseState{
			EnvStart: a.noise.envelope.start, EnvLoop: a.noise.envelope.loop, EnvConstant: a.noise.envelope.constant,
			EnvVolume: a.noise.envelope.volume, EnvDecay: a.noise.envelope.decay, EnvDivider: a.noise.envelope.divider,
			LengthHalt: a.noise.length.halt, LengthValue: a.noise.length.value,
			Mode: a.noise.mode, PeriodIndex: a.noise.periodIndex,
			TimerCount: a.noise.timerCounter, ShiftReg: a.noise.shiftReg,
		},
		DMC: dmcState{
			IRQEnable: a.dmc.irqEnable, Loop: a.dmc.loop, RateIndex: a.dmc.rateIndex,
			OutputLevel: a.dmc.outputLevel, SampleAddress: a.dmc.sampleAddress, SampleLength: a.dmc.sampleLength,
			TimerCount: a.dmc.timerCounter, ShiftRegister: a.dmc.shiftRegister, BitsRemaining: a.dmc.bitsRemaining,
			SampleEmpty: a.dmc.sampleEmpty, BytesRemaining: a.dmc.bytesRemaining, CurrentAddress: a.dmc.currentAddress,
			IRQFlag: a.dmc.irqFlag,
		},
		ChannelEnable:  a.channelEnable,
		Cycles:         a.cycles,
		FrameCounter:   a.frameCounter,
		FrameMode:      a.frameMode,
		FrameIRQEnable: a.frameIRQEnable,
		FrameIRQFlag:   a.frameIRQFlag,
	}
	data, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// Deserialize restores a previously captured state.
func (a *APU) Deserialize(data json.RawMessage) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	restorePulse(&a.pulse1, s.Pulse1)
	restorePulse(&a.pulse2, s.Pulse2)

	a.triangle = triangleChannel{
		controlFlag:  s.Triangle.Control,
		length:       lengthCounter{halt: s.Triangle.LengthHalt, value: s.Triangle.LengthValue},
		linearLoad:   s.Triangle.LinearLoad,
		linear:       s.Triangle.Linear,
		linearReload: s.Triangle.LinearReload,
		timer:        s.Triangle.Timer,
		timerCounter: s.Triangle.TimerCount,
		sequencePos:  s.Triangle.SequencePos,
	}

	a.noise = noiseChannel{
		envelope:    envelope{start: s.Noise.EnvStart, loop: s.Noise.EnvLoop, constant: s.Noise.EnvConstant, volume: s.Noise.EnvVolume, decay: s.Noise.EnvDecay, divider: s.Noise.EnvDivider},
		length:      lengthCounter{halt: s.Noise.LengthHalt, value: s.Noise.LengthValue},
		mode:        s.Noise.Mode,
		periodIndex: s.Noise.PeriodIndex,
		timerCounter: s.Noise.TimerCount,
		shiftReg:    s.Noise.ShiftReg,
	}

	a.dmc = dmcChannel{
		irqEnable: s.DMC.IRQEnable, loop: s.DMC.Loop, rateIndex: s.DMC.RateIndex,
		outputLevel: s.DMC.OutputLevel, sampleAddress: s.DMC.SampleAddress, sampleLength: s.DMC.SampleLength,
		timerCounter: s.DMC.TimerCount, shiftRegister: s.DMC.ShiftRegister, bitsRemaining: s.DMC.BitsRemaining,
		sampleEmpty: s.DMC.SampleEmpty, bytesRemaining: s.DMC.BytesRemaining, currentAddress: s.DMC.CurrentAddress,
		irqFlag: s.DMC.IRQFlag,
	}

	a.channelEnable = s.ChannelEnable
	a.cycles = s.Cycles
	a.frameCounter = s.FrameCounter
	a.frameMode = s.FrameMode
	a.frameIRQEnable = s.FrameIRQEnable
	a.frameIRQFlag = s.FrameIRQFlag
	return nil
}
