package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// vrc24 implements mapper 25 (VRC2/VRC4) per spec.md §4.5's terse essential
// description: "8-bit character registers; optional interrupt counter." PRG
// is two swappable 8KiB windows (one fixed-position-by-mode, like MMC3's
// $8000/$C000 swap) plus a fixed last bank; CHR is eight direct 8-bit 1KiB
// registers (the real chip splits each into two nibble writes - collapsed
// here to a single 8-bit register per spec.md's wording); the interrupt
// counter is an 8-bit reload counter clocked once per 114 CPU cycles
// (approximating one scanline) when enabled.
type vrc24 struct {
	cartMemory
	mirror cartridge.MirrorMode

	prgReg  [2]uint8
	prgMode uint8 // 0: reg0 at $8000, fixed-second-last at $C000; 1: swapped
	chrReg  [8]uint8

	irqLatch   uint8
	irqCounter uint8
	irqEnable  bool
	irqEnableAfterAck bool
	irqCycleMode bool // true: clock every CPU cycle; false: clock via scanline prescaler
	irqAsserted bool
	prescaler  int
}

func newVRC24(rom *cartridge.ROM) *vrc24 {
	return &vrc24{cartMemory: newCartMemory(rom), mirror: rom.Mirror}
}

func (m *vrc24) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.readSRAM(addr), true
	case addr >= 0x8000:
		last := m.prgBanks16k*2 - 1
		secondLast := last - 1
		switch {
		case addr < 0xA000:
			if m.prgMode == 0 {
				return m.prgRead8k(int(m.prgReg[0]), addr), true
			}
			return m.prgRead8k(secondLast, addr), true
		case addr < 0xC000:
			return m.prgRead8k(int(m.prgReg[1]), addr), true
		case addr < 0xE000:
			if m.prgMode == 0 {
				return m.prgRead8k(secondLast, addr), true
			}
			return m.prgRead8k(int(m.prgReg[0]), addr), true
		default:
			return m.prgRead8k(last, addr), true
		}
	}
	return 0, false
}

func (m *vrc24) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.writeSRAM(addr, value)
	case addr >= 0x8000 && addr < 0x9000:
		m.prgReg[0] = value & 0x1F
	case addr >= 0x9000 && addr < 0xA000:
		m.mirror = vrc24Mirror(value & 0x3)
		m.prgMode = (value >> 1) & 1 // simplification: folded into same register
	case addr >= 0xA000 && addr < 0xB000:
		m.prgReg[1] = value & 0x1F
	case addr >= 0xB000 && addr < 0xF000:
		reg := int((addr-0xB000)/0x1000)*2 + int((addr>>1)&1)
		if reg < 8 {
			m.chrReg[reg] = value
		}
	case addr >= 0xF000 && addr < 0xF001:
		m.irqLatch = value
	case addr == 0xF001:
		m.irqEnable = value&0x2 != 0
		m.irqEnableAfterAck = value&0x1 != 0
		m.irqCycleMode = value&0x4 != 0
		if m.irqEnable {
			m.irqCounter = m.irqLatch
			m.prescaler = 114
		}
		m.irqAsserted = false
	case addr == 0xF002:
		m.irqEnable = m.irqEnableAfterAck
		m.irqAsserted = false
	}
}

func vrc24Mirror(bits uint8) cartridge.MirrorMode {
	switch bits {
	case 0:
		return cartridge.MirrorVertical
	case 1:
		return cartridge.MirrorHorizontal
	case 2:
		return cartridge.MirrorSingleA
	default:
		return cartridge.MirrorSingleB
	}
}

func (m *vrc24) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	reg := addr / 0x400
	return m.chrRead1k(int(m.chrReg[reg]), addr), true
}

func (m *vrc24) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	reg := addr / 0x400
	m.chrWrite1k(int(m.chrReg[reg]), addr, value)
	return true
}

// CPUClock implements CPUClocker: advances the scanline-equivalent
// prescaler or clocks directly in cycle mode.
func (m *vrc24) CPUClock(cycles uint64) {
	if !m.irqEnable {
		return
	}
	for i := uint64(0); i < cycles; i++ {
		if m.irqCycleMode {
			m.clockCounter()
			continue
		}
		m.prescaler--
		if m.prescaler <= 0 {
			m.prescaler += 114
			m.clockCounter()
		}
	}
}

func (m *vrc24) clockCounter() {
	if m.irqCounter == 0xFF {
		m.irqCounter = m.irqLatch
		m.irqAsserted = true
		return
	}
	m.irqCounter++
}

func (m *vrc24) Reset() {
	m.irqEnable = false
	m.irqAsserted = false
}

func (m *vrc24) Capabilities() Capabilities      { return Capabilities{} }
func (m *vrc24) Mirror() cartridge.MirrorMode    { return m.mirror }
func (m *vrc24) IRQLine() bool                   { return m.irqAsserted }

type vrc24State struct {
	PRGReg  [2]uint8
	PRGMode uint8
	CHRReg  [8]uint8
	Mirror  uint8
	IRQLatch, IRQCounter uint8
	IRQEnable, IRQEnableAfterAck, IRQCycleMode, IRQAsserted bool
	Prescaler int
}

func (m *vrc24) Serialize() json.RawMessage {
	return marshalState(vrc24State{m.prgReg, m.prgMode, m.chrReg, uint8(m.mirror), m.irqLatch, m.irqCounter, m.irqEnable, m.irqEnableAfterAck, m.irqCycleMode, m.irqAsserted, m.prescaler})
}

func (m *vrc24) Deserialize(data json.RawMessage) error {
	var s vrc24State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.prgReg, m.prgMode, m.chrReg, m.mirror = s.PRGReg, s.PRGMode, s.CHRReg, cartridge.MirrorMode(s.Mirror)
	m.irqLatch, m.irqCounter = s.IRQLatch, s.IRQCounter
	m.irqEnable, m.irqEnableAfterAck, m.irqCycleMode, m.irqAsserted = s.IRQEnable, s.IRQEnableAfterAck, s.IRQCycleMode, s.IRQAsserted
	m.prescaler = s.Prescaler
	return nil
}
