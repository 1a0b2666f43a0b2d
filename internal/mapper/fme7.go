package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// fme7 implements mapper 69 (Sunsoft FME-7): a command/parameter register
// pair selects one of sixteen internal registers, per spec.md §4.5 - eight
// 1KiB CHR banks, three switchable 8KiB PRG windows plus a fixed last bank,
// a $6000-$7FFF window that is either PRG-ROM or work RAM depending on the
// command-8 register, a mirroring register, and a 16-bit down-counting
// CPU-cycle interrupt counter with independent enable and counter-enable
// flags.
type fme7 struct {
	cartMemory
	mirror cartridge.MirrorMode

	command uint8
	chrBank [8]uint8
	prgBank [3]uint8 // windows at $8000, $A000, $C000; $E000 fixed to last bank

	wramSelect bool // command 8 bit6: 1 = ROM at $6000, 0 = RAM
	wramEnable bool // command 8 bit7

	irqCounter     uint16
	irqCountEnable bool
	irqEnable      bool
	irqAsserted    bool
}

func newFME7(rom *cartridge.ROM) *fme7 {
	return &fme7{cartMemory: newCartMemory(rom), mirror: rom.Mirror}
}

func (m *fme7) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.wramSelect {
			last := len(m.prg)/0x2000 - 1
			return m.prgRead8k(last, addr), true
		}
		if !m.wramEnable {
			return 0, true
		}
		return m.readSRAM(addr), true
	case addr >= 0x8000 && addr < 0xA000:
		return m.prgRead8k(int(m.prgBank[0]), addr), true
	case addr >= 0xA000 && addr < 0xC000:
		return m.prgRead8k(int(m.prgBank[1]), addr), true
	case addr >= 0xC000 && addr < 0xE000:
		return m.prgRead8k(int(m.prgBank[2]), addr), true
	case addr >= 0xE000:
		last := len(m.prg)/0x2000 - 1
		return m.prgRead8k(last, addr), true
	}
	return 0, false
}

func (m *fme7) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if !m.wramSelect && m.wramEnable {
			m.writeSRAM(addr, value)
		}
	case addr >= 0x8000 && addr < 0xA000:
		m.command = value & 0x0F
	case addr >= 0xA000 && addr < 0xC000:
		m.writeRegister(value)
	}
}

func (m *fme7) writeRegister(value uint8) {
	switch {
	case m.command <= 0x07:
		m.chrBank[m.command] = value
	case m.command == 0x08:
		m.wramEnable = value&0x80 != 0
		m.wramSelect = value&0x40 != 0
	case m.command >= 0x09 && m.command <= 0x0B:
		m.prgBank[m.command-0x09] = value & 0x3F
	case m.command == 0x0C:
		switch value & 0x3 {
		case 0:
			m.mirror = cartridge.MirrorVertical
		case 1:
			m.mirror = cartridge.MirrorHorizontal
		case 2:
			m.mirror = cartridge.MirrorSingleA
		default:
			m.mirror = cartridge.MirrorSingleB
		}
	case m.command == 0x0D:
		m.irqEnable = value&0x01 != 0
		m.irqCountEnable = value&0x80 != 0
		m.irqAsserted = false
	case m.command == 0x0E:
		m.irqCounter = m.irqCounter&0xFF00 | uint16(value)
	case m.command == 0x0F:
		m.irqCounter = m.irqCounter&0x00FF | uint16(value)<<8
	}
}

// CPUClock implements CPUClocker: the 16-bit counter decrements once per CPU
// cycle while counting is enabled and asserts IRQ on underflow while
// interrupts are enabled.
func (m *fme7) CPUClock(cycles uint64) {
	if !m.irqCountEnable {
		return
	}
	for i := uint64(0); i < cycles; i++ {
		if m.irqCounter == 0 {
			if m.irqEnable {
				m.irqAsserted = true
			}
			m.irqCounter = 0xFFFF
			continue
		}
		m.irqCounter--
	}
}

func (m *fme7) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	reg := addr / 0x400
	return m.chrRead1k(int(m.chrBank[reg]), addr), true
}

func (m *fme7) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	reg := addr / 0x400
	m.chrWrite1k(int(m.chrBank[reg]), addr, value)
	return true
}

func (m *fme7) Reset() {
	m.irqEnable, m.irqCountEnable, m.irqAsserted = false, false, false
}

func (m *fme7) Capabilities() Capabilities   { return Capabilities{} }
func (m *fme7) Mirror() cartridge.MirrorMode { return m.mirror }
func (m *fme7) IRQLine() bool                { return m.irqAsserted }

type fme7State struct {
	Command        uint8
	CHRBank        [8]uint8
	PRGBank        [3]uint8
	WRAMSelect     bool
	WRAMEnable     bool
	IRQCounter     uint16
	IRQCountEnable bool
	IRQEnable      bool
	IRQAsserted    bool
	Mirror         uint8
}

func (m *fme7) Serialize() json.RawMessage {
	return marshalState(fme7State{m.command, m.chrBank, m.prgBank, m.wramSelect, m.wramEnable, m.irqCounter, m.irqCountEnable, m.irqEnable, m.irqAsserted, uint8(m.mirror)})
}

func (m *fme7) Deserialize(data json.RawMessage) error {
	var s fme7State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.command, m.chrBank, m.prgBank = s.Command, s.CHRBank, s.PRGBank
	m.wramSelect, m.wramEnable = s.WRAMSelect, s.WRAMEnable
	m.irqCounter, m.irqCountEnable, m.irqEnable, m.irqAsserted = s.IRQCounter, s.IRQCountEnable, s.IRQEnable, s.IRQAsserted
	m.mirror = cartridge.MirrorMode(s.Mirror)
	return nil
}
