package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// mmc1 implements mapper 1: a 5-bit serial shift register feeding three
// 5-bit internal registers (control, chr0, chr1) plus a PRG bank register,
// per spec.md §4.5. Grounded on the shift-register shape of
// andrewthecodertx-go-nes-emulator's pkg/cartridge/mapper1.go.
type mmc1 struct {
	cartMemory

	shift      uint8
	shiftCount uint8

	control uint8 // bit0-1 mirror, bit2-3 prg mode, bit4 chr mode
	chr0    uint8
	chr1    uint8
	prg     uint8

	writtenThisInstruction bool

	prg256kBlock int // selected by chr0 bit4 on >=512KiB boards
}

type mmc1State struct {
	Shift, ShiftCount       uint8
	Control, CHR0, CHR1, PRG uint8
}

func newMMC1(rom *cartridge.ROM) *mmc1 {
	m := &mmc1{cartMemory: newCartMemory(rom)}
	m.control = 0x0C // power-on: PRG mode 3 (fix last, switch first), 32KiB CHR mode
	return m
}

func (m *mmc1) has512kPRG() bool { return len(m.cartMemory.prg) >= 512*1024 }

func (m *mmc1) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.readSRAM(addr), true
	case addr >= 0x8000:
		block := 0
		if m.has512kPRG() {
			block = m.prg256kBlock
		}
		banksPer256k := 256 * 1024 / (16 * 1024)
		prgMode := (m.control >> 2) & 0x3
		switch prgMode {
		case 0, 1: // 32KiB switch
			bank := int(m.prg>>1) + block*banksPer256k/2
			return m.prgRead32k(bank, addr-0x8000), true
		case 2: // fix first bank, switch 16KiB at 0xC000
			if addr < 0xC000 {
				return m.prgRead16k(block*banksPer256k, addr-0x8000), true
			}
			return m.prgRead16k(block*banksPer256k+int(m.prg), addr-0xC000), true
		default: // mode 3: switch 16KiB at 0x8000, fix last bank of the selected block
			if addr < 0xC000 {
				return m.prgRead16k(block*banksPer256k+int(m.prg), addr-0x8000), true
			}
			return m.prgRead16k(block*banksPer256k+banksPer256k-1, addr-0xC000), true
		}
	}
	return 0, false
}

func (m *mmc1) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.writeSRAM(addr, value)
		return
	}
	if addr < 0x8000 {
		return
	}
	if m.writtenThisInstruction {
		return
	}
	m.writtenThisInstruction = true

	if value&0x80 != 0 {
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift = (m.shift >> 1) | ((value & 1) << 4)
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	reg := (addr >> 13) & 0x3
	switch reg {
	case 0:
		m.control = m.shift
	case 1:
		m.chr0 = m.shift
		if m.has512kPRG() {
			if m.shift&0x10 != 0 {
				m.prg256kBlock = 1
			} else {
				m.prg256kBlock = 0
			}
		}
	case 2:
		m.chr1 = m.shift
	case 3:
		m.prg = m.shift & 0x0F
	}
	m.shift = 0
	m.shiftCount = 0
}

// EndInstruction implements InstructionBoundaryObserver: MMC1 ignores a
// second register write landing in the same CPU instruction (the
// read-modify-write dummy-write-then-real-write pattern), per spec.md's
// MMC1 scenario.
func (m *mmc1) EndInstruction() {
	m.writtenThisInstruction = false
}

func (m *mmc1) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	chrMode := (m.control >> 4) & 1
	if chrMode == 0 {
		bank := int(m.chr0 >> 1)
		return m.chrRead8k(bank, addr), true
	}
	if addr < 0x1000 {
		return m.chrRead1k(int(m.chr0)*4, addr), true
	}
	return m.chrRead1k(int(m.chr1)*4, addr-0x1000), true
}

func (m *mmc1) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	chrMode := (m.control >> 4) & 1
	if chrMode == 0 {
		m.chrWrite8k(int(m.chr0>>1), addr, value)
		return true
	}
	if addr < 0x1000 {
		m.chrWrite1k(int(m.chr0)*4, addr, value)
	} else {
		m.chrWrite1k(int(m.chr1)*4, addr-0x1000, value)
	}
	return true
}

func (m *mmc1) Reset() {
	m.shift = 0
	m.shiftCount = 0
	m.control |= 0x0C
}

func (m *mmc1) Capabilities() Capabilities { return Capabilities{} }

func (m *mmc1) Mirror() cartridge.MirrorMode {
	switch m.control & 0x3 {
	case 0:
		return cartridge.MirrorSingleA
	case 1:
		return cartridge.MirrorSingleB
	case 2:
		return cartridge.MirrorVertical
	default:
		return cartridge.MirrorHorizontal
	}
}

func (m *mmc1) IRQLine() bool { return false }

func (m *mmc1) Serialize() json.RawMessage {
	return marshalState(mmc1State{m.shift, m.shiftCount, m.control, m.chr0, m.chr1, m.prg})
}

func (m *mmc1) Deserialize(data json.RawMessage) error {
	var s mmc1State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.shift, m.shiftCount, m.control, m.chr0, m.chr1, m.prg = s.Shift, s.ShiftCount, s.Control, s.CHR0, s.CHR1, s.PRG
	return nil
}
