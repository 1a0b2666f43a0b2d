package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// mmc2Like implements the shared latch-driven CHR banking of MMC2 (mapper 9)
// and MMC4 (mapper 10): two independent 4KiB pattern-table halves, each with
// two candidate banks selected by a latch that flips to $FD or $FE whenever
// a fetch lands in the documented trigger windows ($0FD8-$0FDF/$0FE8-$0FEF,
// mirrored at $1FD8-$1FDF/$1FE8-$1FEF), per spec.md §4.5.
type mmc2Like struct {
	cartMemory
	mirror cartridge.MirrorMode

	prgBank uint8 // mapper 9: 8KiB switch; mapper 10: 16KiB switch

	chrLatch0, chrLatch1 uint8 // 0xFD or 0xFE
	chrFD0, chrFE0       uint8
	chrFD1, chrFE1       uint8

	is16kPRG bool // true for MMC4 (mapper 10)
}

func newMMC2Like(rom *cartridge.ROM, is16kPRG bool) *mmc2Like {
	return &mmc2Like{cartMemory: newCartMemory(rom), mirror: rom.Mirror, is16kPRG: is16kPRG, chrLatch0: 0xFE, chrLatch1: 0xFE}
}

func newMMC2(rom *cartridge.ROM) *mmc2Like { return newMMC2Like(rom, false) }
func newMMC4(rom *cartridge.ROM) *mmc2Like { return newMMC2Like(rom, true) }

func (m *mmc2Like) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.readSRAM(addr), true
	case addr >= 0x8000:
		if m.is16kPRG {
			if addr < 0xC000 {
				return m.prgRead16k(int(m.prgBank), addr-0x8000), true
			}
			return m.prgRead16k(m.prgBanks16k-1, addr-0xC000), true
		}
		if addr < 0xA000 {
			return m.prgRead8k(int(m.prgBank), addr), true
		}
		// fixed last three 8KiB banks of the final 16KiB-aligned region
		last8kCount := len(m.prg) / 0x2000
		bank := last8kCount - 3 + int((addr-0xA000)/0x2000)
		return m.prgRead8k(bank, addr), true
	}
	return 0, false
}

func (m *mmc2Like) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.writeSRAM(addr, value)
	case addr >= 0xA000 && addr < 0xB000:
		m.prgBank = value
	case addr >= 0xB000 && addr < 0xC000:
		m.chrFD0 = value
	case addr >= 0xC000 && addr < 0xD000:
		m.chrFE0 = value
	case addr >= 0xD000 && addr < 0xE000:
		m.chrFD1 = value
	case addr >= 0xE000 && addr < 0xF000:
		m.chrFE1 = value
	case addr >= 0xF000:
		if value&1 != 0 {
			m.mirror = cartridge.MirrorHorizontal
		} else {
			m.mirror = cartridge.MirrorVertical
		}
	}
}

func (m *mmc2Like) latchTrigger(addr uint16) {
	lowHalf := addr & 0x1000
	tile := addr & 0x0FF8
	switch {
	case lowHalf == 0x0000 && tile == 0x0FD8:
		m.chrLatch0 = 0xFD
	case lowHalf == 0x0000 && tile == 0x0FE8:
		m.chrLatch0 = 0xFE
	case lowHalf == 0x1000 && tile == 0x0FD8:
		m.chrLatch1 = 0xFD
	case lowHalf == 0x1000 && tile == 0x0FE8:
		m.chrLatch1 = 0xFE
	}
}

func (m *mmc2Like) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	var bank uint8
	if addr < 0x1000 {
		if m.chrLatch0 == 0xFD {
			bank = m.chrFD0
		} else {
			bank = m.chrFE0
		}
	} else {
		if m.chrLatch1 == 0xFD {
			bank = m.chrFD1
		} else {
			bank = m.chrFE1
		}
	}
	value := m.chrRead1k(int(bank)*4+int((addr&0xFFF)/0x400), addr&0x3FF)
	m.latchTrigger(addr)
	return value, true
}

func (m *mmc2Like) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	return false // CHR ROM only on real MMC2/MMC4 boards; nothing to write
}

func (m *mmc2Like) Reset() {
	m.chrLatch0, m.chrLatch1 = 0xFE, 0xFE
}

func (m *mmc2Like) Capabilities() Capabilities      { return Capabilities{} }
func (m *mmc2Like) Mirror() cartridge.MirrorMode    { return m.mirror }
func (m *mmc2Like) IRQLine() bool                   { return false }

type mmc2State struct {
	PRGBank              uint8
	ChrLatch0, ChrLatch1 uint8
	ChrFD0, ChrFE0       uint8
	ChrFD1, ChrFE1       uint8
	Mirror               uint8
}

func (m *mmc2Like) Serialize() json.RawMessage {
	return marshalState(mmc2State{m.prgBank, m.chrLatch0, m.chrLatch1, m.chrFD0, m.chrFE0, m.chrFD1, m.chrFE1, uint8(m.mirror)})
}

func (m *mmc2Like) Deserialize(data json.RawMessage) error {
	var s mmc2State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.prgBank = s.PRGBank
	m.chrLatch0, m.chrLatch1 = s.ChrLatch0, s.ChrLatch1
	m.chrFD0, m.chrFE0, m.chrFD1, m.chrFE1 = s.ChrFD0, s.ChrFE0, s.ChrFD1, s.ChrFE1
	m.mirror = cartridge.MirrorMode(s.Mirror)
	return nil
}
