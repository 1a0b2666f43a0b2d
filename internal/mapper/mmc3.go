package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// mmc3Variant selects behavior differences between mapper 4 (MMC3) and
// mapper 206 (DxROM), which shares MMC3's bank-register layout but ignores
// the mirroring and IRQ registers entirely (spec.md §4.5).
type mmc3Variant uint8

const (
	mmc3VariantStandard mmc3Variant = iota
	mmc3VariantDxROM
)

// mmc3 implements mapper 4 (and, as a restricted variant, mapper 206). Eight
// bank registers R0-R7 govern two swappable/fixed PRG windows at
// $8000/$C000 and CHR windows split 2KiB+2KiB+1KiB*4 per spec.md §4.5.
// Grounded on yoshiomiyamae-gones's pkg/cartridge/mapper/mapper4.go for the
// register layout; the A12-edge/IRQ timing is rebuilt from spec.md §4.3's
// dot-counted filter model (the PPU calls ClockScanline on a verified edge,
// rather than mapper4.go's own M2-history heuristic).
type mmc3 struct {
	cartMemory
	variant mmc3Variant

	bankSelect uint8 // bit0-2 target reg, bit6 prg mode, bit7 chr mode
	bankReg    [8]uint8

	mirror     cartridge.MirrorMode
	prgRAMProt uint8 // bit7 enable, bit6 write-protect

	irqLatch    uint8
	irqCounter  uint8
	irqReload   bool
	irqEnabled  bool
	irqAsserted bool
}

type mmc3State struct {
	BankSelect uint8
	BankReg    [8]uint8
	Mirror     uint8
	PRGRAMProt uint8
	IRQLatch   uint8
	IRQCounter uint8
	IRQReload  bool
	IRQEnabled bool
	IRQAsserted bool
}

func newMMC3(rom *cartridge.ROM, variant mmc3Variant) *mmc3 {
	return &mmc3{cartMemory: newCartMemory(rom), variant: variant, mirror: rom.Mirror, prgRAMProt: 0x80}
}

func (m *mmc3) prgMode() uint8 { return (m.bankSelect >> 6) & 1 }
func (m *mmc3) chrMode() uint8 { return (m.bankSelect >> 7) & 1 }

func (m *mmc3) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMProt&0x80 != 0 {
			return m.readSRAM(addr), true
		}
		return 0, true
	case addr >= 0x8000:
		last := m.prgBanks16k*2 - 1 // 8KiB bank count
		secondLast := last - 1
		var bank int
		switch {
		case addr < 0xA000:
			if m.prgMode() == 0 {
				bank = int(m.bankReg[6])
			} else {
				bank = secondLast
			}
		case addr < 0xC000:
			bank = int(m.bankReg[7])
		case addr < 0xE000:
			if m.prgMode() == 0 {
				bank = secondLast
			} else {
				bank = int(m.bankReg[6])
			}
		default:
			bank = last
		}
		return m.prgRead8k(bank, addr), true
	}
	return 0, false
}

func (m *mmc3) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMProt&0x80 != 0 && m.prgRAMProt&0x40 == 0 {
			m.writeSRAM(addr, value)
		}
	case addr >= 0x8000:
		even := addr&1 == 0
		switch {
		case addr < 0xA000:
			if even {
				m.bankSelect = value
			} else {
				reg := m.bankSelect & 0x7
				m.bankReg[reg] = value
			}
		case addr < 0xC000:
			if even {
				if m.variant == mmc3VariantStandard {
					m.mirror = mmc3MirrorFromBit(value & 1)
				}
			} else {
				m.prgRAMProt = value
			}
		case addr < 0xE000:
			if m.variant == mmc3VariantStandard {
				if even {
					m.irqLatch = value
				} else {
					m.irqReload = true
					m.irqCounter = 0
				}
			}
		default:
			if m.variant == mmc3VariantStandard {
				if even {
					m.irqEnabled = false
					m.irqAsserted = false
				} else {
					m.irqEnabled = true
				}
			}
		}
	}
}

func mmc3MirrorFromBit(bit uint8) cartridge.MirrorMode {
	if bit == 0 {
		return cartridge.MirrorVertical
	}
	return cartridge.MirrorHorizontal
}

func (m *mmc3) chrBank1k(addr uint16) int {
	if m.chrMode() == 0 {
		switch {
		case addr < 0x0800:
			return int(m.bankReg[0]&^1) + int(addr/0x400)
		case addr < 0x1000:
			return int(m.bankReg[1]&^1) + int((addr-0x0800)/0x400)
		default:
			return int(m.bankReg[2+(addr-0x1000)/0x400])
		}
	}
	switch {
	case addr < 0x1000:
		return int(m.bankReg[2+addr/0x400])
	case addr < 0x1800:
		return int(m.bankReg[0]&^1) + int((addr-0x1000)/0x400)
	default:
		return int(m.bankReg[1]&^1) + int((addr-0x1800)/0x400)
	}
}

func (m *mmc3) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return m.chrRead1k(m.chrBank1k(addr), addr), true
}

func (m *mmc3) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	m.chrWrite1k(m.chrBank1k(addr), addr, value)
	return true
}

// ClockScanline implements ScanlineClocker: the PPU calls this once per
// filtered A12 rising edge, satisfying spec.md §8 property 6.
func (m *mmc3) ClockScanline() {
	if m.variant != mmc3VariantStandard {
		return
	}
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqAsserted = true
	}
}

func (m *mmc3) Reset() {
	m.bankSelect = 0
	m.irqCounter = 0
	m.irqEnabled = false
	m.irqAsserted = false
	m.irqReload = false
}

func (m *mmc3) Capabilities() Capabilities {
	return Capabilities{ScanlineIRQ: m.variant == mmc3VariantStandard}
}

func (m *mmc3) Mirror() cartridge.MirrorMode {
	if m.variant == mmc3VariantDxROM {
		return m.mirror // fixed at load, the register write above never fires
	}
	return m.mirror
}

func (m *mmc3) IRQLine() bool { return m.irqAsserted }

func (m *mmc3) Serialize() json.RawMessage {
	return marshalState(mmc3State{m.bankSelect, m.bankReg, uint8(m.mirror), m.prgRAMProt, m.irqLatch, m.irqCounter, m.irqReload, m.irqEnabled, m.irqAsserted})
}

func (m *mmc3) Deserialize(data json.RawMessage) error {
	var s mmc3State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.bankSelect, m.bankReg, m.mirror = s.BankSelect, s.BankReg, cartridge.MirrorMode(s.Mirror)
	m.prgRAMProt, m.irqLatch, m.irqCounter = s.PRGRAMProt, s.IRQLatch, s.IRQCounter
	m.irqReload, m.irqEnabled, m.irqAsserted = s.IRQReload, s.IRQEnabled, s.IRQAsserted
	return nil
}
