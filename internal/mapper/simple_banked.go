package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// simpleBanked covers the handful of mappers in spec.md §4.5 whose entire
// behavior is "one register, PRG bits + CHR bits, no IRQ, no latches":
// Color Dreams (11), BNROM/NINA-001 (34), GxROM (66), NINA-03/06 (79). Each
// only differs in which address range the register lives at and how the
// value's bits are split between PRG and CHR bank select.
type simpleBanked struct {
	cartMemory
	mirror cartridge.MirrorMode
	kind   simpleBankedKind
	prgBank uint8
	chrBank uint8
}

type simpleBankedKind uint8

const (
	kindColorDreams simpleBankedKind = iota
	kindBNROM
	kindGxROM
	kindNINA0306
)

func newColorDreams(rom *cartridge.ROM) *simpleBanked {
	return &simpleBanked{cartMemory: newCartMemory(rom), mirror: rom.Mirror, kind: kindColorDreams}
}

func newBNROM(rom *cartridge.ROM) *simpleBanked {
	return &simpleBanked{cartMemory: newCartMemory(rom), mirror: rom.Mirror, kind: kindBNROM}
}

func newGxROM(rom *cartridge.ROM) *simpleBanked {
	return &simpleBanked{cartMemory: newCartMemory(rom), mirror: rom.Mirror, kind: kindGxROM}
}

func newNINA0306(rom *cartridge.ROM) *simpleBanked {
	return &simpleBanked{cartMemory: newCartMemory(rom), mirror: rom.Mirror, kind: kindNINA0306}
}

func (m *simpleBanked) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.readSRAM(addr), true
	case addr >= 0x8000:
		return m.prgRead32k(int(m.prgBank), addr-0x8000), true
	}
	return 0, false
}

func (m *simpleBanked) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.writeSRAM(addr, value)
		return
	}
	switch m.kind {
	case kindColorDreams:
		if addr >= 0x8000 {
			m.prgBank = value & 0x3
			m.chrBank = (value >> 4) & 0xF
		}
	case kindBNROM:
		if addr >= 0x8000 {
			m.prgBank = value & 0x3
		}
	case kindGxROM:
		if addr >= 0x8000 {
			m.prgBank = (value >> 4) & 0x3
			m.chrBank = value & 0x3
		}
	case kindNINA0306:
		if addr >= 0x4020 && addr < 0x6000 && addr&0x100 == 0x100 {
			m.prgBank = (value >> 3) & 0x1
			m.chrBank = value & 0x7
		}
	}
}

func (m *simpleBanked) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return m.chrRead8k(int(m.chrBank), addr), true
}

func (m *simpleBanked) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	m.chrWrite8k(int(m.chrBank), addr, value)
	return true
}

func (m *simpleBanked) Reset()                      { m.prgBank, m.chrBank = 0, 0 }
func (m *simpleBanked) Capabilities() Capabilities   { return Capabilities{} }
func (m *simpleBanked) Mirror() cartridge.MirrorMode { return m.mirror }
func (m *simpleBanked) IRQLine() bool                { return false }
func (m *simpleBanked) Serialize() json.RawMessage {
	return marshalState(struct{ PRGBank, CHRBank uint8 }{m.prgBank, m.chrBank})
}
func (m *simpleBanked) Deserialize(data json.RawMessage) error {
	var s struct{ PRGBank, CHRBank uint8 }
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.prgBank, m.chrBank = s.PRGBank, s.CHRBank
	return nil
}
