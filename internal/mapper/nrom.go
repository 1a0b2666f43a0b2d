package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// nrom implements mapper 0 (NROM): fixed 16 or 32KiB PRG, CHR ROM or RAM, no
// banking at all. Grounded on the teacher's internal/cartridge/mapper000.go.
type nrom struct {
	cartMemory
	mirror cartridge.MirrorMode
}

func newNROM(rom *cartridge.ROM) *nrom {
	return &nrom{cartMemory: newCartMemory(rom), mirror: rom.Mirror}
}

func (m *nrom) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.readSRAM(addr), true
	case addr >= 0x8000:
		if m.prgBanks16k <= 1 {
			return m.prgRead16k(0, addr), true
		}
		return m.prgRead32k(0, addr-0x8000), true
	}
	return 0, false
}

func (m *nrom) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.writeSRAM(addr, value)
	}
}

func (m *nrom) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return m.chrRead8k(0, addr), true
}

func (m *nrom) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	m.chrWrite8k(0, addr, value)
	return true
}

func (m *nrom) Reset()                             {}
func (m *nrom) Capabilities() Capabilities          { return Capabilities{} }
func (m *nrom) Mirror() cartridge.MirrorMode        { return m.mirror }
func (m *nrom) IRQLine() bool                       { return false }
func (m *nrom) Serialize() json.RawMessage          { return marshalState(struct{}{}) }
func (m *nrom) Deserialize(json.RawMessage) error   { return nil }
