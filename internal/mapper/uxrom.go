package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// uxrom implements mapper 2: a switchable 16KiB bank at $8000, fixed last
// 16KiB at $C000, CHR RAM only (no CHR banking). Grounded on
// andrewthecodertx-go-nes-emulator's pkg/cartridge/mapper2.go.
type uxrom struct {
	cartMemory
	mirror cartridge.MirrorMode
	bank   uint8
}

func newUxROM(rom *cartridge.ROM) *uxrom {
	return &uxrom{cartMemory: newCartMemory(rom), mirror: rom.Mirror}
}

func (m *uxrom) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.readSRAM(addr), true
	case addr >= 0x8000 && addr < 0xC000:
		return m.prgRead16k(int(m.bank), addr-0x8000), true
	case addr >= 0xC000:
		return m.prgRead16k(m.prgBanks16k-1, addr-0xC000), true
	}
	return 0, false
}

func (m *uxrom) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.writeSRAM(addr, value)
	case addr >= 0x8000:
		m.bank = value
	}
}

func (m *uxrom) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return m.chrRead8k(0, addr), true
}

func (m *uxrom) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	m.chrWrite8k(0, addr, value)
	return true
}

func (m *uxrom) Reset()                           { m.bank = 0 }
func (m *uxrom) Capabilities() Capabilities        { return Capabilities{} }
func (m *uxrom) Mirror() cartridge.MirrorMode      { return m.mirror }
func (m *uxrom) IRQLine() bool                     { return false }
func (m *uxrom) Serialize() json.RawMessage        { return marshalState(struct{ Bank uint8 }{m.bank}) }
func (m *uxrom) Deserialize(data json.RawMessage) error {
	var s struct{ Bank uint8 }
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.bank = s.Bank
	return nil
}
