package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// cnrom implements mapper 3: fixed PRG, 8KiB CHR bank switch, with the
// documented hardware bus-conflict semantics (the written byte is ANDed
// against whatever byte is already on the ROM data bus at that address).
type cnrom struct {
	cartMemory
	mirror cartridge.MirrorMode
	bank   uint8
}

func newCNROM(rom *cartridge.ROM) *cnrom {
	return &cnrom{cartMemory: newCartMemory(rom), mirror: rom.Mirror}
}

func (m *cnrom) CPURead(addr uint16) (uint8, bool) {
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

func (m *cnrom) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.writeSRAM(addr, value)
	case addr >= 0x8000:
		busValue, _ := m.CPURead(addr)
		m.bank = value & busValue
	}
}

func (m *cnrom) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return m.chrRead8k(int(m.bank), addr), true
}

func (m *cnrom) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	m.chrWrite8k(int(m.bank), addr, value)
	return true
}

func (m *cnrom) Reset()                      { m.bank = 0 }
func (m *cnrom) Capabilities() Capabilities   { return Capabilities{} }
func (m *cnrom) Mirror() cartridge.MirrorMode { return m.mirror }
func (m *cnrom) IRQLine() bool                { return false }
func (m *cnrom) Serialize() json.RawMessage   { return marshalState(struct{ Bank uint8 }{m.bank}) }
func (m *cnrom) Deserialize(data json.RawMessage) error {
	var s struct{ Bank uint8 }
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.bank = s.Bank
	return nil
}
