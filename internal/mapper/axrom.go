package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// axrom implements mapper 7: a single switchable 32KiB PRG bank and
// switchable single-screen mirroring selected by the same write, CHR RAM
// only.
type axrom struct {
	cartMemory
	bank       uint8
	singleB    bool
}

func newAxROM(rom *cartridge.ROM) *axrom {
	return &axrom{cartMemory: newCartMemory(rom)}
}

func (m *axrom) CPURead(addr uint16) (uint8, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	return m.prgRead32k(int(m.bank&0x7), addr-0x8000), true
}

func (m *axrom) CPUWrite(addr uint16, value uint8) {
	if addr < 0x8000 {
		return
	}
	m.bank = value & 0x7
	m.singleB = value&0x10 != 0
}

func (m *axrom) PPURead(addr uint16, _ PPUFetchContext) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return m.chrRead8k(0, addr), true
}

func (m *axrom) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	m.chrWrite8k(0, addr, value)
	return true
}

func (m *axrom) Reset()                    { m.bank = 0; m.singleB = false }
func (m *axrom) Capabilities() Capabilities { return Capabilities{} }
func (m *axrom) Mirror() cartridge.MirrorMode {
	if m.singleB {
		return cartridge.MirrorSingleB
	}
	return cartridge.MirrorSingleA
}
func (m *axrom) IRQLine() bool { return false }
func (m *axrom) Serialize() json.RawMessage {
	return marshalState(struct {
		Bank    uint8
		SingleB bool
	}{m.bank, m.singleB})
}
func (m *axrom) Deserialize(data json.RawMessage) error {
	var s struct {
		Bank    uint8
		SingleB bool
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.bank, m.singleB = s.Bank, s.SingleB
	return nil
}
