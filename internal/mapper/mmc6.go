package mapper

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// mmc6 implements mapper 6: an MMC3 derivative whose $6000-$7FFF window is a
// small 1KiB internal work RAM split into two 512-byte blocks, each with an
// independent enable/write-protect bit in $A001, per spec.md §4.5.
type mmc6 struct {
	*mmc3
	wram     [1024]uint8
	a001     uint8
}

func newMMC6(rom *cartridge.ROM) *mmc6 {
	return &mmc6{mmc3: newMMC3(rom, mmc3VariantStandard)}
}

func (m *mmc6) blockEnabled(block int) bool {
	if block == 0 {
		return m.a001&0x10 != 0
	}
	return m.a001&0x40 != 0
}

func (m *mmc6) blockWritable(block int) bool {
	if block == 0 {
		return m.a001&0x20 == 0
	}
	return m.a001&0x80 == 0
}

func (m *mmc6) wramIndex(addr uint16) (idx int, block int) {
	off := int(addr & 0x3FF) // 1KiB mirrored across the 8KiB window
	if off >= 512 {
		return off - 512, 1
	}
	return off, 0
}

func (m *mmc6) CPURead(addr uint16) (uint8, bool) {
	if addr >= 0x6000 && addr < 0x8000 {
		idx, block := m.wramIndex(addr)
		if !m.blockEnabled(block) {
			return 0, true
		}
		return m.wram[block*512+idx], true
	}
	return m.mmc3.CPURead(addr)
}

func (m *mmc6) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		idx, block := m.wramIndex(addr)
		if m.blockEnabled(block) && m.blockWritable(block) {
			m.wram[block*512+idx] = value
		}
	case addr >= 0xA000 && addr < 0xC000 && addr&1 == 1:
		m.a001 = value
	default:
		m.mmc3.CPUWrite(addr, value)
	}
}

func (m *mmc6) Reset() {
	m.mmc3.Reset()
	m.a001 = 0
}

type mmc6State struct {
	MMC3 json.RawMessage
	WRAM [1024]uint8
	A001 uint8
}

func (m *mmc6) Serialize() json.RawMessage {
	return marshalState(mmc6State{m.mmc3.Serialize(), m.wram, m.a001})
}

func (m *mmc6) Deserialize(data json.RawMessage) error {
	var s mmc6State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if err := m.mmc3.Deserialize(s.MMC3); err != nil {
		return err
	}
	m.wram, m.a001 = s.WRAM, s.A001
	return nil
}
