package mapper

import (
	"testing"

	"github.com/nesgo/nescore/internal/cartridge"
)

func testROM(mapperID uint16, prgBanks16k, chrBanks8k int) *cartridge.ROM {
	prg := make([]uint8, prgBanks16k*16*1024)
	for i := range prg {
		prg[i] = uint8(i) // distinct bytes make bank selection observable
	}
	chr := make([]uint8, chrBanks8k*8*1024)
	return &cartridge.ROM{
		PRG:      prg,
		CHR:      chr,
		Mirror:   cartridge.MirrorHorizontal,
		MapperID: mapperID,
	}
}

func TestNewFallsBackToNROMForUnknownMapperID(t *testing.T) {
	m, ok := New(testROM(9999, 2, 1))
	if ok {
		t.Fatalf("expected ok=false for an unrecognized mapper id")
	}
	if _, isNROM := m.(*nrom); !isNROM {
		t.Fatalf("expected fallback to *nrom, got %T", m)
	}
}

func TestNewRecognizesEachWiredMapperID(t *testing.T) {
	ids := []uint16{0, 1, 2, 3, 4, 5, 6, 7, 9, 10, 11, 25, 34, 66, 69, 79, 206}
	for _, id := range ids {
		_, ok := New(testROM(id, 2, 1))
		if !ok {
			t.Fatalf("mapper id %d: expected ok=true", id)
		}
	}
}

// writeMMC1Register performs the 5-bit serial write sequence a real CPU
// would issue. Each of the 5 bit writes lands in its own simulated
// instruction (EndInstruction after every write) since MMC1 only accepts one
// register write per instruction.
func writeMMC1Register(m *mmc1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		bit := (value >> i) & 1
		m.CPUWrite(addr, bit)
		m.EndInstruction()
	}
}

func TestMMC1ShiftRegisterAssemblesValueOverFiveWrites(t *testing.T) {
	m := newMMC1(testROM(1, 4, 0))

	writeMMC1Register(m, 0xA000, 0x1A) // CHR0 register, low 5 bits = 0x1A&0x1F=0x1A

	if m.chr0 != 0x1A&0x1F {
		t.Fatalf("chr0 = %#x, want %#x", m.chr0, 0x1A&0x1F)
	}
}

func TestMMC1RejectsSecondRealWriteInSameInstruction(t *testing.T) {
	m := newMMC1(testROM(1, 4, 0))

	// First write of the instruction: processed, advances the shift register.
	m.CPUWrite(0xE000, 1)
	if m.shiftCount != 1 {
		t.Fatalf("shiftCount = %d, want 1 after the instruction's first write", m.shiftCount)
	}

	// A second write landing before EndInstruction (the dummy-write half of a
	// read-modify-write opcode) must be ignored outright, not counted as a
	// second shift-register bit.
	m.CPUWrite(0xE000, 0)
	if m.shiftCount != 1 {
		t.Fatalf("shiftCount = %d, want still 1 (second same-instruction write must be dropped)", m.shiftCount)
	}

	m.EndInstruction()
	m.CPUWrite(0xE000, 0)
	if m.shiftCount != 2 {
		t.Fatalf("shiftCount = %d, want 2 after a fresh instruction boundary", m.shiftCount)
	}
}

func TestMMC1ResetBitForcesPRGMode3(t *testing.T) {
	m := newMMC1(testROM(1, 4, 0))
	writeMMC1Register(m, 0x8000, 0x00) // control = 0 -> PRG mode 0 (32KiB)

	m.CPUWrite(0x8000, 0x80) // bit 7 set: reset the shift register
	m.EndInstruction()

	if m.control&0x0C != 0x0C {
		t.Fatalf("control = %#x, want bits 2-3 forced to 11 after a reset write", m.control)
	}
}

func TestMMC3ScanlineIRQFiresAfterCounterReachesZero(t *testing.T) {
	m := newMMC3(testROM(4, 4, 0), mmc3VariantStandard)

	// $C000 (even): set the latch. $C001 (odd): request a reload on the next clock.
	m.CPUWrite(0xC000, 4)
	m.CPUWrite(0xC001, 0)
	// $E001 (odd): enable IRQs.
	m.CPUWrite(0xE001, 0)

	m.ClockScanline() // reload: counter = latch (4), no assert since counter != 0
	if m.IRQLine() {
		t.Fatalf("IRQ asserted immediately after reload")
	}

	for i := 0; i < 3; i++ {
		m.ClockScanline()
	}
	if m.IRQLine() {
		t.Fatalf("IRQ asserted before counter reached zero")
	}

	m.ClockScanline() // counter: 1 -> 0, assert
	if !m.IRQLine() {
		t.Fatalf("expected IRQ asserted once counter reaches zero with IRQs enabled")
	}
}

func TestMMC3IRQDisableClearsAssertedLine(t *testing.T) {
	m := newMMC3(testROM(4, 4, 0), mmc3VariantStandard)
	m.CPUWrite(0xC000, 1)
	m.CPUWrite(0xC001, 0)
	m.CPUWrite(0xE001, 0) // enable
	m.ClockScanline()
	m.ClockScanline()
	if !m.IRQLine() {
		t.Fatalf("setup failed: expected IRQ asserted before disabling")
	}

	m.CPUWrite(0xE000, 0) // even write to $E000: disable and acknowledge
	if m.IRQLine() {
		t.Fatalf("IRQ still asserted after a disable write")
	}
}

func TestMMC3DxROMVariantIgnoresIRQAndMirrorRegisters(t *testing.T) {
	m := newMMC3(testROM(206, 4, 0), mmc3VariantDxROM)
	m.CPUWrite(0xC000, 1)
	m.CPUWrite(0xC001, 0)
	m.CPUWrite(0xE001, 0)
	for i := 0; i < 5; i++ {
		m.ClockScanline()
	}
	if m.IRQLine() {
		t.Fatalf("DxROM variant must never assert an IRQ")
	}
	if m.Capabilities().ScanlineIRQ {
		t.Fatalf("DxROM variant must not declare ScanlineIRQ capability")
	}
}

func TestNROMMirrorsSecondBankOnSinglePRGBankCarts(t *testing.T) {
	m := newNROM(testROM(0, 1, 1))
	lo, ok := m.CPURead(0x8000)
	if !ok {
		t.Fatalf("read $8000 reported ok=false")
	}
	hi, ok := m.CPURead(0xC000)
	if !ok {
		t.Fatalf("read $C000 reported ok=false")
	}
	if lo != hi {
		t.Fatalf("NROM-128 must mirror its single 16KiB bank at $C000: got %#x vs %#x", lo, hi)
	}
}

func TestMapperStateRoundTripsThroughSerialize(t *testing.T) {
	m := newMMC1(testROM(1, 4, 0))
	writeMMC1Register(m, 0xE000, 5)
	data := m.Serialize()

	restored := newMMC1(testROM(1, 4, 0))
	if err := restored.Deserialize(data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if restored.prg != m.prg {
		t.Fatalf("prg = %#x, want %#x", restored.prg, m.prg)
	}
}
