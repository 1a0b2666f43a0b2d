// Package mapper implements the cartridge mapper capability contract from
// spec.md §4.5: a tagged set of variants, each the sole owner of its own
// bank-routing state, addressed by the CPU/PPU/APU through a single
// interface so none of them need to know which mapper is installed.
package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/nesgo/nescore/internal/cartridge"
)

// PPUFetchContext tells a mapper's PPURead what kind of fetch is in flight,
// since some mappers (MMC5) select a different CHR bank set for sprite
// fetches than for background fetches.
type PPUFetchContext uint8

const (
	FetchBackground PPUFetchContext = iota
	FetchSprite
	FetchAttribute
)

// NametableContext distinguishes the three kinds of nametable-space fetch a
// has_nametable_override mapper (MMC5) must be able to answer differently.
type NametableContext uint8

const (
	NTTile NametableContext = iota
	NTAttribute
	NTCPUVisible
)

// Capabilities is the capability-flag struct declared at construction time,
// per spec.md §4.5. CPU/PPU never probe for methods by reflection; they find
// the optional interfaces below by type assertion. The PPU checks
// PerTileAttributes and the orchestrator checks ExpansionAudio before using
// the matching interface; ScanlineClocker and NametableOverrider are used
// whenever a mapper implements them, whatever its flags say.
type Capabilities struct {
	ScanlineIRQ       bool
	NametableOverride bool
	PerTileAttributes bool
	CHRLatch          bool
	ExpansionAudio    bool
}

// Mapper is the required operation set on every cartridge mapper.
type Mapper interface {
	// CPURead returns the byte a CPU access of addr (0x4020-0xFFFF) would
	// see, or ok=false if the mapper declines (caller falls back to open
	// bus).
	CPURead(addr uint16) (value uint8, ok bool)
	CPUWrite(addr uint16, value uint8)

	// PPURead answers a pattern/nametable-space fetch ($0000-$3EFF). ok is
	// false when the mapper does not intercept this address (PPU's own
	// nametable RAM / palette handles it).
	PPURead(addr uint16, ctx PPUFetchContext) (value uint8, ok bool)
	// PPUWrite reports whether it consumed the write (true) or the PPU
	// should fall back to its own nametable/CHR-RAM handling.
	PPUWrite(addr uint16, value uint8) bool

	Reset()
	Capabilities() Capabilities
	Mirror() cartridge.MirrorMode

	// IRQLine reports whether this mapper currently asserts its interrupt
	// line to the CPU. Mappers with no interrupt source always return false.
	IRQLine() bool

	Serialize() json.RawMessage
	Deserialize(json.RawMessage) error
}

// ScanlineClocker is implemented by mappers declaring Capabilities.ScanlineIRQ.
// The PPU calls ClockScanline once per filtered A12 rising edge (spec.md §4.3).
type ScanlineClocker interface {
	ClockScanline()
}

// NametableOverrider is implemented by mappers declaring
// Capabilities.NametableOverride (MMC5's ExRAM nametable substitution).
type NametableOverrider interface {
	ReadNametable(addr uint16, ctx NametableContext) (value uint8, ok bool)
	WriteNametable(addr uint16, value uint8) bool
}

// TileAttributer is implemented by mappers declaring
// Capabilities.PerTileAttributes (MMC5 extended attributes).
type TileAttributer interface {
	ExtendedAttribute(coarseX, coarseY int) uint8
}

// RegisterObserver lets a mapper snoop CPU writes to PPU registers
// ($2000-$2007), independent of capability flags.
type RegisterObserver interface {
	OnPPURegisterWrite(addr uint16, value uint8)
}

// EndScanlineObserver is called at dot 4 of every rendered scanline, early
// enough for a mapper interrupt handler to retarget nametables before the
// next background fetch (MMC5's scanline-compare IRQ).
type EndScanlineObserver interface {
	OnEndScanline(line int)
}

// CPUClocker receives CPU cycles from the orchestrator (one at a time during
// catch-up, the rest of each instruction's cycles after it retires), for
// mappers with a free-running CPU-cycle timer (FME-7, VRC2/VRC4).
type CPUClocker interface {
	CPUClock(cycles uint64)
}

// InstructionBoundaryObserver is called by the orchestrator after every CPU
// instruction completes. It is not a spec.md capability flag; it is the
// mechanism mapper 1 (MMC1) uses internally to reject a second register
// write landing in the same instruction (the documented
// dummy-write-then-real-write behavior of read-modify-write instructions).
type InstructionBoundaryObserver interface {
	EndInstruction()
}

// ExpansionAudioSource is implemented by mappers declaring
// Capabilities.ExpansionAudio (MMC5).
type ExpansionAudioSource interface {
	ClockCPUCycle()
	Sample() float32
}

// New builds the mapper for rom's declared mapper id. Unknown ids fall back
// to NROM and report ok=false so the caller can log a warning-class event
// and continue running, per spec.md §7's "Unknown mapper" taxonomy entry.
func New(rom *cartridge.ROM) (m Mapper, ok bool) {
	switch rom.MapperID {
	case 0:
		return newNROM(rom), true
	case 1:
		return newMMC1(rom), true
	case 2:
		return newUxROM(rom), true
	case 3:
		return newCNROM(rom), true
	case 4:
		return newMMC3(rom, mmc3VariantStandard), true
	case 5:
		return newMMC5(rom), true
	case 6:
		return newMMC6(rom), true
	case 7:
		return newAxROM(rom), true
	case 9:
		return newMMC2(rom), true
	case 10:
		return newMMC4(rom), true
	case 11:
		return newColorDreams(rom), true
	case 25:
		return newVRC24(rom), true
	case 34:
		return newBNROM(rom), true
	case 66:
		return newGxROM(rom), true
	case 69:
		return newFME7(rom), true
	case 79:
		return newNINA0306(rom), true
	case 206:
		return newMMC3(rom, mmc3VariantDxROM), true
	default:
		return newNROM(rom), false
	}
}

func clampBank(bank, count int) int {
	if count <= 0 {
		return 0
	}
	bank %= count
	if bank < 0 {
		bank += count
	}
	return bank
}

// cartMemory holds the byte arrays and small helpers every mapper variant
// shares: read-only PRG/CHR-ROM (or a freshly allocated CHR-RAM buffer), a
// fixed 8KiB PRG-RAM (SRAM) window, and the PRG/CHR bank counts.
type cartMemory struct {
	prg []uint8
	chr []uint8 // CHR-ROM (read-only, shared with ROM) or CHR-RAM (owned, mutable)
	chrIsRAM bool
	sram []uint8 // $6000-$7FFF, 8KiB

	prgBanks16k int
	chrBanks1k  int // CHR expressed in 1KiB units regardless of ROM/RAM
}

func newCartMemory(rom *cartridge.ROM) cartMemory {
	chr := rom.CHR
	isRAM := rom.HasCHRRAM()
	if isRAM {
		size := rom.CHRRAMSize
		if size == 0 {
			size = 8 * 1024
		}
		chr = make([]uint8, size)
	}
	return cartMemory{
		prg:         rom.PRG,
		chr:         chr,
		chrIsRAM:    isRAM,
		sram:        make([]uint8, 8*1024),
		prgBanks16k: len(rom.PRG) / (16 * 1024),
		chrBanks1k:  len(chr) / 1024,
	}
}

// prgRead8k returns the PRG byte at 8KiB bank*0x2000+offset, clamping bank.
func (c *cartMemory) prgRead8k(bank int, offset uint16) uint8 {
	count := len(c.prg) / 0x2000
	bank = clampBank(bank, count)
	idx := bank*0x2000 + int(offset&0x1FFF)
	if idx < 0 || idx >= len(c.prg) {
		return 0
	}
	return c.prg[idx]
}

// prgRead16k returns the PRG byte at 16KiB bank*0x4000+offset, clamping bank.
func (c *cartMemory) prgRead16k(bank int, offset uint16) uint8 {
	count := c.prgBanks16k
	bank = clampBank(bank, count)
	idx := bank*0x4000 + int(offset&0x3FFF)
	if idx < 0 || idx >= len(c.prg) {
		return 0
	}
	return c.prg[idx]
}

// prgRead32k returns the PRG byte at 32KiB bank*0x8000+offset, clamping bank.
func (c *cartMemory) prgRead32k(bank int, offset uint16) uint8 {
	count := len(c.prg) / 0x8000
	if count <= 0 {
		count = 1
	}
	bank = clampBank(bank, count)
	idx := bank*0x8000 + int(offset&0x7FFF)
	if idx < 0 || idx >= len(c.prg) {
		return 0
	}
	return c.prg[idx]
}

func (c *cartMemory) chrRead1k(bank int, offset uint16) uint8 {
	count := len(c.chr) / 0x400
	bank = clampBank(bank, count)
	idx := bank*0x400 + int(offset&0x3FF)
	if idx < 0 || idx >= len(c.chr) {
		return 0
	}
	return c.chr[idx]
}

func (c *cartMemory) chrWrite1k(bank int, offset uint16, value uint8) {
	if !c.chrIsRAM {
		return
	}
	count := len(c.chr) / 0x400
	bank = clampBank(bank, count)
	idx := bank*0x400 + int(offset&0x3FF)
	if idx < 0 || idx >= len(c.chr) {
		return
	}
	c.chr[idx] = value
}

func (c *cartMemory) chrRead8k(bank int, offset uint16) uint8 {
	count := len(c.chr) / 0x2000
	bank = clampBank(bank, count)
	idx := bank*0x2000 + int(offset&0x1FFF)
	if idx < 0 || idx >= len(c.chr) {
		return 0
	}
	return c.chr[idx]
}

func (c *cartMemory) chrWrite8k(bank int, offset uint16, value uint8) {
	if !c.chrIsRAM {
		return
	}
	count := len(c.chr) / 0x2000
	bank = clampBank(bank, count)
	idx := bank*0x2000 + int(offset&0x1FFF)
	if idx < 0 || idx >= len(c.chr) {
		return
	}
	c.chr[idx] = value
}

func (c *cartMemory) readSRAM(addr uint16) uint8 {
	return c.sram[addr&0x1FFF]
}

func (c *cartMemory) writeSRAM(addr uint16, value uint8) {
	c.sram[addr&0x1FFF] = value
}

func marshalState(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Struct-to-JSON of plain mapper register state cannot fail in
		// practice; surface a visible marker rather than a silent empty
		// document if it ever does.
		return json.RawMessage(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return data
}
