// Package ppu implements the NES picture processing unit: the loopy v/t/x/w
// scroll registers, the dot-by-dot background shift-register pipeline,
// sprite evaluation including the documented overflow bug, and the A12-edge
// filter that drives scanline-counting mappers.
package ppu

import (
	"github.com/nesgo/nescore/internal/cartridge"
	"github.com/nesgo/nescore/internal/mapper"
)

const (
	dotsPerScanline  = 341
	scanlinesPerFrame = 262
	visibleScanlines  = 240
	postRenderLine    = 240
	preRenderLine     = 261

	ctrlNMIEnable     = 0x80
	ctrlSpriteHeight  = 0x20
	ctrlBGTable       = 0x10
	ctrlSpriteTable   = 0x08
	ctrlIncrement32   = 0x04

	maskGrayscale     = 0x01
	maskShowBGLeft    = 0x02
	maskShowSpLeft    = 0x04
	maskShowBG        = 0x08
	maskShowSprites   = 0x10

	statusOverflow = 0x20
	statusSprite0  = 0x40
	statusVBlank   = 0x80

	a12FilterDots = 12
)

// PPU is the 2C02 picture processing unit. It fetches pattern data (and, for
// mappers that override them, nametable bytes) through the mapper that
// AttachMapper wires in; nametable storage and palette RAM are owned
// directly by the PPU below.
type PPU struct {
	// CPU-visible register latches
	ppuCtrl, ppuMask, ppuStatus uint8
	oamAddr                      uint8
	ioLatch                      uint8
	warmingUp                    bool
	warmupDotsRemaining          int

	// Loopy scroll/address registers
	v, t uint16
	x    uint8
	w    bool

	readBuffer uint8

	// Nametable RAM: 2KiB physical, four-screen carts get an extra 2KiB.
	nametables     [0x800]uint8
	fourScreenExtra [0x800]uint8
	palette        [32]uint8

	oam          [256]uint8
	secondaryOAM [32]uint8
	spriteCount  int
	spriteIndexes [8]int
	spriteOverflow bool

	// Per-scanline sprite render state, loaded at the end of evaluation.
	spritePatternLo [8]uint8
	spritePatternHi [8]uint8
	spriteX         [8]uint8
	spriteAttr      [8]uint8
	spriteIsZero    [8]bool

	scanline int
	dot      int
	frame    uint64
	oddFrame bool

	// Background pipeline: 16-bit pattern shift registers and the 8-bit
	// attribute shift registers spec.md describes as loaded every 8 dots.
	bgPatternShiftLo, bgPatternShiftHi uint16
	bgAttrShiftLo, bgAttrShiftHi      uint8
	bgAttrLatchLo, bgAttrLatchHi      uint8

	nextTileID   uint8
	nextAttr     uint8
	nextPatternLo uint8
	nextPatternHi uint8

	nmiOutputPending    bool
	nmiDelayCounter     int
	suppressVBlankSet   bool

	frameBuffer [256 * 240]uint32

	cart  mapper.Mapper
	mirror cartridge.MirrorMode

	a12Previous      bool
	a12EverHigh      bool
	totalDots        uint64
	a12LastHighDot   uint64

	nmiCallback   func(bool)
	frameCallback func()
}

// New returns a PPU with no mapper attached; AttachMapper must be called
// before Step does anything useful.
func New() *PPU {
	p := &PPU{}
	p.Reset()
	return p
}

// AttachMapper wires the cartridge mapper this PPU fetches pattern and
// (optionally) nametable data through.
func (p *PPU) AttachMapper(m mapper.Mapper) {
	p.cart = m
	p.mirror = m.Mirror()
}

// SetMirror updates the nametable mirroring mode. The orchestrator calls it
// when a cartridge is loaded and after every CPU write to the mapper, passing
// the mapper's current Mirror(), so mapper register writes that change
// mirroring reach the PPU.
func (p *PPU) SetMirror(mode cartridge.MirrorMode) {
	p.mirror = mode
}

// SetNMICallback installs the function the PPU calls (with true on assert,
// false on de-assert) when the CPU-visible NMI line changes.
func (p *PPU) SetNMICallback(cb func(bool)) {
	p.nmiCallback = cb
}

// SetFrameCompleteCallback installs the function called once per completed
// frame, after the frame buffer has its final pixel.
func (p *PPU) SetFrameCompleteCallback(cb func()) {
	p.frameCallback = cb
}

func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0
	p.ioLatch = 0
	p.v, p.t = 0, 0
	p.x = 0
	p.w = false
	p.scanline = 0
	p.dot = 0
	p.frame = 0
	p.oddFrame = false
	p.warmingUp = true
	p.warmupDotsRemaining = dotsPerScanline
	p.bgPatternShiftLo, p.bgPatternShiftHi = 0, 0
	p.bgAttrShiftLo, p.bgAttrShiftHi = 0, 0
	p.a12Previous = false
	p.a12EverHigh = false
	p.totalDots = 0
	p.a12LastHighDot = 0
	p.suppressVBlankSet = false
}

func (p *PPU) backgroundEnabled() bool { return p.ppuMask&maskShowBG != 0 }
func (p *PPU) spritesEnabled() bool    { return p.ppuMask&maskShowSprites != 0 }
func (p *PPU) renderingEnabled() bool  { return p.backgroundEnabled() || p.spritesEnabled() }
func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&ctrlSpriteHeight != 0 {
		return 16
	}
	return 8
}

// ReadRegister services a CPU read of $2000-$2007 (already demirrored by the
// caller onto that range).
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 7 {
	case 2: // PPUSTATUS
		value := (p.ppuStatus & 0xE0) | (p.ioLatch & 0x1F)
		p.ppuStatus &^= statusVBlank
		p.w = false
		if p.scanline == postRenderLine+1 && p.dot == 1 {
			// Reading STATUS at the exact VBlank-set dot (spec.md §4.3):
			// Step hasn't processed this dot yet, so there is nothing to
			// undo here. Step's own VBlank-setting branch consults and
			// consumes this flag instead of setting VBlank and scheduling
			// the NMI for this frame.
			p.suppressVBlankSet = true
		}
		p.ioLatch = value
		return value
	case 4: // OAMDATA
		value := p.oam[p.oamAddr]
		p.ioLatch = value
		return value
	case 7: // PPUDATA
		value := p.readPPUData()
		p.ioLatch = value
		return value
	default:
		// CTRL, MASK, OAMADDR, SCROLL, ADDR are write-only: return the latch.
		return p.ioLatch
	}
}

// WriteRegister services a CPU write of $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	p.ioLatch = value

	if p.warmingUp && (addr&7 == 0 || addr&7 == 1 || addr&7 == 5 || addr&7 == 6) {
		return
	}

	switch addr & 7 {
	case 0: // PPUCTRL
		previousNMIEnable := p.ppuCtrl&ctrlNMIEnable != 0
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | (uint16(value&0x03) << 10)
		if !previousNMIEnable && value&ctrlNMIEnable != 0 && p.ppuStatus&statusVBlank != 0 {
			p.nmiOutputPending = true
			p.nmiDelayCounter = 3
		}
		if value&ctrlNMIEnable == 0 {
			p.nmiOutputPending = false
			p.setNMILine(false)
		}
	case 1: // PPUMASK
		p.ppuMask = value
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		p.writePPUScroll(value)
	case 6: // PPUADDR
		p.writePPUAddr(value)
	case 7: // PPUDATA
		p.writePPUData(value)
	}

	if observer, ok := p.cart.(mapper.RegisterObserver); ok && p.cart != nil {
		observer.OnPPURegisterWrite(addr, value)
	}
}

// WriteOAM writes a byte directly into primary OAM, used by OAM DMA.
func (p *PPU) WriteOAM(index uint8, value uint8) {
	p.oam[index] = value
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(value>>3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | (uint16(value&0x07) << 12)
		p.t = (p.t & 0xFC1F) | (uint16(value&0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | (uint16(value&0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) readPPUData() uint8 {
	addr := p.v & 0x3FFF
	var data uint8
	if addr >= 0x3F00 {
		data = p.readByte(addr)
		p.readBuffer = p.readByte(addr & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.readByte(addr)
	}
	p.advanceV()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	p.writeByte(p.v&0x3FFF, value)
	p.advanceV()
}

func (p *PPU) advanceV() {
	if p.ppuCtrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// readByte answers a PPU-side fetch of pattern, nametable, or palette space,
// giving the mapper first refusal per the NametableOverrider/PPURead
// contract before falling back to the PPU's own storage.
func (p *PPU) readByte(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.cart != nil {
			if v, ok := p.cart.PPURead(addr, mapper.FetchBackground); ok {
				return v
			}
		}
		return 0
	case addr < 0x3F00:
		if nt, ok := p.cart.(mapper.NametableOverrider); ok && p.cart != nil {
			if v, ok := nt.ReadNametable(addr, mapper.NTCPUVisible); ok {
				return v
			}
		}
		return p.nametableByte(addr)
	default:
		return p.paletteByte(addr)
	}
}

func (p *PPU) writeByte(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.cart != nil {
			p.cart.PPUWrite(addr, value)
		}
	case addr < 0x3F00:
		if nt, ok := p.cart.(mapper.NametableOverrider); ok && p.cart != nil {
			if nt.WriteNametable(addr, value) {
				return
			}
		}
		idx := p.nametableIndex(addr)
		if idx >= 0x800 {
			p.fourScreenExtra[idx-0x800] = value
			return
		}
		p.nametables[idx] = value
	default:
		p.writePalette(addr, value)
	}
}

func (p *PPU) nametableByte(addr uint16) uint8 {
	idx := p.nametableIndex(addr)
	if idx >= 0x800 {
		return p.fourScreenExtra[idx-0x800]
	}
	return p.nametables[idx]
}

// nametableIndex maps a $2000-$3EFF address to a physical VRAM offset per
// the cartridge's mirroring mode (§4.3).
func (p *PPU) nametableIndex(addr uint16) uint16 {
	a := addr & 0x0FFF
	table := (a >> 10) & 3
	offset := a & 0x3FF

	switch p.mirror {
	case cartridge.MirrorHorizontal:
		if table >= 2 {
			return 0x400 + offset
		}
		return offset
	case cartridge.MirrorVertical:
		if table == 1 || table == 3 {
			return 0x400 + offset
		}
		return offset
	case cartridge.MirrorSingleA:
		return offset
	case cartridge.MirrorSingleB:
		return 0x400 + offset
	case cartridge.MirrorFourScreen:
		return table*0x400 + offset
	default:
		return offset
	}
}

func (p *PPU) paletteByte(addr uint16) uint8 {
	return p.palette[paletteIndex(addr)]
}

func (p *PPU) writePalette(addr uint16, value uint8) {
	p.palette[paletteIndex(addr)] = value
}

func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	switch idx {
	case 0x10, 0x14, 0x18, 0x1C:
		idx -= 0x10
	}
	return idx
}

func (p *PPU) setNMILine(asserted bool) {
	if p.nmiCallback != nil {
		p.nmiCallback(asserted)
	}
}
