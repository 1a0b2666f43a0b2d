package ppu

import "github.com/nesgo/nescore/internal/mapper"

// Step advances the PPU by exactly one dot, per spec.md §4.3's rendering
// pipeline, sprite evaluation, VBlank/NMI, and A12-filter rules.
func (p *PPU) Step() {
	p.totalDots++
	if p.warmingUp {
		p.warmupDotsRemaining--
		if p.warmupDotsRemaining <= 0 {
			p.warmingUp = false
		}
	}

	if p.nmiOutputPending {
		p.nmiDelayCounter--
		if p.nmiDelayCounter <= 0 {
			p.nmiOutputPending = false
			p.setNMILine(true)
		}
	}

	visibleOrPreRender := p.scanline < visibleScanlines || p.scanline == preRenderLine

	if visibleOrPreRender && p.renderingEnabled() {
		p.renderingStep()
	}

	if p.scanline < visibleScanlines && p.dot >= 1 && p.dot <= 256 {
		p.emitPixel()
	}

	if p.scanline < visibleScanlines && p.dot == 4 {
		if observer, ok := p.cart.(mapper.EndScanlineObserver); ok && p.cart != nil {
			observer.OnEndScanline(p.scanline)
		}
	}

	if p.scanline == postRenderLine+1 && p.dot == 1 {
		if p.suppressVBlankSet {
			// A STATUS read landed on this exact dot before this branch ran
			// (spec.md §4.3): skip setting VBlank and scheduling the NMI for
			// the rest of this frame.
			p.suppressVBlankSet = false
		} else {
			p.ppuStatus |= statusVBlank
			if p.ppuCtrl&ctrlNMIEnable != 0 {
				p.nmiOutputPending = true
				p.nmiDelayCounter = 3
			}
		}
	}

	if p.scanline == preRenderLine && p.dot == 1 {
		p.ppuStatus &^= (statusVBlank | statusSprite0 | statusOverflow)
		p.setNMILine(false)
	}

	p.advanceDot()
}

func (p *PPU) advanceDot() {
	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > preRenderLine {
			p.scanline = 0
			p.frame++
			p.oddFrame = !p.oddFrame
			if p.frameCallback != nil {
				p.frameCallback()
			}
		}
		// The odd-frame dot skip: on odd frames, with rendering enabled, the
		// very first dot of the pre-render line's successor (scanline 0,
		// dot 0) is skipped, shortening that frame by one dot.
		if p.scanline == 0 && p.dot == 0 && p.oddFrame && p.renderingEnabled() {
			p.dot = 1
		}
	}
}

// renderingStep performs the dot-accurate background-fetch pipeline, the
// coarse/fine scroll advances, and the sprite-evaluation/fetch schedule.
func (p *PPU) renderingStep() {
	if (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336) {
		p.backgroundFetchCycle()
	}

	if p.dot == 256 {
		p.incrementY()
	}
	if p.dot == 257 {
		p.copyHorizontalBits()
		p.evaluateSprites()
	}
	if p.scanline == preRenderLine && p.dot >= 280 && p.dot <= 304 {
		p.copyVerticalBits()
	}
	if p.dot == 337 || p.dot == 339 {
		// Dummy nametable fetches: no shift-register effect, but exposed so
		// a mapper watching nametable-space accesses can snoop scanline
		// boundaries (§4.3).
		p.fetchNametableByte()
	}
}

// backgroundFetchCycle performs the nametable/attribute/pattern-low/
// pattern-high fetch sequence, one byte per two dots, loading the shift
// registers every 8th dot and advancing coarse X.
func (p *PPU) backgroundFetchCycle() {
	switch p.dot % 8 {
	case 1:
		p.reloadShiftRegisters()
		p.nextTileID = p.fetchNametableByte()
	case 3:
		p.nextAttr = p.fetchAttributeByte()
	case 5:
		p.nextPatternLo = p.fetchPatternByte(p.nextTileID, 0)
	case 7:
		p.nextPatternHi = p.fetchPatternByte(p.nextTileID, 8)
	case 0:
		p.incrementX()
	}
}

func (p *PPU) fetchNametableByte() uint8 {
	addr := 0x2000 | (p.v & 0x0FFF)
	if p.cart != nil {
		if nt, ok := p.cart.(mapper.NametableOverrider); ok {
			if v, ok := nt.ReadNametable(addr, mapper.NTTile); ok {
				return v
			}
		}
	}
	return p.nametableByte(addr)
}

func (p *PPU) fetchAttributeByte() uint8 {
	coarseX := int(p.v & 0x1F)
	coarseY := int((p.v >> 5) & 0x1F)

	if p.cart != nil {
		if ta, ok := p.cart.(mapper.TileAttributer); ok {
			capabilities := p.cart.Capabilities()
			if capabilities.PerTileAttributes {
				return ta.ExtendedAttribute(coarseX, coarseY)
			}
		}
	}

	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	raw, fromMapper := uint8(0), false
	if p.cart != nil {
		if nt, ok := p.cart.(mapper.NametableOverrider); ok {
			if v, ok := nt.ReadNametable(addr, mapper.NTAttribute); ok {
				raw, fromMapper = v, true
			}
		}
	}
	if !fromMapper {
		raw = p.nametableByte(addr)
	}
	shift := uint((coarseX&2)<<0 | (coarseY&2)<<1)
	return (raw >> shift) & 0x03
}

func (p *PPU) fetchPatternByte(tileID uint8, plane uint16) uint8 {
	base := uint16(0)
	if p.ppuCtrl&ctrlBGTable != 0 {
		base = 0x1000
	}
	fineY := (p.v >> 12) & 0x07
	addr := base + uint16(tileID)*16 + plane + fineY
	return p.fetchPattern(addr, mapper.FetchBackground)
}

// fetchPattern performs a pattern-space fetch through the mapper and applies
// the A12-edge filter (§4.3) that drives scanline-counting mappers.
func (p *PPU) fetchPattern(addr uint16, ctx mapper.PPUFetchContext) uint8 {
	a12 := addr&0x1000 != 0
	if a12 && !p.a12Previous {
		if !p.a12EverHigh || p.totalDots-p.a12LastHighDot > a12FilterDots {
			if clocker, ok := p.cart.(mapper.ScanlineClocker); ok && p.cart != nil {
				clocker.ClockScanline()
			}
		}
	}
	if a12 {
		p.a12LastHighDot = p.totalDots
		p.a12EverHigh = true
	}
	p.a12Previous = a12

	if p.cart != nil {
		if v, ok := p.cart.PPURead(addr, ctx); ok {
			return v
		}
	}
	return 0
}

func (p *PPU) reloadShiftRegisters() {
	p.bgPatternShiftLo = (p.bgPatternShiftLo & 0xFF00) | uint16(p.nextPatternLo)
	p.bgPatternShiftHi = (p.bgPatternShiftHi & 0xFF00) | uint16(p.nextPatternHi)
	if p.nextAttr&0x01 != 0 {
		p.bgAttrLatchLo = 0xFF
	} else {
		p.bgAttrLatchLo = 0x00
	}
	if p.nextAttr&0x02 != 0 {
		p.bgAttrLatchHi = 0xFF
	} else {
		p.bgAttrLatchHi = 0x00
	}
}

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &^= 0x7000
		y := (p.v & 0x03E0) >> 5
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800
		case 31:
			y = 0
		default:
			y++
		}
		p.v = (p.v &^ 0x03E0) | (y << 5)
	}
}

func (p *PPU) copyHorizontalBits() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVerticalBits() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}
