package ppu

import "github.com/nesgo/nescore/internal/mapper"

// emitPixel computes and writes one frame-buffer pixel for the current dot,
// then shifts the background registers one position, per spec.md §4.3's
// "pixel emission happens at the start of each dot" rule.
func (p *PPU) emitPixel() {
	x := p.dot - 1
	y := p.scanline

	bgColorIdx, bgPalette := p.backgroundPixel()
	if x < 8 && p.ppuMask&maskShowBGLeft == 0 {
		bgColorIdx = 0
	}
	if !p.backgroundEnabled() {
		bgColorIdx = 0
	}

	spColorIdx, spPalette, spBehind, spIsZero := p.spritePixel(x)
	if x < 8 && p.ppuMask&maskShowSpLeft == 0 {
		spColorIdx = 0
	}
	if !p.spritesEnabled() {
		spColorIdx = 0
	}

	if spIsZero && bgColorIdx != 0 && spColorIdx != 0 && x != 255 &&
		!(x < 8 && (p.ppuMask&maskShowBGLeft == 0 || p.ppuMask&maskShowSpLeft == 0)) {
		p.ppuStatus |= statusSprite0
	}

	var paletteAddr uint16
	switch {
	case bgColorIdx == 0 && spColorIdx == 0:
		paletteAddr = 0x3F00
	case bgColorIdx == 0:
		paletteAddr = 0x3F10 + uint16(spPalette)*4 + uint16(spColorIdx)
	case spColorIdx == 0:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgColorIdx)
	case spBehind:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgColorIdx)
	default:
		paletteAddr = 0x3F10 + uint16(spPalette)*4 + uint16(spColorIdx)
	}

	nesColor := p.paletteByte(paletteAddr)
	if p.ppuMask&maskGrayscale != 0 {
		nesColor &= 0x30
	}

	p.frameBuffer[y*256+x] = nesRGBPalette[nesColor&0x3F]

	if p.backgroundEnabled() {
		p.bgPatternShiftLo <<= 1
		p.bgPatternShiftHi <<= 1
		p.bgAttrShiftLo = (p.bgAttrShiftLo << 1) | (p.bgAttrLatchLo & 1)
		p.bgAttrShiftHi = (p.bgAttrShiftHi << 1) | (p.bgAttrLatchHi & 1)
	}
}

func (p *PPU) backgroundPixel() (colorIdx, palette uint8) {
	bit := uint16(0x8000) >> p.x
	lo := uint8(0)
	hi := uint8(0)
	if p.bgPatternShiftLo&bit != 0 {
		lo = 1
	}
	if p.bgPatternShiftHi&bit != 0 {
		hi = 1
	}
	colorIdx = (hi << 1) | lo

	attrBit := uint8(0x80) >> p.x
	palLo := uint8(0)
	palHi := uint8(0)
	if p.bgAttrShiftLo&attrBit != 0 {
		palLo = 1
	}
	if p.bgAttrShiftHi&attrBit != 0 {
		palHi = 1
	}
	palette = (palHi << 1) | palLo
	return
}

func (p *PPU) spritePixel(x int) (colorIdx, palette uint8, behind bool, isZero bool) {
	for i := 0; i < p.spriteCount; i++ {
		offset := x - int(p.spriteX[i])
		if offset < 0 || offset > 7 {
			continue
		}
		lo := (p.spritePatternLo[i] >> uint(7-offset)) & 1
		hi := (p.spritePatternHi[i] >> uint(7-offset)) & 1
		idx := (hi << 1) | lo
		if idx == 0 {
			continue
		}
		attr := p.spriteAttr[i]
		return idx, attr & 0x03, attr&0x20 != 0, p.spriteIsZero[i]
	}
	return 0, 0, false, false
}

// evaluateSprites finds the sprites visible on the scanline that follows the
// current one (performed at dot 257, per spec.md §4.3) and pre-fetches their
// pattern bytes, reproducing the documented overflow bug: once eight sprites
// are found, the scan continues but a misaligned byte offset increments by
// one modulo four on every subsequent non-matching sprite.
func (p *PPU) evaluateSprites() {
	nextScanline := p.scanline + 1
	if p.scanline == preRenderLine {
		nextScanline = 0
	}
	height := p.spriteHeight()

	p.spriteCount = 0
	p.spriteOverflow = false
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}

	n := 0
	m := 0 // byte offset within each OAM entry; only advances once eight are found
	for ; n < 64; n++ {
		y := int(p.oam[n*4+m])
		row := nextScanline - y - 1
		if row < 0 || row >= height {
			if p.spriteCount == 8 {
				m = (m + 1) & 3
			}
			continue
		}
		if p.spriteCount < 8 {
			copy(p.secondaryOAM[p.spriteCount*4:], p.oam[n*4:n*4+4])
			p.spriteIndexes[p.spriteCount] = n
			p.spriteCount++
		} else {
			p.spriteOverflow = true
			p.ppuStatus |= statusOverflow
			break
		}
	}

	// Secondary OAM only ever holds the first eight in-range sprites; the
	// misaligned offset above only changes which later sprite, if any, sets
	// the overflow flag.

	p.fetchSpritePatterns(nextScanline, height)
}

// fetchSpritePatterns always performs eight slot fetches (unused slots fetch
// tile $FF) so the address bus keeps toggling A12 for the mapper's benefit,
// per spec.md §4.3.
func (p *PPU) fetchSpritePatterns(scanline, height int) {
	patternTable := uint16(0)
	if p.ppuCtrl&ctrlSpriteTable != 0 {
		patternTable = 0x1000
	}

	for slot := 0; slot < 8; slot++ {
		if slot >= p.spriteCount {
			p.fetchPattern(patternTable|(uint16(0xFF)*16), mapper.FetchSprite)
			p.fetchPattern(patternTable|(uint16(0xFF)*16+8), mapper.FetchSprite)
			p.spriteX[slot] = 0xFF
			p.spritePatternLo[slot] = 0
			p.spritePatternHi[slot] = 0
			p.spriteIsZero[slot] = false
			continue
		}

		y := p.secondaryOAM[slot*4]
		tile := p.secondaryOAM[slot*4+1]
		attr := p.secondaryOAM[slot*4+2]
		x := p.secondaryOAM[slot*4+3]

		row := scanline - int(y) - 1
		if attr&0x80 != 0 {
			row = height - 1 - row
		}

		var base uint16
		if height == 16 {
			table := uint16(0)
			if tile&1 != 0 {
				table = 0x1000
			}
			tileNum := uint16(tile &^ 1)
			if row >= 8 {
				tileNum++
				row -= 8
			}
			base = table + tileNum*16
		} else {
			base = patternTable + uint16(tile)*16
		}

		lo := p.fetchPattern(base+uint16(row), mapper.FetchSprite)
		hi := p.fetchPattern(base+uint16(row)+8, mapper.FetchSprite)
		if attr&0x40 != 0 {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.spritePatternLo[slot] = lo
		p.spritePatternHi[slot] = hi
		p.spriteX[slot] = x
		p.spriteAttr[slot] = attr
		p.spriteIsZero[slot] = p.spriteIndexes[slot] == 0
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}
