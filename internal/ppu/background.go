package ppu

import "gones/internal/cartridge"

// backgroundCycle drives the background tile-fetch pipeline for one PPU
// cycle of a rendering scanline (pre-render or visible), grounded on the
// andrewthecodertx-go-nes-emulator Clock() background section: an 8-cycle
// nametable/attribute/pattern-low/pattern-high fetch sequence, shifter
// loads and shifts, the coarse-X/Y scroll increments, and the horizontal/
// vertical scroll transfers from t into v.
func (p *PPU) backgroundCycle(cart *cartridge.AnyCartridge) {
	if (p.dot >= 2 && p.dot < 258) || (p.dot >= 321 && p.dot < 338) {
		p.updateShifters()

		switch (p.dot - 1) % 8 {
		case 0:
			p.loadBackgroundShifters()
			p.bgNextTileID = p.vramRead(cart, 0x2000|(p.v&0x0FFF))
		case 2:
			addr := 0x23C0 |
				(p.v & 0x0C00) |
				((p.v >> 4) & 0x38) |
				((p.v >> 2) & 0x07)
			attr := p.vramRead(cart, addr)
			if p.v&0x0040 != 0 {
				attr >>= 4
			}
			if p.v&0x0002 != 0 {
				attr >>= 2
			}
			p.bgNextAttr = attr & 0x03
		case 4:
			table := p.bgPatternTable()
			addr := table | (uint16(p.bgNextTileID) << 4) | p.fineY()
			p.bgNextLSB = p.vramRead(cart, addr)
		case 6:
			table := p.bgPatternTable()
			addr := table | (uint16(p.bgNextTileID) << 4) | p.fineY()
			p.bgNextMSB = p.vramRead(cart, addr+8)
		case 7:
			if p.renderingEnabled() {
				p.incrementCoarseX()
			}
		}
	}

	if p.dot == 256 {
		if p.renderingEnabled() {
			p.incrementY()
		}
	}

	if p.dot == 257 {
		p.loadBackgroundShifters()
		if p.renderingEnabled() {
			p.transferX()
		}
	}

	if p.dot == 338 || p.dot == 340 {
		p.bgNextTileID = p.vramRead(cart, 0x2000|(p.v&0x0FFF))
	}

	if p.scanline == scanlinePreRender && p.dot >= 280 && p.dot <= 304 {
		if p.renderingEnabled() {
			p.transferY()
		}
	}
}

func (p *PPU) bgPatternTable() uint16 {
	if p.ctrl&0x10 != 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *PPU) fineY() uint16 {
	return (p.v >> 12) & 0x07
}

// incrementCoarseX implements the well-known coarse-X wraparound that also
// flips the horizontal nametable-select bit.
func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY implements the coarse-Y/fine-Y increment with the row-29
// wraparound into the next vertical nametable.
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	coarseY := (p.v & 0x03E0) >> 5
	switch coarseY {
	case 29:
		coarseY = 0
		p.v ^= 0x0800
	case 31:
		coarseY = 0
	default:
		coarseY++
	}
	p.v = (p.v &^ 0x03E0) | (coarseY << 5)
}

func (p *PPU) transferX() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) transferY() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

func (p *PPU) loadBackgroundShifters() {
	p.bgShiftPatternLo = (p.bgShiftPatternLo & 0xFF00) | uint16(p.bgNextLSB)
	p.bgShiftPatternHi = (p.bgShiftPatternHi & 0xFF00) | uint16(p.bgNextMSB)

	if p.bgNextAttr&0x01 != 0 {
		p.bgShiftAttrLo = (p.bgShiftAttrLo & 0xFF00) | 0x00FF
	} else {
		p.bgShiftAttrLo = p.bgShiftAttrLo & 0xFF00
	}
	if p.bgNextAttr&0x02 != 0 {
		p.bgShiftAttrHi = (p.bgShiftAttrHi & 0xFF00) | 0x00FF
	} else {
		p.bgShiftAttrHi = p.bgShiftAttrHi & 0xFF00
	}
}

func (p *PPU) updateShifters() {
	if !p.renderBackground() {
		return
	}
	p.bgShiftPatternLo <<= 1
	p.bgShiftPatternHi <<= 1
	p.bgShiftAttrLo <<= 1
	p.bgShiftAttrHi <<= 1
}
