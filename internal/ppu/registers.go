package ppu

import "gones/internal/cartridge"

// Register writes and reads below implement $2000/$2001/$2003/$2004/$2005/
// $2006/$2007. $2002 (PPUSTATUS) is deliberately absent: composing it needs
// the VBlankLedger, so internal/emulator's readPPURegister owns that read
// (composing the value with buildStatusByte) and calls ResetWriteToggle
// itself once it has the value.

// WriteCtrl handles a $2000 PPUCTRL write.
func (p *PPU) WriteCtrl(value uint8) {
	p.ctrl = value
	// Nametable select bits (0-1) land in t bits 10-11.
	p.t = (p.t &^ 0x0C00) | (uint16(value&0x03) << 10)
}

// WriteMask handles a $2001 PPUMASK write.
func (p *PPU) WriteMask(value uint8) {
	p.mask = value
}

// WriteOamAddr handles a $2003 OAMADDR write.
func (p *PPU) WriteOamAddr(value uint8) {
	p.oamAddr = value
}

// ReadOamData handles a $2004 OAMDATA read. During sprite evaluation
// (dots 1-64 of a rendering scanline) real hardware returns 0xFF; that
// nuance is not observable by any program that isn't racing the PPU on
// purpose, so it is not modeled here.
func (p *PPU) ReadOamData() uint8 {
	return p.oam[p.oamAddr]
}

// WriteOamData handles a $2004 OAMDATA write: store and auto-increment.
func (p *PPU) WriteOamData(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

// WriteOamByte stores a byte at an explicit OAM index without touching
// oamAddr or incrementing it; used by OAM DMA (spec.md §4.7), which writes
// all 256 bytes at oamAddr+0..255 (wrapping) and leaves oamAddr unchanged.
func (p *PPU) WriteOamByte(index uint8, value uint8) {
	p.oam[index] = value
}

// OamAddr exposes the current OAM address, the DMA engine's starting index.
func (p *PPU) OamAddr() uint8 { return p.oamAddr }

// WriteScroll handles a $2005 PPUSCROLL write (two writes toggled by w).
func (p *PPU) WriteScroll(value uint8) {
	if !p.w {
		p.x = value & 0x07
		p.t = (p.t &^ 0x001F) | uint16(value>>3)
	} else {
		p.t = (p.t &^ 0x73E0) |
			(uint16(value&0x07) << 12) |
			(uint16(value>>3) << 5)
	}
	p.w = !p.w
}

// WriteAddr handles a $2006 PPUADDR write (two writes toggled by w).
func (p *PPU) WriteAddr(value uint8) {
	if !p.w {
		p.t = (p.t &^ 0x7F00) | (uint16(value&0x3F) << 8)
	} else {
		p.t = (p.t &^ 0x00FF) | uint16(value)
		p.v = p.t
	}
	p.w = !p.w
}

func (p *PPU) addrIncrement() uint16 {
	if p.ctrl&0x04 != 0 {
		return 32
	}
	return 1
}

// ReadData handles a $2007 PPUDATA read: buffered except for palette
// addresses, which return immediately (and refill the buffer from the
// underlying nametable mirror, per the well-known 2C02 quirk).
func (p *PPU) ReadData(cart *cartridge.AnyCartridge) uint8 {
	addr := p.v & 0x3FFF
	var value uint8
	if addr >= 0x3F00 {
		value = p.readPalette(addr)
		p.readBuffer = p.vramRead(cart, addr-0x1000)
	} else {
		value = p.readBuffer
		p.readBuffer = p.vramRead(cart, addr)
	}
	p.v += p.addrIncrement()
	return value
}

// WriteData handles a $2007 PPUDATA write.
func (p *PPU) WriteData(cart *cartridge.AnyCartridge, value uint8) {
	addr := p.v & 0x3FFF
	p.vramWrite(cart, addr, value)
	p.v += p.addrIncrement()
}

// Peek reads $2007-equivalent VRAM without the read-buffer or address
// side effects, for debugger tooling.
func (p *PPU) Peek(cart *cartridge.AnyCartridge, addr uint16) uint8 {
	addr &= 0x3FFF
	if addr >= 0x3F00 {
		return p.readPalette(addr)
	}
	return p.vramRead(cart, addr)
}

// nametableIndex maps a $2000-$2FFF PPU address to an index in the 2 KiB
// physical nametable RAM, applying the cartridge's mirroring mode.
func (p *PPU) nametableIndex(addr uint16) uint16 {
	addr &= 0x0FFF
	table := addr / 0x0400
	offset := addr % 0x0400
	switch p.mirror {
	case cartridge.MirrorVertical:
		return (table%2)*0x0400 + offset
	case cartridge.MirrorHorizontal:
		return (table/2)*0x0400 + offset
	default: // four-screen: only 2 KiB of VRAM is modeled, so fold to vertical
		return (table%2)*0x0400 + offset
	}
}

func paletteIndex(addr uint16) uint16 {
	addr &= 0x1F
	// $3F10/$3F14/$3F18/$3F1C mirror their $3F00/$3F04/$3F08/$3F0C sprite
	// backdrop counterparts.
	if addr >= 0x10 && addr%4 == 0 {
		addr -= 0x10
	}
	return addr
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.paletteRAM[paletteIndex(addr)]
}

func (p *PPU) writePalette(addr uint16, value uint8) {
	p.paletteRAM[paletteIndex(addr)] = value
}

// vramRead dispatches a $0000-$3FFF PPU bus read to CHR (cartridge),
// nametable RAM, or palette RAM.
func (p *PPU) vramRead(cart *cartridge.AnyCartridge, addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return cart.PPURead(addr)
	case addr < 0x3F00:
		return p.nametable[p.nametableIndex(addr)]
	default:
		return p.readPalette(addr)
	}
}

// vramWrite dispatches a $0000-$3FFF PPU bus write.
func (p *PPU) vramWrite(cart *cartridge.AnyCartridge, addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		cart.PPUWrite(addr, value)
	case addr < 0x3F00:
		p.nametable[p.nametableIndex(addr)] = value
	default:
		p.writePalette(addr, value)
	}
}
