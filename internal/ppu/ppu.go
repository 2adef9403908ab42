// Package ppu implements the NES 2C02 Picture Processing Unit: the
// cycle-accurate rendering pipeline, registers, OAM, and VRAM described by
// spec.md §3/§4.3, generalized from the teacher's internal/ppu package into
// a true per-dot shift-register pipeline.
//
// The PPU never touches the VBlankLedger directly (per spec.md §4.8/§9, all
// ledger mutation is the orchestrator's job): Step reports the cycle's
// observable flags and internal/emulator decides what they mean for NMI
// timing.
package ppu

import "gones/internal/cartridge"

// Screen and timing constants (NTSC).
const (
	ScreenWidth       = 256
	ScreenHeight      = 240
	DotsPerScanline   = 341
	ScanlinesPerFrame = 262

	scanlineVisibleEnd = 239
	scanlinePostRender = 240
	scanlinePreRender  = 261
)

// StepResult reports the observable effects of a single PPU cycle, for the
// orchestrator to fold into the VBlankLedger and mapper IRQ line.
type StepResult struct {
	FrameComplete bool
	NmiSignal     bool // scanline 241 dot 1
	VBlankClear   bool // scanline 261 dot 1
	A12Rising     bool
}

// PPU is the 2C02 state machine: registers, internal scroll registers,
// OAM/secondary OAM, nametable VRAM, palette RAM, and the background/sprite
// shift-register pipeline.
type PPU struct {
	// CPU-visible registers (spec.md §3 PpuState).
	ctrl uint8 // $2000
	mask uint8 // $2001
	// PPUSTATUS is not stored as a byte: sprite overflow and sprite-0-hit
	// are flags here; VBlank is a pure function of the ledger (§4.3).
	spriteOverflow bool
	sprite0Hit     bool
	oamAddr        uint8 // $2003

	// Internal scroll registers.
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address (15 bits)
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle

	readBuffer uint8 // PPUDATA read buffer

	oam          [256]uint8
	secondaryOAM [32]uint8
	nametable    [2048]uint8
	paletteRAM   [32]uint8

	// Background pipeline.
	bgShiftPatternLo, bgShiftPatternHi uint16
	bgShiftAttrLo, bgShiftAttrHi       uint16
	bgNextTileID, bgNextAttr           uint8
	bgNextLSB, bgNextMSB               uint8

	// Sprite pipeline (up to 8 active slots for the current scanline).
	spritePatternLo, spritePatternHi [8]uint8
	spriteAttr                       [8]uint8
	spriteX                          [8]uint8
	spriteOAMIndex                   [8]uint8
	spriteCount                      uint8
	sprite0OnScanline                bool

	// Secondary-OAM evaluation working state for the scanline in progress.
	secondaryCount   int
	secondarySprite0 bool

	// PPUMASK delay ring (spec.md §4.3): index by dot%4, read 3 behind.
	maskDelay [4]uint8

	// Timing. scanline/dot are the authoritative schedule; MasterClock's
	// own derivation is a convenience approximation (see internal/clock)
	// valid only within a frame that has not yet had an odd-frame skip.
	scanline int
	dot      int
	oddFrame bool

	lastA12 bool

	mirror cartridge.Mirroring
}

// New returns a PPU in its power-on state.
func New() PPU {
	return PPU{scanline: 0}
}

// Reset performs the partial reset spec.md §6 describes for the RESET
// button: register/status bits clear, but VRAM/OAM/palette are untouched.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.spriteOverflow = false
	p.sprite0Hit = false
	p.w = false
	p.readBuffer = 0
	p.scanline = 0
	p.dot = 0
	p.maskDelay = [4]uint8{}
}

// SetMirroring installs the active cartridge's nametable mirroring policy.
// Called whenever a cartridge loads; NROM never changes it afterward.
func (p *PPU) SetMirroring(m cartridge.Mirroring) {
	p.mirror = m
}

// Step advances the PPU by one PPU cycle, performing the background/sprite
// pipeline and rendering into fb (if non-nil). cart provides CHR/nametable
// reads for pattern and nametable fetches; it is borrowed for the call only,
// never retained.
func (p *PPU) Step(cart *cartridge.AnyCartridge, fb []byte) StepResult {
	var result StepResult

	renderingActive := p.scanline <= scanlineVisibleEnd || p.scanline == scanlinePreRender

	if renderingActive {
		p.backgroundCycle(cart)
		p.spriteCycle(cart)
	}

	if p.scanline >= 0 && p.scanline <= scanlineVisibleEnd && p.dot >= 1 && p.dot <= 256 {
		p.renderPixel(fb)
	}

	if p.scanline == scanlinePreRender && p.dot == 1 {
		p.spriteOverflow = false
		p.sprite0Hit = false
		result.VBlankClear = true
	}
	if p.scanline == scanlinePostRender+1 && p.dot == 1 {
		result.NmiSignal = true
	}

	// PPUMASK delay ring: latch the current register value at this dot's
	// slot so renderPixel (reading the slot 3 dots behind) sees a value
	// that lagged 3-4 dots behind the $2001 write, per spec.md §4.3.
	p.maskDelay[p.dot%4] = p.mask

	a12 := p.currentA12()
	if a12 && !p.lastA12 {
		result.A12Rising = true
	}
	p.lastA12 = a12

	p.advanceDot(&result)

	return result
}

// advanceDot moves the dot/scanline counters forward by one, applying the
// odd-frame skip: on the pre-render scanline, when the frame in progress is
// odd and rendering is enabled, dot 0 of the following scanline 0 is
// skipped (merged with dot 1), shortening that scanline by one dot so the
// frame totals 89341 PPU cycles instead of 89342.
func (p *PPU) advanceDot(result *StepResult) {
	p.dot++
	if p.dot <= 340 {
		return
	}
	p.dot = 0
	p.scanline++
	if p.scanline <= scanlinePreRender {
		return
	}
	p.scanline = 0
	p.oddFrame = !p.oddFrame
	result.FrameComplete = true
	if p.oddFrame && p.renderingEnabled() {
		p.dot = 1
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&0x18 != 0
}

func (p *PPU) delayedMask() uint8 {
	return p.maskDelay[(p.dot+1)%4]
}

func (p *PPU) renderBackground() bool { return p.mask&0x08 != 0 }
func (p *PPU) renderSprites() bool    { return p.mask&0x10 != 0 }

func (p *PPU) delayedRenderBackground() bool { return p.delayedMask()&0x08 != 0 }
func (p *PPU) delayedRenderSprites() bool    { return p.delayedMask()&0x10 != 0 }
func (p *PPU) delayedShowBgLeft() bool       { return p.delayedMask()&0x02 != 0 }
func (p *PPU) delayedShowSpritesLeft() bool  { return p.delayedMask()&0x04 != 0 }

// currentA12 reports the high bit of whatever CHR/pattern address the PPU
// most recently drove onto its address bus, for mapper A12-edge IRQ logic.
func (p *PPU) currentA12() bool {
	return p.v&0x1000 != 0
}

// SpriteOverflow, Sprite0Hit expose the bits buildStatusByte (internal/
// emulator) composes into the $2002 read value; VBlank itself comes from
// the ledger, not from here.
func (p *PPU) SpriteOverflow() bool { return p.spriteOverflow }
func (p *PPU) Sprite0Hit() bool     { return p.sprite0Hit }

// ResetWriteToggle clears the $2005/$2006 write latch; called by the
// orchestrator after computing a $2002 read result.
func (p *PPU) ResetWriteToggle() {
	p.w = false
}

// V exposes the current VRAM address for tests and debug tooling.
func (p *PPU) V() uint16 { return p.v }

// Scanline and Dot expose PPU-local timing for tests.
func (p *PPU) Scanline() int   { return p.scanline }
func (p *PPU) Dot() int        { return p.dot }
func (p *PPU) OddFrame() bool  { return p.oddFrame }
func (p *PPU) NmiEnabled() bool { return p.ctrl&0x80 != 0 }

// Ctrl and Mask expose the raw $2000/$2001 register contents for snapshotting.
func (p *PPU) Ctrl() uint8 { return p.ctrl }
func (p *PPU) Mask() uint8 { return p.mask }
