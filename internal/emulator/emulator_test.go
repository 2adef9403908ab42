package emulator

import (
	"errors"
	"testing"

	"gones/internal/cartridge"
)

// buildNROM assembles a minimal 32 KiB NROM (mapper 0) iNES image with prg
// placed at both halves of the PRG window, so code can be written starting
// at $8000 without worrying about the 16 KiB mirror boundary.
func buildNROM(prg []byte) []byte {
	const headerSize = 16
	const prgBankBytes = 16 * 1024
	const chrBankBytes = 8 * 1024

	data := make([]byte, headerSize+2*prgBankBytes+chrBankBytes)
	copy(data[0:4], "NES\x1A")
	data[4] = 2 // 2 * 16 KiB PRG
	data[5] = 1 // 1 * 8 KiB CHR
	data[6] = 0
	data[7] = 0

	copy(data[headerSize:], prg)
	copy(data[headerSize+prgBankBytes:], prg)
	return data
}

func mustLoad(t *testing.T, prg []byte) cartridge.AnyCartridge {
	t.Helper()
	cart, err := cartridge.LoadINES(buildNROM(prg))
	if err != nil {
		t.Fatalf("LoadINES: %v", err)
	}
	return cart
}

func TestPowerOnVectorFetch(t *testing.T) {
	prg := make([]byte, 16*1024)
	prg[0x0000] = 0xEA             // NOP at $8000
	prg[0x3FFC] = 0x00             // reset vector low -> $8000
	prg[0x3FFD] = 0x80             // reset vector high
	e := New()
	e.LoadCartridge(mustLoad(t, prg))

	if e.cpu.PC != 0x8000 {
		t.Fatalf("PC after power-on = %#04x, want $8000", e.cpu.PC)
	}
	if e.cpu.Cycles() != 7 {
		t.Fatalf("reset sequence spent %d cycles, want 7", e.cpu.Cycles())
	}
}

// TestVBlankPollWaitLoop hand-assembles the spec's canonical "wait for
// VBlank" idiom: BIT $2002 / BPL -5, and checks the loop actually exits once
// the PPU reaches scanline 241 dot 1.
func TestVBlankPollWaitLoop(t *testing.T) {
	prg := make([]byte, 16*1024)
	// loop: BIT $2002 ; BPL loop
	prg[0x0000] = 0x2C // BIT abs
	prg[0x0001] = 0x02
	prg[0x0002] = 0x20
	prg[0x0003] = 0x10 // BPL
	prg[0x0004] = 0xFB // -5, back to $8000
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80

	e := New()
	e.LoadCartridge(mustLoad(t, prg))

	const maxCycles = 2 * 262 * 341 * 3 // generous: about eighteen frames of CPU cycles
	spentCycles := 0
	// PC passes $8005 transiently after every BPL operand fetch; only an
	// instruction boundary at $8005 means the branch fell through.
	for !(e.cpu.PC == 0x8005 && e.cpu.AtInstructionBoundary()) && spentCycles < maxCycles {
		before := e.cpu.Cycles()
		if err := e.EmulateCpuCycles(1); err != nil {
			t.Fatalf("EmulateCpuCycles: %v", err)
		}
		spentCycles += int(e.cpu.Cycles() - before)
	}
	if e.cpu.PC != 0x8005 || !e.cpu.AtInstructionBoundary() {
		t.Fatalf("VBlank wait loop never exited within %d cycles (PC stuck at %#04x)", maxCycles, e.cpu.PC)
	}
}

// TestOamDmaTiming checks a $4014 write stalls the CPU for the documented
// 513/514 cycles and that OAM ends up holding the 256 bytes copied from the
// source page.
func TestOamDmaTiming(t *testing.T) {
	prg := make([]byte, 16*1024)
	prg[0x0000] = 0xA9 // LDA #$02 (reset=7 + LDA=2 + STA's first 3 cycles = 12: the $4014 write lands on an even CPU cycle)
	prg[0x0001] = 0x02
	prg[0x0002] = 0x8D // STA $4014
	prg[0x0003] = 0x14
	prg[0x0004] = 0x40
	prg[0x0005] = 0xEA // NOP, landing point after DMA drains
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80

	e := New()
	e.LoadCartridge(mustLoad(t, prg))

	for i := 0; i < 0x100; i++ {
		e.Bus.WriteRAM(0x0200+uint16(i), uint8(i^0xAA))
	}

	// Measured on the master clock: DMA stall cycles do not advance the
	// CPU's own cycle counter.
	before := e.Clock.CpuCycle()
	// LDA #$02
	if err := e.EmulateCpuCycles(1); err != nil {
		t.Fatalf("EmulateCpuCycles: %v", err)
	}
	// STA $4014 triggers the DMA; keep stepping CPU-aligned cycles until the
	// DMA engine drains and the CPU executes the trailing NOP.
	const maxSteps = 600
	steps := 0
	for e.cpu.PC != 0x8006 && steps < maxSteps {
		if err := e.EmulateCpuCycles(1); err != nil {
			t.Fatalf("EmulateCpuCycles: %v", err)
		}
		steps++
	}
	if e.cpu.PC != 0x8006 {
		t.Fatalf("CPU never reached the instruction after OAM DMA (PC=%#04x)", e.cpu.PC)
	}
	spent := e.Clock.CpuCycle() - before
	if spent < 513 {
		t.Fatalf("STA $4014 + DMA spent only %d CPU cycles, want at least 513", spent)
	}
	if e.PPU.ReadOamData() != (0 ^ 0xAA) {
		t.Fatalf("OAM byte 0 = %#02x, want %#02x", e.PPU.ReadOamData(), 0^0xAA)
	}
}

func TestResetLeavesRamIntact(t *testing.T) {
	prg := make([]byte, 16*1024)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	e := New()
	e.LoadCartridge(mustLoad(t, prg))

	e.Bus.WriteRAM(0x0010, 0x42)
	e.Reset()
	if got := e.Bus.PeekRAM(0x0010); got != 0x42 {
		t.Fatalf("RAM at $0010 after RESET = %#02x, want $42 (RESET must not clear RAM)", got)
	}
}

func TestNoCartridgeLoadedIsReported(t *testing.T) {
	e := New()
	if err := e.EmulateFrame(); !errors.Is(err, ErrNoCartridgeLoaded) {
		t.Fatalf("EmulateFrame with no cartridge = %v, want ErrNoCartridgeLoaded", err)
	}
}

func TestStatusReadReportsLiveVBlank(t *testing.T) {
	prg := make([]byte, 16*1024)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	e := New()
	e.LoadCartridge(mustLoad(t, prg))

	e.Ledger.NoteVBlankSet(100)
	if !e.Ledger.VBlankActiveForStatusRead() {
		t.Fatal("expected a live VBlank span before the status read")
	}
	status := e.readPPURegister(0x2002)
	if status&0x80 == 0 {
		t.Fatal("status read during a live VBlank span should report bit 7 set")
	}
}
