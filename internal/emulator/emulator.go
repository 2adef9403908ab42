// Package emulator implements EmulationState, the single container that
// owns every NES subsystem and the bus-routing table joining them, and
// Tick, the per-PPU-cycle orchestration loop described by spec.md §4.9.
// This is the only package that references every other internal package;
// none of them reference it back.
package emulator

import (
	"errors"
	"fmt"

	"gones/internal/apu"
	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/clock"
	"gones/internal/controller"
	"gones/internal/cpu"
	"gones/internal/dma"
	"gones/internal/ledger"
	"gones/internal/ppu"
)

// Errors returned by EmulationState's public operations. Hardware-level
// guest-triggered conditions (open bus, writes to ROM, dummy cycles) are
// never errors; only host-facing misuse is.
var (
	ErrNoCartridgeLoaded = errors.New("emulator: no cartridge loaded")
	ErrInvalidSnapshot   = errors.New("emulator: invalid snapshot")
)

const framebufferSize = ppu.ScreenWidth * ppu.ScreenHeight * 4

// EmulationState composes one of every subsystem by value and is the sole
// owner of cross-component wiring (the VBlankLedger, DMA engines, and bus
// routing table all live here; no subsystem package reaches into another).
type EmulationState struct {
	Clock       clock.Clock
	Bus         bus.BusState
	Cartridge   cartridge.AnyCartridge
	PPU         ppu.PPU
	Ledger      ledger.Ledger
	APU         apu.APU
	OamDMA      dma.OamDma
	DmcDMA      dma.DmcDma
	Controllers controller.Controllers

	cpu *cpu.CPU

	cartridgeLoaded bool
	framebuffer     [framebufferSize]byte
}

// New returns an EmulationState with no cartridge loaded. Call LoadCartridge
// before EmulateFrame/EmulateCpuCycles.
func New() *EmulationState {
	e := &EmulationState{
		Clock:  clock.New(),
		Bus:    bus.New(),
		PPU:    ppu.New(),
		Ledger: ledger.New(),
		APU:    apu.New(),
	}
	e.cpu = cpu.New(e)
	return e
}

// LoadCartridge installs a cartridge and performs a full power-on reset.
func (e *EmulationState) LoadCartridge(cart cartridge.AnyCartridge) {
	e.Cartridge = cart
	e.cartridgeLoaded = true
	e.Reset()
}

// UnloadCartridge removes the active cartridge, leaving the emulator unable
// to Tick until another is loaded.
func (e *EmulationState) UnloadCartridge() {
	e.Cartridge = cartridge.AnyCartridge{}
	e.cartridgeLoaded = false
}

// Reset performs the documented RESET-button sequence: clock, ledger, PPU,
// APU and the CPU's 7-cycle reset sequence all restart; RAM is left intact
// (as on real hardware, a RESET does not clear RAM), matching
// internal/bus.BusState.Reset's documented scope.
func (e *EmulationState) Reset() {
	e.Clock.Reset()
	e.Ledger.Reset()
	e.PPU.Reset()
	e.PPU.SetMirroring(e.Cartridge.Mirroring())
	e.APU.Reset()
	e.Controllers.Reset()
	e.Cartridge.Reset()
	e.cpu.Reset()
}

// CpuHalted reports whether a JAM/KIL opcode has locked up the CPU. This is
// advisory, not an error: the rest of the machine (PPU/APU) keeps running,
// matching real hardware, where only a RESET recovers.
func (e *EmulationState) CpuHalted() bool { return e.cpu.Halted() }

// EmulateFrame runs the machine until one full PPU frame has completed.
func (e *EmulationState) EmulateFrame() error {
	if !e.cartridgeLoaded {
		return ErrNoCartridgeLoaded
	}
	startFrame := e.Clock.Frame()
	for e.Clock.Frame() == startFrame {
		e.tick()
	}
	return nil
}

// EmulateCpuCycles runs the machine for exactly n CPU cycles (each CPU
// cycle is 3 PPU ticks), for fine-grained host control and tests.
func (e *EmulationState) EmulateCpuCycles(n int) error {
	if !e.cartridgeLoaded {
		return ErrNoCartridgeLoaded
	}
	for i := 0; i < n; i++ {
		e.tickPPUOnly()
		for !e.Clock.IsCpuTick() {
			e.tickPPUOnly()
		}
		e.tickCPUAligned()
	}
	return nil
}

// Framebuffer returns the current RGBA8888 framebuffer, ScreenWidth *
// ScreenHeight * 4 bytes, updated pixel-by-pixel as the PPU renders.
func (e *EmulationState) Framebuffer() []byte { return e.framebuffer[:] }

// tick advances the machine by exactly one PPU cycle, running a CPU/APU/DMA
// step every third call, following spec.md §4.9's orchestration:
//  1. advance the PPU one dot; stamp its VBlank-set/VBlank-clear edges into
//     the ledger, forward an A12 rising edge to the mapper, and advance the
//     frame counter when the PPU reports frame completion
//  2. advance the master clock by one PPU cycle
//  3. on a CPU-tick boundary, refresh the CPU's IRQ line (APU frame/DMC IRQ
//     OR the mapper's IRQ) and its NMI line (from the ledger)
//  4. service an active DMC DMA, else an active OAM DMA, else step the CPU
//     (or a latched NMI/IRQ sequence) by one cycle
//  5. step the APU once per CPU cycle
//  6. poll the APU for a DMC sample request and start DmcDMA if needed
//  7. stamp the ledger if this CPU cycle acknowledged an NMI
func (e *EmulationState) tick() {
	e.tickPPUOnly()
	if e.Clock.IsCpuTick() {
		e.tickCPUAligned()
	}
}

func (e *EmulationState) tickPPUOnly() {
	result := e.PPU.Step(&e.Cartridge, e.framebuffer[:])
	if result.A12Rising {
		e.Cartridge.NotifyA12Rising()
	}
	if result.VBlankClear {
		e.Ledger.NoteVBlankClear(e.Clock.Count)
	}
	if result.NmiSignal {
		e.Ledger.NoteVBlankSet(e.Clock.Count)
	}
	if result.FrameComplete {
		e.Clock.AdvanceFrame()
	}
	e.Clock.Advance(1)
}

// tickCPUAligned performs exactly one CPU cycle of work: a DMA stall byte if
// either DMA engine is active (DMC DMA takes priority, per spec.md §4.9), or
// otherwise one real CPU cycle via cpu.StepCycle — never a whole
// instruction. Interrupt lines are refreshed from the ledger/APU/cartridge
// before that cycle's action runs, so a hijack check inside this same
// StepCycle call observes state as of this cycle, not a stale snapshot from
// whenever the instruction started fetching.
func (e *EmulationState) tickCPUAligned() {
	e.updateInterruptLines()

	switch {
	case e.DmcDMA.Active():
		e.serviceDmcDMAByte()
	case e.OamDMA.Active():
		e.serviceOamDMAByte()
	default:
		e.cpu.StepCycle()
	}

	e.APU.Step()
	if e.APU.DMCNeedsSample() && !e.DmcDMA.Active() && !e.OamDMA.Active() {
		e.DmcDMA.Start(e.APU.DMCSampleAddress())
	}
	if e.cpu.ConsumeNmiAcked() {
		e.Ledger.NoteNmiAck(e.Clock.Count)
	}
}

// updateInterruptLines refreshes the CPU's NMI/IRQ inputs for the upcoming
// cycle. NMI is edge-latched by cpu.SetNMILine itself; IRQ is level-driven
// and just reflects the OR of every IRQ source each cycle.
func (e *EmulationState) updateInterruptLines() {
	e.cpu.SetIRQLine(e.APU.FrameIRQPending() || e.APU.DMCIRQPending() || e.Cartridge.TickIRQ())
	e.cpu.SetNMILine(e.Ledger.ShouldAssertNmi(e.PPU.NmiEnabled()))
}

func (e *EmulationState) serviceOamDMAByte() {
	switch e.OamDMA.Advance() {
	case dma.ActionRead:
		e.OamDMA.SubmitByte(e.BusRead(e.OamDMA.SourceAddr()))
	case dma.ActionWrite:
		e.PPU.WriteOamByte(e.PPU.OamAddr()+e.OamDMA.DestIndex(), e.OamDMA.PendingByte())
	}
	e.OamDMA.Tock()
}

func (e *EmulationState) serviceDmcDMAByte() {
	if ready := e.DmcDMA.Advance(); ready {
		e.APU.DMCLoadSample(e.BusRead(e.DmcDMA.Addr()))
	}
}

// Read implements cpu.Bus: the CPU's $0000-$FFFF view of the machine.
func (e *EmulationState) Read(addr uint16) uint8 { return e.BusRead(addr) }

// Write implements cpu.Bus.
func (e *EmulationState) Write(addr uint16, value uint8) { e.BusWrite(addr, value) }

// BusRead performs a full CPU-bus read with side effects (register clear on
// $2002, PPUDATA buffering, controller shifting) and leaves the returned
// value in the open-bus latch.
func (e *EmulationState) BusRead(addr uint16) uint8 {
	var value uint8
	switch {
	case addr < 0x2000:
		value = e.Bus.ReadRAM(addr)
	case addr < 0x4000:
		value = e.readPPURegister(0x2000 + addr%8)
	case addr == 0x4015:
		value = e.APU.ReadStatus()
	case addr == 0x4016:
		value = e.Controllers.ReadPort1()
	case addr == 0x4017:
		value = e.Controllers.ReadPort2()
	case addr < 0x4020:
		value = e.Bus.Latch()
	default:
		value = e.Cartridge.CPURead(addr)
	}
	e.Bus.SetLatch(value)
	return value
}

// BusWrite performs a full CPU-bus write with side effects (DMA trigger on
// $4014, register latches on PPU/APU writes). The written value always ends
// up in the open-bus latch.
func (e *EmulationState) BusWrite(addr uint16, value uint8) {
	e.Bus.SetLatch(value)
	switch {
	case addr < 0x2000:
		e.Bus.WriteRAM(addr, value)
	case addr < 0x4000:
		e.writePPURegister(0x2000+addr%8, value)
	case addr == 0x4014:
		e.OamDMA.Start(value, e.cpu.Cycles()%2 != 0)
	case addr == 0x4016:
		e.Controllers.WriteStrobe(value)
	case addr == 0x4015 || addr == 0x4017:
		e.APU.WriteRegister(addr, value)
	case addr >= 0x4000 && addr <= 0x4013:
		e.APU.WriteRegister(addr, value)
	case addr < 0x4020:
		e.Bus.SetLatch(value)
	default:
		e.Cartridge.CPUWrite(addr, value)
	}
}

// PeekMemory reads the CPU bus without triggering any side effect, for
// debuggers and snapshot tooling.
func (e *EmulationState) PeekMemory(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return e.Bus.PeekRAM(addr)
	case addr < 0x4000:
		reg := 0x2000 + addr%8
		if reg == 0x2007 {
			return e.PPU.Peek(&e.Cartridge, e.PPU.V())
		}
		return e.Bus.Latch()
	case addr == 0x4015:
		return e.Bus.Latch()
	default:
		if addr >= 0x4020 {
			return e.Cartridge.CPURead(addr)
		}
		return e.Bus.Latch()
	}
}

func (e *EmulationState) readPPURegister(reg uint16) uint8 {
	switch reg {
	case 0x2002:
		status := e.buildStatusByte()
		e.Ledger.NoteStatusRead(e.Clock.Count)
		e.PPU.ResetWriteToggle()
		return status
	case 0x2004:
		return e.PPU.ReadOamData()
	case 0x2007:
		return e.PPU.ReadData(&e.Cartridge)
	default:
		return e.Bus.Latch()
	}
}

func (e *EmulationState) writePPURegister(reg uint16, value uint8) {
	switch reg {
	case 0x2000:
		wasEnabled := e.PPU.NmiEnabled()
		e.PPU.WriteCtrl(value)
		if !wasEnabled && e.PPU.NmiEnabled() {
			e.Ledger.NoteNmiEnableEdge(e.Clock.Count)
		}
	case 0x2001:
		e.PPU.WriteMask(value)
	case 0x2003:
		e.PPU.WriteOamAddr(value)
	case 0x2004:
		e.PPU.WriteOamData(value)
	case 0x2005:
		e.PPU.WriteScroll(value)
	case 0x2006:
		e.PPU.WriteAddr(value)
	case 0x2007:
		e.PPU.WriteData(&e.Cartridge, value)
	}
	e.Bus.SetLatch(value)
}

// buildStatusByte is the pure helper spec.md §4.8 calls for: it combines
// the PPU's sprite-overflow/sprite0-hit flags with the ledger's
// cycle-stamped VBlank-active query into the $2002 value, and never itself
// mutates the ledger (the caller records the read after this returns).
func (e *EmulationState) buildStatusByte() uint8 {
	var status uint8
	if e.Ledger.VBlankActiveForStatusRead() {
		status |= 0x80
	}
	if e.PPU.Sprite0Hit() {
		status |= 0x40
	}
	if e.PPU.SpriteOverflow() {
		status |= 0x20
	}
	status |= e.Bus.Latch() & 0x1F
	return status
}

// String implements fmt.Stringer for debug printing.
func (e *EmulationState) String() string {
	return fmt.Sprintf("EmulationState(frame=%d scanline=%d dot=%d loaded=%v)",
		e.Clock.Frame(), e.PPU.Scanline(), e.PPU.Dot(), e.cartridgeLoaded)
}
