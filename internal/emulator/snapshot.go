package emulator

import "encoding/json"

// snapshotData is the JSON-serializable persisted-state layout: a
// register-level and RAM-level subset of the machine's mutable state (APU,
// OAM, nametable, palette, DMA and controller state are not included),
// following the teacher's
// SaveState shape (internal/app/states.go) rather than a raw byte dump, so a
// malformed or foreign snapshot fails JSON decoding cleanly instead of
// corrupting live state. Immutable PRG/CHR ROM is never included; only the
// cartridge's RAM regions are (PRGRAM/CHRRAM).
type snapshotData struct {
	ClockCount uint64 `json:"clock_count"`
	ClockFrame uint64 `json:"clock_frame"`

	CpuA      uint8  `json:"cpu_a"`
	CpuX      uint8  `json:"cpu_x"`
	CpuY      uint8  `json:"cpu_y"`
	CpuSP     uint8  `json:"cpu_sp"`
	CpuPC     uint16 `json:"cpu_pc"`
	CpuStatus uint8  `json:"cpu_status"`
	CpuCycles uint64 `json:"cpu_cycles"`

	RAM []uint8 `json:"ram"`

	PPUScanline int    `json:"ppu_scanline"`
	PPUDot      int    `json:"ppu_dot"`
	PPUCtrl     uint8  `json:"ppu_ctrl"`
	PPUMask     uint8  `json:"ppu_mask"`
	PPUOamAddr  uint8  `json:"ppu_oam_addr"`
	PPUAddr     uint16 `json:"ppu_addr"`

	LedgerVBlankSet     uint64 `json:"ledger_vblank_set"`
	LedgerVBlankClear   uint64 `json:"ledger_vblank_clear"`
	LedgerStatusRead    uint64 `json:"ledger_status_read"`
	LedgerNmiAck        uint64 `json:"ledger_nmi_ack"`
	LedgerNmiEnableEdge uint64 `json:"ledger_nmi_enable_edge"`
	LedgerRaceHold      bool   `json:"ledger_race_hold"`

	PRGRAM []uint8 `json:"prg_ram"`
	CHRRAM []uint8 `json:"chr_ram"`
}

// Snapshot serializes the machine's mutable state to JSON. Per spec.md §6
// this is a host-optional facility with no cross-version compatibility
// guarantee; it captures register-level and RAM-level state rather than
// every internal shift register and delay buffer (documented simplification,
// see DESIGN.md). The CPU's microstep queue is not captured:
// EmulateCpuCycles and EmulateFrame stop on an exact cycle and can return
// mid-instruction (e.cpu.AtInstructionBoundary() false), and a snapshot
// taken then does not record the rest of that instruction.
func (e *EmulationState) Snapshot() []byte {
	snap := snapshotData{
		ClockCount: e.Clock.Count,
		ClockFrame: e.Clock.Frame(),

		CpuA:      e.cpu.A,
		CpuX:      e.cpu.X,
		CpuY:      e.cpu.Y,
		CpuSP:     e.cpu.SP,
		CpuPC:     e.cpu.PC,
		CpuStatus: e.cpu.StatusByte(),
		CpuCycles: e.cpu.Cycles(),

		RAM: e.ramSnapshot(),

		PPUScanline: e.PPU.Scanline(),
		PPUDot:      e.PPU.Dot(),
		PPUCtrl:     e.PPU.Ctrl(),
		PPUMask:     e.PPU.Mask(),
		PPUOamAddr:  e.PPU.OamAddr(),
		PPUAddr:     e.PPU.V(),

		LedgerVBlankSet:     e.Ledger.LastVBlankSetCycle,
		LedgerVBlankClear:   e.Ledger.LastVBlankClearCycle,
		LedgerStatusRead:    e.Ledger.LastStatusReadCycle,
		LedgerNmiAck:        e.Ledger.LastNmiAckCycle,
		LedgerNmiEnableEdge: e.Ledger.LastNmiEnableEdgeCycle,
		LedgerRaceHold:      e.Ledger.RaceHold,

		PRGRAM: append([]uint8(nil), e.Cartridge.PRGRAM()...),
		CHRRAM: append([]uint8(nil), e.Cartridge.CHRRAM()...),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		// snapshotData contains only plain fields and slices of uint8;
		// json.Marshal cannot fail on this shape.
		panic(err)
	}
	return data
}

func (e *EmulationState) ramSnapshot() []uint8 {
	ram := make([]uint8, 0x0800)
	for i := range ram {
		ram[i] = e.Bus.PeekRAM(uint16(i))
	}
	return ram
}

// Restore loads a snapshot produced by Snapshot, replacing the clock, CPU
// registers, RAM, PPUCTRL/PPUMASK/OAMADDR, ledger and cartridge RAM; the
// saved PPU scanline/dot and VRAM address are not applied. A cartridge must already be loaded (via LoadCartridge) with the
// same ROM the snapshot was taken against; Restore does not itself load a
// cartridge. The CPU's lifetime cycle counter (used only for the OAM DMA
// odd/even alignment heuristic) is not restored, since it is monotonic
// debug/trace bookkeeping rather than architectural state.
func (e *EmulationState) Restore(data []byte) error {
	var snap snapshotData
	if err := json.Unmarshal(data, &snap); err != nil {
		return ErrInvalidSnapshot
	}
	if !e.cartridgeLoaded {
		return ErrNoCartridgeLoaded
	}
	if len(snap.RAM) != 0x0800 {
		return ErrInvalidSnapshot
	}

	e.Clock.Reset()
	e.Clock.Advance(snap.ClockCount)
	for i := uint64(0); i < snap.ClockFrame; i++ {
		e.Clock.AdvanceFrame()
	}

	e.cpu.A, e.cpu.X, e.cpu.Y, e.cpu.SP, e.cpu.PC = snap.CpuA, snap.CpuX, snap.CpuY, snap.CpuSP, snap.CpuPC
	e.cpu.SetStatusByte(snap.CpuStatus)

	for i, v := range snap.RAM {
		e.Bus.WriteRAM(uint16(i), v)
	}

	e.PPU.WriteCtrl(snap.PPUCtrl)
	e.PPU.WriteMask(snap.PPUMask)
	e.PPU.WriteOamAddr(snap.PPUOamAddr)

	e.Ledger.Reset()
	e.Ledger.LastVBlankSetCycle = snap.LedgerVBlankSet
	e.Ledger.LastVBlankClearCycle = snap.LedgerVBlankClear
	e.Ledger.LastStatusReadCycle = snap.LedgerStatusRead
	e.Ledger.LastNmiAckCycle = snap.LedgerNmiAck
	e.Ledger.LastNmiEnableEdgeCycle = snap.LedgerNmiEnableEdge
	e.Ledger.RaceHold = snap.LedgerRaceHold

	copy(e.Cartridge.PRGRAM(), snap.PRGRAM)
	copy(e.Cartridge.CHRRAM(), snap.CHRRAM)

	return nil
}
