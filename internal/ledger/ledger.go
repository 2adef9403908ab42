// Package ledger implements the cycle-stamped arbitration of VBlank and NMI
// timing described by the emulator's VBlankLedger. It is pure data: only the
// orchestrator (internal/emulator) ever mutates it; the PPU and CPU observe
// it through the read-only queries below.
package ledger

// Ledger holds the timestamps the NMI/VBlank race is arbitrated from. Every
// field is a PPU-cycle count; no field ever decreases except at Reset.
type Ledger struct {
	LastVBlankSetCycle     uint64
	LastVBlankClearCycle   uint64
	LastStatusReadCycle    uint64
	LastNmiAckCycle        uint64
	LastNmiEnableEdgeCycle uint64
	RaceHold               bool
}

// New returns a ledger in its power-on state (all cycles zero, no hold).
func New() Ledger {
	return Ledger{}
}

// Reset returns the ledger to its power-on state.
func (l *Ledger) Reset() {
	*l = Ledger{}
}

// liveVBlank reports whether a VBlank span that started is still open (has
// not since been cleared).
func (l *Ledger) liveVBlank() bool {
	return l.LastVBlankSetCycle > l.LastVBlankClearCycle
}

// ShouldAssertNmi implements spec.md §4.8: true iff there is a live,
// unacknowledged VBlank set AND nmi_enable is asserted AND a new VBlank edge
// or a 0->1 edge of nmi_enable has occurred since the last acknowledgment.
// The nmi_enable edge case is what makes the classic "disable then
// re-enable PPUCTRL bit 7 mid-VBlank" trick fire a second NMI for a VBlank
// span that already delivered one.
func (l *Ledger) ShouldAssertNmi(nmiEnable bool) bool {
	if !nmiEnable || !l.liveVBlank() {
		return false
	}
	vblankEdge := l.LastVBlankSetCycle > l.LastNmiAckCycle
	enableEdge := l.LastNmiEnableEdgeCycle > l.LastNmiAckCycle
	return vblankEdge || enableEdge
}

// VBlankActiveForStatusRead computes the VBlank bit returned by a $2002
// read: a live set AND (race hold OR the set happened after the last read).
func (l *Ledger) VBlankActiveForStatusRead() bool {
	if !l.liveVBlank() {
		return false
	}
	return l.RaceHold || l.LastVBlankSetCycle > l.LastStatusReadCycle
}

// NoteVBlankSet records a VBlank-set edge (PPU scanline 241 dot 1).
func (l *Ledger) NoteVBlankSet(now uint64) {
	l.LastVBlankSetCycle = now
}

// NoteVBlankClear records a VBlank-clear edge (PPU scanline 261 dot 1) and
// drops any sticky race hold, since the span it protected has ended.
func (l *Ledger) NoteVBlankClear(now uint64) {
	l.LastVBlankClearCycle = now
	l.RaceHold = false
}

// NoteStatusRead records a $2002 read at the given cycle and, if that read
// landed on the exact cycle the VBlank flag was set (and the set is still
// live), latches RaceHold so subsequent reads this span keep returning
// VBlank=1 even though the NMI edge it would have produced is suppressed.
func (l *Ledger) NoteStatusRead(now uint64) {
	l.LastStatusReadCycle = now
	if now == l.LastVBlankSetCycle && l.liveVBlank() {
		l.RaceHold = true
	}
}

// NoteNmiAck records that the CPU's interrupt sequence acknowledged the NMI
// line at the given cycle (the last, vector-high cycle of the 7-cycle
// sequence).
func (l *Ledger) NoteNmiAck(now uint64) {
	l.LastNmiAckCycle = now
}

// NoteNmiEnableEdge records a 0->1 transition of PPUCTRL's NMI-enable bit
// (bit 7 of $2000) at the given cycle. Detecting the transition is the
// orchestrator's job (it compares PPU state before/after the register
// write); this just stamps when the orchestrator observed one.
func (l *Ledger) NoteNmiEnableEdge(now uint64) {
	l.LastNmiEnableEdgeCycle = now
}
