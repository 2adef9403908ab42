package dma

import "testing"

func countCycles(d *OamDma) int {
	n := 0
	for d.Active() {
		switch d.Advance() {
		case ActionRead:
			d.SubmitByte(0xAB)
		case ActionWrite:
			_ = d.PendingByte()
		}
		d.Tock()
		n++
	}
	return n
}

func TestOamDmaEvenStartIs513Cycles(t *testing.T) {
	var d OamDma
	d.Start(0x02, false)
	if got := countCycles(&d); got != 513 {
		t.Fatalf("even-start OAM DMA took %d cycles, want 513", got)
	}
}

func TestOamDmaOddStartIs514Cycles(t *testing.T) {
	var d OamDma
	d.Start(0x02, true)
	if got := countCycles(&d); got != 514 {
		t.Fatalf("odd-start OAM DMA took %d cycles, want 514", got)
	}
}

func TestOamDmaDoesNotRestartMidTransfer(t *testing.T) {
	var d OamDma
	d.Start(0x02, false)
	d.Advance()
	d.Tock()
	d.Start(0x03, false)
	if d.page != 0x02 {
		t.Fatal("Start should be ignored while a transfer is already active")
	}
}

func TestDmcDmaFourCycleStall(t *testing.T) {
	var d DmcDma
	d.Start(0xC000)
	ready := false
	cycles := 0
	for d.Active() {
		ready = d.Advance()
		cycles++
	}
	if !ready {
		t.Fatal("final Advance call should report ready")
	}
	if cycles != 4 {
		t.Fatalf("DMC DMA stalled %d cycles, want 4", cycles)
	}
}
