package apu

import "testing"

func TestPulseLengthCounterMutesChannel(t *testing.T) {
	a := New()
	a.writeChannelEnable(0x01) // enable pulse1
	a.pulse1.writeControl(0x30)
	a.pulse1.writeTimerLow(0xFF)
	a.pulse1.writeTimerHigh(0x07, true)

	if a.pulse1.lengthCounter == 0 {
		t.Fatal("writing timer-high with the channel enabled should load a length counter")
	}
}

func TestChannelDisableClearsLength(t *testing.T) {
	a := New()
	a.writeChannelEnable(0x01)
	a.pulse1.writeTimerHigh(0x07, true)
	if a.pulse1.lengthCounter == 0 {
		t.Fatal("expected nonzero length counter before disable")
	}
	a.writeChannelEnable(0x00)
	if a.pulse1.lengthCounter != 0 {
		t.Fatal("disabling a channel via $4015 should clear its length counter")
	}
}

func TestFrameCounterFourStepIRQ(t *testing.T) {
	a := New()
	a.writeFrameCounter(0x00) // 4-step mode, IRQ enabled
	for i := 0; i < int(a.writeDelay)+1; i++ {
		a.Step()
	}
	for a.frameCycle != 0 {
		a.Step()
	}
	if !a.FrameIRQPending() {
		t.Fatal("4-step frame counter should assert the frame IRQ at the end of its sequence")
	}
}

func TestFrameCounterFiveStepSuppressesIRQ(t *testing.T) {
	a := New()
	a.writeFrameCounter(0x80) // 5-step mode
	for i := 0; i < int(a.writeDelay)+1; i++ {
		a.Step()
	}
	for i := 0; i < 40000; i++ {
		a.Step()
	}
	if a.FrameIRQPending() {
		t.Fatal("5-step mode never asserts the frame IRQ")
	}
}

func TestStatusReadClearsFrameIRQOnly(t *testing.T) {
	a := New()
	a.frameIRQFlag = true
	a.dmc.irqFlag = true
	status := a.ReadStatus()
	if status&0x40 == 0 || status&0x80 == 0 {
		t.Fatal("status byte should report both IRQ flags before clearing")
	}
	if a.frameIRQFlag {
		t.Fatal("reading $4015 should clear the frame IRQ flag")
	}
	if !a.dmc.irqFlag {
		t.Fatal("reading $4015 should not clear the DMC IRQ flag")
	}
}

func TestDMCRequestsSampleAfterEnable(t *testing.T) {
	a := New()
	a.dmc.writeSampleAddress(0x00)
	a.dmc.writeSampleLength(0x00)
	a.writeChannelEnable(0x10)
	if !a.DMCNeedsSample() {
		t.Fatal("enabling the DMC channel with a nonzero sample length should request a DMA fetch")
	}
	a.DMCLoadSample(0x55)
	if a.DMCNeedsSample() {
		t.Fatal("after loading a sample byte the channel should not immediately need another")
	}
}

func TestSweepMutesLowTimer(t *testing.T) {
	s := Sweep{Enabled: true, Shift: 1}
	if !s.Muted(4, true) {
		t.Fatal("a timer below 8 should always mute the pulse channel")
	}
}
