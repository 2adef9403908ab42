// Package apu implements the NES 2A03 Audio Processing Unit: the frame
// counter, the five sound channels, and the length/envelope/sweep units
// that drive them, generalized from the teacher's internal/apu package.
//
// Actual PCM sample synthesis for an audio device is out of scope (spec.md
// Non-goals); Mix reports the current mixed amplitude each cycle so a host
// binary can feed it to an audio backend if it wants to, but this package
// does not buffer or resample anything itself.
package apu

// APU is the 2A03 sound generator state.
type APU struct {
	pulse1   Pulse
	pulse2   Pulse
	triangle Triangle
	noise    Noise
	dmc      DMC

	enable [5]bool // pulse1, pulse2, triangle, noise, dmc

	fiveStepMode bool
	irqInhibit   bool
	frameIRQFlag bool
	frameCycle   uint32

	// $4017 write delay: the new mode doesn't take effect until 3 or 4 CPU
	// cycles after the write, depending on the CPU cycle's parity when the
	// write landed (spec.md open question, resolved: delay = 4 on an even
	// apu cycle count, 3 on odd, matching the well documented nesdev
	// behavior for "put" vs "get" cycles).
	pendingModeWrite bool
	pendingMode      bool
	writeDelay       uint8

	cycles uint64
}

// New returns an APU in its power-on state.
func New() APU {
	return APU{
		pulse1: newPulse(true),
		pulse2: newPulse(false),
		noise:  newNoise(),
		dmc:    newDMC(),
	}
}

// Reset restores power-on state.
func (a *APU) Reset() {
	*a = New()
}

// Step advances the APU by one CPU cycle.
func (a *APU) Step() {
	a.cycles++

	if a.pendingModeWrite {
		if a.writeDelay == 0 {
			a.applyModeWrite()
		} else {
			a.writeDelay--
		}
	}

	a.stepFrameCounter()

	if a.enable[0] {
		a.pulse1.stepTimer()
	}
	if a.enable[1] {
		a.pulse2.stepTimer()
	}
	if a.enable[3] {
		a.noise.stepTimer()
	}
	if a.enable[4] {
		a.dmc.stepTimer()
	}
	if a.enable[2] {
		a.triangle.stepTimer()
	}
}

const (
	frameSeqQuarter1 = 7457
	frameSeqHalf1    = 14913
	frameSeqQuarter2 = 22371
	frameSeq4Final   = 29829
	frameSeq5Final   = 37281
)

func (a *APU) stepFrameCounter() {
	a.frameCycle++

	if a.fiveStepMode {
		switch a.frameCycle {
		case frameSeqQuarter1, frameSeqQuarter2:
			a.clockQuarterFrame()
		case frameSeqHalf1:
			a.clockQuarterFrame()
			a.clockHalfFrame()
		case frameSeq5Final:
			a.clockQuarterFrame()
			a.clockHalfFrame()
			a.frameCycle = 0
		}
		return
	}

	switch a.frameCycle {
	case frameSeqQuarter1, frameSeqQuarter2:
		a.clockQuarterFrame()
	case frameSeqHalf1:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case frameSeq4Final:
		a.clockQuarterFrame()
		a.clockHalfFrame()
		if !a.irqInhibit {
			a.frameIRQFlag = true
		}
		a.frameCycle = 0
	}
}

func (a *APU) clockQuarterFrame() {
	a.pulse1.clockQuarterFrame()
	a.pulse2.clockQuarterFrame()
	a.noise.clockQuarterFrame()
	a.triangle.clockQuarterFrame()
}

func (a *APU) clockHalfFrame() {
	a.pulse1.clockHalfFrame()
	a.pulse2.clockHalfFrame()
	a.noise.clockHalfFrame()
	a.triangle.clockHalfFrame()
}

func (a *APU) applyModeWrite() {
	a.pendingModeWrite = false
	a.fiveStepMode = a.pendingMode
	a.frameCycle = 0
	if a.fiveStepMode {
		a.clockQuarterFrame()
		a.clockHalfFrame()
	}
}

// WriteRegister dispatches a CPU write to an APU register ($4000-$4013,
// $4015, $4017).
func (a *APU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x4000:
		a.pulse1.writeControl(value)
	case 0x4001:
		a.pulse1.writeSweep(value)
	case 0x4002:
		a.pulse1.writeTimerLow(value)
	case 0x4003:
		a.pulse1.writeTimerHigh(value, a.enable[0])
	case 0x4004:
		a.pulse2.writeControl(value)
	case 0x4005:
		a.pulse2.writeSweep(value)
	case 0x4006:
		a.pulse2.writeTimerLow(value)
	case 0x4007:
		a.pulse2.writeTimerHigh(value, a.enable[1])
	case 0x4008:
		a.triangle.writeControl(value)
	case 0x400A:
		a.triangle.writeTimerLow(value)
	case 0x400B:
		a.triangle.writeTimerHigh(value, a.enable[2])
	case 0x400C:
		a.noise.writeControl(value)
	case 0x400E:
		a.noise.writePeriod(value)
	case 0x400F:
		a.noise.writeLength(value, a.enable[3])
	case 0x4010:
		a.dmc.writeControl(value)
	case 0x4011:
		a.dmc.writeDirectLoad(value)
	case 0x4012:
		a.dmc.writeSampleAddress(value)
	case 0x4013:
		a.dmc.writeSampleLength(value)
	case 0x4015:
		a.writeChannelEnable(value)
	case 0x4017:
		a.writeFrameCounter(value)
	}
}

func (a *APU) writeChannelEnable(value uint8) {
	a.enable[0] = value&0x01 != 0
	a.enable[1] = value&0x02 != 0
	a.enable[2] = value&0x04 != 0
	a.enable[3] = value&0x08 != 0
	a.enable[4] = value&0x10 != 0

	if !a.enable[0] {
		a.pulse1.lengthCounter = 0
	}
	if !a.enable[1] {
		a.pulse2.lengthCounter = 0
	}
	if !a.enable[2] {
		a.triangle.lengthCounter = 0
	}
	if !a.enable[3] {
		a.noise.lengthCounter = 0
	}
	if !a.enable[4] {
		a.dmc.bytesRemaining = 0
	} else {
		a.dmc.restart()
	}
	a.dmc.irqFlag = false
}

func (a *APU) writeFrameCounter(value uint8) {
	a.irqInhibit = value&0x01 != 0
	if a.irqInhibit {
		a.frameIRQFlag = false
	}
	a.pendingModeWrite = true
	a.pendingMode = value&0x80 != 0
	if a.cycles%2 == 0 {
		a.writeDelay = 4
	} else {
		a.writeDelay = 3
	}
}

// ReadStatus handles a $4015 read: channel active bits, plus the frame and
// DMC IRQ flags. Reading $4015 clears the frame IRQ flag (but not the DMC
// one, which is cleared by any $4015 write or by a $4010 write that clears
// the DMC IRQ-enable bit).
func (a *APU) ReadStatus() uint8 {
	var status uint8
	if a.pulse1.lengthCounter > 0 {
		status |= 0x01
	}
	if a.pulse2.lengthCounter > 0 {
		status |= 0x02
	}
	if a.triangle.lengthCounter > 0 {
		status |= 0x04
	}
	if a.noise.lengthCounter > 0 {
		status |= 0x08
	}
	if a.dmc.bytesRemaining > 0 {
		status |= 0x10
	}
	if a.frameIRQFlag {
		status |= 0x40
	}
	if a.dmc.irqFlag {
		status |= 0x80
	}
	a.frameIRQFlag = false
	return status
}

// FrameIRQPending and DMCIRQPending let the orchestrator OR these into the
// CPU's IRQ line alongside mapper IRQs, per spec.md §4.9.
func (a *APU) FrameIRQPending() bool { return a.frameIRQFlag }
func (a *APU) DMCIRQPending() bool   { return a.dmc.irqFlag }

// DMC exposes the DMC channel's DMA-reader surface to internal/dma.
func (a *APU) DMCNeedsSample() bool      { return a.enable[4] && a.dmc.NeedsSample() }
func (a *APU) DMCSampleAddress() uint16  { return a.dmc.CurrentAddress() }
func (a *APU) DMCLoadSample(value uint8) { a.dmc.LoadSample(value) }

// Mix returns the current combined channel output on the 2A03's non-linear
// mixer curve, in the 0.0-1.0 range.
func (a *APU) Mix() float32 {
	p1, p2 := float32(a.pulse1.output()), float32(a.pulse2.output())
	t, n, d := float32(a.triangle.output()), float32(a.noise.output()), float32(a.dmc.output)

	var pulseOut float32
	if p1+p2 > 0 {
		pulseOut = 95.88 / (8128/(p1+p2) + 100)
	}
	var tndOut float32
	tndDenominator := t/8227 + n/12241 + d/22638
	if tndDenominator > 0 {
		tndOut = 159.79 / (1/tndDenominator + 100)
	}
	return pulseOut + tndOut
}
