package apu

// DMC implements the delta modulation channel: rate timer, output unit,
// and the sample reader that drives DMA requests (spec.md §4.7's DmcDma is
// the consumer of NeedsSample/LoadSample).
type DMC struct {
	irqEnable bool
	loop      bool
	rateIndex uint8

	sampleAddress uint16
	sampleLength  uint16

	currentAddress uint16
	bytesRemaining uint16

	sampleBuffer uint8
	bufferEmpty  bool

	shiftRegister uint8
	bitsRemaining uint8
	silence       bool

	timerCtr uint16

	output uint8

	irqFlag bool
}

func newDMC() DMC {
	return DMC{bufferEmpty: true, bitsRemaining: 8, silence: true}
}

func (d *DMC) writeControl(value uint8) {
	d.irqEnable = value&0x80 != 0
	d.loop = value&0x40 != 0
	d.rateIndex = value & 0x0F
	if !d.irqEnable {
		d.irqFlag = false
	}
}

func (d *DMC) writeDirectLoad(value uint8) {
	d.output = value & 0x7F
}

func (d *DMC) writeSampleAddress(value uint8) {
	d.sampleAddress = 0xC000 | (uint16(value) << 6)
}

func (d *DMC) writeSampleLength(value uint8) {
	d.sampleLength = (uint16(value) << 4) | 1
}

// restart is invoked by a $4015 write that sets the DMC enable bit while the
// channel was previously idle: it (re)starts the sample reader.
func (d *DMC) restart() {
	if d.bytesRemaining == 0 {
		d.currentAddress = d.sampleAddress
		d.bytesRemaining = d.sampleLength
	}
}

// NeedsSample reports whether the sample buffer is empty and more sample
// bytes remain, meaning the orchestrator's DmcDma engine should stall the
// CPU and fetch CurrentAddress() from the bus.
func (d *DMC) NeedsSample() bool {
	return d.bufferEmpty && d.bytesRemaining > 0
}

// CurrentAddress is the CPU address the next DMA-fetched sample byte comes
// from.
func (d *DMC) CurrentAddress() uint16 {
	return d.currentAddress
}

// LoadSample delivers a DMA-fetched sample byte, advancing the reader and
// wrapping/reloading or firing the IRQ per the loop/IRQ-enable flags.
func (d *DMC) LoadSample(value uint8) {
	d.sampleBuffer = value
	d.bufferEmpty = false

	d.currentAddress++
	if d.currentAddress == 0 {
		d.currentAddress = 0x8000
	}
	d.bytesRemaining--
	if d.bytesRemaining == 0 {
		if d.loop {
			d.currentAddress = d.sampleAddress
			d.bytesRemaining = d.sampleLength
		} else if d.irqEnable {
			d.irqFlag = true
		}
	}
}

func (d *DMC) stepTimer() {
	if d.timerCtr == 0 {
		d.timerCtr = dmcRateTable[d.rateIndex]
		d.clockOutputUnit()
	} else {
		d.timerCtr--
	}
}

func (d *DMC) clockOutputUnit() {
	if !d.silence {
		if d.shiftRegister&0x01 != 0 {
			if d.output <= 125 {
				d.output += 2
			}
		} else {
			if d.output >= 2 {
				d.output -= 2
			}
		}
	}
	d.shiftRegister >>= 1
	d.bitsRemaining--
	if d.bitsRemaining == 0 {
		d.bitsRemaining = 8
		if d.bufferEmpty {
			d.silence = true
		} else {
			d.silence = false
			d.shiftRegister = d.sampleBuffer
			d.bufferEmpty = true
		}
	}
}
