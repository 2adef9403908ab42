// Package controller implements the two-port standard NES controller
// shift-register protocol at $4016/$4017, generalized from the teacher's
// internal/input package.
package controller

// Button identifies one of the eight standard-controller buttons. The
// values match the bit position in the 8-bit shift register loaded on
// strobe, in the NES's fixed A/B/Select/Start/Up/Down/Left/Right order.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Pad models one controller port: the live button state plus the shift
// register a strobe snapshot loads.
type Pad struct {
	buttons  uint8
	shift    uint8
	strobing bool
}

// SetButton updates the live button state. Live state is what the next
// strobe-high write snapshots; it does not itself affect an in-progress
// read sequence.
func (p *Pad) SetButton(b Button, pressed bool) {
	if pressed {
		p.buttons |= uint8(b)
	} else {
		p.buttons &^= uint8(b)
	}
}

// Strobe sets the port's strobe line. Writing it high snapshots the live
// button state into the shift register, and while it stays high every read
// snapshots it again and returns button A. The falling edge loads nothing:
// the next 8 reads walk through A, B, Select, Start, Up, Down, Left, Right
// as last snapshotted while the strobe was high.
func (p *Pad) Strobe(high bool) {
	p.strobing = high
	if high {
		p.shift = p.buttons
	}
}

// Read returns the next bit of the shift register in bit 0, with bit 6 set
// as a fixed open-bus pattern (bits 1-5 and 7 read back as 0). After the 8 button bits are exhausted, reads
// return a held 1 in bit 0 (the official controller shifts in a 1 forever).
func (p *Pad) Read() uint8 {
	if p.strobing {
		p.shift = p.buttons
	}
	bit := p.shift & 0x01
	p.shift = (p.shift >> 1) | 0x80
	return bit | 0x40
}

// Reset clears button state and the shift register.
func (p *Pad) Reset() {
	*p = Pad{}
}

// Controllers holds both standard-controller ports the bus routes $4016
// (write: strobe both ports; read: port 1) and $4017 (read: port 2) to.
type Controllers struct {
	Port1 Pad
	Port2 Pad
}

// WriteStrobe handles a $4016 write: bit 0 drives the strobe line on both
// ports simultaneously.
func (c *Controllers) WriteStrobe(value uint8) {
	high := value&0x01 != 0
	c.Port1.Strobe(high)
	c.Port2.Strobe(high)
}

// ReadPort1 handles a $4016 read.
func (c *Controllers) ReadPort1() uint8 { return c.Port1.Read() }

// ReadPort2 handles a $4017 read.
func (c *Controllers) ReadPort2() uint8 { return c.Port2.Read() }

// Reset clears both ports.
func (c *Controllers) Reset() {
	c.Port1.Reset()
	c.Port2.Reset()
}
