package controller

import "testing"

func TestStrobeHighAlwaysReturnsButtonA(t *testing.T) {
	var p Pad
	p.SetButton(ButtonA, true)
	p.SetButton(ButtonB, true)
	p.Strobe(true)

	for i := 0; i < 3; i++ {
		if got := p.Read() & 0x01; got != 1 {
			t.Fatalf("strobe-high read %d = %d, want 1 (button A pinned)", i, got)
		}
	}
}

func TestShiftOrderMatchesButtonLayout(t *testing.T) {
	var p Pad
	p.SetButton(ButtonB, true)
	p.SetButton(ButtonStart, true)
	p.Strobe(true)
	p.Strobe(false)

	want := []uint8{0, 1, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		if got := p.Read() & 0x01; got != w {
			t.Fatalf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestReadsPastEighthBitHoldHigh(t *testing.T) {
	var p Pad
	p.SetButton(ButtonA, true)
	p.Strobe(true)
	p.Strobe(false)

	for i := 0; i < 8; i++ {
		p.Read()
	}
	for i := 0; i < 3; i++ {
		if got := p.Read() & 0x01; got != 1 {
			t.Fatalf("read %d past the 8th bit = %d, want held 1", i, got)
		}
	}
}

func TestOpenBusBitsSetOnRead(t *testing.T) {
	var p Pad
	p.Strobe(true)
	if got := p.Read(); got&0x40 == 0 {
		t.Fatalf("Read() = %#02x, want bit 6 set", got)
	}
}

func TestWriteStrobePropagatesToBothPorts(t *testing.T) {
	var c Controllers
	c.Port1.SetButton(ButtonA, true)
	c.Port2.SetButton(ButtonB, true)

	c.WriteStrobe(0x01)
	c.WriteStrobe(0x00)

	if got := c.ReadPort1() & 0x01; got != 1 {
		t.Fatalf("port1 first bit = %d, want 1 (A pressed)", got)
	}
	if got := c.ReadPort2() & 0x01; got != 0 {
		t.Fatalf("port2 first bit = %d, want 0 (A not pressed on port2)", got)
	}
}

func TestLiveButtonChangeDuringReadSequenceIsIgnored(t *testing.T) {
	var p Pad
	p.SetButton(ButtonA, true)
	p.Strobe(true)
	p.Strobe(false)

	p.SetButton(ButtonB, true) // should not affect the in-flight shift register
	if got := p.Read() & 0x01; got != 1 {
		t.Fatalf("first bit = %d, want 1 (snapshot taken while strobe was high)", got)
	}
}

func TestResetClearsState(t *testing.T) {
	var c Controllers
	c.Port1.SetButton(ButtonA, true)
	c.Reset()
	c.Port1.Strobe(true)
	if got := c.ReadPort1() & 0x01; got != 0 {
		t.Fatalf("after Reset, port1 bit = %d, want 0", got)
	}
}
