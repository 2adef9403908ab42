// Package clock implements the master PPU-cycle counter all other NES
// timing is derived from.
package clock

// Frame length in PPU cycles for a normal (even) NTSC frame: 262 scanlines
// of 341 dots each.
const FrameLength = 262 * 341

// OddFrameLength is one PPU cycle shorter: the pre-render scanline skips
// its last dot when rendering was enabled at the skip boundary.
const OddFrameLength = FrameLength - 1

// ScanlineLength is the number of PPU dots per scanline.
const ScanlineLength = 341

// Clock is a monotonically increasing count of PPU cycles since power-on.
// CPU/APU cycle, scanline, dot, frame index and odd-frame flag are all pure
// functions of Count.
type Clock struct {
	Count uint64

	// oddFrame toggles every time a frame boundary is crossed; it decides
	// whether the next pre-render scanline is shortened by one dot.
	oddFrame bool

	// frame is the number of frame boundaries crossed since power-on.
	frame uint64
}

// New returns a Clock at power-on (count zero, even frame).
func New() Clock {
	return Clock{}
}

// Reset returns the clock to its power-on state. The clock only advances
// forward otherwise; Reset is the sole exception.
func (c *Clock) Reset() {
	*c = Clock{}
}

// Advance moves the clock forward by delta PPU cycles. delta is never
// negative; the clock never resets itself.
func (c *Clock) Advance(delta uint64) {
	c.Count += delta
}

// AdvanceFrame records that a frame boundary was just crossed, flipping the
// odd-frame parity used by the PPU's pre-render skip-dot logic.
func (c *Clock) AdvanceFrame() {
	c.frame++
	c.oddFrame = !c.oddFrame
}

// CpuCycle returns the CPU/APU cycle number: one CPU cycle happens every
// third PPU cycle.
func (c *Clock) CpuCycle() uint64 {
	return c.Count / 3
}

// IsCpuTick reports whether the current PPU cycle is one on which the CPU
// and APU should also step (divider = 3).
func (c *Clock) IsCpuTick() bool {
	return c.Count%3 == 0
}

// Scanline returns the current scanline (0..261) within the frame.
func (c *Clock) Scanline() int {
	return int((c.Count % FrameLength) / ScanlineLength)
}

// Dot returns the current dot (0..340) within the scanline.
func (c *Clock) Dot() int {
	return int((c.Count % FrameLength) % ScanlineLength)
}

// Frame returns the number of frames completed since power-on.
func (c *Clock) Frame() uint64 {
	return c.frame
}

// OddFrame reports whether the frame in progress is an odd frame (the one
// whose pre-render scanline may be shortened by a dot).
func (c *Clock) OddFrame() bool {
	return c.oddFrame
}
