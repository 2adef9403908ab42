package apu

// Sweep is the pulse channel's period-sweep unit. stepSweep is a pure
// function: given the sweep's own state and the channel's current timer
// period, it returns the updated sweep state and the (possibly unchanged)
// timer period, generalized from the teacher's clockPulseSweep method into
// the pure-transformer shape spec.md §4.5 calls for.
type Sweep struct {
	Enabled bool
	Negate  bool
	Period  uint8
	Shift   uint8
	Reload  bool
	counter uint8
}

// stepSweep advances the sweep unit by one half-frame tick. onesComplement
// selects pulse 1's one's-complement negate behavior (pulse 2 uses two's
// complement); this is the one documented asymmetry between the two pulse
// channels on real hardware.
func stepSweep(s Sweep, timer uint16, onesComplement bool) (Sweep, uint16) {
	target := sweepTarget(s, timer, onesComplement)
	muted := timer < 8 || target > 0x7FF

	if s.counter == 0 && s.Enabled && s.Shift > 0 && !muted {
		timer = target
	}

	if s.counter == 0 || s.Reload {
		s.counter = s.Period
		s.Reload = false
	} else {
		s.counter--
	}

	return s, timer
}

func sweepTarget(s Sweep, timer uint16, onesComplement bool) uint16 {
	change := timer >> s.Shift
	if !s.Negate {
		return timer + change
	}
	if onesComplement {
		return timer - change - 1
	}
	return timer - change
}

// Muted reports whether the sweep unit is currently silencing the channel
// (timer too low or target period overflowed), independent of whether a
// sweep actually fires this tick.
func (s Sweep) Muted(timer uint16, onesComplement bool) bool {
	target := sweepTarget(s, timer, onesComplement)
	return timer < 8 || target > 0x7FF
}
