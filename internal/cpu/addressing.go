package cpu

// resolveAddress enqueues the microsteps that resolve mode's effective
// address into cpu.opAddr. Immediate has no address (callers special-case
// it) and Implied/Accumulator/Relative are handled by their own builders.
// alwaysDummy forces the page-cross dummy read that store/RMW instructions
// always pay; read instructions pass false and only pay it when a page is
// actually crossed.
func (cpu *CPU) resolveAddress(mode AddressingMode, alwaysDummy bool) {
	switch mode {
	case ZeroPage:
		cpu.queue = append(cpu.queue, func(c *CPU) {
			c.opAddr = uint16(c.bus.Read(c.PC))
			c.PC++
		})
	case ZeroPageX:
		cpu.queueZeroPageIndexed(func(c *CPU) uint8 { return c.X })
	case ZeroPageY:
		cpu.queueZeroPageIndexed(func(c *CPU) uint8 { return c.Y })
	case Absolute:
		cpu.queue = append(cpu.queue,
			func(c *CPU) { c.opLow = c.bus.Read(c.PC); c.PC++ },
			func(c *CPU) {
				high := uint16(c.bus.Read(c.PC))
				c.PC++
				c.opAddr = (high << 8) | uint16(c.opLow)
			},
		)
	case AbsoluteX:
		cpu.queueAbsoluteIndexed(func(c *CPU) uint8 { return c.X }, alwaysDummy)
	case AbsoluteY:
		cpu.queueAbsoluteIndexed(func(c *CPU) uint8 { return c.Y }, alwaysDummy)
	case IndexedIndirect:
		cpu.queueIndexedIndirect()
	case IndirectIndexed:
		cpu.queueIndirectIndexed(alwaysDummy)
	}
}

// queueZeroPageIndexed: fetch zp base, dummy-read the unindexed base (real
// hardware always forms the indexed address this way), then wrap within the
// zero page.
func (cpu *CPU) queueZeroPageIndexed(indexFn func(c *CPU) uint8) {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opLow = c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) {
			c.bus.Read(uint16(c.opLow))
			c.opAddr = uint16((c.opLow + indexFn(c)) & zeroPageMask)
		},
	)
}

// queueAbsoluteIndexed: fetch low, fetch high and compute base+index. If the
// index crossed a page (or alwaysDummy is set), an extra dummy read at the
// "wrong" address (correct low byte, stale high byte) is appended, matching
// the real hardware behavior that forms the final address a cycle late.
func (cpu *CPU) queueAbsoluteIndexed(indexFn func(c *CPU) uint8, alwaysDummy bool) {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opLow = c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) {
			high := uint16(c.bus.Read(c.PC))
			c.PC++
			base := (high << 8) | uint16(c.opLow)
			c.opPtr = base
			c.opAddr = base + uint16(indexFn(c))
			crossed := (base & pageMask) != (c.opAddr & pageMask)
			if crossed || alwaysDummy {
				wrongAddr := (base & pageMask) | (c.opAddr & 0x00FF)
				c.queue = append(c.queue, func(c *CPU) {
					c.bus.Read(wrongAddr)
				})
			}
		},
	)
}

// queueIndexedIndirect implements (zp,X): fetch zp base, dummy-read that
// base before indexing, then read the 16-bit pointer out of the zero page
// (wrapping within it for both bytes).
func (cpu *CPU) queueIndexedIndirect() {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opLow = c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) { c.bus.Read(uint16(c.opLow)) },
		func(c *CPU) {
			ptr := (c.opLow + c.X) & zeroPageMask
			c.opPtr = uint16(ptr)
			c.opLow = c.bus.Read(uint16(ptr))
		},
		func(c *CPU) {
			high := c.bus.Read(uint16((uint8(c.opPtr) + 1) & zeroPageMask))
			c.opAddr = (uint16(high) << 8) | uint16(c.opLow)
		},
	)
}

// queueIndirectIndexed implements (zp),Y: read the zero-page pointer, form
// the base address, then add Y with the same conditional/always dummy-read
// rule as absolute,X/Y.
func (cpu *CPU) queueIndirectIndexed(alwaysDummy bool) {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opPtr = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) { c.opLow = c.bus.Read(c.opPtr) },
		func(c *CPU) {
			high := uint16(c.bus.Read((c.opPtr + 1) & zeroPageMask))
			base := (high << 8) | uint16(c.opLow)
			c.opPtr = base
			c.opAddr = base + uint16(c.Y)
			crossed := (base & pageMask) != (c.opAddr & pageMask)
			if crossed || alwaysDummy {
				wrongAddr := (base & pageMask) | (c.opAddr & 0x00FF)
				c.queue = append(c.queue, func(c *CPU) {
					c.bus.Read(wrongAddr)
				})
			}
		},
	)
}
