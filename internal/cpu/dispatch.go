package cpu

// buildMicrosteps is the fetch-cycle's decode step: given the opcode just
// read from PC (already advanced past it), it enqueues every remaining
// cycle the instruction needs. Special-shaped instructions (stack ops,
// jumps, branches) get their own builder; everything else is dispatched by
// category (Read/Store/RMW/Implied) against the fixed opcode table.
func (cpu *CPU) buildMicrosteps(opcode uint8) {
	switch opcode {
	case 0x00:
		cpu.buildBRK()
		return
	case 0x20:
		cpu.buildJSR()
		return
	case 0x40:
		cpu.buildRTI()
		return
	case 0x60:
		cpu.buildRTS()
		return
	case 0x08:
		cpu.buildPush(func(c *CPU) uint8 { return c.statusByte() | unusedMask | bFlagMask })
		return
	case 0x48:
		cpu.buildPush(func(c *CPU) uint8 { return c.A })
		return
	case 0x28:
		cpu.buildPull(func(c *CPU, v uint8) { c.SetStatusByte(v) })
		return
	case 0x68:
		cpu.buildPull(func(c *CPU, v uint8) { c.A = v; c.setZN(v) })
		return
	case 0x4C:
		cpu.buildJMPAbsolute()
		return
	case 0x6C:
		cpu.buildJMPIndirect()
		return
	}

	if cond := branchCondition(opcode); cond != nil {
		cpu.buildBranch(cond)
		return
	}

	inst := cpu.instructions[opcode]

	if fn, ok := impliedOps[opcode]; ok {
		cpu.queue = append(cpu.queue, func(c *CPU) {
			c.bus.Read(c.PC)
			fn(c)
		})
		return
	}
	if fn, ok := readOps[opcode]; ok {
		cpu.buildRead(inst.Mode, fn)
		return
	}
	if fn, ok := storeOps[opcode]; ok {
		cpu.buildStore(inst.Mode, fn)
		return
	}
	if fn, ok := rmwOps[opcode]; ok {
		cpu.buildRMW(inst.Mode, fn)
		return
	}

	// Opcodes with no Instruction-table entry decode as a bare dummy read,
	// matching the documented-unofficial opcode list's coverage; anything
	// truly unlisted behaves as a 2-cycle NOP rather than desyncing PC.
	cpu.queue = append(cpu.queue, func(c *CPU) { c.bus.Read(c.PC) })
}

// buildRead enqueues mode's addressing microsteps (or the single Immediate
// cycle) followed by one cycle that reads the resolved value and applies it.
func (cpu *CPU) buildRead(mode AddressingMode, apply func(c *CPU, value uint8)) {
	if mode == Immediate {
		cpu.queue = append(cpu.queue, func(c *CPU) {
			value := c.bus.Read(c.PC)
			c.PC++
			apply(c, value)
		})
		return
	}
	cpu.resolveAddress(mode, false)
	cpu.queue = append(cpu.queue, func(c *CPU) {
		apply(c, c.bus.Read(c.opAddr))
	})
}

// buildStore enqueues mode's addressing microsteps (always paying the
// page-cross dummy read) followed by one cycle that writes valueFn's byte.
func (cpu *CPU) buildStore(mode AddressingMode, valueFn func(c *CPU) uint8) {
	cpu.resolveAddress(mode, true)
	cpu.queue = append(cpu.queue, func(c *CPU) {
		c.bus.Write(c.opAddr, valueFn(c))
	})
}

// buildRMW enqueues the read-modify-write sequence spec.md §4.4 requires:
// read the effective address, write the original value back unchanged (the
// dummy write), then write the transformed value. Accumulator-mode shifts
// have no memory operand and take a single dummy-read-then-transform cycle.
func (cpu *CPU) buildRMW(mode AddressingMode, transform func(c *CPU, value uint8) uint8) {
	if mode == Accumulator {
		cpu.queue = append(cpu.queue, func(c *CPU) {
			c.bus.Read(c.PC)
			c.A = transform(c, c.A)
		})
		return
	}
	cpu.resolveAddress(mode, true)
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opVal = c.bus.Read(c.opAddr) },
		func(c *CPU) { c.bus.Write(c.opAddr, c.opVal) },
		func(c *CPU) { c.bus.Write(c.opAddr, transform(c, c.opVal)) },
	)
}

// buildPush: dummy read at PC, then push valueFn's byte (PHA/PHP).
func (cpu *CPU) buildPush(valueFn func(c *CPU) uint8) {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.push(valueFn(c)) },
	)
}

// buildPull: dummy read at PC, internal SP increment, then pop and apply
// (PLA/PLP).
func (cpu *CPU) buildPull(applyFn func(c *CPU, v uint8)) {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(stackBase + uint16(c.SP)) },
		func(c *CPU) { applyFn(c, c.pop()) },
	)
}

// buildJMPAbsolute: fetch low, fetch high and jump.
func (cpu *CPU) buildJMPAbsolute() {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opLow = c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) {
			high := uint16(c.bus.Read(c.PC))
			c.PC = (high << 8) | uint16(c.opLow)
		},
	)
}

// buildJMPIndirect: fetch the pointer, then read the target address out of
// it, reproducing the famous page-wrap bug (a pointer ending in $xxFF reads
// its high byte from $xx00, not $(xx+1)00).
func (cpu *CPU) buildJMPIndirect() {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opLow = c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) {
			high := uint16(c.bus.Read(c.PC))
			c.PC++
			c.opPtr = (high << 8) | uint16(c.opLow)
		},
		func(c *CPU) { c.opLow = c.bus.Read(c.opPtr) },
		func(c *CPU) {
			var hiAddr uint16
			if c.opPtr&zeroPageMask == zeroPageMask {
				hiAddr = c.opPtr & pageMask
			} else {
				hiAddr = c.opPtr + 1
			}
			high := uint16(c.bus.Read(hiAddr))
			c.PC = (high << 8) | uint16(c.opLow)
		},
	)
}

// buildJSR: fetch low, an internal dummy stack peek, push the return
// address (PC then points at the operand's high byte), fetch high and jump.
func (cpu *CPU) buildJSR() {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.opLow = c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) { c.bus.Read(stackBase + uint16(c.SP)) },
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC)) },
		func(c *CPU) {
			high := uint16(c.bus.Read(c.PC))
			c.PC = (high << 8) | uint16(c.opLow)
		},
	)
}

// buildRTS: dummy read, internal SP increment, pop PCL/PCH, then an internal
// increment of the popped address.
func (cpu *CPU) buildRTS() {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(stackBase + uint16(c.SP)) },
		func(c *CPU) { c.opLow = c.pop() },
		func(c *CPU) {
			high := uint16(c.pop())
			c.opAddr = (high << 8) | uint16(c.opLow)
		},
		func(c *CPU) { c.PC = c.opAddr + 1 },
	)
}

// buildRTI: dummy read, internal SP increment, pop P, pop PCL/PCH.
func (cpu *CPU) buildRTI() {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(stackBase + uint16(c.SP)) },
		func(c *CPU) { c.SetStatusByte(c.pop()) },
		func(c *CPU) { c.opLow = c.pop() },
		func(c *CPU) {
			high := uint16(c.pop())
			c.PC = (high << 8) | uint16(c.opLow)
		},
	)
}

// buildBRK: read and discard the padding byte following the opcode (PC
// advances, unlike a hardware interrupt's hijack), then the same push/vector
// sequence as NMI/IRQ, with B set in the pushed status and vectoring through
// IRQ/BRK's shared vector. Real hardware's rare NMI-hijacks-BRK corner case
// (an NMI asserted during BRK's own sequence redirects it to the NMI
// vector) is not modeled: BRK always completes to the IRQ vector.
func (cpu *CPU) buildBRK() {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC)) },
		func(c *CPU) { c.push(c.statusByte() | unusedMask | bFlagMask) },
		func(c *CPU) { c.opLow = c.bus.Read(irqVector) },
		func(c *CPU) {
			high := uint16(c.bus.Read(irqVector + 1))
			c.PC = (high << 8) | uint16(c.opLow)
			c.I = true
		},
	)
}

// buildBranch: fetch the signed offset. If the condition is false, that is
// the whole instruction (2 cycles total). If true, a dummy read at the
// "wrong" address (correct low byte, stale high byte) follows; if the
// branch also crossed a page, a second dummy read at that same wrong
// address precedes the final, correct PC assignment.
func (cpu *CPU) buildBranch(cond func(*CPU) bool) {
	cpu.queue = append(cpu.queue, func(c *CPU) {
		offset := int8(c.bus.Read(c.PC))
		c.PC++
		if !cond(c) {
			return
		}
		oldPC := c.PC
		newPC := uint16(int32(oldPC) + int32(offset))
		samePage := (oldPC & pageMask) == (newPC & pageMask)
		wrongPC := (oldPC & pageMask) | (newPC & 0x00FF)
		c.queue = append(c.queue, func(c *CPU) {
			c.bus.Read(wrongPC)
			if samePage {
				c.PC = newPC
				return
			}
			c.PC = wrongPC
			c.queue = append(c.queue, func(c *CPU) {
				c.bus.Read(wrongPC)
				c.PC = newPC
			})
		})
	})
}
