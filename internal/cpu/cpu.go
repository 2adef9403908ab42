// Package cpu implements the Ricoh 2A03's 6502-derived CPU core, generalized
// from the teacher's internal/cpu package: the same opcode table, addressing
// modes, and flag rules, restructured so that a single CPU cycle corresponds
// to a single call into the core. Every addressing mode is decomposed into
// the exact sequence of bus reads/writes real hardware performs (including
// dummy reads, dummy writes, and internal-only cycles); nothing executes
// atomically. StepCycle is what internal/emulator drives, one PPU-aligned
// CPU cycle at a time, so every other subsystem observes the machine at the
// same granularity real hardware does. Step is a convenience wrapper, used
// by tests and tools that want "run one instruction" without caring about
// the interleaving, implemented as a loop over StepCycle.
package cpu

// AddressingMode identifies how an opcode's operand address is computed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Instruction describes one opcode's byte length, documented cycle cost, and
// addressing mode. Cycles is metadata (used by tests and tracing); the
// actual cost of an instruction is however many microsteps its builder
// enqueues, which must always agree with this field.
type Instruction struct {
	Name   string
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// Bus is the CPU's view of the NES address space: the full $0000-$FFFF
// decode lives in internal/emulator, not here.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// microStep is one observable CPU cycle: exactly one bus access or internal
// register update. An instruction is a queue of these built at fetch time.
type microStep func(cpu *CPU)

// CPU is the 6502 register and flag state, the fixed instruction table, and
// the in-flight microstep queue that makes one StepCycle call equal one
// real CPU cycle.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C, Z, I, D, B, V, N bool

	bus    Bus
	cycles uint64

	instructions [256]Instruction

	queue []microStep

	// Scratch registers live across the microsteps of a single instruction:
	// opAddr is the resolved effective address, opPtr a pointer/base address
	// used mid-resolution, opLow a low-byte-in-flight scratch, opVal the
	// value an RMW instruction read back before transforming it.
	opAddr uint16
	opPtr  uint16
	opLow  uint8
	opVal  uint8

	nmiPending   bool
	nmiLine      bool
	irqLine      bool
	nmiJustAcked bool

	// halted is set by a JAM/KIL opcode, the 6502's undocumented "lock up
	// the bus forever" instructions. Real hardware needs a RESET to recover;
	// StepCycle stops fetching once this is set.
	halted bool
}

// New returns a CPU wired to the given bus. Call Reset before use to reach
// the documented power-on state.
func New(bus Bus) *CPU {
	cpu := &CPU{bus: bus, SP: 0xFD}
	cpu.initInstructions()
	return cpu
}

// Reset performs the 6502's 7-cycle reset sequence: 5 internal bus cycles
// followed by the two reset-vector reads.
func (cpu *CPU) Reset() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD
	cpu.C, cpu.Z, cpu.D, cpu.V, cpu.N = false, false, false, false, false
	cpu.I = true
	cpu.B = true
	cpu.halted = false
	cpu.queue = nil
	cpu.nmiPending = false
	cpu.nmiJustAcked = false

	for i := 0; i < 5; i++ {
		cpu.bus.Read(cpu.PC)
		cpu.cycles++
	}
	low := uint16(cpu.bus.Read(resetVector))
	high := uint16(cpu.bus.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 2
}

// Cycles returns the total CPU cycles executed since construction or Reset.
func (cpu *CPU) Cycles() uint64 { return cpu.cycles }

// Halted reports whether a JAM/KIL opcode has locked up the CPU. Only Reset
// clears it.
func (cpu *CPU) Halted() bool { return cpu.halted }

// AtInstructionBoundary reports whether the microstep queue is empty, i.e.
// no instruction is mid-flight. Snapshot/Restore assume this holds; taking
// a snapshot while it does not loses the in-flight addressing/RMW state.
func (cpu *CPU) AtInstructionBoundary() bool { return len(cpu.queue) == 0 }

// ConsumeNmiAcked reports and clears whether the CPU's interrupt sequence
// latched an NMI on the most recent StepCycle call (the true hardware
// acknowledgment point, the last cycle of the 7-cycle sequence), so the
// orchestrator can stamp the ledger at the exact cycle hardware would.
func (cpu *CPU) ConsumeNmiAcked() bool {
	acked := cpu.nmiJustAcked
	cpu.nmiJustAcked = false
	return acked
}

// SetNMILine sets the NMI input line. NMI is edge-triggered: it latches when
// the line goes from deasserted to asserted and stays pending until serviced.
func (cpu *CPU) SetNMILine(asserted bool) {
	if !cpu.nmiLine && asserted {
		cpu.nmiPending = true
	}
	cpu.nmiLine = asserted
}

// SetIRQLine sets the level-triggered IRQ input line (APU frame/DMC IRQs and
// mapper IRQs are OR'd together by the caller before this call).
func (cpu *CPU) SetIRQLine(asserted bool) {
	cpu.irqLine = asserted
}

// StepCycle performs exactly one CPU cycle: the next queued microstep of an
// in-flight instruction, or, when the queue is empty, the fetch cycle that
// either hijacks into an interrupt sequence or decodes and enqueues the next
// instruction's microsteps. Every call is one observable bus access or
// internal update, matching spec.md §4.4's requirement that no instruction
// execute atomically against the rest of the machine.
func (cpu *CPU) StepCycle() {
	if cpu.halted {
		return
	}
	if len(cpu.queue) > 0 {
		step := cpu.queue[0]
		cpu.queue = cpu.queue[1:]
		step(cpu)
		cpu.cycles++
		return
	}
	cpu.beginInstruction()
	cpu.cycles++
}

// beginInstruction is the fetch cycle: it checks for a latched interrupt
// before decoding a normal opcode, since an NMI/IRQ hijacks the opcode fetch
// itself (the byte at PC is read but discarded, and PC does not advance).
func (cpu *CPU) beginInstruction() {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.bus.Read(cpu.PC)
		cpu.queueInterruptSequence(nmiVector, false, true)
		return
	}
	if cpu.irqLine && !cpu.I {
		cpu.bus.Read(cpu.PC)
		cpu.queueInterruptSequence(irqVector, false, false)
		return
	}

	opcode := cpu.bus.Read(cpu.PC)
	cpu.PC++
	cpu.buildMicrosteps(opcode)
}

// queueInterruptSequence enqueues the 6 remaining cycles of a hardware
// interrupt (NMI/IRQ): the fetch's dummy read already consumed cycle 1 of
// the documented 7-cycle sequence. isNMI marks the true NMI acknowledgment
// point so the orchestrator can stamp the ledger precisely.
func (cpu *CPU) queueInterruptSequence(vector uint16, fromBRK, isNMI bool) {
	cpu.queue = append(cpu.queue,
		func(c *CPU) { c.bus.Read(c.PC) }, // second dummy read, PC unchanged
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC)) },
		func(c *CPU) {
			status := c.statusByte() &^ bFlagMask
			if fromBRK {
				status |= bFlagMask
			}
			status |= unusedMask
			c.push(status)
		},
		func(c *CPU) { c.opLow = c.bus.Read(vector) },
		func(c *CPU) {
			high := uint16(c.bus.Read(vector + 1))
			c.PC = (high << 8) | uint16(c.opLow)
			c.I = true
			if isNMI {
				c.nmiJustAcked = true
			}
		},
	)
}

// Step runs one full instruction (or interrupt sequence) by calling
// StepCycle until the microstep queue drains, and returns the number of CPU
// cycles it took. internal/emulator never calls this: it drives StepCycle
// directly so PPU/APU state is observed cycle-by-cycle, not frozen for the
// duration of a multi-cycle instruction. Step exists for tests and tools
// that want instruction-level granularity.
func (cpu *CPU) Step() uint64 {
	before := cpu.cycles
	cpu.StepCycle()
	for len(cpu.queue) > 0 {
		cpu.StepCycle()
	}
	return cpu.cycles - before
}

func (cpu *CPU) push(value uint8) {
	cpu.bus.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.bus.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&nFlagMask != 0
}

// StatusByte returns the processor status register packed into a byte.
func (cpu *CPU) StatusByte() uint8 { return cpu.statusByte() }

func (cpu *CPU) statusByte() uint8 {
	var status uint8
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	status |= unusedMask
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// SetStatusByte loads the processor status register from a byte (PLP, RTI).
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.N = status&nFlagMask != 0
	cpu.V = status&vFlagMask != 0
	cpu.B = status&bFlagMask != 0
	cpu.D = status&dFlagMask != 0
	cpu.I = status&iFlagMask != 0
	cpu.Z = status&zFlagMask != 0
	cpu.C = status&cFlagMask != 0
}
