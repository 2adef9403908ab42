package cpu

// These tables classify every opcode that isn't one of the special-shaped
// instructions dispatch.go handles directly (stack ops, jumps, branches,
// BRK) into one of four execution shapes, each with its own microstep
// builder in dispatch.go. Populated once at package init from the same
// opcode groupings opcodes.go uses to fill the Instruction table.

var (
	impliedOps = map[uint8]func(cpu *CPU){}
	readOps    = map[uint8]func(cpu *CPU, value uint8){}
	storeOps   = map[uint8]func(cpu *CPU) uint8{}
	rmwOps     = map[uint8]func(cpu *CPU, value uint8) uint8{}
)

func init() {
	registerImpliedOps()
	registerReadOps()
	registerStoreOps()
	registerRMWOps()
}

func registerImpliedOps() {
	set := func(opcodes []uint8, fn func(cpu *CPU)) {
		for _, op := range opcodes {
			impliedOps[op] = fn
		}
	}
	set([]uint8{0xE8}, inxImplied)
	set([]uint8{0xCA}, dexImplied)
	set([]uint8{0xC8}, inyImplied)
	set([]uint8{0x88}, deyImplied)
	set([]uint8{0xAA}, taxImplied)
	set([]uint8{0x8A}, txaImplied)
	set([]uint8{0xA8}, tayImplied)
	set([]uint8{0x98}, tyaImplied)
	set([]uint8{0xBA}, tsxImplied)
	set([]uint8{0x9A}, txsImplied)
	set([]uint8{0x18}, clcImplied)
	set([]uint8{0x38}, secImplied)
	set([]uint8{0x58}, cliImplied)
	set([]uint8{0x78}, seiImplied)
	set([]uint8{0xB8}, clvImplied)
	set([]uint8{0xD8}, cldImplied)
	set([]uint8{0xF8}, sedImplied)
	set([]uint8{0xEA, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA}, nopImplied)
	set([]uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2}, jamImplied)
}

func registerReadOps() {
	set := func(opcodes []uint8, fn func(cpu *CPU, value uint8)) {
		for _, op := range opcodes {
			readOps[op] = fn
		}
	}
	set([]uint8{0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1}, ldaApply)
	set([]uint8{0xA2, 0xA6, 0xB6, 0xAE, 0xBE}, ldxApply)
	set([]uint8{0xA0, 0xA4, 0xB4, 0xAC, 0xBC}, ldyApply)
	set([]uint8{0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71}, adcApply)
	set([]uint8{0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1}, sbcApply)
	set([]uint8{0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31}, andApply)
	set([]uint8{0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11}, oraApply)
	set([]uint8{0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51}, eorApply)
	set([]uint8{0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1}, cmpApply)
	set([]uint8{0xE0, 0xE4, 0xEC}, cpxApply)
	set([]uint8{0xC0, 0xC4, 0xCC}, cpyApply)
	set([]uint8{0x24, 0x2C}, bitApply)
	set([]uint8{0xA3, 0xA7, 0xAF, 0xB3, 0xB7, 0xBF}, laxApply)

	// Unofficial NOPs that still read (and discard) an operand byte; the
	// read itself is observable (open bus, register side effects) so it
	// must happen even though nothing is applied.
	set([]uint8{0x80, 0x82, 0x89, 0xC2, 0xE2}, nopApply)
	set([]uint8{0x04, 0x44, 0x64}, nopApply)
	set([]uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4}, nopApply)
	set([]uint8{0x0C}, nopApply)
	set([]uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC}, nopApply)

	// Unofficial, Immediate-addressed combined ALU opcodes.
	set([]uint8{0x0B, 0x2B}, ancApply)
	set([]uint8{0x4B}, alrApply)
	set([]uint8{0x6B}, arrApply)
	set([]uint8{0x8B}, xaaApply)
	set([]uint8{0xAB}, lxaApply)
	set([]uint8{0xCB}, axsApply)
	set([]uint8{0xBB}, lasApply)
}

func registerStoreOps() {
	set := func(opcodes []uint8, fn func(cpu *CPU) uint8) {
		for _, op := range opcodes {
			storeOps[op] = fn
		}
	}
	set([]uint8{0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91}, staValue)
	set([]uint8{0x86, 0x96, 0x8E}, stxValue)
	set([]uint8{0x84, 0x94, 0x8C}, styValue)
	set([]uint8{0x87, 0x97, 0x8F, 0x83}, saxValue)
	set([]uint8{0x9F, 0x93}, shaValue)
	set([]uint8{0x9E}, shxValue)
	set([]uint8{0x9C}, shyValue)
	set([]uint8{0x9B}, tasValue)
}

func registerRMWOps() {
	set := func(opcodes []uint8, fn func(cpu *CPU, value uint8) uint8) {
		for _, op := range opcodes {
			rmwOps[op] = fn
		}
	}
	set([]uint8{0x0A, 0x06, 0x16, 0x0E, 0x1E}, aslTransform)
	set([]uint8{0x4A, 0x46, 0x56, 0x4E, 0x5E}, lsrTransform)
	set([]uint8{0x2A, 0x26, 0x36, 0x2E, 0x3E}, rolTransform)
	set([]uint8{0x6A, 0x66, 0x76, 0x6E, 0x7E}, rorTransform)
	set([]uint8{0xE6, 0xF6, 0xEE, 0xFE}, incTransform)
	set([]uint8{0xC6, 0xD6, 0xCE, 0xDE}, decTransform)
	set([]uint8{0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13}, sloTransform)
	set([]uint8{0x27, 0x37, 0x2F, 0x3F, 0x3B, 0x23, 0x33}, rlaTransform)
	set([]uint8{0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53}, sreTransform)
	set([]uint8{0x67, 0x77, 0x6F, 0x7F, 0x7B, 0x63, 0x73}, rraTransform)
	set([]uint8{0xC7, 0xD7, 0xCF, 0xDF, 0xDB, 0xC3, 0xD3}, dcpTransform)
	set([]uint8{0xE7, 0xF7, 0xEF, 0xFF, 0xFB, 0xE3, 0xF3}, isbTransform)
}
