// Package bus implements BusState: the NES's 2 KiB of internal RAM plus the
// open-bus latch that models the CPU data bus's capacitance. Routing
// addresses to PPU registers, APU registers, and the cartridge is performed
// by internal/emulator, which is the only component with references to
// every subsystem; BusState itself knows only about RAM and the latch.
package bus

// ramSize is the NES's internal RAM: 2 KiB, mirrored across $0000-$1FFF.
const ramSize = 0x0800

// ramMask mirrors any address in $0000-$1FFF down into the 2 KiB range.
const ramMask = ramSize - 1

// BusState holds the CPU-side RAM and the open-bus latch.
type BusState struct {
	ram [ramSize]uint8

	// latch is the last value driven onto the CPU data bus by any read or
	// write, official or not. Reads of write-only/unmapped addresses
	// return this value.
	latch uint8
}

// New returns a BusState with RAM zeroed and the latch at zero.
func New() BusState {
	return BusState{}
}

// Reset clears RAM and the open-bus latch. RESET does not clear RAM on real
// hardware, so internal/emulator's Reset does not call this: BusState is
// left untouched across a RESET.
func (b *BusState) Reset() {
	b.ram = [ramSize]uint8{}
	b.latch = 0
}

// ReadRAM reads the mirrored 2 KiB RAM region and updates the open-bus latch.
func (b *BusState) ReadRAM(addr uint16) uint8 {
	v := b.ram[addr&ramMask]
	b.latch = v
	return v
}

// PeekRAM reads RAM without touching the open-bus latch, for the
// side-effect-free debugger path.
func (b *BusState) PeekRAM(addr uint16) uint8 {
	return b.ram[addr&ramMask]
}

// WriteRAM writes the mirrored 2 KiB RAM region and updates the latch to the
// written value.
func (b *BusState) WriteRAM(addr uint16, value uint8) {
	b.ram[addr&ramMask] = value
	b.latch = value
}

// Latch returns the current open-bus value without mutating it.
func (b *BusState) Latch() uint8 {
	return b.latch
}

// SetLatch drives a value onto the bus from outside the RAM path (PPU/APU
// register reads and writes also update open bus).
func (b *BusState) SetLatch(value uint8) {
	b.latch = value
}
