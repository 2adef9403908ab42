package cartridge

import (
	"bytes"
	"errors"
	"testing"
)

const (
	validMagic   = "NES\x1A"
	invalidMagic = "ROM\x1A"
)

func buildHeader(prgUnits, chrUnits, flags6, flags7 uint8) []byte {
	h := make([]byte, headerSize)
	copy(h[0:4], validMagic)
	h[4] = prgUnits
	h[5] = chrUnits
	h[6] = flags6
	h[7] = flags7
	return h
}

func buildROM(prgUnits, chrUnits, flags6, flags7 uint8) []byte {
	var buf bytes.Buffer
	buf.Write(buildHeader(prgUnits, chrUnits, flags6, flags7))
	prg := make([]byte, int(prgUnits)*prgBankBytes)
	for i := range prg {
		prg[i] = uint8(i)
	}
	buf.Write(prg)
	if chrUnits > 0 {
		chr := make([]byte, int(chrUnits)*chrBankBytes)
		for i := range chr {
			chr[i] = uint8(i + 1)
		}
		buf.Write(chr)
	}
	return buf.Bytes()
}

func TestLoadINESRejectsBadMagic(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	copy(data[0:4], invalidMagic)
	if _, err := LoadINES(data); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestLoadINESRejectsZeroPRG(t *testing.T) {
	data := buildROM(0, 1, 0, 0)
	if _, err := LoadINES(data); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestLoadINESRejectsTruncatedPRG(t *testing.T) {
	data := buildROM(2, 0, 0, 0)
	data = data[:len(data)-100]
	if _, err := LoadINES(data); !errors.Is(err, ErrRomDataTruncated) {
		t.Fatalf("expected ErrRomDataTruncated, got %v", err)
	}
}

func TestLoadINESRejectsUnsupportedMapper(t *testing.T) {
	// Mapper 1 (MMC1): the mapper number's low nibble, held in the upper
	// nibble of flags6, = 1.
	data := buildROM(1, 1, 0x10, 0x00)
	if _, err := LoadINES(data); !errors.Is(err, ErrUnsupportedMapper) {
		t.Fatalf("expected ErrUnsupportedMapper, got %v", err)
	}
}

func TestLoadINESMirroring(t *testing.T) {
	cases := []struct {
		name   string
		flags6 uint8
		want   Mirroring
	}{
		{"horizontal", 0x00, MirrorHorizontal},
		{"vertical", 0x01, MirrorVertical},
		{"four-screen", 0x08, MirrorFourScreen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := buildROM(1, 1, tc.flags6, 0)
			cart, err := LoadINES(data)
			if err != nil {
				t.Fatalf("LoadINES: %v", err)
			}
			if got := cart.Mirroring(); got != tc.want {
				t.Fatalf("Mirroring() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMapper0PRGMirroring16KiB(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	cart, err := LoadINES(data)
	if err != nil {
		t.Fatalf("LoadINES: %v", err)
	}
	low := cart.CPURead(0x8000)
	mirrored := cart.CPURead(0xC000)
	if low != mirrored {
		t.Fatalf("16KiB PRG ROM should mirror at $C000: got %#02x vs %#02x", low, mirrored)
	}
}

func TestMapper0PRGRAMReadWrite(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	cart, err := LoadINES(data)
	if err != nil {
		t.Fatalf("LoadINES: %v", err)
	}
	cart.CPUWrite(0x6000, 0x42)
	if got := cart.CPURead(0x6000); got != 0x42 {
		t.Fatalf("PRG RAM readback = %#02x, want 0x42", got)
	}
}

func TestMapper0ROMWritesAbsorbed(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	cart, err := LoadINES(data)
	if err != nil {
		t.Fatalf("LoadINES: %v", err)
	}
	before := cart.CPURead(0x8000)
	cart.CPUWrite(0x8000, before^0xFF)
	if after := cart.CPURead(0x8000); after != before {
		t.Fatalf("write to $8000 should not change ROM: got %#02x, want %#02x", after, before)
	}
}

func TestMapper0CHRRAMWhenZeroUnits(t *testing.T) {
	data := buildROM(1, 0, 0, 0)
	cart, err := LoadINES(data)
	if err != nil {
		t.Fatalf("LoadINES: %v", err)
	}
	cart.PPUWrite(0x0010, 0x55)
	if got := cart.PPURead(0x0010); got != 0x55 {
		t.Fatalf("CHR RAM readback = %#02x, want 0x55", got)
	}
}

func TestMapper0CHRROMNotWritable(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	cart, err := LoadINES(data)
	if err != nil {
		t.Fatalf("LoadINES: %v", err)
	}
	before := cart.PPURead(0x0010)
	cart.PPUWrite(0x0010, before^0xFF)
	if after := cart.PPURead(0x0010); after != before {
		t.Fatalf("CHR ROM write should be absorbed: got %#02x, want %#02x", after, before)
	}
}

func TestMapper0NeverAssertsIRQ(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	cart, err := LoadINES(data)
	if err != nil {
		t.Fatalf("LoadINES: %v", err)
	}
	if cart.TickIRQ() {
		t.Fatal("NROM should never assert IRQ")
	}
}
