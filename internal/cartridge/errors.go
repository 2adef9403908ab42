package cartridge

import "errors"

// Narrow error kinds per spec.md §7. All other guest-triggered conditions
// (writes to ROM, reads of write-only registers, ...) are defined hardware
// behavior, never Go errors.
var (
	// ErrUnsupportedMapper is returned when the iNES header names a mapper
	// number this build does not implement. Only mapper 0 (NROM) is
	// implemented; LoadINES's mapper check and AnyCartridge's kind switch
	// are written so later mappers plug in without disturbing this error
	// path.
	ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")

	// ErrMalformedHeader is returned on a bad magic number or a
	// structurally invalid header (e.g. zero PRG size).
	ErrMalformedHeader = errors.New("cartridge: malformed iNES header")

	// ErrRomDataTruncated is returned when the file is shorter than the
	// header's PRG/CHR sizes imply.
	ErrRomDataTruncated = errors.New("cartridge: rom data truncated")
)
