// Package flags models the five LAHF-reachable EFLAGS bits the fuzzer
// tracks: SF, ZF, AF, PF, CF. OF and DF are deliberately out of scope.
package flags

import "fmt"

// Flag identifies one of the five tracked EFLAGS bits.
type Flag uint8

// The tracked flags, numbered to match original_source's EFLAGS enum.
const (
	SF Flag = iota + 1
	ZF
	AF
	PF
	CF
)

// String returns the flag's mnemonic, e.g. "SF".
func (f Flag) String() string {
	switch f {
	case SF:
		return "SF"
	case ZF:
		return "ZF"
	case AF:
		return "AF"
	case PF:
		return "PF"
	case CF:
		return "CF"
	default:
		panic(fmt.Sprintf("flags: unknown flag identifier %d", uint8(f)))
	}
}

// bit positions within the LAHF/SAHF AH byte.
const (
	bitSF = 0x80
	bitZF = 0x40
	bitAF = 0x10
	bitPF = 0x04
	bitCF = 0x01
)

// Set is the decoded state of the five tracked flags.
type Set struct {
	SF, ZF, AF, PF, CF bool
}

// FromAH decodes a LAHF/SAHF-format AH byte into a Set.
func FromAH(ah uint8) Set {
	return Set{
		SF: ah&bitSF != 0,
		ZF: ah&bitZF != 0,
		AF: ah&bitAF != 0,
		PF: ah&bitPF != 0,
		CF: ah&bitCF != 0,
	}
}

// AH re-encodes the Set into a LAHF/SAHF-format AH byte.
func (s Set) AH() uint8 {
	var ah uint8
	if s.SF {
		ah |= bitSF
	}
	if s.ZF {
		ah |= bitZF
	}
	if s.AF {
		ah |= bitAF
	}
	if s.PF {
		ah |= bitPF
	}
	if s.CF {
		ah |= bitCF
	}
	return ah
}

// Get reads the named flag out of the Set.
func (s Set) Get(f Flag) bool {
	switch f {
	case SF:
		return s.SF
	case ZF:
		return s.ZF
	case AF:
		return s.AF
	case PF:
		return s.PF
	case CF:
		return s.CF
	default:
		panic(fmt.Sprintf("flags: unknown flag identifier %d", uint8(f)))
	}
}

// ParseList parses a list of flag mnemonics ("SF", "ZF", ...) as found in a
// metadata table or YAML overlay. An unrecognized mnemonic is a programmer
// error: the flag domain is closed by spec.
func ParseList(names []string) []Flag {
	out := make([]Flag, 0, len(names))
	for _, n := range names {
		out = append(out, parseOne(n))
	}
	return out
}

func parseOne(name string) Flag {
	switch name {
	case "SF":
		return SF
	case "ZF":
		return ZF
	case "AF":
		return AF
	case "PF":
		return PF
	case "CF":
		return CF
	default:
		panic(fmt.Sprintf("flags: unknown flag mnemonic %q", name))
	}
}
