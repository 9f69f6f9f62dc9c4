// Package metadata holds the per-instruction compile-time tables the
// equivalence checker and marshaller need: which operand positions are
// REG vs MEM, which flags a transform must preserve or set, and the
// minimum compiler-pass version a descriptor requires.
package metadata

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/counter-optimization/cio-go/internal/flags"
)

// OperandType labels one of the five operand positions a stub may read.
type OperandType uint8

const (
	// OperandUnused marks a trailing, unused operand position. The first
	// OperandUnused in a descriptor's OperandTypes terminates the list,
	// matching the original table's null-terminated convention.
	OperandUnused OperandType = iota
	OperandReg
	OperandMem
)

// String renders the operand type the way metadata tables and diagnostics
// print it ("REG", "MEM", or "" for unused).
func (t OperandType) String() string {
	switch t {
	case OperandUnused:
		return ""
	case OperandReg:
		return "REG"
	case OperandMem:
		return "MEM"
	default:
		panic(fmt.Sprintf("metadata: unreachable operand type tag %d", uint8(t)))
	}
}

// Descriptor is the compile-time metadata for one tested instruction.
type Descriptor struct {
	// Name is the instruction mnemonic as used in the generated stub
	// symbols, e.g. "ADD64rr", "SHR8rCL", "IMUL32rm".
	Name string

	// OperandTypes declares, in RSI/RDX/RCX/R8/R9 order, whether each
	// operand position is a register value or a pointer to an 8-byte
	// memory scratch slot.
	OperandTypes [5]OperandType

	// Preserves lists the flags a correct transform must leave unchanged
	// relative to the original instruction's output. Checked only if
	// MustPreserveFlags is true.
	Preserves []flags.Flag

	// Sets lists the flags a correct transform must deterministically
	// produce the same value for as the original. Checked only if
	// MustSetFlags is true.
	Sets []flags.Flag

	MustPreserveFlags bool
	MustSetFlags      bool

	// MinPassVersion is a semver constraint string (e.g. ">=1.2.0") gating
	// this descriptor's availability against the harness's configured
	// compiler-pass version. Empty means no constraint.
	MinPassVersion string
}

// SatisfiesPassVersion reports whether passVersion (a semver version
// string such as "1.3.0") satisfies d's MinPassVersion constraint. A
// Descriptor with no constraint always satisfies.
func (d *Descriptor) SatisfiesPassVersion(passVersion string) bool {
	if d.MinPassVersion == "" {
		return true
	}

	constraint, err := semver.NewConstraint(d.MinPassVersion)
	if err != nil {
		panic(fmt.Sprintf("metadata: descriptor %s has an invalid MinPassVersion constraint %q: %v",
			d.Name, d.MinPassVersion, err))
	}

	v, err := semver.NewVersion(passVersion)
	if err != nil {
		panic(fmt.Sprintf("metadata: invalid pass version %q: %v", passVersion, err))
	}

	return constraint.Check(v)
}

// MemOperandIndices returns the operand positions declared MEM, in order.
// Only positions 0..4 (RSI..R9) can ever be MEM.
func (d *Descriptor) MemOperandIndices() []int {
	var out []int
	for i, t := range d.OperandTypes {
		switch t {
		case OperandUnused:
			return out
		case OperandMem:
			out = append(out, i)
		case OperandReg:
			// not a memory operand
		default:
			panic(fmt.Sprintf("metadata: unreachable operand type tag %d", uint8(t)))
		}
	}
	return out
}
