// Package abi defines the fixed testing ABI shared by every generated stub
// pair: the input buffer layout, the MarshalledInputs it unpacks into, and the
// packed, 16-byte-aligned OutState each stub writes its observed
// architectural state into.
package abi

import (
	"encoding/binary"
	"errors"

	"github.com/counter-optimization/cio-go/internal/metadata"
)

// recordSize is the width of one 128-bit input record.
const recordSize = 16

// numGPRRecords covers the five GPR/mem-scratch records plus the LAHF
// record (records 0..5).
const numGPRRecords = 6

// numVecRecords covers YMM0..YMM7's broadcast sources (records 6..13).
const numVecRecords = 8

// InputStateSize is the minimum byte length TestOneInput requires of a
// fuzzer-provided buffer. Buffers shorter than this are rejected.
const InputStateSize = (numGPRRecords + numVecRecords) * recordSize

// NumOperands is the number of operand positions a metadata.Descriptor may
// declare (RSI, RDX, RCX, R8, R9).
const NumOperands = 5

// NumVectorLanes is the number of YMM registers preloaded/captured.
const NumVectorLanes = 8

// ErrShortInput is returned by Marshal when the buffer is shorter than
// InputStateSize. Callers at the TestOneInput boundary translate this into
// the -1 "skip" sentinel the fuzzer contract requires.
var ErrShortInput = errors.New("abi: input buffer shorter than InputStateSize")

// MemSlot is one 128-bit memory scratch slot; only the low 8 bytes are ever
// dereferenced by a MEM operand, but the slot is sized to match the input
// record it was sourced from.
type MemSlot [2]uint64

// MarshalledInputs is the fully-resolved set of arguments ready to hand to
// a stub pair: per-variant register argument values (already substituted
// with scratch-slot addresses for MEM operand positions) plus the
// byte-identical, non-aliased scratch backing each variant reads/writes
// through.
type MarshalledInputs struct {
	// OrigArgs/TransArgs are the five values to load into RSI, RDX, RCX,
	// R8, R9 before calling <op>_original / <op>_transformed respectively.
	// For a REG-declared position these are the low 64 bits of record i.
	// For a MEM-declared position they are pointers into OrigMem/TransMem.
	OrigArgs  [NumOperands]uint64
	TransArgs [NumOperands]uint64

	// OrigMem/TransMem back every MEM-declared operand position. They are
	// seeded identically from the input buffer but never aliased, so any
	// divergence the checker observes is attributable solely to the
	// instruction transformation, not to shared memory.
	OrigMem  [NumOperands]MemSlot
	TransMem [NumOperands]MemSlot

	// LahfIn is the AH-format byte to load via SAHF before the tested
	// instruction executes.
	LahfIn uint8

	// VecIn holds the low 64 bits of each of the eight input records to be
	// broadcast across YMM0..YMM7 via vpbroadcastq.
	VecIn [NumVectorLanes]uint64
}

// Marshal decodes a fuzzer-provided byte buffer into a MarshalledInputs for
// the given descriptor's operand types. It returns ErrShortInput if data is
// too short, and panics if ot contains a tag outside {REG, MEM, Unused} —
// the operand-type domain is closed by metadata.Descriptor's invariants.
func Marshal(data []byte, ot [NumOperands]metadata.OperandType) (*MarshalledInputs, error) {
	if len(data) < InputStateSize {
		return nil, ErrShortInput
	}

	m := &MarshalledInputs{}

	var gpr [NumOperands]uint64
	for i := 0; i < NumOperands; i++ {
		rec := data[i*recordSize : (i+1)*recordSize]
		gpr[i] = binary.LittleEndian.Uint64(rec[0:8])
		scratchHi := binary.LittleEndian.Uint64(rec[8:16])
		m.OrigMem[i] = MemSlot{scratchHi, 0}
		m.TransMem[i] = MemSlot{scratchHi, 0}
	}

	lahfRec := data[5*recordSize : 6*recordSize]
	m.LahfIn = uint8(binary.LittleEndian.Uint64(lahfRec[0:8]))

	for i := 0; i < NumVectorLanes; i++ {
		off := numGPRRecords*recordSize + i*recordSize
		rec := data[off : off+recordSize]
		m.VecIn[i] = binary.LittleEndian.Uint64(rec[0:8])
	}

	for i := 0; i < NumOperands; i++ {
		m.OrigArgs[i] = gpr[i]
		m.TransArgs[i] = gpr[i]

		switch ot[i] {
		case metadata.OperandUnused, metadata.OperandReg:
			// value already set above
		case metadata.OperandMem:
			m.OrigArgs[i] = memSlotAddr(&m.OrigMem[i])
			m.TransArgs[i] = memSlotAddr(&m.TransMem[i])
		default:
			panic("abi: unreachable operand type tag")
		}
	}

	return m, nil
}
