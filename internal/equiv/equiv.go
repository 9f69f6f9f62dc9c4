// Package equiv implements the differential equivalence checker: given the
// original and transformed OutStates produced by one invocation, it
// compares general-purpose registers (with operand-type-aware MEM
// dereferencing), the LAHF-reachable flags, and the XMM0..7 vectors, and
// reports every mismatch found.
package equiv

import (
	"fmt"

	"github.com/counter-optimization/cio-go/internal/abi"
	"github.com/counter-optimization/cio-go/internal/flags"
	"github.com/counter-optimization/cio-go/internal/metadata"
)

// Mismatch names one field on which the original and transformed states
// disagreed, in the wording the original C harness's diagnostics used.
type Mismatch struct {
	Field    string
	Expected uint64
	Given    uint64
	Message  string
}

// Result is the outcome of one equivalence check.
type Result struct {
	Equivalent bool
	Mismatches []Mismatch
}

// gprCheck describes one of the 15 compared GPRs (RDI is never compared:
// it holds the caller-supplied OutState pointer and is unobservable).
type gprCheck struct {
	name        string
	index       int // index into OutState.GPR
	operandSlot int // -1 if this register is never a MEM-operand position
}

var checkedGPRs = []gprCheck{
	{"rax", 0, -1},
	{"rbx", 1, -1},
	{"rcx", 2, 2},
	{"rdx", 3, 1},
	{"rsp", 4, -1},
	{"rbp", 5, -1},
	{"rsi", 6, 0},
	{"r8", 8, 3},
	{"r9", 9, 4},
	{"r10", 10, -1},
	{"r11", 11, -1},
	{"r12", 12, -1},
	{"r13", 13, -1},
	{"r14", 14, -1},
	{"r15", 15, -1},
}

// Check compares orig and trans per meta's operand types and flag
// obligations. lahfIn is accepted for diagnostic purposes only, matching
// the original harness's check_outstates_equivalent signature.
func Check(orig, trans *abi.OutState, meta *metadata.Descriptor, lahfIn flags.Set) Result {
	var res Result
	res.Equivalent = true

	record := func(m Mismatch) {
		res.Equivalent = false
		res.Mismatches = append(res.Mismatches, m)
	}

	for _, g := range checkedGPRs {
		isMem := g.operandSlot >= 0 && meta.OperandTypes[g.operandSlot] == metadata.OperandMem

		origVal := orig.GPR(g.index)
		transVal := trans.GPR(g.index)

		if isMem {
			expected := abi.MemAt(origVal)
			given := abi.MemAt(transVal)
			if expected != given {
				record(Mismatch{
					Field:    g.name,
					Expected: expected,
					Given:    given,
					Message: fmt.Sprintf(
						"Output states differed on memory pointed to by register %s: expected %d, given %d",
						g.name, expected, given),
				})
			}
			continue
		}

		if origVal != transVal {
			record(Mismatch{
				Field:    g.name,
				Expected: origVal,
				Given:    transVal,
				Message: fmt.Sprintf(
					"Output states differed on register %s: expected %d, given %d",
					g.name, origVal, transVal),
			})
		}
	}

	for i := 0; i < abi.NumVectorLanes; i++ {
		o, t := orig.Xmm[i], trans.Xmm[i]
		if o.Lo != t.Lo || o.Hi != t.Hi {
			record(Mismatch{
				Field:   fmt.Sprintf("xmm%d", i),
				Message: fmt.Sprintf("Output states differed on xmm%d", i),
			})
		}
	}

	origFlags := flags.FromAH(uint8(orig.LahfRaxRes))
	transFlags := flags.FromAH(uint8(trans.LahfRaxRes))

	if meta.MustPreserveFlags {
		for _, f := range meta.Preserves {
			if origFlags.Get(f) != transFlags.Get(f) {
				record(Mismatch{
					Field:   "LAHF_" + f.String(),
					Message: fmt.Sprintf("transform did not preserve flag: LAHF_%s", f),
				})
			}
		}
	}

	if meta.MustSetFlags {
		for _, f := range meta.Sets {
			expected := boolToU64(origFlags.Get(f))
			given := boolToU64(transFlags.Get(f))
			if expected != given {
				record(Mismatch{
					Field:    "LAHF_" + f.String(),
					Expected: expected,
					Given:    given,
					Message: fmt.Sprintf(
						"transform did not set flag LAHF_%s. expected: %d, given %d",
						f, expected, given),
				})
			}
		}
	}

	_ = lahfIn // accepted for diagnostic parity with the original ABI only

	return res
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
