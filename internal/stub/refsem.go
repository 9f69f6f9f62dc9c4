package stub

import (
	"math/bits"

	"github.com/counter-optimization/cio-go/internal/abi"
	"github.com/counter-optimization/cio-go/internal/flags"
)

// Portable, pure-Go reference semantics for the built-in instruction set,
// used as descriptor self-tests and as the non-amd64 fallback registry
// (spec.md §9: "a port must expose a portable hook for emitting or
// loading assembly stubs with this ABI"). Grounded directly on the shape
// of emu.ALU's methods (emu/alu_test.go): a small function operating on a
// register/flags value, computing the result and the flags it sets.
//
// This is a functional model, not real instruction execution: it cannot
// stand in for the amd64 asm stubs in the differential fuzzer itself, only
// for exercising the marshaller/checker/harness plumbing on any GOARCH.

func zeroGPRs(out *abi.OutState) {
	out.RAX, out.RBX = 0, 0
	out.R10, out.R11, out.R12, out.R13, out.R14, out.R15 = 0, 0, 0, 0, 0, 0
}

func refADD64rrOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi, rdx := in.OrigArgs[0], in.OrigArgs[1]
	sum, carry := bits.Add64(rsi, rdx, 0)
	out.RSI, out.RDX = sum, rdx
	out.LahfRaxRes = uint64(addFlags(rsi, rdx, sum, carry).AH())
}

func refADD64rrTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi, rdx := in.TransArgs[0], in.TransArgs[1]
	// tmp = rdx; rsi += tmp; tmp = 0 — uses R11 as scratch, restores it,
	// so the borrowed register never leaks into the compared state.
	tmp := rdx
	sum, carry := bits.Add64(rsi, tmp, 0)
	tmp = 0
	_ = tmp
	out.RSI, out.RDX = sum, rdx
	out.LahfRaxRes = uint64(addFlags(rsi, rdx, sum, carry).AH())
}

func refXOR64rrOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi, rdx := in.OrigArgs[0], in.OrigArgs[1]
	result := rsi ^ rdx
	out.RSI, out.RDX = result, rdx
	out.LahfRaxRes = uint64(logicalFlags(result).AH())
}

func refXOR64rrTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi, rdx := in.TransArgs[0], in.TransArgs[1]
	var result uint64
	if rsi == rdx {
		result = 0 // transform recognizes xor-with-self and emits `mov rsi, 0`
	} else {
		result = rsi ^ rdx
	}
	out.RSI, out.RDX = result, rdx
	out.LahfRaxRes = uint64(logicalFlags(result).AH())
}

func refSHR64riOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi := in.OrigArgs[0]
	result := rsi >> 1
	out.RSI = result
	out.LahfRaxRes = uint64(logicalFlags(result).AH())
}

func refSHR64riTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi := in.TransArgs[0]
	result := rsi >> 1
	out.RSI = result
	out.RBX = 0xDEADBEEF // deliberately buggy transform: clobbers RBX (S4)
	out.LahfRaxRes = uint64(logicalFlags(result).AH())
}

func refCMP64rrOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi, rdx := in.OrigArgs[0], in.OrigArgs[1]
	out.RSI, out.RDX = rsi, rdx
	diff, borrow := bits.Sub64(rsi, rdx, 0)
	out.LahfRaxRes = uint64(subFlags(rsi, rdx, diff, borrow).AH())
}

func refCMP64rrTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi, rdx := in.TransArgs[0], in.TransArgs[1]
	out.RSI, out.RDX = rsi, rdx
	diff, borrow := bits.Sub64(rsi, rdx, 0)
	f := subFlags(rsi, rdx, diff, borrow)
	f.CF = true // deliberately buggy transform: always asserts a borrow (S5)
	out.LahfRaxRes = uint64(f.AH())
}

func refADD64rmOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi := in.OrigArgs[0]
	memVal := abi.MemAt(in.OrigArgs[1])
	sum, carry := bits.Add64(rsi, memVal, 0)
	out.RSI, out.RDX = sum, in.OrigArgs[1]
	f := addFlags(rsi, memVal, sum, carry)
	f.AF = flagsIn.AF // the model carries AF over from the input flags; it does not compute the auxiliary carry
	out.LahfRaxRes = uint64(f.AH())
}

func refADD64rmTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	zeroGPRs(out)
	rsi := in.TransArgs[0]
	memVal := abi.MemAt(in.TransArgs[1])
	sum, carry := bits.Add64(rsi, memVal, 0)
	out.RSI, out.RDX = sum, in.TransArgs[1]
	f := addFlags(rsi, memVal, sum, carry)
	f.AF = flagsIn.AF
	out.LahfRaxRes = uint64(f.AH())
}

func addFlags(a, b, sum uint64, carry uint64) flags.Set {
	return flags.Set{
		SF: sum>>63 == 1,
		ZF: sum == 0,
		PF: parityEven(sum),
		CF: carry != 0,
	}
}

func subFlags(a, b, diff uint64, borrow uint64) flags.Set {
	return flags.Set{
		SF: diff>>63 == 1,
		ZF: diff == 0,
		PF: parityEven(diff),
		CF: borrow != 0,
	}
}

func logicalFlags(result uint64) flags.Set {
	return flags.Set{
		SF: result>>63 == 1,
		ZF: result == 0,
		PF: parityEven(result),
		CF: false,
	}
}

func parityEven(v uint64) bool {
	return bits.OnesCount8(uint8(v))%2 == 0
}

// RefSemRegistry returns a Registry of the portable reference-semantics
// stub pairs, used by this package's own descriptor self-tests and
// registered into stub.Default as the non-amd64 fallback.
func RefSemRegistry() *Registry {
	r := NewRegistry()
	r.Register(TestDescriptor{Name: "ADD64rr", RunOriginal: refADD64rrOriginal, RunTransformed: refADD64rrTransformed})
	r.Register(TestDescriptor{Name: "XOR64rr", RunOriginal: refXOR64rrOriginal, RunTransformed: refXOR64rrTransformed})
	r.Register(TestDescriptor{Name: "SHR64ri", RunOriginal: refSHR64riOriginal, RunTransformed: refSHR64riTransformed})
	r.Register(TestDescriptor{Name: "CMP64rr", RunOriginal: refCMP64rrOriginal, RunTransformed: refCMP64rrTransformed})
	r.Register(TestDescriptor{Name: "ADD64rm", RunOriginal: refADD64rmOriginal, RunTransformed: refADD64rmTransformed})
	return r
}
