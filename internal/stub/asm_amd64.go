package stub

import (
	"github.com/counter-optimization/cio-go/internal/abi"
	"github.com/counter-optimization/cio-go/internal/cycletimer"
	"github.com/counter-optimization/cio-go/internal/flags"
)

// Extern declarations for the hand-written amd64 stub pairs in
// asm_amd64.s. Each loads its five operand-register arguments, the LAHF
// byte, and the YMM broadcast sources, executes exactly one instruction
// (or one deliberately-transformed sequence), and captures the resulting
// architectural state into out.

//go:noescape
func add64rrOriginalAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func add64rrTransformedAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func xor64rrOriginalAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func xor64rrTransformedAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func shr64riOriginalAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func shr64riTransformedAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func cmp64rrOriginalAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func cmp64rrTransformedAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func add64rmOriginalAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

//go:noescape
func add64rmTransformedAsm(rsi, rdx, rcx, r8, r9, ah uint64, vecIn *[8]uint64, out *abi.OutState)

// timed wraps an asm stub call with a serialized cycle-count measurement,
// matching original_source/eval_util.h's START_CYCLE_TIMER/STOP_CYCLE_TIMER
// bracketing. It necessarily includes this wrapper's own call/return
// overhead in addition to the tested instruction, unlike an epilogue that
// captured TSC from inside the stub itself; callers in non-timing mode
// simply ignore OutState.CycleCount.
func timed(out *abi.OutState, run func()) {
	start := cycletimer.Start()
	run()
	out.CycleCount = cycletimer.Stop() - start
}

func runADD64rrOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		add64rrOriginalAsm(in.OrigArgs[0], in.OrigArgs[1], in.OrigArgs[2], in.OrigArgs[3], in.OrigArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runADD64rrTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		add64rrTransformedAsm(in.TransArgs[0], in.TransArgs[1], in.TransArgs[2], in.TransArgs[3], in.TransArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runXOR64rrOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		xor64rrOriginalAsm(in.OrigArgs[0], in.OrigArgs[1], in.OrigArgs[2], in.OrigArgs[3], in.OrigArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runXOR64rrTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		xor64rrTransformedAsm(in.TransArgs[0], in.TransArgs[1], in.TransArgs[2], in.TransArgs[3], in.TransArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runSHR64riOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		shr64riOriginalAsm(in.OrigArgs[0], in.OrigArgs[1], in.OrigArgs[2], in.OrigArgs[3], in.OrigArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runSHR64riTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		shr64riTransformedAsm(in.TransArgs[0], in.TransArgs[1], in.TransArgs[2], in.TransArgs[3], in.TransArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runCMP64rrOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		cmp64rrOriginalAsm(in.OrigArgs[0], in.OrigArgs[1], in.OrigArgs[2], in.OrigArgs[3], in.OrigArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runCMP64rrTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		cmp64rrTransformedAsm(in.TransArgs[0], in.TransArgs[1], in.TransArgs[2], in.TransArgs[3], in.TransArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runADD64rmOriginal(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		add64rmOriginalAsm(in.OrigArgs[0], in.OrigArgs[1], in.OrigArgs[2], in.OrigArgs[3], in.OrigArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func runADD64rmTransformed(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState) {
	timed(out, func() {
		add64rmTransformedAsm(in.TransArgs[0], in.TransArgs[1], in.TransArgs[2], in.TransArgs[3], in.TransArgs[4], uint64(flagsIn.AH()), &in.VecIn, out)
	})
}

func init() {
	Default.Register(TestDescriptor{Name: "ADD64rr", RunOriginal: runADD64rrOriginal, RunTransformed: runADD64rrTransformed})
	Default.Register(TestDescriptor{Name: "XOR64rr", RunOriginal: runXOR64rrOriginal, RunTransformed: runXOR64rrTransformed})
	Default.Register(TestDescriptor{Name: "SHR64ri", RunOriginal: runSHR64riOriginal, RunTransformed: runSHR64riTransformed})
	Default.Register(TestDescriptor{Name: "CMP64rr", RunOriginal: runCMP64rrOriginal, RunTransformed: runCMP64rrTransformed})
	Default.Register(TestDescriptor{Name: "ADD64rm", RunOriginal: runADD64rmOriginal, RunTransformed: runADD64rmTransformed})
}
