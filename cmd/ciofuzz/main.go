// Command ciofuzz is the standalone, non-fuzzer-engine front end over
// the equivalence harness: it seeds a PRNG with the fixed constant the
// original crypto benchmarks used (original_source/eval_util.h's
// EVAL_UTIL_H_SEED) and repeatedly fills an input buffer to drive
// harness.TestOneInput, instead of delegating buffer generation to an
// external fuzzing engine.
//
// Usage:
//
//	go run ./cmd/ciofuzz -runs=N -max_len=M [flags]
//
// Flags:
//
//	-runs             Number of iterations (required)
//	-max_len          Input buffer size in bytes, >= InputStateSize (required)
//	-instruction      Instruction name to test (default: ADD64rr)
//	-measure_cycles   Enable timing mode instead of equivalence checking
//	-pass_version     Compiler-pass version gating the metadata table
//	-metadata_overlay Path to a YAML metadata overlay file
//	-pprof_out        Path to write a cycle-count pprof profile (timing mode)
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/counter-optimization/cio-go/harness"
	"github.com/counter-optimization/cio-go/internal/abi"
)

// evalUtilSeed matches original_source/eval_util.h's EVAL_UTIL_H_SEED,
// kept so differential runs against the original crypto benchmarks'
// corpus generation remain reproducible.
const evalUtilSeed = 172812

var (
	runs            = flag.Int("runs", 0, "Number of iterations (required)")
	maxLen          = flag.Int("max_len", 0, "Input buffer size in bytes, must be >= InputStateSize (required)")
	instruction     = flag.String("instruction", "ADD64rr", "Instruction name to test")
	measureCycles   = flag.Bool("measure_cycles", false, "Enable timing mode instead of equivalence checking")
	passVersion     = flag.String("pass_version", "", "Compiler-pass version gating the metadata table")
	metadataOverlay = flag.String("metadata_overlay", "", "Path to a YAML metadata overlay file")
	pprofOut        = flag.String("pprof_out", "", "Path to write a cycle-count pprof profile (timing mode)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ciofuzz - standalone differential equivalence driver\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ciofuzz -runs=N -max_len=M [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *runs <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -runs is required and must be positive\n")
		os.Exit(1)
	}
	if *maxLen < abi.InputStateSize {
		fmt.Fprintf(os.Stderr, "Error: -max_len must be >= %d\n", abi.InputStateSize)
		os.Exit(1)
	}

	args := []string{fmt.Sprintf("-instruction=%s", *instruction)}
	if *measureCycles {
		args = append(args, "-measure_cycles")
	}
	if *passVersion != "" {
		args = append(args, fmt.Sprintf("-pass_version=%s", *passVersion))
	}
	if *metadataOverlay != "" {
		args = append(args, fmt.Sprintf("-metadata_overlay=%s", *metadataOverlay))
	}
	if *pprofOut != "" {
		args = append(args, fmt.Sprintf("-pprof_out=%s", *pprofOut))
	}

	if rc := harness.Initialize(args); rc != 0 {
		fmt.Fprintf(os.Stderr, "Error: harness.Initialize returned %d\n", rc)
		os.Exit(1)
	}
	defer func() {
		if err := harness.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing harness output: %v\n", err)
			os.Exit(1)
		}
	}()

	rng := rand.New(rand.NewSource(evalUtilSeed))
	buf := make([]byte, *maxLen)

	for i := 0; i < *runs; i++ {
		if _, err := rng.Read(buf); err != nil {
			fmt.Fprintf(os.Stderr, "Error filling input buffer: %v\n", err)
			os.Exit(1)
		}
		harness.TestOneInput(buf)
	}
}
