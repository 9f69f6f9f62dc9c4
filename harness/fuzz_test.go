package harness_test

import (
	"testing"

	"github.com/counter-optimization/cio-go/internal/abi"
	"github.com/counter-optimization/cio-go/internal/config"
	"github.com/counter-optimization/cio-go/internal/metadata"
	"github.com/counter-optimization/cio-go/internal/stub"
	"github.com/counter-optimization/cio-go/harness"
)

// FuzzTestOneInput is the native Go fuzz front end over the same core
// logic package-level harness.TestOneInput exposes, seeded with the
// literal scenario buffers from spec.md §8 plus the empty/short inputs
// that must be rejected without side effects. It runs against ADD64rr's
// reference-semantics stub pair, since real machine code can only be
// exercised on amd64 hardware with the generated assembly present.
func FuzzTestOneInput(f *testing.F) {
	f.Add(buildInput([5]uint64{5, 7, 0, 0, 0}, 0))    // S1
	f.Add(buildInput([5]uint64{0xDEADBEEF, 0, 0, 0, 0}, 0))
	f.Add(make([]byte, 0))
	f.Add(make([]byte, abi.InputStateSize-1))

	reg := metadata.NewRegistry("1.0.0", nil)
	td := *stub.RefSemRegistry().MustLookup("ADD64rr")
	h := harness.New(reg.MustLookup("ADD64rr"), td, harness.WithConfig(config.Default()))

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			// A panic here means the stub pair disagreed; native fuzzing
			// surfaces that as a failing corpus entry, which is the
			// correct outcome for ADD64rr's refsem pair (they agree by
			// construction, so no panic should ever actually occur).
			if r := recover(); r != nil {
				t.Fatalf("equivalence mismatch: %v", r)
			}
		}()
		h.TestOneInput(data)
	})
}
