// Package stub holds the generated "stub pair" adapters described in
// spec.md: for each tested instruction, a TestDescriptor bundling the
// original and transformed callables the harness invokes. The
// re-architected equivalent of the C harness's text-templated
// AUTOMATICALLY_REPLACE_ME_* markers (spec.md §9) is this package's
// Registry: a code-generated or hand-written adapter module per
// instruction that the harness loads by name, with no text templating at
// compile time.
package stub

import (
	"fmt"

	"github.com/counter-optimization/cio-go/internal/abi"
	"github.com/counter-optimization/cio-go/internal/flags"
)

// RunFunc executes one variant (original or transformed) of a tested
// instruction. It receives the fully-resolved arguments for this variant
// (REG values or scratch-slot pointers already substituted per operand
// type), the flag state to load before the instruction executes, and a
// zeroed, 16-byte-aligned OutState to capture into.
type RunFunc func(in *abi.MarshalledInputs, flagsIn flags.Set, out *abi.OutState)

// TestDescriptor bundles one instruction's original and transformed
// callables under the name its metadata.Descriptor is registered under.
type TestDescriptor struct {
	Name           string
	RunOriginal    RunFunc
	RunTransformed RunFunc
}

// Registry indexes TestDescriptors by name.
type Registry struct {
	byName map[string]TestDescriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]TestDescriptor)}
}

// Register adds td to the registry, overwriting any prior entry of the
// same name.
func (r *Registry) Register(td TestDescriptor) {
	r.byName[td.Name] = td
}

// Lookup returns the descriptor registered under name, or nil.
func (r *Registry) Lookup(name string) *TestDescriptor {
	if td, ok := r.byName[name]; ok {
		return &td
	}
	return nil
}

// MustLookup is Lookup but panics if name is not registered.
func (r *Registry) MustLookup(name string) *TestDescriptor {
	td := r.Lookup(name)
	if td == nil {
		panic(fmt.Sprintf("stub: no TestDescriptor registered for %q", name))
	}
	return td
}

// Names returns all registered descriptor names.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	return out
}

// Default is the process-wide registry of production stub pairs, built up
// by arch-specific init() functions (asm stubs on amd64, the portable
// reference-semantics set elsewhere).
var Default = NewRegistry()
