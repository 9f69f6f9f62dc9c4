package metadata

import (
	"fmt"

	"github.com/counter-optimization/cio-go/internal/flags"
)

// builtin is the compiled-in descriptor table, named the way the upstream
// compiler pass's X86CompSimpMap.csv names opcodes (see
// original_source/eval_util.h's StatsOffsetIndices enum).
var builtin = []Descriptor{
	{
		Name:         "ADD64rr",
		OperandTypes: [5]OperandType{OperandReg, OperandReg, OperandUnused, OperandUnused, OperandUnused},
	},
	{
		Name:         "XOR64rr",
		OperandTypes: [5]OperandType{OperandReg, OperandReg, OperandUnused, OperandUnused, OperandUnused},
	},
	{
		Name:         "SHR64ri",
		OperandTypes: [5]OperandType{OperandReg, OperandUnused, OperandUnused, OperandUnused, OperandUnused},
	},
	{
		Name:           "CMP64rr",
		OperandTypes:   [5]OperandType{OperandReg, OperandReg, OperandUnused, OperandUnused, OperandUnused},
		Sets:           []flags.Flag{flags.ZF, flags.CF, flags.SF},
		MustSetFlags:   true,
		MinPassVersion: ">=1.0.0",
	},
	{
		Name:              "ADD64rm",
		OperandTypes:      [5]OperandType{OperandReg, OperandMem, OperandUnused, OperandUnused, OperandUnused},
		Preserves:         []flags.Flag{flags.AF},
		MustPreserveFlags: true,
	},
}

// Registry is an indexed, queryable set of descriptors, filtered by the
// configured compiler-pass version.
type Registry struct {
	byName map[string]*Descriptor
	order  []string
}

// NewRegistry builds a Registry from the compiled-in table plus any
// overlay descriptors, keeping only entries whose MinPassVersion
// constraint passVersion satisfies. A later entry with the same Name
// replaces an earlier one, so an overlay file can amend the built-in
// table without a rebuild.
func NewRegistry(passVersion string, overlay []Descriptor) *Registry {
	r := &Registry{byName: make(map[string]*Descriptor)}

	for _, d := range append(append([]Descriptor{}, builtin...), overlay...) {
		d := d
		if !d.SatisfiesPassVersion(passVersion) {
			continue
		}
		if _, exists := r.byName[d.Name]; !exists {
			r.order = append(r.order, d.Name)
		}
		r.byName[d.Name] = &d
	}

	return r
}

// Lookup returns the descriptor for name, or nil if it is absent or was
// filtered out by the pass-version gate.
func (r *Registry) Lookup(name string) *Descriptor {
	return r.byName[name]
}

// Names returns descriptor names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// MustLookup is Lookup but panics on a missing descriptor; used where the
// caller expects the name to be registered (e.g. the harness's configured
// instruction name).
func (r *Registry) MustLookup(name string) *Descriptor {
	d := r.Lookup(name)
	if d == nil {
		panic(fmt.Sprintf("metadata: no descriptor registered for %q", name))
	}
	return d
}
