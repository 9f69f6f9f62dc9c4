package metadata

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/counter-optimization/cio-go/internal/flags"
)

// overlayDescriptor is the YAML-friendly shape of a Descriptor: operand
// types and flag lists are written as strings/mnemonics rather than the
// enum values the compiled-in table uses directly.
type overlayDescriptor struct {
	Name              string   `yaml:"name"`
	OperandTypes      []string `yaml:"operand_types"`
	Preserves         []string `yaml:"preserves"`
	Sets              []string `yaml:"sets"`
	MustPreserveFlags bool     `yaml:"must_preserve_flags"`
	MustSetFlags      bool     `yaml:"must_set_flags"`
	MinPassVersion    string   `yaml:"min_pass_version"`
}

// LoadOverlay reads a YAML file of descriptors generated (or hand-written)
// alongside a build of the compiler pass, the way the external pass would
// in practice ship per-test metadata without requiring this module to be
// rebuilt for every new instruction it learns to transform (spec.md §9,
// "per-test generated artifact").
func LoadOverlay(path string) ([]Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: reading overlay %s: %w", path, err)
	}

	var entries []overlayDescriptor
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("metadata: parsing overlay %s: %w", path, err)
	}

	out := make([]Descriptor, 0, len(entries))
	for _, e := range entries {
		d, err := e.toDescriptor()
		if err != nil {
			return nil, fmt.Errorf("metadata: overlay %s, descriptor %q: %w", path, e.Name, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (e overlayDescriptor) toDescriptor() (Descriptor, error) {
	if len(e.OperandTypes) > 5 {
		return Descriptor{}, fmt.Errorf("operand_types has %d entries, max 5", len(e.OperandTypes))
	}

	var ot [5]OperandType
	for i, tag := range e.OperandTypes {
		switch tag {
		case "REG":
			ot[i] = OperandReg
		case "MEM":
			ot[i] = OperandMem
		case "", "UNUSED":
			ot[i] = OperandUnused
		default:
			return Descriptor{}, fmt.Errorf("unknown operand type tag %q", tag)
		}
	}

	return Descriptor{
		Name:              e.Name,
		OperandTypes:      ot,
		Preserves:         flags.ParseList(e.Preserves),
		Sets:              flags.ParseList(e.Sets),
		MustPreserveFlags: e.MustPreserveFlags,
		MustSetFlags:      e.MustSetFlags,
		MinPassVersion:    e.MinPassVersion,
	}, nil
}
