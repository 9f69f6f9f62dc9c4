package equiv

import (
	"github.com/google/go-cmp/cmp"

	"github.com/counter-optimization/cio-go/internal/abi"
)

// Diff renders a full structural diff between orig and trans for verbose
// diagnostics, supplementing (not replacing) the exact per-field messages
// Check produces. OutState has no unexported fields and no cycles, so the
// default cmp.Diff behavior is safe to use directly.
func Diff(orig, trans *abi.OutState) string {
	return cmp.Diff(orig, trans)
}
