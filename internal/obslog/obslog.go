// Package obslog builds the structured logr.Logger used across the
// harness and its front ends. The teacher itself writes diagnostics with
// fmt.Fprintf(os.Stderr, ...), but every structured-event surface in the
// wider pack (funcr-backed logr sinks) reaches for go-logr/logr rather
// than ad hoc printf calls once the events carry more than a message
// string — exactly the shape of a mismatch report (field, expected,
// given, instruction name).
package obslog

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Option configures the logger funcr.NewJSON builds.
type Option func(*funcr.Options)

// WithVerbosity sets the V-level funcr treats as enabled.
func WithVerbosity(v int) Option {
	return func(o *funcr.Options) { o.Verbosity = v }
}

// New builds a logr.Logger writing newline-delimited structured records
// to w, tagged with name as its logger name.
func New(w io.Writer, name string, opts ...Option) logr.Logger {
	var fo funcr.Options
	for _, opt := range opts {
		opt(&fo)
	}

	sink := funcr.NewJSON(func(obj string) {
		_, _ = io.WriteString(w, obj+"\n")
	}, fo)

	return logr.New(sink).WithName(name)
}

// Default builds the standard-error logger used when no explicit sink is
// configured (every harness.New without WithLogger).
func Default(name string) logr.Logger {
	return New(os.Stderr, name)
}
