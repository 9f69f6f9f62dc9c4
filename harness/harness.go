// Package harness implements the fuzzer-facing entry points
// (Initialize/TestOneInput) that marshal a fuzzer-provided byte buffer,
// run a single instruction's original and transformed stub pair against
// it, and either check them for equivalence or record a cycle-count
// sample pair, depending on mode.
//
// The two process-wide OutStates and the timing sample buffers spec.md
// describes as globals are fields of Harness instead, reached only
// through the package-level default instance the exported functions
// delegate to (spec.md §9: "should be wrapped so only the harness can
// access them").
package harness

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/rs/xid"

	"github.com/counter-optimization/cio-go/internal/abi"
	"github.com/counter-optimization/cio-go/internal/config"
	"github.com/counter-optimization/cio-go/internal/equiv"
	"github.com/counter-optimization/cio-go/internal/flags"
	"github.com/counter-optimization/cio-go/internal/metadata"
	"github.com/counter-optimization/cio-go/internal/obslog"
	"github.com/counter-optimization/cio-go/internal/stub"
)

const initialSampleCapacity = 10000

// Harness runs one instruction's stub pair against marshalled fuzzer
// input, per spec.md §4.6's state machine: NEW -> MARSHALLED ->
// ORIGINAL_EXECUTED -> TRANSFORMED_EXECUTED -> (CHECKED|TIMED_RECORDED)
// -> DONE, all synchronous within one TestOneInput call. Not safe for
// concurrent use: spec.md §5 mandates a single-threaded, cooperative
// driver, so Harness carries no mutex.
type Harness struct {
	meta *metadata.Descriptor
	td   stub.TestDescriptor
	cfg  config.Config
	log  logr.Logger

	origState  *abi.OutState
	transState *abi.OutState

	origSamples  []uint64
	transSamples []uint64

	runID  xid.ID
	csvOut io.Writer
	closed bool
}

// Option configures a Harness at construction, mirroring the teacher's
// EmulatorOption functional-option shape.
type Option func(*Harness)

// WithConfig sets the resolved Config driving timing mode and pprof
// export.
func WithConfig(cfg config.Config) Option {
	return func(h *Harness) { h.cfg = cfg }
}

// WithLogger overrides the default stderr logger.
func WithLogger(log logr.Logger) Option {
	return func(h *Harness) { h.log = log }
}

// WithCSVWriter overrides the destination Close writes the timing CSV
// to; defaults to os.Stdout, matching spec.md §6's "stdout receives a
// header... followed by one line per invocation".
func WithCSVWriter(w io.Writer) Option {
	return func(h *Harness) { h.csvOut = w }
}

// New builds a Harness testing the instruction meta/td describe.
func New(meta *metadata.Descriptor, td stub.TestDescriptor, opts ...Option) *Harness {
	h := &Harness{
		meta:       meta,
		td:         td,
		cfg:        config.Default(),
		log:        obslog.Default("harness"),
		origState:  abi.NewOutState(),
		transState: abi.NewOutState(),
		runID:      xid.New(),
		csvOut:     os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithValues("instruction", h.meta.Name, "run", h.runID.String())
	return h
}

// TestOneInput implements spec.md §4.6/§6's TestOneInput contract:
// returns 0 on accept, -1 to skip a too-short buffer, and panics (the
// process-abort analogue) on an equivalence mismatch outside timing mode.
func (h *Harness) TestOneInput(data []byte) int {
	marshalled, err := abi.Marshal(data, h.meta.OperandTypes)
	if err != nil {
		return -1
	}

	if !h.origState.Aligned() || !h.transState.Aligned() {
		panic("harness: OutState is not 16-byte aligned")
	}
	h.origState.Reset()
	h.transState.Reset()

	lahfIn := flags.FromAH(marshalled.LahfIn)

	h.td.RunOriginal(marshalled, lahfIn, h.origState)
	h.td.RunTransformed(marshalled, lahfIn, h.transState)

	if h.cfg.MeasureCycles {
		h.recordSample()
		return 0
	}

	res := equiv.Check(h.origState, h.transState, h.meta, lahfIn)
	if !res.Equivalent {
		h.log.Info("equivalence mismatch", "mismatches", res.Mismatches)
		panic(fmt.Sprintf("harness: %s: transform is not equivalent to original: %v", h.meta.Name, res.Mismatches))
	}

	return 0
}

func (h *Harness) recordSample() {
	if h.origSamples == nil {
		h.origSamples = make([]uint64, 0, initialSampleCapacity)
		h.transSamples = make([]uint64, 0, initialSampleCapacity)
	}
	h.origSamples = append(h.origSamples, h.origState.CycleCount)
	h.transSamples = append(h.transSamples, h.transState.CycleCount)
}

// Close flushes the timing-mode CSV (and, if configured, a pprof
// profile) and marks the Harness unusable. Safe to call even when timing
// mode never recorded a sample: it still writes the header line.
func (h *Harness) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	if !h.cfg.MeasureCycles {
		return nil
	}

	if err := h.writeCSV(); err != nil {
		return err
	}
	if h.cfg.PprofOut != "" {
		if err := h.writePprof(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) writeCSV() error {
	if _, err := io.WriteString(h.csvOut, "orig,transformed\n"); err != nil {
		return err
	}
	for i := range h.origSamples {
		if _, err := fmt.Fprintf(h.csvOut, "%d,%d\n", h.origSamples[i], h.transSamples[i]); err != nil {
			return err
		}
	}
	return nil
}

// defaultHarness is the process-wide instance the package-level
// Initialize/TestOneInput functions delegate to, built once from
// argv-derived config on first use.
var (
	defaultOnce      sync.Once
	defaultInst      *Harness
	defaultCfg       = config.Default()
	defaultInstrName = "ADD64rr"
)

// Initialize implements spec.md §6's Initialize(argc, argv) contract as
// a flag scan over args, always returning 0 (the C original's only
// failure mode, a null argv, cannot occur in Go).
func Initialize(args []string) int {
	for _, a := range args {
		switch {
		case a == "-measure_cycles":
			defaultCfg.MeasureCycles = true
		case strings.HasPrefix(a, "-pass_version="):
			defaultCfg.PassVersion = strings.TrimPrefix(a, "-pass_version=")
		case strings.HasPrefix(a, "-metadata_overlay="):
			defaultCfg.MetadataOverlayPath = strings.TrimPrefix(a, "-metadata_overlay=")
		case strings.HasPrefix(a, "-pprof_out="):
			defaultCfg.PprofOut = strings.TrimPrefix(a, "-pprof_out=")
		case strings.HasPrefix(a, "-instruction="):
			defaultInstrName = strings.TrimPrefix(a, "-instruction=")
		}
	}
	return 0
}

// Default returns the lazily-constructed process-wide Harness, built
// from whatever Initialize has configured (or the defaults, if
// Initialize was never called).
func Default() *Harness {
	defaultOnce.Do(func() {
		reg, err := defaultCfg.BuildRegistry()
		if err != nil {
			panic(fmt.Sprintf("harness: loading metadata overlay: %v", err))
		}
		meta := reg.MustLookup(defaultInstrName)
		td := stub.Default.MustLookup(defaultInstrName)
		defaultInst = New(meta, *td, WithConfig(defaultCfg))
	})
	return defaultInst
}

// TestOneInput delegates to Default(), the shape the cgo libFuzzer shim
// and the native Go fuzz target both call through.
func TestOneInput(data []byte) int {
	return Default().TestOneInput(data)
}

// Close flushes Default()'s timing output, if a default instance was
// ever constructed. Front ends call this before process exit.
func Close() error {
	if defaultInst == nil {
		return nil
	}
	return defaultInst.Close()
}
