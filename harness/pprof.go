package harness

import (
	"fmt"
	"os"

	"github.com/google/pprof/profile"
)

// writePprof serializes the two per-variant cycle-count sample vectors
// as a google/pprof profile (one sample per variant per invocation,
// labeled by variant), so `go tool pprof` can inspect the distribution alongside
// the required CSV. This is additive: the CSV remains the canonical
// spec.md §6 output.
func (h *Harness) writePprof() error {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "cycles", Unit: "count"}},
		Comments:   []string{fmt.Sprintf("cio-go run=%s instruction=%s", h.runID.String(), h.meta.Name)},
	}

	for i := range h.origSamples {
		p.Sample = append(p.Sample, &profile.Sample{
			Value: []int64{int64(h.origSamples[i])},
			Label: map[string][]string{"variant": {"orig"}},
		})
		p.Sample = append(p.Sample, &profile.Sample{
			Value: []int64{int64(h.transSamples[i])},
			Label: map[string][]string{"variant": {"transformed"}},
		})
	}

	f, err := os.Create(h.cfg.PprofOut)
	if err != nil {
		return err
	}
	defer f.Close()

	return p.Write(f)
}
