// Package config holds the process-wide knobs the harness and its two
// front ends (cmd/ciofuzz, cmd/ciofuzz/libfuzzer) read at startup: which
// compiler-pass version gates the metadata table, whether an optional
// YAML overlay amends it, whether cycle counts are measured, and where an
// optional pprof profile is written.
package config

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/counter-optimization/cio-go/internal/metadata"
)

// Config is the resolved set of harness-wide settings.
type Config struct {
	// PassVersion gates which metadata.Descriptors are available, per
	// their MinPassVersion constraint.
	PassVersion string

	// MetadataOverlayPath, if non-empty, names a YAML file of additional
	// or amending descriptors loaded on top of the built-in table.
	MetadataOverlayPath string

	// MeasureCycles enables per-call TSC cycle counting. When false the
	// harness still runs the stub pairs but ignores OutState.CycleCount.
	MeasureCycles bool

	// PprofOut, if non-empty, names a file the harness writes a
	// google/pprof CPU-sample-shaped profile of cycle counts to at Close.
	PprofOut string
}

// Option is a functional option for building a Config, mirroring the
// teacher's EmulatorOption shape (emu.NewEmulator).
type Option func(*Config)

// WithPassVersion sets the compiler-pass version gating descriptor
// availability.
func WithPassVersion(v string) Option {
	return func(c *Config) { c.PassVersion = v }
}

// WithMetadataOverlay sets the path to a YAML overlay file.
func WithMetadataOverlay(path string) Option {
	return func(c *Config) { c.MetadataOverlayPath = path }
}

// WithMeasureCycles toggles per-call cycle counting.
func WithMeasureCycles(enabled bool) Option {
	return func(c *Config) { c.MeasureCycles = enabled }
}

// WithPprofOut sets the output path for the optional cycle-count profile.
func WithPprofOut(path string) Option {
	return func(c *Config) { c.PprofOut = path }
}

// Default returns the baseline Config: no pass-version constraint beyond
// "accept everything", no overlay, no timing, no profile.
func Default() Config {
	return Config{PassVersion: "999.999.999"}
}

// New builds a Config from Default with opts applied in order.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// BuildRegistry constructs the metadata.Registry this Config describes,
// loading the overlay file if one is configured.
func (c Config) BuildRegistry() (*metadata.Registry, error) {
	var overlay []metadata.Descriptor
	if c.MetadataOverlayPath != "" {
		loaded, err := metadata.LoadOverlay(c.MetadataOverlayPath)
		if err != nil {
			return nil, err
		}
		overlay = loaded
	}
	return metadata.NewRegistry(c.PassVersion, overlay), nil
}

// fileConfig mirrors Config's fields for YAML (de)serialization; kept
// separate from Config so Config itself stays free of struct tags.
type fileConfig struct {
	PassVersion         string `yaml:"pass_version"`
	MetadataOverlayPath string `yaml:"metadata_overlay"`
	MeasureCycles       bool   `yaml:"measure_cycles"`
	PprofOut            string `yaml:"pprof_out"`
}

// LoadFile reads a YAML config file and merges it over Default(), so a
// file that sets only a subset of fields leaves the rest at their
// defaults.
func LoadFile(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, err
	}

	if fc.PassVersion != "" {
		c.PassVersion = fc.PassVersion
	}
	if fc.MetadataOverlayPath != "" {
		c.MetadataOverlayPath = fc.MetadataOverlayPath
	}
	c.MeasureCycles = fc.MeasureCycles
	if fc.PprofOut != "" {
		c.PprofOut = fc.PprofOut
	}

	return c, nil
}
