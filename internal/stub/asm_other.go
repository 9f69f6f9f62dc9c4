//go:build !amd64

package stub

// On non-amd64 architectures the real differential check against generated
// machine code is meaningless, so Default falls back to the portable
// reference-semantics pairs. This lets the harness, marshaller, and
// checker build and run their own tests on any GOARCH; it must not be
// used to draw conclusions about an actual compiler pass's x86-64 output.
func init() {
	ref := RefSemRegistry()
	for _, name := range ref.Names() {
		Default.Register(*ref.MustLookup(name))
	}
}
