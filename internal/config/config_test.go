package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counter-optimization/cio-go/internal/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "config Suite")
}

var _ = Describe("New", func() {
	It("applies options over Default", func() {
		c := config.New(
			config.WithPassVersion("1.2.0"),
			config.WithMeasureCycles(true),
			config.WithPprofOut("/tmp/out.pprof"),
		)
		Expect(c.PassVersion).To(Equal("1.2.0"))
		Expect(c.MeasureCycles).To(BeTrue())
		Expect(c.PprofOut).To(Equal("/tmp/out.pprof"))
	})

	It("builds a registry honoring the configured pass version", func() {
		c := config.New(config.WithPassVersion("0.9.0"))
		reg, err := c.BuildRegistry()
		Expect(err).NotTo(HaveOccurred())
		Expect(reg.Lookup("CMP64rr")).To(BeNil()) // requires >=1.0.0
	})
})

var _ = Describe("LoadFile", func() {
	It("merges a partial YAML file over Default", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "cio.yaml")
		Expect(os.WriteFile(path, []byte("measure_cycles: true\n"), 0o644)).To(Succeed())

		c, err := config.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.MeasureCycles).To(BeTrue())
		Expect(c.PassVersion).To(Equal(config.Default().PassVersion))
	})

	It("errors on a missing file", func() {
		_, err := config.LoadFile("/nonexistent/cio.yaml")
		Expect(err).To(HaveOccurred())
	})
})
