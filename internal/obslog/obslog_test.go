package obslog_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counter-optimization/cio-go/internal/obslog"
)

func TestObslog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "obslog Suite")
}

var _ = Describe("New", func() {
	It("writes structured records including message and key/values", func() {
		var buf bytes.Buffer
		log := obslog.New(&buf, "equiv")
		log.Info("mismatch detected", "field", "rbx", "expected", uint64(0), "given", uint64(0xDEAD))

		out := buf.String()
		Expect(out).To(ContainSubstring("mismatch detected"))
		Expect(out).To(ContainSubstring("rbx"))
		Expect(out).To(ContainSubstring("equiv"))
	})
})
