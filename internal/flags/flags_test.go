package flags_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counter-optimization/cio-go/internal/flags"
)

func TestFlags(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "flags Suite")
}

var _ = Describe("LAHF byte encoding", func() {
	It("round-trips all five bits", func() {
		s := flags.Set{SF: true, ZF: false, AF: true, PF: false, CF: true}
		Expect(flags.FromAH(s.AH())).To(Equal(s))
	})

	It("decodes bit positions per the LAHF/SAHF layout", func() {
		s := flags.FromAH(0x80 | 0x40 | 0x10 | 0x04 | 0x01)
		Expect(s).To(Equal(flags.Set{SF: true, ZF: true, AF: true, PF: true, CF: true}))
	})

	It("leaves unset bits as zero", func() {
		s := flags.FromAH(0)
		Expect(s).To(Equal(flags.Set{}))
	})

	It("Get reads the named flag", func() {
		s := flags.Set{CF: true}
		Expect(s.Get(flags.CF)).To(BeTrue())
		Expect(s.Get(flags.ZF)).To(BeFalse())
	})

	It("panics on an unknown flag identifier", func() {
		Expect(func() { flags.Flag(99).String() }).To(Panic())
	})

	It("ParseList parses mnemonics in order", func() {
		Expect(flags.ParseList([]string{"ZF", "CF", "SF"})).To(Equal(
			[]flags.Flag{flags.ZF, flags.CF, flags.SF}))
	})

	It("panics on an unrecognized mnemonic", func() {
		Expect(func() { flags.ParseList([]string{"OF"}) }).To(Panic())
	})
})
