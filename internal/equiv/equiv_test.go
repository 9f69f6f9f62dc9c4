package equiv_test

import (
	"testing"
	"unsafe"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counter-optimization/cio-go/internal/abi"
	"github.com/counter-optimization/cio-go/internal/equiv"
	"github.com/counter-optimization/cio-go/internal/flags"
	"github.com/counter-optimization/cio-go/internal/metadata"
)

func addrOf(slot *abi.MemSlot) uint64 {
	return uint64(uintptr(unsafe.Pointer(slot)))
}

func TestEquiv(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "equiv Suite")
}

var _ = Describe("Check", func() {
	var regOnlyMeta *metadata.Descriptor

	BeforeEach(func() {
		reg := metadata.NewRegistry("1.0.0", nil)
		regOnlyMeta = reg.MustLookup("ADD64rr")
	})

	It("reports equivalent states as equivalent", func() {
		orig := abi.NewOutState()
		trans := abi.NewOutState()
		orig.RSI, trans.RSI = 12, 12

		res := equiv.Check(orig, trans, regOnlyMeta, flags.Set{})
		Expect(res.Equivalent).To(BeTrue())
		Expect(res.Mismatches).To(BeEmpty())
	})

	It("flags a register mismatch with expected/given values (S2)", func() {
		orig := abi.NewOutState()
		trans := abi.NewOutState()
		orig.RSI = 12
		trans.RSI = ^uint64(1) // -2 in two's complement: sub rsi, rdx instead of add

		res := equiv.Check(orig, trans, regOnlyMeta, flags.Set{})
		Expect(res.Equivalent).To(BeFalse())
		Expect(res.Mismatches).To(ContainElement(
			And(
				HaveField("Field", "rsi"),
				HaveField("Expected", uint64(12)),
				HaveField("Given", uint64(18446744073709551614)),
			),
		))
	})

	It("flags a clobbered register never declared as an operand (S4)", func() {
		orig := abi.NewOutState()
		trans := abi.NewOutState()
		orig.RSI, trans.RSI = 0x8, 0x8
		orig.RBX, trans.RBX = 0, 0xDEAD

		res := equiv.Check(orig, trans, regOnlyMeta, flags.Set{})
		Expect(res.Equivalent).To(BeFalse())
		Expect(res.Mismatches).To(ContainElement(HaveField("Field", "rbx")))
	})

	It("does not compare RDI", func() {
		orig := abi.NewOutState()
		trans := abi.NewOutState()
		orig.RDI, trans.RDI = 1, 2

		res := equiv.Check(orig, trans, regOnlyMeta, flags.Set{})
		Expect(res.Equivalent).To(BeTrue())
	})

	It("dereferences the post-execution register value for MEM operands", func() {
		reg := metadata.NewRegistry("1.0.0", nil)
		memMeta := reg.MustLookup("ADD64rm")

		origSlot := abi.MemSlot{42, 0}
		transSlot := abi.MemSlot{42, 0}

		orig := abi.NewOutState()
		trans := abi.NewOutState()
		orig.RDX = addrOf(&origSlot)
		trans.RDX = addrOf(&transSlot)

		res := equiv.Check(orig, trans, memMeta, flags.Set{})
		Expect(res.Equivalent).To(BeTrue())

		transSlot[0] = 43
		res = equiv.Check(orig, trans, memMeta, flags.Set{})
		Expect(res.Equivalent).To(BeFalse())
		Expect(res.Mismatches).To(ContainElement(
			And(HaveField("Field", "rdx"), HaveField("Expected", uint64(42)), HaveField("Given", uint64(43))),
		))
	})

	It("flags a flag the transform fails to set, naming it LAHF_CF (S5)", func() {
		reg := metadata.NewRegistry("1.0.0", nil)
		cmpMeta := reg.MustLookup("CMP64rr")

		orig := abi.NewOutState()
		trans := abi.NewOutState()
		// orig: ZF=1, CF=1, SF=0 ; trans: ZF=1, CF=0 (wrong), SF=0
		orig.LahfRaxRes = uint64(flags.Set{ZF: true, CF: true}.AH())
		trans.LahfRaxRes = uint64(flags.Set{ZF: true, CF: false}.AH())

		res := equiv.Check(orig, trans, cmpMeta, flags.Set{})
		Expect(res.Equivalent).To(BeFalse())
		var found bool
		for _, m := range res.Mismatches {
			if m.Field == "LAHF_CF" {
				found = true
				Expect(m.Message).To(ContainSubstring("did not set flag LAHF_CF"))
			}
		}
		Expect(found).To(BeTrue())
	})

	It("ignores flags not listed in Preserves/Sets", func() {
		reg := metadata.NewRegistry("1.0.0", nil)
		memMeta := reg.MustLookup("ADD64rm") // Preserves only AF

		orig := abi.NewOutState()
		trans := abi.NewOutState()
		orig.RDX, trans.RDX = addrOf(&abi.MemSlot{7, 0}), addrOf(&abi.MemSlot{7, 0})
		orig.LahfRaxRes = uint64(flags.Set{ZF: true}.AH())
		trans.LahfRaxRes = uint64(flags.Set{ZF: false}.AH()) // differs, but ZF isn't in Preserves

		res := equiv.Check(orig, trans, memMeta, flags.Set{})
		Expect(res.Equivalent).To(BeTrue())
	})

	It("flags a preserved flag the transform changed", func() {
		reg := metadata.NewRegistry("1.0.0", nil)
		memMeta := reg.MustLookup("ADD64rm")

		orig := abi.NewOutState()
		trans := abi.NewOutState()
		orig.RDX, trans.RDX = addrOf(&abi.MemSlot{7, 0}), addrOf(&abi.MemSlot{7, 0})
		orig.LahfRaxRes = uint64(flags.Set{AF: true}.AH())
		trans.LahfRaxRes = uint64(flags.Set{AF: false}.AH())

		res := equiv.Check(orig, trans, memMeta, flags.Set{})
		Expect(res.Equivalent).To(BeFalse())
		Expect(res.Mismatches).To(ContainElement(HaveField("Field", "LAHF_AF")))
	})
})

var _ = Describe("Diff", func() {
	It("produces a non-empty diff for differing states", func() {
		orig := abi.NewOutState()
		trans := abi.NewOutState()
		trans.RAX = 1

		Expect(equiv.Diff(orig, trans)).NotTo(BeEmpty())
	})
})
