package harness

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdramctl/mem/sdram"
)

var _ = Describe("Agent", func() {
	count := func(reqs []fakeRequest, kind sdram.RequestKind) int {
		n := 0
		for _, r := range reqs {
			if r.kind == kind {
				n++
			}
		}

		return n
	}

	It("should issue every request", func() {
		port := newFakePort(8)
		a := MakeAgentBuilder().
			WithSeed(3).
			WithMaxAddress(256).
			WithReadLeft(200).
			WithWriteLeft(200).
			WithRefreshLeft(20).
			Build(port)

		run(port, a, 100000)

		Expect(a.Done()).To(BeTrue())
		Expect(a.Mismatches()).To(BeZero())
		Expect(port.ignored).To(BeZero())
		Expect(count(port.accepted, sdram.RequestRead)).To(Equal(200))
		Expect(count(port.accepted, sdram.RequestWrite)).To(Equal(200))
		Expect(count(port.accepted, sdram.RequestRefresh)).To(Equal(20))
	})

	It("should read only addresses it has written", func() {
		port := newFakePort(16)
		a := MakeAgentBuilder().
			WithMaxAddress(1 << 16).
			WithReadLeft(100).
			WithWriteLeft(100).
			Build(port)

		run(port, a, 100000)

		for _, r := range port.accepted {
			Expect(r.addr % 2).To(BeZero())

			if r.kind == sdram.RequestRead {
				Expect(a.KnownMemValue).To(HaveKey(r.addr))
			}
		}
	})

	It("should count wrong read data", func() {
		port := newFakePort(32)
		a := MakeAgentBuilder().
			WithMaxAddress(8).
			WithReadLeft(50).
			WithWriteLeft(10).
			Build(port)
		port.corrupt[0] = true
		port.corrupt[4] = true

		run(port, a, 100000)

		Expect(a.Done()).To(BeTrue())
		Expect(a.Mismatches()).To(BeNumerically(">", 0))
	})

	It("should replay the same traffic with the same seed", func() {
		trace := func() []fakeRequest {
			port := newFakePort(8)
			a := MakeAgentBuilder().
				WithSeed(42).
				WithReadLeft(30).
				WithWriteLeft(30).
				Build(port)
			run(port, a, 100000)

			return port.accepted
		}

		Expect(trace()).To(Equal(trace()))
	})
})
