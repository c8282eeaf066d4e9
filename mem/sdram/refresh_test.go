package sdram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RefreshScheduler", func() {
	var s *RefreshScheduler

	BeforeEach(func() {
		s = NewRefreshScheduler(4)
	})

	It("should raise the flag at the threshold", func() {
		Expect(s.Tick()).To(BeFalse())
		Expect(s.Tick()).To(BeFalse())
		Expect(s.Tick()).To(BeFalse())
		Expect(s.Due()).To(BeFalse())

		Expect(s.Tick()).To(BeTrue())
		Expect(s.Due()).To(BeTrue())
	})

	It("should saturate at two thresholds while the refresh is pending",
		func() {
			for i := 0; i < 20; i++ {
				s.Tick()
			}

			Expect(s.Counter()).To(Equal(8))
			Expect(s.Due()).To(BeTrue())
		})

	It("should re-base the counter when a due refresh is executed", func() {
		for i := 0; i < 6; i++ {
			s.Tick()
		}

		s.RefreshExecuted()

		Expect(s.Due()).To(BeFalse())
		Expect(s.Counter()).To(Equal(2))

		Expect(s.Tick()).To(BeFalse())
		Expect(s.Tick()).To(BeTrue())
	})

	It("should keep the cadence when refreshes are served late", func() {
		s = NewRefreshScheduler(100)

		var raised []int
		cycle := 0
		delays := []int{7, 0, 30, 12}

		for _, delay := range delays {
			for !s.Tick() {
				cycle++
			}
			cycle++
			raised = append(raised, cycle)

			for i := 0; i < delay; i++ {
				s.Tick()
				cycle++
			}

			s.RefreshExecuted()
		}

		Expect(raised).To(Equal([]int{100, 200, 300, 400}))
	})

	It("should stay due after a refresh that waited a whole period", func() {
		for i := 0; i < 8; i++ {
			s.Tick()
		}

		s.RefreshExecuted()

		Expect(s.Counter()).To(Equal(4))
		Expect(s.Due()).To(BeTrue())

		s.RefreshExecuted()

		Expect(s.Counter()).To(Equal(0))
		Expect(s.Due()).To(BeFalse())
	})

	It("should restart the count on an early refresh", func() {
		s.Tick()
		s.Tick()

		s.RefreshExecuted()

		Expect(s.Counter()).To(Equal(0))
		Expect(s.Due()).To(BeFalse())
	})

	It("should reset", func() {
		for i := 0; i < 5; i++ {
			s.Tick()
		}

		s.Reset()

		Expect(s.Due()).To(BeFalse())
		Expect(s.Counter()).To(Equal(0))
	})

	It("should not accept a zero threshold", func() {
		Expect(func() { NewRefreshScheduler(0) }).To(Panic())
	})
})
