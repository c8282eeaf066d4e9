package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("TickScheduler", func() {
	var (
		mockCtrl *gomock.Controller
		handler  *MockHandler
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		handler = NewMockHandler(mockCtrl)
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not schedule the same tick twice", func() {
		ts := NewTickScheduler(handler, engine, 1*GHz)

		var ticks []Event
		handler.EXPECT().Handle(gomock.Any()).
			DoAndReturn(func(e Event) error {
				ticks = append(ticks, e)
				return nil
			}).Times(2)

		ts.TickNow()
		ts.TickNow()
		ts.TickLater()
		ts.TickLater()

		Expect(engine.Run()).To(Succeed())
		Expect(ticks).To(HaveLen(2))
		Expect(ticks[0].Time()).To(BeNumerically("~", 0, 1e-15))
		Expect(ticks[1].Time()).To(BeNumerically("~", 1e-9, 1e-15))
	})

	It("should schedule ticks on the shifted edge", func() {
		ts := NewShiftedTickScheduler(handler, engine, 1*GHz)
		Expect(ts.Edge()).To(Equal(ShiftedEdge))

		handler.EXPECT().Handle(gomock.Any()).
			DoAndReturn(func(e Event) error {
				Expect(e.Edge()).To(Equal(ShiftedEdge))
				_, isTick := e.(TickEvent)
				Expect(isTick).To(BeTrue())
				return nil
			})

		ts.TickLater()

		Expect(engine.Run()).To(Succeed())
	})
})
