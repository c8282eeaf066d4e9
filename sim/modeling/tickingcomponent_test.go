package modeling

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdramctl/sim/timing"
)

type countingTicker struct {
	name   string
	limit  int
	ticks  int
	events *[]string
}

func (t *countingTicker) Tick() bool {
	t.ticks++
	*t.events = append(*t.events, t.name)

	return t.ticks < t.limit
}

var _ = Describe("TickingComponent", func() {
	var (
		engine *timing.SerialEngine
		events []string
	)

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		events = nil
	})

	It("should keep ticking while making progress", func() {
		ticker := &countingTicker{name: "A", limit: 5, events: &events}
		tc := NewTickingComponent("Comp", engine, 1*timing.GHz, ticker)

		tc.TickLater()

		Expect(engine.Run()).To(Succeed())
		Expect(ticker.ticks).To(Equal(5))
		Expect(engine.Now()).To(BeNumerically("~", 5e-9, 1e-15))
	})

	It("should tick shifted components after control ones", func() {
		control := &countingTicker{name: "P", limit: 2, events: &events}
		shifted := &countingTicker{name: "S", limit: 2, events: &events}

		s := NewShiftedTickingComponent(
			"Shifted", engine, 1*timing.GHz, shifted)
		p := NewTickingComponent("Control", engine, 1*timing.GHz, control)

		s.TickLater()
		p.TickLater()

		Expect(engine.Run()).To(Succeed())
		Expect(events).To(Equal([]string{"P", "S", "P", "S"}))
	})

	It("should panic on invalid names", func() {
		ticker := &countingTicker{name: "A", limit: 1, events: &events}
		Expect(func() {
			NewTickingComponent("bad name", engine, 1*timing.GHz, ticker)
		}).To(Panic())
	})
})
