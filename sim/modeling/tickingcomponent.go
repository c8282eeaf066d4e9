package modeling

import "github.com/sarchlab/sdramctl/sim/timing"

// TickingComponent is a type of component that update states from cycle to
// cycle. A programmer would only need to program a tick function for a ticking
// component.
//
// A clocked hardware block keeps ticking for as long as its Tick function
// reports progress. Blocks that never go quiet, such as a memory controller
// that has to refresh, return false only once they are powered off.
type TickingComponent struct {
	*ComponentBase
	*timing.TickScheduler

	ticker timing.Ticker
}

// Handle triggers the tick function of the TickingComponent
func (c *TickingComponent) Handle(e timing.Event) error {
	c.Lock()
	madeProgress := c.ticker.Tick()
	c.Unlock()

	if madeProgress {
		c.TickLater()
	}

	return nil
}

// NewTickingComponent creates a new ticking component that ticks on the
// control edge.
func NewTickingComponent(
	name string,
	engine timing.Engine,
	freq timing.Freq,
	ticker timing.Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.TickScheduler = timing.NewTickScheduler(tc, engine, freq)
	tc.ComponentBase = NewComponentBase(name)
	tc.ticker = ticker

	return tc
}

// NewShiftedTickingComponent creates a new ticking component that ticks on
// the phase-shifted clock, after every control-edge component of the same
// time.
func NewShiftedTickingComponent(
	name string,
	engine timing.Engine,
	freq timing.Freq,
	ticker timing.Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.TickScheduler = timing.NewShiftedTickScheduler(tc, engine, freq)
	tc.ComponentBase = NewComponentBase(name)
	tc.ticker = ticker

	return tc
}
