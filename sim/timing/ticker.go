package timing

import (
	"sync"
)

// TickEvent is a generic event that almost all the component can use to
// update their status.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{EventBase: *NewEventBase(time, handler)}
}

// MakeShiftedTickEvent creates a TickEvent on the shifted edge.
func MakeShiftedTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{EventBase: *NewShiftedEventBase(time, handler)}
}

// A Ticker is an object that updates states with ticks.
type Ticker interface {
	Tick() bool
}

// TickScheduler can help schedule tick events.
type TickScheduler struct {
	lock    sync.Mutex
	handler Handler
	Freq    Freq
	Engine  Engine
	edge    Edge

	nextTickTime VTimeInSec
}

// NewTickScheduler creates a scheduler for tick events on the control edge.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.Freq = freq
	ticker.nextTickTime = -1 // This will make sure the first tick is scheduled

	return ticker
}

// NewShiftedTickScheduler creates a scheduler for tick events on the shifted
// edge.
func NewShiftedTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	ticker := NewTickScheduler(handler, engine, freq)
	ticker.edge = ShiftedEdge

	return ticker
}

// Edge returns the clock edge the ticks are scheduled on.
func (t *TickScheduler) Edge() Edge {
	return t.edge
}

// TickNow schedule a Tick event at the current time.
func (t *TickScheduler) TickNow() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.Now()
	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = t.Freq.ThisTick(time)
	t.Engine.Schedule(t.makeTick(t.nextTickTime))
}

// TickLater will schedule a tick event at the cycle after the now time.
func (t *TickScheduler) TickLater() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.Freq.NextTick(t.Now())
	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time
	t.Engine.Schedule(t.makeTick(t.nextTickTime))
}

func (t *TickScheduler) makeTick(time VTimeInSec) TickEvent {
	return TickEvent{EventBase: *NewEventBaseOnEdge(time, t.handler, t.edge)}
}

// Now returns the current time of the engine.
func (t *TickScheduler) Now() VTimeInSec {
	return t.Engine.Now()
}
