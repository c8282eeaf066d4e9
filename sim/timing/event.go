package timing

import (
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/id"
)

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec = float64

// Edge tells which of the two board clocks an event belongs to. The memory
// controller runs on the control edge. The device and the clients run on
// the shifted edge, which lags the control edge by a fixed phase, so at any
// given time every control-edge event runs before the shifted-edge events.
type Edge int

const (
	// ControlEdge is the edge of the clock that drives the controller.
	ControlEdge Edge = iota

	// ShiftedEdge is the edge of the phase-shifted clock that samples the
	// pins the controller has driven.
	ShiftedEdge

	numEdges
)

func (e Edge) String() string {
	switch e {
	case ControlEdge:
		return "control"
	case ShiftedEdge:
		return "shifted"
	}

	return "unknown"
}

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the time that the event should happen.
	Time() VTimeInSec

	// Handler returns the handler that should handle the event.
	Handler() Handler

	// Edge returns the clock edge that the event runs on.
	Edge() Edge
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
	edge    Edge
}

// NewEventBase creates an event on the control edge.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return NewEventBaseOnEdge(t, handler, ControlEdge)
}

// NewShiftedEventBase creates an event on the shifted edge.
func NewShiftedEventBase(t VTimeInSec, handler Handler) *EventBase {
	return NewEventBaseOnEdge(t, handler, ShiftedEdge)
}

// NewEventBaseOnEdge creates an event on the given edge.
func NewEventBaseOnEdge(t VTimeInSec, handler Handler, edge Edge) *EventBase {
	if edge < 0 || edge >= numEdges {
		panic("unknown clock edge")
	}

	return &EventBase{
		ID:      id.Generate(),
		time:    t,
		handler: handler,
		edge:    edge,
	}
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// Edge returns the clock edge that the event runs on.
func (e EventBase) Edge() Edge {
	return e.edge
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
