package timing

import (
	"log"
	"reflect"
	"sync"

	"github.com/sarchlab/sdramctl/sim/hooking"
)

// A SerialEngine runs the events of a board one after another. It keeps one
// queue per clock edge. At equal times the control edge goes first, so the
// controller has driven its pins before the device and the clients sample
// them on the shifted edge.
type SerialEngine struct {
	hooking.HookableBase

	timeLock sync.RWMutex
	time     VTimeInSec
	edge     Edge
	queues   [numEdges]EventQueue
	handled  [numEdges]uint64

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	for i := range e.queues {
		e.queues[i] = NewEventQueue()
	}

	return e
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "SerialEngine"
}

// Schedule registers an event on the queue of its edge.
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panic("scheduling an event earlier than current time")
	}

	e.queues[evt.Edge()].Push(evt)
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) advance(evt Event) {
	e.timeLock.Lock()
	e.time = evt.Time()
	e.edge = evt.Edge()
	e.handled[evt.Edge()]++
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine. The first error
// returned by a handler stops the run and is returned.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		e.pauseLock.Lock()

		evt := e.nextEvent()
		if evt == nil {
			e.pauseLock.Unlock()
			return nil
		}

		if now := e.readNow(); evt.Time() < now {
			log.Panicf(
				"cannot run event in the past, evt %s @ %.10f, now %.10f",
				reflect.TypeOf(evt), evt.Time(), now,
			)
		}

		e.advance(evt)

		err := e.handle(evt)

		e.pauseLock.Unlock()

		if err != nil {
			return err
		}
	}
}

func (e *SerialEngine) handle(evt Event) error {
	hookCtx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	err := evt.Handler().Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)

	return err
}

// nextEvent pops the earliest event. Ties go to the earlier edge. It returns
// nil when every queue is empty.
func (e *SerialEngine) nextEvent() Event {
	var next EventQueue

	for _, q := range e.queues {
		if q.Len() == 0 {
			continue
		}

		if next == nil || q.Peek().Time() < next.Peek().Time() {
			next = q
		}
	}

	if next == nil {
		return nil
	}

	return next.Pop()
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// IsPaused tells if the engine is currently paused.
func (e *SerialEngine) IsPaused() bool {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	return e.isPaused
}

// Now returns the time of the event being handled, or of the last one.
func (e *SerialEngine) Now() VTimeInSec {
	return e.readNow()
}

// CurrentEdge returns the edge of the event being handled, or of the last
// one.
func (e *SerialEngine) CurrentEdge() Edge {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.edge
}

// EventsHandled returns the number of events run on an edge.
func (e *SerialEngine) EventsHandled(edge Edge) uint64 {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.handled[edge]
}
