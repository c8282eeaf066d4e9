package timing

import (
	"reflect"

	"github.com/golang/glog"
	"github.com/sarchlab/sdramctl/sim/hooking"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	level glog.Level
}

// NewEventLogger returns a new EventLogger which writes to glog at the given
// verbosity.
func NewEventLogger(level glog.Level) *EventLogger {
	h := new(EventLogger)

	h.level = level

	return h
}

type named interface {
	Name() string
}

// Func writes the event information into the log
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	handlerName := reflect.TypeOf(evt.Handler()).String()
	if n, ok := evt.Handler().(named); ok {
		handlerName = n.Name()
	}

	glog.V(h.level).Infof("%.10f %s, %s -> %s",
		evt.Time(), evt.Edge(), reflect.TypeOf(evt), handlerName)
}
