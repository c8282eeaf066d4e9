package hooking

// A list of hook poses for the hooks to apply to
var (
	HookPosTaskStart = &HookPos{Name: "HookPosTaskStart"}
	HookPosTaskTag   = &HookPos{Name: "HookPosTaskTag"}
	HookPosTaskStep  = &HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &HookPos{Name: "HookPosTaskEnd"}
)

// TaskStart is data that is passed to the hook when a task starts.
type TaskStart struct {
	ID       string
	ParentID string
	Kind     string
	What     string
	Where    string
}

// TaskTag is data attached to a task to provide more information about the
// task.
type TaskTag struct {
	TaskID string
	What   string
	Detail string
}

// TaskStep is data that is passed to the hook when a task takes a step.
type TaskStep struct {
	TaskID string
	StepID string
	Kind   string
	What   string
	Detail string
}

// TaskEnd is data that is passed to the hook when a task ends.
type TaskEnd struct {
	ID string
}

// TaskRecord is a finished task as it is handed to a tracer backend.
type TaskRecord struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Where     string
	StartTime float64
	EndTime   float64
	NumSteps  int
	NumTags   int
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t TaskStart) bool

// KindFilter returns a TaskFilter that accepts tasks of the given kind.
func KindFilter(kind string) TaskFilter {
	return func(t TaskStart) bool {
		return t.Kind == kind
	}
}

// WhatFilter returns a TaskFilter that accepts tasks with the given What.
func WhatFilter(what string) TaskFilter {
	return func(t TaskStart) bool {
		return t.What == what
	}
}

// A TimeTeller can tell the current time. This interface is recreated here
// to break a circular dependency between the timing package and the
// hooking package.
type TimeTeller interface {
	Now() float64
}
