package hooking

import "sync"

// BusyTimeTracer traces the time that a domain is processing a kind of task.
// If the task processing time overlaps, this tracer only consider one instance
// of the overlapped time.
type BusyTimeTracer struct {
	timeTeller TimeTeller
	filter     TaskFilter
	lock       sync.Mutex

	inflightTasks map[string]bool
	busySince     float64
	busyTime      float64
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(
	timeTeller TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	t := &BusyTimeTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]bool),
	}

	return t
}

// Func records the start end of a task.
func (t *BusyTimeTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		t.StartTask(ctx.Item.(TaskStart))
	case HookPosTaskEnd:
		t.EndTask(ctx.Item.(TaskEnd))
	}
}

// BusyTime returns the total time has been spent on a certain type of tasks.
// Tasks that are still running are not included.
func (t *BusyTimeTracer) BusyTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.busyTime
}

// TerminateAllTasks will mark all the tasks as completed.
func (t *BusyTimeTracer) TerminateAllTasks() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflightTasks) == 0 {
		return
	}

	t.busyTime += t.timeTeller.Now() - t.busySince
	t.inflightTasks = make(map[string]bool)
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(taskStart TaskStart) {
	if t.filter != nil && !t.filter(taskStart) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflightTasks) == 0 {
		t.busySince = t.timeTeller.Now()
	}

	t.inflightTasks[taskStart.ID] = true
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(taskEnd TaskEnd) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.inflightTasks[taskEnd.ID] {
		return
	}

	delete(t.inflightTasks, taskEnd.ID)

	if len(t.inflightTasks) == 0 {
		t.busyTime += t.timeTeller.Now() - t.busySince
	}
}
