package hooking

import (
	"math"
	"sync"
)

// LatencyTracer collects the total, average, minimum and maximum time spent
// on a certain type of task. Overlapping tasks are simply added together.
type LatencyTracer struct {
	timeTeller    TimeTeller
	filter        TaskFilter
	lock          sync.Mutex
	inflightTasks map[string]float64
	totalTime     float64
	minTime       float64
	maxTime       float64
	taskCount     uint64
}

// NewLatencyTracer creates a new LatencyTracer. A nil filter accepts every
// task.
func NewLatencyTracer(
	timeTeller TimeTeller,
	filter TaskFilter,
) *LatencyTracer {
	t := &LatencyTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]float64),
		minTime:       math.Inf(1),
	}

	return t
}

// Func records the start end of a task.
func (t *LatencyTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		t.StartTask(ctx.Item.(TaskStart))
	case HookPosTaskEnd:
		t.EndTask(ctx.Item.(TaskEnd))
	}
}

// AverageTime returns the average time spent on each finished task. It
// returns 0 if no task has finished.
func (t *LatencyTracer) AverageTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.taskCount == 0 {
		return 0
	}

	return t.totalTime / float64(t.taskCount)
}

// MinTime returns the shortest task. It returns 0 if no task has finished.
func (t *LatencyTracer) MinTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.taskCount == 0 {
		return 0
	}

	return t.minTime
}

// MaxTime returns the longest task.
func (t *LatencyTracer) MaxTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.maxTime
}

// TotalTime returns the sum of the time of all finished tasks.
func (t *LatencyTracer) TotalTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// TotalCount returns the total number of finished tasks.
func (t *LatencyTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// StartTask records the task start time
func (t *LatencyTracer) StartTask(taskStart TaskStart) {
	if t.filter != nil && !t.filter(taskStart) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[taskStart.ID] = t.timeTeller.Now()
	t.lock.Unlock()
}

// EndTask records the end of the task
func (t *LatencyTracer) EndTask(taskEnd TaskEnd) {
	t.lock.Lock()
	defer t.lock.Unlock()

	startTime, ok := t.inflightTasks[taskEnd.ID]
	if !ok {
		return
	}

	taskTime := t.timeTeller.Now() - startTime

	t.totalTime += taskTime
	t.taskCount++
	t.minTime = math.Min(t.minTime, taskTime)
	t.maxTime = math.Max(t.maxTime, taskTime)

	delete(t.inflightTasks, taskEnd.ID)
}
