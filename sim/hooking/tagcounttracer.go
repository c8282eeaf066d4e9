package hooking

import (
	"sync"
)

// TagCountTracer counts how many times each step kind and each tag is seen.
// Steps are counted under their What field.
type TagCountTracer struct {
	filter TaskFilter
	lock   sync.Mutex

	trackedTasks map[string]bool
	tagNames     []string
	tagCount     map[string]uint64
}

// NewTagCountTracer creates a new TagCountTracer. A nil filter counts every
// task.
func NewTagCountTracer(filter TaskFilter) *TagCountTracer {
	t := &TagCountTracer{
		filter:       filter,
		trackedTasks: make(map[string]bool),
		tagCount:     make(map[string]uint64),
	}

	return t
}

// Func dispatches hook invocations.
func (t *TagCountTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		t.StartTask(ctx.Item.(TaskStart))
	case HookPosTaskStep:
		step := ctx.Item.(TaskStep)
		t.count(step.TaskID, step.What)
	case HookPosTaskTag:
		tag := ctx.Item.(TaskTag)
		t.count(tag.TaskID, tag.What)
	case HookPosTaskEnd:
		t.EndTask(ctx.Item.(TaskEnd))
	}
}

// StartTask starts tracking a task if it passes the filter.
func (t *TagCountTracer) StartTask(taskStart TaskStart) {
	if t.filter != nil && !t.filter(taskStart) {
		return
	}

	t.lock.Lock()
	t.trackedTasks[taskStart.ID] = true
	t.lock.Unlock()
}

// EndTask stops tracking a task.
func (t *TagCountTracer) EndTask(taskEnd TaskEnd) {
	t.lock.Lock()
	delete(t.trackedTasks, taskEnd.ID)
	t.lock.Unlock()
}

// GetTagNames returns all the tag names collected, in the order they were
// first seen.
func (t *TagCountTracer) GetTagNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.tagNames...)
}

// GetTagCount returns the number of times a tag or step name was recorded.
func (t *TagCountTracer) GetTagCount(tagName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.tagCount[tagName]
}

func (t *TagCountTracer) count(taskID, what string) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.trackedTasks[taskID] {
		return
	}

	if _, ok := t.tagCount[what]; !ok {
		t.tagNames = append(t.tagNames, what)
	}

	t.tagCount[what]++
}
