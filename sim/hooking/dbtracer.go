package hooking

import (
	"github.com/sarchlab/sdramctl/datarecording"
	"github.com/tebeka/atexit"
)

const taskTableName = "trace_tasks"

// DBTracer is a tracer that stores finished tasks into a data recorder.
type DBTracer struct {
	timeTeller         TimeTeller
	recorder           datarecording.DataRecorder
	startTime, endTime float64
	tracingTasks       map[string]TaskRecord
}

// NewDBTracer creates a new DBTracer. Tasks that are still running when the
// program exits are written with the exit time as their end time.
func NewDBTracer(
	timeTeller TimeTeller,
	recorder datarecording.DataRecorder,
) *DBTracer {
	t := &DBTracer{
		timeTeller:   timeTeller,
		recorder:     recorder,
		tracingTasks: make(map[string]TaskRecord),
	}

	recorder.CreateTable(taskTableName, TaskRecord{})

	atexit.Register(func() { t.Terminate() })

	return t
}

// SetTimeRange limits tracing to the tasks that overlap with the given time
// range. A zero bound is ignored.
func (t *DBTracer) SetTimeRange(startTime, endTime float64) {
	t.startTime = startTime
	t.endTime = endTime
}

// Func records the start end of a task.
func (t *DBTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		t.StartTask(ctx.Item.(TaskStart))
	case HookPosTaskStep:
		t.StepTask(ctx.Item.(TaskStep))
	case HookPosTaskTag:
		t.TagTask(ctx.Item.(TaskTag))
	case HookPosTaskEnd:
		t.EndTask(ctx.Item.(TaskEnd))
	}
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(taskStart TaskStart) {
	startingTaskMustBeValid(taskStart)

	now := t.timeTeller.Now()
	if t.endTime > 0 && now > t.endTime {
		return
	}

	t.tracingTasks[taskStart.ID] = TaskRecord{
		ID:        taskStart.ID,
		ParentID:  taskStart.ParentID,
		Kind:      taskStart.Kind,
		What:      taskStart.What,
		Where:     taskStart.Where,
		StartTime: now,
	}
}

func startingTaskMustBeValid(task TaskStart) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task where must be set")
	}
}

// StepTask counts a step of a task.
func (t *DBTracer) StepTask(ts TaskStep) {
	task, ok := t.tracingTasks[ts.TaskID]
	if !ok {
		return
	}

	task.NumSteps++
	t.tracingTasks[ts.TaskID] = task
}

// TagTask counts a tag of a task.
func (t *DBTracer) TagTask(tt TaskTag) {
	task, ok := t.tracingTasks[tt.TaskID]
	if !ok {
		return
	}

	task.NumTags++
	t.tracingTasks[tt.TaskID] = task
}

// EndTask marks the end of a task.
func (t *DBTracer) EndTask(taskEnd TaskEnd) {
	now := t.timeTeller.Now()

	task, ok := t.tracingTasks[taskEnd.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, taskEnd.ID)

	if t.startTime > 0 && now < t.startTime {
		return
	}

	task.EndTime = now
	t.recorder.InsertData(taskTableName, task)
}

// Terminate writes all the unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	for _, task := range t.tracingTasks {
		task.EndTime = t.timeTeller.Now()
		t.recorder.InsertData(taskTableName, task)
	}

	t.tracingTasks = make(map[string]TaskRecord)

	t.recorder.Flush()
}
