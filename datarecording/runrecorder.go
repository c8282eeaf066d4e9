package datarecording

import (
	"os"
	"sort"
	"strings"
	"time"
)

const runInfoTableName = "run_info"

const timeFormat = "2006-01-02 15:04:05.000000000"

// RunInfo is one property of a simulation run.
type RunInfo struct {
	Property string
	Value    string
}

// RunRecorder records how and when a simulation was run.
type RunRecorder struct {
	recorder DataRecorder
	entries  []RunInfo
}

// NewRunRecorder creates the run info table in the recorder.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	recorder.CreateTable(runInfoTableName, RunInfo{})

	return &RunRecorder{recorder: recorder}
}

// Start remembers the start time, the command line, the working directory
// and the given properties, in name order.
func (r *RunRecorder) Start(properties map[string]string) {
	r.entries = append(r.entries,
		RunInfo{"Start Time", time.Now().Format(timeFormat)},
		RunInfo{"Command", strings.Join(os.Args, " ")},
	)

	if wd, err := os.Getwd(); err == nil {
		r.entries = append(r.entries, RunInfo{"Working Directory", wd})
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		r.entries = append(r.entries, RunInfo{name, properties[name]})
	}
}

// End writes everything remembered along with the end time.
func (r *RunRecorder) End() {
	for _, entry := range r.entries {
		r.recorder.InsertData(runInfoTableName, entry)
	}

	r.recorder.InsertData(runInfoTableName,
		RunInfo{"End Time", time.Now().Format(timeFormat)})

	r.entries = nil

	r.recorder.Flush()
}
