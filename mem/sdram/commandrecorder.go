package sdram

import (
	"github.com/sarchlab/sdramctl/datarecording"
	"github.com/sarchlab/sdramctl/sim/hooking"
)

const (
	commandTableName = "sdram_commands"
	refreshTableName = "sdram_refreshes"
	stateTableName   = "sdram_states"
)

// RefreshRecord is one AUTO REFRESH and its distance from the previous one.
type RefreshRecord struct {
	Cycle uint64
	Gap   uint64
	Where string
}

// StateRecord is one move of the state machine.
type StateRecord struct {
	Cycle uint64
	From  string
	To    string
	Where string
}

// CommandRecorder is a hook that writes every command, every refresh and,
// optionally, every state change into a data recorder.
type CommandRecorder struct {
	recorder     datarecording.DataRecorder
	recordStates bool
	lastRefresh  map[string]uint64
}

// NewCommandRecorder creates the tables and returns the hook.
func NewCommandRecorder(
	recorder datarecording.DataRecorder,
	recordStates bool,
) *CommandRecorder {
	r := &CommandRecorder{
		recorder:     recorder,
		recordStates: recordStates,
		lastRefresh:  make(map[string]uint64),
	}

	recorder.CreateTable(commandTableName, CommandIssued{})
	recorder.CreateTable(refreshTableName, RefreshRecord{})

	if recordStates {
		recorder.CreateTable(stateTableName, StateRecord{})
	}

	return r
}

type namedDomain interface {
	Name() string
}

// Func records the hook item.
func (r *CommandRecorder) Func(ctx hooking.HookCtx) {
	where := ""
	if n, ok := ctx.Domain.(namedDomain); ok {
		where = n.Name()
	}

	switch ctx.Pos {
	case HookPosCommand:
		cmd := ctx.Item.(CommandIssued)
		r.recorder.InsertData(commandTableName, cmd)

		if cmd.IsRefresh() {
			r.recordRefresh(where, cmd.Cycle)
		}
	case HookPosStateChange:
		if !r.recordStates {
			return
		}

		change := ctx.Item.(StateChange)
		r.recorder.InsertData(stateTableName, StateRecord{
			Cycle: change.Cycle,
			From:  change.From.String(),
			To:    change.To.String(),
			Where: where,
		})
	}
}

func (r *CommandRecorder) recordRefresh(where string, cycle uint64) {
	rec := RefreshRecord{Cycle: cycle, Where: where}

	if last, ok := r.lastRefresh[where]; ok {
		rec.Gap = cycle - last
	}

	r.lastRefresh[where] = cycle
	r.recorder.InsertData(refreshTableName, rec)
}
