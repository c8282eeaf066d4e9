package sdram

import (
	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
	"github.com/sarchlab/sdramctl/sim/hooking"
)

// Hook positions of the controller.
var (
	// HookPosCommand is triggered for every command placed on the device
	// pins. The item is a CommandIssued.
	HookPosCommand = &hooking.HookPos{Name: "SDRAMCommand"}

	// HookPosStateChange is triggered when the state machine moves. The item
	// is a StateChange.
	HookPosStateChange = &hooking.HookPos{Name: "SDRAMStateChange"}

	// HookPosRefreshDue is triggered when the refresh scheduler raises the
	// refresh-due flag. The item is the cycle number.
	HookPosRefreshDue = &hooking.HookPos{Name: "SDRAMRefreshDue"}
)

// CommandIssued describes a command on the device pins.
type CommandIssued struct {
	Cycle   uint64
	Command string
	Bank    int
	Row     int
	Col     int
	Request string
}

func makeCommandIssued(
	cycle uint64,
	cmd signal.Command,
	req *signal.Request,
) CommandIssued {
	ci := CommandIssued{
		Cycle:   cycle,
		Command: cmd.Kind.String(),
		Bank:    cmd.Bank,
		Row:     cmd.Row,
		Col:     cmd.Col,
	}

	if req != nil {
		ci.Request = req.ID
	}

	return ci
}

// IsRefresh tells if the command is an AUTO REFRESH.
func (c CommandIssued) IsRefresh() bool {
	return c.Command == signal.CmdKindRefresh.String()
}

// StateChange describes a move of the state machine.
type StateChange struct {
	Cycle uint64
	From  State
	To    State
}
