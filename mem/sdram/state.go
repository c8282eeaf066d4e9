package sdram

import (
	"fmt"

	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
)

// State is a state of the controller state machine.
type State int

// Controller states.
const (
	StatePowerWait State = iota
	StatePrechargeAll
	StateInitRefresh
	StateModeRegisterSet
	StateIdle
	StateActivate
	StatePrecharge
	StateRead
	StateCASWait
	StateWrite
	StateRefresh
	StateComplete
	numStates
)

var stateNames = [...]string{
	"POWER_WAIT",
	"PRECHARGE_ALL",
	"INIT_REFRESH",
	"MODE_REGISTER_SET",
	"IDLE",
	"ACTIVATE",
	"PRECHARGE",
	"READ",
	"CAS_WAIT",
	"WRITE",
	"REFRESH",
	"COMPLETE",
}

func (s State) String() string {
	if s < 0 || s >= numStates {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// RequestKind is what a client asks the controller to do.
type RequestKind = signal.RequestKind

// Request kinds that a client can issue.
const (
	RequestRead    = signal.RequestKindRead
	RequestWrite   = signal.RequestKindWrite
	RequestRefresh = signal.RequestKindRefresh
)

type transitionKey struct {
	from State
	kind signal.RequestKind
}

// transitions lists where each state goes once its work is done, for each
// kind of request in flight. IDLE picks the first state of a request through
// the row policy.
var transitions = map[transitionKey]State{
	{StatePowerWait, signal.RequestKindInit}:       StatePrechargeAll,
	{StatePrechargeAll, signal.RequestKindInit}:    StateInitRefresh,
	{StateInitRefresh, signal.RequestKindInit}:     StateModeRegisterSet,
	{StateModeRegisterSet, signal.RequestKindInit}: StateComplete,

	{StatePrecharge, signal.RequestKindRead}:  StateActivate,
	{StateActivate, signal.RequestKindRead}:   StateRead,
	{StateRead, signal.RequestKindRead}:       StateCASWait,
	{StateCASWait, signal.RequestKindRead}:    StateComplete,
	{StatePrecharge, signal.RequestKindWrite}: StateActivate,
	{StateActivate, signal.RequestKindWrite}:  StateWrite,
	{StateWrite, signal.RequestKindWrite}:     StateComplete,

	{StatePrechargeAll, signal.RequestKindRefresh}: StateRefresh,
	{StateRefresh, signal.RequestKindRefresh}:      StateComplete,

	{StateComplete, signal.RequestKindInit}:    StateIdle,
	{StateComplete, signal.RequestKindRead}:    StateIdle,
	{StateComplete, signal.RequestKindWrite}:   StateIdle,
	{StateComplete, signal.RequestKindRefresh}: StateIdle,
}

func nextState(from State, kind signal.RequestKind) State {
	to, ok := transitions[transitionKey{from, kind}]
	if !ok {
		panic(fmt.Sprintf("no transition from %s for a %s request", from, kind))
	}

	return to
}
