// Package sdram models a low-latency controller for single-rank SDR SDRAM.
//
// The controller turns byte and word requests into ACTIVATE, READ, WRITE,
// PRECHARGE, AUTO REFRESH and MODE REGISTER SET commands, one clock edge at a
// time, while honoring the device timing. It ticks on the control edge. The
// device and the clients tick on the phase-shifted clock, after the
// controller in the same edge.
package sdram

import (
	"sync"

	"github.com/golang/glog"

	"github.com/sarchlab/sdramctl/mem/sdram/internal/addressmapping"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/org"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/id"
	"github.com/sarchlab/sdramctl/sim/modeling"
)

// maxChainedTransitions bounds the number of transitions taken in one edge.
const maxChainedTransitions = 4

// Comp is the command and timing controller.
type Comp struct {
	*modeling.TickingComponent

	timing    Timing
	policy    RowPolicy
	dataWidth int
	busWidth  int
	addrMask  uint32
	mapper    addressmapping.Mapper
	channel   org.Channel
	refresh   *RefreshScheduler
	device    Device

	state             State
	req               *signal.Request
	loc               addressmapping.Location
	pending           *signal.Request
	strobe            *signal.Request
	waitCycles        int
	initRefreshesLeft int

	busy      bool
	dataReady bool
	readData  uint32
	pins      signal.Pins

	cycle      uint64
	poweredOff bool

	// statsLock guards stats, which monitors read from other goroutines.
	statsLock sync.Mutex
	stats     Stats
}

// Issue strobes a request. The controller samples it at its next clock edge.
// Requests strobed while Busy is high are ignored. Write data is captured
// when the request is accepted.
func (c *Comp) Issue(kind RequestKind, addr uint32, data uint32) {
	c.strobe = &signal.Request{Kind: kind, Address: addr, Data: data}
}

// Busy tells if the controller cannot accept a request.
func (c *Comp) Busy() bool {
	return c.busy
}

// DataReady is high for exactly one cycle when read data is valid.
func (c *Comp) DataReady() bool {
	return c.dataReady
}

// ReadData returns the data of the last completed read.
func (c *Comp) ReadData() uint32 {
	return c.readData
}

// State returns the current state of the state machine.
func (c *Comp) State() State {
	return c.state
}

// Timing returns the timing the controller runs with.
func (c *Comp) Timing() Timing {
	return c.timing
}

// Policy returns the row policy.
func (c *Comp) Policy() RowPolicy {
	return c.policy
}

// DataWidth returns the width of the client data port in bits.
func (c *Comp) DataWidth() int {
	return c.dataWidth
}

// CurrentCycle returns the number of controller edges so far.
func (c *Comp) CurrentCycle() uint64 {
	return c.cycle
}

// RefreshScheduler returns the refresh scheduler.
func (c *Comp) RefreshScheduler() *RefreshScheduler {
	return c.refresh
}

// Stats returns a copy of the counters.
func (c *Comp) Stats() Stats {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()

	return c.stats.copy()
}

// SetDevice connects the device pins.
func (c *Comp) SetDevice(d Device) {
	c.device = d
}

// PowerOff stops the controller from ticking.
func (c *Comp) PowerOff() {
	c.poweredOff = true
}

// Reset returns the controller to POWER_WAIT. Any request in flight is
// dropped and the device is initialized again.
func (c *Comp) Reset() {
	for _, r := range []*signal.Request{c.req, c.pending} {
		if r != nil {
			c.endTask(r)
		}
	}

	if c.state != StatePowerWait {
		c.setState(StatePowerWait)
	}

	c.startRequest(&signal.Request{
		ID:   id.Generate(),
		Kind: signal.RequestKindInit,
	}, "init")
	c.pending = nil
	c.strobe = nil
	c.waitCycles = c.timing.PowerOnCycles
	c.initRefreshesLeft = c.timing.InitRefreshes

	c.busy = true
	c.dataReady = false
	c.readData = 0
	c.pins = signal.IdlePins()

	c.channel.Reset()
	c.refresh.Reset()
	c.updateStats(func(s *Stats) { s.initialized = false })
}

// Tick runs one controller clock edge.
func (c *Comp) Tick() bool {
	if c.poweredOff {
		return false
	}

	c.cycle++
	c.updateStats(func(s *Stats) { s.Cycles++ })
	c.dataReady = false
	c.pins = signal.IdlePins()

	c.channel.Tick()

	if c.refresh.Tick() {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosRefreshDue,
			Item:   c.cycle,
		})
	}

	c.sampleStrobe()
	c.runStateMachine()

	c.busy = c.state != StateIdle || c.pending != nil
	if c.busy {
		c.updateStats(func(s *Stats) { s.BusyCycles++ })
	}

	if c.device != nil {
		c.device.Drive(c.pins)
	}

	return true
}

func (c *Comp) sampleStrobe() {
	strobe := c.strobe
	c.strobe = nil

	if strobe == nil {
		return
	}

	if c.state != StateIdle || c.pending != nil {
		c.updateStats(func(s *Stats) { s.IgnoredStrobes++ })
		glog.V(1).Infof("%s: cycle %d, %s strobe ignored while busy in %s",
			c.Name(), c.cycle, strobe.Kind, c.state)

		return
	}

	strobe.ID = id.Generate()
	strobe.Address &= c.addrMask
	c.pending = strobe

	c.updateStats(func(s *Stats) {
		switch strobe.Kind {
		case signal.RequestKindRead:
			s.Reads++
		case signal.RequestKindWrite:
			s.Writes++
		case signal.RequestKindRefresh:
			s.ExternalRefreshes++
		}
	})

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    hooking.HookPosTaskStart,
		Item: hooking.TaskStart{
			ID:    strobe.ID,
			Kind:  "req_in",
			What:  strobe.Kind.String(),
			Where: c.Name(),
		},
	})
}

func (c *Comp) runStateMachine() {
	for i := 0; i < maxChainedTransitions; i++ {
		next, chain := c.step()

		if next != c.state {
			c.setState(next)
		}

		if !chain {
			return
		}
	}
}

// step runs the current state. It returns the next state and whether the
// next state should also run in this edge. States that issue a command never
// chain, so at most one command is issued per edge.
func (c *Comp) step() (next State, chain bool) {
	switch c.state {
	case StatePowerWait:
		return c.powerWait()
	case StatePrechargeAll:
		return c.issueAndMove(signal.Command{Kind: signal.CmdKindPrechargeAll})
	case StateInitRefresh:
		return c.initRefresh()
	case StateModeRegisterSet:
		return c.issueAndMove(signal.Command{
			Kind:         signal.CmdKindModeRegisterSet,
			ModeRegister: signal.ModeRegisterValue(c.timing.CL),
		})
	case StateIdle:
		return c.idle()
	case StateActivate:
		return c.issueAndMove(signal.Command{
			Kind: signal.CmdKindActivate,
			Bank: c.loc.Bank,
			Row:  c.loc.Row,
		})
	case StatePrecharge:
		return c.issueAndMove(signal.Command{
			Kind: signal.CmdKindPrecharge,
			Bank: c.loc.Bank,
		})
	case StateRead:
		return c.read()
	case StateCASWait:
		return c.casWait()
	case StateWrite:
		return c.write()
	case StateRefresh:
		return c.issueAndMove(signal.Command{Kind: signal.CmdKindRefresh})
	case StateComplete:
		return c.complete()
	default:
		panic("unknown state " + c.state.String())
	}
}

func (c *Comp) powerWait() (State, bool) {
	if c.waitCycles > 0 {
		c.waitCycles--
	}

	if c.waitCycles > 0 {
		return c.state, false
	}

	return nextState(c.state, c.req.Kind), true
}

func (c *Comp) initRefresh() (State, bool) {
	if !c.issue(signal.Command{Kind: signal.CmdKindRefresh}) {
		return c.state, false
	}

	c.initRefreshesLeft--
	if c.initRefreshesLeft > 0 {
		return c.state, false
	}

	return nextState(c.state, c.req.Kind), false
}

func (c *Comp) idle() (State, bool) {
	if c.refresh.Due() {
		c.updateStats(func(s *Stats) { s.ScheduledRefreshes++ })
		c.startRequest(&signal.Request{
			ID:   id.Generate(),
			Kind: signal.RequestKindRefresh,
		}, "refresh")

		return c.policy.entryState(c.req.Kind, c.loc, c.channel), true
	}

	if c.pending != nil {
		req := c.pending
		c.pending = nil
		c.req = req
		c.loc = c.mapper.Map(uint64(req.Address))

		return c.policy.entryState(c.req.Kind, c.loc, c.channel), true
	}

	return c.state, false
}

func (c *Comp) startRequest(req *signal.Request, kind string) {
	c.req = req

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    hooking.HookPosTaskStart,
		Item: hooking.TaskStart{
			ID:    req.ID,
			Kind:  kind,
			What:  req.Kind.String(),
			Where: c.Name(),
		},
	})
}

func (c *Comp) endTask(req *signal.Request) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    hooking.HookPosTaskEnd,
		Item:   hooking.TaskEnd{ID: req.ID},
	})
}

func (c *Comp) read() (State, bool) {
	cmd := signal.Command{
		Kind: c.policy.columnCommand(c.req.Kind),
		Bank: c.loc.Bank,
		Col:  c.loc.Col,
	}

	if !c.issue(cmd) {
		return c.state, false
	}

	c.waitCycles = c.timing.CL + 1

	return nextState(c.state, c.req.Kind), false
}

func (c *Comp) casWait() (State, bool) {
	c.waitCycles--
	if c.waitCycles > 0 {
		return c.state, false
	}

	var (
		dq     uint32
		driven bool
	)

	if c.device != nil {
		dq, driven = c.device.Sample()
	}

	if !driven {
		glog.Warningf("%s: cycle %d, device did not drive read data",
			c.Name(), c.cycle)
	}

	c.readData = c.extractLanes(dq)
	c.dataReady = true

	return nextState(c.state, c.req.Kind), true
}

func (c *Comp) write() (State, bool) {
	cmd := signal.Command{
		Kind: c.policy.columnCommand(c.req.Kind),
		Bank: c.loc.Bank,
		Col:  c.loc.Col,
	}

	if !c.issue(cmd) {
		return c.state, false
	}

	c.placeLanes(c.req.Data)

	return nextState(c.state, c.req.Kind), false
}

func (c *Comp) complete() (State, bool) {
	bank, kinds := c.policy.completeWhen(c.req.Kind, c.loc)
	if c.req.Kind == signal.RequestKindInit {
		bank, kinds = -1, []signal.CommandKind{
			signal.CmdKindActivate, signal.CmdKindRefresh,
		}
	}

	if !c.channel.ReadyWithin(1, bank, kinds...) {
		return c.state, false
	}

	if c.req.Kind == signal.RequestKindInit {
		c.updateStats(func(s *Stats) { s.initialized = true })
	}

	c.endTask(c.req)

	next := nextState(c.state, c.req.Kind)
	c.req = nil

	return next, true
}

// issueAndMove issues the command and moves on when the timing allows it.
func (c *Comp) issueAndMove(cmd signal.Command) (State, bool) {
	if !c.issue(cmd) {
		return c.state, false
	}

	return nextState(c.state, c.req.Kind), false
}

func (c *Comp) issue(cmd signal.Command) bool {
	if !c.channel.Ready(&cmd) {
		return false
	}

	c.channel.UpdateTiming(&cmd)
	c.channel.StartCommand(&cmd)
	c.pins = signal.Encode(cmd)
	c.updateStats(func(s *Stats) { s.countCommand(c.cycle, cmd) })

	if cmd.Kind == signal.CmdKindRefresh {
		c.refresh.RefreshExecuted()
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosCommand,
		Item:   makeCommandIssued(c.cycle, cmd, c.req),
	})

	if c.req != nil {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    hooking.HookPosTaskStep,
			Item: hooking.TaskStep{
				TaskID: c.req.ID,
				Kind:   "command",
				What:   cmd.Kind.String(),
				Detail: cmd.String(),
			},
		})
	}

	return true
}

func (c *Comp) setState(s State) {
	change := StateChange{Cycle: c.cycle, From: c.state, To: s}
	c.state = s

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosStateChange,
		Item:   change,
	})
}

func (c *Comp) laneOffset() int {
	bytes := c.dataWidth / 8
	return c.loc.Lane &^ (bytes - 1)
}

func (c *Comp) dataMask() uint32 {
	if c.dataWidth >= 32 {
		return 0xFFFFFFFF
	}

	return 1<<c.dataWidth - 1
}

// placeLanes puts the client data on its byte lanes and masks the others.
func (c *Comp) placeLanes(data uint32) {
	lane := c.laneOffset()
	numLanes := c.busWidth / 8
	laneBits := uint8(1<<(c.dataWidth/8) - 1)

	c.pins.DQ = (data & c.dataMask()) << (8 * lane)
	c.pins.DQM = ^(laneBits << lane) & uint8(1<<numLanes-1)
	c.pins.DQOE = true
}

func (c *Comp) extractLanes(dq uint32) uint32 {
	return (dq >> (8 * c.laneOffset())) & c.dataMask()
}
