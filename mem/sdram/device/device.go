// Package device provides a behavioural model of an SDR SDRAM chip.
//
// The model samples the pins on the phase-shifted clock, decodes the command
// truth table and checks every command against the datasheet values in
// nanoseconds. It does not trust the cycle counts of the controller that
// drives it.
package device

import (
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/sarchlab/sdramctl/mem/sdram"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
	"github.com/sarchlab/sdramctl/mem/storage"
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/modeling"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// tolerance absorbs floating point error when comparing times.
const tolerance = 1e-12

type initPhase int

const (
	phasePowerUp initPhase = iota
	phasePrecharged
	phaseReady
)

type pendingRead struct {
	cycle uint64
	dq    uint32
}

// Comp is an SDR SDRAM device.
type Comp struct {
	*modeling.TickingComponent

	spec     sdram.DeviceSpec
	freq     timing.Freq
	busBytes int
	numBank  int
	numRow   int
	numCol   int
	strict   bool
	storage  *storage.Storage

	cycle      uint64
	now        float64
	latched    signal.Pins
	phase      initPhase
	initRefs   int
	cl         int
	banks      []bankState
	lastAct    float64
	lastActBk  int
	lastRef    float64
	lastMRS    float64
	overdue    bool
	reads      []pendingRead
	dq         uint32
	driven     bool
	poweredOff bool

	// statsLock guards the counters that monitors read from other
	// goroutines.
	statsLock   sync.Mutex
	violations  []Violation
	numCommands map[string]uint64
}

// Drive latches the pins. The device acts on them at its next tick.
func (d *Comp) Drive(p sdram.Pins) {
	d.latched = p
}

// Sample returns the data the device drives on DQ.
func (d *Comp) Sample() (uint32, bool) {
	return d.dq, d.driven
}

// Storage returns the memory array.
func (d *Comp) Storage() *storage.Storage {
	return d.storage
}

// Violations returns the broken rules seen so far.
func (d *Comp) Violations() []Violation {
	d.statsLock.Lock()
	defer d.statsLock.Unlock()

	return append([]Violation(nil), d.violations...)
}

// NumCommands returns how many commands of a kind, such as "REF", the device
// has received.
func (d *Comp) NumCommands(kind string) uint64 {
	d.statsLock.Lock()
	defer d.statsLock.Unlock()

	return d.numCommands[kind]
}

// Initialized tells if the initialization sequence has completed.
func (d *Comp) Initialized() bool {
	return d.phase == phaseReady
}

// CASLatency returns the CAS latency loaded into the mode register, or 0
// before the mode register is set.
func (d *Comp) CASLatency() int {
	return d.cl
}

// CurrentCycle returns the number of device clock edges since power-up.
func (d *Comp) CurrentCycle() uint64 {
	return d.cycle
}

// PowerOff stops the device from ticking.
func (d *Comp) PowerOff() {
	d.poweredOff = true
}

// Reset cycles the power of the device. Contents are lost and the device
// needs to be initialized again.
func (d *Comp) Reset() {
	d.statsLock.Lock()
	d.cycle = 0
	d.violations = nil
	d.numCommands = make(map[string]uint64)
	d.statsLock.Unlock()

	d.now = 0
	d.latched = signal.IdlePins()
	d.phase = phasePowerUp
	d.initRefs = 0
	d.cl = 0
	d.lastAct = never
	d.lastActBk = -1
	d.lastRef = never
	d.lastMRS = never
	d.overdue = false
	d.reads = nil
	d.dq = 0
	d.driven = false
	d.poweredOff = false

	d.banks = make([]bankState, d.numBank)
	for i := range d.banks {
		d.banks[i] = newBankState()
	}

	d.storage.Clear()
}

// Tick runs one edge of the device clock.
func (d *Comp) Tick() bool {
	if d.poweredOff {
		return false
	}

	d.statsLock.Lock()
	d.cycle++
	d.statsLock.Unlock()
	d.now = float64(d.cycle) / float64(d.freq)

	pins := d.latched
	d.latched = signal.IdlePins()
	cmd := signal.Decode(pins)

	d.driveReadData()

	if d.driven && pins.DQOE {
		d.violate(cmd, RuleBusContention,
			"controller and device drive DQ in the same cycle")
	}

	d.checkRefreshOverdue()

	if pins.CKE && !cmd.Kind.IsIdle() {
		d.execute(cmd, pins)
	}

	return true
}

func (d *Comp) driveReadData() {
	d.driven = false

	if len(d.reads) == 0 || d.reads[0].cycle != d.cycle {
		return
	}

	d.dq = d.reads[0].dq
	d.driven = true
	d.reads = d.reads[1:]
}

func (d *Comp) checkRefreshOverdue() {
	if d.phase != phaseReady || d.overdue {
		return
	}

	limit := d.spec.MaxRefreshInterval().Seconds()
	if d.now-d.lastRef > limit+tolerance {
		d.overdue = true
		d.violate(signal.Command{Kind: signal.CmdKindRefresh},
			RuleRefreshPeriod,
			fmt.Sprintf("no AUTO REFRESH for more than %v",
				d.spec.MaxRefreshInterval()))
	}
}

func (d *Comp) execute(cmd signal.Command, pins signal.Pins) {
	d.statsLock.Lock()
	d.numCommands[cmd.Kind.String()]++
	d.statsLock.Unlock()

	glog.V(3).Infof("%s: cycle %d, %s", d.Name(), d.cycle, cmd)

	if d.now < d.spec.PowerOnWait.Seconds()-tolerance {
		d.violate(cmd, RulePowerOn, fmt.Sprintf(
			"issued %.3f us after power-up, need %v",
			d.now*1e6, d.spec.PowerOnWait))
	}

	d.checkInitOrder(cmd)
	d.checkSince(cmd, RuleTRFC, d.lastRef, d.spec.TRFC)
	d.checkSince(cmd, RuleTMRD, d.lastMRS, d.spec.TMRD)

	switch cmd.Kind {
	case signal.CmdKindActivate:
		d.activate(cmd)
	case signal.CmdKindRead, signal.CmdKindReadPrecharge:
		d.read(cmd)
	case signal.CmdKindWrite, signal.CmdKindWritePrecharge:
		d.write(cmd, pins)
	case signal.CmdKindPrecharge:
		if d.bankInRange(cmd) {
			d.precharge(cmd, cmd.Bank)
		}
	case signal.CmdKindPrechargeAll:
		for i := range d.banks {
			d.precharge(cmd, i)
		}
	case signal.CmdKindRefresh:
		d.refresh(cmd)
	case signal.CmdKindModeRegisterSet:
		d.setModeRegister(cmd)
	case signal.CmdKindBurstStop:
		d.violate(cmd, RuleUnsupportedCmd, "bursts are one word long")
	}
}

func (d *Comp) checkInitOrder(cmd signal.Command) {
	switch d.phase {
	case phasePowerUp:
		if cmd.Kind == signal.CmdKindPrechargeAll {
			d.phase = phasePrecharged
			return
		}

		d.violate(cmd, RuleInitSequence, "PRECHARGE ALL must come first")
	case phasePrecharged:
		switch cmd.Kind {
		case signal.CmdKindRefresh:
			d.initRefs++
		case signal.CmdKindModeRegisterSet:
			if d.initRefs < d.spec.InitRefreshes {
				d.violate(cmd, RuleInitSequence, fmt.Sprintf(
					"%d AUTO REFRESH before MODE REGISTER SET, need %d",
					d.initRefs, d.spec.InitRefreshes))
			}
		case signal.CmdKindPrecharge, signal.CmdKindPrechargeAll:
		default:
			d.violate(cmd, RuleInitSequence,
				"the mode register has not been set")
		}
	}
}

func (d *Comp) activate(cmd signal.Command) {
	if !d.bankInRange(cmd) {
		return
	}

	if cmd.Row >= d.numRow {
		d.violate(cmd, RuleAddressRange,
			fmt.Sprintf("row %d, the device has %d", cmd.Row, d.numRow))
	}

	b := &d.banks[cmd.Bank]
	if b.active {
		d.violate(cmd, RuleBankState,
			fmt.Sprintf("row %d is still open", b.row))
	}

	if d.now < b.readyTime-tolerance {
		d.violate(cmd, RuleTRP, fmt.Sprintf(
			"the bank is precharging for another %.2f ns",
			(b.readyTime-d.now)*1e9))
	}

	d.checkSince(cmd, RuleTRC, b.actTime, d.spec.TRC)

	if d.lastActBk != cmd.Bank {
		d.checkSince(cmd, RuleTRRD, d.lastAct, d.spec.TRRD)
	}

	b.active = true
	b.row = cmd.Row
	b.actTime = d.now
	d.lastAct = d.now
	d.lastActBk = cmd.Bank
}

func (d *Comp) openBank(cmd signal.Command) *bankState {
	if !d.bankInRange(cmd) {
		return nil
	}

	if cmd.Col >= d.numCol {
		d.violate(cmd, RuleAddressRange,
			fmt.Sprintf("column %d, the device has %d", cmd.Col, d.numCol))
		return nil
	}

	b := &d.banks[cmd.Bank]
	if !b.active {
		d.violate(cmd, RuleBankState, "no row is open")
		return nil
	}

	d.checkSince(cmd, RuleTRCD, b.actTime, d.spec.TRCD)

	return b
}

func (d *Comp) read(cmd signal.Command) {
	b := d.openBank(cmd)
	if b == nil {
		return
	}

	if d.cl == 0 {
		d.violate(cmd, RuleModeRegister, "CAS latency is not set")
		return
	}

	data, err := d.storage.Read(d.address(cmd.Bank, b.row, cmd.Col),
		uint64(d.busBytes))
	if err != nil {
		panic(err)
	}

	d.reads = append(d.reads, pendingRead{
		cycle: d.cycle + uint64(d.cl),
		dq:    wordOf(data),
	})

	if cmd.Kind.IsAutoPrecharge() {
		d.autoPrecharge(b, d.now+d.clockPeriod())
	}
}

func (d *Comp) write(cmd signal.Command, pins signal.Pins) {
	b := d.openBank(cmd)
	if b == nil {
		return
	}

	if !pins.DQOE {
		glog.Warningf("%s: cycle %d, %s without write data on DQ",
			d.Name(), d.cycle, cmd)
	}

	addr := d.address(cmd.Bank, b.row, cmd.Col)
	for lane := 0; lane < d.busBytes; lane++ {
		if pins.DQM&(1<<lane) != 0 {
			continue
		}

		err := d.storage.Write(addr+uint64(lane),
			[]byte{byte(pins.DQ >> (8 * lane))})
		if err != nil {
			panic(err)
		}
	}

	b.lastWriteTime = d.now

	if cmd.Kind.IsAutoPrecharge() {
		d.autoPrecharge(b, d.now+d.minSeconds(d.spec.TWR))
	}
}

// autoPrecharge closes the row once both the access and tRAS allow it.
func (d *Comp) autoPrecharge(b *bankState, earliest float64) {
	start := max(earliest, b.actTime+d.minSeconds(d.spec.TRAS))

	b.active = false
	b.readyTime = start + d.minSeconds(d.spec.TRP)
}

func (d *Comp) precharge(cmd signal.Command, bank int) {
	b := &d.banks[bank]
	if !b.active {
		return
	}

	d.checkSince(cmd, RuleTRAS, b.actTime, d.spec.TRAS)
	d.checkSince(cmd, RuleTWR, b.lastWriteTime, d.spec.TWR)

	b.active = false
	b.readyTime = d.now + d.minSeconds(d.spec.TRP)
}

func (d *Comp) allBanksIdle(cmd signal.Command) {
	for i := range d.banks {
		b := &d.banks[i]

		if b.active {
			d.violate(cmd, RuleBankState,
				fmt.Sprintf("bank %d has row %d open", i, b.row))
			continue
		}

		if d.now < b.readyTime-tolerance {
			d.violate(cmd, RuleTRP,
				fmt.Sprintf("bank %d is still precharging", i))
		}

		d.checkSince(cmd, RuleTRC, b.actTime, d.spec.TRC)
	}
}

func (d *Comp) refresh(cmd signal.Command) {
	d.allBanksIdle(cmd)

	d.lastRef = d.now
	d.overdue = false
}

func (d *Comp) setModeRegister(cmd signal.Command) {
	d.allBanksIdle(cmd)

	mode := signal.DecodeModeRegister(cmd.ModeRegister)
	if mode.BurstLength != 1 {
		d.violate(cmd, RuleModeRegister,
			fmt.Sprintf("burst length %d is not supported", mode.BurstLength))
	}

	supported := false
	for _, cl := range d.spec.CASLatencies {
		supported = supported || cl == mode.CASLatency
	}

	if !supported {
		d.violate(cmd, RuleModeRegister,
			fmt.Sprintf("CAS latency %d is not supported", mode.CASLatency))
	} else {
		d.cl = mode.CASLatency
	}

	if d.minSeconds(d.spec.TAA) > float64(mode.CASLatency)*d.clockPeriod()+
		tolerance {
		d.violate(cmd, RuleModeRegister, fmt.Sprintf(
			"CAS latency %d is shorter than tAA %v at %.2f MHz",
			mode.CASLatency, d.spec.TAA, float64(d.freq)/1e6))
	}

	d.lastMRS = d.now

	if d.phase == phasePrecharged {
		d.phase = phaseReady
	}
}

func (d *Comp) checkSince(
	cmd signal.Command,
	rule Rule,
	since float64,
	c sdram.Constraint,
) {
	elapsed := d.now - since
	need := d.minSeconds(c)

	if elapsed < need-tolerance {
		d.violate(cmd, rule, fmt.Sprintf(
			"%.2f ns after the previous command, need %v",
			elapsed*1e9, c))
	}
}

func (d *Comp) bankInRange(cmd signal.Command) bool {
	if cmd.Bank < d.numBank {
		return true
	}

	d.violate(cmd, RuleAddressRange,
		fmt.Sprintf("bank %d, the device has %d", cmd.Bank, d.numBank))

	return false
}

func (d *Comp) violate(cmd signal.Command, rule Rule, detail string) {
	v := Violation{
		Cycle:   d.cycle,
		Time:    d.now,
		Command: cmd.String(),
		Rule:    rule,
		Detail:  detail,
	}

	d.statsLock.Lock()
	d.violations = append(d.violations, v)
	d.statsLock.Unlock()
	glog.Warningf("%s: %v", d.Name(), v)

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosViolation,
		Item:   v,
	})

	if d.strict {
		panic(v)
	}
}

func (d *Comp) clockPeriod() float64 {
	return 1 / float64(d.freq)
}

func (d *Comp) minSeconds(c sdram.Constraint) float64 {
	return max(c.Time.Seconds(), float64(c.Cycles)*d.clockPeriod())
}

// address returns the byte address of a column. The layout matches the
// controller address, so a client address is also a storage address.
func (d *Comp) address(bank, row, col int) uint64 {
	word := (uint64(bank)*uint64(d.numRow)+uint64(row))*uint64(d.numCol) +
		uint64(col)

	return word * uint64(d.busBytes)
}

func wordOf(data []byte) uint32 {
	var w uint32
	for i, b := range data {
		w |= uint32(b) << (8 * i)
	}

	return w
}

// ReportStats returns the command counts and the number of violations.
func (d *Comp) ReportStats() map[string]float64 {
	d.statsLock.Lock()
	defer d.statsLock.Unlock()

	r := map[string]float64{
		"cycles":     float64(d.cycle),
		"violations": float64(len(d.violations)),
	}

	for kind, n := range d.numCommands {
		r["cmd_"+kind] = float64(n)
	}

	return r
}
