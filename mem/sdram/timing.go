package sdram

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/sdramctl/mem/sdram/internal/org"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// Errors reported when a configuration cannot drive the device correctly.
var (
	ErrDelayBelowMinimum     = errors.New("delay below datasheet minimum")
	ErrRefreshBudget         = errors.New("refresh interval exceeds the device maximum")
	ErrUnsupportedCASLatency = errors.New("unsupported CAS latency")
	ErrAddressWidth          = errors.New("unsupported address width")
	ErrDataWidth             = errors.New("unsupported data width")
)

// Timing is the set of delays, in controller cycles, that the controller
// honors. It is derived once from the clock frequency and never changes.
type Timing struct {
	Freq timing.Freq
	Spec DeviceSpec

	TRCD int
	TRP  int
	TRAS int
	TRC  int
	TRFC int
	TWR  int
	TMRD int
	TRRD int
	CL   int

	PowerOnCycles int
	InitRefreshes int

	// RefreshThreshold is the number of cycles between the last executed
	// refresh and the refresh-due flag.
	RefreshThreshold int

	// MaxRefreshInterval is the largest number of whole cycles that fits in
	// the device refresh interval.
	MaxRefreshInterval int
}

// DeriveTiming rounds every datasheet minimum up to whole cycles at the
// frequency and validates the result. Refresh becomes due every refreshMicros
// whole microseconds.
func DeriveTiming(
	freq timing.Freq,
	spec DeviceSpec,
	refreshMicros int,
) (Timing, error) {
	if freq <= 0 {
		return Timing{}, fmt.Errorf("%w: frequency %v", ErrDelayBelowMinimum, freq)
	}

	t := Timing{
		Freq:          freq,
		Spec:          spec,
		TRCD:          spec.TRCD.CyclesAt(freq),
		TRP:           spec.TRP.CyclesAt(freq),
		TRAS:          spec.TRAS.CyclesAt(freq),
		TRFC:          spec.TRFC.CyclesAt(freq),
		TWR:           spec.TWR.CyclesAt(freq),
		TMRD:          spec.TMRD.CyclesAt(freq),
		TRRD:          spec.TRRD.CyclesAt(freq),
		CL:            max(2, spec.TAA.CyclesAt(freq)),
		InitRefreshes: spec.InitRefreshes,
	}

	t.TRC = max(spec.TRC.CyclesAt(freq), t.TRAS+t.TRP)
	t.PowerOnCycles = Constraint{Time: spec.PowerOnWait}.CyclesAt(freq)
	t.RefreshThreshold = freq.CyclesPerMicrosecond() * refreshMicros
	t.MaxRefreshInterval = int(math.Floor(
		spec.MaxRefreshInterval().Seconds()*float64(freq) + 1e-6))

	if err := t.Validate(); err != nil {
		return t, err
	}

	return t, nil
}

// MustDeriveTiming is DeriveTiming that panics on invalid configurations.
func MustDeriveTiming(
	freq timing.Freq,
	spec DeviceSpec,
	refreshMicros int,
) Timing {
	t, err := DeriveTiming(freq, spec, refreshMicros)
	if err != nil {
		panic(err)
	}

	return t
}

// Validate checks every delay against the datasheet minimums and checks that
// refreshes can always be issued in time.
func (t Timing) Validate() error {
	checks := []struct {
		name   string
		cycles int
		min    Constraint
	}{
		{"tRCD", t.TRCD, t.Spec.TRCD},
		{"tRP", t.TRP, t.Spec.TRP},
		{"tRAS", t.TRAS, t.Spec.TRAS},
		{"tRC", t.TRC, t.Spec.TRC},
		{"tRFC", t.TRFC, t.Spec.TRFC},
		{"tWR", t.TWR, t.Spec.TWR},
		{"tMRD", t.TMRD, t.Spec.TMRD},
		{"tRRD", t.TRRD, t.Spec.TRRD},
		{"CL", t.CL, t.Spec.TAA},
		{"power-on wait", t.PowerOnCycles, Constraint{Time: t.Spec.PowerOnWait}},
	}

	for _, c := range checks {
		if !c.min.SatisfiedBy(c.cycles, t.Freq) {
			return fmt.Errorf("%w: %s is %d cycles at %.3f MHz, needs %v",
				ErrDelayBelowMinimum, c.name, c.cycles,
				float64(t.Freq/timing.MHz), c.min)
		}
	}

	if t.TRC < t.TRAS+t.TRP {
		return fmt.Errorf("%w: tRC %d is shorter than tRAS+tRP %d",
			ErrDelayBelowMinimum, t.TRC, t.TRAS+t.TRP)
	}

	if !t.Spec.supportsCASLatency(t.CL) {
		return fmt.Errorf("%w: %d at %.3f MHz, supported %v",
			ErrUnsupportedCASLatency, t.CL,
			float64(t.Freq/timing.MHz), t.Spec.CASLatencies)
	}

	if t.InitRefreshes < 2 {
		return fmt.Errorf("%w: %d initialization refreshes, needs 2",
			ErrDelayBelowMinimum, t.InitRefreshes)
	}

	return t.validateRefreshBudget()
}

func (t Timing) validateRefreshBudget() error {
	if t.RefreshThreshold <= 0 {
		return fmt.Errorf("%w: refresh threshold %d",
			ErrRefreshBudget, t.RefreshThreshold)
	}

	worst := t.RefreshThreshold + t.WorstCaseRefreshDelay()
	if worst > t.MaxRefreshInterval {
		return fmt.Errorf("%w: threshold %d + delay %d > %d cycles",
			ErrRefreshBudget, t.RefreshThreshold,
			t.WorstCaseRefreshDelay(), t.MaxRefreshInterval)
	}

	return nil
}

// WorstCaseRefreshDelay bounds the number of cycles between refresh becoming
// due and the AUTO REFRESH command. It covers a request accepted just before
// the flag rises, closing open rows and the refresh itself.
func (t Timing) WorstCaseRefreshDelay() int {
	return t.TRC + t.TRCD + t.CL + 1 + t.TWR + 2*t.TRP + t.TRFC
}

// ReadLatency is the number of cycles from accepting a read on a closed bank
// to the data-ready pulse.
func (t Timing) ReadLatency() int {
	return t.TRCD + t.CL + 1
}

// Period returns the clock period in seconds.
func (t Timing) Period() float64 {
	return float64(t.Freq.Period())
}

// TimeTable returns the command-to-command restrictions for a device with a
// burst length of 1.
//
//nolint:funlen
func (t Timing) TimeTable() org.Timing {
	ot := org.Timing{
		SameBank:   org.MakeTimeTable(),
		OtherBanks: org.MakeTimeTable(),
	}

	columnKinds := []signal.CommandKind{
		signal.CmdKindRead, signal.CmdKindReadPrecharge,
		signal.CmdKindWrite, signal.CmdKindWritePrecharge,
	}
	readKinds := columnKinds[:2]
	writeKinds := columnKinds[2:]
	closeKinds := []signal.CommandKind{
		signal.CmdKindPrecharge, signal.CmdKindPrechargeAll,
	}
	anyKinds := []signal.CommandKind{
		signal.CmdKindActivate, signal.CmdKindPrecharge,
		signal.CmdKindPrechargeAll, signal.CmdKindRefresh,
		signal.CmdKindModeRegisterSet,
	}
	anyKinds = append(anyKinds, columnKinds...)

	addAll := func(
		table org.TimeTable,
		cmd signal.CommandKind,
		next []signal.CommandKind,
		cycles int,
	) {
		for _, n := range next {
			table.Add(cmd, n, cycles)
		}
	}

	readToWrite := t.CL + 1
	readpToAct := 1 + t.TRP
	writepToAct := t.TWR + t.TRP

	// ACTIVATE
	addAll(ot.SameBank, signal.CmdKindActivate, columnKinds, t.TRCD)
	ot.SameBank.Add(signal.CmdKindActivate, signal.CmdKindActivate, t.TRC)
	ot.SameBank.Add(signal.CmdKindActivate, signal.CmdKindRefresh, t.TRC)
	ot.SameBank.Add(signal.CmdKindActivate,
		signal.CmdKindModeRegisterSet, t.TRC)
	addAll(ot.SameBank, signal.CmdKindActivate, closeKinds, t.TRAS)
	ot.OtherBanks.Add(signal.CmdKindActivate, signal.CmdKindActivate, t.TRRD)

	// READ
	for _, rd := range readKinds {
		addAll(ot.SameBank, rd, readKinds, 1)
		addAll(ot.SameBank, rd, writeKinds, readToWrite)
		addAll(ot.OtherBanks, rd, readKinds, 1)
		addAll(ot.OtherBanks, rd, writeKinds, readToWrite)
		addAll(ot.OtherBanks, rd, closeKinds, 1)
	}

	addAll(ot.SameBank, signal.CmdKindRead, closeKinds, 1)
	addAll(ot.SameBank, signal.CmdKindReadPrecharge, []signal.CommandKind{
		signal.CmdKindActivate, signal.CmdKindRefresh,
		signal.CmdKindModeRegisterSet, signal.CmdKindPrecharge,
		signal.CmdKindPrechargeAll,
	}, readpToAct)

	// WRITE
	for _, wr := range writeKinds {
		addAll(ot.SameBank, wr, columnKinds, 1)
		addAll(ot.OtherBanks, wr, columnKinds, 1)
	}

	addAll(ot.SameBank, signal.CmdKindWrite, closeKinds, t.TWR)
	addAll(ot.SameBank, signal.CmdKindWritePrecharge, []signal.CommandKind{
		signal.CmdKindActivate, signal.CmdKindRefresh,
		signal.CmdKindModeRegisterSet, signal.CmdKindPrecharge,
		signal.CmdKindPrechargeAll,
	}, writepToAct)

	// PRECHARGE and PRECHARGE ALL
	for _, pre := range closeKinds {
		addAll(ot.SameBank, pre, []signal.CommandKind{
			signal.CmdKindActivate, signal.CmdKindRefresh,
			signal.CmdKindModeRegisterSet,
		}, t.TRP)
	}

	// AUTO REFRESH and MODE REGISTER SET block the whole device.
	addAll(ot.SameBank, signal.CmdKindRefresh, anyKinds, t.TRFC)
	addAll(ot.SameBank, signal.CmdKindModeRegisterSet, anyKinds, t.TMRD)

	return ot
}
