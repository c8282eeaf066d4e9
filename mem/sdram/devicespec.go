package sdram

import (
	"fmt"
	"math"
	"time"

	"github.com/sarchlab/sdramctl/sim/timing"
)

// A Constraint is a datasheet minimum. Some minimums are given in time, some
// in clock cycles and some in both, in which case the longer one applies.
type Constraint struct {
	Time   time.Duration
	Cycles int
}

// Ns creates a constraint given in nanoseconds.
func Ns(ns float64) Constraint {
	return Constraint{Time: time.Duration(ns * float64(time.Nanosecond))}
}

// Clk creates a constraint given in clock cycles.
func Clk(cycles int) Constraint {
	return Constraint{Cycles: cycles}
}

// NsOrClk creates a constraint that needs both a time and a number of cycles
// to pass.
func NsOrClk(ns float64, cycles int) Constraint {
	c := Ns(ns)
	c.Cycles = cycles

	return c
}

// CyclesAt returns the smallest number of cycles at the frequency that
// satisfies the constraint.
func (c Constraint) CyclesAt(freq timing.Freq) int {
	n := int(math.Ceil(c.Time.Seconds()*float64(freq) - 1e-6))

	return max(n, c.Cycles)
}

// MinDuration returns the shortest time that satisfies the constraint when
// the clock period is period.
func (c Constraint) MinDuration(period time.Duration) time.Duration {
	return max(c.Time, time.Duration(c.Cycles)*period)
}

// SatisfiedBy tells if n cycles at the frequency are long enough.
func (c Constraint) SatisfiedBy(n int, freq timing.Freq) bool {
	if n < c.Cycles {
		return false
	}

	return float64(n)/float64(freq) >= c.Time.Seconds()-1e-12
}

func (c Constraint) String() string {
	switch {
	case c.Time > 0 && c.Cycles > 0:
		return fmt.Sprintf("max(%v, %dclk)", c.Time, c.Cycles)
	case c.Cycles > 0:
		return fmt.Sprintf("%dclk", c.Cycles)
	default:
		return c.Time.String()
	}
}

// DeviceSpec holds the datasheet values of an SDR SDRAM device.
type DeviceSpec struct {
	TRCD Constraint // ACTIVATE to READ or WRITE
	TRP  Constraint // PRECHARGE period
	TRAS Constraint // ACTIVATE to PRECHARGE
	TRC  Constraint // ACTIVATE to ACTIVATE in the same bank
	TRFC Constraint // AUTO REFRESH period
	TWR  Constraint // write recovery
	TMRD Constraint // MODE REGISTER SET to any command
	TRRD Constraint // ACTIVATE to ACTIVATE in different banks
	TAA  Constraint // access time that sets the CAS latency

	// CASLatencies lists the CAS latencies the device supports.
	CASLatencies []int

	PowerOnWait   time.Duration
	RefreshPeriod time.Duration
	RefreshRows   int

	// InitRefreshes is the number of AUTO REFRESH commands issued during
	// initialization.
	InitRefreshes int
}

// DefaultDeviceSpec returns the values of a common 64 Mbit, -7 speed grade
// SDR SDRAM.
func DefaultDeviceSpec() DeviceSpec {
	return DeviceSpec{
		TRCD:          Ns(20),
		TRP:           Ns(20),
		TRAS:          Ns(45),
		TRC:           Ns(65),
		TRFC:          Ns(65),
		TWR:           NsOrClk(15, 2),
		TMRD:          Clk(2),
		TRRD:          Ns(15),
		TAA:           Ns(18),
		CASLatencies:  []int{2, 3},
		PowerOnWait:   200 * time.Microsecond,
		RefreshPeriod: 64 * time.Millisecond,
		RefreshRows:   4096,
		InitRefreshes: 8,
	}
}

// MaxRefreshInterval returns the longest time allowed between two AUTO
// REFRESH commands.
func (s DeviceSpec) MaxRefreshInterval() time.Duration {
	return s.RefreshPeriod / time.Duration(s.RefreshRows)
}

func (s DeviceSpec) supportsCASLatency(cl int) bool {
	for _, supported := range s.CASLatencies {
		if supported == cl {
			return true
		}
	}

	return false
}
