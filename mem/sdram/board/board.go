// Package board wires an SDRAM controller, an SDRAM device and a client onto
// one clock.
//
// The controller ticks on the control edge. The device and the client tick
// on the phase-shifted clock, after the controller in the same edge. A board
// runs either on an event engine or by stepping the blocks directly.
package board

import (
	"errors"

	"github.com/sarchlab/sdramctl/mem/sdram"
	"github.com/sarchlab/sdramctl/mem/sdram/device"
	"github.com/sarchlab/sdramctl/mem/sdram/harness"
	"github.com/sarchlab/sdramctl/sim/modeling"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// ErrCycleLimit is returned when a board does not finish in time.
var ErrCycleLimit = errors.New("cycle limit reached")

// Board is a controller, a device and a client on one clock.
type Board struct {
	name   string
	engine timing.Engine
	freq   timing.Freq

	Controller *sdram.Comp
	Device     *device.Comp
	Client     harness.Client

	clientComp *modeling.TickingComponent
	poweredOff bool
	cycle      uint64
}

// Name returns the name of the board.
func (b *Board) Name() string {
	return b.name
}

// Attach connects a client to the controller.
func (b *Board) Attach(c harness.Client) {
	b.Client = c

	if b.engine != nil {
		b.clientComp = modeling.NewShiftedTickingComponent(
			b.name+".Client", b.engine, b.freq, clientTicker{b})
	}
}

// CurrentCycle returns the number of clock edges run so far.
func (b *Board) CurrentCycle() uint64 {
	return b.cycle
}

// Now returns the time of the last controller clock edge, in seconds.
func (b *Board) Now() float64 {
	return float64(b.Controller.CurrentCycle()) * b.freq.Period()
}

// PoweredOff tells if the board has been switched off.
func (b *Board) PoweredOff() bool {
	return b.poweredOff
}

// PowerOff stops the controller, the device and the client.
func (b *Board) PowerOff() {
	b.poweredOff = true
	b.Controller.PowerOff()
	b.Device.PowerOff()
}

// Reset resets the controller and cycles the power of the device.
func (b *Board) Reset() {
	b.Controller.Reset()
	b.Device.Reset()
}

// Step runs one clock edge without an engine.
func (b *Board) Step() bool {
	if b.poweredOff {
		return false
	}

	b.cycle++
	b.Controller.Tick()
	b.Device.Tick()
	b.tickClient()

	return true
}

func (b *Board) tickClient() {
	if b.Client == nil {
		return
	}

	b.Client.Tick()

	if b.Client.Done() {
		b.PowerOff()
	}
}

// RunCycles steps the board n times, or until it powers off.
func (b *Board) RunCycles(n uint64) {
	for i := uint64(0); i < n && b.Step(); i++ {
	}
}

// RunUntil steps the board until the condition holds. It fails if the
// condition does not hold within limit cycles.
func (b *Board) RunUntil(cond func() bool, limit uint64) error {
	for i := uint64(0); !cond(); i++ {
		if i >= limit {
			return ErrCycleLimit
		}

		if !b.Step() {
			if cond() {
				return nil
			}

			return errors.New("board powered off")
		}
	}

	return nil
}

// RunToCompletion steps the board until the client is done.
func (b *Board) RunToCompletion(limit uint64) error {
	return b.RunUntil(b.PoweredOff, limit)
}

// Run runs the board on its engine until the client is done.
func (b *Board) Run() error {
	if b.engine == nil {
		panic("the board is not built with an engine")
	}

	b.Controller.TickNow()
	b.Device.TickNow()

	if b.clientComp != nil {
		b.clientComp.TickNow()
	}

	return b.engine.Run()
}

type clientTicker struct {
	b *Board
}

// Tick runs the client. The controller ticks first in the same edge, so it
// keeps the edge count.
func (t clientTicker) Tick() bool {
	t.b.cycle = t.b.Controller.CurrentCycle()
	t.b.tickClient()

	return !t.b.poweredOff
}
