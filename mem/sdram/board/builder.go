package board

import (
	"fmt"

	"github.com/sarchlab/sdramctl/mem/sdram"
	"github.com/sarchlab/sdramctl/mem/sdram/device"
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// Builder can build boards.
type Builder struct {
	engine        timing.Engine
	freq          timing.Freq
	spec          sdram.DeviceSpec
	policy        sdram.RowPolicy
	dataWidth     int
	refreshMicros int
	strictDevice  bool
	hooks         []hooking.Hook
}

// MakeBuilder creates a builder for a 64 MHz board with the default device.
func MakeBuilder() Builder {
	return Builder{
		freq:          64 * timing.MHz,
		spec:          sdram.DefaultDeviceSpec(),
		policy:        sdram.ClosePage,
		dataWidth:     8,
		refreshMicros: 15,
	}
}

// WithEngine runs the board on an event engine. Boards without an engine
// are stepped directly.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithDeviceSpec sets the datasheet values of the device.
func (b Builder) WithDeviceSpec(spec sdram.DeviceSpec) Builder {
	b.spec = spec
	return b
}

// WithRowPolicy sets the row policy of the controller.
func (b Builder) WithRowPolicy(p sdram.RowPolicy) Builder {
	b.policy = p
	return b
}

// WithDataWidth sets the width of the client data port.
func (b Builder) WithDataWidth(n int) Builder {
	b.dataWidth = n
	return b
}

// WithRefreshMicros sets how many microseconds pass between refreshes.
func (b Builder) WithRefreshMicros(n int) Builder {
	b.refreshMicros = n
	return b
}

// WithStrictDevice makes the device panic on the first violation.
func (b Builder) WithStrictDevice() Builder {
	b.strictDevice = true
	return b
}

// WithControllerHook adds a hook to the controller.
func (b Builder) WithControllerHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// ControllerBuilder returns the controller builder that Build uses.
func (b Builder) ControllerBuilder() sdram.Builder {
	cb := sdram.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithDeviceSpec(b.spec).
		WithRowPolicy(b.policy).
		WithDataWidth(b.dataWidth).
		WithRefreshMicros(b.refreshMicros)

	for _, h := range b.hooks {
		cb = cb.WithAdditionalHooks(h)
	}

	return cb
}

// Validate checks the configuration without building anything.
func (b Builder) Validate() error {
	if err := b.ControllerBuilder().Validate(); err != nil {
		return fmt.Errorf("board configuration: %w", err)
	}

	return nil
}

// Build creates a board without a client.
func (b Builder) Build(name string) *Board {
	db := device.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithDeviceSpec(b.spec)
	if b.strictDevice {
		db = db.WithStrictMode()
	}

	dev := db.Build(name + ".SDRAM")

	ctrl := b.ControllerBuilder().
		WithDevice(dev).
		Build(name + ".Controller")

	return &Board{
		name:       name,
		engine:     b.engine,
		freq:       b.freq,
		Controller: ctrl,
		Device:     dev,
	}
}
