package sdram

import (
	"fmt"

	"github.com/sarchlab/sdramctl/mem/sdram/internal/addressmapping"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/org"
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/modeling"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// Builder can build new memory controllers.
type Builder struct {
	engine        timing.Engine
	freq          timing.Freq
	spec          DeviceSpec
	refreshMicros int
	policy        RowPolicy
	dataWidth     int
	busWidth      int
	numBank       int
	numRow        int
	numCol        int
	device        Device
	hooks         []hooking.Hook
}

// MakeBuilder creates a builder with default configuration: a 64 MHz clock,
// a 4 bank, 2048 row, 256 column device with a 32-bit bus, an 8-bit client
// port, close-page row policy and a refresh every 15 µs.
func MakeBuilder() Builder {
	return Builder{
		freq:          64 * timing.MHz,
		spec:          DefaultDeviceSpec(),
		refreshMicros: 15,
		policy:        ClosePage,
		dataWidth:     8,
		busWidth:      32,
		numBank:       4,
		numRow:        2048,
		numCol:        256,
	}
}

// WithEngine sets the engine that the controller ticks on. Controllers that
// are stepped directly do not need one.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the controller clock.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithDeviceSpec sets the datasheet values of the device.
func (b Builder) WithDeviceSpec(spec DeviceSpec) Builder {
	b.spec = spec
	return b
}

// WithRefreshMicros sets how many microseconds pass between refreshes.
func (b Builder) WithRefreshMicros(n int) Builder {
	b.refreshMicros = n
	return b
}

// WithRowPolicy sets the row policy.
func (b Builder) WithRowPolicy(p RowPolicy) Builder {
	b.policy = p
	return b
}

// WithDataWidth sets the width of the client data port, 8, 16 or 32 bits.
func (b Builder) WithDataWidth(n int) Builder {
	b.dataWidth = n
	return b
}

// WithBusWidth sets the width of the device data bus.
func (b Builder) WithBusWidth(n int) Builder {
	b.busWidth = n
	return b
}

// WithNumBank sets the number of banks.
func (b Builder) WithNumBank(n int) Builder {
	b.numBank = n
	return b
}

// WithNumRow sets the number of rows per bank.
func (b Builder) WithNumRow(n int) Builder {
	b.numRow = n
	return b
}

// WithNumCol sets the number of columns per row.
func (b Builder) WithNumCol(n int) Builder {
	b.numCol = n
	return b
}

// WithDevice connects the device pins.
func (b Builder) WithDevice(d Device) Builder {
	b.device = d
	return b
}

// WithAdditionalHooks adds a hook to the controller.
func (b Builder) WithAdditionalHooks(h hooking.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// Timing derives the timing that a controller built now would use.
func (b Builder) Timing() (Timing, error) {
	return DeriveTiming(b.freq, b.spec, b.refreshMicros)
}

// Validate checks the whole configuration.
func (b Builder) Validate() error {
	if _, err := b.Timing(); err != nil {
		return err
	}

	return ValidateWidths(b.dataWidth, b.busWidth,
		b.addressBits())
}

func (b Builder) addressBits() int {
	bits := 0
	for _, n := range []int{b.busWidth / 8, b.numBank, b.numRow, b.numCol} {
		for n > 1 {
			bits++
			n >>= 1
		}
	}

	return bits
}

// ValidateWidths checks the client data width against the device bus and
// the address width against the client address port.
func ValidateWidths(dataWidth, busWidth, addressBits int) error {
	switch dataWidth {
	case 8, 16, 32:
	default:
		return fmt.Errorf("%w: %d bits, want 8, 16 or 32",
			ErrDataWidth, dataWidth)
	}

	if dataWidth > busWidth {
		return fmt.Errorf("%w: %d bits is wider than the %d-bit device bus",
			ErrDataWidth, dataWidth, busWidth)
	}

	if addressBits < 1 || addressBits > 32 {
		return fmt.Errorf("%w: %d bits", ErrAddressWidth, addressBits)
	}

	return nil
}

// Build creates a controller. It panics if the configuration cannot drive the
// device correctly.
func (b Builder) Build(name string) *Comp {
	b.configurationMustBeValid()

	t, _ := b.Timing()

	c := &Comp{
		timing:    t,
		policy:    b.policy,
		dataWidth: b.dataWidth,
		busWidth:  b.busWidth,
		device:    b.device,
		refresh:   NewRefreshScheduler(t.RefreshThreshold),
		stats:     newStats(),
	}
	c.TickingComponent = modeling.NewTickingComponent(
		name, b.engine, b.freq, c)

	c.mapper = addressmapping.MakeBuilder().
		WithBusWidth(b.busWidth).
		WithNumBank(b.numBank).
		WithNumRow(b.numRow).
		WithNumCol(b.numCol).
		Build()
	c.addrMask = uint32(1<<c.mapper.AddressBits() - 1)

	b.buildChannel(name, c)

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	c.Reset()

	return c
}

func (b Builder) configurationMustBeValid() {
	if err := b.Validate(); err != nil {
		panic(err)
	}
}

func (b Builder) buildChannel(name string, c *Comp) {
	channel := &org.ChannelImpl{
		Timing: c.timing.TimeTable(),
	}

	for i := 0; i < b.numBank; i++ {
		bankName := fmt.Sprintf("%s.Bank[%d]", name, i)
		channel.Banks = append(channel.Banks, org.NewBankImpl(bankName))
	}

	c.channel = channel
}
