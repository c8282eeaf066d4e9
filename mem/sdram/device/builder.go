package device

import (
	"fmt"

	"github.com/sarchlab/sdramctl/mem/sdram"
	"github.com/sarchlab/sdramctl/mem/storage"
	"github.com/sarchlab/sdramctl/sim/modeling"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// Builder can build SDRAM devices.
type Builder struct {
	engine   timing.Engine
	freq     timing.Freq
	spec     sdram.DeviceSpec
	busWidth int
	numBank  int
	numRow   int
	numCol   int
	strict   bool
}

// MakeBuilder creates a builder for a 64 Mbit device with a 32-bit bus that
// runs at 64 MHz.
func MakeBuilder() Builder {
	return Builder{
		freq:     64 * timing.MHz,
		spec:     sdram.DefaultDeviceSpec(),
		busWidth: 32,
		numBank:  4,
		numRow:   2048,
		numCol:   256,
	}
}

// WithEngine sets the engine that the device ticks on.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the device clock.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithDeviceSpec sets the datasheet values that the device checks.
func (b Builder) WithDeviceSpec(spec sdram.DeviceSpec) Builder {
	b.spec = spec
	return b
}

// WithBusWidth sets the width of the data bus, 8, 16 or 32 bits.
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

// WithStrictMode makes the device panic on the first violation.
func (b Builder) WithStrictMode() Builder {
	b.strict = true
	return b
}

// Capacity returns the size of the device in bytes.
func (b Builder) Capacity() uint64 {
	return uint64(b.numBank) * uint64(b.numRow) * uint64(b.numCol) *
		uint64(b.busWidth/8)
}

// Build creates a device.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	d := &Comp{
		spec:     b.spec,
		freq:     b.freq,
		busBytes: b.busWidth / 8,
		numBank:  b.numBank,
		numRow:   b.numRow,
		numCol:   b.numCol,
		strict:   b.strict,
		storage:  storage.New(b.Capacity()),
	}
	d.TickingComponent = modeling.NewShiftedTickingComponent(
		name, b.engine, b.freq, d)

	d.Reset()

	return d
}

func (b Builder) parametersMustBeValid() {
	switch b.busWidth {
	case 8, 16, 32:
	default:
		panic(fmt.Sprintf("bus width %d is not supported", b.busWidth))
	}

	if b.numBank <= 0 || b.numRow <= 0 || b.numCol <= 0 {
		panic("the device needs at least one bank, row and column")
	}

	if b.freq <= 0 {
		panic("frequency must be positive")
	}
}
