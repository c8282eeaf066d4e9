package sdram

import "github.com/sarchlab/sdramctl/mem/sdram/internal/signal"

// Pins is the state of the device pins on one clock edge.
type Pins = signal.Pins

// A Device is the SDRAM chip on the other side of the pins. The controller
// drives the pins once per cycle and samples the data bus when read data is
// expected.
type Device interface {
	// Drive presents the pins for the current controller edge.
	Drive(p Pins)

	// Sample returns the data bus as driven by the device, and whether the
	// device drives it at all.
	Sample() (dq uint32, driven bool)
}
