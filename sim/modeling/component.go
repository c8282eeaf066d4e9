// Package modeling provides the base types of simulated hardware blocks.
package modeling

import (
	"sync"

	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/naming"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// A Component is a element that is being simulated.
type Component interface {
	naming.Named
	timing.Handler
	hooking.Hookable
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	name string
	sync.Mutex
	hooking.HookableBase
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	naming.NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
