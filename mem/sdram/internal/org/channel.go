package org

import "github.com/sarchlab/sdramctl/mem/sdram/internal/signal"

// A Channel is the set of banks that share the command and data bus.
type Channel interface {
	Ready(cmd *signal.Command) bool
	ReadyWithin(cycles int, bank int, kinds ...signal.CommandKind) bool
	StartCommand(cmd *signal.Command)
	UpdateTiming(cmd *signal.Command)
	AnyRowOpen() bool
	Bank(i int) Bank
	NumBanks() int
	Tick()
	Reset()
}

// ChannelImpl implements a single-rank channel.
type ChannelImpl struct {
	Banks  []Bank
	Timing Timing
}

// Bank returns the i-th bank.
func (c *ChannelImpl) Bank(i int) Bank {
	return c.Banks[i]
}

// NumBanks returns the number of banks.
func (c *ChannelImpl) NumBanks() int {
	return len(c.Banks)
}

// Ready tells if the command can be issued in the current cycle. Rank level
// commands need every bank to be ready.
func (c *ChannelImpl) Ready(cmd *signal.Command) bool {
	if cmd.Kind.IsRankLevel() {
		return c.ReadyWithin(0, -1, cmd.Kind)
	}

	return c.ReadyWithin(0, cmd.Bank, cmd.Kind)
}

// ReadyWithin tells if the given command kinds will all be available in no
// more than cycles cycles. A negative bank checks every bank.
func (c *ChannelImpl) ReadyWithin(
	cycles int,
	bank int,
	kinds ...signal.CommandKind,
) bool {
	for i, b := range c.Banks {
		if bank >= 0 && i != bank {
			continue
		}

		for _, k := range kinds {
			if b.CyclesToCmdAvailable(k) > cycles {
				return false
			}
		}
	}

	return true
}

// StartCommand lets the banks track the command.
func (c *ChannelImpl) StartCommand(cmd *signal.Command) {
	if cmd.Kind.IsRankLevel() {
		for _, b := range c.Banks {
			b.StartCommand(cmd)
		}

		return
	}

	c.Banks[cmd.Bank].StartCommand(cmd)
}

// UpdateTiming applies the restrictions that the command places on the
// following commands.
func (c *ChannelImpl) UpdateTiming(cmd *signal.Command) {
	for i, b := range c.Banks {
		table := c.Timing.OtherBanks
		if cmd.Kind.IsRankLevel() || i == cmd.Bank {
			table = c.Timing.SameBank
		}

		for _, e := range table[cmd.Kind] {
			b.UpdateTiming(e.NextCmdKind, e.MinCycleInBetween)
		}
	}
}

// AnyRowOpen tells if any bank has an open row.
func (c *ChannelImpl) AnyRowOpen() bool {
	for _, b := range c.Banks {
		if _, open := b.OpenRow(); open {
			return true
		}
	}

	return false
}

// Tick moves every bank forward by one cycle.
func (c *ChannelImpl) Tick() {
	for _, b := range c.Banks {
		b.Tick()
	}
}

// Reset resets every bank.
func (c *ChannelImpl) Reset() {
	for _, b := range c.Banks {
		b.Reset()
	}
}
