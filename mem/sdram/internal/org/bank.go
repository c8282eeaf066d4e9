package org

import (
	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
	"github.com/sarchlab/sdramctl/sim/naming"
)

// A Bank is a DRAM Bank. It contains a number of rows and columns.
type Bank interface {
	naming.Named

	CyclesToCmdAvailable(kind signal.CommandKind) int
	StartCommand(cmd *signal.Command)
	UpdateTiming(cmdKind signal.CommandKind, cycleNeeded int)
	OpenRow() (row int, open bool)
	Tick()
	Reset()
}

// BankImpl tracks the open row of a bank and how long each command kind has
// to wait.
type BankImpl struct {
	naming.NamedBase

	openRow              int
	cyclesToCmdAvailable [signal.NumCmdKind]int
}

// NewBankImpl creates a bank with every row closed.
func NewBankImpl(name string) *BankImpl {
	b := &BankImpl{
		NamedBase: naming.MakeNamedBase(name),
		openRow:   -1,
	}

	return b
}

// CyclesToCmdAvailable returns the number of cycles before a command of the
// kind may be issued. Zero means it may be issued now.
func (b *BankImpl) CyclesToCmdAvailable(kind signal.CommandKind) int {
	return b.cyclesToCmdAvailable[kind]
}

// StartCommand updates the open row.
func (b *BankImpl) StartCommand(cmd *signal.Command) {
	switch cmd.Kind {
	case signal.CmdKindActivate:
		b.openRow = cmd.Row
	case signal.CmdKindReadPrecharge,
		signal.CmdKindWritePrecharge,
		signal.CmdKindPrecharge,
		signal.CmdKindPrechargeAll:
		b.openRow = -1
	}
}

// UpdateTiming makes the command kind wait for at least cycleNeeded cycles.
func (b *BankImpl) UpdateTiming(cmdKind signal.CommandKind, cycleNeeded int) {
	if b.cyclesToCmdAvailable[cmdKind] < cycleNeeded {
		b.cyclesToCmdAvailable[cmdKind] = cycleNeeded
	}
}

// OpenRow returns the row that is currently open.
func (b *BankImpl) OpenRow() (row int, open bool) {
	return b.openRow, b.openRow >= 0
}

// Tick counts down the waiting cycles.
func (b *BankImpl) Tick() {
	for i := range b.cyclesToCmdAvailable {
		if b.cyclesToCmdAvailable[i] > 0 {
			b.cyclesToCmdAvailable[i]--
		}
	}
}

// Reset closes the row and clears every restriction.
func (b *BankImpl) Reset() {
	b.openRow = -1
	b.cyclesToCmdAvailable = [signal.NumCmdKind]int{}
}
