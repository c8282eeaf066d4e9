// Package org models the organization of the device banks as seen by the
// controller: which command may be issued to which bank and when.
package org

import "github.com/sarchlab/sdramctl/mem/sdram/internal/signal"

// TimeTableEntry is an entry in the time table. It records how many cycles
// must pass before the next command of a kind can be issued.
type TimeTableEntry struct {
	NextCmdKind       signal.CommandKind
	MinCycleInBetween int
}

// TimeTable lists, for each command kind, the restrictions it places on the
// commands that follow.
type TimeTable [][]TimeTableEntry

// MakeTimeTable creates a new empty time table.
func MakeTimeTable() TimeTable {
	return make([][]TimeTableEntry, signal.NumCmdKind)
}

// Add appends a restriction to the table.
func (t TimeTable) Add(
	cmd signal.CommandKind,
	next signal.CommandKind,
	cycles int,
) {
	t[cmd] = append(t[cmd], TimeTableEntry{
		NextCmdKind:       next,
		MinCycleInBetween: cycles,
	})
}

// MinCycles returns the restriction that cmd places on next, or 0 if there is
// none.
func (t TimeTable) MinCycles(cmd, next signal.CommandKind) int {
	cycles := 0

	for _, e := range t[cmd] {
		if e.NextCmdKind == next && e.MinCycleInBetween > cycles {
			cycles = e.MinCycleInBetween
		}
	}

	return cycles
}

// Timing is the timing restrictions of a single-rank device. Rank level
// commands apply their SameBank restrictions to every bank.
type Timing struct {
	SameBank   TimeTable
	OtherBanks TimeTable
}
