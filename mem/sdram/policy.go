package sdram

import (
	"fmt"

	"github.com/sarchlab/sdramctl/mem/sdram/internal/addressmapping"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/org"
	"github.com/sarchlab/sdramctl/mem/sdram/internal/signal"
)

// RowPolicy decides when rows are closed.
type RowPolicy int

// Row policies.
const (
	// ClosePage closes the row with auto precharge after every access.
	ClosePage RowPolicy = iota

	// OpenPage keeps rows open until a different row or a refresh needs the
	// bank.
	OpenPage
)

func (p RowPolicy) String() string {
	switch p {
	case ClosePage:
		return "close"
	case OpenPage:
		return "open"
	default:
		return fmt.Sprintf("RowPolicy(%d)", int(p))
	}
}

// ParseRowPolicy converts "close" or "open" to a RowPolicy.
func ParseRowPolicy(s string) (RowPolicy, error) {
	switch s {
	case "close", "close-page", "closed":
		return ClosePage, nil
	case "open", "open-page":
		return OpenPage, nil
	default:
		return ClosePage, fmt.Errorf("unknown row policy %q", s)
	}
}

func (p RowPolicy) entryState(
	kind signal.RequestKind,
	loc addressmapping.Location,
	channel org.Channel,
) State {
	if kind == signal.RequestKindRefresh {
		if p == OpenPage && channel.AnyRowOpen() {
			return StatePrechargeAll
		}

		return StateRefresh
	}

	if p == ClosePage {
		return StateActivate
	}

	row, open := channel.Bank(loc.Bank).OpenRow()

	switch {
	case !open:
		return StateActivate
	case row != loc.Row:
		return StatePrecharge
	case kind == signal.RequestKindRead:
		return StateRead
	default:
		return StateWrite
	}
}

func (p RowPolicy) columnCommand(kind signal.RequestKind) signal.CommandKind {
	switch {
	case kind == signal.RequestKindRead && p == ClosePage:
		return signal.CmdKindReadPrecharge
	case kind == signal.RequestKindRead:
		return signal.CmdKindRead
	case p == ClosePage:
		return signal.CmdKindWritePrecharge
	default:
		return signal.CmdKindWrite
	}
}

// completeWhen returns the command kinds that must be issuable by the next
// cycle before a request counts as done, and the bank they apply to.
func (p RowPolicy) completeWhen(
	kind signal.RequestKind,
	loc addressmapping.Location,
) (bank int, kinds []signal.CommandKind) {
	if p == OpenPage &&
		(kind == signal.RequestKindRead || kind == signal.RequestKindWrite) {
		return loc.Bank, []signal.CommandKind{
			signal.CmdKindRead, signal.CmdKindWrite,
		}
	}

	return -1, []signal.CommandKind{
		signal.CmdKindActivate, signal.CmdKindRefresh,
	}
}
