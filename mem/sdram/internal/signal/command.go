// Package signal defines what travels between the controller, the device and
// the clients: commands, pins and requests.
package signal

import "fmt"

// CommandKind is the kind of an SDRAM command.
type CommandKind int

// Command kinds
const (
	CmdKindNOP CommandKind = iota
	CmdKindActivate
	CmdKindRead
	CmdKindReadPrecharge
	CmdKindWrite
	CmdKindWritePrecharge
	CmdKindPrecharge
	CmdKindPrechargeAll
	CmdKindRefresh
	CmdKindModeRegisterSet
	CmdKindBurstStop
	CmdKindDeselect
	NumCmdKind
)

var cmdKindNames = [...]string{
	"NOP",
	"ACT",
	"READ",
	"READA",
	"WRITE",
	"WRITEA",
	"PRE",
	"PREA",
	"REF",
	"MRS",
	"BST",
	"DESL",
}

func (k CommandKind) String() string {
	if k < 0 || k >= NumCmdKind {
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}

	return cmdKindNames[k]
}

// IsRankLevel tells if the command applies to every bank at once.
func (k CommandKind) IsRankLevel() bool {
	switch k {
	case CmdKindPrechargeAll, CmdKindRefresh, CmdKindModeRegisterSet:
		return true
	default:
		return false
	}
}

// IsRead tells if the command reads a column.
func (k CommandKind) IsRead() bool {
	return k == CmdKindRead || k == CmdKindReadPrecharge
}

// IsWrite tells if the command writes a column.
func (k CommandKind) IsWrite() bool {
	return k == CmdKindWrite || k == CmdKindWritePrecharge
}

// IsAutoPrecharge tells if the command closes the row after the access.
func (k CommandKind) IsAutoPrecharge() bool {
	return k == CmdKindReadPrecharge || k == CmdKindWritePrecharge
}

// IsIdle tells if the command does nothing to the device.
func (k CommandKind) IsIdle() bool {
	return k == CmdKindNOP || k == CmdKindDeselect
}

// A Command is one command placed on the device pins.
type Command struct {
	Kind CommandKind
	Bank int
	Row  int
	Col  int

	// ModeRegister is the value loaded by a MODE REGISTER SET.
	ModeRegister uint16
}

func (c Command) String() string {
	switch {
	case c.Kind == CmdKindActivate:
		return fmt.Sprintf("%s b%d r0x%x", c.Kind, c.Bank, c.Row)
	case c.Kind.IsRead(), c.Kind.IsWrite():
		return fmt.Sprintf("%s b%d c0x%x", c.Kind, c.Bank, c.Col)
	case c.Kind == CmdKindPrecharge:
		return fmt.Sprintf("%s b%d", c.Kind, c.Bank)
	case c.Kind == CmdKindModeRegisterSet:
		return fmt.Sprintf("%s 0x%03x", c.Kind, c.ModeRegister)
	default:
		return c.Kind.String()
	}
}
