package signal

// AutoPrechargeBit is the address line that selects auto precharge on
// READ/WRITE and all banks on PRECHARGE.
const AutoPrechargeBit = 10

// Pins is the state of the device-side pins on one clock edge. Control
// signals are active low, as on the package.
type Pins struct {
	CKE  bool
	CSn  bool
	RASn bool
	CASn bool
	WEn  bool
	Addr uint16
	BA   uint8

	// DQM masks a byte lane when its bit is set.
	DQM uint8

	DQ   uint32
	DQOE bool
}

// IdlePins returns the pins of a NOP with the data bus released.
func IdlePins() Pins {
	return Pins{CKE: true, RASn: true, CASn: true, WEn: true}
}

// Encode places a command on the pins. Write data and masks are set by the
// caller.
func Encode(cmd Command) Pins {
	p := IdlePins()
	a10 := uint16(1) << AutoPrechargeBit

	switch cmd.Kind {
	case CmdKindNOP:
	case CmdKindDeselect:
		p.CSn = true
	case CmdKindActivate:
		p.RASn = false
		p.BA = uint8(cmd.Bank)
		p.Addr = uint16(cmd.Row)
	case CmdKindRead, CmdKindReadPrecharge:
		p.CASn = false
		p.BA = uint8(cmd.Bank)
		p.Addr = uint16(cmd.Col) &^ a10

		if cmd.Kind == CmdKindReadPrecharge {
			p.Addr |= a10
		}
	case CmdKindWrite, CmdKindWritePrecharge:
		p.CASn = false
		p.WEn = false
		p.BA = uint8(cmd.Bank)
		p.Addr = uint16(cmd.Col) &^ a10

		if cmd.Kind == CmdKindWritePrecharge {
			p.Addr |= a10
		}
	case CmdKindPrecharge:
		p.RASn = false
		p.WEn = false
		p.BA = uint8(cmd.Bank)
	case CmdKindPrechargeAll:
		p.RASn = false
		p.WEn = false
		p.Addr = a10
	case CmdKindRefresh:
		p.RASn = false
		p.CASn = false
	case CmdKindModeRegisterSet:
		p.RASn = false
		p.CASn = false
		p.WEn = false
		p.Addr = cmd.ModeRegister
	case CmdKindBurstStop:
		p.WEn = false
	default:
		panic("cannot encode command " + cmd.Kind.String())
	}

	return p
}

// Decode reads the command from the pins using the SDR SDRAM truth table.
//
//	CS# RAS# CAS# WE#
//	 H   x    x    x   DESELECT
//	 L   H    H    H   NOP
//	 L   L    H    H   ACTIVATE
//	 L   H    L    H   READ   (A10: auto precharge)
//	 L   H    L    L   WRITE  (A10: auto precharge)
//	 L   H    H    L   BURST STOP
//	 L   L    H    L   PRECHARGE (A10: all banks)
//	 L   L    L    H   AUTO REFRESH
//	 L   L    L    L   MODE REGISTER SET
func Decode(p Pins) Command {
	if p.CSn {
		return Command{Kind: CmdKindDeselect}
	}

	a10 := p.Addr&(1<<AutoPrechargeBit) != 0
	bank := int(p.BA)
	col := int(p.Addr &^ (1 << AutoPrechargeBit))

	switch {
	case p.RASn && p.CASn && p.WEn:
		return Command{Kind: CmdKindNOP}
	case !p.RASn && p.CASn && p.WEn:
		return Command{Kind: CmdKindActivate, Bank: bank, Row: int(p.Addr)}
	case p.RASn && !p.CASn && p.WEn:
		if a10 {
			return Command{Kind: CmdKindReadPrecharge, Bank: bank, Col: col}
		}

		return Command{Kind: CmdKindRead, Bank: bank, Col: col}
	case p.RASn && !p.CASn && !p.WEn:
		if a10 {
			return Command{Kind: CmdKindWritePrecharge, Bank: bank, Col: col}
		}

		return Command{Kind: CmdKindWrite, Bank: bank, Col: col}
	case p.RASn && p.CASn && !p.WEn:
		return Command{Kind: CmdKindBurstStop}
	case !p.RASn && p.CASn && !p.WEn:
		if a10 {
			return Command{Kind: CmdKindPrechargeAll}
		}

		return Command{Kind: CmdKindPrecharge, Bank: bank}
	case !p.RASn && !p.CASn && p.WEn:
		return Command{Kind: CmdKindRefresh}
	default:
		return Command{Kind: CmdKindModeRegisterSet, ModeRegister: p.Addr}
	}
}
