package signal

// Mode register fields of an SDR SDRAM.
const (
	modeBurstLengthMask = 0x7
	modeBurstTypeBit    = 3
	modeCASShift        = 4
	modeCASMask         = 0x7
	modeWriteBurstBit   = 9
)

// ModeRegister is the decoded content of the mode register.
type ModeRegister struct {
	BurstLength      int
	Interleaved      bool
	CASLatency       int
	SingleWriteBurst bool
}

// ModeRegisterValue returns the value that selects a burst length of 1,
// sequential bursts and the given CAS latency.
func ModeRegisterValue(casLatency int) uint16 {
	return uint16(casLatency&modeCASMask) << modeCASShift
}

// DecodeModeRegister splits a mode register value into its fields.
func DecodeModeRegister(v uint16) ModeRegister {
	m := ModeRegister{
		Interleaved:      v&(1<<modeBurstTypeBit) != 0,
		CASLatency:       int(v>>modeCASShift) & modeCASMask,
		SingleWriteBurst: v&(1<<modeWriteBurstBit) != 0,
	}

	switch v & modeBurstLengthMask {
	case 0:
		m.BurstLength = 1
	case 1:
		m.BurstLength = 2
	case 2:
		m.BurstLength = 4
	case 3:
		m.BurstLength = 8
	case 7:
		m.BurstLength = -1 // full page
	default:
		m.BurstLength = 0
	}

	return m
}
