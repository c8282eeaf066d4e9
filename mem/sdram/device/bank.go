package device

import "math"

// never is a time that lies before every event.
var never = math.Inf(-1)

type bankState struct {
	active  bool
	row     int
	actTime float64

	// readyTime is when the bank finishes precharging and may be activated.
	readyTime float64

	lastWriteTime float64
}

func newBankState() bankState {
	return bankState{
		actTime:       never,
		readyTime:     never,
		lastWriteTime: never,
	}
}
