package sdram

import "github.com/sarchlab/sdramctl/mem/sdram/internal/signal"

// Stats counts what the controller has done since it was built.
type Stats struct {
	Cycles     uint64
	BusyCycles uint64

	Reads              uint64
	Writes             uint64
	ExternalRefreshes  uint64
	ScheduledRefreshes uint64
	IgnoredStrobes     uint64

	// Commands counts the commands issued, by command name.
	Commands map[string]uint64

	// MaxRefreshGap is the longest distance, in cycles, between two AUTO
	// REFRESH commands after initialization.
	MaxRefreshGap uint64

	lastRefreshCycle uint64
	initialized      bool
}

func newStats() Stats {
	return Stats{Commands: make(map[string]uint64)}
}

func (s *Stats) countCommand(cycle uint64, cmd signal.Command) {
	s.Commands[cmd.Kind.String()]++

	if cmd.Kind != signal.CmdKindRefresh {
		return
	}

	if s.initialized {
		gap := cycle - s.lastRefreshCycle
		s.MaxRefreshGap = max(s.MaxRefreshGap, gap)
	}

	s.lastRefreshCycle = cycle
}

func (s *Stats) copy() Stats {
	c := *s
	c.Commands = make(map[string]uint64, len(s.Commands))

	for k, v := range s.Commands {
		c.Commands[k] = v
	}

	return c
}

func (c *Comp) updateStats(f func(s *Stats)) {
	c.statsLock.Lock()
	f(&c.stats)
	c.statsLock.Unlock()
}

// ReportStats returns the counters by name, for monitors. It is safe to call
// while the simulation runs.
func (c *Comp) ReportStats() map[string]float64 {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()

	s := &c.stats

	r := map[string]float64{
		"cycles":              float64(s.Cycles),
		"busy_cycles":         float64(s.BusyCycles),
		"reads":               float64(s.Reads),
		"writes":              float64(s.Writes),
		"external_refreshes":  float64(s.ExternalRefreshes),
		"scheduled_refreshes": float64(s.ScheduledRefreshes),
		"ignored_strobes":     float64(s.IgnoredStrobes),
		"max_refresh_gap":     float64(s.MaxRefreshGap),
	}

	for kind, n := range s.Commands {
		r["cmd_"+kind] = float64(n)
	}

	return r
}
