package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	"github.com/sarchlab/sdramctl/mem/sdram"
	"github.com/sarchlab/sdramctl/mem/sdram/board"
	"github.com/sarchlab/sdramctl/monitoring"
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/timing"
	"github.com/sarchlab/sdramctl/simulation"
)

// boardOptions are the flags shared by the commands that run a board.
type boardOptions struct {
	freqMHz      float64
	policy       string
	width        int
	refreshUs    int
	strict       bool
	step         bool
	limit        uint64
	record       string
	recordStates bool
	monitor      bool
	monitorPort  int
	openBrowser  bool
	logEvents    bool
}

func (o *boardOptions) addFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&o.freqMHz, "freq",
		envFloat("SDRAMSIM_FREQ_MHZ", 64), "clock frequency in MHz")
	fs.StringVar(&o.policy, "policy",
		envString("SDRAMSIM_POLICY", "close"), "row policy, close or open")
	fs.IntVar(&o.width, "width",
		envInt("SDRAMSIM_DATA_WIDTH", 8), "client data width, 8, 16 or 32")
	fs.IntVar(&o.refreshUs, "refresh-us",
		envInt("SDRAMSIM_REFRESH_US", 15), "microseconds between refreshes")
	fs.BoolVar(&o.strict, "strict",
		envBool("SDRAMSIM_STRICT", false), "stop at the first device violation")
	fs.BoolVar(&o.step, "step",
		envBool("SDRAMSIM_STEP", false),
		"step the board directly instead of running the event engine")
	fs.Uint64Var(&o.limit, "limit", 0,
		"cycle limit in step mode, 0 to derive one from the workload")
	fs.StringVar(&o.record, "record",
		envString("SDRAMSIM_RECORD", ""),
		"write commands and traces to <path>.sqlite3")
	fs.BoolVar(&o.recordStates, "record-states", false,
		"also record state machine moves")
	fs.BoolVar(&o.monitor, "monitor",
		envBool("SDRAMSIM_MONITOR", false), "serve the web monitor")
	fs.IntVar(&o.monitorPort, "monitor-port",
		envInt("SDRAMSIM_MONITOR_PORT", 0), "port of the web monitor")
	fs.BoolVar(&o.openBrowser, "open-browser", false,
		"open the web monitor in a browser")
	fs.BoolVar(&o.logEvents, "log-events", false,
		"log every engine event at glog verbosity 3")
}

func (o *boardOptions) validate() error {
	switch o.width {
	case 8, 16, 32:
	default:
		return fmt.Errorf("data width %d is not 8, 16 or 32", o.width)
	}

	if o.step && o.monitor {
		return errors.New("the monitor needs the event engine, drop --step")
	}

	if !o.monitor && (o.monitorPort != 0 || o.openBrowser) {
		return errors.New("monitor options need --monitor")
	}

	return nil
}

func (o *boardOptions) boardBuilder() (board.Builder, error) {
	policy, err := sdram.ParseRowPolicy(o.policy)
	if err != nil {
		return board.Builder{}, err
	}

	b := board.MakeBuilder().
		WithFreq(timing.Freq(o.freqMHz) * timing.MHz).
		WithRowPolicy(policy).
		WithDataWidth(o.width).
		WithRefreshMicros(o.refreshUs)

	if o.strict {
		b = b.WithStrictDevice()
	}

	if err := b.Validate(); err != nil {
		return board.Builder{}, err
	}

	return b, nil
}

func (o *boardOptions) simulationBuilder() simulation.Builder {
	b := simulation.MakeBuilder()

	if o.monitor {
		b = b.WithMonitorPort(o.monitorPort)
		if o.openBrowser {
			b = b.WithBrowser()
		}
	} else {
		b = b.WithoutMonitoring()
	}

	if o.record == "" {
		b = b.WithoutRecording()
	} else {
		b = b.WithOutputFileName(o.record)
	}

	return b
}

func (o *boardOptions) runInfo() map[string]string {
	return map[string]string{
		"freq_mhz":   strconv.FormatFloat(o.freqMHz, 'f', -1, 64),
		"policy":     o.policy,
		"data_width": strconv.Itoa(o.width),
		"refresh_us": strconv.Itoa(o.refreshUs),
		"step":       strconv.FormatBool(o.step),
	}
}

// A session is a board inside a simulation.
type session struct {
	opts  *boardOptions
	sim   *simulation.Simulation
	board *board.Board
	bar   *monitoring.ProgressBar

	busy      *hooking.BusyTimeTracer
	refreshes *hooking.TagCountTracer
}

func newSession(
	opts *boardOptions,
	what string,
	numRequests uint64,
) (*session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	bb, err := opts.boardBuilder()
	if err != nil {
		return nil, err
	}

	sim, err := opts.simulationBuilder().Build()
	if err != nil {
		return nil, err
	}

	s := &session{opts: opts, sim: sim}
	s.bar = sim.CreateProgressBar(what, numRequests)
	bb = bb.WithControllerHook(newProgressHook(s.bar))

	if !opts.step {
		bb = bb.WithEngine(sim.GetEngine())

		if opts.logEvents {
			sim.GetEngine().AcceptHook(timing.NewEventLogger(3))
		}
	}

	if recorder := sim.GetDataRecorder(); recorder != nil {
		bb = bb.WithControllerHook(
			sdram.NewCommandRecorder(recorder, opts.recordStates))

		if !opts.step {
			bb = bb.WithControllerHook(sim.GetVisTracer())
		}
	}

	s.board = bb.Build("Board")

	s.busy = hooking.NewBusyTimeTracer(s.board, nil)
	s.refreshes = hooking.NewTagCountTracer(hooking.KindFilter("refresh"))
	s.board.Controller.AcceptHook(s.busy)
	s.board.Controller.AcceptHook(s.refreshes)

	sim.RegisterComponent(s.board.Controller)
	sim.RegisterComponent(s.board.Device)
	sim.RecordRunInfo(opts.runInfo())

	return s, nil
}

// run runs the board until the client is done. Step mode gives up after
// the cycle limit.
func (s *session) run(requests uint64) error {
	if !s.opts.step {
		return s.board.Run()
	}

	limit := s.opts.limit
	if limit == 0 {
		t := s.board.Controller.Timing()
		limit = uint64(t.PowerOnCycles) + 1000 + 64*requests
	}

	return s.board.RunToCompletion(limit)
}

func (s *session) close() {
	if s.sim.GetMonitor() != nil {
		s.sim.GetMonitor().CompleteProgressBar(s.bar)
	}

	s.sim.Terminate()
}

// report prints the controller counters and the device violations. It fails
// if the device saw a violation.
func (s *session) report(out io.Writer) error {
	stats := s.board.Controller.Stats()
	violations := s.board.Device.Violations()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "cycles\t%d\n", stats.Cycles)
	fmt.Fprintf(w, "busy cycles\t%d\n", stats.BusyCycles)
	fmt.Fprintf(w, "reads\t%d\n", stats.Reads)
	fmt.Fprintf(w, "writes\t%d\n", stats.Writes)
	fmt.Fprintf(w, "external refreshes\t%d\n", stats.ExternalRefreshes)
	fmt.Fprintf(w, "scheduled refreshes\t%d\n", stats.ScheduledRefreshes)
	fmt.Fprintf(w, "max refresh gap\t%d / %d\n",
		stats.MaxRefreshGap, s.board.Controller.Timing().MaxRefreshInterval)

	for _, name := range s.refreshes.GetTagNames() {
		fmt.Fprintf(w, "scheduled refresh %s\t%d\n",
			name, s.refreshes.GetTagCount(name))
	}

	s.busy.TerminateAllTasks()
	fmt.Fprintf(w, "busy time\t%.3f us\n", s.busy.BusyTime()*1e6)
	fmt.Fprintf(w, "device violations\t%d\n", len(violations))

	if err := w.Flush(); err != nil {
		return err
	}

	for _, v := range violations {
		glog.Warningf("%v", v)
	}

	if len(violations) > 0 {
		return fmt.Errorf("%d device violations", len(violations))
	}

	return nil
}

// progressHook moves client requests through a progress bar, from accepted
// to finished.
type progressHook struct {
	bar      *monitoring.ProgressBar
	inflight map[string]bool
}

func newProgressHook(bar *monitoring.ProgressBar) *progressHook {
	return &progressHook{bar: bar, inflight: make(map[string]bool)}
}

func (h *progressHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case hooking.HookPosTaskStart:
		task := ctx.Item.(hooking.TaskStart)
		if task.Kind == "req_in" && !h.inflight[task.ID] {
			h.inflight[task.ID] = true
			h.bar.IncrementInProgress(1)
		}
	case hooking.HookPosTaskEnd:
		id := ctx.Item.(hooking.TaskEnd).ID
		if h.inflight[id] {
			delete(h.inflight, id)
			h.bar.IncrementFinished(1)
		}
	}
}
