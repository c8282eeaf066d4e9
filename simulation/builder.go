package simulation

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/sdramctl/datarecording"
	"github.com/sarchlab/sdramctl/monitoring"
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	recordingOn    bool
	outputFileName string
}

// MakeBuilder creates a new builder. Simulations are monitored and recorded
// unless told otherwise.
func MakeBuilder() Builder {
	return Builder{
		monitorOn:   true,
		recordingOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithoutRecording sets the simulation to not write a database.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// The recorder adds the .sqlite3 extension.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() error {
	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		return fmt.Errorf("monitor options are set while monitoring is off")
	}

	if !b.recordingOn && b.outputFileName != "" {
		return fmt.Errorf("output file is set while recording is off")
	}

	return nil
}

// Build builds the simulation and starts the monitor if there is one.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:            xid.New().String(),
		engine:        timing.NewSerialEngine(),
		compNameIndex: make(map[string]int),
	}

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "sdramsim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.runRecorder = datarecording.NewRunRecorder(s.dataRecorder)
		s.visTracer = hooking.NewDBTracer(s.engine, s.dataRecorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		if b.openBrowser {
			s.monitor.WithBrowser()
		}

		s.monitor.RegisterEngine(s.engine)

		if err := s.monitor.StartServer(); err != nil {
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}
