// Package simulation bundles the services a simulation run needs: the event
// engine, the data recorder, the task tracer and the monitor.
package simulation

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/sarchlab/sdramctl/datarecording"
	"github.com/sarchlab/sdramctl/monitoring"
	"github.com/sarchlab/sdramctl/sim/hooking"
	"github.com/sarchlab/sdramctl/sim/naming"
	"github.com/sarchlab/sdramctl/sim/timing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id     string
	engine *timing.SerialEngine

	dataRecorder datarecording.DataRecorder
	runRecorder  *datarecording.RunRecorder
	monitor      *monitoring.Monitor
	visTracer    *hooking.DBTracer

	components    []naming.Named
	compNameIndex map[string]int
	terminated    bool
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() timing.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder, or nil if the run is not
// recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor, or nil if the run is not monitored.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the task tracer, or nil if the run is not recorded.
func (s *Simulation) GetVisTracer() *hooking.DBTracer {
	return s.visTracer
}

// RecordRunInfo remembers the properties of the run. They are written when
// the simulation terminates.
func (s *Simulation) RecordRunInfo(properties map[string]string) {
	if s.runRecorder == nil {
		return
	}

	s.runRecorder.Start(properties)
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c naming.Named) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) naming.Named {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// Components returns all the registered components.
func (s *Simulation) Components() []naming.Named {
	return append([]naming.Named(nil), s.components...)
}

// CreateProgressBar returns a progress bar, shown on the monitor if there is
// one.
func (s *Simulation) CreateProgressBar(
	name string,
	total uint64,
) *monitoring.ProgressBar {
	if s.monitor == nil {
		return &monitoring.ProgressBar{Name: name, Total: total}
	}

	return s.monitor.CreateProgressBar(name, total)
}

// Terminate flushes what is recorded and stops the monitor. It can be
// called more than once.
func (s *Simulation) Terminate() {
	if s.terminated {
		return
	}

	s.terminated = true

	if s.visTracer != nil {
		s.visTracer.Terminate()
	}

	if s.runRecorder != nil {
		s.runRecorder.End()
	}

	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}

	if s.monitor != nil {
		if err := s.monitor.StopServer(); err != nil {
			glog.Warningf("stopping monitor: %v", err)
		}
	}
}

// String describes the run in one line.
func (s *Simulation) String() string {
	return fmt.Sprintf("simulation %s, %d components", s.id, len(s.components))
}
