// Package jobmgr provides simple synchronous and asynchronous job execution
// with cancellation, typed lifecycle events, and in-memory tracking of
// running jobs.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(ev jobmgr.Event) {
//	    log.Println("JOB:", ev)
//	})
//
//	err := jm.StartAsync("score", func(ctx context.Context) error {
//	    // do work until ctx is cancelled
//	    return nil
//	})
//
//	// later...
//	_ = jm.Stop("score")
//
// The package is intentionally minimal: no retry logic, no workers, no persistence.
// Jobs run in separate goroutines and are automatically removed on completion.
package jobmgr

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultManager is the global job manager.
var DefaultManager = NewManager(nil)

// Phase of a job's lifecycle.
type Phase string

const (
	PhaseRunning Phase = "running"
	PhaseDone    Phase = "done"
	PhaseFailed  Phase = "failed"
)

// Job represents a running unit of work.
// Jobs are added and removed by Manager automatically.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// Event — one lifecycle notification for a named job. Err is set only for
// PhaseFailed.
type Event struct {
	Job   string
	Phase Phase
	Err   error
}

// String renders the event as "phase:job" or "failed:job:reason".
func (e Event) String() string {
	if e.Err != nil {
		return string(e.Phase) + ":" + e.Job + ":" + e.Err.Error()
	}
	return string(e.Phase) + ":" + e.Job
}

// StatusReporter receives lifecycle events for jobs.
type StatusReporter func(Event)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a new Manager.
// The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartSync runs a job in the current goroutine and blocks until completion.
// Lifecycle events are reported the same way as for asynchronous jobs.
func (m *Manager) StartSync(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.report(Event{Job: name, Phase: PhaseRunning})
	if err := runner(ctx); err != nil {
		m.report(Event{Job: name, Phase: PhaseFailed, Err: err})
		return err
	}
	m.report(Event{Job: name, Phase: PhaseDone})
	return nil
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// If a job with the same name is already running, an error is returned.
// Jobs are removed automatically after completion (success or failure).
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{Name: name, Cancel: cancel}

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job '%s' is already running", name)
	}
	m.jobs[name] = job
	m.mu.Unlock()

	go func() {
		m.report(Event{Job: name, Phase: PhaseRunning})

		if err := runner(ctx); err != nil {
			m.report(Event{Job: name, Phase: PhaseFailed, Err: err})
		} else {
			m.report(Event{Job: name, Phase: PhaseDone})
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job by name.
// If the job is not running, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// List returns the list of active job names.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: score, calibration"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// report delivers lifecycle events to the reporter if present.
func (m *Manager) report(ev Event) {
	if m.Reporter != nil {
		m.Reporter(ev)
	}
}
