package jobmgr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStartAsyncLifecycle(t *testing.T) {
	events := make(chan Event, 8)
	m := NewManager(func(ev Event) { events <- ev })

	release := make(chan struct{})
	if err := m.StartAsync("score", func(ctx context.Context) error {
		<-release
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := m.StartAsync("score", func(ctx context.Context) error { return nil }); err == nil {
		t.Error("duplicate StartAsync while running should fail")
	}
	if got := m.Status(); !strings.Contains(got, "score") {
		t.Errorf("status = %q, want it to name the running job", got)
	}

	ev := <-events
	if ev.Job != "score" || ev.Phase != PhaseRunning {
		t.Fatalf("first event = %v, want running:score", ev)
	}

	close(release)
	ev = <-events
	if ev.Phase != PhaseDone || ev.Err != nil {
		t.Fatalf("second event = %v, want done:score", ev)
	}
}

func TestStartAsyncReportsFailure(t *testing.T) {
	events := make(chan Event, 4)
	m := NewManager(func(ev Event) { events <- ev })

	boom := errors.New("no input")
	if err := m.StartAsync("score", func(ctx context.Context) error { return boom }); err != nil {
		t.Fatal(err)
	}

	<-events // running
	ev := <-events
	if ev.Phase != PhaseFailed || !errors.Is(ev.Err, boom) {
		t.Fatalf("event = %v, want failed:score with the runner's error", ev)
	}
	if got := ev.String(); got != "failed:score:no input" {
		t.Errorf("event string = %q", got)
	}
}

func TestStopCancelsRunner(t *testing.T) {
	m := NewManager(nil)

	started := make(chan struct{})
	stopped := make(chan struct{})
	if err := m.StartAsync("score", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	}); err != nil {
		t.Fatal(err)
	}

	<-started
	if err := m.Stop("score"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("runner did not observe cancellation")
	}
	if err := m.Stop("score"); err == nil {
		t.Error("stopping an absent job should error")
	}
}

func TestStartSyncReportsLifecycle(t *testing.T) {
	var got []Event
	m := NewManager(func(ev Event) { got = append(got, ev) })

	if err := m.StartSync("score", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Phase != PhaseRunning || got[1].Phase != PhaseDone {
		t.Fatalf("events = %v, want running then done", got)
	}
	if m.Status() != "No jobs are running." {
		t.Errorf("status = %q after sync completion", m.Status())
	}
}
