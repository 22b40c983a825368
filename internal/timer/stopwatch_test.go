package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeSaver struct {
	mu      sync.Mutex
	calls   []savedRun
	err     error
	started chan struct{}
	release chan struct{}
}

type savedRun struct {
	subject  string
	duration int
}

func (f *fakeSaver) save(ctx context.Context, subject string, duration int) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, savedRun{subject: subject, duration: duration})
	return nil
}

func (f *fakeSaver) saved() []savedRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]savedRun, len(f.calls))
	copy(out, f.calls)
	return out
}

func TestStopwatchTickCountsOnlyWhileRunning(t *testing.T) {
	sw := NewStopwatch("Matematik", (&fakeSaver{}).save)

	sw.Tick()
	if sw.Elapsed() != 0 {
		t.Fatalf("idle tick counted: elapsed = %d", sw.Elapsed())
	}

	sw.Start()
	for i := 0; i < 5; i++ {
		sw.Tick()
	}
	if sw.Elapsed() != 5 {
		t.Fatalf("elapsed = %d want 5", sw.Elapsed())
	}
	if sw.State() != StateRunning {
		t.Fatalf("state = %s want running", sw.State())
	}

	sw.Pause()
	sw.Tick()
	sw.Tick()
	if sw.Elapsed() != 5 {
		t.Fatalf("paused ticks counted: elapsed = %d", sw.Elapsed())
	}
	if sw.State() != StatePaused {
		t.Fatalf("state = %s want paused", sw.State())
	}

	sw.Start()
	sw.Tick()
	if sw.Elapsed() != 6 {
		t.Fatalf("resume tick lost: elapsed = %d", sw.Elapsed())
	}

	sw.Reset()
	if sw.Elapsed() != 0 || sw.State() != StateIdle {
		t.Fatalf("reset left elapsed=%d state=%s", sw.Elapsed(), sw.State())
	}
}

func TestStopwatchSave(t *testing.T) {
	saver := &fakeSaver{}
	sw := NewStopwatch("Fizik", saver.save)

	// nothing counted: no-op
	if err := sw.Save(context.Background()); err != nil {
		t.Fatalf("empty save errored: %v", err)
	}
	if len(saver.saved()) != 0 {
		t.Fatal("empty save reached the saver")
	}

	sw.Start()
	sw.Tick()
	sw.Tick()
	sw.Tick()
	sw.Pause()
	if err := sw.Save(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs := saver.saved()
	if len(runs) != 1 || runs[0].duration != 3 || runs[0].subject != "Fizik" {
		t.Fatalf("saved runs = %+v", runs)
	}
	if sw.Elapsed() != 0 || sw.State() != StateIdle {
		t.Fatalf("post-save elapsed=%d state=%s", sw.Elapsed(), sw.State())
	}
}

func TestStopwatchSaveWhileRunningPausesFirst(t *testing.T) {
	saver := &fakeSaver{}
	sw := NewStopwatch("Kimya", saver.save)
	sw.Start()
	sw.Tick()

	if err := sw.Save(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if sw.State() != StateIdle {
		t.Fatalf("state = %s want idle", sw.State())
	}
	if runs := saver.saved(); len(runs) != 1 || runs[0].duration != 1 {
		t.Fatalf("saved runs = %+v", runs)
	}
}

func TestStopwatchFailedSaveKeepsElapsed(t *testing.T) {
	saver := &fakeSaver{err: errors.New("store down")}
	sw := NewStopwatch("Biyoloji", saver.save)
	sw.Start()
	sw.Tick()
	sw.Tick()
	sw.Pause()

	if err := sw.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if sw.Elapsed() != 2 {
		t.Fatalf("elapsed after failed save = %d want 2", sw.Elapsed())
	}

	// retry succeeds with the preserved duration
	saver.mu.Lock()
	saver.err = nil
	saver.mu.Unlock()
	if err := sw.Save(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if runs := saver.saved(); len(runs) != 1 || runs[0].duration != 2 {
		t.Fatalf("saved runs = %+v", runs)
	}
}

func TestStopwatchAtMostOneSaveInFlight(t *testing.T) {
	saver := &fakeSaver{started: make(chan struct{}, 1), release: make(chan struct{})}
	sw := NewStopwatch("Tarih", saver.save)
	sw.Start()
	sw.Tick()
	sw.Pause()

	done := make(chan error, 1)
	go func() { done <- sw.Save(context.Background()) }()
	<-saver.started

	// second save while the first is still in flight must be a no-op
	if err := sw.Save(context.Background()); err != nil {
		t.Fatalf("concurrent save errored: %v", err)
	}
	close(saver.release)
	if err := <-done; err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if runs := saver.saved(); len(runs) != 1 {
		t.Fatalf("expected exactly one saved run, got %d", len(runs))
	}
}

func TestStopwatchSetSubject(t *testing.T) {
	saver := &fakeSaver{}
	sw := NewStopwatch("Matematik", saver.save)
	sw.Start()
	sw.Tick()
	sw.Pause()
	sw.SetSubject("Geometri")

	if err := sw.Save(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runs := saver.saved(); runs[0].subject != "Geometri" {
		t.Fatalf("saved subject = %s", runs[0].subject)
	}
}
