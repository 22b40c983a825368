package timer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

var errTransient = errors.New("store unavailable")

func tickN(p *Pomodoro, n int) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		p.Tick(ctx)
	}
}

func TestPomodoroDefaults(t *testing.T) {
	p := NewPomodoro("Matematik", (&fakeSaver{}).save, nil)
	if p.Minutes() != 25 || p.Remaining() != 1500 {
		t.Fatalf("defaults: minutes=%d remaining=%d", p.Minutes(), p.Remaining())
	}
	if p.State() != StateReady {
		t.Fatalf("state = %s want ready", p.State())
	}
}

func TestPomodoroCountdownAndCompletion(t *testing.T) {
	saver := &fakeSaver{}
	var alerts int32
	p := NewPomodoro("Türkçe", saver.save, func() { atomic.AddInt32(&alerts, 1) })

	p.Start()
	tickN(p, 1499)
	if p.Remaining() != 1 || p.Elapsed() != 1499 {
		t.Fatalf("remaining=%d elapsed=%d", p.Remaining(), p.Elapsed())
	}
	if p.State() != StateRunning {
		t.Fatalf("state = %s want running", p.State())
	}

	tickN(p, 1)
	if p.State() != StateCompleted {
		t.Fatalf("state = %s want completed", p.State())
	}
	if got := atomic.LoadInt32(&alerts); got != 1 {
		t.Fatalf("alert fired %d times", got)
	}
	runs := saver.saved()
	if len(runs) != 1 || runs[0].duration != 1500 || runs[0].subject != "Türkçe" {
		t.Fatalf("auto-saved runs = %+v", runs)
	}

	// further ticks at zero must not re-fire the alert or re-save
	tickN(p, 5)
	if got := atomic.LoadInt32(&alerts); got != 1 {
		t.Fatalf("alert re-fired: %d", got)
	}
	if len(saver.saved()) != 1 {
		t.Fatal("completion re-saved")
	}
}

func TestPomodoroStartFromCompletedIsNoop(t *testing.T) {
	p := NewPomodoro("Fizik", (&fakeSaver{}).save, nil)
	p.SetMinutes(1)
	p.Start()
	tickN(p, 60)
	if p.State() != StateCompleted {
		t.Fatalf("state = %s want completed", p.State())
	}

	p.Start()
	tickN(p, 3)
	if p.State() != StateCompleted || p.Elapsed() != 60 {
		t.Fatalf("completed machine advanced: state=%s elapsed=%d", p.State(), p.Elapsed())
	}

	p.Reset()
	if p.State() != StateReady || p.Remaining() != 60 || p.Elapsed() != 0 {
		t.Fatalf("reset: state=%s remaining=%d elapsed=%d", p.State(), p.Remaining(), p.Elapsed())
	}
}

func TestPomodoroPauseAndManualSave(t *testing.T) {
	saver := &fakeSaver{}
	p := NewPomodoro("Kimya", saver.save, nil)
	p.Start()
	tickN(p, 90)
	p.Pause()
	if p.State() != StatePaused {
		t.Fatalf("state = %s want paused", p.State())
	}

	if err := p.Save(context.Background()); err != nil {
		t.Fatalf("manual save failed: %v", err)
	}
	runs := saver.saved()
	if len(runs) != 1 || runs[0].duration != 90 {
		t.Fatalf("saved runs = %+v", runs)
	}
	if p.State() != StateReady || p.Remaining() != 1500 || p.Elapsed() != 0 {
		t.Fatalf("post-save: state=%s remaining=%d elapsed=%d", p.State(), p.Remaining(), p.Elapsed())
	}
}

func TestPomodoroManualSaveGuards(t *testing.T) {
	saver := &fakeSaver{}
	p := NewPomodoro("Tarih", saver.save, nil)

	// ready with nothing counted
	if err := p.Save(context.Background()); err != nil {
		t.Fatalf("empty save errored: %v", err)
	}

	// running
	p.Start()
	tickN(p, 10)
	if err := p.Save(context.Background()); err != nil {
		t.Fatalf("running save errored: %v", err)
	}
	if len(saver.saved()) != 0 {
		t.Fatal("save reached the saver from a guarded state")
	}
}

func TestPomodoroSetMinutes(t *testing.T) {
	p := NewPomodoro("Edebiyat", (&fakeSaver{}).save, nil)

	p.SetMinutes(40)
	if p.Remaining() != 2400 || p.Minutes() != 40 {
		t.Fatalf("remaining=%d minutes=%d", p.Remaining(), p.Minutes())
	}

	// clamped at both ends
	p.SetMinutes(0)
	if p.Minutes() != 1 {
		t.Fatalf("minutes = %d want 1", p.Minutes())
	}
	p.SetMinutes(500)
	if p.Minutes() != 180 {
		t.Fatalf("minutes = %d want 180", p.Minutes())
	}

	// ignored while running
	p.SetMinutes(10)
	p.Start()
	tickN(p, 5)
	p.SetMinutes(20)
	if p.Minutes() != 10 || p.Elapsed() != 5 {
		t.Fatalf("running reconfigure applied: minutes=%d elapsed=%d", p.Minutes(), p.Elapsed())
	}

	// clears paused progress and completion
	p.Pause()
	p.SetMinutes(2)
	if p.Elapsed() != 0 || p.Remaining() != 120 || p.State() != StateReady {
		t.Fatalf("reconfigure: elapsed=%d remaining=%d state=%s", p.Elapsed(), p.Remaining(), p.State())
	}
}

func TestPomodoroFailedAutoSaveKeepsElapsedButStaysCompleted(t *testing.T) {
	saver := &fakeSaver{err: errTransient}
	var alerts int32
	p := NewPomodoro("Biyoloji", saver.save, func() { atomic.AddInt32(&alerts, 1) })
	p.SetMinutes(1)
	p.Start()
	tickN(p, 60)

	if p.State() != StateCompleted {
		t.Fatalf("state = %s want completed", p.State())
	}
	if atomic.LoadInt32(&alerts) != 1 {
		t.Fatal("alert did not fire")
	}
	// best-effort path: elapsed is still visible but the run is over
	if p.Elapsed() != 60 {
		t.Fatalf("elapsed = %d", p.Elapsed())
	}
	if err := p.Save(context.Background()); err != nil {
		t.Fatalf("save from completed errored: %v", err)
	}
	if len(saver.saved()) != 0 {
		t.Fatal("completed state allowed a manual save")
	}
}
