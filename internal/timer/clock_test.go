package timer

import (
	"context"
	"testing"
	"time"
)

func TestRunDrivesBothMachines(t *testing.T) {
	sw := NewStopwatch("Matematik", (&fakeSaver{}).save)
	p := NewPomodoro("Matematik", (&fakeSaver{}).save, nil)
	sw.Start()
	p.Start()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, time.Millisecond, sw, p)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sw.Elapsed() < 3 || p.Elapsed() < 3 {
		select {
		case <-deadline:
			t.Fatalf("machines not ticking: stopwatch=%d pomodoro=%d", sw.Elapsed(), p.Elapsed())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRunToleratesNilMachines(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, time.Millisecond, nil, nil)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
