package timer

import (
	"context"
	"sync"
)

// Pomodoro counts a configured number of minutes down to zero, alerts once on
// completion, and persists the elapsed time. The auto-save on completion is
// best effort: the machine is already in the completed state when the save
// result comes back, so a failed auto-save loses the run (matching the
// original behavior of saving in the background of the completion alert).
type Pomodoro struct {
	mu        sync.Mutex
	minutes   int
	remaining int
	elapsed   int
	running   bool
	completed bool
	saving    bool
	subject   string
	save      SaveFunc
	alert     AlertFunc
}

// NewPomodoro builds a ready pomodoro with the default 25 minute duration.
func NewPomodoro(subject string, save SaveFunc, alert AlertFunc) *Pomodoro {
	return &Pomodoro{
		minutes:   DefaultMinutes,
		remaining: DefaultMinutes * 60,
		subject:   subject,
		save:      save,
		alert:     alert,
	}
}

// SetMinutes reconfigures the countdown length and resets the machine. Values
// outside [1,180] are clamped. Ignored while running.
func (p *Pomodoro) SetMinutes(minutes int) {
	if minutes < MinMinutes {
		minutes = MinMinutes
	}
	if minutes > MaxMinutes {
		minutes = MaxMinutes
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.minutes = minutes
	p.remaining = minutes * 60
	p.elapsed = 0
	p.completed = false
}

// Start begins or resumes the countdown. A completed run must be reset first.
func (p *Pomodoro) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed || p.remaining == 0 {
		return
	}
	p.running = true
}

// Pause stops the countdown without discarding progress.
func (p *Pomodoro) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

// Reset returns the machine to ready with a full countdown.
func (p *Pomodoro) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Pomodoro) reset() {
	p.running = false
	p.completed = false
	p.remaining = p.minutes * 60
	p.elapsed = 0
}

// SetSubject changes the subject future saves are recorded under.
func (p *Pomodoro) SetSubject(subject string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subject = subject
}

// Tick advances the countdown by one second. When it reaches zero the machine
// completes: the alert fires once and the run is auto-saved if nothing else
// is saving. Ticks outside the running state do nothing, so repeated ticks at
// zero cannot re-fire the alert.
func (p *Pomodoro) Tick(ctx context.Context) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.remaining--
	p.elapsed++
	if p.remaining > 0 {
		p.mu.Unlock()
		return
	}

	p.running = false
	p.completed = true
	duration := p.elapsed
	subject := p.subject
	alert := p.alert
	doSave := duration > 0 && !p.saving && p.save != nil
	if doSave {
		p.saving = true
	}
	p.mu.Unlock()

	if alert != nil {
		alert()
	}
	if doSave {
		err := p.save(ctx, subject, duration)
		p.mu.Lock()
		p.saving = false
		_ = err // best effort; elapsed stays for inspection but the run is over
		p.mu.Unlock()
	}
}

// Save persists the elapsed time of a paused run and resets to ready on
// success. No-op while running or completed, with nothing counted, or while
// another save is in flight.
func (p *Pomodoro) Save(ctx context.Context) error {
	p.mu.Lock()
	if p.running || p.completed || p.elapsed == 0 || p.saving {
		p.mu.Unlock()
		return nil
	}
	p.saving = true
	duration := p.elapsed
	subject := p.subject
	p.mu.Unlock()

	err := p.save(ctx, subject, duration)

	p.mu.Lock()
	p.saving = false
	if err == nil {
		p.reset()
	}
	p.mu.Unlock()
	return err
}

// Remaining reports the seconds left on the countdown.
func (p *Pomodoro) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining
}

// Elapsed reports the seconds counted in the current run.
func (p *Pomodoro) Elapsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}

// Minutes reports the configured countdown length.
func (p *Pomodoro) Minutes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minutes
}

// State reports ready, running, paused, or completed.
func (p *Pomodoro) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.completed:
		return StateCompleted
	case p.running:
		return StateRunning
	case p.elapsed > 0:
		return StatePaused
	default:
		return StateReady
	}
}
