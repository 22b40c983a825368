// Package timer holds the study-session timing machinery: a free-running
// stopwatch and a countdown pomodoro. One instance of each exists per active
// client session; both are advanced by an external once-per-second Tick.
package timer

import "context"

// SaveFunc persists a finished study interval for the configured subject.
// Implementations decide ownership and the calendar date.
type SaveFunc func(ctx context.Context, subject string, durationSeconds int) error

// AlertFunc signals pomodoro completion to the user. Fired exactly once per
// completed run.
type AlertFunc func()

// State names shared by both machines.
const (
	StateIdle      = "idle"
	StateReady     = "ready"
	StateRunning   = "running"
	StatePaused    = "paused"
	StateCompleted = "completed"
)

// Pomodoro duration bounds in minutes.
const (
	MinMinutes     = 1
	MaxMinutes     = 180
	DefaultMinutes = 25
)
