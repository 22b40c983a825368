package study

import "time"

// TimerSession is one completed, timed study interval tied to a subject and
// calendar day. Immutable once created.
type TimerSession struct {
	ID       string `json:"id"`
	OwnerID  string `json:"ownerId"`
	Subject  string `json:"subject"`
	Duration int    `json:"duration"` // seconds
	Date     string `json:"date"`     // YYYY-MM-DD
}

// QuestionCount tracks how many questions were solved for a subject on a day.
// At most one row exists per (owner, subject, date); writes replace the count.
type QuestionCount struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Subject string `json:"subject"`
	Count   int    `json:"count"`
	Date    string `json:"date"`
}

// Todo is a standard owner-scoped checklist item.
type Todo struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// User is a profile refreshed on every authentication callback.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfileImageURL string    `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SubjectNet is the persisted per-subject breakdown of a saved exam.
type SubjectNet struct {
	Correct int     `json:"correct"`
	Wrong   int     `json:"wrong"`
	Net     float64 `json:"net"`
}

// NetResult is an immutable snapshot of a practice exam's scoring.
// AYTField is empty exactly when ExamType is TYT.
type NetResult struct {
	ID            string                `json:"id"`
	OwnerID       string                `json:"ownerId"`
	ExamType      string                `json:"examType"`
	AYTField      string                `json:"aytField,omitempty"`
	Date          string                `json:"date"`
	Publisher     string                `json:"publisher"`
	TotalNet      string                `json:"totalNet"`
	SubjectScores map[string]SubjectNet `json:"subjectScores"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// DayTotal is one populated day of a monthly study calendar. Days without any
// session are absent rather than zero-filled.
type DayTotal struct {
	Date         string `json:"date"`
	TotalSeconds int    `json:"totalSeconds"`
}

// TodoUpdate carries the optional fields of a todo patch.
type TodoUpdate struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// RangeStats bundles the raw rows and per-subject sums for an analytics range.
type RangeStats struct {
	QuestionCounts []QuestionCount `json:"questionCounts"`
	TimerSessions  []TimerSession  `json:"timerSessions"`
	BySubject      map[string]int  `json:"bySubject"`
}
