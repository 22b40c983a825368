package study

import (
	"context"
	"time"
)

// Store is the persistence gateway for all study entities. Implemented by the
// Postgres Repository and by MemStore for tests and single-process use.
//
// Lookups that miss return (zero, nil error) pointer-style: *T readers return
// nil, delete-style operations report found=false.
type Store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	UpsertUser(ctx context.Context, u User) (User, error)
	SaveRefreshToken(ctx context.Context, ownerID, token string, expiresAt time.Time) error

	ListTodos(ctx context.Context, ownerID string) ([]Todo, error)
	CreateTodo(ctx context.Context, t Todo) (Todo, error)
	UpdateTodo(ctx context.Context, ownerID, id string, upd TodoUpdate) (*Todo, error)
	DeleteTodo(ctx context.Context, ownerID, id string) (bool, error)

	QuestionCountsByDate(ctx context.Context, ownerID, date string) ([]QuestionCount, error)
	QuestionCountsByDateRange(ctx context.Context, ownerID, start, end string) ([]QuestionCount, error)
	UpsertQuestionCount(ctx context.Context, qc QuestionCount) (QuestionCount, error)

	TimerSessionsByDate(ctx context.Context, ownerID, date string) ([]TimerSession, error)
	TimerSessionsByDateRange(ctx context.Context, ownerID, start, end string) ([]TimerSession, error)
	CreateTimerSession(ctx context.Context, s TimerSession) (TimerSession, error)

	ListNetResults(ctx context.Context, ownerID string) ([]NetResult, error)
	CreateNetResult(ctx context.Context, nr NetResult) (NetResult, error)
	DeleteNetResult(ctx context.Context, ownerID, id string) (bool, error)
}
