package study

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists study data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// GetUser returns a user profile by id, nil when absent.
func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, profile_image_url, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
	var u User
	var first, last, img sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &first, &last, &img, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.FirstName, u.LastName, u.ProfileImageURL = first.String, last.String, img.String
	return &u, nil
}

// UpsertUser creates or refreshes a profile keyed by email.
func (r *Repository) UpsertUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, ownerID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (owner_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, ownerID, token, expiresAt)
	return err
}

// ListTodos returns all todos for an owner.
func (r *Repository) ListTodos(ctx context.Context, ownerID string) ([]Todo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, title, completed FROM todos WHERE owner_id = $1 ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Todo
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Completed); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// CreateTodo inserts a new todo.
func (r *Repository) CreateTodo(ctx context.Context, t Todo) (Todo, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (id, owner_id, title, completed)
		VALUES ($1, $2, $3, $4)
	`, t.ID, t.OwnerID, t.Title, t.Completed)
	if err != nil {
		return Todo{}, err
	}
	return t, nil
}

// UpdateTodo patches title and/or completed on an owned todo, nil when the
// row does not exist or belongs to someone else.
func (r *Repository) UpdateTodo(ctx context.Context, ownerID, id string, upd TodoUpdate) (*Todo, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE todos
		SET title = COALESCE($3, title), completed = COALESCE($4, completed)
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, completed
	`, id, ownerID, upd.Title, upd.Completed)
	var t Todo
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// DeleteTodo removes an owned todo, reporting whether a row was deleted.
func (r *Repository) DeleteTodo(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// QuestionCountsByDate returns an owner's counts for one day.
func (r *Repository) QuestionCountsByDate(ctx context.Context, ownerID, date string) ([]QuestionCount, error) {
	return r.queryCounts(ctx, `
		SELECT id, owner_id, subject, count, date FROM question_counts
		WHERE owner_id = $1 AND date = $2
	`, ownerID, date)
}

// QuestionCountsByDateRange returns an owner's counts with start <= date <= end.
func (r *Repository) QuestionCountsByDateRange(ctx context.Context, ownerID, start, end string) ([]QuestionCount, error) {
	return r.queryCounts(ctx, `
		SELECT id, owner_id, subject, count, date FROM question_counts
		WHERE owner_id = $1 AND date >= $2 AND date <= $3
	`, ownerID, start, end)
}

func (r *Repository) queryCounts(ctx context.Context, query string, args ...any) ([]QuestionCount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []QuestionCount
	for rows.Next() {
		var qc QuestionCount
		if err := rows.Scan(&qc.ID, &qc.OwnerID, &qc.Subject, &qc.Count, &qc.Date); err != nil {
			return nil, err
		}
		res = append(res, qc)
	}
	return res, rows.Err()
}

// UpsertQuestionCount replaces the count for (owner, subject, date), inserting
// when absent. The conflict target makes the write atomic.
func (r *Repository) UpsertQuestionCount(ctx context.Context, qc QuestionCount) (QuestionCount, error) {
	if qc.ID == "" {
		qc.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO question_counts (id, owner_id, subject, count, date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, subject, date) DO UPDATE SET count = EXCLUDED.count
		RETURNING id
	`, qc.ID, qc.OwnerID, qc.Subject, qc.Count, qc.Date)
	if err := row.Scan(&qc.ID); err != nil {
		return QuestionCount{}, err
	}
	return qc, nil
}

// TimerSessionsByDate returns an owner's sessions for one day.
func (r *Repository) TimerSessionsByDate(ctx context.Context, ownerID, date string) ([]TimerSession, error) {
	return r.querySessions(ctx, `
		SELECT id, owner_id, subject, duration, date FROM timer_sessions
		WHERE owner_id = $1 AND date = $2
	`, ownerID, date)
}

// TimerSessionsByDateRange returns an owner's sessions with start <= date <= end.
func (r *Repository) TimerSessionsByDateRange(ctx context.Context, ownerID, start, end string) ([]TimerSession, error) {
	return r.querySessions(ctx, `
		SELECT id, owner_id, subject, duration, date FROM timer_sessions
		WHERE owner_id = $1 AND date >= $2 AND date <= $3
	`, ownerID, start, end)
}

func (r *Repository) querySessions(ctx context.Context, query string, args ...any) ([]TimerSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []TimerSession
	for rows.Next() {
		var s TimerSession
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Subject, &s.Duration, &s.Date); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// CreateTimerSession writes a new session row.
func (r *Repository) CreateTimerSession(ctx context.Context, s TimerSession) (TimerSession, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timer_sessions (id, owner_id, subject, duration, date)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.OwnerID, s.Subject, s.Duration, s.Date)
	if err != nil {
		return TimerSession{}, err
	}
	return s, nil
}

// ListNetResults returns an owner's saved exams, newest first.
func (r *Repository) ListNetResults(ctx context.Context, ownerID string) ([]NetResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, exam_type, ayt_field, date, publisher, total_net, subject_scores, created_at
		FROM net_results WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []NetResult
	for rows.Next() {
		var nr NetResult
		var field sql.NullString
		var scores []byte
		if err := rows.Scan(&nr.ID, &nr.OwnerID, &nr.ExamType, &field, &nr.Date, &nr.Publisher, &nr.TotalNet, &scores, &nr.CreatedAt); err != nil {
			return nil, err
		}
		nr.AYTField = field.String
		if err := json.Unmarshal(scores, &nr.SubjectScores); err != nil {
			return nil, fmt.Errorf("decode subject scores for %s: %w", nr.ID, err)
		}
		res = append(res, nr)
	}
	return res, rows.Err()
}

// CreateNetResult writes a new exam snapshot.
func (r *Repository) CreateNetResult(ctx context.Context, nr NetResult) (NetResult, error) {
	if nr.ID == "" {
		nr.ID = uuid.NewString()
	}
	scores, err := json.Marshal(nr.SubjectScores)
	if err != nil {
		return NetResult{}, fmt.Errorf("encode subject scores: %w", err)
	}
	var field any
	if nr.AYTField != "" {
		field = nr.AYTField
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO net_results (id, owner_id, exam_type, ayt_field, date, publisher, total_net, subject_scores)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, nr.ID, nr.OwnerID, nr.ExamType, field, nr.Date, nr.Publisher, nr.TotalNet, scores)
	if err := row.Scan(&nr.CreatedAt); err != nil {
		return NetResult{}, err
	}
	return nr, nil
}

// DeleteNetResult removes an owned exam snapshot, reporting whether a row was
// deleted.
func (r *Repository) DeleteNetResult(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM net_results WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
