package study

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"studytrack/internal/queue"
)

// AggCache is the cache surface the service needs for derived aggregates.
// Satisfied by store.AggCache; a nil-client cache degrades to recompute.
type AggCache interface {
	GetStreak(ctx context.Context, ownerID string) (int, bool)
	SetStreak(ctx context.Context, ownerID string, streak int)
	GetMonth(ctx context.Context, ownerID string, year, month int, dst any) bool
	SetMonth(ctx context.Context, ownerID string, year, month int, v any)
	Invalidate(ctx context.Context, ownerID, date string)
}

// Service coordinates validation, persistence, aggregate caching, and the
// background cache-warming queue.
type Service struct {
	store Store
	cache AggCache
	queue queue.Queue
	now   func() time.Time
}

// NewService creates a service over a store. Cache and queue may be nil.
func NewService(store Store, cache AggCache, q queue.Queue) *Service {
	return &Service{store: store, cache: cache, queue: q, now: time.Now}
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

// UpsertProfile creates or refreshes a user profile on an auth callback.
func (s *Service) UpsertProfile(ctx context.Context, email, firstName, lastName, imageURL string) (User, error) {
	if email == "" {
		return User{}, fmt.Errorf("%w: email required", ErrValidation)
	}
	return s.store.UpsertUser(ctx, User{
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		ProfileImageURL: imageURL,
	})
}

// GetUser returns a profile by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrAuth
	}
	return s.store.GetUser(ctx, id)
}

// SaveRefreshToken records an issued refresh token.
func (s *Service) SaveRefreshToken(ctx context.Context, ownerID, token string, expiresAt time.Time) error {
	return s.store.SaveRefreshToken(ctx, ownerID, token, expiresAt)
}

// Todos returns the owner's todo list.
func (s *Service) Todos(ctx context.Context, ownerID string) ([]Todo, error) {
	if ownerID == "" {
		return nil, ErrAuth
	}
	return s.store.ListTodos(ctx, ownerID)
}

// CreateTodo adds an item to the owner's list.
func (s *Service) CreateTodo(ctx context.Context, ownerID, title string) (Todo, error) {
	if ownerID == "" {
		return Todo{}, ErrAuth
	}
	if title == "" {
		return Todo{}, fmt.Errorf("%w: title required", ErrValidation)
	}
	return s.store.CreateTodo(ctx, Todo{OwnerID: ownerID, Title: title})
}

// UpdateTodo patches an owned todo.
func (s *Service) UpdateTodo(ctx context.Context, ownerID, id string, upd TodoUpdate) (Todo, error) {
	if ownerID == "" {
		return Todo{}, ErrAuth
	}
	if upd.Title != nil && *upd.Title == "" {
		return Todo{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	t, err := s.store.UpdateTodo(ctx, ownerID, id, upd)
	if err != nil {
		return Todo{}, err
	}
	if t == nil {
		return Todo{}, ErrNotFound
	}
	return *t, nil
}

// DeleteTodo removes an owned todo.
func (s *Service) DeleteTodo(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return ErrAuth
	}
	ok, err := s.store.DeleteTodo(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SaveSession persists a finished timer run and invalidates the aggregates
// covering its date.
func (s *Service) SaveSession(ctx context.Context, ownerID, subject string, duration int, date string) (TimerSession, error) {
	if ownerID == "" {
		return TimerSession{}, ErrAuth
	}
	if subject == "" {
		return TimerSession{}, fmt.Errorf("%w: subject required", ErrValidation)
	}
	if duration < 0 {
		return TimerSession{}, fmt.Errorf("%w: duration must be non-negative", ErrValidation)
	}
	if !ValidDate(date) {
		return TimerSession{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}

	created, err := s.store.CreateTimerSession(ctx, TimerSession{
		OwnerID:  ownerID,
		Subject:  subject,
		Duration: duration,
		Date:     date,
	})
	if err != nil {
		return TimerSession{}, err
	}

	sessionsSaved.Inc()
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownerID, date)
	}
	if s.queue != nil {
		msg := queue.Message{Type: "session.saved", Body: []byte(ownerID)}
		if err := s.queue.Publish(ctx, msg); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}
	return created, nil
}

// TimerSaver adapts the service into the save callback the timer machines
// take: it records sessions for one owner, dated at save time.
func (s *Service) TimerSaver(ownerID string) func(ctx context.Context, subject string, durationSeconds int) error {
	return func(ctx context.Context, subject string, durationSeconds int) error {
		_, err := s.SaveSession(ctx, ownerID, subject, durationSeconds, s.today())
		return err
	}
}

// SessionsByDate returns the owner's sessions for one day.
func (s *Service) SessionsByDate(ctx context.Context, ownerID, date string) ([]TimerSession, error) {
	if ownerID == "" {
		return nil, ErrAuth
	}
	if !ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return s.store.TimerSessionsByDate(ctx, ownerID, date)
}

// SessionsByRange returns the owner's sessions with start <= date <= end.
func (s *Service) SessionsByRange(ctx context.Context, ownerID, start, end string) ([]TimerSession, error) {
	if ownerID == "" {
		return nil, ErrAuth
	}
	if !ValidDate(start) || !ValidDate(end) {
		return nil, fmt.Errorf("%w: range bounds must be YYYY-MM-DD", ErrValidation)
	}
	return s.store.TimerSessionsByDateRange(ctx, ownerID, start, end)
}

// UpsertQuestionCount replaces the owner's count for a subject and day.
func (s *Service) UpsertQuestionCount(ctx context.Context, ownerID, subject string, count int, date string) (QuestionCount, error) {
	if ownerID == "" {
		return QuestionCount{}, ErrAuth
	}
	if subject == "" {
		return QuestionCount{}, fmt.Errorf("%w: subject required", ErrValidation)
	}
	if count < 0 {
		return QuestionCount{}, fmt.Errorf("%w: count must be non-negative", ErrValidation)
	}
	if !ValidDate(date) {
		return QuestionCount{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	qc, err := s.store.UpsertQuestionCount(ctx, QuestionCount{
		OwnerID: ownerID,
		Subject: subject,
		Count:   count,
		Date:    date,
	})
	if err == nil {
		questionCountUpserts.Inc()
	}
	return qc, err
}

// QuestionCountsByDate returns the owner's counts for one day.
func (s *Service) QuestionCountsByDate(ctx context.Context, ownerID, date string) ([]QuestionCount, error) {
	if ownerID == "" {
		return nil, ErrAuth
	}
	if !ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return s.store.QuestionCountsByDate(ctx, ownerID, date)
}

// Streak computes the owner's consecutive-day study streak ending today.
func (s *Service) Streak(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, ErrAuth
	}
	today := s.today()
	if s.cache != nil {
		if streak, ok := s.cache.GetStreak(ctx, ownerID); ok {
			aggCacheLookups.WithLabelValues("streak", "hit").Inc()
			return streak, nil
		}
		aggCacheLookups.WithLabelValues("streak", "miss").Inc()
	}

	streak, err := s.computeStreak(ctx, ownerID, today)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.SetStreak(ctx, ownerID, streak)
	}
	return streak, nil
}

func (s *Service) computeStreak(ctx context.Context, ownerID, today string) (int, error) {
	day, err := time.Parse(dateLayout, today)
	if err != nil {
		return 0, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	start := day.AddDate(0, 0, -(streakWindow - 1)).Format(dateLayout)
	sessions, err := s.store.TimerSessionsByDateRange(ctx, ownerID, start, today)
	if err != nil {
		return 0, err
	}
	return Streak(sessions, today), nil
}

// WarmStreak recomputes and caches an owner's streak. Used by the worker
// after a session lands.
func (s *Service) WarmStreak(ctx context.Context, ownerID string) (int, error) {
	streak, err := s.computeStreak(ctx, ownerID, s.today())
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.SetStreak(ctx, ownerID, streak)
	}
	return streak, nil
}

// MonthlyStudy returns the owner's populated study days for a month.
func (s *Service) MonthlyStudy(ctx context.Context, ownerID string, year, month int) ([]DayTotal, error) {
	if ownerID == "" {
		return nil, ErrAuth
	}
	if month < 1 || month > 12 || year < 1 {
		return nil, fmt.Errorf("%w: invalid year or month", ErrValidation)
	}

	if s.cache != nil {
		var cached []DayTotal
		if s.cache.GetMonth(ctx, ownerID, year, month, &cached) {
			aggCacheLookups.WithLabelValues("month", "hit").Inc()
			return cached, nil
		}
		aggCacheLookups.WithLabelValues("month", "miss").Inc()
	}

	start := fmt.Sprintf("%04d-%02d-01", year, month)
	end := fmt.Sprintf("%04d-%02d-31", year, month)
	sessions, err := s.store.TimerSessionsByDateRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	days := MonthlyCalendar(sessions, year, month)
	if s.cache != nil {
		s.cache.SetMonth(ctx, ownerID, year, month, days)
	}
	return days, nil
}

// Stats returns the raw rows and per-subject sums for an analytics range.
func (s *Service) Stats(ctx context.Context, ownerID, start, end string) (RangeStats, error) {
	if ownerID == "" {
		return RangeStats{}, ErrAuth
	}
	if !ValidDate(start) || !ValidDate(end) {
		return RangeStats{}, fmt.Errorf("%w: startDate and endDate must be YYYY-MM-DD", ErrValidation)
	}
	counts, err := s.store.QuestionCountsByDateRange(ctx, ownerID, start, end)
	if err != nil {
		return RangeStats{}, err
	}
	sessions, err := s.store.TimerSessionsByDateRange(ctx, ownerID, start, end)
	if err != nil {
		return RangeStats{}, err
	}
	return RangeStats{
		QuestionCounts: counts,
		TimerSessions:  sessions,
		BySubject:      GroupBySubject(sessions),
	}, nil
}

// NetResults returns the owner's saved exam snapshots.
func (s *Service) NetResults(ctx context.Context, ownerID string) ([]NetResult, error) {
	if ownerID == "" {
		return nil, ErrAuth
	}
	return s.store.ListNetResults(ctx, ownerID)
}

// CreateNetResult validates and persists an exam snapshot.
func (s *Service) CreateNetResult(ctx context.Context, ownerID string, nr NetResult) (NetResult, error) {
	if ownerID == "" {
		return NetResult{}, ErrAuth
	}
	switch nr.ExamType {
	case "TYT":
		if nr.AYTField != "" {
			return NetResult{}, fmt.Errorf("%w: aytField must be empty for TYT", ErrValidation)
		}
	case "AYT":
		switch nr.AYTField {
		case "sozel", "esit", "sayisal":
		case "":
			return NetResult{}, fmt.Errorf("%w: aytField required for AYT", ErrValidation)
		default:
			return NetResult{}, fmt.Errorf("%w: unknown aytField %q", ErrValidation, nr.AYTField)
		}
	default:
		return NetResult{}, fmt.Errorf("%w: examType must be TYT or AYT", ErrValidation)
	}
	if !ValidDate(nr.Date) {
		return NetResult{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if len(nr.SubjectScores) == 0 {
		return NetResult{}, fmt.Errorf("%w: subjectScores required", ErrValidation)
	}
	if _, err := strconv.ParseFloat(nr.TotalNet, 64); err != nil {
		return NetResult{}, fmt.Errorf("%w: totalNet must be a decimal string", ErrValidation)
	}

	nr.OwnerID = ownerID
	created, err := s.store.CreateNetResult(ctx, nr)
	if err == nil {
		netResultsCreated.Inc()
	}
	return created, err
}

// DeleteNetResult removes an owned exam snapshot.
func (s *Service) DeleteNetResult(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return ErrAuth
	}
	ok, err := s.store.DeleteNetResult(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
