package study

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a map-backed Store for tests and single-process runs. The
// question-count upsert does a linear scan under one lock, which is only safe
// because the whole store is serialized by that lock.
type MemStore struct {
	mu             sync.Mutex
	users          map[string]User
	todos          map[string]Todo
	questionCounts map[string]QuestionCount
	timerSessions  map[string]TimerSession
	netResults     map[string]NetResult
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:          make(map[string]User),
		todos:          make(map[string]Todo),
		questionCounts: make(map[string]QuestionCount),
		timerSessions:  make(map[string]TimerSession),
		netResults:     make(map[string]NetResult),
	}
}

var _ Store = (*MemStore)(nil)

func (m *MemStore) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *MemStore) UpsertUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			existing.FirstName = u.FirstName
			existing.LastName = u.LastName
			existing.ProfileImageURL = u.ProfileImageURL
			existing.UpdatedAt = now
			m.users[existing.ID] = existing
			return existing, nil
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = u
	return u, nil
}

func (m *MemStore) SaveRefreshToken(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (m *MemStore) ListTodos(_ context.Context, ownerID string) ([]Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []Todo
	for _, t := range m.todos {
		if t.OwnerID == ownerID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *MemStore) CreateTodo(_ context.Context, t Todo) (Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.todos[t.ID] = t
	return t, nil
}

func (m *MemStore) UpdateTodo(_ context.Context, ownerID, id string, upd TodoUpdate) (*Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	m.todos[id] = t
	return &t, nil
}

func (m *MemStore) DeleteTodo(_ context.Context, ownerID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	delete(m.todos, id)
	return true, nil
}

func (m *MemStore) QuestionCountsByDate(_ context.Context, ownerID, date string) ([]QuestionCount, error) {
	return m.filterCounts(func(qc QuestionCount) bool {
		return qc.OwnerID == ownerID && qc.Date == date
	}), nil
}

func (m *MemStore) QuestionCountsByDateRange(_ context.Context, ownerID, start, end string) ([]QuestionCount, error) {
	return m.filterCounts(func(qc QuestionCount) bool {
		return qc.OwnerID == ownerID && qc.Date >= start && qc.Date <= end
	}), nil
}

func (m *MemStore) filterCounts(keep func(QuestionCount) bool) []QuestionCount {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []QuestionCount
	for _, qc := range m.questionCounts {
		if keep(qc) {
			res = append(res, qc)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (m *MemStore) UpsertQuestionCount(_ context.Context, qc QuestionCount) (QuestionCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.questionCounts {
		if existing.OwnerID == qc.OwnerID && existing.Subject == qc.Subject && existing.Date == qc.Date {
			existing.Count = qc.Count
			m.questionCounts[existing.ID] = existing
			return existing, nil
		}
	}
	if qc.ID == "" {
		qc.ID = uuid.NewString()
	}
	m.questionCounts[qc.ID] = qc
	return qc, nil
}

func (m *MemStore) TimerSessionsByDate(_ context.Context, ownerID, date string) ([]TimerSession, error) {
	return m.filterSessions(func(s TimerSession) bool {
		return s.OwnerID == ownerID && s.Date == date
	}), nil
}

func (m *MemStore) TimerSessionsByDateRange(_ context.Context, ownerID, start, end string) ([]TimerSession, error) {
	return m.filterSessions(func(s TimerSession) bool {
		return s.OwnerID == ownerID && s.Date >= start && s.Date <= end
	}), nil
}

func (m *MemStore) filterSessions(keep func(TimerSession) bool) []TimerSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []TimerSession
	for _, s := range m.timerSessions {
		if keep(s) {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (m *MemStore) CreateTimerSession(_ context.Context, s TimerSession) (TimerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.timerSessions[s.ID] = s
	return s, nil
}

func (m *MemStore) ListNetResults(_ context.Context, ownerID string) ([]NetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []NetResult
	for _, nr := range m.netResults {
		if nr.OwnerID == ownerID {
			res = append(res, nr)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemStore) CreateNetResult(_ context.Context, nr NetResult) (NetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nr.ID == "" {
		nr.ID = uuid.NewString()
	}
	nr.CreatedAt = time.Now().UTC()
	scores := make(map[string]SubjectNet, len(nr.SubjectScores))
	for k, v := range nr.SubjectScores {
		scores[k] = v
	}
	nr.SubjectScores = scores
	m.netResults[nr.ID] = nr
	return nr, nil
}

func (m *MemStore) DeleteNetResult(_ context.Context, ownerID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nr, ok := m.netResults[id]
	if !ok || nr.OwnerID != ownerID {
		return false, nil
	}
	delete(m.netResults, id)
	return true, nil
}
