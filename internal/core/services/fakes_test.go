package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

type fakeProfiles struct {
	mu            sync.Mutex
	store         map[string]*domain.TimerProfile
	saves         int
	simulateError error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{store: make(map[string]*domain.TimerProfile)}
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*domain.TimerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.simulateError != nil {
		return nil, f.simulateError
	}
	p, ok := f.store[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProfiles) Save(ctx context.Context, profile *domain.TimerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.simulateError != nil {
		return f.simulateError
	}
	current, ok := f.store[profile.UserID]
	if ok && current.Version != profile.Version {
		return domain.ErrProfileConflict
	}
	if !ok && profile.Version != 0 {
		return domain.ErrProfileConflict
	}
	profile.Version++
	clone := *profile
	f.store[profile.UserID] = &clone
	f.saves++
	return nil
}

type fakeRecords struct {
	mu          sync.Mutex
	records     []*domain.SessionRecord
	appendError error
}

func (f *fakeRecords) Append(ctx context.Context, r *domain.SessionRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendError != nil {
		return false, f.appendError
	}
	for _, existing := range f.records {
		if existing.ID == r.ID {
			return false, nil
		}
	}
	f.records = append(f.records, r)
	return true, nil
}

func (f *fakeRecords) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRecords) Query(ctx context.Context, filter domain.SessionRecordFilter) ([]*domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.SessionRecord
	for _, r := range f.records {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

type fakeCategories struct {
	mu    sync.Mutex
	store map[string]*domain.Category
	order []string
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{store: make(map[string]*domain.Category)}
}

func (f *fakeCategories) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Category
	for _, id := range f.order {
		if c, ok := f.store[id]; ok && c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeCategories) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.store[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCategories) Create(ctx context.Context, c *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *c
	f.store[c.ID] = &clone
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeCategories) Update(ctx context.Context, c *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.store[c.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	clone := *c
	f.store[c.ID] = &clone
	return nil
}

func (f *fakeCategories) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.store[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(f.store, id)
	return nil
}

func (f *fakeCategories) AddSession(ctx context.Context, id string, minutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.store[id]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	c.TotalSessions++
	c.TotalMinutes += minutes
	return nil
}

type MockRepo struct {
	mu            sync.Mutex
	store         map[string]*domain.Habit
	streakUpdates int
	simulateError error
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		store: make(map[string]*domain.Habit),
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	clone := *h
	clone.Logs = append([]domain.HabitLog(nil), h.Logs...)
	return &clone
}

func (m *MockRepo) Create(ctx context.Context, habit *domain.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return m.simulateError
	}
	m.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	h, ok := m.store[id]
	if !ok || h.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(h), nil
}

func (m *MockRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Habit
	for _, h := range m.store {
		if h.UserID == userID && h.DeletedAt == nil {
			list = append(list, cloneHabit(h))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *MockRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, h := range m.store {
		if h.DeletedAt == nil && h.ArchivedAt == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockRepo) Update(ctx context.Context, habit *domain.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return m.simulateError
	}
	current, ok := m.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if current.Version != habit.Version {
		return domain.ErrHabitConflict
	}
	habit.Version++
	m.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (m *MockRepo) SaveLog(ctx context.Context, habit *domain.Habit, log domain.HabitLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return m.simulateError
	}
	if _, ok := m.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	m.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (m *MockRepo) ListLogs(ctx context.Context, habitID string, from, to time.Time) ([]domain.HabitLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[habitID]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	out := []domain.HabitLog{}
	for _, l := range h.Logs {
		if !l.Day.Before(from) && !l.Day.After(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	now := time.Now().UTC()
	h.DeletedAt = &now
	h.Version++
	return nil
}

func (m *MockRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	m.streakUpdates++
	return nil
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *recordingQueue) Enqueue(habitID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, habitID)
}
