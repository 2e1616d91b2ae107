package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
)

var (
	_ domain.HabitRepository         = (*InMemoryHabitRepository)(nil)
	_ domain.ProfileRepository       = (*InMemoryProfileRepository)(nil)
	_ domain.SessionRecordRepository = (*InMemorySessionRecordRepository)(nil)
	_ domain.CategoryRepository      = (*InMemoryCategoryRepository)(nil)
	_ domain.UserRepository          = (*InMemoryUserRepository)(nil)
)

// In-memory repositories hand out copies so callers never share state with
// the store.

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func copyHabit(h *domain.Habit) *domain.Habit {
	c := *h
	c.Logs = append([]domain.HabitLog{}, h.Logs...)
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit.Version = 1
	r.store[habit.ID] = copyHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) live(id string) (*domain.Habit, bool) {
	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return nil, false
	}
	return h, true
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.live(id)
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return copyHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			habits = append(habits, copyHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for id, h := range r.store {
		if h.DeletedAt == nil && h.ArchivedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.live(habit.ID)
	if !ok {
		return domain.ErrHabitNotFound
	}
	if current.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	next := copyHabit(habit)
	next.Logs = current.Logs
	r.store[habit.ID] = next
	return nil
}

func (r *InMemoryHabitRepository) SaveLog(ctx context.Context, habit *domain.Habit, log domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.live(habit.ID)
	if !ok {
		return domain.ErrHabitNotFound
	}
	if current.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	logs := append([]domain.HabitLog{}, current.Logs...)
	replaced := false
	for i := range logs {
		if logs[i].Day.Equal(log.Day) {
			logs[i] = log
			replaced = true
		}
	}
	if !replaced {
		logs = append(logs, log)
		sort.Slice(logs, func(i, j int) bool { return logs[i].Day.Before(logs[j].Day) })
	}

	current.Logs = logs
	current.CurrentStreak = habit.CurrentStreak
	current.LongestStreak = habit.LongestStreak
	current.Version++
	current.UpdatedAt = time.Now().UTC()

	habit.Version = current.Version
	habit.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *InMemoryHabitRepository) ListLogs(ctx context.Context, habitID string, from, to time.Time) ([]domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.live(habitID)
	if !ok {
		return nil, domain.ErrHabitNotFound
	}

	out := []domain.HabitLog{}
	for _, l := range h.Logs {
		if !from.IsZero() && l.Day.Before(from) {
			continue
		}
		if !to.IsZero() && l.Day.After(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.live(id)
	if !ok {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	h.DeletedAt = &now
	h.UpdatedAt = now
	h.Version++
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.live(id)
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	return nil
}

type InMemoryProfileRepository struct {
	store map[string]domain.TimerProfile

	mu sync.RWMutex
}

func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		store: make(map[string]domain.TimerProfile),
	}
}

func (r *InMemoryProfileRepository) Get(ctx context.Context, userID string) (*domain.TimerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (r *InMemoryProfileRepository) Save(ctx context.Context, profile *domain.TimerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[profile.UserID]
	switch {
	case profile.IsNew() && ok:
		return domain.ErrProfileConflict
	case !profile.IsNew() && (!ok || current.Version != profile.Version):
		return domain.ErrProfileConflict
	}

	profile.Version++
	profile.UpdatedAt = time.Now().UTC()
	r.store[profile.UserID] = *profile
	return nil
}

type InMemorySessionRecordRepository struct {
	records []domain.SessionRecord

	mu sync.RWMutex
}

func NewInMemorySessionRecordRepository() *InMemorySessionRecordRepository {
	return &InMemorySessionRecordRepository{}
}

func (r *InMemorySessionRecordRepository) Append(ctx context.Context, record *domain.SessionRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.ID == record.ID {
			return false, nil
		}
	}
	r.records = append(r.records, *record)
	return true, nil
}

func (r *InMemorySessionRecordRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *InMemorySessionRecordRepository) Query(ctx context.Context, filter domain.SessionRecordFilter) ([]*domain.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.SessionRecord{}
	for i := range r.records {
		rec := r.records[i]
		if filter.Match(&rec) {
			out = append(out, &rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

type InMemoryCategoryRepository struct {
	store map[string]domain.Category

	mu sync.RWMutex
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{
		store: make(map[string]domain.Category),
	}
}

func (r *InMemoryCategoryRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cats := []*domain.Category{}
	for _, c := range r.store {
		if c.UserID == userID {
			c := c
			cats = append(cats, &c)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].IsDefault != cats[j].IsDefault {
			return cats[i].IsDefault
		}
		return cats[i].CreatedAt.Before(cats[j].CreatedAt)
	})
	return cats, nil
}

func (r *InMemoryCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.store[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *InMemoryCategoryRepository) nameTaken(c *domain.Category) bool {
	for id, other := range r.store {
		if id != c.ID && other.UserID == c.UserID && strings.EqualFold(other.Name, c.Name) {
			return true
		}
	}
	return false
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(c) {
		return domain.ErrCategoryNameTaken
	}
	r.store[c.ID] = *c
	return nil
}

func (r *InMemoryCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[c.ID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	if r.nameTaken(c) {
		return domain.ErrCategoryNameTaken
	}
	current.Name = c.Name
	current.Color = c.Color
	current.UpdatedAt = c.UpdatedAt
	r.store[c.ID] = current
	return nil
}

func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.store[id]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	if c.IsDefault {
		return domain.ErrDefaultCategory
	}
	delete(r.store, id)
	return nil
}

func (r *InMemoryCategoryRepository) AddSession(ctx context.Context, id string, minutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.store[id]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	c.TotalSessions++
	c.TotalMinutes += minutes
	c.UpdatedAt = time.Now().UTC()
	r.store[id] = c
	return nil
}

type InMemoryUserRepository struct {
	byID    map[string]domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrEmailAlreadyExists
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}
