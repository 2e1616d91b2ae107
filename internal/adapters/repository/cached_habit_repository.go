package repository

import (
	"context"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitListTTL = 30 * time.Minute

// CachedHabitRepository keeps each user's habit list in Redis. Every write
// that can change a listed habit, including its streak counters, drops the
// owner's key. Logs and single-habit reads go straight to the store.
type CachedHabitRepository struct {
	store domain.HabitRepository
	rdb   *redis.Client
}

func NewCachedHabitRepository(store domain.HabitRepository, rdb *redis.Client) *CachedHabitRepository {
	return &CachedHabitRepository{store: store, rdb: rdb}
}

func habitListKey(userID string) string {
	return "habits:" + userID
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return readThrough(ctx, r.rdb, habitListKey(userID), habitListTTL, func() ([]*domain.Habit, error) {
		return r.store.ListByUserID(ctx, userID)
	})
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.store.GetByID(ctx, id)
}

func (r *CachedHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	return r.store.ListActiveIDs(ctx)
}

func (r *CachedHabitRepository) ListLogs(ctx context.Context, habitID string, from, to time.Time) ([]domain.HabitLog, error) {
	return r.store.ListLogs(ctx, habitID, from, to)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	return r.afterWrite(ctx, habit.UserID, r.store.Create(ctx, habit))
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	return r.afterWrite(ctx, habit.UserID, r.store.Update(ctx, habit))
}

func (r *CachedHabitRepository) SaveLog(ctx context.Context, habit *domain.Habit, entry domain.HabitLog) error {
	return r.afterWrite(ctx, habit.UserID, r.store.SaveLog(ctx, habit, entry))
}

// Delete resolves the owner first since the row is gone afterwards.
func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	owner := r.ownerOf(ctx, id)
	return r.afterWrite(ctx, owner, r.store.Delete(ctx, id))
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	if err := r.store.UpdateStreaks(ctx, id, current, longest); err != nil {
		return err
	}
	if owner := r.ownerOf(ctx, id); owner != "" {
		forget(ctx, r.rdb, habitListKey(owner))
	}
	return nil
}

func (r *CachedHabitRepository) afterWrite(ctx context.Context, userID string, err error) error {
	if err == nil && userID != "" {
		forget(ctx, r.rdb, habitListKey(userID))
	}
	return err
}

func (r *CachedHabitRepository) ownerOf(ctx context.Context, id string) string {
	habit, err := r.store.GetByID(ctx, id)
	if err != nil || habit == nil {
		return ""
	}
	return habit.UserID
}
