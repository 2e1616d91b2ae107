package repository

import (
	"context"
	"errors"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.ProfileRepository = (*CachedProfileRepository)(nil)

const profileTTL = 10 * time.Minute

// CachedProfileRepository serves timer profiles from Redis. The cached copy
// carries its version, so a stale entry still loses the optimistic lock in
// the underlying store.
type CachedProfileRepository struct {
	store domain.ProfileRepository
	rdb   *redis.Client
}

func NewCachedProfileRepository(store domain.ProfileRepository, rdb *redis.Client) *CachedProfileRepository {
	return &CachedProfileRepository{store: store, rdb: rdb}
}

func profileKey(userID string) string {
	return "timer:" + userID
}

func (r *CachedProfileRepository) Get(ctx context.Context, userID string) (*domain.TimerProfile, error) {
	return readThrough(ctx, r.rdb, profileKey(userID), profileTTL, func() (*domain.TimerProfile, error) {
		return r.store.Get(ctx, userID)
	})
}

func (r *CachedProfileRepository) Save(ctx context.Context, p *domain.TimerProfile) error {
	err := r.store.Save(ctx, p)
	switch {
	case err == nil:
		remember(ctx, r.rdb, profileKey(p.UserID), p, profileTTL)
	case errors.Is(err, domain.ErrConflict):
		forget(ctx, r.rdb, profileKey(p.UserID))
	}
	return err
}
