package repository

import (
	"context"
	"testing"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresProfileRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresProfileRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "timer@clario.app")

	_, err := repo.Get(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	p := domain.NewTimerProfile(user.ID)
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, 1, p.Version)

	loaded, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Settings, loaded.Settings)
	assert.Equal(t, p.Session, loaded.Session)

	require.NoError(t, loaded.Start(domain.StartSessionInput{Kind: domain.KindShortBreak}, nil, time.Now()))
	require.NoError(t, repo.Save(ctx, loaded))
	assert.Equal(t, 2, loaded.Version)

	assert.ErrorIs(t, repo.Save(ctx, p), domain.ErrProfileConflict, "stale version")
	assert.ErrorIs(t, repo.Save(ctx, domain.NewTimerProfile(user.ID)), domain.ErrConflict, "second insert")
}

func TestPostgresSessionRecordRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresSessionRecordRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "records@clario.app")

	base := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	for i, kind := range []domain.SessionKind{domain.KindFocus, domain.KindShortBreak, domain.KindFocus} {
		rec := domain.NewSessionRecord(domain.SessionRecord{
			UserID:        user.ID,
			Category:      domain.DefaultCategoryName,
			Kind:          kind,
			ActualMinutes: 25,
			IsCompleted:   true,
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
			EndedAt:       base.Add(time.Duration(i)*time.Hour + 25*time.Minute),
			CycleNumber:   1,
		})
		inserted, err := repo.Append(ctx, rec)
		require.NoError(t, err)
		require.True(t, inserted)

		again, err := repo.Append(ctx, rec)
		require.NoError(t, err)
		assert.False(t, again, "duplicate id is ignored")
	}

	all, err := repo.Query(ctx, domain.SessionRecordFilter{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].StartedAt.Before(all[2].StartedAt))

	focus, err := repo.Query(ctx, domain.SessionRecordFilter{UserID: user.ID, Kind: domain.KindFocus, From: base.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, focus, 1)
	assert.Equal(t, domain.KindFocus, focus[0].Kind)

	require.NoError(t, repo.Remove(ctx, focus[0].ID))
	all, err = repo.Query(ctx, domain.SessionRecordFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostgresCategoryRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresCategoryRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "cats@clario.app")

	def := domain.NewDefaultCategory(user.ID)
	require.NoError(t, repo.Create(ctx, def))

	work, err := domain.NewCategory(user.ID, "Work", "", []*domain.Category{def})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, work))

	dup, err := domain.NewCategory(user.ID, "WORK", "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrCategoryNameTaken)

	require.NoError(t, repo.AddSession(ctx, work.ID, 25))
	require.NoError(t, repo.AddSession(ctx, work.ID, 30))

	got, err := repo.GetByID(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalSessions)
	assert.Equal(t, 55, got.TotalMinutes)

	list, err := repo.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsDefault)

	assert.ErrorIs(t, repo.Delete(ctx, def.ID), domain.ErrCategoryNotFound, "default rows are never deleted")
	require.NoError(t, repo.Delete(ctx, work.ID))
	_, err = repo.GetByID(ctx, work.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
