package repository

import (
	"context"
	"os"
	"testing"

	"github.com/clario-app/clario/internal/config"
	"github.com/clario-app/clario/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := config.Default().DB
	cfg.Host = getEnv("DB_HOST", cfg.Host)
	cfg.Port = getEnv("DB_PORT", cfg.Port)
	cfg.User = getEnv("DB_USER", cfg.User)
	cfg.Password = getEnv("DB_PASSWORD", "secret")
	cfg.Name = getEnv("DB_NAME", cfg.Name)

	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	require.NoError(t, Migrate(context.Background(), db))
	cleanup(t, db)
	t.Cleanup(func() {
		cleanup(t, db)
		db.Close()
	})
	return db
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE habit_logs, habits, categories, session_records, timer_profiles, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

func createTestUser(t *testing.T, db *sqlx.DB, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(uuid.NewString(), email)
	require.NoError(t, err)
	u.PasswordHash = "hash"
	require.NoError(t, NewPostgresUserRepository(db).Create(context.Background(), u))
	return u
}

func TestPostgresUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "focus@clario.app")

	t.Run("Get by email and id", func(t *testing.T) {
		byEmail, err := repo.GetByEmail(ctx, "focus@clario.app")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, "hash", byEmail.PasswordHash)

		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		dup, _ := domain.NewUser(uuid.NewString(), "focus@clario.app")
		dup.PasswordHash = "hash"

		err := repo.Create(ctx, dup)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = repo.GetByEmail(ctx, "ghost@clario.app")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
