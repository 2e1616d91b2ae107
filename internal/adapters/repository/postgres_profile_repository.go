package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.ProfileRepository = (*PostgresProfileRepository)(nil)

type PostgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

type profileRow struct {
	UserID    string    `db:"user_id"`
	Settings  []byte    `db:"settings"`
	Session   []byte    `db:"session"`
	Stats     []byte    `db:"stats"`
	Version   int       `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row profileRow) toDomain() (*domain.TimerProfile, error) {
	p := &domain.TimerProfile{
		UserID:    row.UserID,
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Settings, &p.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := json.Unmarshal(row.Session, &p.Session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if err := json.Unmarshal(row.Stats, &p.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return p, nil
}

func (r *PostgresProfileRepository) Get(ctx context.Context, userID string) (*domain.TimerProfile, error) {
	query := `SELECT user_id, settings, session, stats, version, updated_at FROM timer_profiles WHERE user_id = $1`

	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return row.toDomain()
}

func (r *PostgresProfileRepository) Save(ctx context.Context, p *domain.TimerProfile) error {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	session, err := json.Marshal(p.Session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	stats, err := json.Marshal(p.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	var query string
	var args []interface{}
	if p.IsNew() {
		query = `
            INSERT INTO timer_profiles (user_id, settings, session, stats, version, updated_at)
            VALUES ($1, $2, $3, $4, 1, NOW())
            ON CONFLICT (user_id) DO NOTHING
            RETURNING version, updated_at`
		args = []interface{}{p.UserID, settings, session, stats}
	} else {
		query = `
            UPDATE timer_profiles SET settings=$1, session=$2, stats=$3,
                version = version + 1, updated_at = NOW()
            WHERE user_id=$4 AND version=$5
            RETURNING version, updated_at`
		args = []interface{}{settings, session, stats, p.UserID, p.Version}
	}

	var newVersion int
	var newUpdatedAt time.Time
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProfileConflict
		}
		return fmt.Errorf("failed to save timer profile: %w", err)
	}

	p.Version = newVersion
	p.UpdatedAt = newUpdatedAt
	return nil
}
