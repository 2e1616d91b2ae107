package repository

import (
	"context"
	"fmt"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.SessionRecordRepository = (*PostgresSessionRecordRepository)(nil)

type PostgresSessionRecordRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRecordRepository(db *sqlx.DB) *PostgresSessionRecordRepository {
	return &PostgresSessionRecordRepository{db: db}
}

func (r *PostgresSessionRecordRepository) Append(ctx context.Context, rec *domain.SessionRecord) (bool, error) {
	query := `
        INSERT INTO session_records (
            id, user_id, category, kind, planned_minutes, actual_minutes,
            is_completed, was_skipped, started_at, ended_at, cycle_number
        ) VALUES (
            :id, :user_id, :category, :kind, :planned_minutes, :actual_minutes,
            :is_completed, :was_skipped, :started_at, :ended_at, :cycle_number
        )
        ON CONFLICT (id) DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return false, fmt.Errorf("failed to insert session record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check inserted session record: %w", err)
	}
	return rows == 1, nil
}

func (r *PostgresSessionRecordRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}

func (r *PostgresSessionRecordRepository) Query(ctx context.Context, f domain.SessionRecordFilter) ([]*domain.SessionRecord, error) {
	query := `
        SELECT id, user_id, category, kind, planned_minutes, actual_minutes,
               is_completed, was_skipped, started_at, ended_at, cycle_number
        FROM session_records WHERE user_id = $1`
	args := []interface{}{f.UserID}

	if f.Kind != "" {
		args = append(args, f.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		query += fmt.Sprintf(" AND started_at >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		query += fmt.Sprintf(" AND started_at <= $%d", len(args))
	}
	query += " ORDER BY started_at ASC"

	records := []*domain.SessionRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("session records query error: %w", err)
	}
	return records, nil
}
