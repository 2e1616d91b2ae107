package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

const habitColumns = `id, user_id, name, description, color, icon, current_streak, longest_streak,
	version, created_at, updated_at, archived_at, deleted_at`

type logRow struct {
	HabitID   string    `db:"habit_id"`
	Day       time.Time `db:"day"`
	Completed bool      `db:"completed"`
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, user_id, name, description, color, icon,
            current_streak, longest_streak, version, created_at, updated_at, archived_at
        ) VALUES (
            :id, :user_id, :name, :description, :color, :icon,
            :current_streak, :longest_streak, 1, :created_at, :updated_at, :archived_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	var h domain.Habit
	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	logs, err := r.ListLogs(ctx, id, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	h.Logs = logs

	return &h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC`

	var habits []*domain.Habit
	if err := r.db.SelectContext(ctx, &habits, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	if len(habits) == 0 {
		return habits, nil
	}

	byID := make(map[string]*domain.Habit, len(habits))
	ids := make([]string, 0, len(habits))
	for _, h := range habits {
		h.Logs = []domain.HabitLog{}
		byID[h.ID] = h
		ids = append(ids, h.ID)
	}

	logQuery, args, err := sqlx.In(`SELECT habit_id, day, completed FROM habit_logs WHERE habit_id IN (?) ORDER BY day ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build logs query: %w", err)
	}

	var rows []logRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(logQuery), args...); err != nil {
		return nil, fmt.Errorf("logs query error: %w", err)
	}
	for _, row := range rows {
		h := byID[row.HabitID]
		h.Logs = append(h.Logs, domain.HabitLog{Day: row.Day.UTC(), Completed: row.Completed})
	}

	return habits, nil
}

func (r *PostgresHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT id FROM habits WHERE deleted_at IS NULL AND archived_at IS NULL`
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("active habits query error: %w", err)
	}
	return ids, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            name=$1, description=$2, color=$3, icon=$4,
            current_streak=$5, longest_streak=$6, archived_at=$7,
            updated_at=NOW(), version = version + 1
        WHERE id=$8 AND version=$9 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Name, h.Description, h.Color, h.Icon,
		h.CurrentStreak, h.LongestStreak, h.ArchivedAt,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.missingOrConflict(ctx, h.ID)
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) missingOrConflict(ctx context.Context, id string) error {
	var count int
	existsQuery := `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, existsQuery, id).Scan(&count); err != nil {
		return fmt.Errorf("existence check failed: %w", err)
	}
	if count == 0 {
		return domain.ErrHabitNotFound
	}
	return domain.ErrHabitConflict
}

// SaveLog upserts the log and the streak caches in one transaction, guarded
// by the habit's version.
func (r *PostgresHabitRepository) SaveLog(ctx context.Context, h *domain.Habit, log domain.HabitLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
        INSERT INTO habit_logs (habit_id, day, completed) VALUES ($1, $2, $3)
        ON CONFLICT (habit_id, day) DO UPDATE SET completed = EXCLUDED.completed`
	if _, err := tx.ExecContext(ctx, upsert, h.ID, log.Day.Format(domain.DayLayout), log.Completed); err != nil {
		return fmt.Errorf("failed to upsert habit log: %w", err)
	}

	streaks := `
        UPDATE habits SET current_streak=$1, longest_streak=$2, updated_at=NOW(), version = version + 1
        WHERE id=$3 AND version=$4 AND deleted_at IS NULL
        RETURNING version, updated_at`

	var newVersion int
	var newUpdatedAt time.Time
	if err := tx.QueryRowxContext(ctx, streaks, h.CurrentStreak, h.LongestStreak, h.ID, h.Version).Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.missingOrConflict(ctx, h.ID)
		}
		return fmt.Errorf("failed to store streaks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit habit log: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt
	return nil
}

// ListLogs returns the logs of a habit in day order. Zero bounds are open.
func (r *PostgresHabitRepository) ListLogs(ctx context.Context, habitID string, from, to time.Time) ([]domain.HabitLog, error) {
	query := `SELECT habit_id, day, completed FROM habit_logs WHERE habit_id = $1`
	args := []interface{}{habitID}

	if !from.IsZero() {
		args = append(args, from.Format(domain.DayLayout))
		query += fmt.Sprintf(" AND day >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to.Format(domain.DayLayout))
		query += fmt.Sprintf(" AND day <= $%d", len(args))
	}
	query += " ORDER BY day ASC"

	var rows []logRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("logs query error: %w", err)
	}

	logs := make([]domain.HabitLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, domain.HabitLog{Day: row.Day.UTC(), Completed: row.Completed})
	}
	return logs, nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE habits SET current_streak = $1, longest_streak = $2
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}
