package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var _ domain.CategoryRepository = (*PostgresCategoryRepository)(nil)

type PostgresCategoryRepository struct {
	db *sqlx.DB
}

func NewPostgresCategoryRepository(db *sqlx.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

const categoryColumns = `id, user_id, name, color, is_default, total_sessions, total_minutes, created_at, updated_at`

// uniqueViolation reports whether err is a Postgres 23505, whichever driver
// produced it.
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var coded interface{ SQLState() string }
	if errors.As(err, &coded) {
		return coded.SQLState() == "23505"
	}
	return false
}

func (r *PostgresCategoryRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 ORDER BY is_default DESC, created_at ASC`

	cats := []*domain.Category{}
	if err := r.db.SelectContext(ctx, &cats, query, userID); err != nil {
		return nil, fmt.Errorf("categories query error: %w", err)
	}
	return cats, nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var c domain.Category
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &c, nil
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
        INSERT INTO categories (` + categoryColumns + `)
        VALUES (:id, :user_id, :name, :color, :is_default, :total_sessions, :total_minutes, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		if uniqueViolation(err) {
			return domain.ErrCategoryNameTaken
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $1, color = $2, updated_at = $3 WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, c.Name, c.Color, c.UpdatedAt, c.ID)
	if err != nil {
		if uniqueViolation(err) {
			return domain.ErrCategoryNameTaken
		}
		return fmt.Errorf("update query failed: %w", err)
	}
	return expectOne(res, domain.ErrCategoryNotFound)
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND is_default = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	return expectOne(res, domain.ErrCategoryNotFound)
}

func (r *PostgresCategoryRepository) AddSession(ctx context.Context, id string, minutes int) error {
	query := `
        UPDATE categories SET total_sessions = total_sessions + 1, total_minutes = total_minutes + $1, updated_at = NOW()
        WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, minutes, id)
	if err != nil {
		return fmt.Errorf("category totals update failed: %w", err)
	}
	return expectOne(res, domain.ErrCategoryNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
