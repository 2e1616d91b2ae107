package domain

import (
	"context"
	"time"
)

type ProfileRepository interface {
	// Get returns the stored profile, or ErrProfileNotFound when the user
	// never saved one.
	Get(ctx context.Context, userID string) (*TimerProfile, error)

	// Save inserts a new profile (Version 0) or updates an existing one.
	// Updates must check Version and fail with ErrProfileConflict when it
	// moved; on success the profile carries its new Version.
	Save(ctx context.Context, profile *TimerProfile) error
}

type SessionRecordRepository interface {
	// Append persists an immutable record. Records are never updated.
	// Appending an id that already exists is a no-op and reports false.
	Append(ctx context.Context, record *SessionRecord) (bool, error)

	// Remove deletes a record by id. Removing a missing id is not an error.
	Remove(ctx context.Context, id string) error

	// Query returns the records matching filter ordered by StartedAt.
	Query(ctx context.Context, filter SessionRecordFilter) ([]*SessionRecord, error)
}

type CategoryRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]*Category, error)

	GetByID(ctx context.Context, id string) (*Category, error)

	Create(ctx context.Context, category *Category) error

	Update(ctx context.Context, category *Category) error

	Delete(ctx context.Context, id string) error

	// AddSession atomically bumps the running totals of a category.
	AddSession(ctx context.Context, id string, minutes int) error
}

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit, logs included, by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all live habits, logs included, of a user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// ListActiveIDs returns ids of every non-deleted, non-archived habit.
	ListActiveIDs(ctx context.Context) ([]string, error)

	// Update modifies the definition of an existing habit (optimistic lock on Version).
	Update(ctx context.Context, habit *Habit) error

	// SaveLog upserts one day's log and stores the habit's streak caches.
	SaveLog(ctx context.Context, habit *Habit, log HabitLog) error

	// ListLogs returns the logs of a habit between from and to (date-only, inclusive).
	ListLogs(ctx context.Context, habitID string, from, to time.Time) ([]HabitLog, error)

	// Delete performs a soft delete.
	Delete(ctx context.Context, id string) error

	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
