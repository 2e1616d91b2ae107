package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	StatusCompleted   SessionStatus = "completed"
	StatusInterrupted SessionStatus = "interrupted"
	StatusSkipped     SessionStatus = "skipped"
)

// SessionRecord is the immutable history entry written once per finished
// session. It is the only input of range statistics.
type SessionRecord struct {
	ID             string      `json:"id" db:"id"`
	UserID         string      `json:"user_id" db:"user_id"`
	Category       string      `json:"category" db:"category"`
	Kind           SessionKind `json:"kind" db:"kind"`
	PlannedMinutes int         `json:"planned_minutes" db:"planned_minutes"`
	ActualMinutes  int         `json:"actual_minutes" db:"actual_minutes"`
	IsCompleted    bool        `json:"is_completed" db:"is_completed"`
	WasSkipped     bool        `json:"was_skipped" db:"was_skipped"`
	StartedAt      time.Time   `json:"started_at" db:"started_at"`
	EndedAt        time.Time   `json:"ended_at" db:"ended_at"`
	CycleNumber    int         `json:"cycle_number" db:"cycle_number"`
}

var sessionRecordNamespace = uuid.MustParse("6f1c2a52-9a7e-4d0b-8f43-2b8f0f5c9e11")

// SessionRecordID derives a stable record id from the session it closes, so a
// retried completion of the same session maps onto the same record.
func SessionRecordID(userID string, startedAt time.Time) string {
	key := userID + "|" + startedAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(sessionRecordNamespace, []byte(key)).String()
}

func NewSessionRecord(r SessionRecord) *SessionRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.ActualMinutes < 0 {
		r.ActualMinutes = 0
	}
	r.StartedAt = r.StartedAt.UTC()
	r.EndedAt = r.EndedAt.UTC()
	return &r
}

func (r *SessionRecord) Status() SessionStatus {
	switch {
	case r.WasSkipped:
		return StatusSkipped
	case r.IsCompleted:
		return StatusCompleted
	default:
		return StatusInterrupted
	}
}

// Counts reports whether the record takes part in totals and goal streaks.
func (r *SessionRecord) Counts() bool {
	s := r.Status()
	return s == StatusCompleted || s == StatusInterrupted
}

// SessionRecordFilter selects a user's records whose StartedAt lies in
// [From, To]. A zero Kind matches every kind.
type SessionRecordFilter struct {
	UserID string
	From   time.Time
	To     time.Time
	Kind   SessionKind
}

func (f SessionRecordFilter) Match(r *SessionRecord) bool {
	if r.UserID != f.UserID {
		return false
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && r.StartedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.StartedAt.After(f.To) {
		return false
	}
	return true
}
