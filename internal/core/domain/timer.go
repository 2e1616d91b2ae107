package domain

import (
	"time"
)

var (
	ErrInvalidSettings      = kindError(ErrInvalidArgument, "timer settings out of range")
	ErrInvalidSessionKind   = kindError(ErrInvalidArgument, "invalid session kind (must be focus, short_break, or long_break)")
	ErrInvalidSessionValue  = kindError(ErrInvalidArgument, "session values cannot be negative and cycle must be at least 1")
	ErrInvalidDuration      = kindError(ErrInvalidArgument, "actual duration cannot be negative")
	ErrSessionAlreadyActive = kindError(ErrInvalidState, "a session is already running")
	ErrNoActiveSession      = kindError(ErrInvalidState, "no active session")
	ErrSkipFocus            = kindError(ErrInvalidOperation, "can only skip during breaks")
	ErrProfileConflict      = kindError(ErrConflict, "timer profile has been modified elsewhere")
	ErrProfileNotFound      = kindError(ErrNotFound, "timer profile not found")
)

type SessionKind string

const (
	KindFocus      SessionKind = "focus"
	KindShortBreak SessionKind = "short_break"
	KindLongBreak  SessionKind = "long_break"
)

func (k SessionKind) Valid() bool {
	switch k {
	case KindFocus, KindShortBreak, KindLongBreak:
		return true
	}
	return false
}

func (k SessionKind) IsBreak() bool {
	return k == KindShortBreak || k == KindLongBreak
}

type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionRunning SessionState = "running"
)

const (
	DefaultFocusMinutes      = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
	DefaultLongBreakAfter    = 4
	DefaultDailyGoal         = 8

	MaxFocusMinutes = 180
	MaxBreakMinutes = 60
	MaxCycles       = 24
)

type TimerSettings struct {
	FocusMinutes      int `json:"focus_minutes"`
	ShortBreakMinutes int `json:"short_break_minutes"`
	LongBreakMinutes  int `json:"long_break_minutes"`
	LongBreakAfter    int `json:"long_break_after"`
	DailyGoal         int `json:"daily_goal"`
}

func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		FocusMinutes:      DefaultFocusMinutes,
		ShortBreakMinutes: DefaultShortBreakMinutes,
		LongBreakMinutes:  DefaultLongBreakMinutes,
		LongBreakAfter:    DefaultLongBreakAfter,
		DailyGoal:         DefaultDailyGoal,
	}
}

func (s TimerSettings) Validate() error {
	if !within(s.FocusMinutes, 1, MaxFocusMinutes) ||
		!within(s.ShortBreakMinutes, 1, MaxBreakMinutes) ||
		!within(s.LongBreakMinutes, 1, MaxBreakMinutes) ||
		!within(s.LongBreakAfter, 1, MaxCycles) ||
		!within(s.DailyGoal, 1, MaxCycles) {
		return ErrInvalidSettings
	}
	return nil
}

// MinutesFor returns the configured length of a session of the given kind.
func (s TimerSettings) MinutesFor(kind SessionKind) int {
	switch kind {
	case KindShortBreak:
		return s.ShortBreakMinutes
	case KindLongBreak:
		return s.LongBreakMinutes
	default:
		return s.FocusMinutes
	}
}

func within(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

// TimerSession is the single per-user session slot. While idle it is the
// template for the next session: Kind and CycleNumber carry forward,
// SecondsRemaining and StartedAt are not meaningful.
type TimerSession struct {
	State            SessionState `json:"state"`
	Kind             SessionKind  `json:"kind"`
	CycleNumber      int          `json:"cycle_number"`
	Category         string       `json:"category"`
	SecondsRemaining int          `json:"seconds_remaining"`
	IsPaused         bool         `json:"is_paused"`
	StartedAt        *time.Time   `json:"started_at,omitempty"`
}

func IdleSession(kind SessionKind, cycle int, category string) TimerSession {
	if category == "" {
		category = DefaultCategoryName
	}
	return TimerSession{
		State:       SessionIdle,
		Kind:        kind,
		CycleNumber: cycle,
		Category:    category,
	}
}

func (s TimerSession) IsRunning() bool {
	return s.State == SessionRunning
}

type TimerStats struct {
	TotalCompletedFocusSessions int        `json:"total_completed_focus_sessions"`
	TotalFocusMinutes           int        `json:"total_focus_minutes"`
	CurrentStreakDays           int        `json:"current_streak_days"`
	LongestStreakDays           int        `json:"longest_streak_days"`
	CompletedFocusSessionsToday int        `json:"completed_focus_sessions_today"`
	LastCompletedFocusDate      *time.Time `json:"last_completed_focus_date,omitempty"`
	LastActiveDate              *time.Time `json:"last_active_date,omitempty"`
}

type TimerProfile struct {
	UserID    string        `json:"user_id"`
	Settings  TimerSettings `json:"settings"`
	Session   TimerSession  `json:"session"`
	Stats     TimerStats    `json:"stats"`
	Version   int           `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewTimerProfile is the profile a user gets before anything was persisted.
// Version 0 marks it as not yet stored.
func NewTimerProfile(userID string) *TimerProfile {
	return &TimerProfile{
		UserID:   userID,
		Settings: DefaultTimerSettings(),
		Session:  IdleSession(KindFocus, 1, DefaultCategoryName),
	}
}

func (p *TimerProfile) IsNew() bool {
	return p.Version == 0
}

type UpdateSettingsInput struct {
	FocusMinutes      *int
	ShortBreakMinutes *int
	LongBreakMinutes  *int
	LongBreakAfter    *int
	DailyGoal         *int
}

func (p *TimerProfile) UpdateSettings(in UpdateSettingsInput, now time.Time) error {
	next := p.Settings
	applyInt(&next.FocusMinutes, in.FocusMinutes)
	applyInt(&next.ShortBreakMinutes, in.ShortBreakMinutes)
	applyInt(&next.LongBreakMinutes, in.LongBreakMinutes)
	applyInt(&next.LongBreakAfter, in.LongBreakAfter)
	applyInt(&next.DailyGoal, in.DailyGoal)

	if err := next.Validate(); err != nil {
		return err
	}

	p.Settings = next
	p.UpdatedAt = now.UTC()
	return nil
}

func applyInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// RollOver applies the day-rollover rule: the first operation of a new
// calendar day (in loc) clears today's counter. A streak whose last focus
// completion is older than yesterday is no longer current.
func (p *TimerProfile) RollOver(now time.Time, loc *time.Location) {
	today := DateOf(now, loc)
	st := &p.Stats

	if st.LastActiveDate != nil && sameDay(*st.LastActiveDate, today) {
		return
	}

	st.CompletedFocusSessionsToday = 0
	st.LastActiveDate = &today

	if st.LastCompletedFocusDate == nil {
		st.CurrentStreakDays = 0
		return
	}
	last := DateOf(*st.LastCompletedFocusDate, loc)
	if last.Before(today.AddDate(0, 0, -1)) {
		st.CurrentStreakDays = 0
	}
}
