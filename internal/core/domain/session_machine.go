package domain

import (
	"time"
)

type StartSessionInput struct {
	Kind           SessionKind
	Category       string
	PlannedSeconds int
	CycleNumber    *int
}

type UpdateSessionInput struct {
	SecondsRemaining *int
	IsPaused         *bool
	CycleNumber      *int
}

type CompleteSessionInput struct {
	ActualSeconds int
	IsCompleted   bool
	WasSkipped    bool
}

// CategoryCredit is the running-total increment owed to a category after a
// completed focus session.
type CategoryCredit struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Minutes    int    `json:"minutes"`
}

type CompletionResult struct {
	NextKind SessionKind     `json:"next_kind"`
	Stats    TimerStats      `json:"stats"`
	Session  TimerSession    `json:"session"`
	Record   *SessionRecord  `json:"record"`
	Credit   *CategoryCredit `json:"credit,omitempty"`
}

// Start moves an idle profile into a running session. A focus session
// started with an explicit category needs one the user owns. Without one the
// idle session's category is reused, falling back to the default category
// when it no longer exists. Breaks always fall back to the default.
func (p *TimerProfile) Start(in StartSessionInput, categories []*Category, now time.Time) error {
	if p.Session.IsRunning() {
		return ErrSessionAlreadyActive
	}
	if !in.Kind.Valid() {
		return ErrInvalidSessionKind
	}

	explicit := in.Category != ""
	name := in.Category
	if !explicit {
		name = p.Session.Category
	}

	cat := FindCategory(categories, name)
	if cat == nil {
		if explicit && in.Kind == KindFocus {
			return ErrCategoryNotFound
		}
		name = DefaultCategoryName
	} else {
		name = cat.Name
	}

	cycle := p.Session.CycleNumber
	if in.CycleNumber != nil {
		if *in.CycleNumber < 1 {
			return ErrInvalidSessionValue
		}
		cycle = *in.CycleNumber
	}
	if cycle < 1 {
		cycle = 1
	}

	planned := in.PlannedSeconds
	if planned < 0 {
		return ErrInvalidSessionValue
	}
	if planned == 0 {
		planned = p.Settings.MinutesFor(in.Kind) * 60
	}

	startedAt := now.UTC()
	p.Session = TimerSession{
		State:            SessionRunning,
		Kind:             in.Kind,
		CycleNumber:      cycle,
		Category:         name,
		SecondsRemaining: planned,
		IsPaused:         false,
		StartedAt:        &startedAt,
	}
	p.UpdatedAt = startedAt
	return nil
}

// Update is a periodic checkpoint of the running session. Nil fields are left
// as they are.
func (p *TimerProfile) Update(in UpdateSessionInput, now time.Time) error {
	if !p.Session.IsRunning() {
		return ErrNoActiveSession
	}
	if in.SecondsRemaining != nil && *in.SecondsRemaining < 0 {
		return ErrInvalidSessionValue
	}
	if in.CycleNumber != nil && *in.CycleNumber < 1 {
		return ErrInvalidSessionValue
	}

	applyInt(&p.Session.SecondsRemaining, in.SecondsRemaining)
	applyInt(&p.Session.CycleNumber, in.CycleNumber)
	if in.IsPaused != nil {
		p.Session.IsPaused = *in.IsPaused
	}
	p.UpdatedAt = now.UTC()
	return nil
}

// Complete ends the running session, emits its record and parks the profile
// on the next kind in the cycle.
func (p *TimerProfile) Complete(in CompleteSessionInput, categories []*Category, now time.Time, loc *time.Location) (*CompletionResult, error) {
	if !p.Session.IsRunning() {
		return nil, ErrNoActiveSession
	}
	if in.ActualSeconds < 0 {
		return nil, ErrInvalidDuration
	}

	next := *p
	next.RollOver(now, loc)

	sess := next.Session
	cat := FindCategory(categories, sess.Category)
	if cat == nil {
		cat = FindCategory(categories, DefaultCategoryName)
	}
	categoryName := DefaultCategoryName
	if cat != nil {
		categoryName = cat.Name
	}

	startedAt := now.UTC()
	recordID := ""
	if sess.StartedAt != nil {
		startedAt = *sess.StartedAt
		recordID = SessionRecordID(next.UserID, startedAt)
	}

	record := NewSessionRecord(SessionRecord{
		ID:             recordID,
		UserID:         next.UserID,
		Category:       categoryName,
		Kind:           sess.Kind,
		PlannedMinutes: next.Settings.MinutesFor(sess.Kind),
		ActualMinutes:  in.ActualSeconds / 60,
		IsCompleted:    in.IsCompleted,
		WasSkipped:     in.WasSkipped,
		StartedAt:      startedAt,
		EndedAt:        now.UTC(),
		CycleNumber:    sess.CycleNumber,
	})

	var credit *CategoryCredit
	if sess.Kind == KindFocus && in.IsCompleted && !in.WasSkipped {
		st := &next.Stats
		st.TotalCompletedFocusSessions++
		st.TotalFocusMinutes += record.ActualMinutes
		st.CompletedFocusSessionsToday++
		completedAt := now.UTC()
		st.LastCompletedFocusDate = &completedAt

		if st.CompletedFocusSessionsToday == 1 {
			st.CurrentStreakDays++
			if st.CurrentStreakDays > st.LongestStreakDays {
				st.LongestStreakDays = st.CurrentStreakDays
			}
		}

		if cat != nil {
			credit = &CategoryCredit{
				CategoryID: cat.ID,
				Name:       cat.Name,
				Minutes:    record.ActualMinutes,
			}
		}
	}

	nextKind, nextCycle := NextInCycle(sess.Kind, sess.CycleNumber, next.Settings.LongBreakAfter)
	next.Session = IdleSession(nextKind, nextCycle, categoryName)
	next.UpdatedAt = now.UTC()

	*p = next

	return &CompletionResult{
		NextKind: nextKind,
		Stats:    p.Stats,
		Session:  p.Session,
		Record:   record,
		Credit:   credit,
	}, nil
}

// Skip abandons a running break.
func (p *TimerProfile) Skip(categories []*Category, now time.Time, loc *time.Location) (*CompletionResult, error) {
	if !p.Session.IsRunning() {
		return nil, ErrNoActiveSession
	}
	if p.Session.Kind == KindFocus {
		return nil, ErrSkipFocus
	}
	return p.Complete(CompleteSessionInput{ActualSeconds: 0, IsCompleted: false, WasSkipped: true}, categories, now, loc)
}

// Reset discards any running session and starts the cycle over. Stats are
// never touched.
func (p *TimerProfile) Reset(now time.Time) {
	p.Session = IdleSession(KindFocus, 1, p.Session.Category)
	p.UpdatedAt = now.UTC()
}

// NextInCycle applies the cycle law: every longBreakAfter-th focus session is
// followed by a long break and a fresh cycle, others by a short break.
// Breaks always lead back to focus on the same cycle.
func NextInCycle(kind SessionKind, cycle, longBreakAfter int) (SessionKind, int) {
	if kind != KindFocus {
		return KindFocus, cycle
	}
	if cycle >= longBreakAfter {
		return KindLongBreak, 1
	}
	return KindShortBreak, cycle + 1
}
