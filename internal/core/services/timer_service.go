package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
)

// TimerService runs every state machine operation as one
// load, mutate, save cycle on the user's profile.
type TimerService struct {
	profiles   domain.ProfileRepository
	records    domain.SessionRecordRepository
	categories *CategoryService
	loc        *time.Location
	now        func() time.Time
}

func NewTimerService(profiles domain.ProfileRepository, records domain.SessionRecordRepository, categories *CategoryService, loc *time.Location) *TimerService {
	if loc == nil {
		loc = time.UTC
	}
	return &TimerService{
		profiles:   profiles,
		records:    records,
		categories: categories,
		loc:        loc,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (s *TimerService) SetClock(now func() time.Time) {
	s.now = now
}

type StartSessionInput struct {
	UserID         string
	Kind           domain.SessionKind
	Category       string
	PlannedSeconds int
	CycleNumber    *int
}

type UpdateSessionInput struct {
	UserID           string
	SecondsRemaining *int
	IsPaused         *bool
	CycleNumber      *int
}

type CompleteSessionInput struct {
	UserID        string
	ActualSeconds int
	IsCompleted   bool
	WasSkipped    bool
}

type UpdateSettingsInput struct {
	UserID            string
	FocusMinutes      *int
	ShortBreakMinutes *int
	LongBreakMinutes  *int
	LongBreakAfter    *int
	DailyGoal         *int
}

func (s *TimerService) load(ctx context.Context, userID string, now time.Time) (*domain.TimerProfile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = domain.NewTimerProfile(userID)
	} else if err != nil {
		return nil, err
	}

	profile.RollOver(now, s.loc)
	return profile, nil
}

// GetState returns the current profile with the day rollover applied. The
// rolled-over view is not persisted.
func (s *TimerService) GetState(ctx context.Context, userID string) (*domain.TimerProfile, error) {
	return s.load(ctx, userID, s.now())
}

func (s *TimerService) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*domain.TimerProfile, error) {
	now := s.now()
	profile, err := s.load(ctx, input.UserID, now)
	if err != nil {
		return nil, err
	}

	err = profile.UpdateSettings(domain.UpdateSettingsInput{
		FocusMinutes:      input.FocusMinutes,
		ShortBreakMinutes: input.ShortBreakMinutes,
		LongBreakMinutes:  input.LongBreakMinutes,
		LongBreakAfter:    input.LongBreakAfter,
		DailyGoal:         input.DailyGoal,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *TimerService) Start(ctx context.Context, input StartSessionInput) (*domain.TimerProfile, error) {
	now := s.now()
	profile, err := s.load(ctx, input.UserID, now)
	if err != nil {
		return nil, err
	}

	cats, err := s.categories.List(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	err = profile.Start(domain.StartSessionInput{
		Kind:           input.Kind,
		Category:       input.Category,
		PlannedSeconds: input.PlannedSeconds,
		CycleNumber:    input.CycleNumber,
	}, cats, now)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *TimerService) Update(ctx context.Context, input UpdateSessionInput) (*domain.TimerProfile, error) {
	now := s.now()
	profile, err := s.load(ctx, input.UserID, now)
	if err != nil {
		return nil, err
	}

	err = profile.Update(domain.UpdateSessionInput{
		SecondsRemaining: input.SecondsRemaining,
		IsPaused:         input.IsPaused,
		CycleNumber:      input.CycleNumber,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *TimerService) Complete(ctx context.Context, input CompleteSessionInput) (*domain.CompletionResult, error) {
	return s.finish(ctx, input.UserID, func(p *domain.TimerProfile, cats []*domain.Category, now time.Time) (*domain.CompletionResult, error) {
		return p.Complete(domain.CompleteSessionInput{
			ActualSeconds: input.ActualSeconds,
			IsCompleted:   input.IsCompleted,
			WasSkipped:    input.WasSkipped,
		}, cats, now, s.loc)
	})
}

func (s *TimerService) Skip(ctx context.Context, userID string) (*domain.CompletionResult, error) {
	return s.finish(ctx, userID, func(p *domain.TimerProfile, cats []*domain.Category, now time.Time) (*domain.CompletionResult, error) {
		return p.Skip(cats, now, s.loc)
	})
}

func (s *TimerService) Reset(ctx context.Context, userID string) (*domain.TimerProfile, error) {
	now := s.now()
	profile, err := s.load(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	profile.Reset(now)

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

type finishFunc func(p *domain.TimerProfile, cats []*domain.Category, now time.Time) (*domain.CompletionResult, error)

// finish appends the session record before saving the profile. A failed
// append leaves the session running so the call can be retried, and a failed
// save takes back the record this call inserted. Category credit is granted
// only once both writes succeeded.
func (s *TimerService) finish(ctx context.Context, userID string, fn finishFunc) (*domain.CompletionResult, error) {
	now := s.now()
	profile, err := s.load(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	cats, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := fn(profile, cats, now)
	if err != nil {
		return nil, err
	}

	inserted, err := s.records.Append(ctx, result.Record)
	if err != nil {
		return nil, fmt.Errorf("append session record: %w", err)
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		if inserted {
			if rmErr := s.records.Remove(ctx, result.Record.ID); rmErr != nil {
				log.Printf("[ERROR] removing record %s after failed save: %v", result.Record.ID, rmErr)
			}
		}
		return nil, err
	}

	if err := s.categories.Credit(ctx, result.Credit); err != nil {
		log.Printf("[ERROR] crediting category %s for user %s: %v", result.Credit.CategoryID, userID, err)
	}

	return result, nil
}
