package services

import (
	"context"
	"errors"
	"time"
	_ "time/tzdata"

	"github.com/clario-app/clario/internal/core/domain"
)

// streakWindowDays is how much history a goal-streak walk loads per query.
const streakWindowDays = 90

type StatsService struct {
	profiles domain.ProfileRepository
	records  domain.SessionRecordRepository
	loc      *time.Location
	now      func() time.Time
}

func NewStatsService(profiles domain.ProfileRepository, records domain.SessionRecordRepository, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{
		profiles: profiles,
		records:  records,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *StatsService) SetClock(now func() time.Time) {
	s.now = now
}

type RangeInput struct {
	UserID   string
	Range    domain.StatsRange
	Timezone string
}

type StreakInput struct {
	UserID   string
	Goal     *int
	Timezone string
}

func (s *StatsService) location(tz string) (*time.Location, error) {
	if tz == "" {
		return s.loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, domain.ErrInvalidTimezone
	}
	return loc, nil
}

func (s *StatsService) RangeTotals(ctx context.Context, input RangeInput) (*domain.RangeTotals, error) {
	loc, err := s.location(input.Timezone)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from, err := domain.RangeStart(input.Range, now, loc)
	if err != nil {
		return nil, err
	}

	records, err := s.records.Query(ctx, domain.SessionRecordFilter{
		UserID: input.UserID,
		From:   from,
		To:     now,
	})
	if err != nil {
		return nil, err
	}

	totals := domain.AggregateRange(records)
	totals.Range = input.Range
	totals.Timezone = loc.String()
	totals.From = from
	totals.To = now

	return &totals, nil
}

// StreakLength counts consecutive days, ending today, on which the user
// finished at least goal focus sessions. It reads session history only.
func (s *StatsService) StreakLength(ctx context.Context, input StreakInput) (*domain.GoalStreak, error) {
	loc, err := s.location(input.Timezone)
	if err != nil {
		return nil, err
	}

	now := s.now()
	profile, err := s.profiles.Get(ctx, input.UserID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = domain.NewTimerProfile(input.UserID)
	} else if err != nil {
		return nil, err
	}
	profile.RollOver(now, s.loc)

	goal := profile.Settings.DailyGoal
	if input.Goal != nil {
		goal = *input.Goal
	}
	if goal < 1 {
		return nil, domain.ErrInvalidGoal
	}

	day := domain.DateOf(now, loc)
	total := 0

	for {
		until := day.AddDate(0, 0, -(streakWindowDays - 1))

		records, err := s.records.Query(ctx, domain.SessionRecordFilter{
			UserID: input.UserID,
			Kind:   domain.KindFocus,
			From:   domain.LocalMidnight(until, loc),
			To:     domain.LocalMidnight(day.AddDate(0, 0, 1), loc).Add(-time.Nanosecond),
		})
		if err != nil {
			return nil, err
		}

		days, broken := domain.WalkGoalStreak(domain.FocusCountsByDay(records, loc), goal, day, until)
		total += days
		if broken {
			break
		}
		day = until.AddDate(0, 0, -1)
	}

	return &domain.GoalStreak{
		Goal:        goal,
		StreakDays:  total,
		CachedDays:  profile.Stats.CurrentStreakDays,
		LongestDays: profile.Stats.LongestStreakDays,
	}, nil
}
