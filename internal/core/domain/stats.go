package domain

import (
	"sort"
	"time"
)

var (
	ErrInvalidRange    = kindError(ErrInvalidArgument, "invalid range (must be day, week, or month)")
	ErrInvalidTimezone = kindError(ErrInvalidArgument, "unknown time zone")
	ErrInvalidGoal     = kindError(ErrInvalidArgument, "goal must be at least 1 session per day")
)

type StatsRange string

const (
	RangeDay   StatsRange = "day"
	RangeWeek  StatsRange = "week"
	RangeMonth StatsRange = "month"
)

type CategoryTotals struct {
	Category     string `json:"category"`
	FocusMinutes int    `json:"focus_minutes"`
	BreakMinutes int    `json:"break_minutes"`
	Sessions     int    `json:"sessions"`
}

type RangeTotals struct {
	Range         StatsRange       `json:"range"`
	Timezone      string           `json:"timezone"`
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	FocusMinutes  int              `json:"focus_minutes"`
	BreakMinutes  int              `json:"break_minutes"`
	Sessions      int              `json:"sessions"`
	FocusSessions int              `json:"focus_sessions"`
	Categories    []CategoryTotals `json:"categories"`
}

type GoalStreak struct {
	Goal        int `json:"goal"`
	StreakDays  int `json:"streak_days"`
	CachedDays  int `json:"cached_streak_days"`
	LongestDays int `json:"cached_longest_streak_days"`
}

// RangeStart returns the first instant of the day, week (Monday) or month
// containing now, as observed in loc.
func RangeStart(r StatsRange, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()

	switch r {
	case RangeDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	case RangeWeek:
		offset := (int(local.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc), nil
	case RangeMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), nil
	default:
		return time.Time{}, ErrInvalidRange
	}
}

// AggregateRange sums the counting records. Skipped sessions are ignored.
func AggregateRange(records []*SessionRecord) RangeTotals {
	var out RangeTotals
	byCategory := make(map[string]*CategoryTotals)

	for _, r := range records {
		if !r.Counts() {
			continue
		}

		ct, ok := byCategory[r.Category]
		if !ok {
			ct = &CategoryTotals{Category: r.Category}
			byCategory[r.Category] = ct
		}

		out.Sessions++
		ct.Sessions++
		if r.Kind == KindFocus {
			out.FocusSessions++
			out.FocusMinutes += r.ActualMinutes
			ct.FocusMinutes += r.ActualMinutes
		} else {
			out.BreakMinutes += r.ActualMinutes
			ct.BreakMinutes += r.ActualMinutes
		}
	}

	out.Categories = make([]CategoryTotals, 0, len(byCategory))
	for _, ct := range byCategory {
		out.Categories = append(out.Categories, *ct)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		return out.Categories[i].Category < out.Categories[j].Category
	})

	return out
}

// FocusCountsByDay counts counting focus records per local calendar day.
func FocusCountsByDay(records []*SessionRecord, loc *time.Location) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Kind != KindFocus || !r.Counts() {
			continue
		}
		counts[DayKey(DateOf(r.StartedAt, loc))]++
	}
	return counts
}

// WalkGoalStreak walks back from `from` to `until` (both date-only, inclusive)
// and counts days meeting goal. broken is false when every day in the window
// qualified and the walk may continue further back.
func WalkGoalStreak(counts map[string]int, goal int, from, until time.Time) (days int, broken bool) {
	for day := from; !day.Before(until); day = day.AddDate(0, 0, -1) {
		if counts[DayKey(day)] < goal {
			return days, true
		}
		days++
	}
	return days, false
}
