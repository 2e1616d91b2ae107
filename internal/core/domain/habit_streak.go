package domain

import (
	"math"
	"sort"
	"time"
)

var ErrInvalidMonth = kindError(ErrInvalidArgument, "invalid month (must be 1-12)")

type HabitMonthStats struct {
	Year           int `json:"year"`
	Month          int `json:"month"`
	CompletedDays  int `json:"completed_days"`
	DaysInMonth    int `json:"days_in_month"`
	CompletionRate int `json:"completion_rate"`
	CurrentStreak  int `json:"current_streak"`
	LongestStreak  int `json:"longest_streak"`
}

type HabitSummary struct {
	HabitID        string `json:"habit_id"`
	Name           string `json:"name"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	CompletionRate int    `json:"completion_rate"`
}

type GlobalHabitStats struct {
	TotalHabits        int            `json:"total_habits"`
	TotalCurrentStreak int            `json:"total_current_streak"`
	BestLongestStreak  int            `json:"best_longest_streak"`
	AverageCompletion  int            `json:"average_completion_rate"`
	Message            string         `json:"message"`
	Habits             []HabitSummary `json:"habits"`
}

// CurrentStreak counts completed days walking back from today without a gap.
// No completed log for today means no current streak.
func CurrentStreak(logs []HabitLog, today time.Time) int {
	done := make(map[string]bool, len(logs))
	for _, l := range logs {
		if l.Completed {
			done[DayKey(l.Day)] = true
		}
	}

	streak := 0
	for day := today; done[DayKey(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// LongestStreak is the longest run of completed entries in day order. Only
// existing entries take part: days without a log do not break a run, a
// completed=false entry does.
func LongestStreak(logs []HabitLog) int {
	sorted := make([]HabitLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Day.Before(sorted[j].Day)
	})

	longest, run := 0, 0
	for _, l := range sorted {
		if !l.Completed {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

func ComputeStreaks(logs []HabitLog, today time.Time) (int, int) {
	return CurrentStreak(logs, today), LongestStreak(logs)
}

// MonthlyStats summarises one calendar month of h. Streaks are recomputed
// from the logs, not read from the caches.
func (h *Habit) MonthlyStats(year, month int, today time.Time) (*HabitMonthStats, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	completed := 0
	for _, l := range h.Logs {
		if l.Completed && l.Day.Year() == year && int(l.Day.Month()) == month {
			completed++
		}
	}

	days := daysIn(year, time.Month(month))
	current, longest := ComputeStreaks(h.Logs, today)

	return &HabitMonthStats{
		Year:           year,
		Month:          month,
		CompletedDays:  completed,
		DaysInMonth:    days,
		CompletionRate: percent(completed, days),
		CurrentStreak:  current,
		LongestStreak:  longest,
	}, nil
}

// BuildGlobalHabitStats aggregates every habit for the month containing
// today.
func BuildGlobalHabitStats(habits []*Habit, today time.Time) *GlobalHabitStats {
	out := &GlobalHabitStats{
		TotalHabits: len(habits),
		Habits:      make([]HabitSummary, 0, len(habits)),
	}

	rateSum := 0
	for _, h := range habits {
		ms, _ := h.MonthlyStats(today.Year(), int(today.Month()), today)

		out.TotalCurrentStreak += ms.CurrentStreak
		if ms.LongestStreak > out.BestLongestStreak {
			out.BestLongestStreak = ms.LongestStreak
		}
		rateSum += ms.CompletionRate

		out.Habits = append(out.Habits, HabitSummary{
			HabitID:        h.ID,
			Name:           h.Name,
			CurrentStreak:  ms.CurrentStreak,
			LongestStreak:  ms.LongestStreak,
			CompletionRate: ms.CompletionRate,
		})
	}

	if len(habits) > 0 {
		out.AverageCompletion = int(math.Round(float64(rateSum) / float64(len(habits))))
	}
	out.Message = MotivationMessage(out.AverageCompletion)

	return out
}

func MotivationMessage(rate int) string {
	switch {
	case rate >= 80:
		return "Outstanding! You're crushing your habits this month."
	case rate >= 60:
		return "Great work! Your consistency is paying off."
	case rate >= 40:
		return "Good progress. Keep building momentum."
	case rate >= 20:
		return "You've made a start. Small steps every day add up."
	default:
		return "Every day is a fresh start. Pick one habit and show up today."
	}
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
