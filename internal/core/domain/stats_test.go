package domain_test

import (
	"testing"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(kind domain.SessionKind, category string, minutes int, completed, skipped bool, at time.Time) *domain.SessionRecord {
	return domain.NewSessionRecord(domain.SessionRecord{
		UserID:        "u1",
		Category:      category,
		Kind:          kind,
		ActualMinutes: minutes,
		IsCompleted:   completed,
		WasSkipped:    skipped,
		StartedAt:     at,
		EndedAt:       at.Add(time.Duration(minutes) * time.Minute),
	})
}

func TestRangeStart(t *testing.T) {
	// Saturday 2024-06-15 14:30 UTC
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	tests := []struct {
		name string
		r    domain.StatsRange
		loc  *time.Location
		want time.Time
	}{
		{name: "Day in UTC", r: domain.RangeDay, loc: time.UTC, want: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{name: "Week starts on Monday", r: domain.RangeWeek, loc: time.UTC, want: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{name: "Month", r: domain.RangeMonth, loc: time.UTC, want: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{name: "Day in Rome starts at 22:00 UTC the day before", r: domain.RangeDay, loc: rome, want: time.Date(2024, 6, 14, 22, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.RangeStart(tt.r, testNow, tt.loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}

	t.Run("Sunday belongs to the week that started on Monday", func(t *testing.T) {
		sunday := time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC)
		got, err := domain.RangeStart(domain.RangeWeek, sunday, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("Unknown range", func(t *testing.T) {
		_, err := domain.RangeStart("year", testNow, time.UTC)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})
}

func TestAggregateRange(t *testing.T) {
	t.Run("Empty history yields zero totals", func(t *testing.T) {
		out := domain.AggregateRange(nil)

		assert.Equal(t, 0, out.Sessions)
		assert.Equal(t, 0, out.FocusMinutes)
		assert.Empty(t, out.Categories)
	})

	t.Run("Sums completed and interrupted sessions per category, skips skipped", func(t *testing.T) {
		records := []*domain.SessionRecord{
			record(domain.KindFocus, "Work", 25, true, false, testNow),
			record(domain.KindFocus, "Work", 10, false, false, testNow),
			record(domain.KindShortBreak, "Work", 5, true, false, testNow),
			record(domain.KindFocus, "Art", 30, true, false, testNow),
			record(domain.KindLongBreak, "Art", 0, false, true, testNow),
		}

		out := domain.AggregateRange(records)

		assert.Equal(t, 4, out.Sessions)
		assert.Equal(t, 3, out.FocusSessions)
		assert.Equal(t, 65, out.FocusMinutes)
		assert.Equal(t, 5, out.BreakMinutes)
		assert.Equal(t, []domain.CategoryTotals{
			{Category: "Art", FocusMinutes: 30, Sessions: 1},
			{Category: "Work", FocusMinutes: 35, BreakMinutes: 5, Sessions: 3},
		}, out.Categories)
	})
}

func TestWalkGoalStreak(t *testing.T) {
	records := []*domain.SessionRecord{
		record(domain.KindFocus, "Work", 25, true, false, testNow),
		record(domain.KindFocus, "Work", 25, true, false, testNow.Add(-time.Hour)),
		record(domain.KindFocus, "Work", 25, false, false, testNow.AddDate(0, 0, -1)),
		record(domain.KindFocus, "Work", 25, true, false, testNow.AddDate(0, 0, -1)),
		record(domain.KindFocus, "Work", 25, true, false, testNow.AddDate(0, 0, -2)),
		record(domain.KindShortBreak, "Work", 5, true, false, testNow.AddDate(0, 0, -2)),
		record(domain.KindFocus, "Work", 0, false, true, testNow.AddDate(0, 0, -2)),
	}
	counts := domain.FocusCountsByDay(records, time.UTC)
	until := testToday.AddDate(0, 0, -30)

	t.Run("Goal 1 counts every day with a focus session", func(t *testing.T) {
		days, broken := domain.WalkGoalStreak(counts, 1, testToday, until)
		assert.Equal(t, 3, days)
		assert.True(t, broken)
	})

	t.Run("Goal 2 stops at the day with a single session", func(t *testing.T) {
		days, _ := domain.WalkGoalStreak(counts, 2, testToday, until)
		assert.Equal(t, 2, days)
	})

	t.Run("Today not qualifying yet gives zero", func(t *testing.T) {
		days, broken := domain.WalkGoalStreak(counts, 3, testToday, until)
		assert.Equal(t, 0, days)
		assert.True(t, broken)
	})

	t.Run("Window exhausted without a break asks for more history", func(t *testing.T) {
		days, broken := domain.WalkGoalStreak(counts, 1, testToday, testToday.AddDate(0, 0, -1))
		assert.Equal(t, 2, days)
		assert.False(t, broken)
	})
}

func TestSessionRecordFilter_Match(t *testing.T) {
	r := record(domain.KindFocus, "Work", 25, true, false, testNow)

	assert.True(t, domain.SessionRecordFilter{UserID: "u1"}.Match(r))
	assert.True(t, domain.SessionRecordFilter{UserID: "u1", From: testNow, To: testNow}.Match(r))
	assert.False(t, domain.SessionRecordFilter{UserID: "u2"}.Match(r))
	assert.False(t, domain.SessionRecordFilter{UserID: "u1", Kind: domain.KindShortBreak}.Match(r))
	assert.False(t, domain.SessionRecordFilter{UserID: "u1", From: testNow.Add(time.Second)}.Match(r))
}
