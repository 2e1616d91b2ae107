package domain

import "time"

const DayLayout = "2006-01-02"

// DateOf drops the time of day of t as observed in loc. The result is midnight
// UTC of that calendar date so that day keys compare equal across zones.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DayKey(day time.Time) string {
	return day.Format(DayLayout)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var ErrInvalidDay = kindError(ErrInvalidArgument, "invalid date (must be YYYY-MM-DD)")

// ParseDay reads a YYYY-MM-DD string as a calendar date in loc and returns
// its date-only key.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return DateOf(t, loc), nil
}

// LocalMidnight is the instant the date-only key day starts in loc.
func LocalMidnight(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}
