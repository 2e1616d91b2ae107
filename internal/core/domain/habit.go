package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound      = kindError(ErrNotFound, "habit not found")
	ErrHabitNameEmpty     = kindError(ErrInvalidArgument, "habit name cannot be empty")
	ErrHabitNameTooLong   = kindError(ErrInvalidArgument, "habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = kindError(ErrInvalidArgument, "habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = kindError(ErrInvalidArgument, "invalid user id")
	ErrHabitArchived      = kindError(ErrInvalidOperation, "cannot update an archived habit")
	ErrHabitLogInFuture   = kindError(ErrInvalidArgument, "cannot log a habit for a future date")
	ErrHabitConflict      = kindError(ErrConflict, "habit has been modified elsewhere")
	ErrInvalidDateRange   = kindError(ErrInvalidArgument, "from must not be after to")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultIcon     = "default_icon"
	MaxHabitNameLen = 100
	MaxDescLen      = 500
)

// HabitLog marks one calendar day. Day is always a date-only value.
type HabitLog struct {
	Day       time.Time `json:"day" db:"day"`
	Completed bool      `json:"completed" db:"completed"`
}

type Habit struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description,omitempty" db:"description"`
	Color         string     `json:"color" db:"color"`
	Icon          string     `json:"icon" db:"icon"`
	Logs          []HabitLog `json:"logs" db:"-"`
	CurrentStreak int        `json:"current_streak" db:"current_streak"`
	LongestStreak int        `json:"longest_streak" db:"longest_streak"`
	Version       int        `json:"version" db:"version"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func validateHabit(name, desc, color string) (string, string, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return "", "", ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(trimmedName) > MaxHabitNameLen {
		return "", "", ErrHabitNameTooLong
	}

	trimmedDesc := strings.TrimSpace(desc)
	if utf8.RuneCountInString(trimmedDesc) > MaxDescLen {
		return "", "", ErrHabitDescTooLong
	}

	if color != "" && !colorRegex.MatchString(color) {
		return "", "", ErrInvalidColor
	}

	return trimmedName, trimmedDesc, nil
}

func NewHabit(userID, name, description, color, icon string) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, cleanDesc, err := validateHabit(name, description, color)
	if err != nil {
		return nil, err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        cleanName,
		Description: cleanDesc,
		Color:       color,
		Icon:        icon,
		Logs:        []HabitLog{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (h *Habit) Update(name, description, color, icon string) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	cleanName, cleanDesc, err := validateHabit(name, description, color)
	if err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	h.Name = cleanName
	h.Description = cleanDesc
	h.Color = color
	h.Icon = icon
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

// UpdateStreak stores freshly computed streak caches.
func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}

// LogFor returns the log recorded for day, if any.
func (h *Habit) LogFor(day time.Time) (HabitLog, bool) {
	for _, l := range h.Logs {
		if sameDay(l.Day, day) {
			return l, true
		}
	}
	return HabitLog{}, false
}

// ToggleLog marks day as done, or flips the existing mark. day is reduced to
// its calendar date in loc; dates after today are rejected. Streak caches are
// recomputed before returning the resulting log.
func (h *Habit) ToggleLog(day, now time.Time, loc *time.Location) (HabitLog, error) {
	key := DateOf(day, loc)
	today := DateOf(now, loc)
	if key.After(today) {
		return HabitLog{}, ErrHabitLogInFuture
	}

	var result HabitLog
	found := false
	for i := range h.Logs {
		if sameDay(h.Logs[i].Day, key) {
			h.Logs[i].Completed = !h.Logs[i].Completed
			result = h.Logs[i]
			found = true
			break
		}
	}
	if !found {
		result = HabitLog{Day: key, Completed: true}
		h.Logs = append(h.Logs, result)
		sort.Slice(h.Logs, func(i, j int) bool {
			return h.Logs[i].Day.Before(h.Logs[j].Day)
		})
	}

	current, longest := ComputeStreaks(h.Logs, today)
	h.UpdateStreak(current, longest)

	return result, nil
}
