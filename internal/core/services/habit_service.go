package services

import (
	"context"
	"fmt"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
)

// StreakQueue receives habits whose stored streak caches went stale.
type StreakQueue interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo  domain.HabitRepository
	queue StreakQueue
	loc   *time.Location
	now   func() time.Time
}

func NewHabitService(repo domain.HabitRepository, queue StreakQueue, loc *time.Location) *HabitService {
	if loc == nil {
		loc = time.UTC
	}
	return &HabitService{
		repo:  repo,
		queue: queue,
		loc:   loc,
		now:   time.Now,
	}
}

func (s *HabitService) SetClock(now func() time.Time) {
	s.now = now
}

type CreateHabitInput struct {
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	Version     int
}

type ToggleLogInput struct {
	HabitID string
	UserID  string
	// Day is YYYY-MM-DD in the deployment time zone; empty means today.
	Day string
}

type ToggleLogResult struct {
	Log           domain.HabitLog `json:"log"`
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
}

type ListLogsInput struct {
	HabitID string
	UserID  string
	From    string
	To      string
}

type MonthlyStatsInput struct {
	HabitID string
	UserID  string
	Year    int
	Month   int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) today() time.Time {
	return domain.DateOf(s.now(), s.loc)
}

// refresh brings the streak caches of h in line with today. Persisting the
// new values is left to the streak worker.
func (s *HabitService) refresh(h *domain.Habit, today time.Time) {
	current, longest := domain.ComputeStreaks(h.Logs, today)
	if current == h.CurrentStreak && longest == h.LongestStreak {
		return
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	if s.queue != nil {
		s.queue.Enqueue(h.ID)
	}
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Name, input.Description, input.Color, input.Icon)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	for _, h := range habits {
		s.refresh(h, today)
	}
	return habits, nil
}

func (s *HabitService) Get(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	s.refresh(habit, s.today())
	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	err = habit.Update(
		mergeString(input.Name, habit.Name),
		mergeString(input.Description, habit.Description),
		mergeString(input.Color, habit.Color),
		mergeString(input.Icon, habit.Icon),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Archive()

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Restore()

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// ToggleLog marks a day as done, or flips the mark already there, and
// stores the log together with the recomputed streaks.
func (s *HabitService) ToggleLog(ctx context.Context, input ToggleLogInput) (*ToggleLogResult, error) {
	habit, err := s.Get(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day := domain.DateOf(now, s.loc)
	if input.Day != "" {
		if day, err = domain.ParseDay(input.Day, s.loc); err != nil {
			return nil, err
		}
	}

	entry, err := habit.ToggleLog(domain.LocalMidnight(day, s.loc), now, s.loc)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveLog(ctx, habit, entry); err != nil {
		return nil, err
	}

	return &ToggleLogResult{
		Log:           entry,
		CurrentStreak: habit.CurrentStreak,
		LongestStreak: habit.LongestStreak,
	}, nil
}

// ListLogs returns the logs between From and To inclusive. Missing bounds
// default to the last 30 days.
func (s *HabitService) ListLogs(ctx context.Context, input ListLogsInput) ([]domain.HabitLog, error) {
	if _, err := s.Get(ctx, input.HabitID, input.UserID); err != nil {
		return nil, err
	}

	to := s.today()
	if input.To != "" {
		parsed, err := domain.ParseDay(input.To, time.UTC)
		if err != nil {
			return nil, err
		}
		to = parsed
	}

	from := to.AddDate(0, 0, -29)
	if input.From != "" {
		parsed, err := domain.ParseDay(input.From, time.UTC)
		if err != nil {
			return nil, err
		}
		from = parsed
	}

	if from.After(to) {
		return nil, domain.ErrInvalidDateRange
	}

	return s.repo.ListLogs(ctx, input.HabitID, from, to)
}

// MonthlyStats summarises one month of a habit. A zero Year or Month means
// the current one.
func (s *HabitService) MonthlyStats(ctx context.Context, input MonthlyStatsInput) (*domain.HabitMonthStats, error) {
	habit, err := s.Get(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	year, month := input.Year, input.Month
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}

	return habit.MonthlyStats(year, month, today)
}

// GlobalStats aggregates the user's non-archived habits over the current
// month.
func (s *HabitService) GlobalStats(ctx context.Context, userID string) (*domain.GlobalHabitStats, error) {
	habits, err := s.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h.ArchivedAt == nil {
			active = append(active, h)
		}
	}

	return domain.BuildGlobalHabitStats(active, s.today()), nil
}
