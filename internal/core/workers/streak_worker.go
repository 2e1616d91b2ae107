package workers

import (
	"context"
	"log"
	"time"

	"github.com/clario-app/clario/internal/core/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes habit streak caches in the background and stores
// them only when they changed.
type StreakWorker struct {
	habitRepo HabitRepository
	jobs      chan StreakJob
	loc       *time.Location
	now       func() time.Time
}

func NewStreakWorker(hRepo HabitRepository, loc *time.Location) *StreakWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakWorker{
		habitRepo: hRepo,
		jobs:      make(chan StreakJob, 100),
		loc:       loc,
		now:       time.Now,
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("[WORKER] Queue full! Dropping streak job for habit %s", habitID)
	}
}

// EnqueueWait queues a job, blocking until the worker has room or ctx ends.
// Bulk producers use it so a full buffer delays jobs instead of dropping them.
func (w *StreakWorker) EnqueueWait(ctx context.Context, habitID string) error {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("[WORKER] Error fetching habit %s: %v", job.HabitID, err)
		return
	}

	current, longest := domain.ComputeStreaks(habit.Logs, domain.DateOf(w.now(), w.loc))

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, longest); err != nil {
		log.Printf("[WORKER] Failed to update streak for %s: %v", job.HabitID, err)
		return
	}
	log.Printf("[WORKER] Streak updated for %s: Current=%d, Longest=%d", habit.Name, current, longest)
}
