package workers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type ActiveHabitLister interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

type Enqueuer interface {
	EnqueueWait(ctx context.Context, habitID string) error
}

// Scheduler queues every active habit for a streak refresh once a day, so
// current streaks do not go stale across midnight.
type Scheduler struct {
	cron     *cron.Cron
	habits   ActiveHabitLister
	queue    Enqueuer
	cronExpr string
}

// NewScheduler runs the refresh daily at "HH:MM" in loc.
func NewScheduler(habits ActiveHabitLister, queue Enqueuer, at string, loc *time.Location) (*Scheduler, error) {
	cronExpr, err := dailyCronExpr(at)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		habits:   habits,
		queue:    queue,
		cronExpr: cronExpr,
	}, nil
}

func dailyCronExpr(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid refresh time %q (want HH:MM)", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid refresh hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid refresh minute in %q", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cronExpr, func() {
		s.RefreshAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule streak refresh: %w", err)
	}

	s.cron.Start()
	log.Printf("[SCHEDULER] Streak refresh scheduled (%s)", s.cronExpr)

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		log.Println("[SCHEDULER] Stopped")
	}()
	return nil
}

// RefreshAll enqueues every active habit, waiting for room in the queue, and
// returns how many were queued. It stops early only when ctx ends.
func (s *Scheduler) RefreshAll(ctx context.Context) int {
	ids, err := s.habits.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("[SCHEDULER] Error listing active habits: %v", err)
		return 0
	}

	queued := 0
	for _, id := range ids {
		if err := s.queue.EnqueueWait(ctx, id); err != nil {
			log.Printf("[SCHEDULER] Streak refresh interrupted after %d of %d habits: %v", queued, len(ids), err)
			return queued
		}
		queued++
	}
	log.Printf("[SCHEDULER] Queued %d habits for streak refresh", queued)
	return queued
}
