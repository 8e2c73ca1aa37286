package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work. It receives the scheduler's context,
// which is cancelled by Stop.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules in UTC.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under a standard five-field cron spec.
func (s *Scheduler) Add(spec, name string, job Job) error {
	if job == nil {
		return fmt.Errorf("job %q is nil", name)
	}
	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("🕘 Running scheduled job %s", name)
		if err := job(s.ctx); err != nil {
			log.Printf("❌ Scheduled job %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s at %q: %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("📅 Scheduler started with %d job(s)", len(s.cron.Entries()))
}

// Stop waits for running jobs and cancels their context.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning reports whether any job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
