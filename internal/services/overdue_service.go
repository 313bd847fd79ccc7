package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// OverdueSweeper periodically flips unfinished tasks with stale due dates to
// the overdue status.
type OverdueSweeper struct {
	tasks    *TaskService
	interval time.Duration
	cron     *cron.Cron
}

// NewOverdueSweeper creates a sweeper running at the given interval.
func NewOverdueSweeper(tasks *TaskService, interval time.Duration) *OverdueSweeper {
	return &OverdueSweeper{
		tasks:    tasks,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start registers and launches the sweep job.
func (s *OverdueSweeper) Start() error {
	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}

	spec := fmt.Sprintf("@every %ds", seconds)
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *OverdueSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep runs one pass. Exported so a pass can be triggered directly.
func (s *OverdueSweeper) Sweep() {
	changed, err := s.tasks.MarkOverdueTasks(time.Now())
	if err != nil {
		log.Printf("overdue sweep failed: %v", err)
		return
	}
	if changed > 0 {
		log.Printf("overdue sweep marked %d task(s)", changed)
	}
}
