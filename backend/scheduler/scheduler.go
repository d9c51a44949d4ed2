// Package scheduler runs the periodic maintenance jobs. Correctness never
// depends on them: session expiry is enforced lazily at validation time,
// the sweep only keeps the table small.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"

	"englearn/backend/models"
)

type Scheduler struct {
	cron   *gocron.Scheduler
	db     *gorm.DB
	logger *log.Logger
}

func New(db *gorm.DB, logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:   gocron.NewScheduler(time.UTC),
		db:     db,
		logger: logger,
	}
}

// Start registers the session sweep and launches the scheduler in the
// background.
func (s *Scheduler) Start() error {
	_, err := s.cron.Every(1).Hour().Do(s.sweepSessions)
	if err != nil {
		return err
	}

	s.cron.StartAsync()
	return nil
}

// Stop halts all jobs.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// sweepSessions deletes sessions that have expired or been revoked.
func (s *Scheduler) sweepSessions() {
	now := time.Now().UTC()
	res := s.db.Where("expires_at < ? OR is_active = ?", now, false).Delete(&models.Session{})
	if res.Error != nil {
		s.logger.Printf("session sweep failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		s.logger.Printf("session sweep removed %d sessions", res.RowsAffected)
	}
}
