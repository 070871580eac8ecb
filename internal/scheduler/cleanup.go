package scheduler

import (
	"context"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/config"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// Scheduler runs the periodic maintenance jobs: audit retention cleanup and
// the overdue deadline sweep. Both run without tenant context and reach
// across tenants through the repositories' explicit escape hatches.
type Scheduler struct {
	audit     *services.AuditService
	deadlines *services.DeadlineService
	retention config.RetentionConfig
	logger    *logrus.Logger
	cron      *cron.Cron
	mu        sync.Mutex
	running   bool
}

// New creates a new scheduler
func New(audit *services.AuditService, deadlines *services.DeadlineService, retention config.RetentionConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		audit:     audit,
		deadlines: deadlines,
		retention: retention,
		logger:    logger,
	}
}

// Start registers and starts the cron jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())

	if s.retention.CleanupEnabled {
		schedule := s.retention.CleanupSchedule
		if schedule == "" {
			schedule = "0 0 2 * * *"
		}
		// Accept standard 5-field cron by prefixing the seconds field.
		if len(strings.Fields(schedule)) == 5 {
			schedule = "0 " + schedule
		}
		if _, err := s.cron.AddFunc(schedule, s.runAuditCleanup); err != nil {
			s.logger.WithError(err).Error("Failed to schedule audit cleanup")
			return err
		}
	} else {
		s.logger.Info("Audit retention cleanup is disabled")
	}

	// Hourly overdue deadline sweep.
	if _, err := s.cron.AddFunc("0 0 * * * *", s.runDeadlineSweep); err != nil {
		s.logger.WithError(err).Error("Failed to schedule deadline sweep")
		return err
	}

	s.cron.Start()
	s.running = true
	s.logger.WithFields(logrus.Fields{
		"retention_days":   s.retention.Days,
		"cleanup_enabled":  s.retention.CleanupEnabled,
		"cleanup_schedule": s.retention.CleanupSchedule,
	}).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runAuditCleanup() {
	if _, err := s.audit.Cleanup(context.Background(), s.retention.Days); err != nil {
		s.logger.WithError(err).Error("Scheduled audit cleanup failed")
	}
}

func (s *Scheduler) runDeadlineSweep() {
	if _, err := s.deadlines.SweepOverdue(context.Background()); err != nil {
		s.logger.WithError(err).Error("Scheduled deadline sweep failed")
	}
}
