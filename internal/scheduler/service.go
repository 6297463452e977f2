// Package scheduler drives the periodic per-session work: snapshots,
// inactivity sweeps, prompt orchestration, and feed cleanup.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/config"
	"github.com/streampulse/streampulse-bot/internal/session"
)

// Service runs the periodic ticks over every live session.
type Service struct {
	config   *config.Config
	registry *session.Registry
	cron     *cron.Cron
}

// NewService creates a new scheduler service. Every job is wrapped with
// SkipIfStillRunning so a slow tick delays the next one instead of stacking.
func NewService(cfg *config.Config, registry *session.Registry) *Service {
	return &Service{
		config:   cfg,
		registry: registry,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Start registers the periodic jobs and starts the cron loop.
func (s *Service) Start() error {
	jobs := []struct {
		name     string
		interval time.Duration
		run      func(*session.Handler)
	}{
		{"snapshot", s.config.SnapshotInterval, (*session.Handler).SnapshotTick},
		{"sweep", s.config.SweepInterval, (*session.Handler).SweepTick},
		{"prompt", s.config.PromptInterval, (*session.Handler).PromptTick},
		{"cleanup", s.config.CleanupInterval, (*session.Handler).CleanupTick},
	}

	for _, job := range jobs {
		job := job
		spec := fmt.Sprintf("@every %s", job.interval)
		if _, err := s.cron.AddFunc(spec, func() {
			for _, h := range s.registry.All() {
				job.run(h)
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule %s job: %w", job.name, err)
		}
	}

	s.cron.Start()
	logrus.Infof("Scheduler started (snapshot %s, sweep %s, prompt %s, cleanup %s)",
		s.config.SnapshotInterval, s.config.SweepInterval, s.config.PromptInterval, s.config.CleanupInterval)
	return nil
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
