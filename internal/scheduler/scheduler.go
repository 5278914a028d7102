package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/config"
	"github.com/mamadbah2/procurement/internal/service/canvass"
	"github.com/mamadbah2/procurement/pkg/clients/notify"
)

// OverdueSweeper lists canvass returns past their advisory window.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) []canvass.OverdueReturn
}

// DigestReporter summarizes awards for a period.
type DigestReporter interface {
	AwardsDigest(ctx context.Context, start, end time.Time) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  OverdueSweeper
	digest   DigestReporter
	notifier notify.Client
	cfg      config.SchedulerConfig
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. digest and notifier may be nil,
// which disables the weekly awards digest.
func NewScheduler(cfg config.SchedulerConfig, sweeper OverdueSweeper, digest DigestReporter, notifier notify.Client, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		sweeper:  sweeper,
		digest:   digest,
		notifier: notifier,
		cfg:      cfg,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.OverdueSchedule, s.sweepOverdue); err != nil {
		return fmt.Errorf("schedule overdue sweep: %w", err)
	}

	if s.digest != nil && s.notifier != nil && s.cfg.DigestSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.DigestSchedule, s.sendWeeklyDigest); err != nil {
			return fmt.Errorf("schedule weekly digest: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	overdue := s.sweeper.SweepOverdue(ctx, s.now().In(s.location))
	s.logger.Info("overdue sweep finished", zap.Int("overdue", len(overdue)))
}

func (s *Scheduler) sendWeeklyDigest() {
	s.logger.Info("generating weekly digest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	end := s.now().In(s.location)
	start := mondayStart(end)

	digest, err := s.digest.AwardsDigest(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to generate weekly digest", zap.Error(err))
		return
	}

	notice := notify.Notice{
		Kind:    notify.KindWeeklyDigest,
		Title:   "Weekly awards",
		Message: digest,
	}

	if err := s.notifier.Send(ctx, notice); err != nil {
		s.logger.Error("failed to send weekly digest", zap.Error(err))
	} else {
		s.logger.Info("weekly digest sent successfully")
	}
}

func mondayStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	daysSinceMonday := (weekday + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
}
