package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ai2sql/internal/pkg/config"
)

const (
	jobConnectionCheck = "connection_check"

	defaultConnectionCheckCron = "0 */30 * * * *"

	// upper bound for one sweep over all connections
	sweepTimeout = 10 * time.Minute
)

// HealthChecker re-tests stored database connections
type HealthChecker interface {
	CheckAll(ctx context.Context) error
}

type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	checker       HealthChecker
	cronSchedules map[string]cron.EntryID
}

func NewScheduler(logger *zap.Logger, checker HealthChecker) *Scheduler {
	// cron with a seconds field
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		checker:       checker,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Start(cfg *config.SchedulerConfig) error {
	log := s.logger.Sugar()

	log.Info("starting scheduler...")

	// sec min hour day month weekday
	cronExpr := cfg.ConnectionCheckCron
	if cronExpr == "" {
		cronExpr = defaultConnectionCheckCron
		log.Warnw("scheduler.connection_check_cron not set, using default", "cron", cronExpr)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		log.Info("running job: connection health check")
		if err := s.RunConnectionCheck(); err != nil {
			log.Errorf("connection health check failed: %v", err)
		}
	})
	if err != nil {
		log.Errorf("register connection check %s failed: %v", cronExpr, err)
		return err
	}

	s.cronSchedules[jobConnectionCheck] = entryID
	log.Infof("connection check registered: %s entry_id=%d", cronExpr, entryID)

	s.cron.Start()
	log.Info("scheduler started")

	return nil
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler...")

	// waits for running jobs
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("scheduler stopped")
}

// RunConnectionCheck runs the health check once, outside the schedule
func (s *Scheduler) RunConnectionCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	return s.checker.CheckAll(ctx)
}

// Entries returns the registered job ids by name
func (s *Scheduler) Entries() map[string]cron.EntryID {
	return s.cronSchedules
}
