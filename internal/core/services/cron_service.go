package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 10 * time.Minute

// CronSchedules holds the cron expressions of the maintenance jobs
type CronSchedules struct {
	SessionCleanup string
	ExportPurge    string
	RetentionDays  int
}

// CronService runs periodic maintenance: session cleanup and export purge
type CronService struct {
	cron      *cron.Cron
	auth      *AuthService
	exports   *ExportService
	schedules CronSchedules
	log       *zap.Logger
}

// NewCronService creates a new cron service
func NewCronService(auth *AuthService, exports *ExportService, schedules CronSchedules, log *zap.Logger) *CronService {
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(zap.NewStdLog(log.Named("cron")))),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	return &CronService{
		cron:      c,
		auth:      auth,
		exports:   exports,
		schedules: schedules,
		log:       log,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedules.SessionCleanup, guarded("session cleanup", s.log, s.cleanupSessions)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.schedules.ExportPurge, guarded("export purge", s.log, s.purgeExports)); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("⏰ Cron service started",
		zap.String("sessionCleanup", s.schedules.SessionCleanup),
		zap.String("exportPurge", s.schedules.ExportPurge),
	)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("🛑 Cron service stopped")
}

func (s *CronService) cleanupSessions(ctx context.Context) error {
	_, err := s.auth.CleanupSessions(ctx, s.schedules.RetentionDays)
	return err
}

func (s *CronService) purgeExports(ctx context.Context) error {
	_, err := s.exports.PurgeExpired(ctx)
	return err
}

// guarded skips a run while the previous one is still going
func guarded(name string, log *zap.Logger, job func(ctx context.Context) error) func() {
	var running int32
	return func() {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			log.Warn("previous run still in progress, skipping", zap.String("job", name))
			return
		}
		defer atomic.StoreInt32(&running, 0)

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		if err := job(ctx); err != nil {
			log.Error("cron job failed", zap.String("job", name), zap.Error(err))
			return
		}
		log.Debug("cron job finished", zap.String("job", name), zap.Duration("took", time.Since(started)))
	}
}
