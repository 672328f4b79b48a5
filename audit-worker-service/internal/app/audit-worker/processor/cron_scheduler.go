package processor

import (
	"context"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/service"
	"storefront/pkg/logger"

	"github.com/robfig/cron/v3"
)

type CronScheduler struct {
	cron     *cron.Cron
	auditSvc service.AuditServiceInterface
}

func NewCronScheduler(auditSvc service.AuditServiceInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(logger.InfoPrintf)))

	return &CronScheduler{
		cron:     c,
		auditSvc: auditSvc,
	}
}

// Start регистрирует очистку журнала по расписанию schedule (5 полей cron)
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.purge(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	return nil
}

func (s *CronScheduler) purge(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	logger.Info().Msg("Cron job triggered: purging expired audit entries")

	if _, err := s.auditSvc.PurgeExpired(jobCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to purge expired audit entries")
	}
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
