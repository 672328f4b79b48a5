package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"
	"storefront/audit-worker-service/internal/app/audit-worker/repository"
	"storefront/pkg/logger"
	"storefront/pkg/messaging"
	"storefront/pkg/metrics"
)

// ErrInvalidEvent - в событии нет обязательных полей конверта
var ErrInvalidEvent = errors.New("invalid event")

// AuditService записывает события в журнал и следит за сроком хранения
type AuditService struct {
	auditRepo repository.AuditRepository
	retention time.Duration
	now       func() time.Time
}

func NewAuditService(auditRepo repository.AuditRepository, retention time.Duration) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuditService) RecordEvent(ctx context.Context, event *messaging.Event) error {
	if event.EventID == "" || event.EventType == "" || event.EntityType == "" {
		metrics.AuditEntriesRecorded.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: event_id, event_type and entity_type are required", ErrInvalidEvent)
	}

	occurredAt := event.Timestamp
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	entry := &entity.AuditEntry{
		EventID:    event.EventID,
		EventType:  event.EventType,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		ActorEmail: event.ActorEmail,
		Payload:    string(event.Payload),
		OccurredAt: occurredAt.UTC(),
		RecordedAt: s.now(),
	}

	err := s.auditRepo.Create(ctx, entry)
	switch {
	case errors.Is(err, repository.ErrDuplicateEntry):
		metrics.AuditEntriesRecorded.WithLabelValues("duplicate").Inc()
		logger.Debug().
			Str("event_id", event.EventID).
			Str("event_type", event.EventType).
			Msg("Audit entry already recorded, skipping")
		return nil
	case err != nil:
		metrics.AuditEntriesRecorded.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to record %s event: %w", event.EventType, err)
	}

	metrics.AuditEntriesRecorded.WithLabelValues("stored").Inc()
	logger.Info().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("entity_id", event.EntityID).
		Msg("Audit entry recorded")

	return nil
}

func (s *AuditService) ListEntries(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditEntry, error) {
	return s.auditRepo.List(ctx, filter.Normalize())
}

func (s *AuditService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)

	purged, err := s.auditRepo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	metrics.AuditEntriesPurged.Add(float64(purged))
	logger.Info().
		Int64("purged", purged).
		Time("cutoff", cutoff).
		Msg("Expired audit entries purged")

	return purged, nil
}
