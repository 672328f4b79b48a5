package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"
	"storefront/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	serviceName = "audit-worker-service"
	auditTable  = "audit_entries"
)

// auditRepository реализует AuditRepository для работы с PostgreSQL через GORM
type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create вставляет запись с ON CONFLICT DO NOTHING
// Ноль затронутых строк означает, что событие уже было в журнале
func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, auditTable)

	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(entry)
	timer.Done(result.Error)

	if result.Error != nil {
		return fmt.Errorf("failed to create audit entry: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrDuplicateEntry
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditEntry, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, auditTable)

	query := r.db.WithContext(ctx).Model(&entity.AuditEntry{})
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}

	entries := make([]entity.AuditEntry, 0)
	err := query.Order("occurred_at DESC").Limit(filter.Limit).Find(&entries).Error
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	return entries, nil
}

func (r *auditRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, auditTable)

	result := r.db.WithContext(ctx).
		Where("recorded_at < ?", cutoff).
		Delete(&entity.AuditEntry{})
	timer.Done(result.Error)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge audit entries: %w", result.Error)
	}

	return result.RowsAffected, nil
}
