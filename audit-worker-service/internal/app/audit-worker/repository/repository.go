package repository

import (
	"context"
	"errors"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"
)

// ErrDuplicateEntry - событие с таким event_id уже записано
var ErrDuplicateEntry = errors.New("audit entry already recorded")

// AuditRepository интерфейс для работы с журналом в PostgreSQL
type AuditRepository interface {
	// Create сохраняет запись; для уже известного event_id возвращает ErrDuplicateEntry
	Create(ctx context.Context, entry *entity.AuditEntry) error

	// List возвращает записи от новых к старым
	List(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditEntry, error)

	// PurgeOlderThan удаляет записи, сохраненные раньше cutoff, и возвращает их количество
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
