package service

import (
	"context"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"
	"storefront/pkg/messaging"
)

// AuditServiceInterface определяет операции журнала аудита
type AuditServiceInterface interface {
	// RecordEvent сохраняет событие из Kafka; повторное событие не считается ошибкой
	RecordEvent(ctx context.Context, event *messaging.Event) error
	// ListEntries возвращает записи журнала от новых к старым
	ListEntries(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditEntry, error)
	// PurgeExpired удаляет записи старше срока хранения
	PurgeExpired(ctx context.Context) (int64, error)
}
