package entity

import (
	"time"
)

// AuditEntry - запись журнала об одном событии product_events / review_events
// event_id является первичным ключом, повторная доставка события не создает дубликат
type AuditEntry struct {
	EventID    string    `json:"event_id" gorm:"column:event_id;type:varchar(64);primaryKey"`
	EventType  string    `json:"event_type" gorm:"type:varchar(64);not null"`
	EntityType string    `json:"entity_type" gorm:"type:varchar(32);not null;index:idx_audit_entity"`
	EntityID   string    `json:"entity_id" gorm:"type:varchar(64);not null;index:idx_audit_entity"`
	ActorEmail string    `json:"actor_email" gorm:"type:varchar(255)"`
	Payload    string    `json:"payload" gorm:"type:text"` // JSON как текст
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null;index"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// AuditFilter - параметры выборки журнала; пустые поля не фильтруют
type AuditFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}

// Normalize приводит лимит к диапазону [1, MaxListLimit]
func (f AuditFilter) Normalize() AuditFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	return f
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
