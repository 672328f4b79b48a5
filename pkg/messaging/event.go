package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EntityProduct = "product"
	EntityReview  = "review"
)

const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"

	EventReviewCreated           = "REVIEW_CREATED"
	EventReviewUpdated           = "REVIEW_UPDATED"
	EventReviewDeleted           = "REVIEW_DELETED"
	EventReviewVisibilityChanged = "REVIEW_VISIBILITY_CHANGED"
)

// Event - конверт события об изменении сущности, общий для product_events и review_events
type Event struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	ActorEmail string          `json:"actor_email"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewEvent собирает событие с новым event_id; payload сериализуется в JSON
func NewEvent(eventType, entityType, entityID, actorEmail string, payload interface{}) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		raw = data
	}

	return &Event{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   entityID,
		ActorEmail: actorEmail,
		Payload:    raw,
		Timestamp:  time.Now().UTC(),
	}, nil
}
