package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"
	"storefront/audit-worker-service/internal/app/audit-worker/repository"
	"storefront/audit-worker-service/internal/app/audit-worker/repository/mocks"
	"storefront/pkg/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mocks.MockAuditRepository) *AuditService {
	svc := NewAuditService(repo, 90*24*time.Hour)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func newEvent(t *testing.T) *messaging.Event {
	t.Helper()
	event, err := messaging.NewEvent(messaging.EventReviewCreated, messaging.EntityReview, "REV000001", "jane@example.com",
		map[string]interface{}{"rating": 5})
	require.NoError(t, err)
	return event
}

// ===================== RecordEvent Tests =====================

func TestRecordEvent_Success(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := newTestService(repo)
	event := newEvent(t)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.AuditEntry) bool {
		return e.EventID == event.EventID &&
			e.EventType == messaging.EventReviewCreated &&
			e.EntityType == messaging.EntityReview &&
			e.EntityID == "REV000001" &&
			e.ActorEmail == "jane@example.com" &&
			e.Payload == `{"rating":5}` &&
			e.RecordedAt.Equal(fixedNow) &&
			e.OccurredAt.Equal(event.Timestamp)
	})).Return(nil)

	err := svc.RecordEvent(context.Background(), event)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecordEvent_DuplicateIsNotAnError(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEntry)

	err := svc.RecordEvent(context.Background(), newEvent(t))

	assert.NoError(t, err)
}

func TestRecordEvent_StoreError(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	err := svc.RecordEvent(context.Background(), newEvent(t))

	assert.ErrorContains(t, err, "failed to record REVIEW_CREATED event")
	assert.NotErrorIs(t, err, ErrInvalidEvent)
}

func TestRecordEvent_MissingTimestampUsesNow(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := newTestService(repo)

	event := &messaging.Event{
		EventID:    "e1",
		EventType:  messaging.EventProductDeleted,
		EntityType: messaging.EntityProduct,
		EntityID:   "P1",
		Payload:    json.RawMessage(`null`),
	}

	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.AuditEntry) bool {
		return e.OccurredAt.Equal(fixedNow)
	})).Return(nil)

	assert.NoError(t, svc.RecordEvent(context.Background(), event))
	repo.AssertExpectations(t)
}

func TestRecordEvent_InvalidEnvelope(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := newTestService(repo)

	tests := []struct {
		name  string
		event messaging.Event
	}{
		{"no event id", messaging.Event{EventType: "PRODUCT_CREATED", EntityType: "product"}},
		{"no event type", messaging.Event{EventID: "e1", EntityType: "product"}},
		{"no entity type", messaging.Event{EventID: "e1", EventType: "PRODUCT_CREATED"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RecordEvent(context.Background(), &tt.event)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ===================== ListEntries Tests =====================

func TestListEntries_NormalizesLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, entity.DefaultListLimit},
		{"negative", -5, entity.DefaultListLimit},
		{"within range", 20, 20},
		{"capped", 10000, entity.MaxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockAuditRepository)
			svc := newTestService(repo)

			repo.On("List", mock.Anything, entity.AuditFilter{EntityType: "product", Limit: tt.want}).
				Return([]entity.AuditEntry{}, nil)

			_, err := svc.ListEntries(context.Background(), entity.AuditFilter{EntityType: "product", Limit: tt.limit})

			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

// ===================== PurgeExpired Tests =====================

func TestPurgeExpired(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := newTestService(repo)

	repo.On("PurgeOlderThan", mock.Anything, fixedNow.Add(-90*24*time.Hour)).Return(int64(3), nil)

	purged, err := svc.PurgeExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	repo.AssertExpectations(t)
}

func TestPurgeExpired_Error(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := newTestService(repo)

	repo.On("PurgeOlderThan", mock.Anything, mock.Anything).Return(int64(0), errors.New("timeout"))

	_, err := svc.PurgeExpired(context.Background())

	assert.Error(t, err)
}
