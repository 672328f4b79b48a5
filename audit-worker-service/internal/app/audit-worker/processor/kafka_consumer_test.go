package processor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/service"
	"storefront/pkg/messaging"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeReader отдает сообщения из очереди и запоминает закоммиченные offset
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Stats() kafka.ReaderStats {
	return kafka.ReaderStats{Topic: "review_events"}
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func eventMessage(t *testing.T, offset int64) kafka.Message {
	t.Helper()
	event, err := messaging.NewEvent(messaging.EventReviewCreated, messaging.EntityReview, "REV000001", "jane@example.com", nil)
	require.NoError(t, err)
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: "review_events", Offset: offset, Key: []byte(event.EntityID), Value: value}
}

// ===================== NewKafkaConsumer Tests =====================

func TestNewKafkaConsumer(t *testing.T) {
	auditSvc := new(MockAuditService)

	consumer := NewKafkaConsumer([]string{"localhost:9092"}, "product_events", "audit-worker-group", 1, 10e6, auditSvc)

	assert.NotNil(t, consumer)
	assert.NotNil(t, consumer.reader)
	assert.Equal(t, "product_events", consumer.Topic())
	assert.Equal(t, "product_events", consumer.GetStats().Topic)

	consumer.reader.Close()
}

// ===================== processMessage Tests =====================

func TestKafkaConsumer_ProcessMessage_Success(t *testing.T) {
	auditSvc := new(MockAuditService)
	consumer := newConsumer(&fakeReader{}, "review_events", "audit-worker-group", auditSvc)

	message := eventMessage(t, 1)
	auditSvc.On("RecordEvent", mock.Anything, mock.MatchedBy(func(e *messaging.Event) bool {
		return e.EventType == messaging.EventReviewCreated && e.EntityID == "REV000001"
	})).Return(nil)

	err := consumer.processMessage(context.Background(), message)

	assert.NoError(t, err)
	auditSvc.AssertExpectations(t)
}

func TestKafkaConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	auditSvc := new(MockAuditService)
	consumer := newConsumer(&fakeReader{}, "review_events", "audit-worker-group", auditSvc)

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("invalid json {{{")})

	assert.Error(t, err)
	assert.True(t, isDecodeError(err))
	assert.Contains(t, err.Error(), "failed to unmarshal")
	auditSvc.AssertNotCalled(t, "RecordEvent", mock.Anything, mock.Anything)
}

func TestKafkaConsumer_ProcessMessage_ServiceError(t *testing.T) {
	auditSvc := new(MockAuditService)
	consumer := newConsumer(&fakeReader{}, "review_events", "audit-worker-group", auditSvc)

	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).Return(errors.New("database is down"))

	err := consumer.processMessage(context.Background(), eventMessage(t, 1))

	assert.ErrorContains(t, err, "failed to record event")
	assert.False(t, isDecodeError(err))
}

// ===================== handle Tests =====================

func TestKafkaConsumer_Handle_CommitsAfterSuccess(t *testing.T) {
	reader := &fakeReader{}
	auditSvc := new(MockAuditService)
	consumer := newConsumer(reader, "review_events", "audit-worker-group", auditSvc)

	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).Return(nil)

	consumer.handle(context.Background(), eventMessage(t, 7))

	assert.Equal(t, []int64{7}, reader.committedOffsets())
}

func TestKafkaConsumer_Handle_NoCommitWhileStoreFails(t *testing.T) {
	reader := &fakeReader{}
	auditSvc := new(MockAuditService)
	consumer := newConsumer(reader, "review_events", "audit-worker-group", auditSvc)
	consumer.retryBackoff = time.Millisecond

	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).Return(errors.New("database is down"))

	message := eventMessage(t, 7)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.handle(ctx, message)
		close(done)
	}()

	// Пока хранилище недоступно, handle повторяет запись и не возвращается
	assert.Never(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handle did not return after cancel")
	}

	assert.Empty(t, reader.committedOffsets())
}

func TestKafkaConsumer_RetriesFailedEventBeforeNext(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{eventMessage(t, 1), eventMessage(t, 2)}}
	auditSvc := new(MockAuditService)
	consumer := newConsumer(reader, "review_events", "audit-worker-group", auditSvc)
	consumer.retryBackoff = time.Millisecond

	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx)

	assert.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	consumer.Stop()

	// Offset 1 сохранен повтором и закоммичен раньше 2
	assert.Equal(t, []int64{1, 2}, reader.committedOffsets())
	auditSvc.AssertNumberOfCalls(t, "RecordEvent", 3)
}

func TestKafkaConsumer_StopInterruptsRetry(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{eventMessage(t, 1), eventMessage(t, 2)}}
	auditSvc := new(MockAuditService)
	consumer := newConsumer(reader, "review_events", "audit-worker-group", auditSvc)
	consumer.retryBackoff = time.Hour

	called := make(chan struct{}, 1)
	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).
		Return(errors.New("db down")).
		Run(func(mock.Arguments) {
			select {
			case called <- struct{}{}:
			default:
			}
		})

	consumer.Start(context.Background())

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("RecordEvent was not called")
	}
	consumer.Stop()

	assert.Empty(t, reader.committedOffsets())
	auditSvc.AssertNumberOfCalls(t, "RecordEvent", 1)
}

func TestKafkaConsumer_Handle_SkipsMalformedEvents(t *testing.T) {
	reader := &fakeReader{}
	auditSvc := new(MockAuditService)
	consumer := newConsumer(reader, "review_events", "audit-worker-group", auditSvc)

	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).Return(service.ErrInvalidEvent)

	consumer.handle(context.Background(), kafka.Message{Offset: 3, Value: []byte("not json")})
	consumer.handle(context.Background(), kafka.Message{Offset: 4, Value: []byte(`{"event_type":"PRODUCT_CREATED"}`)})

	assert.Equal(t, []int64{3, 4}, reader.committedOffsets())
}

// ===================== Start / Stop Tests =====================

func TestKafkaConsumer_StartStop(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{eventMessage(t, 1), eventMessage(t, 2)}}
	auditSvc := new(MockAuditService)
	consumer := newConsumer(reader, "review_events", "audit-worker-group", auditSvc)

	auditSvc.On("RecordEvent", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx)

	assert.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	consumer.Stop()

	assert.True(t, reader.closed)
	assert.Equal(t, []int64{1, 2}, reader.committedOffsets())
}
