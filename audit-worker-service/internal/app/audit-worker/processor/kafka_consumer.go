package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/service"
	"storefront/pkg/logger"
	"storefront/pkg/messaging"
	"storefront/pkg/metrics"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const serviceName = "audit-worker-service"

const (
	defaultRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff     = 30 * time.Second
)

// messageReader - часть kafka.Reader, которой пользуется consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Stats() kafka.ReaderStats
	Close() error
}

// KafkaConsumer читает события одного топика и пишет их в журнал аудита
type KafkaConsumer struct {
	reader   messageReader
	topic    string
	groupID  string
	auditSvc service.AuditServiceInterface
	log      zerolog.Logger
	stopChan chan struct{}
	doneChan chan struct{}

	retryBackoff time.Duration // первая пауза перед повтором записи, дальше удваивается
}

func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	auditSvc service.AuditServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    minBytes,
		MaxBytes:    maxBytes,
		StartOffset: kafka.FirstOffset, // без сохраненного offset группы читаем топик с начала
		// Offset коммитится явно после записи в журнал
		CommitInterval: 0,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
		ErrorLogger:    logger.ErrorPrintf,
	})

	return newConsumer(reader, topic, groupID, auditSvc)
}

func newConsumer(reader messageReader, topic, groupID string, auditSvc service.AuditServiceInterface) *KafkaConsumer {
	return &KafkaConsumer{
		reader:   reader,
		topic:    topic,
		groupID:  groupID,
		auditSvc: auditSvc,
		log:      logger.With().Str("topic", topic).Str("group", groupID).Logger(),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),

		retryBackoff: defaultRetryBackoff,
	}
}

// Start запускает чтение в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	c.log.Info().Msg("Starting Kafka consumer")

	go c.consume(ctx)
}

// Stop останавливает чтение и закрывает reader
func (c *KafkaConsumer) Stop() {
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		c.log.Error().Err(err).Msg("Error closing Kafka reader")
	}
	c.log.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := c.reader.FetchMessage(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Таймаут чтения при пустом топике - обычная ситуация
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}

			metrics.RecordKafkaError(serviceName, c.topic, "fetch")
			c.log.Error().Err(err).Msg("Error fetching message")
			c.sleep(ctx, time.Second)
			continue
		}

		c.handle(ctx, message)
	}
}

// handle обрабатывает сообщение и коммитит offset.
// Ошибка записи повторяется для того же сообщения, пока оно не сохранится или consumer не остановят:
// коммит следующего offset сдвинул бы группу за непрочитанное событие
func (c *KafkaConsumer) handle(ctx context.Context, message kafka.Message) {
	start := time.Now()
	backoff := c.retryBackoff

	for {
		err := c.processMessage(ctx, message)
		if err == nil {
			break
		}

		if errors.Is(err, service.ErrInvalidEvent) || isDecodeError(err) {
			// Битое сообщение не станет валидным при повторе - пропускаем его
			c.log.Warn().
				Err(err).
				Int64("offset", message.Offset).
				Msg("Skipping malformed event")
			break
		}

		metrics.RecordKafkaError(serviceName, c.topic, "process")
		c.log.Error().
			Err(err).
			Int64("offset", message.Offset).
			Dur("retry_in", backoff).
			Msg("Error processing message, retrying")

		if !c.sleep(ctx, backoff) {
			// Остановка: offset не коммитится, после перезапуска сообщение будет прочитано снова
			return
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}

	if err := c.reader.CommitMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(serviceName, c.topic, "commit")
		c.log.Error().Err(err).Msg("Error committing message")
		return
	}

	metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
}

// decodeError - сообщение не удалось разобрать как Event
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "failed to unmarshal event: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	var de *decodeError
	return errors.As(err, &de)
}

func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event messaging.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return &decodeError{err: err}
	}

	c.log.Debug().
		Str("event_type", event.EventType).
		Str("entity_id", event.EntityID).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received event")

	if err := c.auditSvc.RecordEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to record event %s: %w", event.EventID, err)
	}

	return nil
}

// sleep ждет d; false - consumer останавливается
func (c *KafkaConsumer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.stopChan:
		return false
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// GetStats возвращает статистику reader, используется в /health
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}

func (c *KafkaConsumer) Topic() string {
	return c.topic
}
