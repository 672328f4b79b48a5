package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/pkg/metrics"
)

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// KafkaProducer обертка над Kafka writer для отправки событий
type KafkaProducer struct {
	writer  *kafka.Writer
	service string
}

// NewKafkaProducer создает producer для одного топика
// service используется только как label метрик
func NewKafkaProducer(brokers []string, topic string, service string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{}, // одинаковый ключ (ID сущности) -> одна партиция, порядок сохраняется
		// Отправка синхронная, поэтому батч не ждем
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &KafkaProducer{writer: writer, service: service}
}

// PublishMessage отправляет сообщение в Kafka
// key - используется для партиционирования (ID товара или отзыва)
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewKafkaProduceTimer(p.service, p.writer.Topic)

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	err := p.writer.WriteMessages(ctx, message)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// PublishEvent сериализует событие и отправляет его с ключом = ID сущности
func PublishEvent(ctx context.Context, publisher MessagePublisher, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := publisher.PublishMessage(ctx, event.EntityID, data); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

// NoopPublisher используется, когда Kafka отключена (KAFKA_ENABLED=false)
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(context.Context, string, []byte) error { return nil }

func (NoopPublisher) Close() error { return nil }
