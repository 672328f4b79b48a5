package metrics

import (
	"time"
)

// stopwatch - общее начало для таймеров хранилищ и брокера
type stopwatch struct {
	service string
	start   time.Time
}

func startWatch(service string) stopwatch {
	return stopwatch{service: service, start: time.Now()}
}

func (s stopwatch) elapsed() float64 {
	return time.Since(s.start).Seconds()
}

// ---- MongoDB / PostgreSQL ----

type DbOperation string

const (
	DbOpSelect   DbOperation = "select"
	DbOpInsert   DbOperation = "insert"
	DbOpUpdate   DbOperation = "update"
	DbOpDelete   DbOperation = "delete"
	DbOpDistinct DbOperation = "distinct"
)

type DbTimer struct {
	stopwatch
	op         DbOperation
	collection string
}

// NewDbTimer запускает таймер запроса; collection - коллекция MongoDB или таблица PostgreSQL
func NewDbTimer(service string, op DbOperation, collection string) *DbTimer {
	return &DbTimer{stopwatch: startWatch(service), op: op, collection: collection}
}

// Done пишет длительность и при ошибке увеличивает db_errors_total
func (t *DbTimer) Done(err error) {
	DbQueryDuration.WithLabelValues(t.service, string(t.op), t.collection).Observe(t.elapsed())
	if err != nil {
		DbErrors.WithLabelValues(t.service, string(t.op)).Inc()
	}
}

// ---- Redis ----

type RedisOperation string

const (
	RedisOpGet RedisOperation = "get"
	RedisOpSet RedisOperation = "set"
	RedisOpDel RedisOperation = "del"
)

type RedisTimer struct {
	stopwatch
	op RedisOperation
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{stopwatch: startWatch(service), op: op}
}

func (t *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(t.service, string(t.op)).Observe(t.elapsed())
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

// ---- Kafka ----

type KafkaProduceTimer struct {
	stopwatch
	topic string
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{stopwatch: startWatch(service), topic: topic}
}

// Done: успешная отправка считается в produced и duration, неуспешная - в kafka_errors_total
func (t *KafkaProduceTimer) Done(err error) {
	if err != nil {
		RecordKafkaError(t.service, t.topic, "produce")
		return
	}
	KafkaMessagesProduced.WithLabelValues(t.service, t.topic).Inc()
	KafkaProduceDuration.WithLabelValues(t.service, t.topic).Observe(t.elapsed())
}

func RecordKafkaMessageConsumed(service, topic, group string, took time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(took.Seconds())
}

// RecordKafkaError - operation: produce, fetch, process, commit
func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}
