package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config содержит все настройки Audit Worker Service
// Включает конфигурацию для PostgreSQL, Kafka, cron и HTTP сервера
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Cron     CronConfig
	Audit    AuditConfig
	Log      LogConfig
}

// ServerConfig - HTTP сервер для health, metrics и чтения журнала
type ServerConfig struct {
	Host string
	Port string // по умолчанию 8090
}

// DatabaseConfig - настройки подключения к PostgreSQL с таблицей audit_entries
type DatabaseConfig struct {
	Host     string // Хост PostgreSQL
	Port     string // Порт PostgreSQL
	User     string // Имя пользователя БД
	Password string // Пароль БД
	DBName   string // Имя базы данных (audit)
	SSLMode  string // Режим SSL (disable/require/verify-full)
}

// KafkaConfig - настройки Kafka для подписки на события
// На каждый топик запускается отдельный consumer в одной группе
type KafkaConfig struct {
	Brokers  []string // Список брокеров Kafka (формат: host:port)
	Topics   []string // product_events, review_events
	GroupID  string   // ID группы потребителей
	MinBytes int      // Минимум байт для fetch запроса
	MaxBytes int      // Максимум байт для fetch запроса
}

// CronConfig - расписание фоновых задач
type CronConfig struct {
	PurgeAudit string // Расписание очистки журнала (5 полей, например "0 3 * * *")
}

type AuditConfig struct {
	RetentionDays int // Сколько дней хранить записи журнала
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	retentionDays := getEnvInt("AUDIT_RETENTION_DAYS", 90)
	if retentionDays <= 0 {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_DAYS value: %d", retentionDays)
	}

	topics := getEnvList("KAFKA_TOPICS", "product_events,review_events")
	if len(topics) == 0 {
		return nil, fmt.Errorf("KAFKA_TOPICS must list at least one topic")
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8090"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "audit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:  getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topics:   topics,
			GroupID:  getEnv("KAFKA_GROUP_ID", "audit-worker-group"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),    // 1 byte minimum
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6), // 10MB maximum
		},
		Cron: CronConfig{
			PurgeAudit: getEnv("CRON_PURGE_AUDIT", "0 3 * * *"),
		},
		Audit: AuditConfig{
			RetentionDays: retentionDays,
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает значение переменной окружения как int
// Нечисловое значение заменяется значением по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var result []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
