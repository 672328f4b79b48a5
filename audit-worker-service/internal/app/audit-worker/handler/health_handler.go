package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
)

// Pinger - проверка доступности БД, *sql.DB подходит напрямую
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConsumerStats - статистика consumer для /health
type ConsumerStats interface {
	Topic() string
	GetStats() kafka.ReaderStats
}

type HealthCheckHandler struct {
	db        Pinger
	consumers []ConsumerStats
}

func NewHealthCheckHandler(db Pinger, consumers ...ConsumerStats) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:        db,
		consumers: consumers,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Lag       map[string]int64  `json:"lag,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthCheck - состояние БД и отставание consumer по каждому топику
func (h *HealthCheckHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	lag := make(map[string]int64, len(h.consumers))
	for _, consumer := range h.consumers {
		stats := consumer.GetStats()
		lag[consumer.Topic()] = stats.Lag
		if stats.Errors > 0 {
			checks["kafka:"+consumer.Topic()] = "warning: fetch errors since last check"
		} else {
			checks["kafka:"+consumer.Topic()] = "healthy"
		}
	}

	status := http.StatusOK
	if overallStatus != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Lag:       lag,
		Timestamp: time.Now(),
	})
}

func (h *HealthCheckHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "database not ready")
		return
	}

	c.String(http.StatusOK, "ready")
}

func (h *HealthCheckHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}
