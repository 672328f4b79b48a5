package handler

import (
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes - health, metrics и чтение журнала; API внутреннее, без аутентификации
func SetupRoutes(healthHandler *HealthCheckHandler, auditHandler *AuditHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("audit-worker-service"))

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/health/readiness", healthHandler.Readiness)
	router.GET("/health/liveness", healthHandler.Liveness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/audit", auditHandler.GetEntries)

	return router
}
