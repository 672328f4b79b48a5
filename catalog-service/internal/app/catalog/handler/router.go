package handler

import (
	"net/http"
	"time"

	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает все маршруты Catalog Service с использованием Gin
// Аутентификация опциональна: без токена запрос выполняется как анонимный
func SetupRoutes(catalogHandler *CatalogHandler, authMiddleware *auth.AuthMiddleware, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))
	router.Use(cors.New(corsConfig(allowedOrigins)))

	// Health check endpoint - публичный, без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/products/trending", catalogHandler.Trending)

	products := router.Group("/products")
	products.Use(authMiddleware.OptionalAuthenticate())
	{
		products.GET("", catalogHandler.GetAllProducts)
		products.POST("", catalogHandler.CreateProduct)

		products.GET("/categories/list", catalogHandler.GetCategories) // Список категорий (кеш Redis)
		products.GET("/filter", catalogHandler.FilterProducts)
		// Первый сегмент произвольный (обычно "search"), имя параметра общее с /:productID
		products.GET("/:productID/:query", catalogHandler.SearchProducts)

		products.GET("/:productID", catalogHandler.GetProduct)
		products.DELETE("/:productID", catalogHandler.DeleteProduct)
		products.PUT("/:productID", catalogHandler.UpdateProduct)
	}

	return router
}

// corsConfig - настройки CORS; "*" в списке источников разрешает любой Origin.
// Токен передается заголовком Authorization, cookies не используются, поэтому credentials выключены
func corsConfig(allowedOrigins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}
}
