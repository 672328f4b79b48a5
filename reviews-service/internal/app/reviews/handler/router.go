package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

func SetupRoutes(reviewHandler *ReviewHandler, authMiddleware *auth.AuthMiddleware, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("reviews-service"))

	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "reviews-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.OptionalAuthenticate())
	{
		reviews.GET("", reviewHandler.GetReviews)
		reviews.POST("", reviewHandler.CreateReview)
		reviews.PUT("/:reviewId", reviewHandler.UpdateReview)
		reviews.DELETE("/:reviewId", reviewHandler.DeleteReview)
		reviews.PUT("/visibility/:reviewId", reviewHandler.ToggleVisibility)
	}

	return router
}

// corsConfig - Authorization передается заголовком, credentials (cookies) не нужны
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
