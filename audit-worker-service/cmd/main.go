package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/config"
	"storefront/audit-worker-service/internal/app/audit-worker/entity"
	"storefront/audit-worker-service/internal/app/audit-worker/handler"
	"storefront/audit-worker-service/internal/app/audit-worker/processor"
	"storefront/audit-worker-service/internal/app/audit-worker/repository"
	"storefront/audit-worker-service/internal/app/audit-worker/service"
	"storefront/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "audit-worker-service"

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	sqlDB, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize GORM")
	}

	if err := db.AutoMigrate(&entity.AuditEntry{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate audit_entries")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	auditRepo := repository.NewAuditRepository(db)
	auditSvc := service.NewAuditService(auditRepo, time.Duration(cfg.Audit.RetentionDays)*24*time.Hour)

	// === KAFKA CONSUMERS ===
	// Один consumer на топик, все в одной группе
	consumers := make([]*processor.KafkaConsumer, 0, len(cfg.Kafka.Topics))
	stats := make([]handler.ConsumerStats, 0, len(cfg.Kafka.Topics))
	for _, topic := range cfg.Kafka.Topics {
		consumer := processor.NewKafkaConsumer(
			cfg.Kafka.Brokers,
			topic,
			cfg.Kafka.GroupID,
			cfg.Kafka.MinBytes,
			cfg.Kafka.MaxBytes,
			auditSvc,
		)
		consumer.Start(ctx)
		consumers = append(consumers, consumer)
		stats = append(stats, consumer)
	}

	// === CRON ===
	cronScheduler := processor.NewCronScheduler(auditSvc)
	if err := cronScheduler.Start(ctx, cfg.Cron.PurgeAudit); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Cron.PurgeAudit).Msg("Failed to start cron scheduler")
	}

	// === HTTP: health, metrics, журнал ===
	router := handler.SetupRoutes(
		handler.NewHealthCheckHandler(sqlDB, stats...),
		handler.NewAuditHandler(auditSvc),
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Audit Worker HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	logger.Info().
		Strs("topics", cfg.Kafka.Topics).
		Str("group", cfg.Kafka.GroupID).
		Int("retention_days", cfg.Audit.RetentionDays).
		Msg("Audit Worker Service is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Audit Worker Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	cronScheduler.Stop()
	cancel()
	for _, consumer := range consumers {
		consumer.Stop()
	}

	logger.Info().Msg("Audit Worker Service stopped gracefully")
}

// connectDB открывает пул pgx через database/sql с 10 попытками
func connectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	var err error

	for i := 0; i < 10; i++ {
		var sqlDB *sql.DB
		sqlDB, err = sql.Open("pgx", cfg.DSN())
		if err == nil {
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = sqlDB.PingContext(pingCtx)
			cancel()
			if err == nil {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return sqlDB, nil
			}
			_ = sqlDB.Close()
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
