//go:build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"
	"storefront/audit-worker-service/internal/app/audit-worker/repository"
	"storefront/audit-worker-service/internal/app/audit-worker/service"
	"storefront/pkg/messaging"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// AuditWorkerIntegrationTestSuite требует запущенный PostgreSQL
type AuditWorkerIntegrationTestSuite struct {
	suite.Suite
	sqlDB    *sql.DB
	db       *gorm.DB
	repo     repository.AuditRepository
	auditSvc *service.AuditService
}

func TestAuditWorkerIntegrationSuite(t *testing.T) {
	suite.Run(t, new(AuditWorkerIntegrationTestSuite))
}

func (s *AuditWorkerIntegrationTestSuite) SetupSuite() {
	dsn := getEnv("TEST_DATABASE_DSN", "host=localhost port=5433 user=postgres password=postgres dbname=audit_test sslmode=disable")

	var err error
	s.sqlDB, err = sql.Open("pgx", dsn)
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.sqlDB.Ping(), "Failed to connect to PostgreSQL")

	s.db, err = gorm.Open(postgres.New(postgres.Config{Conn: s.sqlDB}), &gorm.Config{})
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.db.AutoMigrate(&entity.AuditEntry{}))

	s.repo = repository.NewAuditRepository(s.db)
	s.auditSvc = service.NewAuditService(s.repo, 24*time.Hour)
}

func (s *AuditWorkerIntegrationTestSuite) SetupTest() {
	require.NoError(s.T(), s.db.Exec(`DELETE FROM audit_entries`).Error)
}

func (s *AuditWorkerIntegrationTestSuite) TearDownSuite() {
	_ = s.db.Migrator().DropTable(&entity.AuditEntry{})
	_ = s.sqlDB.Close()
}

func (s *AuditWorkerIntegrationTestSuite) TestDuplicateEventStoredOnce() {
	ctx := context.Background()
	event, err := messaging.NewEvent(messaging.EventProductCreated, messaging.EntityProduct, "P1", "admin@example.com",
		map[string]interface{}{"name": "Headphones"})
	s.Require().NoError(err)

	s.Require().NoError(s.auditSvc.RecordEvent(ctx, event))
	s.Require().NoError(s.auditSvc.RecordEvent(ctx, event))

	entries, err := s.auditSvc.ListEntries(ctx, entity.AuditFilter{EntityID: "P1"})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.JSONEq(`{"name":"Headphones"}`, entries[0].Payload)
}

func (s *AuditWorkerIntegrationTestSuite) TestListNewestFirstWithFilter() {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i, id := range []string{"REV000001", "REV000001", "REV000002"} {
		s.Require().NoError(s.repo.Create(ctx, &entity.AuditEntry{
			EventID:    "evt-" + string(rune('a'+i)),
			EventType:  messaging.EventReviewUpdated,
			EntityType: messaging.EntityReview,
			EntityID:   id,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := s.repo.List(ctx, entity.AuditFilter{EntityType: messaging.EntityReview, EntityID: "REV000001", Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("evt-b", entries[0].EventID)
	s.Equal("evt-a", entries[1].EventID)
}

func (s *AuditWorkerIntegrationTestSuite) TestPurgeExpired() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Create(ctx, &entity.AuditEntry{
		EventID: "old", EventType: "PRODUCT_DELETED", EntityType: "product", EntityID: "P1",
		OccurredAt: time.Now().Add(-72 * time.Hour), RecordedAt: time.Now().Add(-48 * time.Hour),
	}))
	s.Require().NoError(s.repo.Create(ctx, &entity.AuditEntry{
		EventID: "fresh", EventType: "PRODUCT_CREATED", EntityType: "product", EntityID: "P2",
		OccurredAt: time.Now(),
	}))

	purged, err := s.auditSvc.PurgeExpired(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), purged)

	entries, err := s.repo.List(ctx, entity.AuditFilter{Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("fresh", entries[0].EventID)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
