package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// AuditRepositoryTestSuite тестовый suite для PostgreSQL repository
type AuditRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  AuditRepository
	sqlDB *sql.DB
}

func TestAuditRepositorySuite(t *testing.T) {
	suite.Run(t, new(AuditRepositoryTestSuite))
}

func (s *AuditRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewAuditRepository(s.db)
}

func (s *AuditRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func newEntry() *entity.AuditEntry {
	return &entity.AuditEntry{
		EventID:    "5f0c8a52-2d4e-4a0b-9a0e-0f5b1b7c3d11",
		EventType:  "REVIEW_CREATED",
		EntityType: "review",
		EntityID:   "REV000001",
		ActorEmail: "jane@example.com",
		Payload:    `{"rating":5}`,
		OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

// ===================== Create Tests =====================

func (s *AuditRepositoryTestSuite) TestCreate_Success() {
	entry := newEntry()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.Create(context.Background(), entry)

	s.NoError(err)
	s.False(entry.RecordedAt.IsZero())
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AuditRepositoryTestSuite) TestCreate_Duplicate() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT ("event_id") DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.Create(context.Background(), newEntry())

	s.ErrorIs(err, ErrDuplicateEntry)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AuditRepositoryTestSuite) TestCreate_DBError() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.repo.Create(context.Background(), newEntry())

	s.Error(err)
	s.NotErrorIs(err, ErrDuplicateEntry)
	s.Contains(err.Error(), "failed to create audit entry")
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== List Tests =====================

func (s *AuditRepositoryTestSuite) TestList_WithFilter() {
	occurred := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"event_id", "event_type", "entity_type", "entity_id", "actor_email", "payload", "occurred_at", "recorded_at"}).
		AddRow("e2", "REVIEW_UPDATED", "review", "REV000001", "jane@example.com", `{}`, occurred.Add(time.Minute), occurred.Add(time.Minute)).
		AddRow("e1", "REVIEW_CREATED", "review", "REV000001", "jane@example.com", `{}`, occurred, occurred)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_entries" WHERE entity_type = $1 AND entity_id = $2 ORDER BY occurred_at DESC`)).
		WillReturnRows(rows)

	entries, err := s.repo.List(context.Background(), entity.AuditFilter{EntityType: "review", EntityID: "REV000001", Limit: 50})

	s.NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("e2", entries[0].EventID)
	s.Equal("REVIEW_CREATED", entries[1].EventType)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AuditRepositoryTestSuite) TestList_Empty() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_entries" ORDER BY occurred_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"event_id"}))

	entries, err := s.repo.List(context.Background(), entity.AuditFilter{Limit: 10})

	s.NoError(err)
	s.NotNil(entries)
	s.Empty(entries)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AuditRepositoryTestSuite) TestList_DBError() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_entries"`)).
		WillReturnError(sql.ErrConnDone)

	_, err := s.repo.List(context.Background(), entity.AuditFilter{Limit: 10})

	s.ErrorContains(err, "failed to list audit entries")
}

// ===================== Purge Tests =====================

func (s *AuditRepositoryTestSuite) TestPurgeOlderThan() {
	cutoff := time.Now().Add(-90 * 24 * time.Hour)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "audit_entries" WHERE recorded_at < $1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 12))
	s.mock.ExpectCommit()

	purged, err := s.repo.PurgeOlderThan(context.Background(), cutoff)

	s.NoError(err)
	s.Equal(int64(12), purged)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AuditRepositoryTestSuite) TestPurgeOlderThan_DBError() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "audit_entries"`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	purged, err := s.repo.PurgeOlderThan(context.Background(), time.Now())

	s.Error(err)
	s.Zero(purged)
	s.Contains(err.Error(), "failed to purge audit entries")
}
