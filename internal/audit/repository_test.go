package audit

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// The audit trail speaks raw postgres SQL (BIGSERIAL, ON CONFLICT), so
// these tests run against a real database. Set AUDIT_TEST_DSN to enable,
// e.g. "host=localhost user=program password=test dbname=librarydb sslmode=disable".
func setupAuditRepo(t *testing.T) *PostgresRepository {
	dsn := os.Getenv("AUDIT_TEST_DSN")
	if dsn == "" {
		t.Skip("AUDIT_TEST_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("failed to reach postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewPostgresRepository(db)
	if err := repo.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	if _, err := db.Exec("TRUNCATE loan_audit RESTART IDENTITY"); err != nil {
		t.Fatalf("failed to reset table: %v", err)
	}
	return repo
}

func TestInsertIgnoresDuplicateEvents(t *testing.T) {
	repo := setupAuditRepo(t)

	entry := &Entry{
		EventID:   "evt-dup",
		EventType: "loan.borrow_approved",
		RecordID:  7,
		UserID:    1,
		BookID:    3,
		Status:    "BORROWED",
	}
	assert.NoError(t, repo.Insert(entry))
	assert.NotZero(t, entry.ID)

	// A redelivered event with the same id must not produce a second row
	redelivered := &Entry{
		EventID:   "evt-dup",
		EventType: "loan.borrow_approved",
		RecordID:  7,
		UserID:    1,
		BookID:    3,
		Status:    "BORROWED",
	}
	assert.NoError(t, repo.Insert(redelivered))

	entries, err := repo.FindByRecord(7)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestFindByRecordOrdersOldestFirst(t *testing.T) {
	repo := setupAuditRepo(t)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	events := []struct {
		eventType string
		status    string
	}{
		{"loan.borrow_approved", "BORROWED"},
		{"loan.return_rejected", "RETURN_REJECTED"},
		{"loan.return_approved", "RETURNED"},
	}
	for i, ev := range events {
		err := repo.Insert(&Entry{
			EventID:   fmt.Sprintf("evt-ord-%d", i),
			EventType: ev.eventType,
			RecordID:  11,
			UserID:    2,
			BookID:    5,
			Status:    ev.status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		assert.NoError(t, err)
	}
	// A row for another record must not leak into the trail
	assert.NoError(t, repo.Insert(&Entry{
		EventID: "evt-other", EventType: "loan.borrow_approved",
		RecordID: 12, UserID: 3, BookID: 5, Status: "BORROWED",
	}))

	entries, err := repo.FindByRecord(11)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "BORROWED", entries[0].Status)
	assert.Equal(t, "RETURN_REJECTED", entries[1].Status)
	assert.Equal(t, "RETURNED", entries[2].Status)
}

func TestFindRecentLimitsNewestFirst(t *testing.T) {
	repo := setupAuditRepo(t)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 4; i++ {
		err := repo.Insert(&Entry{
			EventID:   fmt.Sprintf("evt-recent-%d", i),
			EventType: "loan.borrow_approved",
			RecordID:  uint(20 + i),
			UserID:    1,
			BookID:    1,
			Status:    "BORROWED",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		assert.NoError(t, err)
	}

	entries, err := repo.FindRecent(2)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "evt-recent-3", entries[0].EventID)
	assert.Equal(t, "evt-recent-2", entries[1].EventID)

	// Zero falls back to the default limit
	entries, err = repo.FindRecent(0)
	assert.NoError(t, err)
	assert.Len(t, entries, 4)
}
