// Package audit persists loan lifecycle events consumed from Kafka into
// an append-only trail, queryable by record or user.
package audit

import (
	"database/sql"
	"fmt"
	"time"
)

// Entry is one audit row, written per consumed loan event.
type Entry struct {
	ID        int64     `json:"id"`
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	RecordID  uint      `json:"record_id"`
	UserID    uint      `json:"user_id"`
	BookID    uint      `json:"book_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PostgresRepository stores audit entries using database/sql directly;
// the trail is write-mostly and needs no ORM.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new audit repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InitSchema creates the audit table if it doesn't exist
func (r *PostgresRepository) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS loan_audit (
		id BIGSERIAL PRIMARY KEY,
		event_id VARCHAR(64) NOT NULL UNIQUE,
		event_type VARCHAR(64) NOT NULL,
		record_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		book_id BIGINT NOT NULL,
		status VARCHAR(32) NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_loan_audit_record ON loan_audit(record_id);
	CREATE INDEX IF NOT EXISTS idx_loan_audit_user ON loan_audit(user_id);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Insert appends an audit entry. Duplicate event ids are ignored so a
// redelivered Kafka message does not double-write.
func (r *PostgresRepository) Insert(entry *Entry) error {
	query := `
		INSERT INTO loan_audit (event_id, event_type, record_id, user_id, book_id, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := r.db.QueryRow(query,
		entry.EventID, entry.EventType, entry.RecordID, entry.UserID,
		entry.BookID, entry.Status, entry.Reason, entry.CreatedAt,
	).Scan(&entry.ID)
	if err == sql.ErrNoRows {
		// Conflict path: the event was already recorded.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// FindByRecord returns the audit trail of one borrow record, oldest first
func (r *PostgresRepository) FindByRecord(recordID uint) ([]Entry, error) {
	query := `
		SELECT id, event_id, event_type, record_id, user_id, book_id, status, reason, created_at
		FROM loan_audit
		WHERE record_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FindRecent returns the newest audit entries across all records
func (r *PostgresRepository) FindRecent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, event_id, event_type, record_id, user_id, book_id, status, reason, created_at
		FROM loan_audit
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EventID, &e.EventType, &e.RecordID, &e.UserID,
			&e.BookID, &e.Status, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}
