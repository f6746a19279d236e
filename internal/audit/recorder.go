package audit

import (
	"context"

	"github.com/tair/library-service/kafka"
	"github.com/tair/library-service/pkg/logger"
)

// Recorder bridges consumed loan events into the audit trail.
type Recorder struct {
	repo *PostgresRepository
}

// NewRecorder creates a new recorder
func NewRecorder(repo *PostgresRepository) *Recorder {
	return &Recorder{repo: repo}
}

// HandleLoanEvent implements kafka.EventHandler
func (r *Recorder) HandleLoanEvent(ctx context.Context, event kafka.LoanEvent) error {
	entry := &Entry{
		EventID:   event.EventID,
		EventType: event.EventType,
		RecordID:  event.RecordID,
		UserID:    event.UserID,
		BookID:    event.BookID,
		Status:    event.Status,
		Reason:    event.Reason,
		CreatedAt: event.Timestamp,
	}

	if err := r.repo.Insert(entry); err != nil {
		return err
	}

	logger.Debug(ctx).
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Uint("record_id", event.RecordID).
		Msg("Loan event recorded in audit trail")
	return nil
}

// Register subscribes the recorder to all loan lifecycle event types
func (r *Recorder) Register(consumer *kafka.Consumer) {
	for _, eventType := range []string{
		kafka.EventTypeBorrowApproved,
		kafka.EventTypeBorrowRejected,
		kafka.EventTypeReturnApproved,
		kafka.EventTypeReturnRejected,
	} {
		consumer.RegisterHandler(eventType, r.HandleLoanEvent)
	}
}
