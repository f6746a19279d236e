package kafka

import (
	"fmt"
	"time"
)

// LoanEvent represents a borrow lifecycle transition that other services
// (and the audit trail) can react to.
type LoanEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	RecordID  uint      `json:"record_id"`
	UserID    uint      `json:"user_id"`
	BookID    uint      `json:"book_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeBorrowApproved = "loan.borrow_approved"
	EventTypeBorrowRejected = "loan.borrow_rejected"
	EventTypeReturnApproved = "loan.return_approved"
	EventTypeReturnRejected = "loan.return_rejected"
)

// Kafka topics
const (
	TopicLoanActivity = "loan-activity"
)

// NewLoanEvent builds a loan event for a lifecycle transition
func NewLoanEvent(eventType string, recordID, userID, bookID uint, status, reason string) LoanEvent {
	return LoanEvent{
		EventID:   fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		EventType: eventType,
		RecordID:  recordID,
		UserID:    userID,
		BookID:    bookID,
		Status:    status,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}
