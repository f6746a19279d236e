package http

import (
	"github.com/tair/library-service/internal/borrow/usecase/command"
	"github.com/tair/library-service/internal/borrow/usecase/query"
)

// CommandHandlers holds all lifecycle command handlers
type CommandHandlers struct {
	RequestBorrowHandler *command.RequestBorrowHandler
	ApproveBorrowHandler *command.ApproveBorrowHandler
	RejectBorrowHandler  *command.RejectBorrowHandler
	RequestReturnHandler *command.RequestReturnHandler
	ApproveReturnHandler *command.ApproveReturnHandler
	RejectReturnHandler  *command.RejectReturnHandler
}

// QueryHandlers holds all projection handlers
type QueryHandlers struct {
	GetRecordHandler      *query.GetRecordHandler
	ListByUserHandler     *query.ListByUserHandler
	ListAllHandler        *query.ListAllHandler
	PendingBorrowsHandler *query.ListPendingBorrowsHandler
	PendingReturnsHandler *query.ListPendingReturnsHandler
	AvailabilityHandler   *query.CheckAvailabilityHandler
}
