//go:build wireinject
// +build wireinject

package borrow

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	bookdomain "github.com/tair/library-service/internal/book/domain"
	bookrepository "github.com/tair/library-service/internal/book/repository"
	"github.com/tair/library-service/internal/borrow/delivery/http"
	"github.com/tair/library-service/internal/borrow/domain"
	"github.com/tair/library-service/internal/borrow/repository"
	"github.com/tair/library-service/internal/borrow/usecase/command"
	"github.com/tair/library-service/internal/borrow/usecase/query"
)

// ProvideBorrowRepository provides the borrow record repository
func ProvideBorrowRepository(db *gorm.DB) domain.BorrowRecordRepository {
	return repository.NewGormBorrowRepository(db)
}

// ProvideBookRepository provides the catalog repository the availability
// projection reads from
func ProvideBookRepository(db *gorm.DB) bookdomain.BookRepository {
	return bookrepository.NewGormBookRepository(db)
}

// Command Handlers Providers
func ProvideRequestBorrowHandler(repo domain.BorrowRecordRepository, directory domain.UserDirectory) *command.RequestBorrowHandler {
	return command.NewRequestBorrowHandler(repo, directory)
}

func ProvideApproveBorrowHandler(repo domain.BorrowRecordRepository) *command.ApproveBorrowHandler {
	return command.NewApproveBorrowHandler(repo)
}

func ProvideRejectBorrowHandler(repo domain.BorrowRecordRepository) *command.RejectBorrowHandler {
	return command.NewRejectBorrowHandler(repo)
}

func ProvideRequestReturnHandler(repo domain.BorrowRecordRepository) *command.RequestReturnHandler {
	return command.NewRequestReturnHandler(repo)
}

func ProvideApproveReturnHandler(repo domain.BorrowRecordRepository) *command.ApproveReturnHandler {
	return command.NewApproveReturnHandler(repo)
}

func ProvideRejectReturnHandler(repo domain.BorrowRecordRepository) *command.RejectReturnHandler {
	return command.NewRejectReturnHandler(repo)
}

// Query Handlers Providers
func ProvideGetRecordHandler(repo domain.BorrowRecordRepository) *query.GetRecordHandler {
	return query.NewGetRecordHandler(repo)
}

func ProvideListByUserHandler(repo domain.BorrowRecordRepository) *query.ListByUserHandler {
	return query.NewListByUserHandler(repo)
}

func ProvideListAllHandler(repo domain.BorrowRecordRepository) *query.ListAllHandler {
	return query.NewListAllHandler(repo)
}

func ProvideListPendingBorrowsHandler(repo domain.BorrowRecordRepository) *query.ListPendingBorrowsHandler {
	return query.NewListPendingBorrowsHandler(repo)
}

func ProvideListPendingReturnsHandler(repo domain.BorrowRecordRepository) *query.ListPendingReturnsHandler {
	return query.NewListPendingReturnsHandler(repo)
}

func ProvideCheckAvailabilityHandler(records domain.BorrowRecordRepository, books bookdomain.BookRepository) *query.CheckAvailabilityHandler {
	return query.NewCheckAvailabilityHandler(records, books)
}

// ProvideCommandHandlers provides all command handlers
func ProvideCommandHandlers(
	requestBorrowHandler *command.RequestBorrowHandler,
	approveBorrowHandler *command.ApproveBorrowHandler,
	rejectBorrowHandler *command.RejectBorrowHandler,
	requestReturnHandler *command.RequestReturnHandler,
	approveReturnHandler *command.ApproveReturnHandler,
	rejectReturnHandler *command.RejectReturnHandler,
) *http.CommandHandlers {
	return &http.CommandHandlers{
		RequestBorrowHandler: requestBorrowHandler,
		ApproveBorrowHandler: approveBorrowHandler,
		RejectBorrowHandler:  rejectBorrowHandler,
		RequestReturnHandler: requestReturnHandler,
		ApproveReturnHandler: approveReturnHandler,
		RejectReturnHandler:  rejectReturnHandler,
	}
}

// ProvideQueryHandlers provides all query handlers
func ProvideQueryHandlers(
	getRecordHandler *query.GetRecordHandler,
	listByUserHandler *query.ListByUserHandler,
	listAllHandler *query.ListAllHandler,
	pendingBorrowsHandler *query.ListPendingBorrowsHandler,
	pendingReturnsHandler *query.ListPendingReturnsHandler,
	availabilityHandler *query.CheckAvailabilityHandler,
) *http.QueryHandlers {
	return &http.QueryHandlers{
		GetRecordHandler:      getRecordHandler,
		ListByUserHandler:     listByUserHandler,
		ListAllHandler:        listAllHandler,
		PendingBorrowsHandler: pendingBorrowsHandler,
		PendingReturnsHandler: pendingReturnsHandler,
		AvailabilityHandler:   availabilityHandler,
	}
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideBorrowRepository,
	ProvideBookRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideRequestBorrowHandler,
	ProvideApproveBorrowHandler,
	ProvideRejectBorrowHandler,
	ProvideRequestReturnHandler,
	ProvideApproveReturnHandler,
	ProvideRejectReturnHandler,
	ProvideCommandHandlers,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetRecordHandler,
	ProvideListByUserHandler,
	ProvideListAllHandler,
	ProvideListPendingBorrowsHandler,
	ProvideListPendingReturnsHandler,
	ProvideCheckAvailabilityHandler,
	ProvideQueryHandlers,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, directory domain.UserDirectory) (*http.BorrowHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewBorrowHandlerWithDI,
	)
	return nil, nil
}
