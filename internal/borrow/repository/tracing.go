package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/library-service/internal/borrow/domain"
)

var tracer = otel.Tracer("borrow-repository")

// GormBorrowRepositoryWithTracing wraps GormBorrowRepository with tracing
type GormBorrowRepositoryWithTracing struct {
	*GormBorrowRepository
}

// NewGormBorrowRepositoryWithTracing creates a new repository with tracing
func NewGormBorrowRepositoryWithTracing(db *gorm.DB) *GormBorrowRepositoryWithTracing {
	return &GormBorrowRepositoryWithTracing{
		GormBorrowRepository: NewGormBorrowRepository(db),
	}
}

// CreatePendingWithContext traces the pending record insert
func (r *GormBorrowRepositoryWithTracing) CreatePendingWithContext(ctx context.Context, record *domain.BorrowRecord) error {
	_, span := tracer.Start(ctx, "repository.CreatePending",
		trace.WithAttributes(
			attribute.Int("record.user_id", int(record.UserID)),
			attribute.Int("record.book_id", int(record.BookID)),
		),
	)
	defer span.End()

	err := r.GormBorrowRepository.CreatePending(record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("record.uid", record.RecordUID))
	return nil
}

// ApproveBorrowWithContext traces the reserve-and-transition transaction
func (r *GormBorrowRepositoryWithTracing) ApproveBorrowWithContext(ctx context.Context, id uint, issuedAt time.Time) (*domain.BorrowRecord, error) {
	_, span := tracer.Start(ctx, "repository.ApproveBorrow",
		trace.WithAttributes(
			attribute.Int("record.id", int(id)),
		),
	)
	defer span.End()

	record, err := r.GormBorrowRepository.ApproveBorrow(id, issuedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("record.status", record.Status))
	return record, nil
}

// ApproveReturnWithContext traces the release-and-transition transaction
func (r *GormBorrowRepositoryWithTracing) ApproveReturnWithContext(ctx context.Context, id uint, returnedAt time.Time) (*domain.BorrowRecord, error) {
	_, span := tracer.Start(ctx, "repository.ApproveReturn",
		trace.WithAttributes(
			attribute.Int("record.id", int(id)),
		),
	)
	defer span.End()

	record, err := r.GormBorrowRepository.ApproveReturn(id, returnedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("record.status", record.Status))
	return record, nil
}

// FindByUserIDWithContext traces the per-user history query
func (r *GormBorrowRepositoryWithTracing) FindByUserIDWithContext(ctx context.Context, userID uint, limit, offset int) ([]domain.BorrowRecord, error) {
	_, span := tracer.Start(ctx, "repository.FindByUserID",
		trace.WithAttributes(
			attribute.Int("record.user_id", int(userID)),
		),
	)
	defer span.End()

	records, err := r.GormBorrowRepository.FindByUserID(userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("record.count", len(records)))
	return records, nil
}
