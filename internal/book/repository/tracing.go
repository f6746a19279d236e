package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/library-service/internal/book/domain"
)

var tracer = otel.Tracer("book-repository")

// GormBookRepositoryWithTracing wraps GormBookRepository with tracing
type GormBookRepositoryWithTracing struct {
	*GormBookRepository
}

// NewGormBookRepositoryWithTracing creates a new repository with tracing
func NewGormBookRepositoryWithTracing(db *gorm.DB) *GormBookRepositoryWithTracing {
	return &GormBookRepositoryWithTracing{
		GormBookRepository: NewGormBookRepository(db),
	}
}

// CreateWithContext traces the insert
func (r *GormBookRepositoryWithTracing) CreateWithContext(ctx context.Context, book *domain.Book) error {
	_, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("book.isbn", book.ISBN),
			attribute.String("book.title", book.Title),
		),
	)
	defer span.End()

	err := r.GormBookRepository.Create(book)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("book.id", int(book.ID)))
	return nil
}

// FindByIDWithContext traces the lookup
func (r *GormBookRepositoryWithTracing) FindByIDWithContext(ctx context.Context, id uint) (*domain.Book, error) {
	_, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("book.id", int(id)),
		),
	)
	defer span.End()

	book, err := r.GormBookRepository.FindByID(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("book.title", book.Title))
	return book, nil
}
