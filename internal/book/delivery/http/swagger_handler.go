package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	// Swagger UI
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// ListBooks godoc
// @Summary List catalog titles
// @Description List all non-delisted titles, optionally filtered by category
// @Tags Books
// @Security BearerAuth
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {array} object{id=int,title=string,author=string,isbn=string,category=string,quantity=int}
// @Failure 401 {object} object{error=string}
// @Router /books [get]
func (h *BookHandler) ListBooksDoc() {}

// GetBook godoc
// @Summary Get a title
// @Description Get one catalog title by ID
// @Tags Books
// @Security BearerAuth
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} object{id=int,title=string,author=string,isbn=string,category=string,quantity=int}
// @Failure 404 {object} object{error=string}
// @Router /books/{id} [get]
func (h *BookHandler) GetBookDoc() {}

// GetStats godoc
// @Summary Catalog statistics (admin)
// @Description Total and available title counts
// @Tags Books
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{total_books=int,available_books=int}
// @Failure 403 {object} object{error=string}
// @Router /books/stats [get]
func (h *BookHandler) GetStatsDoc() {}

// CreateBook godoc
// @Summary Add a title (admin)
// @Description Register a new title in the catalog
// @Tags Books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{title=string,author=string,isbn=string,category=string,quantity=int} true "Book data"
// @Success 201 {object} object{id=int,title=string,author=string,isbn=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /books [post]
func (h *BookHandler) CreateBookDoc() {}

// UpdateBook godoc
// @Summary Update a title (admin)
// @Description Update title metadata; stock changes flow through the borrow lifecycle
// @Tags Books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param request body object{title=string,author=string,category=string} true "Update data"
// @Success 200 {object} object{id=int,title=string,author=string,category=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBookDoc() {}

// DeleteBook godoc
// @Summary Delist a title (admin)
// @Description Soft-delete a title; refused while borrow records are active
// @Tags Books
// @Security BearerAuth
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBookDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string}
// @Failure 503 {object} object{status=string,error=string}
// @Router /health [get]
func (h *BookHandler) HealthCheckDoc() {}
