package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/library-service/internal/book/domain"
	"github.com/tair/library-service/internal/book/usecase/command"
	"github.com/tair/library-service/internal/book/usecase/query"
)

// BookHandler handles HTTP requests for the catalog using CQRS
type BookHandler struct {
	// Command handlers
	createHandler *command.CreateBookHandler
	updateHandler *command.UpdateBookHandler
	deleteHandler *command.DeleteBookHandler

	// Query handlers
	getHandler   *query.GetBookHandler
	listHandler  *query.ListBooksHandler
	statsHandler *query.GetStatsHandler

	repo domain.BookRepository

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	catalogSize    prometheus.Gauge
}

// NewBookHandler creates a new book handler (manual DI)
func NewBookHandler(repo domain.BookRepository, guard domain.BorrowGuard) *BookHandler {
	h := &BookHandler{
		createHandler: command.NewCreateBookHandler(repo),
		updateHandler: command.NewUpdateBookHandler(repo),
		deleteHandler: command.NewDeleteBookHandler(repo, guard),
		getHandler:    query.NewGetBookHandler(repo),
		listHandler:   query.NewListBooksHandler(repo),
		statsHandler:  query.NewGetStatsHandler(repo),
		repo:          repo,
	}
	h.initMetrics()
	return h
}

func (h *BookHandler) initMetrics() {
	h.requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_service_requests_total",
			Help: "Total number of requests to book service",
		},
		[]string{"method", "endpoint", "status"},
	)

	h.requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_service_request_duration_seconds",
			Help:    "Duration of book service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	h.catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_service_catalog_size",
			Help: "Number of titles in the catalog",
		},
	)

	prometheus.MustRegister(h.requestCounter)
	prometheus.MustRegister(h.requestLatency)
	prometheus.MustRegister(h.catalogSize)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *BookHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// CreateBook handles POST /books (admin only)
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		ISBN     string `json:"isbn"`
		Category string `json:"category"`
		Quantity int    `json:"quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreateBookCommand{
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Category: req.Category,
		Quantity: req.Quantity,
	}

	book, err := h.createHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.updateCatalogMetric()
	h.respondJSON(w, http.StatusCreated, book)
}

// GetBook handles GET /books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := h.getHandler.Handle(query.GetBookQuery{ID: uint(id)})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, book)
}

// ListBooks handles GET /books
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	q := query.ListBooksQuery{
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	}

	books, err := h.listHandler.Handle(q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.updateCatalogMetric()
	h.respondJSON(w, http.StatusOK, books)
}

// UpdateBook handles PUT /books/{id} (admin only)
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		Category string `json:"category"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateBookCommand{
		ID:       uint(id),
		Title:    req.Title,
		Author:   req.Author,
		Category: req.Category,
	}

	book, err := h.updateHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /books/{id} (admin only)
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if err := h.deleteHandler.Handle(command.DeleteBookCommand{ID: uint(id)}); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.updateCatalogMetric()
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}

// GetStats handles GET /books/stats (admin only)
func (h *BookHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(query.GetStatsQuery{})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// HealthCheck handles GET /health
func (h *BookHandler) HealthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}

		h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func (h *BookHandler) updateCatalogMetric() {
	count, err := h.repo.Count()
	if err == nil {
		h.catalogSize.Set(float64(count))
	}
}

// respondDomainError maps catalog error kinds to HTTP statuses
func (h *BookHandler) respondDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateISBN):
		status, code = http.StatusConflict, "DUPLICATE_ISBN"
	case errors.Is(err, domain.ErrActiveRecords):
		status, code = http.StatusConflict, "ACTIVE_RECORDS"
	}

	h.respondJSON(w, status, map[string]string{
		"code":  code,
		"error": err.Error(),
	})
}

// respondJSON sends a JSON response
func (h *BookHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RegisterRoutes registers all catalog routes
func (h *BookHandler) RegisterRoutes(router *mux.Router) {
	// Reads are open to any authenticated user
	router.HandleFunc("/books", h.metricsMiddleware("/books", AuthMiddleware(h.ListBooks))).Methods("GET")
	router.HandleFunc("/books/stats", h.metricsMiddleware("/books/stats", AdminMiddleware(h.GetStats))).Methods("GET")
	router.HandleFunc("/books/{id}", h.metricsMiddleware("/books/{id}", AuthMiddleware(h.GetBook))).Methods("GET")

	// Catalog mutation is admin-only
	router.HandleFunc("/books", h.metricsMiddleware("/books", AdminMiddleware(h.CreateBook))).Methods("POST")
	router.HandleFunc("/books/{id}", h.metricsMiddleware("/books/{id}", AdminMiddleware(h.UpdateBook))).Methods("PUT")
	router.HandleFunc("/books/{id}", h.metricsMiddleware("/books/{id}", AdminMiddleware(h.DeleteBook))).Methods("DELETE")
}

// RegisterHealthCheck registers health check endpoint
func (h *BookHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", h.HealthCheck(db)).Methods("GET")
}
