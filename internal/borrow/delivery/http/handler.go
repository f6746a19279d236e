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

	"github.com/tair/library-service/internal/audit"
	"github.com/tair/library-service/internal/borrow/domain"
	"github.com/tair/library-service/internal/borrow/usecase/command"
	"github.com/tair/library-service/internal/borrow/usecase/query"
	"github.com/tair/library-service/kafka"
	"github.com/tair/library-service/pkg/logger"
)

// AuditTrail reads back the loan event trail written by the Kafka
// consumer; optional like the publisher.
type AuditTrail interface {
	FindByRecord(recordID uint) ([]audit.Entry, error)
	FindRecent(limit int) ([]audit.Entry, error)
}

// BorrowHandler handles HTTP requests for the borrow lifecycle using CQRS
type BorrowHandler struct {
	// Command handlers
	requestBorrowHandler *command.RequestBorrowHandler
	approveBorrowHandler *command.ApproveBorrowHandler
	rejectBorrowHandler  *command.RejectBorrowHandler
	requestReturnHandler *command.RequestReturnHandler
	approveReturnHandler *command.ApproveReturnHandler
	rejectReturnHandler  *command.RejectReturnHandler

	// Query handlers
	getRecordHandler      *query.GetRecordHandler
	listByUserHandler     *query.ListByUserHandler
	listAllHandler        *query.ListAllHandler
	pendingBorrowsHandler *query.ListPendingBorrowsHandler
	pendingReturnsHandler *query.ListPendingReturnsHandler
	availabilityHandler   *query.CheckAvailabilityHandler

	repo           domain.BorrowRecordRepository
	kafkaPublisher *kafka.Publisher
	auditTrail     AuditTrail

	requestCounter    *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	transitionCounter *prometheus.CounterVec
	pendingBorrows    prometheus.Gauge
}

// NewBorrowHandlerWithDI creates a new borrow handler using dependency injection
func NewBorrowHandlerWithDI(
	commands *CommandHandlers,
	queries *QueryHandlers,
	repo domain.BorrowRecordRepository,
) *BorrowHandler {
	h := &BorrowHandler{
		requestBorrowHandler:  commands.RequestBorrowHandler,
		approveBorrowHandler:  commands.ApproveBorrowHandler,
		rejectBorrowHandler:   commands.RejectBorrowHandler,
		requestReturnHandler:  commands.RequestReturnHandler,
		approveReturnHandler:  commands.ApproveReturnHandler,
		rejectReturnHandler:   commands.RejectReturnHandler,
		getRecordHandler:      queries.GetRecordHandler,
		listByUserHandler:     queries.ListByUserHandler,
		listAllHandler:        queries.ListAllHandler,
		pendingBorrowsHandler: queries.PendingBorrowsHandler,
		pendingReturnsHandler: queries.PendingReturnsHandler,
		availabilityHandler:   queries.AvailabilityHandler,
		repo:                  repo,
	}
	h.initMetrics()
	return h
}

// SetKafkaPublisher attaches the loan event publisher (optional)
func (h *BorrowHandler) SetKafkaPublisher(publisher *kafka.Publisher) {
	h.kafkaPublisher = publisher
}

// SetAuditTrail attaches the audit trail store (optional)
func (h *BorrowHandler) SetAuditTrail(trail AuditTrail) {
	h.auditTrail = trail
}

func (h *BorrowHandler) initMetrics() {
	h.requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borrow_service_requests_total",
			Help: "Total number of requests to borrow service",
		},
		[]string{"method", "endpoint", "status"},
	)

	h.requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "borrow_service_request_duration_seconds",
			Help:    "Duration of borrow service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	h.transitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borrow_service_transitions_total",
			Help: "Total number of lifecycle transitions by resulting status",
		},
		[]string{"transition", "outcome"},
	)

	h.pendingBorrows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "borrow_service_pending_borrows",
			Help: "Number of borrow requests awaiting approval",
		},
	)

	prometheus.MustRegister(h.requestCounter)
	prometheus.MustRegister(h.requestLatency)
	prometheus.MustRegister(h.transitionCounter)
	prometheus.MustRegister(h.pendingBorrows)
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
func (h *BorrowHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// RequestBorrow handles POST /borrow/requests
func (h *BorrowHandler) RequestBorrow(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Actor not found in context")
		return
	}

	var req struct {
		UserID uint `json:"user_id"`
		BookID uint `json:"book_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Students request for themselves when no borrower is given
	if req.UserID == 0 {
		req.UserID = actor.UserID
	}

	cmd := command.RequestBorrowCommand{
		Actor:  actor,
		UserID: req.UserID,
		BookID: req.BookID,
	}

	record, err := h.requestBorrowHandler.Handle(cmd)
	if err != nil {
		h.transitionCounter.WithLabelValues("request_borrow", "error").Inc()
		h.respondDomainError(w, err)
		return
	}

	h.transitionCounter.WithLabelValues("request_borrow", "ok").Inc()
	h.updatePendingGauge()
	h.respondJSON(w, http.StatusCreated, record)
}

// ApproveBorrow handles PUT /borrow/records/{id}/approve-borrow
func (h *BorrowHandler) ApproveBorrow(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "approve_borrow", func(actor domain.Actor, id uint, _ string) (*domain.BorrowRecord, error) {
		record, err := h.approveBorrowHandler.Handle(command.ApproveBorrowCommand{Actor: actor, RecordID: id})
		if err != nil {
			return nil, err
		}
		h.publishEvent(r.Context(), kafka.EventTypeBorrowApproved, record)
		return record, nil
	})
}

// RejectBorrow handles PUT /borrow/records/{id}/reject-borrow
func (h *BorrowHandler) RejectBorrow(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "reject_borrow", func(actor domain.Actor, id uint, reason string) (*domain.BorrowRecord, error) {
		record, err := h.rejectBorrowHandler.Handle(command.RejectBorrowCommand{Actor: actor, RecordID: id, Reason: reason})
		if err != nil {
			return nil, err
		}
		h.publishEvent(r.Context(), kafka.EventTypeBorrowRejected, record)
		return record, nil
	})
}

// RequestReturn handles PUT /borrow/records/{id}/request-return
func (h *BorrowHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "request_return", func(actor domain.Actor, id uint, _ string) (*domain.BorrowRecord, error) {
		return h.requestReturnHandler.Handle(command.RequestReturnCommand{Actor: actor, RecordID: id})
	})
}

// ApproveReturn handles PUT /borrow/records/{id}/approve-return
func (h *BorrowHandler) ApproveReturn(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "approve_return", func(actor domain.Actor, id uint, _ string) (*domain.BorrowRecord, error) {
		record, err := h.approveReturnHandler.Handle(command.ApproveReturnCommand{Actor: actor, RecordID: id})
		if err != nil {
			return nil, err
		}
		h.publishEvent(r.Context(), kafka.EventTypeReturnApproved, record)
		return record, nil
	})
}

// RejectReturn handles PUT /borrow/records/{id}/reject-return
func (h *BorrowHandler) RejectReturn(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "reject_return", func(actor domain.Actor, id uint, reason string) (*domain.BorrowRecord, error) {
		record, err := h.rejectReturnHandler.Handle(command.RejectReturnCommand{Actor: actor, RecordID: id, Reason: reason})
		if err != nil {
			return nil, err
		}
		h.publishEvent(r.Context(), kafka.EventTypeReturnRejected, record)
		return record, nil
	})
}

// resolve factors the shared flow of the transition endpoints: actor from
// context, record id from path, optional reason from body
func (h *BorrowHandler) resolve(w http.ResponseWriter, r *http.Request, transition string,
	fn func(actor domain.Actor, id uint, reason string) (*domain.BorrowRecord, error),
) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Actor not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		// Reason body is optional on approve endpoints
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	record, err := fn(actor, uint(id), req.Reason)
	if err != nil {
		h.transitionCounter.WithLabelValues(transition, "error").Inc()
		h.respondDomainError(w, err)
		return
	}

	h.transitionCounter.WithLabelValues(transition, "ok").Inc()
	h.updatePendingGauge()
	h.respondJSON(w, http.StatusOK, record)
}

// GetRecord handles GET /borrow/records/{id}
func (h *BorrowHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Actor not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	record, err := h.getRecordHandler.Handle(query.GetRecordQuery{Actor: actor, RecordID: uint(id)})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// ListByUser handles GET /borrow/users/{id}/records
func (h *BorrowHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Actor not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	limit, offset := pagination(r)
	records, err := h.listByUserHandler.Handle(query.ListByUserQuery{
		Actor:  actor,
		UserID: uint(id),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

// ListAll handles GET /borrow/records (admin only)
func (h *BorrowHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Actor not found in context")
		return
	}

	limit, offset := pagination(r)
	records, err := h.listAllHandler.Handle(query.ListAllQuery{
		Actor:  actor,
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

// ListPendingBorrows handles GET /borrow/pending-borrows (admin only)
func (h *BorrowHandler) ListPendingBorrows(w http.ResponseWriter, r *http.Request) {
	h.listPending(w, r, h.pendingBorrowsHandler.Handle)
}

// ListPendingReturns handles GET /borrow/pending-returns (admin only)
func (h *BorrowHandler) ListPendingReturns(w http.ResponseWriter, r *http.Request) {
	h.listPending(w, r, h.pendingReturnsHandler.Handle)
}

func (h *BorrowHandler) listPending(w http.ResponseWriter, r *http.Request,
	handle func(query.ListPendingQuery) ([]domain.BorrowRecord, error),
) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Actor not found in context")
		return
	}

	limit, offset := pagination(r)
	records, err := handle(query.ListPendingQuery{Actor: actor, Limit: limit, Offset: offset})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

// CheckAvailability handles GET /borrow/availability?book_id=N
func (h *BorrowHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Actor not found in context")
		return
	}

	bookID, err := strconv.ParseUint(r.URL.Query().Get("book_id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	// The projection is personalized; admins may ask for another user
	userID := actor.UserID
	if actor.IsAdmin() {
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid user ID")
				return
			}
			userID = uint(parsed)
		}
	}

	availability, err := h.availabilityHandler.Handle(query.CheckAvailabilityQuery{
		UserID: userID,
		BookID: uint(bookID),
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, availability)
}

// RecordAudit handles GET /borrow/records/{id}/audit (admin only). The
// trail comes from consumed Kafka events, so it lags live transitions.
func (h *BorrowHandler) RecordAudit(w http.ResponseWriter, r *http.Request) {
	if h.auditTrail == nil {
		respondError(w, http.StatusServiceUnavailable, "Audit trail not configured")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	entries, err := h.auditTrail.FindByRecord(uint(id))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	h.respondJSON(w, http.StatusOK, entries)
}

// RecentAudit handles GET /borrow/audit?limit=N (admin only)
func (h *BorrowHandler) RecentAudit(w http.ResponseWriter, r *http.Request) {
	if h.auditTrail == nil {
		respondError(w, http.StatusServiceUnavailable, "Audit trail not configured")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.auditTrail.FindRecent(limit)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	h.respondJSON(w, http.StatusOK, entries)
}

// ActiveCount handles GET /borrow/internal/active-count?user_id=N; used by
// the user service to refuse deleting users with outstanding loans
func (h *BorrowHandler) ActiveCount(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	count, err := h.repo.CountActiveByUser(uint(userID))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int64{"active_records": count})
}

// HealthCheck handles GET /health
func (h *BorrowHandler) HealthCheck(db *sql.DB) http.HandlerFunc {
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

func (h *BorrowHandler) publishEvent(ctx context.Context, eventType string, record *domain.BorrowRecord) {
	if h.kafkaPublisher == nil {
		return
	}
	// Event delivery never fails the transition
	if err := h.kafkaPublisher.PublishLoanEvent(ctx, kafka.NewLoanEvent(eventType, record.ID, record.UserID, record.BookID, record.Status, record.RejectionReason)); err != nil {
		logger.Warn(ctx).Err(err).Str("event_type", eventType).Msg("Failed to publish loan event")
	}
}

func (h *BorrowHandler) updatePendingGauge() {
	count, err := h.repo.FindByStatus(domain.StatusPendingBorrow, 0, 0)
	if err == nil {
		h.pendingBorrows.Set(float64(len(count)))
	}
}

func pagination(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

// respondDomainError maps a domain error kind to a distinct HTTP status
// and machine-readable code so clients can branch without parsing text
func (h *BorrowHandler) respondDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateActiveClaim):
		status, code = http.StatusConflict, "DUPLICATE_ACTIVE_CLAIM"
	case errors.Is(err, domain.ErrOutOfStock):
		status, code = http.StatusConflict, "OUT_OF_STOCK"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		status, code = http.StatusConflict, "INVALID_STATE_TRANSITION"
	}

	h.respondJSON(w, status, map[string]string{
		"code":  code,
		"error": err.Error(),
	})
}

// respondJSON sends a JSON response
func (h *BorrowHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RegisterRoutes registers all borrow lifecycle routes
func (h *BorrowHandler) RegisterRoutes(router *mux.Router) {
	// Request-side transitions (record owner, or admin on behalf)
	router.HandleFunc("/borrow/requests", h.metricsMiddleware("/borrow/requests", AuthMiddleware(h.RequestBorrow))).Methods("POST")
	router.HandleFunc("/borrow/records/{id}/request-return", h.metricsMiddleware("/borrow/records/{id}/request-return", AuthMiddleware(h.RequestReturn))).Methods("PUT")

	// Approval-side transitions (admin only)
	router.HandleFunc("/borrow/records/{id}/approve-borrow", h.metricsMiddleware("/borrow/records/{id}/approve-borrow", AdminMiddleware(h.ApproveBorrow))).Methods("PUT")
	router.HandleFunc("/borrow/records/{id}/reject-borrow", h.metricsMiddleware("/borrow/records/{id}/reject-borrow", AdminMiddleware(h.RejectBorrow))).Methods("PUT")
	router.HandleFunc("/borrow/records/{id}/approve-return", h.metricsMiddleware("/borrow/records/{id}/approve-return", AdminMiddleware(h.ApproveReturn))).Methods("PUT")
	router.HandleFunc("/borrow/records/{id}/reject-return", h.metricsMiddleware("/borrow/records/{id}/reject-return", AdminMiddleware(h.RejectReturn))).Methods("PUT")

	// Projections
	router.HandleFunc("/borrow/records", h.metricsMiddleware("/borrow/records", AdminMiddleware(h.ListAll))).Methods("GET")
	router.HandleFunc("/borrow/records/{id}", h.metricsMiddleware("/borrow/records/{id}", AuthMiddleware(h.GetRecord))).Methods("GET")
	router.HandleFunc("/borrow/users/{id}/records", h.metricsMiddleware("/borrow/users/{id}/records", AuthMiddleware(h.ListByUser))).Methods("GET")
	router.HandleFunc("/borrow/pending-borrows", h.metricsMiddleware("/borrow/pending-borrows", AdminMiddleware(h.ListPendingBorrows))).Methods("GET")
	router.HandleFunc("/borrow/pending-returns", h.metricsMiddleware("/borrow/pending-returns", AdminMiddleware(h.ListPendingReturns))).Methods("GET")
	router.HandleFunc("/borrow/availability", h.metricsMiddleware("/borrow/availability", AuthMiddleware(h.CheckAvailability))).Methods("GET")

	// Audit trail (admin only)
	router.HandleFunc("/borrow/audit", h.metricsMiddleware("/borrow/audit", AdminMiddleware(h.RecentAudit))).Methods("GET")
	router.HandleFunc("/borrow/records/{id}/audit", h.metricsMiddleware("/borrow/records/{id}/audit", AdminMiddleware(h.RecordAudit))).Methods("GET")

	// Service-to-service endpoint, not exposed through the gateway
	router.HandleFunc("/borrow/internal/active-count", h.ActiveCount).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *BorrowHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", h.HealthCheck(db)).Methods("GET")
}
