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
	"github.com/tair/library-service/internal/user/domain"
	"github.com/tair/library-service/internal/user/usecase/command"
	"github.com/tair/library-service/internal/user/usecase/query"
)

// UserHandler handles HTTP requests for users
type UserHandler struct {
	// Command handlers
	registerHandler     *command.RegisterUserHandler
	loginHandler        *command.LoginUserHandler
	updateHandler       *command.UpdateUserHandler
	deleteHandler       *command.DeleteUserHandler
	changeRoleHandler   *command.ChangeRoleHandler
	toggleActiveHandler *command.ToggleActiveHandler

	// Query handlers
	getUserHandler *query.GetUserHandler
	listHandler    *query.ListUsersHandler
	statsHandler   *query.GetStatsHandler

	repo            domain.UserRepository
	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	registeredUsers prometheus.Gauge
}

// NewUserHandler creates a new user handler. The loan guard may be nil
// when the borrow service is unreachable at startup; deletion then skips
// the active-loans check.
func NewUserHandler(repo domain.UserRepository, loans domain.LoanGuard) *UserHandler {
	// Initialize command handlers
	registerHandler := command.NewRegisterUserHandler(repo)
	loginHandler := command.NewLoginUserHandler(repo)
	updateHandler := command.NewUpdateUserHandler(repo)
	deleteHandler := command.NewDeleteUserHandler(repo, loans)
	changeRoleHandler := command.NewChangeRoleHandler(repo)
	toggleActiveHandler := command.NewToggleActiveHandler(repo)

	// Initialize query handlers
	getUserHandler := query.NewGetUserHandler(repo)
	listHandler := query.NewListUsersHandler(repo)
	statsHandler := query.NewGetStatsHandler(repo)

	h := &UserHandler{
		registerHandler:     registerHandler,
		loginHandler:        loginHandler,
		updateHandler:       updateHandler,
		deleteHandler:       deleteHandler,
		changeRoleHandler:   changeRoleHandler,
		toggleActiveHandler: toggleActiveHandler,
		getUserHandler:      getUserHandler,
		listHandler:         listHandler,
		statsHandler:        statsHandler,
		repo:                repo,
	}
	h.initMetrics()
	return h
}

func (h *UserHandler) initMetrics() {
	h.requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_service_requests_total",
			Help: "Total number of requests to user service",
		},
		[]string{"method", "endpoint", "status"},
	)

	h.requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_service_request_duration_seconds",
			Help:    "Duration of user service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	h.registeredUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "user_service_registered_users",
			Help: "Number of registered users in the system",
		},
	)

	prometheus.MustRegister(h.requestCounter)
	prometheus.MustRegister(h.requestLatency)
	prometheus.MustRegister(h.registeredUsers)
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
func (h *UserHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Register handles POST /auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd := command.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     domain.RoleStudent, // Self-registration is always a student account
	}

	user, err := h.registerHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.updateRegisteredUsersMetric()
	h.respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd := command.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	}

	response, err := h.loginHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetProfile handles GET /users/me (authenticated user)
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uint)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "User ID not found in context")
		return
	}

	q := query.GetUserQuery{ID: userID}
	user, err := h.getUserHandler.Handle(q)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /users/me (authenticated user)
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uint)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "User ID not found in context")
		return
	}

	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd := command.UpdateUserCommand{
		ID:       userID,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}

	user, err := h.updateHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// --- ADMIN ENDPOINTS ---

// CreateUser handles POST /admin/users (admin only)
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd := command.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role, // Admin can set role
	}

	user, err := h.registerHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.updateRegisteredUsersMetric()
	h.respondJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /admin/users/{id} (admin only)
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID")
		return
	}

	q := query.GetUserQuery{ID: uint(id)}
	user, err := h.getUserHandler.Handle(q)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// ListUsers handles GET /admin/users (admin only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	role := r.URL.Query().Get("role")

	q := query.ListUsersQuery{
		Limit:  limit,
		Offset: offset,
		Role:   role,
	}

	users, err := h.listHandler.Handle(q)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.updateRegisteredUsersMetric()
	h.respondJSON(w, http.StatusOK, users)
}

// UpdateUser handles PUT /admin/users/{id} (admin only)
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID")
		return
	}

	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd := command.UpdateUserCommand{
		ID:       uint(id),
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}

	user, err := h.updateHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/users/{id} (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID")
		return
	}

	cmd := command.DeleteUserCommand{ID: uint(id)}
	if err := h.deleteHandler.Handle(cmd); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.updateRegisteredUsersMetric()
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// ChangeRole handles PUT /admin/users/{id}/role (admin only)
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID")
		return
	}

	var req struct {
		Role string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd := command.ChangeRoleCommand{
		UserID: uint(id),
		Role:   req.Role,
	}

	user, err := h.changeRoleHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// ToggleActive handles PUT /admin/users/{id}/active (admin only)
func (h *UserHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID")
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmd := command.ToggleActiveCommand{
		UserID:   uint(id),
		IsActive: req.IsActive,
	}

	user, err := h.toggleActiveHandler.Handle(cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// GetStats handles GET /admin/stats (admin only)
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	q := query.GetStatsQuery{}
	stats, err := h.statsHandler.Handle(q)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// GetUserRole handles GET /internal/users/{id}/role. Service-to-service
// endpoint; the borrow service calls it to verify on-behalf targets.
func (h *UserHandler) GetUserRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID")
		return
	}

	user, err := h.getUserHandler.Handle(query.GetUserQuery{ID: uint(id)})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"role": user.Role})
}

// HealthCheck handles GET /health
func (h *UserHandler) HealthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		// Check database connectivity
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

// updateRegisteredUsersMetric updates the registered users gauge
func (h *UserHandler) updateRegisteredUsersMetric() {
	count, err := h.repo.Count()
	if err == nil {
		h.registeredUsers.Set(float64(count))
	}
}

// respondJSON sends a JSON response
func (h *UserHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with a machine-readable code
func (h *UserHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, map[string]string{"code": code, "error": message})
}

// respondDomainError maps domain sentinel errors to HTTP responses
func (h *UserHandler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		h.respondError(w, http.StatusConflict, "DUPLICATE_USER", err.Error())
	case errors.Is(err, domain.ErrActiveLoans):
		h.respondError(w, http.StatusConflict, "ACTIVE_LOANS", err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	// Public routes
	router.HandleFunc("/auth/register", h.metricsMiddleware("/auth/register", h.Register)).Methods("POST")
	router.HandleFunc("/auth/login", h.metricsMiddleware("/auth/login", h.Login)).Methods("POST")

	// Authenticated user routes
	router.HandleFunc("/users/me", h.metricsMiddleware("/users/me", AuthMiddleware(h.GetProfile))).Methods("GET")
	router.HandleFunc("/users/me", h.metricsMiddleware("/users/me", AuthMiddleware(h.UpdateProfile))).Methods("PUT")

	// Admin routes
	router.HandleFunc("/admin/users", h.metricsMiddleware("/admin/users", AdminMiddleware(h.CreateUser))).Methods("POST")
	router.HandleFunc("/admin/users", h.metricsMiddleware("/admin/users", AdminMiddleware(h.ListUsers))).Methods("GET")
	router.HandleFunc("/admin/users/{id}", h.metricsMiddleware("/admin/users/{id}", AdminMiddleware(h.GetUser))).Methods("GET")
	router.HandleFunc("/admin/users/{id}", h.metricsMiddleware("/admin/users/{id}", AdminMiddleware(h.UpdateUser))).Methods("PUT")
	router.HandleFunc("/admin/users/{id}", h.metricsMiddleware("/admin/users/{id}", AdminMiddleware(h.DeleteUser))).Methods("DELETE")
	router.HandleFunc("/admin/users/{id}/role", h.metricsMiddleware("/admin/users/{id}/role", AdminMiddleware(h.ChangeRole))).Methods("PUT")
	router.HandleFunc("/admin/users/{id}/active", h.metricsMiddleware("/admin/users/{id}/active", AdminMiddleware(h.ToggleActive))).Methods("PUT")
	router.HandleFunc("/admin/stats", h.metricsMiddleware("/admin/stats", AdminMiddleware(h.GetStats))).Methods("GET")

	// Service-to-service routes
	router.HandleFunc("/internal/users/{id}/role", h.metricsMiddleware("/internal/users/{id}/role", h.GetUserRole)).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *UserHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", h.HealthCheck(db)).Methods("GET")
}
