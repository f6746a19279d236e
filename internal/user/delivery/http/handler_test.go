package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tair/library-service/internal/user/domain"
	"github.com/tair/library-service/internal/user/repository"
	"github.com/tair/library-service/pkg/auth"
)

// stubLoans reports a fixed active record count per user
type stubLoans struct {
	active map[uint]int64
}

func (s *stubLoans) ActiveRecordCount(userID uint) (int64, error) {
	return s.active[userID], nil
}

func newTestRouter(t *testing.T, loans domain.LoanGuard) (*mux.Router, *repository.GormUserRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	repo := repository.NewGormUserRepository(db)
	handler := NewUserHandler(repo, loans)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, repo
}

func doJSON(router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

// The handler registers its Prometheus collectors in the default registry,
// so the whole HTTP surface is exercised through one handler instance.
func TestUserServiceHTTP(t *testing.T) {
	loans := &stubLoans{active: map[uint]int64{}}
	router, _ := newTestRouter(t, loans)

	var (
		aliceID    uint
		aliceToken string
		adminToken string
	)

	t.Run("self registration is always a student", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/register", "", map[string]string{
			"username":  "alice",
			"email":     "alice@example.com",
			"password":  "secret123",
			"full_name": "Alice Student",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "student", body["role"])
		// Password hash never leaves the service
		_, leaked := body["password"]
		assert.False(t, leaked)
		aliceID = uint(body["id"].(float64))
	})

	t.Run("duplicate registration maps to 409", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/register", "", map[string]string{
			"username":  "alice",
			"email":     "elsewhere@example.com",
			"password":  "secret123",
			"full_name": "Impostor",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "DUPLICATE_USER", decodeBody(t, w)["code"])
	})

	t.Run("login returns a usable token", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/login", "", map[string]string{
			"username": "alice",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		token := body["token"].(string)
		claims, err := auth.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, aliceID, claims.UserID)
		aliceToken = "Bearer " + token
	})

	t.Run("bad credentials map to 401", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/login", "", map[string]string{
			"username": "alice",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeBody(t, w)["code"])
	})

	t.Run("profile round trip", func(t *testing.T) {
		w := doJSON(router, "GET", "/users/me", aliceToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", decodeBody(t, w)["username"])

		w = doJSON(router, "PUT", "/users/me", aliceToken, map[string]string{
			"email":     "alice@example.com",
			"full_name": "Alice Renamed",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Alice Renamed", decodeBody(t, w)["full_name"])
	})

	t.Run("admin endpoints refuse students", func(t *testing.T) {
		w := doJSON(router, "GET", "/admin/users", aliceToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin creates and promotes accounts", func(t *testing.T) {
		// Bootstrap an admin token directly; the first admin comes from
		// outside the HTTP surface
		token, err := auth.GenerateToken(999, "root", domain.RoleAdmin)
		assert.NoError(t, err)
		adminToken = "Bearer " + token

		w := doJSON(router, "POST", "/admin/users", adminToken, map[string]string{
			"username":  "librarian",
			"email":     "librarian@example.com",
			"password":  "secret123",
			"full_name": "Head Librarian",
			"role":      "admin",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "admin", decodeBody(t, w)["role"])

		w = doJSON(router, "PUT", fmt.Sprintf("/admin/users/%d/role", aliceID), adminToken, map[string]string{"role": "admin"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", decodeBody(t, w)["role"])

		w = doJSON(router, "PUT", fmt.Sprintf("/admin/users/%d/role", aliceID), adminToken, map[string]string{"role": "student"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("internal role endpoint", func(t *testing.T) {
		w := doJSON(router, "GET", fmt.Sprintf("/internal/users/%d/role", aliceID), "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "student", decodeBody(t, w)["role"])

		w = doJSON(router, "GET", "/internal/users/9999/role", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete refuses users with active loans", func(t *testing.T) {
		loans.active[aliceID] = 2

		w := doJSON(router, "DELETE", fmt.Sprintf("/admin/users/%d", aliceID), adminToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ACTIVE_LOANS", decodeBody(t, w)["code"])

		loans.active[aliceID] = 0
		w = doJSON(router, "DELETE", fmt.Sprintf("/admin/users/%d", aliceID), adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("deactivated accounts cannot log in", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/register", "", map[string]string{
			"username":  "carol",
			"email":     "carol@example.com",
			"password":  "secret123",
			"full_name": "Carol Student",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		carolID := uint(decodeBody(t, w)["id"].(float64))

		w = doJSON(router, "PUT", fmt.Sprintf("/admin/users/%d/active", carolID), adminToken, map[string]bool{"is_active": false})
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "POST", "/auth/login", "", map[string]string{
			"username": "carol",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("stats count by role", func(t *testing.T) {
		w := doJSON(router, "GET", "/admin/stats", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		// librarian (admin) and carol (student); alice was deleted
		assert.Equal(t, float64(2), body["total_users"])
		assert.Equal(t, float64(1), body["admin_count"])
		assert.Equal(t, float64(1), body["student_count"])
	})
}
