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

	"github.com/tair/library-service/internal/audit"
	bookdomain "github.com/tair/library-service/internal/book/domain"
	bookrepository "github.com/tair/library-service/internal/book/repository"
	"github.com/tair/library-service/internal/borrow/domain"
	"github.com/tair/library-service/internal/borrow/repository"
	"github.com/tair/library-service/internal/borrow/usecase/command"
	"github.com/tair/library-service/internal/borrow/usecase/query"
	"github.com/tair/library-service/pkg/auth"
)

// stubDirectory answers role lookups from a fixed map
type stubDirectory struct {
	roles map[uint]string
}

func (d *stubDirectory) RoleOf(userID uint) (string, error) {
	role, ok := d.roles[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return role, nil
}

// stubAuditTrail serves canned audit entries from memory
type stubAuditTrail struct {
	entries []audit.Entry
}

func (s *stubAuditTrail) FindByRecord(recordID uint) ([]audit.Entry, error) {
	var out []audit.Entry
	for _, e := range s.entries {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubAuditTrail) FindRecent(limit int) ([]audit.Entry, error) {
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[:limit], nil
}

func newTestRouter(t *testing.T) (*mux.Router, *gorm.DB, *BorrowHandler) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.AutoMigrate(&bookdomain.Book{}, &domain.BorrowRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	repo := repository.NewGormBorrowRepository(db)
	bookRepo := bookrepository.NewGormBookRepository(db)
	directory := &stubDirectory{roles: map[uint]string{1: domain.RoleStudent, 2: domain.RoleStudent, 9: domain.RoleAdmin}}

	commands := &CommandHandlers{
		RequestBorrowHandler: command.NewRequestBorrowHandler(repo, directory),
		ApproveBorrowHandler: command.NewApproveBorrowHandler(repo),
		RejectBorrowHandler:  command.NewRejectBorrowHandler(repo),
		RequestReturnHandler: command.NewRequestReturnHandler(repo),
		ApproveReturnHandler: command.NewApproveReturnHandler(repo),
		RejectReturnHandler:  command.NewRejectReturnHandler(repo),
	}
	queries := &QueryHandlers{
		GetRecordHandler:      query.NewGetRecordHandler(repo),
		ListByUserHandler:     query.NewListByUserHandler(repo),
		ListAllHandler:        query.NewListAllHandler(repo),
		PendingBorrowsHandler: query.NewListPendingBorrowsHandler(repo),
		PendingReturnsHandler: query.NewListPendingReturnsHandler(repo),
		AvailabilityHandler:   query.NewCheckAvailabilityHandler(repo, bookRepo),
	}

	handler := NewBorrowHandlerWithDI(commands, queries, repo)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, db, handler
}

func bearer(t *testing.T, userID uint, username, role string) string {
	token, err := auth.GenerateToken(userID, username, role)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
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
func TestBorrowLifecycleHTTP(t *testing.T) {
	router, db, handler := newTestRouter(t)

	book := &bookdomain.Book{Title: "The Pragmatic Programmer", Author: "Hunt & Thomas", ISBN: "978-0135957059", Quantity: 1}
	assert.NoError(t, db.Create(book).Error)

	studentToken := bearer(t, 1, "alice", domain.RoleStudent)
	otherToken := bearer(t, 2, "bob", domain.RoleStudent)
	adminToken := bearer(t, 9, "root", domain.RoleAdmin)

	var recordID uint

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		w := doJSON(router, "POST", "/borrow/requests", "", map[string]uint{"book_id": book.ID})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("student files a borrow request", func(t *testing.T) {
		w := doJSON(router, "POST", "/borrow/requests", studentToken, map[string]uint{"book_id": book.ID})
		assert.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "PENDING_BORROW", body["status"])
		assert.Equal(t, float64(1), body["user_id"])
		recordID = uint(body["id"].(float64))
	})

	t.Run("duplicate claim maps to 409", func(t *testing.T) {
		w := doJSON(router, "POST", "/borrow/requests", studentToken, map[string]uint{"book_id": book.ID})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "DUPLICATE_ACTIVE_CLAIM", decodeBody(t, w)["code"])
	})

	t.Run("student cannot approve", func(t *testing.T) {
		w := doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/approve-borrow", recordID), studentToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin approves the borrow", func(t *testing.T) {
		w := doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/approve-borrow", recordID), adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "BORROWED", body["status"])
		assert.NotNil(t, body["issued_date"])
	})

	t.Run("second approval maps to 409", func(t *testing.T) {
		w := doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/approve-borrow", recordID), adminToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE_TRANSITION", decodeBody(t, w)["code"])
	})

	t.Run("out of stock maps to 409", func(t *testing.T) {
		w := doJSON(router, "POST", "/borrow/requests", otherToken, map[string]uint{"book_id": book.ID})
		assert.Equal(t, http.StatusCreated, w.Code)
		starved := uint(decodeBody(t, w)["id"].(float64))

		w = doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/approve-borrow", starved), adminToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "OUT_OF_STOCK", decodeBody(t, w)["code"])

		// Starved record is still pending in the admin queue
		w = doJSON(router, "GET", "/borrow/pending-borrows", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var queue []map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &queue))
		assert.Len(t, queue, 1)

		// Clean up so the main record's flow continues alone
		w = doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/reject-borrow", starved), adminToken, map[string]string{"reason": "no copies left"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "BORROW_REJECTED", decodeBody(t, w)["status"])
	})

	t.Run("availability reflects stock and claims", func(t *testing.T) {
		w := doJSON(router, "GET", fmt.Sprintf("/borrow/availability?book_id=%d", book.ID), otherToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, false, body["borrowable"])
		assert.Equal(t, float64(0), body["quantity"])

		// Admin can ask on behalf of the record holder
		w = doJSON(router, "GET", fmt.Sprintf("/borrow/availability?book_id=%d&user_id=1", book.ID), adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w)["has_active_claim"])
	})

	t.Run("only the borrower requests the return", func(t *testing.T) {
		w := doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/request-return", recordID), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeBody(t, w)["code"])

		w = doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/request-return", recordID), studentToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "PENDING_RETURN", decodeBody(t, w)["status"])
	})

	t.Run("rejected return can be retried", func(t *testing.T) {
		w := doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/reject-return", recordID), adminToken, map[string]string{"reason": "water damage"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "RETURN_REJECTED", decodeBody(t, w)["status"])

		w = doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/request-return", recordID), studentToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "PUT", fmt.Sprintf("/borrow/records/%d/approve-return", recordID), adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "RETURNED", body["status"])
		assert.NotNil(t, body["return_date"])

		var reloaded bookdomain.Book
		assert.NoError(t, db.First(&reloaded, book.ID).Error)
		assert.Equal(t, 1, reloaded.Quantity)
	})

	t.Run("record access is owner or admin", func(t *testing.T) {
		w := doJSON(router, "GET", fmt.Sprintf("/borrow/records/%d", recordID), studentToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "GET", fmt.Sprintf("/borrow/records/%d", recordID), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(router, "GET", "/borrow/records/9999", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decodeBody(t, w)["code"])
	})

	t.Run("history lists terminal records", func(t *testing.T) {
		w := doJSON(router, "GET", "/borrow/users/1/records", studentToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var records []map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		assert.Len(t, records, 1)
		assert.Equal(t, "RETURNED", records[0]["status"])

		// Students cannot read someone else's history
		w = doJSON(router, "GET", "/borrow/users/2/records", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("list all is admin only", func(t *testing.T) {
		w := doJSON(router, "GET", "/borrow/records", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(router, "GET", "/borrow/records", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var records []map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		assert.Len(t, records, 2)
	})

	t.Run("list all filters by status", func(t *testing.T) {
		w := doJSON(router, "GET", "/borrow/records?status=RETURNED", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var records []map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		assert.Len(t, records, 1)
		assert.Equal(t, "RETURNED", records[0]["status"])

		w = doJSON(router, "GET", "/borrow/records?status=BORROWED", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		records = nil
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		assert.Len(t, records, 0)

		w = doJSON(router, "GET", "/borrow/records?status=LOST", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, w)["code"])
	})

	t.Run("audit trail unavailable until configured", func(t *testing.T) {
		w := doJSON(router, "GET", "/borrow/records/1/audit", adminToken, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = doJSON(router, "GET", "/borrow/audit", adminToken, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("audit trail reads", func(t *testing.T) {
		handler.SetAuditTrail(&stubAuditTrail{entries: []audit.Entry{
			{ID: 2, EventID: "evt-2", EventType: "loan.return_approved", RecordID: 1, UserID: 1, BookID: 1, Status: "RETURNED"},
			{ID: 1, EventID: "evt-1", EventType: "loan.borrow_approved", RecordID: 1, UserID: 1, BookID: 1, Status: "BORROWED"},
		}})

		w := doJSON(router, "GET", "/borrow/records/1/audit", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var entries []map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		assert.Len(t, entries, 2)

		// Unknown records yield an empty trail, not an error
		w = doJSON(router, "GET", "/borrow/records/999/audit", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		entries = nil
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		assert.Len(t, entries, 0)

		w = doJSON(router, "GET", "/borrow/audit?limit=1", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		entries = nil
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		assert.Len(t, entries, 1)

		// Students never see the trail
		w = doJSON(router, "GET", "/borrow/records/1/audit", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = doJSON(router, "GET", "/borrow/audit", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("internal active count", func(t *testing.T) {
		w := doJSON(router, "GET", "/borrow/internal/active-count?user_id=1", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), decodeBody(t, w)["active_records"])
	})
}
