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

// RequestBorrow godoc
// @Summary Request a borrow
// @Description Open a PENDING_BORROW claim on a title; admins may request on behalf of a student
// @Tags Lifecycle
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{book_id=int,user_id=int} true "Borrow request (user_id only for admin on-behalf)"
// @Success 201 {object} object{id=int,record_uid=string,user_id=int,book_id=int,status=string}
// @Failure 400 {object} object{code=string,error=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /borrow/requests [post]
func (h *BorrowHandler) RequestBorrowDoc() {}

// ApproveBorrow godoc
// @Summary Approve a borrow (admin)
// @Description Move PENDING_BORROW to BORROWED and reserve one copy
// @Tags Lifecycle
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} object{id=int,status=string,issued_date=string}
// @Failure 404 {object} object{code=string,error=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /borrow/records/{id}/approve-borrow [put]
func (h *BorrowHandler) ApproveBorrowDoc() {}

// RejectBorrow godoc
// @Summary Reject a borrow (admin)
// @Description Move PENDING_BORROW to BORROW_REJECTED with a reason
// @Tags Lifecycle
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Param request body object{reason=string} true "Rejection reason"
// @Success 200 {object} object{id=int,status=string,rejection_reason=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /borrow/records/{id}/reject-borrow [put]
func (h *BorrowHandler) RejectBorrowDoc() {}

// RequestReturn godoc
// @Summary Request a return
// @Description Move BORROWED (or RETURN_REJECTED) to PENDING_RETURN; record owner only
// @Tags Lifecycle
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} object{id=int,status=string,return_request_date=string}
// @Failure 403 {object} object{code=string,error=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /borrow/records/{id}/request-return [put]
func (h *BorrowHandler) RequestReturnDoc() {}

// ApproveReturn godoc
// @Summary Approve a return (admin)
// @Description Move PENDING_RETURN to RETURNED and release the copy back to stock
// @Tags Lifecycle
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} object{id=int,status=string,return_date=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /borrow/records/{id}/approve-return [put]
func (h *BorrowHandler) ApproveReturnDoc() {}

// RejectReturn godoc
// @Summary Reject a return (admin)
// @Description Move PENDING_RETURN to RETURN_REJECTED with a reason; the loan stays open
// @Tags Lifecycle
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Param request body object{reason=string} true "Rejection reason"
// @Success 200 {object} object{id=int,status=string,rejection_reason=string}
// @Failure 409 {object} object{code=string,error=string}
// @Router /borrow/records/{id}/reject-return [put]
func (h *BorrowHandler) RejectReturnDoc() {}

// ListAll godoc
// @Summary List all records (admin)
// @Description List borrow records across all users, optionally filtered by status
// @Tags Records
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status filter"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} object{id=int,user_id=int,book_id=int,status=string}
// @Failure 403 {object} object{error=string}
// @Router /borrow/records [get]
func (h *BorrowHandler) ListAllDoc() {}

// RecordAudit godoc
// @Summary Audit trail of a record (admin)
// @Description List consumed loan events for one borrow record, oldest first
// @Tags Audit
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {array} object{event_id=string,event_type=string,record_id=int,status=string,created_at=string}
// @Failure 403 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /borrow/records/{id}/audit [get]
func (h *BorrowHandler) RecordAuditDoc() {}

// RecentAudit godoc
// @Summary Recent loan events (admin)
// @Description List the newest consumed loan events across all records
// @Tags Audit
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit (default 50)"
// @Success 200 {array} object{event_id=string,event_type=string,record_id=int,status=string,created_at=string}
// @Failure 403 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /borrow/audit [get]
func (h *BorrowHandler) RecentAuditDoc() {}

// GetRecord godoc
// @Summary Get a record
// @Description Get one borrow record; owner or admin
// @Tags Records
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} object{id=int,record_uid=string,user_id=int,book_id=int,status=string}
// @Failure 403 {object} object{code=string,error=string}
// @Failure 404 {object} object{code=string,error=string}
// @Router /borrow/records/{id} [get]
func (h *BorrowHandler) GetRecordDoc() {}

// ListByUser godoc
// @Summary List a user's records
// @Description List borrow records of one user; owner or admin
// @Tags Records
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} object{id=int,book_id=int,status=string}
// @Failure 403 {object} object{code=string,error=string}
// @Router /borrow/users/{id}/records [get]
func (h *BorrowHandler) ListByUserDoc() {}

// ListPendingBorrows godoc
// @Summary Pending borrow queue (admin)
// @Description Records awaiting borrow approval, oldest request first
// @Tags Records
// @Security BearerAuth
// @Produce json
// @Success 200 {array} object{id=int,user_id=int,book_id=int,borrow_request_date=string}
// @Failure 403 {object} object{error=string}
// @Router /borrow/pending-borrows [get]
func (h *BorrowHandler) ListPendingBorrowsDoc() {}

// ListPendingReturns godoc
// @Summary Pending return queue (admin)
// @Description Records awaiting return approval
// @Tags Records
// @Security BearerAuth
// @Produce json
// @Success 200 {array} object{id=int,user_id=int,book_id=int,return_request_date=string}
// @Failure 403 {object} object{error=string}
// @Router /borrow/pending-returns [get]
func (h *BorrowHandler) ListPendingReturnsDoc() {}

// CheckAvailability godoc
// @Summary Check availability
// @Description Whether a title can be borrowed by the caller (stock and active-claim check)
// @Tags Records
// @Security BearerAuth
// @Produce json
// @Param book_id query int true "Book ID"
// @Param user_id query int false "User ID (admin only)"
// @Success 200 {object} object{book_id=int,user_id=int,quantity=int,has_active_claim=bool,borrowable=bool}
// @Failure 404 {object} object{code=string,error=string}
// @Router /borrow/availability [get]
func (h *BorrowHandler) CheckAvailabilityDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string}
// @Failure 503 {object} object{status=string,error=string}
// @Router /health [get]
func (h *BorrowHandler) HealthCheckDoc() {}
