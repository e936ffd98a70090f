package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Centralink87/centralinkxyz/internal/storage"
	"github.com/Centralink87/centralinkxyz/telemetry"
)

// Admin decision endpoints. Validation is idempotent: re-validating returns
// the record unchanged and keeps the original approval timestamp. Rejection
// permanently deletes and is only allowed while the record is still pending.

// ValidateRequest godoc
// @Summary      Validate a pending request
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Request id"
// @Success      200  {object}  RequestView
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/requests/{id}/validate [post]
func (h *Handlers) ValidateRequest(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	r, err := h.Store.GetRequest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch"})
		return
	}

	if !r.MarkValidated(time.Now()) {
		// already validated, nothing to write
		c.JSON(http.StatusOK, toRequestView(r))
		return
	}
	if err := h.Store.UpdateRequest(c.Request.Context(), r); err != nil {
		h.Log.Error("validate request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}

	telemetry.IncRecordsValidated("request")
	h.audit("request", r.ID, "validated", uid)
	c.JSON(http.StatusOK, toRequestView(r))
}

// RejectRequest godoc
// @Summary      Reject (delete) a pending request
// @Description  Refused with 409 once the request has been validated.
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Request id"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/requests/{id}/reject [post]
func (h *Handlers) RejectRequest(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	r, err := h.Store.GetRequest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch"})
		return
	}
	if r.IsValidated {
		c.JSON(http.StatusConflict, gin.H{"error": "request has already been validated"})
		return
	}
	if err := h.Store.DeleteRequest(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete"})
		return
	}

	telemetry.IncRecordsRejected("request")
	h.audit("request", id, "rejected", uid)
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// ValidateTransaction godoc
// @Summary      Validate a pending transaction
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Transaction id"
// @Success      200  {object}  TransactionView
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/transactions/{id}/validate [post]
func (h *Handlers) ValidateTransaction(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	t, err := h.Store.GetTransaction(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch"})
		return
	}

	if !t.MarkValidated(time.Now()) {
		c.JSON(http.StatusOK, toTransactionView(t))
		return
	}
	if err := h.Store.UpdateTransaction(c.Request.Context(), t); err != nil {
		h.Log.Error("validate transaction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}

	telemetry.IncRecordsValidated("transaction")
	h.audit("transaction", t.ID, "validated", uid)
	c.JSON(http.StatusOK, toTransactionView(t))
}

// RejectTransaction godoc
// @Summary      Reject (delete) a pending transaction
// @Description  Refused with 409 once the transaction has been validated.
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Transaction id"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/transactions/{id}/reject [post]
func (h *Handlers) RejectTransaction(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	t, err := h.Store.GetTransaction(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch"})
		return
	}
	if t.IsValidated {
		c.JSON(http.StatusConflict, gin.H{"error": "transaction has already been validated"})
		return
	}
	if err := h.Store.DeleteTransaction(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete"})
		return
	}

	telemetry.IncRecordsRejected("transaction")
	h.audit("transaction", id, "rejected", uid)
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// PendingRequests godoc
// @Summary      List every pending request
// @Tags         admin
// @Produce      json
// @Success      200  {array}  RequestView
// @Security     BearerAuth
// @Router       /admin/pending/requests [get]
func (h *Handlers) PendingRequests(c *gin.Context) {
	rs, err := h.Store.ListPendingRequests(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}
	c.JSON(http.StatusOK, toRequestViews(rs))
}

// PendingTransactions godoc
// @Summary      List every pending transaction
// @Tags         admin
// @Produce      json
// @Success      200  {array}  TransactionView
// @Security     BearerAuth
// @Router       /admin/pending/transactions [get]
func (h *Handlers) PendingTransactions(c *gin.Context) {
	ts, err := h.Store.ListPendingTransactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}
	c.JSON(http.StatusOK, toTransactionViews(ts))
}

// PendingCounts godoc
// @Summary      Pending queue sizes for the admin dashboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]int
// @Security     BearerAuth
// @Router       /admin/pending/counts [get]
func (h *Handlers) PendingCounts(c *gin.Context) {
	nr, err := h.Store.CountPendingRequests(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count"})
		return
	}
	nt, err := h.Store.CountPendingTransactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests":     nr,
		"transactions": nt,
	})
}
