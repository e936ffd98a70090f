package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Centralink87/centralinkxyz/internal/audit"
	"github.com/Centralink87/centralinkxyz/internal/ledger"
	"github.com/Centralink87/centralinkxyz/internal/storage"
	"github.com/Centralink87/centralinkxyz/telemetry"
)

type Handlers struct {
	Log          *zap.Logger
	Store        storage.Store
	V            *validator.Validate
	DBPing       func(ctx context.Context) error
	KafkaEnabled bool

	// Enqueuer function (send to the audit worker)
	Audit func(audit.Event)
}

// currentUser resolves the identity set by the auth middleware.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) audit(kind string, recordID int64, action string, actorID uuid.UUID) {
	if h.Audit == nil {
		return
	}
	h.Audit(audit.Event{
		Kind:       kind,
		RecordID:   recordID,
		Action:     action,
		ActorID:    actorID.String(),
		OccurredAt: time.Now().UTC(),
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// health handler
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	db := "ok"
	if h.DBPing != nil {
		if err := h.DBPing(ctx); err != nil {
			db = "down"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"db":            db,
		"kafka_enabled": h.KafkaEnabled,
	})
}

// request handlers

// CreateRequest godoc
// @Summary      Create a deposit or withdrawal request
// @Description  The request is owned by the caller and starts unvalidated.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateRequestRequest  true  "Request payload"
// @Success      201      {object}  RequestView
// @Failure      422      {object}  map[string]string
// @Security     BearerAuth
// @Router       /requests [post]
func (h *Handlers) CreateRequest(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid amount"})
		return
	}
	typ, _ := ledger.ParseRequestType(req.Type)
	crypto, _ := ledger.ParseCryptoType(req.CryptoType)

	r, err := ledger.NewRequest(uid, typ, crypto, amount, req.PublicAddress)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.CreateRequest(c.Request.Context(), r); err != nil {
		h.Log.Error("create request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}

	telemetry.IncRecordsCreated("request")
	h.audit("request", r.ID, "created", uid)
	c.JSON(http.StatusCreated, toRequestView(*r))
}

// ListRequests godoc
// @Summary      List the caller's requests
// @Tags         requests
// @Produce      json
// @Success      200  {object}  RequestListResponse
// @Security     BearerAuth
// @Router       /requests [get]
func (h *Handlers) ListRequests(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	yes, no := true, false
	validated, err := h.Store.ListRequestsByUser(c.Request.Context(), uid, storage.RequestFilter{Validated: &yes})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}
	pending, err := h.Store.ListRequestsByUser(c.Request.Context(), uid, storage.RequestFilter{Validated: &no})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}

	c.JSON(http.StatusOK, RequestListResponse{
		Validated: toRequestViews(validated),
		Pending:   toRequestViews(pending),
	})
}

// GetRequest godoc
// @Summary      Fetch one request
// @Tags         requests
// @Produce      json
// @Param        id   path      int  true  "Request id"
// @Success      200  {object}  RequestView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /requests/{id} [get]
func (h *Handlers) GetRequest(c *gin.Context) {
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
	if !ledger.CanAccess(&ledger.User{ID: uid}, r.UserID, ledger.ActionView) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, toRequestView(r))
}

// UpdateRequest godoc
// @Summary      Edit an unvalidated request
// @Description  Owner only. Refused once an administrator has validated it.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Request id"
// @Param        payload  body      CreateRequestRequest  true  "New field values"
// @Success      200      {object}  RequestView
// @Failure      403      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Security     BearerAuth
// @Router       /requests/{id} [put]
func (h *Handlers) UpdateRequest(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	current, err := h.Store.GetRequest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch"})
		return
	}
	if !ledger.CanAccess(&ledger.User{ID: uid}, current.UserID, ledger.ActionEdit) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if current.IsValidated {
		c.JSON(http.StatusConflict, gin.H{"error": "request has already been validated"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid amount"})
		return
	}
	typ, _ := ledger.ParseRequestType(req.Type)
	crypto, _ := ledger.ParseCryptoType(req.CryptoType)

	// Rebuild through the constructor so the address rules reapply.
	fresh, err := ledger.NewRequest(uid, typ, crypto, amount, req.PublicAddress)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	current.Type = fresh.Type
	current.CryptoType = fresh.CryptoType
	current.Amount = fresh.Amount
	current.PublicAddress = fresh.PublicAddress
	current.UpdatedAt = time.Now().UTC()

	if err := h.Store.UpdateRequest(c.Request.Context(), current); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}
	h.audit("request", current.ID, "updated", uid)
	c.JSON(http.StatusOK, toRequestView(current))
}

// DeleteRequest godoc
// @Summary      Delete a request
// @Tags         requests
// @Param        id  path  int  true  "Request id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /requests/{id} [delete]
func (h *Handlers) DeleteRequest(c *gin.Context) {
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
	if !ledger.CanAccess(&ledger.User{ID: uid}, r.UserID, ledger.ActionDelete) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.Store.DeleteRequest(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete"})
		return
	}
	h.audit("request", id, "deleted", uid)
	c.Status(http.StatusNoContent)
}

// transaction handlers

// CreateTransaction godoc
// @Summary      Record a trade
// @Description  Starts open (no exit price) and unvalidated.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateTransactionRequest  true  "Transaction payload"
// @Success      201      {object}  TransactionView
// @Failure      422      {object}  map[string]string
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *Handlers) CreateTransaction(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	entry, err := decimal.NewFromString(req.EntryPrice)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid entry_price"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid amount"})
		return
	}
	crypto, _ := ledger.ParseCryptoType(req.CryptoType)

	var date time.Time
	if req.TransactionDate != "" {
		date, _ = time.Parse(time.RFC3339, req.TransactionDate)
	}

	t, err := ledger.NewTransaction(uid, crypto, entry, amount, date)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.CreateTransaction(c.Request.Context(), t); err != nil {
		h.Log.Error("create transaction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}

	telemetry.IncRecordsCreated("transaction")
	h.audit("transaction", t.ID, "created", uid)
	c.JSON(http.StatusCreated, toTransactionView(*t))
}

// ListTransactions godoc
// @Summary      List the caller's transactions with P&L stats
// @Description  Validated and pending lists plus totals and the cumulative P&L series. Optional ?crypto= filter.
// @Tags         transactions
// @Produce      json
// @Param        crypto  query     string  false  "Filter by crypto code (btc, eth, usdc, usdt)"
// @Success      200     {object}  TransactionListResponse
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *Handlers) ListTransactions(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var cryptoFilter *ledger.CryptoType
	if q := c.Query("crypto"); q != "" {
		ct, err := ledger.ParseCryptoType(q)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		cryptoFilter = &ct
	}

	yes, no := true, false
	validated, err := h.Store.ListTransactionsByUser(c.Request.Context(), uid,
		storage.TransactionFilter{Validated: &yes, Crypto: cryptoFilter})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}
	pending, err := h.Store.ListTransactionsByUser(c.Request.Context(), uid,
		storage.TransactionFilter{Validated: &no, Crypto: cryptoFilter})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Validated: toTransactionViews(validated),
		Pending:   toTransactionViews(pending),
		Stats:     toStatsView(ledger.SummarizeTransactions(validated)),
		PnlSeries: toPnlPointViews(ledger.CumulativePnl(validated)),
	})
}

// GetTransaction godoc
// @Summary      Fetch one transaction
// @Tags         transactions
// @Produce      json
// @Param        id   path      int  true  "Transaction id"
// @Success      200  {object}  TransactionView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *Handlers) GetTransaction(c *gin.Context) {
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
	if !ledger.CanAccess(&ledger.User{ID: uid}, t.UserID, ledger.ActionView) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, toTransactionView(t))
}

// UpdateTransaction godoc
// @Summary      Edit an unvalidated transaction
// @Description  Owner only. Refused once an administrator has validated it.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id       path      int                       true  "Transaction id"
// @Param        payload  body      CreateTransactionRequest  true  "New field values"
// @Success      200      {object}  TransactionView
// @Failure      403      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Security     BearerAuth
// @Router       /transactions/{id} [put]
func (h *Handlers) UpdateTransaction(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	current, err := h.Store.GetTransaction(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch"})
		return
	}
	if !ledger.CanAccess(&ledger.User{ID: uid}, current.UserID, ledger.ActionEdit) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if current.IsValidated {
		c.JSON(http.StatusConflict, gin.H{"error": "transaction has already been validated"})
		return
	}

	entry, err := decimal.NewFromString(req.EntryPrice)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid entry_price"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid amount"})
		return
	}
	crypto, _ := ledger.ParseCryptoType(req.CryptoType)

	date := current.TransactionDate
	if req.TransactionDate != "" {
		date, _ = time.Parse(time.RFC3339, req.TransactionDate)
	}

	fresh, err := ledger.NewTransaction(uid, crypto, entry, amount, date)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	current.EntryPrice = fresh.EntryPrice
	current.Amount = fresh.Amount
	current.CryptoType = fresh.CryptoType
	current.TransactionDate = fresh.TransactionDate
	current.UpdatedAt = time.Now().UTC()

	if err := h.Store.UpdateTransaction(c.Request.Context(), current); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}
	h.audit("transaction", current.ID, "updated", uid)
	c.JSON(http.StatusOK, toTransactionView(current))
}

// CloseTransaction godoc
// @Summary      Close a transaction with an exit price
// @Description  Owner only; the transaction must be validated and still open.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id       path      int                      true  "Transaction id"
// @Param        payload  body      CloseTransactionRequest  true  "Exit price"
// @Success      200      {object}  TransactionView
// @Failure      403      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Security     BearerAuth
// @Router       /transactions/{id}/close [post]
func (h *Handlers) CloseTransaction(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CloseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	exit, err := decimal.NewFromString(req.ExitPrice)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid exit_price"})
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
	if !ledger.CanAccess(&ledger.User{ID: uid}, t.UserID, ledger.ActionEdit) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if t.IsClosed() {
		c.JSON(http.StatusConflict, gin.H{"error": "transaction is already closed"})
		return
	}
	if err := t.Close(exit, time.Now()); err != nil {
		if errors.Is(err, ledger.ErrNotValidated) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.UpdateTransaction(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}

	telemetry.IncTransactionsClosed()
	h.audit("transaction", t.ID, "closed", uid)
	c.JSON(http.StatusOK, toTransactionView(t))
}

// DeleteTransaction godoc
// @Summary      Delete a transaction
// @Tags         transactions
// @Param        id  path  int  true  "Transaction id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /transactions/{id} [delete]
func (h *Handlers) DeleteTransaction(c *gin.Context) {
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
	if !ledger.CanAccess(&ledger.User{ID: uid}, t.UserID, ledger.ActionDelete) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.Store.DeleteTransaction(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete"})
		return
	}
	h.audit("transaction", id, "deleted", uid)
	c.Status(http.StatusNoContent)
}

// Overview godoc
// @Summary      Desk overview
// @Description  Closed results across all users plus the caller's validated requests and available funds.
// @Tags         reports
// @Produce      json
// @Success      200  {object}  OverviewResponse
// @Security     BearerAuth
// @Router       /overview [get]
func (h *Handlers) Overview(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	closed, err := h.Store.ListValidatedClosedTransactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}
	yes := true
	requests, err := h.Store.ListRequestsByUser(c.Request.Context(), uid, storage.RequestFilter{Validated: &yes})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list"})
		return
	}

	funds := ledger.SummarizeFunds(requests)
	stats := ledger.SummarizeTransactions(closed)

	c.JSON(http.StatusOK, OverviewResponse{
		ClosedTransactions: toTransactionViews(closed),
		Requests:           toRequestViews(requests),
		TotalDeposits:      funds.TotalDeposits.String(),
		TotalWithdrawals:   funds.TotalWithdrawals.String(),
		AvailableFunds:     funds.AvailableFunds.String(),
		ClosedCount:        stats.ClosedCount,
		TotalProfitLoss:    stats.TotalProfitLoss.String(),
		PnlSeries:          toPnlPointViews(ledger.CumulativePnl(closed)),
	})
}
