package api

import (
	"time"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
)

// Auth payloads

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=80"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=80"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Request payloads

type CreateRequestRequest struct {
	Type          string `json:"type"           validate:"required,requesttype"` // deposit | withdrawal
	CryptoType    string `json:"crypto_type"    validate:"required,cryptotype"`  // btc | eth | usdc | usdt
	Amount        string `json:"amount"         validate:"required"`             // decimal string
	PublicAddress string `json:"public_address"`                                 // required for withdrawals
}

type RequestView struct {
	ID            int64      `json:"id"`
	Type          string     `json:"type"`
	TypeLabel     string     `json:"type_label"`
	CryptoType    string     `json:"crypto_type"`
	CryptoSymbol  string     `json:"crypto_symbol"`
	Amount        string     `json:"amount"`
	PublicAddress string     `json:"public_address,omitempty"`
	UserID        string     `json:"user_id"`
	IsValidated   bool       `json:"is_validated"`
	ValidatedAt   *time.Time `json:"validated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type RequestListResponse struct {
	Validated []RequestView `json:"validated"`
	Pending   []RequestView `json:"pending"`
}

// Transaction payloads

type CreateTransactionRequest struct {
	EntryPrice      string `json:"entry_price"      validate:"required"`
	Amount          string `json:"amount"           validate:"required"`
	CryptoType      string `json:"crypto_type"      validate:"required,cryptotype"`
	TransactionDate string `json:"transaction_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"` // RFC3339, defaults to now
}

type CloseTransactionRequest struct {
	ExitPrice string `json:"exit_price" validate:"required"`
}

type TransactionView struct {
	ID                   int64      `json:"id"`
	EntryPrice           string     `json:"entry_price"`
	ExitPrice            *string    `json:"exit_price,omitempty"`
	Amount               string     `json:"amount"`
	CryptoType           string     `json:"crypto_type"`
	CryptoSymbol         string     `json:"crypto_symbol"`
	TransactionDate      time.Time  `json:"transaction_date"`
	UserID               string     `json:"user_id"`
	IsValidated          bool       `json:"is_validated"`
	ValidatedAt          *time.Time `json:"validated_at,omitempty"`
	IsClosed             bool       `json:"is_closed"`
	ProfitLoss           *string    `json:"profit_loss,omitempty"`
	ProfitLossPercentage *string    `json:"profit_loss_percentage,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type PnlPointView struct {
	Date          time.Time `json:"date"`
	Pnl           string    `json:"pnl"`
	CumulativePnl string    `json:"cumulative_pnl"`
}

type TransactionStatsView struct {
	TotalInvested   string `json:"total_invested"`
	TotalProfitLoss string `json:"total_profit_loss"`
	ClosedCount     int    `json:"closed_count"`
}

type TransactionListResponse struct {
	Validated []TransactionView    `json:"validated"`
	Pending   []TransactionView    `json:"pending"`
	Stats     TransactionStatsView `json:"stats"`
	PnlSeries []PnlPointView       `json:"pnl_series"`
}

type OverviewResponse struct {
	ClosedTransactions []TransactionView `json:"closed_transactions"`
	Requests           []RequestView     `json:"requests"`
	TotalDeposits      string            `json:"total_deposits"`
	TotalWithdrawals   string            `json:"total_withdrawals"`
	AvailableFunds     string            `json:"available_funds"`
	ClosedCount        int               `json:"closed_count"`
	TotalProfitLoss    string            `json:"total_profit_loss"`
	PnlSeries          []PnlPointView    `json:"pnl_series"`
}

// View mapping

func toRequestView(r ledger.Request) RequestView {
	return RequestView{
		ID:            r.ID,
		Type:          string(r.Type),
		TypeLabel:     r.Type.Label(),
		CryptoType:    string(r.CryptoType),
		CryptoSymbol:  r.CryptoType.Symbol(),
		Amount:        r.Amount.String(),
		PublicAddress: r.PublicAddress,
		UserID:        r.UserID.String(),
		IsValidated:   r.IsValidated,
		ValidatedAt:   r.ValidatedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toRequestViews(rs []ledger.Request) []RequestView {
	out := make([]RequestView, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestView(r))
	}
	return out
}

func toTransactionView(t ledger.Transaction) TransactionView {
	v := TransactionView{
		ID:              t.ID,
		EntryPrice:      t.EntryPrice.String(),
		Amount:          t.Amount.String(),
		CryptoType:      string(t.CryptoType),
		CryptoSymbol:    t.CryptoType.Symbol(),
		TransactionDate: t.TransactionDate,
		UserID:          t.UserID.String(),
		IsValidated:     t.IsValidated,
		ValidatedAt:     t.ValidatedAt,
		IsClosed:        t.IsClosed(),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.ExitPrice != nil {
		s := t.ExitPrice.String()
		v.ExitPrice = &s
	}
	if pnl, ok := t.ProfitLoss(); ok {
		s := pnl.String()
		v.ProfitLoss = &s
	}
	if pct, ok := t.ProfitLossPercentage(); ok {
		s := pct.String()
		v.ProfitLossPercentage = &s
	}
	return v
}

func toTransactionViews(ts []ledger.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionView(t))
	}
	return out
}

func toPnlPointViews(ps []ledger.PnlPoint) []PnlPointView {
	out := make([]PnlPointView, 0, len(ps))
	for _, p := range ps {
		out = append(out, PnlPointView{
			Date:          p.Date,
			Pnl:           p.Pnl.String(),
			CumulativePnl: p.CumulativePnl.String(),
		})
	}
	return out
}

func toStatsView(s ledger.TransactionStats) TransactionStatsView {
	return TransactionStatsView{
		TotalInvested:   s.TotalInvested.String(),
		TotalProfitLoss: s.TotalProfitLoss.String(),
		ClosedCount:     s.ClosedCount,
	}
}
