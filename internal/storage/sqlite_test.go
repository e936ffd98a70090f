package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteLogsThroughGivenLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, err := NewSQLite(":memory:", zap.New(core))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()

	if logs.FilterMessage("opening sqlite database").Len() != 1 {
		t.Fatal("open was not logged through the injected logger")
	}
}

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", v, err)
	}
	return d
}

func seedUser(t *testing.T, s Store, email string) ledger.User {
	t.Helper()
	u := ledger.User{
		ID:           uuid.New(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "x",
		Roles:        []string{ledger.RoleUser},
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestSQLiteUserRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	u := seedUser(t, s, "ada@example.com")

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != "ada@example.com" || got.FirstName != "Ada" {
		t.Fatalf("unexpected user: %+v", got)
	}

	// Lookup is case-insensitive.
	if _, err := s.GetUserByEmail(ctx, "ADA@Example.COM"); err != nil {
		t.Fatalf("get by email: %v", err)
	}

	// Duplicate email refused.
	dup := u
	dup.ID = uuid.New()
	if err := s.CreateUser(ctx, dup); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestSQLiteRequestLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	u := seedUser(t, s, "owner@example.com")

	r, err := ledger.NewRequest(u.ID, ledger.RequestTypeWithdrawal, ledger.CryptoBTC, mustDecimal(t, "1.25"), "0xdest")
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if err := s.CreateRequest(ctx, r); err != nil {
		t.Fatalf("create request: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("create did not assign an id")
	}

	got, err := s.GetRequest(ctx, r.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if !got.Amount.Equal(mustDecimal(t, "1.25")) {
		t.Fatalf("amount drifted: %s", got.Amount)
	}
	if got.IsValidated || got.ValidatedAt != nil {
		t.Fatalf("request should start pending: %+v", got)
	}
	if got.PublicAddress != "0xdest" {
		t.Fatalf("address lost: %q", got.PublicAddress)
	}

	got.MarkValidated(time.Now())
	if err := s.UpdateRequest(ctx, got); err != nil {
		t.Fatalf("update request: %v", err)
	}
	again, err := s.GetRequest(ctx, r.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if !again.IsValidated || again.ValidatedAt == nil {
		t.Fatalf("validation not persisted: %+v", again)
	}

	if err := s.DeleteRequest(ctx, r.ID); err != nil {
		t.Fatalf("delete request: %v", err)
	}
	if _, err := s.GetRequest(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteRequest(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestSQLiteRequestFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	other := seedUser(t, s, "other@example.com")

	mk := func(userID uuid.UUID, validated bool) int64 {
		r, err := ledger.NewRequest(userID, ledger.RequestTypeDeposit, ledger.CryptoETH, mustDecimal(t, "10"), "")
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		if err := s.CreateRequest(ctx, r); err != nil {
			t.Fatalf("create request: %v", err)
		}
		if validated {
			r.MarkValidated(time.Now())
			if err := s.UpdateRequest(ctx, *r); err != nil {
				t.Fatalf("update request: %v", err)
			}
		}
		return r.ID
	}

	mk(owner.ID, true)
	mk(owner.ID, false)
	mk(owner.ID, false)
	mk(other.ID, false)

	yes, no := true, false
	validated, err := s.ListRequestsByUser(ctx, owner.ID, RequestFilter{Validated: &yes})
	if err != nil {
		t.Fatalf("list validated: %v", err)
	}
	if len(validated) != 1 {
		t.Fatalf("want 1 validated, got %d", len(validated))
	}

	pending, err := s.ListRequestsByUser(ctx, owner.ID, RequestFilter{Validated: &no})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("want 2 pending, got %d", len(pending))
	}
	// Newest first, ties broken by id.
	if pending[0].ID < pending[1].ID {
		t.Fatalf("pending out of order: %d before %d", pending[0].ID, pending[1].ID)
	}

	all, err := s.ListPendingRequests(ctx)
	if err != nil {
		t.Fatalf("list all pending: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3 pending overall, got %d", len(all))
	}

	n, err := s.CountPendingRequests(ctx)
	if err != nil || n != 3 {
		t.Fatalf("count pending = %d, %v", n, err)
	}
}

func TestSQLiteTransactionFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")

	mk := func(crypto ledger.CryptoType, validated bool, exit string, date time.Time) *ledger.Transaction {
		tx, err := ledger.NewTransaction(owner.ID, crypto, mustDecimal(t, "100"), mustDecimal(t, "1"), date)
		if err != nil {
			t.Fatalf("new transaction: %v", err)
		}
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
		if validated {
			tx.MarkValidated(time.Now())
			if exit != "" {
				if err := tx.Close(mustDecimal(t, exit), time.Now()); err != nil {
					t.Fatalf("close: %v", err)
				}
			}
			if err := s.UpdateTransaction(ctx, *tx); err != nil {
				t.Fatalf("update transaction: %v", err)
			}
		}
		return tx
	}

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mk(ledger.CryptoBTC, true, "150", d1)
	mk(ledger.CryptoBTC, true, "", d2)
	mk(ledger.CryptoETH, true, "90", d1)
	mk(ledger.CryptoBTC, false, "", d2)

	yes, no := true, false
	btc := ledger.CryptoBTC

	got, err := s.ListTransactionsByUser(ctx, owner.ID, TransactionFilter{Validated: &yes, Crypto: &btc})
	if err != nil {
		t.Fatalf("list validated btc: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 validated btc, got %d", len(got))
	}
	// Ordered by transaction date descending.
	if !got[0].TransactionDate.After(got[1].TransactionDate) {
		t.Fatalf("dates out of order: %v then %v", got[0].TransactionDate, got[1].TransactionDate)
	}

	closedOnly, err := s.ListTransactionsByUser(ctx, owner.ID, TransactionFilter{Validated: &yes, Closed: &yes})
	if err != nil {
		t.Fatalf("list closed: %v", err)
	}
	if len(closedOnly) != 2 {
		t.Fatalf("want 2 closed, got %d", len(closedOnly))
	}
	for _, tx := range closedOnly {
		if tx.ExitPrice == nil {
			t.Fatalf("closed filter leaked an open transaction: %+v", tx)
		}
	}

	pending, err := s.ListTransactionsByUser(ctx, owner.ID, TransactionFilter{Validated: &no})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("want 1 pending, got %d", len(pending))
	}

	global, err := s.ListValidatedClosedTransactions(ctx)
	if err != nil {
		t.Fatalf("list validated closed: %v", err)
	}
	if len(global) != 2 {
		t.Fatalf("want 2 validated+closed, got %d", len(global))
	}

	n, err := s.CountPendingTransactions(ctx)
	if err != nil || n != 1 {
		t.Fatalf("count pending = %d, %v", n, err)
	}
}

func TestSQLiteTransactionDecimalFidelity(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")

	tx, err := ledger.NewTransaction(owner.ID, ledger.CryptoBTC, mustDecimal(t, "0.00000001"), mustDecimal(t, "123456.78901234"), time.Time{})
	if err != nil {
		t.Fatalf("new transaction: %v", err)
	}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EntryPrice.String() != "0.00000001" {
		t.Fatalf("entry price drifted: %s", got.EntryPrice)
	}
	if got.Amount.String() != "123456.78901234" {
		t.Fatalf("amount drifted: %s", got.Amount)
	}
}
