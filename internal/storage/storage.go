package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrNotFound          = errors.New("record not found")
)

// RequestFilter narrows request listings. A nil field means "don't care".
type RequestFilter struct {
	Validated *bool
}

// TransactionFilter narrows transaction listings. A nil field means "don't care".
type TransactionFilter struct {
	Validated *bool
	Closed    *bool
	Crypto    *ledger.CryptoType
}

type UserRepo interface {
	CreateUser(ctx context.Context, u ledger.User) error
	GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error)
	GetUserByEmail(ctx context.Context, email string) (ledger.User, error)
}

// RequestRepo persists deposit/withdrawal requests. Create assigns the id.
// Listings are ordered newest-first: pending by creation time, the rest by
// creation time as well (requests have no user-supplied date).
type RequestRepo interface {
	CreateRequest(ctx context.Context, r *ledger.Request) error
	GetRequest(ctx context.Context, id int64) (ledger.Request, error)
	UpdateRequest(ctx context.Context, r ledger.Request) error
	DeleteRequest(ctx context.Context, id int64) error
	ListRequestsByUser(ctx context.Context, userID uuid.UUID, f RequestFilter) ([]ledger.Request, error)
	CountPendingRequests(ctx context.Context) (int, error)
	ListPendingRequests(ctx context.Context) ([]ledger.Request, error)
}

// TransactionRepo persists trades. Create assigns the id. Validated listings
// are ordered by transaction date descending, pending ones by creation time
// descending, matching what the views expect.
type TransactionRepo interface {
	CreateTransaction(ctx context.Context, t *ledger.Transaction) error
	GetTransaction(ctx context.Context, id int64) (ledger.Transaction, error)
	UpdateTransaction(ctx context.Context, t ledger.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID, f TransactionFilter) ([]ledger.Transaction, error)
	ListValidatedClosedTransactions(ctx context.Context) ([]ledger.Transaction, error)
	CountPendingTransactions(ctx context.Context) (int, error)
	ListPendingTransactions(ctx context.Context) ([]ledger.Transaction, error)
}

// Store bundles the three repositories; every backend implements all of them.
type Store interface {
	UserRepo
	RequestRepo
	TransactionRepo
}
