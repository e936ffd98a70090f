package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
)

// MemoryStore implements Store with plain maps. Used in tests and for
// running the API without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]ledger.User
	reqs  map[int64]ledger.Request
	txs   map[int64]ledger.Transaction

	// Per-table sequences, matching the SQL backends' autoincrement columns.
	nextRequestID     int64
	nextTransactionID int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:             make(map[uuid.UUID]ledger.User),
		reqs:              make(map[int64]ledger.Request),
		txs:               make(map[int64]ledger.Transaction),
		nextRequestID:     1,
		nextTransactionID: 1,
	}
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, u ledger.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return ErrUserAlreadyExists
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrUserAlreadyExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return ledger.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return ledger.User{}, ErrNotFound
}

// Requests

func (s *MemoryStore) CreateRequest(_ context.Context, r *ledger.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextRequestID
	s.nextRequestID++
	s.reqs[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetRequest(_ context.Context, id int64) (ledger.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reqs[id]
	if !ok {
		return ledger.Request{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) UpdateRequest(_ context.Context, r ledger.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reqs[r.ID]; !ok {
		return ErrNotFound
	}
	s.reqs[r.ID] = r
	return nil
}

func (s *MemoryStore) DeleteRequest(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reqs[id]; !ok {
		return ErrNotFound
	}
	delete(s.reqs, id)
	return nil
}

func (s *MemoryStore) ListRequestsByUser(_ context.Context, userID uuid.UUID, f RequestFilter) ([]ledger.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Request, 0)
	for _, r := range s.reqs {
		if r.UserID != userID {
			continue
		}
		if f.Validated != nil && r.IsValidated != *f.Validated {
			continue
		}
		out = append(out, r)
	}
	sortRequestsNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) CountPendingRequests(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.reqs {
		if !r.IsValidated {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListPendingRequests(_ context.Context) ([]ledger.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Request, 0)
	for _, r := range s.reqs {
		if !r.IsValidated {
			out = append(out, r)
		}
	}
	sortRequestsNewestFirst(out)
	return out, nil
}

// Transactions

func (s *MemoryStore) CreateTransaction(_ context.Context, t *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextTransactionID
	s.nextTransactionID++
	s.txs[t.ID] = *t
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id int64) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txs[id]
	if !ok {
		return ledger.Transaction{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[t.ID]; !ok {
		return ErrNotFound
	}
	s.txs[t.ID] = t
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *MemoryStore) ListTransactionsByUser(_ context.Context, userID uuid.UUID, f TransactionFilter) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transaction, 0)
	for _, t := range s.txs {
		if t.UserID != userID {
			continue
		}
		if !matchTransaction(t, f) {
			continue
		}
		out = append(out, t)
	}
	sortTransactions(out, f)
	return out, nil
}

func (s *MemoryStore) ListValidatedClosedTransactions(_ context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transaction, 0)
	for _, t := range s.txs {
		if t.IsValidated && t.IsClosed() {
			out = append(out, t)
		}
	}
	sortTransactions(out, TransactionFilter{})
	return out, nil
}

func (s *MemoryStore) CountPendingTransactions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.txs {
		if !t.IsValidated {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListPendingTransactions(_ context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transaction, 0)
	for _, t := range s.txs {
		if !t.IsValidated {
			out = append(out, t)
		}
	}
	pending := false
	sortTransactions(out, TransactionFilter{Validated: &pending})
	return out, nil
}

func matchTransaction(t ledger.Transaction, f TransactionFilter) bool {
	if f.Validated != nil && t.IsValidated != *f.Validated {
		return false
	}
	if f.Closed != nil && t.IsClosed() != *f.Closed {
		return false
	}
	if f.Crypto != nil && t.CryptoType != *f.Crypto {
		return false
	}
	return true
}

func sortRequestsNewestFirst(rs []ledger.Request) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}

// Pending listings sort by creation time, everything else by the
// user-supplied transaction date.
func sortTransactions(ts []ledger.Transaction, f TransactionFilter) {
	pendingOnly := f.Validated != nil && !*f.Validated
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i].TransactionDate, ts[j].TransactionDate
		if pendingOnly {
			a, b = ts[i].CreatedAt, ts[j].CreatedAt
		}
		if a.Equal(b) {
			return ts[i].ID > ts[j].ID
		}
		return a.After(b)
	})
}
