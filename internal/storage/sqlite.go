package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
)

// SQLiteStore is the file-backed Store used for local and single-node
// deployments. Decimals are persisted as their exact string form and parsed
// back with decimal.NewFromString, never through float64.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLite(path string, log *zap.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("opening sqlite database", zap.String("file", path))
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Users

func (s *SQLiteStore) CreateUser(ctx context.Context, u ledger.User) error {
	_, err := s.db.ExecContext(ctx, sqliteInsertUser,
		u.ID.String(), u.FirstName, u.LastName, strings.ToLower(u.Email),
		u.PasswordHash, strings.Join(u.Roles, ","), u.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, sqliteGetUser, id.String()))
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (ledger.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, sqliteGetUserByEmail, strings.ToLower(email)))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (ledger.User, error) {
	var (
		u     ledger.User
		id    string
		roles string
	)
	err := row.Scan(&id, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.User{}, ErrNotFound
		}
		return ledger.User{}, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return ledger.User{}, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	u.Roles = strings.Split(roles, ",")
	return u, nil
}

// Requests

func (s *SQLiteStore) CreateRequest(ctx context.Context, r *ledger.Request) error {
	res, err := s.db.ExecContext(ctx, sqliteInsertRequest,
		string(r.Type), string(r.CryptoType), r.Amount.String(), r.PublicAddress,
		r.UserID.String(), r.IsValidated, nullableTime(r.ValidatedAt), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return err
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) GetRequest(ctx context.Context, id int64) (ledger.Request, error) {
	rows, err := s.db.QueryContext(ctx, sqliteGetRequest, id)
	if err != nil {
		return ledger.Request{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return ledger.Request{}, err
		}
		return ledger.Request{}, ErrNotFound
	}
	return scanRequest(rows)
}

func (s *SQLiteStore) UpdateRequest(ctx context.Context, r ledger.Request) error {
	res, err := s.db.ExecContext(ctx, sqliteUpdateRequest,
		string(r.Type), string(r.CryptoType), r.Amount.String(), r.PublicAddress,
		r.IsValidated, nullableTime(r.ValidatedAt), r.UpdatedAt, r.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteRequest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, sqliteDeleteRequest, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListRequestsByUser(ctx context.Context, userID uuid.UUID, f RequestFilter) ([]ledger.Request, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if f.Validated == nil {
		rows, err = s.db.QueryContext(ctx, sqliteListRequestsByUser, userID.String())
	} else {
		rows, err = s.db.QueryContext(ctx, sqliteListRequestsByUserValidated, userID.String(), *f.Validated)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *SQLiteStore) ListPendingRequests(ctx context.Context) ([]ledger.Request, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListPendingRequests)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *SQLiteStore) CountPendingRequests(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, sqliteCountPendingRequests).Scan(&n)
	return n, err
}

// Transactions

func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *ledger.Transaction) error {
	res, err := s.db.ExecContext(ctx, sqliteInsertTransaction,
		t.EntryPrice.String(), nullableDecimal(t.ExitPrice), t.Amount.String(),
		string(t.CryptoType), t.TransactionDate, t.UserID.String(),
		t.IsValidated, nullableTime(t.ValidatedAt), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, sqliteGetTransaction, id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return ledger.Transaction{}, err
		}
		return ledger.Transaction{}, ErrNotFound
	}
	return scanTransaction(rows)
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t ledger.Transaction) error {
	res, err := s.db.ExecContext(ctx, sqliteUpdateTransaction,
		t.EntryPrice.String(), nullableDecimal(t.ExitPrice), t.Amount.String(),
		string(t.CryptoType), t.TransactionDate, t.IsValidated, nullableTime(t.ValidatedAt),
		t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, sqliteDeleteTransaction, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListTransactionsByUser(ctx context.Context, userID uuid.UUID, f TransactionFilter) ([]ledger.Transaction, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, entry_price, exit_price, amount, crypto_type, transaction_date, user_id, is_validated, validated_at, created_at, updated_at
	FROM transactions WHERE user_id = ?`)
	args := []any{userID.String()}

	if f.Validated != nil {
		b.WriteString(" AND is_validated = ?")
		args = append(args, *f.Validated)
	}
	if f.Closed != nil {
		if *f.Closed {
			b.WriteString(" AND exit_price IS NOT NULL")
		} else {
			b.WriteString(" AND exit_price IS NULL")
		}
	}
	if f.Crypto != nil {
		b.WriteString(" AND crypto_type = ?")
		args = append(args, string(*f.Crypto))
	}
	if f.Validated != nil && !*f.Validated {
		b.WriteString(" ORDER BY created_at DESC, id DESC")
	} else {
		b.WriteString(" ORDER BY transaction_date DESC, id DESC")
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *SQLiteStore) ListValidatedClosedTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListValidatedClosedTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *SQLiteStore) ListPendingTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListPendingTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *SQLiteStore) CountPendingTransactions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, sqliteCountPendingTransactions).Scan(&n)
	return n, err
}

// Row scanning shared by the SQLite and Postgres backends: both store
// decimals as strings and the column order is identical.

func scanRequest(rows *sql.Rows) (ledger.Request, error) {
	var (
		r           ledger.Request
		typ         string
		crypto      string
		amount      string
		userID      string
		validatedAt sql.NullTime
	)
	err := rows.Scan(&r.ID, &typ, &crypto, &amount, &r.PublicAddress, &userID,
		&r.IsValidated, &validatedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return ledger.Request{}, err
	}
	r.Type = ledger.RequestType(typ)
	r.CryptoType = ledger.CryptoType(crypto)
	if r.Amount, err = decimal.NewFromString(amount); err != nil {
		return ledger.Request{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if r.UserID, err = uuid.Parse(userID); err != nil {
		return ledger.Request{}, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	if validatedAt.Valid {
		at := validatedAt.Time
		r.ValidatedAt = &at
	}
	return r, nil
}

func collectRequests(rows *sql.Rows) ([]ledger.Request, error) {
	out := make([]ledger.Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (ledger.Transaction, error) {
	var (
		t           ledger.Transaction
		entry       string
		exit        sql.NullString
		amount      string
		crypto      string
		userID      string
		validatedAt sql.NullTime
	)
	err := rows.Scan(&t.ID, &entry, &exit, &amount, &crypto, &t.TransactionDate,
		&userID, &t.IsValidated, &validatedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if t.EntryPrice, err = decimal.NewFromString(entry); err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid entry price %q: %w", entry, err)
	}
	if exit.Valid {
		d, err := decimal.NewFromString(exit.String)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("invalid exit price %q: %w", exit.String, err)
		}
		t.ExitPrice = &d
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	t.CryptoType = ledger.CryptoType(crypto)
	if t.UserID, err = uuid.Parse(userID); err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	if validatedAt.Valid {
		at := validatedAt.Time
		t.ValidatedAt = &at
	}
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]ledger.Transaction, error) {
	out := make([]ledger.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
