package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	roles TEXT NOT NULL DEFAULT 'ROLE_USER',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
	id BIGSERIAL PRIMARY KEY,
	type TEXT NOT NULL,
	crypto_type TEXT NOT NULL,
	amount NUMERIC(18,8) NOT NULL,
	public_address TEXT NOT NULL DEFAULT '',
	user_id UUID NOT NULL REFERENCES users(id),
	is_validated BOOLEAN NOT NULL DEFAULT FALSE,
	validated_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user_id, is_validated);

CREATE TABLE IF NOT EXISTS transactions (
	id BIGSERIAL PRIMARY KEY,
	entry_price NUMERIC(18,8) NOT NULL,
	exit_price NUMERIC(18,8),
	amount NUMERIC(18,8) NOT NULL,
	crypto_type TEXT NOT NULL,
	transaction_date TIMESTAMPTZ NOT NULL,
	user_id UUID NOT NULL REFERENCES users(id),
	is_validated BOOLEAN NOT NULL DEFAULT FALSE,
	validated_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, is_validated);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
`

// PostgresStore is the production Store, using the pgx stdlib driver.
type PostgresStore struct {
	DB *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (p *PostgresStore) Close() error { return p.DB.Close() }

func (p *PostgresStore) Ping(ctx context.Context) error { return p.DB.PingContext(ctx) }

// Users

func (p *PostgresStore) CreateUser(ctx context.Context, u ledger.User) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, roles, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.FirstName, u.LastName, strings.ToLower(u.Email),
		u.PasswordHash, strings.Join(u.Roles, ","), u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (p *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error) {
	return p.scanUser(p.DB.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, roles, created_at
		FROM users WHERE id = $1`, id))
}

func (p *PostgresStore) GetUserByEmail(ctx context.Context, email string) (ledger.User, error) {
	return p.scanUser(p.DB.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, roles, created_at
		FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (p *PostgresStore) scanUser(row *sql.Row) (ledger.User, error) {
	var (
		u     ledger.User
		roles string
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.User{}, ErrNotFound
		}
		return ledger.User{}, err
	}
	u.Roles = strings.Split(roles, ",")
	return u, nil
}

// Requests

func (p *PostgresStore) CreateRequest(ctx context.Context, r *ledger.Request) error {
	return p.DB.QueryRowContext(ctx, `
		INSERT INTO requests (type, crypto_type, amount, public_address, user_id, is_validated, validated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		string(r.Type), string(r.CryptoType), r.Amount.String(), r.PublicAddress,
		r.UserID, r.IsValidated, nullableTime(r.ValidatedAt), r.CreatedAt, r.UpdatedAt).
		Scan(&r.ID)
}

func (p *PostgresStore) GetRequest(ctx context.Context, id int64) (ledger.Request, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, type, crypto_type, amount::text, public_address, user_id::text, is_validated, validated_at, created_at, updated_at
		FROM requests WHERE id = $1`, id)
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

func (p *PostgresStore) UpdateRequest(ctx context.Context, r ledger.Request) error {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE requests
		SET type = $1, crypto_type = $2, amount = $3, public_address = $4, is_validated = $5, validated_at = $6, updated_at = $7
		WHERE id = $8`,
		string(r.Type), string(r.CryptoType), r.Amount.String(), r.PublicAddress,
		r.IsValidated, nullableTime(r.ValidatedAt), r.UpdatedAt, r.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) DeleteRequest(ctx context.Context, id int64) error {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) ListRequestsByUser(ctx context.Context, userID uuid.UUID, f RequestFilter) ([]ledger.Request, error) {
	q := `
		SELECT id, type, crypto_type, amount::text, public_address, user_id::text, is_validated, validated_at, created_at, updated_at
		FROM requests WHERE user_id = $1`
	args := []any{userID}
	if f.Validated != nil {
		q += ` AND is_validated = $2`
		args = append(args, *f.Validated)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := p.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (p *PostgresStore) ListPendingRequests(ctx context.Context) ([]ledger.Request, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, type, crypto_type, amount::text, public_address, user_id::text, is_validated, validated_at, created_at, updated_at
		FROM requests WHERE is_validated = FALSE
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (p *PostgresStore) CountPendingRequests(ctx context.Context) (int, error) {
	var n int
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(id) FROM requests WHERE is_validated = FALSE`).Scan(&n)
	return n, err
}

// Transactions

func (p *PostgresStore) CreateTransaction(ctx context.Context, t *ledger.Transaction) error {
	return p.DB.QueryRowContext(ctx, `
		INSERT INTO transactions (entry_price, exit_price, amount, crypto_type, transaction_date, user_id, is_validated, validated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		t.EntryPrice.String(), nullableDecimal(t.ExitPrice), t.Amount.String(),
		string(t.CryptoType), t.TransactionDate, t.UserID,
		t.IsValidated, nullableTime(t.ValidatedAt), t.CreatedAt, t.UpdatedAt).
		Scan(&t.ID)
}

func (p *PostgresStore) GetTransaction(ctx context.Context, id int64) (ledger.Transaction, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, entry_price::text, exit_price::text, amount::text, crypto_type, transaction_date, user_id::text, is_validated, validated_at, created_at, updated_at
		FROM transactions WHERE id = $1`, id)
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

func (p *PostgresStore) UpdateTransaction(ctx context.Context, t ledger.Transaction) error {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE transactions
		SET entry_price = $1, exit_price = $2, amount = $3, crypto_type = $4, transaction_date = $5, is_validated = $6, validated_at = $7, updated_at = $8
		WHERE id = $9`,
		t.EntryPrice.String(), nullableDecimal(t.ExitPrice), t.Amount.String(),
		string(t.CryptoType), t.TransactionDate, t.IsValidated, nullableTime(t.ValidatedAt),
		t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) ListTransactionsByUser(ctx context.Context, userID uuid.UUID, f TransactionFilter) ([]ledger.Transaction, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, entry_price::text, exit_price::text, amount::text, crypto_type, transaction_date, user_id::text, is_validated, validated_at, created_at, updated_at
		FROM transactions WHERE user_id = $1`)
	args := []any{userID}

	if f.Validated != nil {
		args = append(args, *f.Validated)
		fmt.Fprintf(&b, " AND is_validated = $%d", len(args))
	}
	if f.Closed != nil {
		if *f.Closed {
			b.WriteString(" AND exit_price IS NOT NULL")
		} else {
			b.WriteString(" AND exit_price IS NULL")
		}
	}
	if f.Crypto != nil {
		args = append(args, string(*f.Crypto))
		fmt.Fprintf(&b, " AND crypto_type = $%d", len(args))
	}
	if f.Validated != nil && !*f.Validated {
		b.WriteString(" ORDER BY created_at DESC, id DESC")
	} else {
		b.WriteString(" ORDER BY transaction_date DESC, id DESC")
	}

	rows, err := p.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (p *PostgresStore) ListValidatedClosedTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, entry_price::text, exit_price::text, amount::text, crypto_type, transaction_date, user_id::text, is_validated, validated_at, created_at, updated_at
		FROM transactions WHERE is_validated = TRUE AND exit_price IS NOT NULL
		ORDER BY transaction_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (p *PostgresStore) ListPendingTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, entry_price::text, exit_price::text, amount::text, crypto_type, transaction_date, user_id::text, is_validated, validated_at, created_at, updated_at
		FROM transactions WHERE is_validated = FALSE
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (p *PostgresStore) CountPendingTransactions(ctx context.Context) (int, error) {
	var n int
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(id) FROM transactions WHERE is_validated = FALSE`).Scan(&n)
	return n, err
}
