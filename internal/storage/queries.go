package storage

// SQLite query strings. The Postgres backend keeps its own set because of
// the different placeholder syntax and RETURNING support.
const (
	sqliteSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		roles TEXT NOT NULL DEFAULT 'ROLE_USER',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		crypto_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		public_address TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL REFERENCES users(id),
		is_validated BOOLEAN NOT NULL DEFAULT 0,
		validated_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user_id, is_validated);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_price TEXT NOT NULL,
		exit_price TEXT,
		amount TEXT NOT NULL,
		crypto_type TEXT NOT NULL,
		transaction_date TIMESTAMP NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id),
		is_validated BOOLEAN NOT NULL DEFAULT 0,
		validated_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, is_validated);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
	`

	sqliteInsertUser = `
	INSERT INTO users (id, first_name, last_name, email, password_hash, roles, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	sqliteGetUser = `
	SELECT id, first_name, last_name, email, password_hash, roles, created_at
	FROM users WHERE id = ?`

	sqliteGetUserByEmail = `
	SELECT id, first_name, last_name, email, password_hash, roles, created_at
	FROM users WHERE email = ? COLLATE NOCASE`

	sqliteInsertRequest = `
	INSERT INTO requests (type, crypto_type, amount, public_address, user_id, is_validated, validated_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteGetRequest = `
	SELECT id, type, crypto_type, amount, public_address, user_id, is_validated, validated_at, created_at, updated_at
	FROM requests WHERE id = ?`

	sqliteUpdateRequest = `
	UPDATE requests
	SET type = ?, crypto_type = ?, amount = ?, public_address = ?, is_validated = ?, validated_at = ?, updated_at = ?
	WHERE id = ?`

	sqliteDeleteRequest = `DELETE FROM requests WHERE id = ?`

	sqliteListRequestsByUser = `
	SELECT id, type, crypto_type, amount, public_address, user_id, is_validated, validated_at, created_at, updated_at
	FROM requests WHERE user_id = ?
	ORDER BY created_at DESC, id DESC`

	sqliteListRequestsByUserValidated = `
	SELECT id, type, crypto_type, amount, public_address, user_id, is_validated, validated_at, created_at, updated_at
	FROM requests WHERE user_id = ? AND is_validated = ?
	ORDER BY created_at DESC, id DESC`

	sqliteListPendingRequests = `
	SELECT id, type, crypto_type, amount, public_address, user_id, is_validated, validated_at, created_at, updated_at
	FROM requests WHERE is_validated = 0
	ORDER BY created_at DESC, id DESC`

	sqliteCountPendingRequests = `SELECT COUNT(id) FROM requests WHERE is_validated = 0`

	sqliteInsertTransaction = `
	INSERT INTO transactions (entry_price, exit_price, amount, crypto_type, transaction_date, user_id, is_validated, validated_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteGetTransaction = `
	SELECT id, entry_price, exit_price, amount, crypto_type, transaction_date, user_id, is_validated, validated_at, created_at, updated_at
	FROM transactions WHERE id = ?`

	sqliteUpdateTransaction = `
	UPDATE transactions
	SET entry_price = ?, exit_price = ?, amount = ?, crypto_type = ?, transaction_date = ?, is_validated = ?, validated_at = ?, updated_at = ?
	WHERE id = ?`

	sqliteDeleteTransaction = `DELETE FROM transactions WHERE id = ?`

	sqliteListValidatedClosedTransactions = `
	SELECT id, entry_price, exit_price, amount, crypto_type, transaction_date, user_id, is_validated, validated_at, created_at, updated_at
	FROM transactions WHERE is_validated = 1 AND exit_price IS NOT NULL
	ORDER BY transaction_date DESC, id DESC`

	sqliteListPendingTransactions = `
	SELECT id, entry_price, exit_price, amount, crypto_type, transaction_date, user_id, is_validated, validated_at, created_at, updated_at
	FROM transactions WHERE is_validated = 0
	ORDER BY created_at DESC, id DESC`

	sqliteCountPendingTransactions = `SELECT COUNT(id) FROM transactions WHERE is_validated = 0`
)
