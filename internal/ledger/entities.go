package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAddressRequired is returned when a withdrawal is created without a destination address.
	ErrAddressRequired = errors.New("public address is required for a withdrawal")
	// ErrAmountNotPositive is returned when a monetary amount is zero or negative.
	ErrAmountNotPositive = errors.New("amount must be positive")
	// ErrNotValidated is returned when an operation needs a record that an administrator has validated.
	ErrNotValidated = errors.New("record has not been validated yet")
	// ErrAlreadyValidated is returned when an operation is only allowed on pending records.
	ErrAlreadyValidated = errors.New("record has already been validated")
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User is the authenticated identity that owns requests and transactions.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Request is a user's ask to deposit or withdraw a crypto amount.
// It stays pending until an administrator validates it.
type Request struct {
	ID            int64
	Type          RequestType
	CryptoType    CryptoType
	Amount        decimal.Decimal
	PublicAddress string
	UserID        uuid.UUID
	IsValidated   bool
	ValidatedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRequest builds a pending request owned by userID. The validation flag
// and timestamp are always reset here: clients cannot create pre-approved
// records. Withdrawals must carry a destination address; deposits never do.
func NewRequest(userID uuid.UUID, typ RequestType, crypto CryptoType, amount decimal.Decimal, publicAddress string) (*Request, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}
	publicAddress = strings.TrimSpace(publicAddress)
	switch typ {
	case RequestTypeWithdrawal:
		if publicAddress == "" {
			return nil, ErrAddressRequired
		}
	case RequestTypeDeposit:
		publicAddress = ""
	}

	now := time.Now().UTC()
	return &Request{
		Type:          typ,
		CryptoType:    crypto,
		Amount:        amount,
		PublicAddress: publicAddress,
		UserID:        userID,
		IsValidated:   false,
		ValidatedAt:   nil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MarkValidated approves the request. The approval timestamp is written only
// on the first transition; validating an already-validated request keeps the
// original timestamp. Reports false when nothing changed.
func (r *Request) MarkValidated(now time.Time) bool {
	if r.IsValidated {
		return false
	}
	r.IsValidated = true
	if r.ValidatedAt == nil {
		at := now.UTC()
		r.ValidatedAt = &at
	}
	r.UpdatedAt = now.UTC()
	return true
}

// Transaction is a manually recorded trade. It opens at entryPrice and is
// closed by setting exitPrice, after which profit and loss are computable.
type Transaction struct {
	ID              int64
	EntryPrice      decimal.Decimal
	ExitPrice       *decimal.Decimal
	Amount          decimal.Decimal
	CryptoType      CryptoType
	TransactionDate time.Time
	UserID          uuid.UUID
	IsValidated     bool
	ValidatedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTransaction builds a pending, open transaction owned by userID.
// Like NewRequest it refuses any client-supplied validation state.
func NewTransaction(userID uuid.UUID, crypto CryptoType, entryPrice, amount decimal.Decimal, transactionDate time.Time) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}
	if entryPrice.IsNegative() {
		return nil, ErrAmountNotPositive
	}

	now := time.Now().UTC()
	if transactionDate.IsZero() {
		transactionDate = now
	}
	return &Transaction{
		EntryPrice:      entryPrice,
		ExitPrice:       nil,
		Amount:          amount,
		CryptoType:      crypto,
		TransactionDate: transactionDate.UTC(),
		UserID:          userID,
		IsValidated:     false,
		ValidatedAt:     nil,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// MarkValidated approves the transaction with the same set-once timestamp
// rule as Request.MarkValidated.
func (t *Transaction) MarkValidated(now time.Time) bool {
	if t.IsValidated {
		return false
	}
	t.IsValidated = true
	if t.ValidatedAt == nil {
		at := now.UTC()
		t.ValidatedAt = &at
	}
	t.UpdatedAt = now.UTC()
	return true
}

// IsClosed reports whether an exit price has been set.
func (t *Transaction) IsClosed() bool {
	return t.ExitPrice != nil
}

// Close records the exit price, moving the transaction from open to closed.
// A transaction must be validated before it can be closed; the call leaves
// the record untouched otherwise.
func (t *Transaction) Close(exitPrice decimal.Decimal, now time.Time) error {
	if !t.IsValidated {
		return ErrNotValidated
	}
	if exitPrice.IsNegative() {
		return ErrAmountNotPositive
	}
	exit := exitPrice
	t.ExitPrice = &exit
	t.UpdatedAt = now.UTC()
	return nil
}

// ProfitLoss returns (exit - entry) * amount. The second return is false
// while the transaction is still open.
func (t *Transaction) ProfitLoss() (decimal.Decimal, bool) {
	if t.ExitPrice == nil {
		return decimal.Zero, false
	}
	return t.ExitPrice.Sub(t.EntryPrice).Mul(t.Amount), true
}

// ProfitLossPercentage returns (exit - entry) / entry * 100. Undefined while
// open or when the entry price is zero.
func (t *Transaction) ProfitLossPercentage() (decimal.Decimal, bool) {
	if t.ExitPrice == nil || t.EntryPrice.IsZero() {
		return decimal.Zero, false
	}
	return t.ExitPrice.Sub(t.EntryPrice).Div(t.EntryPrice).Mul(decimal.NewFromInt(100)), true
}

// EntryValue returns entryPrice * amount, the capital committed to the trade.
func (t *Transaction) EntryValue() decimal.Decimal {
	return t.EntryPrice.Mul(t.Amount)
}
