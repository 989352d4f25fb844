package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrEmptyTitle           = errors.New("empty title")
	ErrMissingCategory      = errors.New("missing category")
	ErrInvalidKind          = errors.New("invalid kind")
	ErrInvalidImportance    = errors.New("invalid importance")
	ErrCategoryKindMismatch = errors.New("category kind does not match transaction kind")
	ErrNotFound             = errors.New("not found")
	ErrInvalidPeriod        = errors.New("period must be at least one day")
)

// Transaction is a single income or expense event. ID is zero until the
// ledger assigns one on insert.
type Transaction struct {
	ID          int64
	Title       string
	Amount      decimal.Decimal // magnitude, always > 0
	Kind        Kind
	CategoryID  int64
	Importance  Importance
	OccurredAt  time.Time
	Description string // optional
}

// Validate checks the invariants a transaction must hold before it is persisted.
// Category kind matching needs the catalog and is checked by the ledger.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.CategoryID == 0 {
		return ErrMissingCategory
	}
	if !t.Importance.Valid() {
		return ErrInvalidImportance
	}
	return nil
}

// Signed returns the amount with expenses negated.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionView is a transaction joined with its category at read time.
// The category is a projection; only CategoryID is persisted.
type TransactionView struct {
	Transaction
	Category Category
}
