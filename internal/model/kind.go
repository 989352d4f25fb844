package model

import (
	"fmt"
	"strings"
)

// Kind discriminates income from expense. Transactions and categories share it.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ParseKind accepts "income"/"expense" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Importance ranks how essential a transaction was.
type Importance string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// Valid reports whether i is one of the known importance levels.
func (i Importance) Valid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceCritical:
		return true
	}
	return false
}

// ParseImportance maps s to an Importance. Empty input yields ImportanceMedium.
func ParseImportance(s string) (Importance, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ImportanceMedium, nil
	}
	i := Importance(s)
	if !i.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidImportance, s)
	}
	return i, nil
}
