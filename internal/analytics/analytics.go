// Package analytics computes read-only views over the ledger: balance,
// period totals, per-category breakdowns and bucketed series. Every call
// re-reads the ledger; nothing is cached.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// Source is the slice of the ledger the aggregator reads.
type Source interface {
	ListAll(ctx context.Context) ([]model.TransactionView, error)
	ListSince(ctx context.Context, from time.Time) ([]model.TransactionView, error)
}

// Totals is summed income and expense over a period, both non-negative.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net is income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

func (t *Totals) add(v model.TransactionView) {
	switch v.Kind {
	case model.KindIncome:
		t.Income = t.Income.Add(v.Amount)
	case model.KindExpense:
		t.Expense = t.Expense.Add(v.Amount)
	}
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the time zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.loc = loc }
}

// Aggregator derives analytics from a ledger Source.
type Aggregator struct {
	src Source
	now func() time.Time
	loc *time.Location
}

// New creates an Aggregator reading from src.
func New(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{src: src, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TotalBalance is all income minus all expenses ever recorded.
func (a *Aggregator) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	views, err := a.src.ListAll(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("computing balance: %w", err)
	}
	total := decimal.Zero
	for _, v := range views {
		total = total.Add(v.Signed())
	}
	return total, nil
}

// TotalsForPeriod sums income and expense over the last days calendar days,
// today included.
func (a *Aggregator) TotalsForPeriod(ctx context.Context, days int) (Totals, error) {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	w, err := a.window(days)
	if err != nil {
		return totals, err
	}
	views, err := a.load(ctx, w)
	if err != nil {
		return totals, err
	}
	for _, v := range views {
		totals.add(v)
	}
	return totals, nil
}

// period is the half-open interval [start, end) covering days calendar days.
type period struct {
	start time.Time
	end   time.Time
	days  int
}

func (p period) contains(t time.Time) bool {
	return !t.Before(p.start) && t.Before(p.end)
}

func (a *Aggregator) today() time.Time {
	n := a.now().In(a.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, a.loc)
}

func (a *Aggregator) window(days int) (period, error) {
	if days < 1 {
		return period{}, fmt.Errorf("%w: %d", model.ErrInvalidPeriod, days)
	}
	today := a.today()
	return period{
		start: today.AddDate(0, 0, -(days - 1)),
		end:   today.AddDate(0, 0, 1),
		days:  days,
	}, nil
}

// load returns the transactions inside w. Future-dated entries are left out
// of period views; they still count toward the balance.
func (a *Aggregator) load(ctx context.Context, w period) ([]model.TransactionView, error) {
	views, err := a.src.ListSince(ctx, w.start)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	out := views[:0]
	for _, v := range views {
		if w.contains(v.OccurredAt) {
			out = append(out, v)
		}
	}
	return out, nil
}
