package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

const (
	summaryTopCategories  = 5
	summaryBiggest        = 5
	savingsPlanCategories = 3
)

var hundred = decimal.NewFromInt(100)

// CategoryShare is a category's expense with its share of the period's
// total expense, in percent.
type CategoryShare struct {
	CategoryStat
	Share decimal.Decimal
}

// CategoryCut is the proportional reduction proposed for one category.
type CategoryCut struct {
	Name   string
	Before decimal.Decimal
	After  decimal.Decimal
	Saved  decimal.Decimal
}

// SavingsPlan spreads a percentage cut over the largest expense categories.
type SavingsPlan struct {
	CutPercent decimal.Decimal
	Target     decimal.Decimal
	Savings    decimal.Decimal
	Cuts       []CategoryCut
}

// Summary is a spending report over the last Days days.
type Summary struct {
	Days  int
	Start time.Time
	End   time.Time // exclusive

	Totals
	AvgExpensePerDay decimal.Decimal

	// Comparison against the preceding window of the same length.
	PrevExpense   decimal.Decimal
	Delta         decimal.Decimal
	HasComparison bool
	DeltaPercent  decimal.Decimal

	TopCategories []CategoryShare
	Biggest       []model.TransactionView

	// LowImportanceShare is the percent of expense spent on low-importance items.
	LowImportanceShare decimal.Decimal

	// Plan is set only when a cut strictly between 0 and 100 percent was asked for.
	Plan *SavingsPlan
}

// Summary builds a spending report for the last days days. cutPercent
// outside (0, 100) produces no savings plan.
func (a *Aggregator) Summary(ctx context.Context, days int, cutPercent decimal.Decimal) (Summary, error) {
	w, err := a.window(days)
	if err != nil {
		return EmptySummary(days), err
	}
	prev := period{start: w.start.AddDate(0, 0, -days), end: w.start, days: days}

	views, err := a.src.ListSince(ctx, prev.start)
	if err != nil {
		return EmptySummary(days), fmt.Errorf("loading transactions: %w", err)
	}

	s := EmptySummary(days)
	s.Start, s.End = w.start, w.end

	var current []model.TransactionView
	lowImportance := decimal.Zero
	for _, v := range views {
		switch {
		case w.contains(v.OccurredAt):
			current = append(current, v)
			s.Totals.add(v)
			if v.Kind == model.KindExpense && v.Importance == model.ImportanceLow {
				lowImportance = lowImportance.Add(v.Amount)
			}
		case prev.contains(v.OccurredAt) && v.Kind == model.KindExpense:
			s.PrevExpense = s.PrevExpense.Add(v.Amount)
		}
	}

	s.AvgExpensePerDay = s.Expense.Div(decimal.NewFromInt(int64(days))).Round(2)
	s.Delta = s.Expense.Sub(s.PrevExpense)
	if s.PrevExpense.IsPositive() {
		s.HasComparison = true
		s.DeltaPercent = s.Delta.Div(s.PrevExpense).Mul(hundred).Round(1)
	}

	stats := groupByCategory(current, model.KindExpense)
	if len(stats) > summaryTopCategories {
		stats = stats[:summaryTopCategories]
	}
	for _, st := range stats {
		s.TopCategories = append(s.TopCategories, CategoryShare{CategoryStat: st, Share: percentOf(st.Amount, s.Expense)})
	}

	s.Biggest = biggestExpenses(current, summaryBiggest)
	s.LowImportanceShare = percentOf(lowImportance, s.Expense)

	if cutPercent.IsPositive() && cutPercent.LessThan(hundred) && s.Expense.IsPositive() {
		s.Plan = savingsPlan(cutPercent, s.Expense, stats)
	}
	return s, nil
}

// EmptySummary is the zero report for days, with every slice non-nil.
func EmptySummary(days int) Summary {
	return Summary{
		Days:               days,
		Totals:             Totals{Income: decimal.Zero, Expense: decimal.Zero},
		AvgExpensePerDay:   decimal.Zero,
		PrevExpense:        decimal.Zero,
		Delta:              decimal.Zero,
		DeltaPercent:       decimal.Zero,
		TopCategories:      []CategoryShare{},
		Biggest:            []model.TransactionView{},
		LowImportanceShare: decimal.Zero,
	}
}

func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(1)
}

func biggestExpenses(views []model.TransactionView, n int) []model.TransactionView {
	var out []model.TransactionView
	for _, v := range views {
		if v.Kind == model.KindExpense {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []model.TransactionView{}
	}
	return out
}

func savingsPlan(cutPercent, expense decimal.Decimal, top []CategoryStat) *SavingsPlan {
	ratio := cutPercent.Div(hundred)
	plan := &SavingsPlan{
		CutPercent: cutPercent,
		Savings:    expense.Mul(ratio).Round(2),
	}
	plan.Target = expense.Sub(plan.Savings)

	if len(top) > savingsPlanCategories {
		top = top[:savingsPlanCategories]
	}
	for _, st := range top {
		saved := st.Amount.Mul(ratio).Round(2)
		plan.Cuts = append(plan.Cuts, CategoryCut{
			Name:   st.Name,
			Before: st.Amount,
			After:  st.Amount.Sub(saved),
			Saved:  saved,
		})
	}
	return plan
}
