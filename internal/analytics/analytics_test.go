package analytics

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/model"
)

var now = time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

type memSource struct {
	views []model.TransactionView
	err   error
}

func (m *memSource) ListAll(_ context.Context) ([]model.TransactionView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(time.Time{}), nil
}

func (m *memSource) ListSince(_ context.Context, from time.Time) ([]model.TransactionView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(from), nil
}

func (m *memSource) sorted(from time.Time) []model.TransactionView {
	var out []model.TransactionView
	for _, v := range m.views {
		if !v.OccurredAt.Before(from) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out
}

var (
	food    = model.Category{ID: 1, Name: "Food", Icon: "🍔", Color: "#FF5722", Kind: model.KindExpense}
	fun     = model.Category{ID: 2, Name: "Entertainment", Icon: "🎬", Color: "#9C27B0", Kind: model.KindExpense}
	housing = model.Category{ID: 3, Name: "Housing", Icon: "🏠", Color: "#795548", Kind: model.KindExpense}
	salary  = model.Category{ID: 10, Name: "Salary", Icon: "💼", Color: "#4CAF50", Kind: model.KindIncome}
)

func tx(cat model.Category, amount string, at time.Time) model.TransactionView {
	return model.TransactionView{
		Transaction: model.Transaction{
			Title:      cat.Name,
			Amount:     decimal.RequireFromString(amount),
			Kind:       cat.Kind,
			CategoryID: cat.ID,
			Importance: model.ImportanceMedium,
			OccurredAt: at,
		},
		Category: cat,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func newAgg(views ...model.TransactionView) *Aggregator {
	return New(&memSource{views: views}, WithClock(func() time.Time { return now }), WithLocation(time.UTC))
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestTotalBalanceIsNetOfEverything(t *testing.T) {
	agg := newAgg(
		tx(salary, "1000", day(2024, 1, 1)),
		tx(food, "200", day(2025, 3, 15)),
		tx(food, "50.50", now.AddDate(0, 0, 3)),
	)
	bal, err := agg.TotalBalance(context.Background())
	require.NoError(t, err)
	assertDec(t, "749.50", bal)
}

func TestTotalsForPeriod(t *testing.T) {
	agg := newAgg(
		tx(salary, "1000", day(2025, 3, 9)),
		tx(salary, "999", day(2025, 3, 8)),
		tx(food, "200", day(2025, 3, 15)),
		tx(food, "75", now.AddDate(0, 0, 2)),
	)
	got, err := agg.TotalsForPeriod(context.Background(), 7)
	require.NoError(t, err)
	assertDec(t, "1000", got.Income)
	assertDec(t, "200", got.Expense)
	assertDec(t, "800", got.Net())
}

func TestInvalidPeriod(t *testing.T) {
	agg := newAgg()
	ctx := context.Background()

	_, err := agg.TotalsForPeriod(ctx, 0)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)

	bars, err := agg.BarSeries(ctx, -3)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
	assert.NotNil(t, bars)
	assert.Empty(t, bars)

	_, err = agg.ChartSeries(ctx, 0)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)

	_, err = agg.CategoryStats(ctx, 0, model.KindExpense)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)

	_, err = agg.Summary(ctx, 0, decimal.Zero)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
}

func TestBarSeriesWeekIsDailyZeroFilled(t *testing.T) {
	agg := newAgg(
		tx(food, "100", day(2025, 3, 15)),
		tx(salary, "500", day(2025, 3, 9)),
		tx(food, "999", day(2025, 3, 8)),
	)
	points, err := agg.BarSeries(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, points, 7)

	assert.Equal(t, "Mar 9", points[0].Label)
	assert.Equal(t, "Mar 15", points[6].Label)
	assertDec(t, "500", points[0].Income)
	assertDec(t, "0", points[0].Expense)
	assertDec(t, "100", points[6].Expense)
	for _, p := range points[1:6] {
		assert.True(t, p.Income.IsZero())
		assert.True(t, p.Expense.IsZero())
	}
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Start.After(points[i-1].Start))
	}
}

func TestBarSeriesMonthIsFiveWeeks(t *testing.T) {
	agg := newAgg(
		tx(food, "10", day(2025, 2, 14)),
		tx(food, "20", day(2025, 2, 20)),
		tx(food, "30", day(2025, 3, 14)),
		tx(salary, "40", day(2025, 3, 15)),
	)
	points, err := agg.BarSeries(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, points, 5)

	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"W1", "W2", "W3", "W4", "W5"}, labels)

	assertDec(t, "30", points[0].Expense) // Feb 14 and Feb 20 share the first window
	assert.True(t, points[1].Expense.IsZero())
	assertDec(t, "30", points[4].Expense)
	assertDec(t, "40", points[4].Income)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), points[4].End)
}

func TestBarSeriesYearIsActiveMonthsOnly(t *testing.T) {
	agg := newAgg(
		tx(food, "10", day(2024, 7, 3)),
		tx(food, "15", day(2024, 7, 28)),
		tx(salary, "100", day(2025, 1, 10)),
		tx(food, "30", day(2025, 3, 1)),
		tx(food, "999", day(2024, 3, 10)),
	)
	points, err := agg.BarSeries(context.Background(), 365)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "July", points[0].Label)
	assert.Equal(t, "January", points[1].Label)
	assert.Equal(t, "March", points[2].Label)
	assertDec(t, "25", points[0].Expense)
	assertDec(t, "100", points[1].Income)
	assertDec(t, "30", points[2].Expense)
}

func TestBarSeriesMonthLabelsCarryYearWhenNamesRepeat(t *testing.T) {
	agg := newAgg(
		tx(food, "10", day(2023, 10, 5)),
		tx(food, "20", day(2024, 10, 5)),
		tx(salary, "30", day(2025, 2, 1)),
	)
	points, err := agg.BarSeries(context.Background(), 900)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "October 2023", points[0].Label)
	assert.Equal(t, "October 2024", points[1].Label)
	assert.Equal(t, "February 2025", points[2].Label)
	assertDec(t, "10", points[0].Expense)
	assertDec(t, "20", points[1].Expense)
}

func TestChartSeriesDailyZeroFilled(t *testing.T) {
	agg := newAgg(tx(food, "42", day(2025, 3, 2)))
	points, err := agg.ChartSeries(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, points, 14)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), points[0].Date)
	assertDec(t, "42", points[0].Expense)
	assert.True(t, points[13].Expense.IsZero())
}

func TestCategoryStatsOrder(t *testing.T) {
	agg := newAgg(
		tx(fun, "300", day(2025, 3, 10)),
		tx(food, "100", day(2025, 3, 11)),
		tx(food, "200", day(2025, 3, 12)),
		tx(housing, "500", day(2025, 3, 13)),
		tx(salary, "9000", day(2025, 3, 13)),
	)
	stats, err := agg.CategoryStats(context.Background(), 30, model.KindExpense)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, int64(3), stats[0].CategoryID)
	assert.Equal(t, int64(1), stats[1].CategoryID) // tie at 300, lower id first
	assert.Equal(t, int64(2), stats[2].CategoryID)
	assert.Equal(t, 2, stats[1].Count)
	assertDec(t, "300", stats[1].Amount)
	assert.Equal(t, "#FF5722", stats[1].Color)

	income, err := agg.CategoryStats(context.Background(), 30, model.KindIncome)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, "Salary", income[0].Name)

	_, err = agg.CategoryStats(context.Background(), 30, "transfer")
	assert.ErrorIs(t, err, model.ErrInvalidKind)
}

func TestSourceFailureReturnsRenderableValues(t *testing.T) {
	boom := errors.New("disk gone")
	agg := New(&memSource{err: boom}, WithClock(func() time.Time { return now }), WithLocation(time.UTC))
	ctx := context.Background()

	bal, err := agg.TotalBalance(ctx)
	assert.ErrorIs(t, err, boom)
	assert.True(t, bal.IsZero())

	stats, err := agg.CategoryStats(ctx, 7, model.KindExpense)
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, stats)

	sum, err := agg.Summary(ctx, 7, decimal.Zero)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 7, sum.Days)
	assert.NotNil(t, sum.TopCategories)
}

func TestSummary(t *testing.T) {
	low := tx(fun, "100", day(2025, 3, 14))
	low.Importance = model.ImportanceLow
	agg := newAgg(
		tx(housing, "500", day(2025, 3, 10)),
		tx(food, "250", day(2025, 3, 12)),
		tx(food, "150", day(2025, 3, 13)),
		low,
		tx(salary, "3000", day(2025, 3, 11)),
		// previous window: Mar 2..Mar 8
		tx(food, "500", day(2025, 3, 5)),
		tx(salary, "7000", day(2025, 3, 5)),
	)

	s, err := agg.Summary(context.Background(), 7, decimal.NewFromInt(10))
	require.NoError(t, err)

	assertDec(t, "1000", s.Expense)
	assertDec(t, "3000", s.Income)
	assertDec(t, "142.86", s.AvgExpensePerDay)
	assertDec(t, "500", s.PrevExpense)
	assertDec(t, "500", s.Delta)
	assert.True(t, s.HasComparison)
	assertDec(t, "100", s.DeltaPercent)

	require.Len(t, s.TopCategories, 3)
	assert.Equal(t, "Housing", s.TopCategories[0].Name)
	assertDec(t, "50", s.TopCategories[0].Share)
	assert.Equal(t, "Food", s.TopCategories[1].Name)
	assertDec(t, "40", s.TopCategories[1].Share)

	require.Len(t, s.Biggest, 4)
	assertDec(t, "500", s.Biggest[0].Amount)
	assertDec(t, "10", s.LowImportanceShare)

	require.NotNil(t, s.Plan)
	assertDec(t, "100", s.Plan.Savings)
	assertDec(t, "900", s.Plan.Target)
	require.Len(t, s.Plan.Cuts, 3)
	assertDec(t, "450", s.Plan.Cuts[0].After)
	assertDec(t, "40", s.Plan.Cuts[1].Saved)
}

func TestSummaryWithoutPlanOrComparison(t *testing.T) {
	agg := newAgg(tx(food, "70", day(2025, 3, 15)))

	for _, cut := range []string{"0", "100", "-5", "150"} {
		s, err := agg.Summary(context.Background(), 7, decimal.RequireFromString(cut))
		require.NoError(t, err)
		assert.Nil(t, s.Plan, "cut %s", cut)
		assert.False(t, s.HasComparison)
		assertDec(t, "70", s.Delta)
	}
}
