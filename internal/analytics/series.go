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
	dailyMaxDays  = 7
	weeklyMaxDays = 30
	weekDays      = 7
)

// BucketPoint is one bar of a bar chart: income and expense summed
// independently over [Start, End).
type BucketPoint struct {
	Label   string
	Start   time.Time
	End     time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// DailyPoint is one day of a line chart.
type DailyPoint struct {
	Date    time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// BarSeries buckets the last days calendar days. Up to a week it yields one
// zero-filled point per day; up to a month, seven-day windows counted from
// the period start; beyond that, one point per calendar month that has
// activity, labelled with the month name and, when a name would repeat,
// the year.
func (a *Aggregator) BarSeries(ctx context.Context, days int) ([]BucketPoint, error) {
	w, err := a.window(days)
	if err != nil {
		return []BucketPoint{}, err
	}
	views, err := a.load(ctx, w)
	if err != nil {
		return []BucketPoint{}, err
	}

	switch {
	case days <= dailyMaxDays:
		return a.dailyBuckets(w, views), nil
	case days <= weeklyMaxDays:
		return a.weeklyBuckets(w, views), nil
	default:
		return a.monthlyBuckets(views), nil
	}
}

// ChartSeries yields one zero-filled point per calendar day of the period.
func (a *Aggregator) ChartSeries(ctx context.Context, days int) ([]DailyPoint, error) {
	w, err := a.window(days)
	if err != nil {
		return []DailyPoint{}, err
	}
	views, err := a.load(ctx, w)
	if err != nil {
		return []DailyPoint{}, err
	}

	buckets := a.dailyBuckets(w, views)
	points := make([]DailyPoint, len(buckets))
	for i, b := range buckets {
		points[i] = DailyPoint{Date: b.Start, Income: b.Income, Expense: b.Expense}
	}
	return points, nil
}

func newBucket(label string, start, end time.Time) BucketPoint {
	return BucketPoint{Label: label, Start: start, End: end, Income: decimal.Zero, Expense: decimal.Zero}
}

func (b *BucketPoint) add(v model.TransactionView) {
	switch v.Kind {
	case model.KindIncome:
		b.Income = b.Income.Add(v.Amount)
	case model.KindExpense:
		b.Expense = b.Expense.Add(v.Amount)
	}
}

func (a *Aggregator) dailyBuckets(w period, views []model.TransactionView) []BucketPoint {
	buckets := make([]BucketPoint, w.days)
	for i := range buckets {
		start := w.start.AddDate(0, 0, i)
		buckets[i] = newBucket(start.Format("Jan 2"), start, start.AddDate(0, 0, 1))
	}
	for _, v := range views {
		i := daysBetween(w.start, v.OccurredAt.In(a.loc))
		if i >= 0 && i < len(buckets) {
			buckets[i].add(v)
		}
	}
	return buckets
}

func (a *Aggregator) weeklyBuckets(w period, views []model.TransactionView) []BucketPoint {
	n := (w.days + weekDays - 1) / weekDays
	buckets := make([]BucketPoint, n)
	for i := range buckets {
		start := w.start.AddDate(0, 0, i*weekDays)
		end := start.AddDate(0, 0, weekDays)
		if end.After(w.end) {
			end = w.end
		}
		buckets[i] = newBucket(fmt.Sprintf("W%d", i+1), start, end)
	}
	for _, v := range views {
		i := daysBetween(w.start, v.OccurredAt.In(a.loc)) / weekDays
		if i >= 0 && i < len(buckets) {
			buckets[i].add(v)
		}
	}
	return buckets
}

func (a *Aggregator) monthlyBuckets(views []model.TransactionView) []BucketPoint {
	byMonth := make(map[time.Time]*BucketPoint)
	var order []time.Time
	for _, v := range views {
		t := v.OccurredAt.In(a.loc)
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, a.loc)
		b, ok := byMonth[month]
		if !ok {
			nb := newBucket(month.Month().String(), month, month.AddDate(0, 1, 0))
			b = &nb
			byMonth[month] = b
			order = append(order, month)
		}
		b.add(v)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	// A month name seen twice means the period spans it in two years.
	seen := make(map[time.Month]bool, len(order))
	withYear := false
	for _, m := range order {
		if seen[m.Month()] {
			withYear = true
			break
		}
		seen[m.Month()] = true
	}

	buckets := make([]BucketPoint, len(order))
	for i, m := range order {
		buckets[i] = *byMonth[m]
		if withYear {
			buckets[i].Label = m.Format("January 2006")
		}
	}
	return buckets
}

// daysBetween counts calendar days from day to t, both already in the
// aggregator's location. Noon UTC keeps DST changes from shifting the count.
func daysBetween(day, t time.Time) int {
	from := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	to := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
