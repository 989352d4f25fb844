package analytics

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// CategoryStat is the summed amount of one category over a period.
type CategoryStat struct {
	CategoryID int64
	Name       string
	Icon       string
	Color      string
	Amount     decimal.Decimal
	Count      int
}

// CategoryStats groups the period's transactions of the given kind by
// category, largest amount first. Ties are broken by category id.
func (a *Aggregator) CategoryStats(ctx context.Context, days int, kind model.Kind) ([]CategoryStat, error) {
	if !kind.Valid() {
		return []CategoryStat{}, model.ErrInvalidKind
	}
	w, err := a.window(days)
	if err != nil {
		return []CategoryStat{}, err
	}
	views, err := a.load(ctx, w)
	if err != nil {
		return []CategoryStat{}, err
	}
	return groupByCategory(views, kind), nil
}

func groupByCategory(views []model.TransactionView, kind model.Kind) []CategoryStat {
	byID := make(map[int64]*CategoryStat)
	for _, v := range views {
		if v.Kind != kind {
			continue
		}
		st, ok := byID[v.CategoryID]
		if !ok {
			st = &CategoryStat{
				CategoryID: v.CategoryID,
				Name:       v.Category.Name,
				Icon:       v.Category.Icon,
				Color:      v.Category.Color,
				Amount:     decimal.Zero,
			}
			byID[v.CategoryID] = st
		}
		st.Amount = st.Amount.Add(v.Amount)
		st.Count++
	}

	stats := make([]CategoryStat, 0, len(byID))
	for _, st := range byID {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if c := stats[i].Amount.Cmp(stats[j].Amount); c != 0 {
			return c > 0
		}
		return stats[i].CategoryID < stats[j].CategoryID
	})
	return stats
}
