package achievements

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/analytics"
	"github.com/pocketledger/pocketledger/internal/catalog"
	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/storage"
)

var clock = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }

type env struct {
	engine *Engine
	ledger *ledger.Service
	food   model.Category
	salary model.Category
}

func setup(t *testing.T) env {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(filepath.Join(t.TempDir(), "ledger.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	cat := catalog.NewService(store, zerolog.Nop())
	require.NoError(t, cat.EnsureDefaults(ctx))
	food, err := cat.GetOrCreate(ctx, "Food", model.KindExpense)
	require.NoError(t, err)
	salary, err := cat.GetOrCreate(ctx, "Salary", model.KindIncome)
	require.NoError(t, err)

	led := ledger.NewService(store, cat, ledger.Config{ProfileName: "User", Currency: "RUB", Now: clock}, zerolog.Nop())
	agg := analytics.New(led, analytics.WithClock(clock), analytics.WithLocation(time.UTC))

	e := NewEngine(store, agg, clock, zerolog.Nop())
	require.NoError(t, e.Seed(ctx))
	return env{engine: e, ledger: led, food: food, salary: salary}
}

func (e env) add(t *testing.T, cat model.Category, amount string) []model.Achievement {
	t.Helper()
	ctx := context.Background()
	tx := model.Transaction{
		Title:      cat.Name,
		Amount:     decimal.RequireFromString(amount),
		Kind:       cat.Kind,
		CategoryID: cat.ID,
	}
	_, err := e.ledger.AddOrUpdate(ctx, &tx)
	require.NoError(t, err)
	earned, err := e.engine.CheckTransaction(ctx, tx)
	require.NoError(t, err)
	return earned
}

func types(as []model.Achievement) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Type
	}
	return out
}

func TestSeedIsIdempotent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	require.NoError(t, e.engine.Seed(ctx))

	all, err := e.engine.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(Definitions()))
	for _, a := range all {
		assert.False(t, a.Earned, a.Type)
		assert.Nil(t, a.EarnedAt)
	}
	assert.False(t, e.engine.HasPending())
}

func TestFirstExpenseEarnedOnce(t *testing.T) {
	e := setup(t)

	assert.Equal(t, []string{FirstExpense}, types(e.add(t, e.food, "100")))
	assert.Empty(t, e.add(t, e.food, "200"))

	a, ok := e.engine.NextPending()
	require.True(t, ok)
	assert.Equal(t, FirstExpense, a.Type)
	require.NotNil(t, a.EarnedAt)
	assert.True(t, clock().Equal(*a.EarnedAt))
	assert.False(t, e.engine.HasPending())
}

func TestBigSpenderUnlockedExactlyOnce(t *testing.T) {
	e := setup(t)

	earned := e.add(t, e.food, "60000")
	assert.ElementsMatch(t, []string{FirstExpense, BigSpender}, types(earned))

	assert.Empty(t, e.add(t, e.food, "70000"))

	var queued []string
	for e.engine.HasPending() {
		a, ok := e.engine.NextPending()
		require.True(t, ok)
		queued = append(queued, a.Type)
	}
	assert.Equal(t, []string{FirstExpense, BigSpender}, queued)

	_, ok := e.engine.NextPending()
	assert.False(t, ok)
}

func TestBigSpenderThreshold(t *testing.T) {
	e := setup(t)
	assert.NotContains(t, types(e.add(t, e.food, "49999.99")), BigSpender)
	assert.Contains(t, types(e.add(t, e.food, "50000")), BigSpender)
}

func TestFirst100KAtExactCrossing(t *testing.T) {
	e := setup(t)

	assert.Equal(t, []string{FirstIncome}, types(e.add(t, e.salary, "99999")))
	assert.Equal(t, []string{First100K}, types(e.add(t, e.salary, "1")))
	assert.Empty(t, e.add(t, e.salary, "500"))
}

func TestFirst100KNotRecheckedOnceEarned(t *testing.T) {
	e := setup(t)

	assert.Contains(t, types(e.add(t, e.salary, "150000")), First100K)
	// The balance drops below the milestone and climbs back; no second unlock.
	assert.NotContains(t, types(e.add(t, e.food, "100000")), First100K)
	assert.Empty(t, e.add(t, e.salary, "100000"))
}

func TestFirst100KEarnedWhenExpenseIsEditedDown(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	rent := model.Transaction{
		Title:      "Rent",
		Amount:     decimal.RequireFromString("30000"),
		Kind:       model.KindExpense,
		CategoryID: e.food.ID,
	}
	_, err := e.ledger.AddOrUpdate(ctx, &rent)
	require.NoError(t, err)
	_, err = e.engine.CheckTransaction(ctx, rent)
	require.NoError(t, err)

	// Balance 90000: still locked.
	assert.NotContains(t, types(e.add(t, e.salary, "120000")), First100K)

	rent.Amount = decimal.RequireFromString("10000")
	_, err = e.ledger.AddOrUpdate(ctx, &rent)
	require.NoError(t, err)
	earned, err := e.engine.CheckTransaction(ctx, rent)
	require.NoError(t, err)
	assert.Equal(t, []string{First100K}, types(earned))

	a, err := e.engine.repo.GetAchievement(ctx, First100K)
	require.NoError(t, err)
	assert.True(t, a.Earned)
}

func TestCheckFirstAIMessage(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	won, err := e.engine.CheckFirstAIMessage(ctx)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = e.engine.CheckFirstAIMessage(ctx)
	require.NoError(t, err)
	assert.False(t, won)

	a, ok := e.engine.NextPending()
	require.True(t, ok)
	assert.Equal(t, FirstAIMessage, a.Type)
	assert.False(t, e.engine.HasPending())
}

type failingBalance struct{}

func (failingBalance) TotalBalance(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("balance unavailable")
}

func TestRuleFailureDoesNotBlockOtherRules(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(filepath.Join(t.TempDir(), "ledger.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	e := NewEngine(store, failingBalance{}, clock, zerolog.Nop())
	require.NoError(t, e.Seed(ctx))

	earned, err := e.CheckTransaction(ctx, model.Transaction{Kind: model.KindIncome, Amount: decimal.NewFromInt(10)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), First100K)
	assert.Equal(t, []string{FirstIncome}, types(earned))
}
