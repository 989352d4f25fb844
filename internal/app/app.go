// Package app wires the catalog, ledger, analytics and achievements over
// one store and exposes the operations the presentation layer calls.
//
// The schema, default categories and achievement records are prepared
// lazily on the first call. A failed preparation is retried on the next one.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/achievements"
	"github.com/pocketledger/pocketledger/internal/analytics"
	"github.com/pocketledger/pocketledger/internal/catalog"
	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/logger"
	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/storage"
)

// Options configures an App.
type Options struct {
	ProfileName string
	Currency    string
	Now         func() time.Time
	Location    *time.Location
	Log         zerolog.Logger
}

// App is the composition root. It is safe for concurrent use; writes are
// serialized by the store's single connection.
type App struct {
	store        *storage.Store
	catalog      *catalog.Service
	ledger       *ledger.Service
	analytics    *analytics.Aggregator
	achievements *achievements.Engine
	profileName  string
	currency     string
	now          func() time.Time
	log          zerolog.Logger

	mu          sync.Mutex
	initialized bool
}

// Open opens the database named in cfg and builds an App over it.
func Open(cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := storage.Open(cfg.Database.Path, logger.Component(log, "storage"))
	if err != nil {
		return nil, err
	}
	return New(store, Options{
		ProfileName: cfg.Profile.Name,
		Currency:    cfg.Profile.Currency,
		Log:         log,
	}), nil
}

// New builds an App over an open store.
func New(store *storage.Store, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	cat := catalog.NewService(store, logger.Component(opts.Log, "catalog"))
	led := ledger.NewService(store, cat, ledger.Config{
		ProfileName: opts.ProfileName,
		Currency:    opts.Currency,
		Now:         opts.Now,
	}, logger.Component(opts.Log, "ledger"))
	agg := analytics.New(led, analytics.WithClock(opts.Now), analytics.WithLocation(opts.Location))
	eng := achievements.NewEngine(store, agg, opts.Now, logger.Component(opts.Log, "achievements"))

	return &App{
		store:        store,
		catalog:      cat,
		ledger:       led,
		analytics:    agg,
		achievements: eng,
		profileName:  opts.ProfileName,
		currency:     opts.Currency,
		now:          opts.Now,
		log:          opts.Log,
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// Init prepares the store. It is called implicitly by every operation and
// is a no-op once it has succeeded.
func (a *App) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}
	if err := a.store.Migrate(); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	if err := a.catalog.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	if err := a.achievements.Seed(ctx); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	a.initialized = true
	a.log.Debug().Msg("store initialized")
	return nil
}

// AddOrUpdateTransaction persists t and evaluates the achievements it may
// unlock before returning. Newly earned achievements are queued.
func (a *App) AddOrUpdateTransaction(ctx context.Context, t *model.Transaction) (int64, error) {
	if err := a.Init(ctx); err != nil {
		return 0, err
	}
	id, err := a.ledger.AddOrUpdate(ctx, t)
	if err != nil {
		return 0, err
	}
	if _, err := a.achievements.CheckTransaction(ctx, *t); err != nil {
		a.log.Warn().Err(err).Int64("id", id).Msg("achievement check failed")
	}
	return id, nil
}

// DeleteTransaction removes a transaction; unknown ids are ignored.
func (a *App) DeleteTransaction(ctx context.Context, id int64) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	return a.ledger.Delete(ctx, id)
}

// GetTransaction returns one transaction with its category.
func (a *App) GetTransaction(ctx context.Context, id int64) (model.TransactionView, error) {
	if err := a.Init(ctx); err != nil {
		return model.TransactionView{}, err
	}
	return a.ledger.Get(ctx, id)
}

// ListTransactions returns every transaction, most recent first.
func (a *App) ListTransactions(ctx context.Context) ([]model.TransactionView, error) {
	return listOrEmpty(a.Init(ctx), func() ([]model.TransactionView, error) { return a.ledger.ListAll(ctx) })
}

// ListRecent returns the n most recent transactions.
func (a *App) ListRecent(ctx context.Context, n int) ([]model.TransactionView, error) {
	return listOrEmpty(a.Init(ctx), func() ([]model.TransactionView, error) { return a.ledger.ListRecent(ctx, n) })
}

// SaveCategory creates or updates a category.
func (a *App) SaveCategory(ctx context.Context, c *model.Category) (int64, error) {
	if err := a.Init(ctx); err != nil {
		return 0, err
	}
	return a.catalog.Save(ctx, c)
}

// GetOrCreateCategory resolves a free-text category name for kind.
func (a *App) GetOrCreateCategory(ctx context.Context, name string, kind model.Kind) (model.Category, error) {
	if err := a.Init(ctx); err != nil {
		return model.Category{}, err
	}
	return a.catalog.GetOrCreate(ctx, name, kind)
}

// ListCategories returns the categories of kind, or all of them when kind
// is empty.
func (a *App) ListCategories(ctx context.Context, kind model.Kind) ([]model.Category, error) {
	return listOrEmpty(a.Init(ctx), func() ([]model.Category, error) {
		if kind == "" {
			return a.catalog.ListAll(ctx)
		}
		return a.catalog.ListByKind(ctx, kind)
	})
}

// GetProfile returns the user profile. When the store is unavailable a
// default profile is returned alongside the error.
func (a *App) GetProfile(ctx context.Context) (model.UserProfile, error) {
	fallback := model.DefaultProfile(a.profileName, a.currency, a.now())
	if err := a.Init(ctx); err != nil {
		return fallback, err
	}
	p, err := a.ledger.GetProfile(ctx)
	if err != nil {
		return fallback, err
	}
	return p, nil
}

// SaveProfile upserts the user profile.
func (a *App) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	return a.ledger.SaveProfile(ctx, p)
}

// RecordFriendliness folds a message score into the profile.
func (a *App) RecordFriendliness(ctx context.Context, score float64) (model.UserProfile, error) {
	if err := a.Init(ctx); err != nil {
		return model.UserProfile{}, err
	}
	return a.ledger.RecordFriendliness(ctx, score)
}

// TotalBalance is income minus expense over the whole ledger.
func (a *App) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	if err := a.Init(ctx); err != nil {
		return decimal.Zero, err
	}
	return a.analytics.TotalBalance(ctx)
}

// TotalsForPeriod sums income and expense over the last days days.
func (a *App) TotalsForPeriod(ctx context.Context, days int) (analytics.Totals, error) {
	if err := a.Init(ctx); err != nil {
		return analytics.Totals{Income: decimal.Zero, Expense: decimal.Zero}, err
	}
	return a.analytics.TotalsForPeriod(ctx, days)
}

// CategoryStats breaks the period's transactions of kind down by category.
func (a *App) CategoryStats(ctx context.Context, days int, kind model.Kind) ([]analytics.CategoryStat, error) {
	return listOrEmpty(a.Init(ctx), func() ([]analytics.CategoryStat, error) { return a.analytics.CategoryStats(ctx, days, kind) })
}

// BarSeries buckets the period for a bar chart.
func (a *App) BarSeries(ctx context.Context, days int) ([]analytics.BucketPoint, error) {
	return listOrEmpty(a.Init(ctx), func() ([]analytics.BucketPoint, error) { return a.analytics.BarSeries(ctx, days) })
}

// ChartSeries yields one point per day of the period.
func (a *App) ChartSeries(ctx context.Context, days int) ([]analytics.DailyPoint, error) {
	return listOrEmpty(a.Init(ctx), func() ([]analytics.DailyPoint, error) { return a.analytics.ChartSeries(ctx, days) })
}

// Summary reports spending over the period with an optional savings plan.
func (a *App) Summary(ctx context.Context, days int, cutPercent decimal.Decimal) (analytics.Summary, error) {
	if err := a.Init(ctx); err != nil {
		return analytics.EmptySummary(days), err
	}
	return a.analytics.Summary(ctx, days, cutPercent)
}

// CheckTransactionAchievements evaluates the rules for t.
func (a *App) CheckTransactionAchievements(ctx context.Context, t model.Transaction) ([]model.Achievement, error) {
	if err := a.Init(ctx); err != nil {
		return nil, err
	}
	return a.achievements.CheckTransaction(ctx, t)
}

// CheckFirstAIMessage unlocks the first-message achievement.
func (a *App) CheckFirstAIMessage(ctx context.Context) (bool, error) {
	if err := a.Init(ctx); err != nil {
		return false, err
	}
	return a.achievements.CheckFirstAIMessage(ctx)
}

// HasPendingAchievements reports whether earned achievements await display.
func (a *App) HasPendingAchievements() bool {
	return a.achievements.HasPending()
}

// NextPendingAchievement pops the oldest achievement awaiting display.
func (a *App) NextPendingAchievement() (model.Achievement, bool) {
	return a.achievements.NextPending()
}

// Achievements lists every achievement with its earned state.
func (a *App) Achievements(ctx context.Context) ([]model.Achievement, error) {
	return listOrEmpty(a.Init(ctx), func() ([]model.Achievement, error) { return a.achievements.List(ctx) })
}

// listOrEmpty runs list unless initErr is set, and never hands back a nil
// slice so callers can always render the result.
func listOrEmpty[T any](initErr error, list func() ([]T, error)) ([]T, error) {
	if initErr != nil {
		return []T{}, initErr
	}
	out, err := list()
	if err != nil || out == nil {
		return []T{}, err
	}
	return out, nil
}
