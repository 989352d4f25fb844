// Package achievements evaluates unlock rules against ledger activity and
// queues newly earned achievements for display. An achievement is earned at
// most once.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// Repository persists achievement records.
type Repository interface {
	InsertAchievementIfMissing(ctx context.Context, a model.Achievement) error
	ListAchievements(ctx context.Context) ([]model.Achievement, error)
	GetAchievement(ctx context.Context, achievementType string) (model.Achievement, error)
	MarkAchievementEarned(ctx context.Context, achievementType string, at time.Time) (bool, error)
}

// BalanceSource supplies the current ledger balance.
type BalanceSource interface {
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

// Engine checks rules and records unlocks.
type Engine struct {
	repo    Repository
	balance BalanceSource
	now     func() time.Time
	log     zerolog.Logger
	pending queue
}

// NewEngine creates an Engine. A nil now uses the wall clock.
func NewEngine(repo Repository, balance BalanceSource, now func() time.Time, log zerolog.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{repo: repo, balance: balance, now: now, log: log}
}

// Seed creates a locked record for every definition that has none yet.
func (e *Engine) Seed(ctx context.Context) error {
	for _, d := range definitions {
		if err := e.repo.InsertAchievementIfMissing(ctx, d.record()); err != nil {
			return err
		}
	}
	return nil
}

// List returns every achievement with its earned state.
func (e *Engine) List(ctx context.Context) ([]model.Achievement, error) {
	return e.repo.ListAchievements(ctx)
}

// CheckTransaction evaluates the rules relevant to t's kind and returns the
// achievements this call unlocked. Rules keep running when one fails; the
// failures are joined into the returned error.
func (e *Engine) CheckTransaction(ctx context.Context, t model.Transaction) ([]model.Achievement, error) {
	var (
		earned []model.Achievement
		errs   []error
	)
	for _, d := range definitions {
		if d.rule == nil || (d.kind != "" && d.kind != t.Kind) {
			continue
		}
		a, ok, err := e.check(ctx, d, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			earned = append(earned, a)
		}
	}
	return earned, errors.Join(errs...)
}

// CheckFirstAIMessage unlocks the first-message achievement. It reports
// whether this call did the unlocking.
func (e *Engine) CheckFirstAIMessage(ctx context.Context) (bool, error) {
	d, _ := lookup(FirstAIMessage)
	_, ok, err := e.check(ctx, d, model.Transaction{})
	return ok, err
}

// HasPending reports whether unlocked achievements are waiting to be shown.
func (e *Engine) HasPending() bool {
	return e.pending.size() > 0
}

// NextPending removes and returns the oldest waiting achievement.
func (e *Engine) NextPending() (model.Achievement, bool) {
	return e.pending.pop()
}

func (e *Engine) check(ctx context.Context, d Definition, t model.Transaction) (model.Achievement, bool, error) {
	current, err := e.repo.GetAchievement(ctx, d.Type)
	if err != nil {
		return model.Achievement{}, false, err
	}
	if current.Earned {
		return model.Achievement{}, false, nil
	}

	if d.rule != nil {
		ok, err := d.rule(ctx, e, t)
		if err != nil {
			return model.Achievement{}, false, fmt.Errorf("evaluating %s: %w", d.Type, err)
		}
		if !ok {
			return model.Achievement{}, false, nil
		}
	}

	at := e.now().UTC()
	won, err := e.repo.MarkAchievementEarned(ctx, d.Type, at)
	if err != nil {
		return model.Achievement{}, false, err
	}
	if !won {
		// Another check flipped it between our read and write.
		return model.Achievement{}, false, nil
	}

	current.Earned = true
	current.EarnedAt = &at
	e.pending.push(current)
	e.log.Debug().Str("achievement", d.Type).Msg("queued for display")
	return current, true, nil
}

func lookup(achievementType string) (Definition, bool) {
	for _, d := range definitions {
		if d.Type == achievementType {
			return d, true
		}
	}
	return Definition{}, false
}
