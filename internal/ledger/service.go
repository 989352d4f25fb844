// Package ledger is the single source of truth for transactions and the
// user profile. It enforces the transaction invariants at its boundary; the
// storage underneath is permissive.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/storage"
)

// Repository is the persistence the ledger needs.
type Repository interface {
	InsertTransaction(ctx context.Context, t model.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	GetTransaction(ctx context.Context, id int64) (model.TransactionView, error)
	ListTransactions(ctx context.Context, q storage.TransactionQuery) ([]model.TransactionView, error)

	GetProfile(ctx context.Context) (model.UserProfile, bool, error)
	InsertProfile(ctx context.Context, p model.UserProfile) (int64, error)
	UpdateProfile(ctx context.Context, p model.UserProfile) error
}

// CategoryLookup resolves a category id. model.ErrNotFound signals a dangling id.
type CategoryLookup interface {
	Get(ctx context.Context, id int64) (model.Category, error)
}

// Config carries the profile defaults and the clock.
type Config struct {
	ProfileName string
	Currency    string
	Now         func() time.Time
}

// Service provides ledger operations.
type Service struct {
	repo       Repository
	categories CategoryLookup
	cfg        Config
	log        zerolog.Logger
}

// NewService creates a ledger Service.
func NewService(repo Repository, categories CategoryLookup, cfg Config, log zerolog.Logger) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{repo: repo, categories: categories, cfg: cfg, log: log}
}

// AddOrUpdate validates t and persists it. A transaction without an id is
// inserted; otherwise the existing record is overwritten. On success t
// receives its id and any defaulted importance or occurrence time; a
// rejected t is left untouched.
func (s *Service) AddOrUpdate(ctx context.Context, t *model.Transaction) (int64, error) {
	tx := *t
	if tx.Importance == "" {
		tx.Importance = model.ImportanceMedium
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = s.cfg.Now()
	}
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	cat, err := s.categories.Get(ctx, tx.CategoryID)
	if errors.Is(err, model.ErrNotFound) {
		return 0, fmt.Errorf("%w: category %d does not exist", model.ErrMissingCategory, tx.CategoryID)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving category: %w", err)
	}
	if cat.Kind != tx.Kind {
		return 0, fmt.Errorf("%w: %s transaction filed under %s category %q",
			model.ErrCategoryKindMismatch, tx.Kind, cat.Kind, cat.Name)
	}

	if tx.ID == 0 {
		id, err := s.repo.InsertTransaction(ctx, tx)
		if err != nil {
			return 0, err
		}
		tx.ID = id
		*t = tx
		s.log.Info().Int64("id", id).Str("kind", string(tx.Kind)).Str("amount", tx.Amount.String()).Msg("transaction added")
		return id, nil
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return 0, err
	}
	*t = tx
	s.log.Info().Int64("id", tx.ID).Msg("transaction updated")
	return tx.ID, nil
}

// Get returns one transaction joined with its category.
func (s *Service) Get(ctx context.Context, id int64) (model.TransactionView, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Delete removes a transaction. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.repo.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		s.log.Debug().Int64("id", id).Msg("delete of unknown transaction ignored")
	}
	return nil
}

// ListAll returns every transaction, most recent first.
func (s *Service) ListAll(ctx context.Context) ([]model.TransactionView, error) {
	return s.repo.ListTransactions(ctx, storage.TransactionQuery{})
}

// ListRecent returns at most n transactions, most recent first.
func (s *Service) ListRecent(ctx context.Context, n int) ([]model.TransactionView, error) {
	if n <= 0 {
		return []model.TransactionView{}, nil
	}
	return s.repo.ListTransactions(ctx, storage.TransactionQuery{Limit: n})
}

// ListSince returns transactions that occurred at or after from, most recent first.
func (s *Service) ListSince(ctx context.Context, from time.Time) ([]model.TransactionView, error) {
	return s.repo.ListTransactions(ctx, storage.TransactionQuery{Since: from})
}

// GetProfile returns the singleton profile, creating the default one on
// first access.
func (s *Service) GetProfile(ctx context.Context) (model.UserProfile, error) {
	p, ok, err := s.repo.GetProfile(ctx)
	if err != nil {
		return model.UserProfile{}, err
	}
	if ok {
		return p, nil
	}

	p = model.DefaultProfile(s.cfg.ProfileName, s.cfg.Currency, s.cfg.Now())
	id, err := s.repo.InsertProfile(ctx, p)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("creating default profile: %w", err)
	}
	p.ID = id
	s.log.Info().Int64("id", id).Str("name", p.Name).Msg("profile created")
	return p, nil
}

// SaveProfile upserts p. The avatar initial is always derived from the name.
// A profile without an id takes over the existing singleton rather than
// creating a second one.
func (s *Service) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	p.AvatarInitial = model.InitialIcon(p.Name)
	p.Friendliness = model.ClampFriendliness(p.Friendliness)
	if p.MessagesAnalyzed < 0 {
		p.MessagesAnalyzed = 0
	}
	if p.Currency == "" {
		p.Currency = s.cfg.Currency
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.cfg.Now()
	}

	if p.ID == 0 {
		existing, ok, err := s.repo.GetProfile(ctx)
		if err != nil {
			return err
		}
		if ok {
			p.ID = existing.ID
		}
	}

	if p.ID == 0 {
		id, err := s.repo.InsertProfile(ctx, *p)
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	}
	return s.repo.UpdateProfile(ctx, *p)
}

// RecordFriendliness folds one analyzed message's score into the profile's
// running mean.
func (s *Service) RecordFriendliness(ctx context.Context, score float64) (model.UserProfile, error) {
	p, err := s.GetProfile(ctx)
	if err != nil {
		return model.UserProfile{}, err
	}

	n := float64(p.MessagesAnalyzed)
	p.Friendliness = model.ClampFriendliness((p.Friendliness*n + model.ClampFriendliness(score)) / (n + 1))
	p.MessagesAnalyzed++

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return model.UserProfile{}, err
	}
	return p, nil
}
