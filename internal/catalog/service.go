package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pocketledger/pocketledger/internal/model"
)

// Repository is the persistence the catalog needs.
type Repository interface {
	CountCategories(ctx context.Context) (int, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListCategoriesByKind(ctx context.Context, kind model.Kind) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	FindCategoryByName(ctx context.Context, name string, kind model.Kind) (model.Category, bool, error)
	FindCategoryContaining(ctx context.Context, fragment string, kind model.Kind) (model.Category, bool, error)
	InsertCategory(ctx context.Context, c model.Category) (int64, error)
	UpdateCategory(ctx context.Context, c model.Category) error
}

// Service resolves and lists categories.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates a catalog Service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// EnsureDefaults seeds DefaultCategories when the catalog is empty. A
// populated catalog is left alone, so repeated calls are no-ops.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	n, err := s.repo.CountCategories(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, c := range DefaultCategories() {
		if _, err := s.repo.InsertCategory(ctx, c); err != nil {
			return fmt.Errorf("seeding default categories: %w", err)
		}
	}
	s.log.Info().Int("count", len(DefaultCategories())).Msg("seeded default categories")
	return nil
}

// ListAll returns every category.
func (s *Service) ListAll(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

// ListByKind returns the categories offered for one kind of transaction.
func (s *Service) ListByKind(ctx context.Context, kind model.Kind) ([]model.Category, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidKind
	}
	return s.repo.ListCategoriesByKind(ctx, kind)
}

// Get returns a category by id.
func (s *Service) Get(ctx context.Context, id int64) (model.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// GetOrCreate resolves name+kind to a category. Resolution falls through
// three tiers: an exact match, then the kind's "Other" category, then a newly
// synthesized category. It never reports a miss to the caller.
func (s *Service) GetOrCreate(ctx context.Context, name string, kind model.Kind) (model.Category, error) {
	if !kind.Valid() {
		return model.Category{}, model.ErrInvalidKind
	}
	name = strings.TrimSpace(name)

	if name != "" {
		c, ok, err := s.repo.FindCategoryByName(ctx, name, kind)
		if err != nil {
			return model.Category{}, err
		}
		if ok {
			return c, nil
		}
	}

	c, ok, err := s.repo.FindCategoryContaining(ctx, FallbackMarker, kind)
	if err != nil {
		return model.Category{}, err
	}
	if ok {
		s.log.Debug().Str("requested", name).Str("resolved", c.Name).Msg("category fell back")
		return c, nil
	}

	if name == "" {
		name = FallbackMarker
	}
	c = model.Category{
		Name:  name,
		Icon:  model.InitialIcon(name),
		Color: model.DefaultColor,
		Kind:  kind,
	}
	id, err := s.repo.InsertCategory(ctx, c)
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category %q: %w", name, err)
	}
	c.ID = id
	s.log.Info().Int64("id", id).Str("name", name).Str("kind", string(kind)).Msg("category synthesized")
	return c, nil
}

// Save inserts c when it has no id yet and updates it otherwise.
func (s *Service) Save(ctx context.Context, c *model.Category) (int64, error) {
	if strings.TrimSpace(c.Name) == "" {
		return 0, fmt.Errorf("category name: %w", model.ErrEmptyTitle)
	}
	if !c.Kind.Valid() {
		return 0, model.ErrInvalidKind
	}
	if c.Icon == "" {
		c.Icon = model.InitialIcon(c.Name)
	}
	if c.Color == "" {
		c.Color = model.DefaultColor
	}

	if c.ID == 0 {
		id, err := s.repo.InsertCategory(ctx, *c)
		if err != nil {
			return 0, err
		}
		c.ID = id
		return id, nil
	}
	if err := s.repo.UpdateCategory(ctx, *c); err != nil {
		return 0, err
	}
	return c.ID, nil
}
