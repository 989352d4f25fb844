package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketledger/pocketledger/internal/model"
)

type categoryRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Icon      string `db:"icon"`
	Color     string `db:"color"`
	Kind      string `db:"kind"`
	IsDefault bool   `db:"is_default"`
}

func (r categoryRow) toModel() model.Category {
	return model.Category{
		ID:        r.ID,
		Name:      r.Name,
		Icon:      r.Icon,
		Color:     r.Color,
		Kind:      model.Kind(r.Kind),
		IsDefault: r.IsDefault,
	}
}

const categoryColumns = `id, name, icon, color, kind, is_default`

// CountCategories returns the number of categories in the catalog.
func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// ListCategories returns every category in insertion order.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+categoryColumns+` FROM categories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categoriesFromRows(rows), nil
}

// ListCategoriesByKind returns the categories of one kind in insertion order.
func (s *Store) ListCategoriesByKind(ctx context.Context, kind model.Kind) ([]model.Category, error) {
	var rows []categoryRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+categoryColumns+` FROM categories WHERE kind = ? ORDER BY id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s categories: %w", kind, err)
	}
	return categoriesFromRows(rows), nil
}

// GetCategory returns the category with the given id or model.ErrNotFound.
func (s *Store) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("category %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return row.toModel(), nil
}

// FindCategoryByName looks up a category by exact (case-insensitive) name and kind.
func (s *Store) FindCategoryByName(ctx context.Context, name string, kind model.Kind) (model.Category, bool, error) {
	return s.findCategory(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE name = ? COLLATE NOCASE AND kind = ? ORDER BY id LIMIT 1`, name, string(kind))
}

// FindCategoryContaining returns the first category of kind whose name contains fragment.
func (s *Store) FindCategoryContaining(ctx context.Context, fragment string, kind model.Kind) (model.Category, bool, error) {
	return s.findCategory(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE name LIKE '%' || ? || '%' AND kind = ? ORDER BY id LIMIT 1`, fragment, string(kind))
}

func (s *Store) findCategory(ctx context.Context, query string, args ...any) (model.Category, bool, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, false, nil
	}
	if err != nil {
		return model.Category{}, false, fmt.Errorf("find category: %w", err)
	}
	return row.toModel(), true, nil
}

// InsertCategory stores c and returns its new id. c.ID is ignored.
func (s *Store) InsertCategory(ctx context.Context, c model.Category) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, icon, color, kind, is_default) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Icon, c.Color, string(c.Kind), boolToInt(c.IsDefault))
	if err != nil {
		return 0, fmt.Errorf("insert category %q: %w", c.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert category %q: %w", c.Name, err)
	}
	s.log.Debug().Int64("id", id).Str("name", c.Name).Str("kind", string(c.Kind)).Msg("category inserted")
	return id, nil
}

// UpdateCategory overwrites the category with c.ID.
func (s *Store) UpdateCategory(ctx context.Context, c model.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ?, kind = ?, is_default = ? WHERE id = ?`,
		c.Name, c.Icon, c.Color, string(c.Kind), boolToInt(c.IsDefault), c.ID)
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return expectOneRow(res, "category", c.ID)
}

func categoriesFromRows(rows []categoryRow) []model.Category {
	out := make([]model.Category, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out
}

func expectOneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %d: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, model.ErrNotFound)
	}
	return nil
}
