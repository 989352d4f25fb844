package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

type transactionRow struct {
	ID          int64           `db:"id"`
	Title       string          `db:"title"`
	Amount      decimal.Decimal `db:"amount"`
	Kind        string          `db:"kind"`
	CategoryID  int64           `db:"category_id"`
	Importance  string          `db:"importance"`
	OccurredAt  string          `db:"occurred_at"`
	Description string          `db:"description"`

	// Joined from categories; NULL when the reference does not resolve.
	CategoryName      sql.NullString `db:"category_name"`
	CategoryIcon      sql.NullString `db:"category_icon"`
	CategoryColor     sql.NullString `db:"category_color"`
	CategoryKind      sql.NullString `db:"category_kind"`
	CategoryIsDefault sql.NullBool   `db:"category_is_default"`
}

func (r transactionRow) toView() (model.TransactionView, error) {
	occurred, err := parseTime(r.OccurredAt)
	if err != nil {
		return model.TransactionView{}, fmt.Errorf("transaction %d: %w", r.ID, err)
	}
	v := model.TransactionView{
		Transaction: model.Transaction{
			ID:          r.ID,
			Title:       r.Title,
			Amount:      r.Amount,
			Kind:        model.Kind(r.Kind),
			CategoryID:  r.CategoryID,
			Importance:  model.Importance(r.Importance),
			OccurredAt:  occurred,
			Description: r.Description,
		},
	}
	if r.CategoryName.Valid {
		v.Category = model.Category{
			ID:        r.CategoryID,
			Name:      r.CategoryName.String,
			Icon:      r.CategoryIcon.String,
			Color:     r.CategoryColor.String,
			Kind:      model.Kind(r.CategoryKind.String),
			IsDefault: r.CategoryIsDefault.Bool,
		}
	}
	return v, nil
}

const transactionSelect = `
SELECT t.id, t.title, t.amount, t.kind, t.category_id, t.importance, t.occurred_at, t.description,
       c.name AS category_name, c.icon AS category_icon, c.color AS category_color,
       c.kind AS category_kind, c.is_default AS category_is_default
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id`

// TransactionQuery narrows ListTransactions. The zero value selects everything.
type TransactionQuery struct {
	Since time.Time // inclusive lower bound on occurrence; zero means unbounded
	Limit int       // zero means unlimited
}

// ListTransactions returns transactions joined with their categories, most
// recent occurrence first.
func (s *Store) ListTransactions(ctx context.Context, q TransactionQuery) ([]model.TransactionView, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(transactionSelect)
	if !q.Since.IsZero() {
		sb.WriteString(" WHERE t.occurred_at >= ?")
		args = append(args, formatTime(q.Since))
	}
	sb.WriteString(" ORDER BY t.occurred_at DESC, t.id DESC")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	var rows []transactionRow
	if err := s.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	views := make([]model.TransactionView, 0, len(rows))
	for _, r := range rows {
		v, err := r.toView()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// GetTransaction returns one transaction joined with its category.
func (s *Store) GetTransaction(ctx context.Context, id int64) (model.TransactionView, error) {
	var row transactionRow
	err := s.db.GetContext(ctx, &row, transactionSelect+" WHERE t.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TransactionView{}, fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.TransactionView{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return row.toView()
}

// InsertTransaction stores t and returns its new id. t.ID is ignored.
func (s *Store) InsertTransaction(ctx context.Context, t model.Transaction) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (title, amount, kind, category_id, importance, occurred_at, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Amount, string(t.Kind), t.CategoryID, string(t.Importance), formatTime(t.OccurredAt), t.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	s.log.Debug().
		Int64("id", id).
		Str("kind", string(t.Kind)).
		Str("amount", t.Amount.String()).
		Msg("transaction inserted")
	return id, nil
}

// UpdateTransaction overwrites the transaction with t.ID. Last write wins.
func (s *Store) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET title = ?, amount = ?, kind = ?, category_id = ?, importance = ?, occurred_at = ?, description = ?
		 WHERE id = ?`,
		t.Title, t.Amount, string(t.Kind), t.CategoryID, string(t.Importance), formatTime(t.OccurredAt), t.Description, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return expectOneRow(res, "transaction", t.ID)
}

// DeleteTransaction removes the transaction with id. It reports whether a row
// was removed.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.log.Debug().Int64("id", id).Bool("removed", n > 0).Msg("transaction deleted")
	return n > 0, nil
}
