package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketledger/pocketledger/internal/model"
)

type achievementRow struct {
	ID          int64          `db:"id"`
	Type        string         `db:"type"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Emoji       string         `db:"emoji"`
	Earned      bool           `db:"earned"`
	EarnedAt    sql.NullString `db:"earned_at"`
}

func (r achievementRow) toModel() (model.Achievement, error) {
	a := model.Achievement{
		ID:          r.ID,
		Type:        r.Type,
		Name:        r.Name,
		Description: r.Description,
		Emoji:       r.Emoji,
		Earned:      r.Earned,
	}
	if r.EarnedAt.Valid {
		t, err := parseTime(r.EarnedAt.String)
		if err != nil {
			return model.Achievement{}, fmt.Errorf("achievement %s: %w", r.Type, err)
		}
		a.EarnedAt = &t
	}
	return a, nil
}

const achievementColumns = `id, type, name, description, emoji, earned, earned_at`

// InsertAchievementIfMissing creates a locked record for a.Type unless one exists.
func (s *Store) InsertAchievementIfMissing(ctx context.Context, a model.Achievement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO achievements (type, name, description, emoji, earned) VALUES (?, ?, ?, ?, 0)`,
		a.Type, a.Name, a.Description, a.Emoji)
	if err != nil {
		return fmt.Errorf("seed achievement %s: %w", a.Type, err)
	}
	return nil
}

// ListAchievements returns every achievement record in seed order.
func (s *Store) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	var rows []achievementRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+achievementColumns+` FROM achievements ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out := make([]model.Achievement, 0, len(rows))
	for _, r := range rows {
		a, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// GetAchievement returns the record for an achievement type or model.ErrNotFound.
func (s *Store) GetAchievement(ctx context.Context, achievementType string) (model.Achievement, error) {
	var row achievementRow
	err := s.db.GetContext(ctx, &row, `SELECT `+achievementColumns+` FROM achievements WHERE type = ?`, achievementType)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Achievement{}, fmt.Errorf("achievement %s: %w", achievementType, model.ErrNotFound)
	}
	if err != nil {
		return model.Achievement{}, fmt.Errorf("get achievement %s: %w", achievementType, err)
	}
	return row.toModel()
}

// MarkAchievementEarned flips a locked achievement to earned. It reports
// whether this call performed the transition; an already earned record is
// left untouched.
func (s *Store) MarkAchievementEarned(ctx context.Context, achievementType string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE achievements SET earned = 1, earned_at = ? WHERE type = ? AND earned = 0`,
		formatTime(at), achievementType)
	if err != nil {
		return false, fmt.Errorf("mark achievement %s earned: %w", achievementType, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark achievement %s earned: %w", achievementType, err)
	}
	if n > 0 {
		s.log.Info().Str("achievement", achievementType).Msg("achievement earned")
	}
	return n > 0, nil
}
