package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketledger/pocketledger/internal/model"
)

type profileRow struct {
	ID               int64   `db:"id"`
	Name             string  `db:"name"`
	AvatarInitial    string  `db:"avatar_initial"`
	Currency         string  `db:"currency"`
	CreatedAt        string  `db:"created_at"`
	Friendliness     float64 `db:"friendliness"`
	MessagesAnalyzed int     `db:"messages_analyzed"`
}

// GetProfile returns the singleton profile, reporting false when none exists yet.
func (s *Store) GetProfile(ctx context.Context) (model.UserProfile, bool, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, avatar_initial, currency, created_at, friendliness, messages_analyzed
		 FROM user_profile ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserProfile{}, false, nil
	}
	if err != nil {
		return model.UserProfile{}, false, fmt.Errorf("get profile: %w", err)
	}
	created, err := parseTime(row.CreatedAt)
	if err != nil {
		return model.UserProfile{}, false, fmt.Errorf("profile %d: %w", row.ID, err)
	}
	return model.UserProfile{
		ID:               row.ID,
		Name:             row.Name,
		AvatarInitial:    row.AvatarInitial,
		Currency:         row.Currency,
		CreatedAt:        created,
		Friendliness:     row.Friendliness,
		MessagesAnalyzed: row.MessagesAnalyzed,
	}, true, nil
}

// InsertProfile stores p and returns its new id.
func (s *Store) InsertProfile(ctx context.Context, p model.UserProfile) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profile (name, avatar_initial, currency, created_at, friendliness, messages_analyzed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.AvatarInitial, p.Currency, formatTime(p.CreatedAt), p.Friendliness, p.MessagesAnalyzed)
	if err != nil {
		return 0, fmt.Errorf("insert profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert profile: %w", err)
	}
	return id, nil
}

// UpdateProfile overwrites the profile with p.ID.
func (s *Store) UpdateProfile(ctx context.Context, p model.UserProfile) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_profile
		 SET name = ?, avatar_initial = ?, currency = ?, created_at = ?, friendliness = ?, messages_analyzed = ?
		 WHERE id = ?`,
		p.Name, p.AvatarInitial, p.Currency, formatTime(p.CreatedAt), p.Friendliness, p.MessagesAnalyzed, p.ID)
	if err != nil {
		return fmt.Errorf("update profile %d: %w", p.ID, err)
	}
	return expectOneRow(res, "profile", p.ID)
}
