package model

import "time"

// NeutralFriendliness is the friendliness score of a profile with no history.
const NeutralFriendliness = 0.5

// UserProfile is the singleton owner record of an installation.
type UserProfile struct {
	ID               int64
	Name             string
	AvatarInitial    string
	Currency         string
	CreatedAt        time.Time
	Friendliness     float64 // in [0,1]
	MessagesAnalyzed int
}

// DefaultProfile returns the profile created on first access.
func DefaultProfile(name, currency string, now time.Time) UserProfile {
	return UserProfile{
		Name:          name,
		AvatarInitial: InitialIcon(name),
		Currency:      currency,
		CreatedAt:     now,
		Friendliness:  NeutralFriendliness,
	}
}

// ClampFriendliness bounds a score to [0,1].
func ClampFriendliness(v float64) float64 {
	switch {
	case v != v: // NaN
		return NeutralFriendliness
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
