package model

import "time"

// Achievement is the mutable earned-state record of one achievement definition.
// Earned only ever goes from false to true.
type Achievement struct {
	ID          int64
	Type        string
	Name        string
	Description string
	Emoji       string
	Earned      bool
	EarnedAt    *time.Time
}
