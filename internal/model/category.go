package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultColor is the neutral color given to synthesized categories.
const DefaultColor = "#9E9E9E"

// Category is a named, colored bucket that transactions are filed under.
type Category struct {
	ID        int64
	Name      string
	Icon      string
	Color     string
	Kind      Kind
	IsDefault bool // seeded rather than user-created
}

// InitialIcon returns the first letter of name, uppercased, or "?" for blank names.
func InitialIcon(name string) string {
	name = strings.TrimSpace(name)
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
