package domain

import (
	"slices"
	"strings"
	"time"
)

// List status values. Validation is a pulse: the status is stamped and reset
// to active within the same operation, so a fresh list can start immediately.
const (
	ListStatusActive    = "active"
	ListStatusValidated = "validated"
)

// MaxGroupNameLength bounds the display name of a coloc.
const MaxGroupNameLength = 30

// DefaultGroupEmoji is used when the creator picks none.
const DefaultGroupEmoji = "🏠"

// Group is a shared household: one shopping list, one chat stream, joined
// through a unique human-readable code.
type Group struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Emoji       string     `json:"emoji"`
	Members     []string   `json:"members"`
	ListStatus  string     `json:"listStatus"`
	ValidatedBy string     `json:"validatedBy,omitempty"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HasMember reports whether name is already in the membership set.
// Membership is a set of free-text display names, not accounts.
func (g *Group) HasMember(name string) bool {
	return slices.Contains(g.Members, name)
}

// NormalizeCode trims and uppercases a join code so lookups are
// case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
