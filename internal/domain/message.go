package domain

import "time"

// MaxMessageLength bounds chat message text.
const MaxMessageLength = 300

// DefaultAvatar is used when a client joins without picking a glyph.
const DefaultAvatar = "🧑"

// Message is one chat entry, append-only and scoped to a single coloc.
type Message struct {
	ID        string    `json:"id"`
	ColocID   string    `json:"colocId"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
