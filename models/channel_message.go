package models

import (
	"time"
)

// ChannelMessage is one historical utterance in a channel. Rows are
// append-only: once written they are never mutated, only pruned by age.
type ChannelMessage struct {
	ID         string    `json:"id"          db:"id"`
	ChannelID  string    `json:"channel_id"  db:"channel_id"`
	AuthorName string    `json:"author_name" db:"author_name"`
	// AuthorID is nil for synthetic/system authors (e.g. the bot persona
	// before it has a platform identity)
	AuthorID  *string   `json:"author_id" db:"author_id"`
	Content   string    `json:"content"   db:"content"`
	IsBot     bool      `json:"is_bot"    db:"is_bot"`
	Timestamp time.Time `json:"timestamp" db:"ts"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
