package models

import (
	"time"
)

// MoodState is the bot's current mood. A new row is written on every
// change; the latest row wins.
type MoodState struct {
	ID          int64     `json:"id"          db:"id"`
	Mood        string    `json:"mood"        db:"mood"`
	Description string    `json:"description" db:"description"`
	Intensity   float64   `json:"intensity"   db:"intensity"`
	UpdatedAt   time.Time `json:"updated_at"  db:"updated_at"`
}

// MemoryEntry is a sticky key/value fact with provenance, upserted by key.
type MemoryEntry struct {
	ID        int64     `json:"id"         db:"id"`
	Key       string    `json:"key"        db:"key"`
	Value     string    `json:"value"      db:"value"`
	Source    *string   `json:"source"     db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RecentHappening is the single free-text "what's been going on" blob.
// Latest row wins; content is capped at write time.
type RecentHappening struct {
	ID        int64     `json:"id"         db:"id"`
	Content   string    `json:"content"    db:"content"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
