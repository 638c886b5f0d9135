package clients

import "time"

// DiscordBotUser represents the bot's own Discord user
type DiscordBotUser struct {
	ID       string
	Username string
	Bot      bool
}

// DiscordMessage represents a platform message as fetched from Discord,
// used by the action resolver's backward scan over channel history
type DiscordMessage struct {
	ID         string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Content    string
	IsBot      bool
	Timestamp  time.Time
}

// DiscordPostMessageResponse represents the response from posting a message
type DiscordPostMessageResponse struct {
	ChannelID string
	MessageID string
}

// DiscordEmbedField is one titled field inside a rich embed
type DiscordEmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// DiscordEmbed holds parameters for sending a rich embed message
type DiscordEmbed struct {
	Title       string
	Description string
	Color       int
	Fields      []DiscordEmbedField
}
