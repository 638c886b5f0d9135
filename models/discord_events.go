package models

type DiscordMessageEvent struct {
	GuildID      string
	ChannelID    string
	ChannelName  string
	ChannelTopic string
	MessageID    string
	UserID       string
	UserName     string
	Content      string
	// ReferencedMessageID is set when this message is a reply to another message
	ReferencedMessageID *string
	// Mentions contains the user IDs of all users mentioned in this message
	Mentions []string
}

type DiscordReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	EmojiName string
}
