package services

import (
	"context"
	"time"

	"github.com/samber/mo"

	"gridbot/models"
)

// ConversationService defines the interface for the durable per-channel
// message history that decision prompts are assembled from.
type ConversationService interface {
	// RecordUserMessage appends a user utterance to the channel history
	RecordUserMessage(
		ctx context.Context,
		channelID, authorName string,
		authorID *string,
		content string,
	) (*models.ChannelMessage, error)

	// RecordBotMessage appends one of the bot's own replies to the channel history
	RecordBotMessage(ctx context.Context, channelID, personaName, content string) (*models.ChannelMessage, error)

	// GetRecentHistory returns the newest limit messages in chronological
	// order, optionally excluding the bot's own replies
	GetRecentHistory(
		ctx context.Context,
		channelID string,
		limit int,
		excludeBot bool,
	) ([]*models.ChannelMessage, error)

	// FormatHistory renders messages as prompt-ready "author: content" lines
	FormatHistory(messages []*models.ChannelMessage) string

	// GetMessageCount returns the total stored message count for a channel
	GetMessageCount(ctx context.Context, channelID string) (int, error)

	// PruneMessagesOlderThan deletes history older than the cutoff across all channels
	PruneMessagesOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// BotStateService defines the interface for the bot's durable
// personality state: mood, memory bank, and the recent happenings summary.
type BotStateService interface {
	SetMood(ctx context.Context, mood, description string, intensity float64) error
	GetMood(ctx context.Context) (*models.MoodState, error)

	// FormatMood renders the current mood as a single prompt line
	FormatMood(ctx context.Context) (string, error)

	SaveMemory(ctx context.Context, key, value string, source *string) error
	DeleteMemory(ctx context.Context, key string) (bool, error)
	GetAllMemories(ctx context.Context) ([]*models.MemoryEntry, error)

	// FormatMemories renders the memory bank as a prompt block, empty when no memories exist
	FormatMemories(ctx context.Context) (string, error)

	SetHappenings(ctx context.Context, content string) error
	GetHappenings(ctx context.Context) (string, error)

	// FormatHappenings renders the happenings summary as a prompt block, empty when unset
	FormatHappenings(ctx context.Context) (string, error)
}

// ModerationVoteOutcome is the result of casting a single vote
type ModerationVoteOutcome struct {
	Vote *models.PendingModerationVote

	// Transitioned is true when this vote moved the tally out of OPEN.
	// The vote's State field then holds the terminal state.
	Transitioned bool
}

// ModerationService defines the interface for pending ban votes. Votes
// live in memory: every vote reaches a terminal state within one
// process lifetime and is removed from the registry once it does.
type ModerationService interface {
	// OpenVote registers a new pending vote keyed by its announcement message
	OpenVote(ctx context.Context, vote *models.PendingModerationVote) error

	// GetVoteByMessageID looks up an open vote by its announcement message ID
	GetVoteByMessageID(ctx context.Context, voteMessageID string) (mo.Option[*models.PendingModerationVote], error)

	// CastVote records one user's approve or dismiss reaction. The
	// threshold check and state transition happen atomically.
	CastVote(ctx context.Context, voteMessageID, voterID string, approve bool) (*ModerationVoteOutcome, error)

	// HasOpenVoteForUser reports whether the target user already has an open vote
	HasOpenVoteForUser(ctx context.Context, targetUserID string) (bool, error)
}

// TransactionManager provides database transaction management
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
	BeginTransaction(ctx context.Context) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}
