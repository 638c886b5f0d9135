package clients

import (
	"context"

	"github.com/samber/mo"

	"gridbot/models"
)

// CompletionClient defines the interface for LLM text completion.
// Implementations must bound their total wait time and return an error
// value (never panic) on timeout or provider failure.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RetrieverClient defines the interface for the external document
// retrieval service. An empty result is valid (cold or empty index).
type RetrieverClient interface {
	RelevantContext(ctx context.Context, query string, topK int) ([]models.RetrievedSnippet, error)
}

// CoinGeckoClient defines the interface for crypto market data lookups
type CoinGeckoClient interface {
	// GetPrice returns a formatted quote like "bitcoin: $64,123.50 (+1.23%)"
	GetPrice(ctx context.Context, coinID string) (mo.Option[string], error)
	// SearchCoin resolves a free-text name to a CoinGecko coin ID
	SearchCoin(ctx context.Context, query string) (mo.Option[string], error)
}

// DiscordClient defines the interface for Discord API operations
type DiscordClient interface {
	// Bot operations
	GetBotUser() (*DiscordBotUser, error)

	// Message operations
	SendChannelMessage(ctx context.Context, channelID, content string) (*DiscordPostMessageResponse, error)
	SendChannelEmbed(ctx context.Context, channelID string, embed *DiscordEmbed) error
	FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]DiscordMessage, error)
	FetchMessageByID(ctx context.Context, channelID, messageID string) (*DiscordMessage, error)
	TriggerTyping(ctx context.Context, channelID string) error

	// Reaction operations
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error

	// Moderation operations
	BanGuildMember(ctx context.Context, guildID, userID, reason string) error
}
