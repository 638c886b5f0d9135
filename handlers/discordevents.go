package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"gridbot/middleware"
	"gridbot/models"
	"gridbot/usecases/decision"
	"gridbot/usecases/moderation"
)

type DiscordEventsHandler struct {
	discordSDKClient  *discordgo.Session
	decisionUseCase   *decision.DecisionUseCase
	moderationUseCase *moderation.ModerationUseCase
	alertMiddleware   *middleware.ErrorAlertMiddleware
}

// NewDiscordEventsHandler registers message and reaction handlers on the
// given session. The session is shared with the Discord API client so both
// sides reuse one gateway connection.
func NewDiscordEventsHandler(
	session *discordgo.Session,
	decisionUseCase *decision.DecisionUseCase,
	moderationUseCase *moderation.ModerationUseCase,
	alertMiddleware *middleware.ErrorAlertMiddleware,
) *DiscordEventsHandler {
	handler := &DiscordEventsHandler{
		discordSDKClient:  session,
		decisionUseCase:   decisionUseCase,
		moderationUseCase: moderationUseCase,
		alertMiddleware:   alertMiddleware,
	}

	// Register event handlers
	session.AddHandler(handler.handleMessageCreatedEvent)
	session.AddHandler(handler.handleReactionAddedEvent)

	// Set intents to receive message and reaction events
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	return handler
}

// StartBot opens the Discord connection and starts listening for events
func (h *DiscordEventsHandler) StartBot() error {
	// Open a websocket connection to Discord and begin listening
	err := h.discordSDKClient.Open()
	if err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Printf("🤖 Discord bot is now running and listening for events")
	return nil
}

// StopBot gracefully closes the Discord connection
func (h *DiscordEventsHandler) StopBot() {
	h.discordSDKClient.Close()
}

// handleMessageCreatedEvent handles incoming Discord messages
func (h *DiscordEventsHandler) handleMessageCreatedEvent(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	log.Printf("📨 Discord message received from %s in guild %s, channel %s",
		m.Author.Username, m.GuildID, m.ChannelID)

	ctx := context.Background()
	messageEvent := h.mapToDiscordMessageEvent(s, m)

	// Moderation runs first so a scam message never gets a friendly
	// reply before its ban vote opens.
	h.alertMiddleware.WrapEventHandler("moderation message", func() error {
		return h.moderationUseCase.ProcessMessageEvent(ctx, messageEvent)
	})
	h.alertMiddleware.WrapEventHandler("decision message", func() error {
		return h.decisionUseCase.ProcessMessageEvent(ctx, messageEvent)
	})
}

// handleReactionAddedEvent handles when a reaction is added to a message
func (h *DiscordEventsHandler) handleReactionAddedEvent(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	log.Printf("📨 Discord reaction %s added by user %s on message %s in guild %s",
		r.Emoji.Name, r.UserID, r.MessageID, r.GuildID)

	ctx := context.Background()
	reactionEvent := models.DiscordReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		EmojiName: r.Emoji.Name,
	}

	h.alertMiddleware.WrapEventHandler("moderation reaction", func() error {
		return h.moderationUseCase.ProcessReactionEvent(ctx, reactionEvent)
	})
}

// mapToDiscordMessageEvent maps a Discord SDK message event to our domain model
func (h *DiscordEventsHandler) mapToDiscordMessageEvent(
	s *discordgo.Session,
	m *discordgo.MessageCreate,
) models.DiscordMessageEvent {
	var channelName, channelTopic string
	if channel, err := s.Channel(m.ChannelID); err != nil {
		// Channel metadata only enriches the prompt, so a lookup
		// failure does not block the event
		log.Printf("⚠️ Failed to get channel info for %s: %v", m.ChannelID, err)
	} else {
		channelName = channel.Name
		channelTopic = channel.Topic
	}

	// Extract mentioned user IDs
	mentions := make([]string, len(m.Mentions))
	for i, mentionedUser := range m.Mentions {
		mentions[i] = mentionedUser.ID
	}

	var referencedMessageID *string
	if m.MessageReference != nil && m.MessageReference.MessageID != "" {
		referencedMessageID = &m.MessageReference.MessageID
	}

	return models.DiscordMessageEvent{
		GuildID:             m.GuildID,
		ChannelID:           m.ChannelID,
		ChannelName:         channelName,
		ChannelTopic:        channelTopic,
		MessageID:           m.ID,
		UserID:              m.Author.ID,
		UserName:            m.Author.Username,
		Content:             m.Content,
		ReferencedMessageID: referencedMessageID,
		Mentions:            mentions,
	}
}
