package conversation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gridbot/core"
	"gridbot/db"
	"gridbot/models"
)

type ConversationServiceImpl struct {
	messagesRepo *db.PostgresMessagesRepository

	// Per-channel locks so concurrent appends to the same channel keep
	// their timestamp order stable.
	mu           sync.Mutex
	channelLocks map[string]*sync.Mutex
}

func NewConversationService(messagesRepo *db.PostgresMessagesRepository) *ConversationServiceImpl {
	return &ConversationServiceImpl{
		messagesRepo: messagesRepo,
		channelLocks: make(map[string]*sync.Mutex),
	}
}

func (s *ConversationServiceImpl) lockChannel(channelID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.channelLocks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		s.channelLocks[channelID] = lock
	}
	return lock
}

func (s *ConversationServiceImpl) RecordUserMessage(
	ctx context.Context,
	channelID, authorName string,
	authorID *string,
	content string,
) (*models.ChannelMessage, error) {
	log.Printf("📋 Starting to record user message in channel: %s", channelID)

	if channelID == "" {
		return nil, fmt.Errorf("channel ID cannot be empty")
	}
	if authorName == "" {
		return nil, fmt.Errorf("author name cannot be empty")
	}

	message := &models.ChannelMessage{
		ID:         core.NewID("msg"),
		ChannelID:  channelID,
		AuthorName: authorName,
		AuthorID:   authorID,
		Content:    content,
		IsBot:      false,
	}
	if err := s.appendMessage(ctx, message); err != nil {
		return nil, err
	}

	log.Printf("📋 Completed successfully - recorded user message %s in channel: %s", message.ID, channelID)
	return message, nil
}

func (s *ConversationServiceImpl) RecordBotMessage(
	ctx context.Context,
	channelID, personaName, content string,
) (*models.ChannelMessage, error) {
	log.Printf("📋 Starting to record bot message in channel: %s", channelID)

	if channelID == "" {
		return nil, fmt.Errorf("channel ID cannot be empty")
	}
	if personaName == "" {
		return nil, fmt.Errorf("persona name cannot be empty")
	}

	message := &models.ChannelMessage{
		ID:         core.NewID("msg"),
		ChannelID:  channelID,
		AuthorName: personaName,
		Content:    content,
		IsBot:      true,
	}
	if err := s.appendMessage(ctx, message); err != nil {
		return nil, err
	}

	log.Printf("📋 Completed successfully - recorded bot message %s in channel: %s", message.ID, channelID)
	return message, nil
}

// appendMessage assigns the timestamp and inserts under the channel
// lock, so the stored order matches arrival order within a channel.
func (s *ConversationServiceImpl) appendMessage(ctx context.Context, message *models.ChannelMessage) error {
	lock := s.lockChannel(message.ChannelID)
	lock.Lock()
	defer lock.Unlock()

	message.Timestamp = time.Now().UTC()
	if err := s.messagesRepo.CreateChannelMessage(ctx, message); err != nil {
		return fmt.Errorf("failed to append channel message: %w", err)
	}
	return nil
}

func (s *ConversationServiceImpl) GetRecentHistory(
	ctx context.Context,
	channelID string,
	limit int,
	excludeBot bool,
) ([]*models.ChannelMessage, error) {
	log.Printf("📋 Starting to get recent history for channel: %s (limit: %d)", channelID, limit)

	if channelID == "" {
		return nil, fmt.Errorf("channel ID cannot be empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got: %d", limit)
	}

	messages, err := s.messagesRepo.GetRecentMessagesByChannel(ctx, channelID, limit, excludeBot)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent history: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d messages for channel: %s", len(messages), channelID)
	return messages, nil
}

func (s *ConversationServiceImpl) FormatHistory(messages []*models.ChannelMessage) string {
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Recent chat (last messages):\n")
	for _, msg := range messages {
		b.WriteString(msg.AuthorName)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ConversationServiceImpl) GetMessageCount(ctx context.Context, channelID string) (int, error) {
	if channelID == "" {
		return 0, fmt.Errorf("channel ID cannot be empty")
	}

	count, err := s.messagesRepo.GetMessageCountByChannel(ctx, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to get message count: %w", err)
	}
	return count, nil
}

func (s *ConversationServiceImpl) PruneMessagesOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	log.Printf("📋 Starting to prune messages older than: %s", cutoff.Format(time.RFC3339))

	deleted, err := s.messagesRepo.DeleteMessagesOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune old messages: %w", err)
	}

	log.Printf("📋 Completed successfully - pruned %d old messages", deleted)
	return deleted, nil
}
