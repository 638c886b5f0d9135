package conversation

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gridbot/models"
)

// MockConversationService is a mock implementation of the ConversationService interface
type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) RecordUserMessage(
	ctx context.Context,
	channelID, authorName string,
	authorID *string,
	content string,
) (*models.ChannelMessage, error) {
	args := m.Called(ctx, channelID, authorName, authorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelMessage), args.Error(1)
}

func (m *MockConversationService) RecordBotMessage(
	ctx context.Context,
	channelID, personaName, content string,
) (*models.ChannelMessage, error) {
	args := m.Called(ctx, channelID, personaName, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelMessage), args.Error(1)
}

func (m *MockConversationService) GetRecentHistory(
	ctx context.Context,
	channelID string,
	limit int,
	excludeBot bool,
) ([]*models.ChannelMessage, error) {
	args := m.Called(ctx, channelID, limit, excludeBot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChannelMessage), args.Error(1)
}

func (m *MockConversationService) FormatHistory(messages []*models.ChannelMessage) string {
	args := m.Called(messages)
	return args.String(0)
}

func (m *MockConversationService) GetMessageCount(ctx context.Context, channelID string) (int, error) {
	args := m.Called(ctx, channelID)
	return args.Int(0), args.Error(1)
}

func (m *MockConversationService) PruneMessagesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
