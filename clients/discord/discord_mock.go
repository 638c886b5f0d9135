package discord

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gridbot/clients"
)

// MockDiscordClient is a mock implementation of clients.DiscordClient
type MockDiscordClient struct {
	mock.Mock
}

func (m *MockDiscordClient) GetBotUser() (*clients.DiscordBotUser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordBotUser), args.Error(1)
}

func (m *MockDiscordClient) SendChannelMessage(
	ctx context.Context,
	channelID, content string,
) (*clients.DiscordPostMessageResponse, error) {
	args := m.Called(ctx, channelID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordPostMessageResponse), args.Error(1)
}

func (m *MockDiscordClient) SendChannelEmbed(ctx context.Context, channelID string, embed *clients.DiscordEmbed) error {
	args := m.Called(ctx, channelID, embed)
	return args.Error(0)
}

func (m *MockDiscordClient) FetchRecentMessages(
	ctx context.Context,
	channelID string,
	limit int,
) ([]clients.DiscordMessage, error) {
	args := m.Called(ctx, channelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.DiscordMessage), args.Error(1)
}

func (m *MockDiscordClient) FetchMessageByID(
	ctx context.Context,
	channelID, messageID string,
) (*clients.DiscordMessage, error) {
	args := m.Called(ctx, channelID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordMessage), args.Error(1)
}

func (m *MockDiscordClient) TriggerTyping(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockDiscordClient) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

func (m *MockDiscordClient) BanGuildMember(ctx context.Context, guildID, userID, reason string) error {
	args := m.Called(ctx, guildID, userID, reason)
	return args.Error(0)
}
