package botstate

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gridbot/models"
)

// MockBotStateService is a mock implementation of the BotStateService interface
type MockBotStateService struct {
	mock.Mock
}

func (m *MockBotStateService) SetMood(ctx context.Context, mood, description string, intensity float64) error {
	args := m.Called(ctx, mood, description, intensity)
	return args.Error(0)
}

func (m *MockBotStateService) GetMood(ctx context.Context) (*models.MoodState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MoodState), args.Error(1)
}

func (m *MockBotStateService) FormatMood(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBotStateService) SaveMemory(ctx context.Context, key, value string, source *string) error {
	args := m.Called(ctx, key, value, source)
	return args.Error(0)
}

func (m *MockBotStateService) DeleteMemory(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockBotStateService) GetAllMemories(ctx context.Context) ([]*models.MemoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MemoryEntry), args.Error(1)
}

func (m *MockBotStateService) FormatMemories(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBotStateService) SetHappenings(ctx context.Context, content string) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockBotStateService) GetHappenings(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBotStateService) FormatHappenings(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
