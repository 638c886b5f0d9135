package moderation

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"gridbot/models"
	"gridbot/services"
)

// MockModerationService is a mock implementation of the ModerationService interface
type MockModerationService struct {
	mock.Mock
}

func (m *MockModerationService) OpenVote(ctx context.Context, vote *models.PendingModerationVote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *MockModerationService) GetVoteByMessageID(
	ctx context.Context,
	voteMessageID string,
) (mo.Option[*models.PendingModerationVote], error) {
	args := m.Called(ctx, voteMessageID)
	return args.Get(0).(mo.Option[*models.PendingModerationVote]), args.Error(1)
}

func (m *MockModerationService) CastVote(
	ctx context.Context,
	voteMessageID, voterID string,
	approve bool,
) (*services.ModerationVoteOutcome, error) {
	args := m.Called(ctx, voteMessageID, voterID, approve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ModerationVoteOutcome), args.Error(1)
}

func (m *MockModerationService) HasOpenVoteForUser(ctx context.Context, targetUserID string) (bool, error) {
	args := m.Called(ctx, targetUserID)
	return args.Bool(0), args.Error(1)
}
