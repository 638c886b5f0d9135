package moderation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbot/core"
	"gridbot/models"
)

func openTestVote(t *testing.T, service *ModerationServiceImpl, voteMessageID, targetUserID string) *models.PendingModerationVote {
	vote := &models.PendingModerationVote{
		ID:             core.NewID("vote"),
		VoteMessageID:  voteMessageID,
		ChannelID:      "chan-1",
		GuildID:        "guild-1",
		TargetUserID:   targetUserID,
		TargetUserName: "scammer",
		Reason:         "posted a phishing link",
	}
	require.NoError(t, service.OpenVote(context.Background(), vote))
	return vote
}

func TestOpenVoteRejectsDuplicateTarget(t *testing.T) {
	service := NewModerationService()
	openTestVote(t, service, "vm-1", "user-1")

	err := service.OpenVote(context.Background(), &models.PendingModerationVote{
		ID:            core.NewID("vote"),
		VoteMessageID: "vm-2",
		TargetUserID:  "user-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open vote already exists")

	hasVote, err := service.HasOpenVoteForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, hasVote)
}

func TestCastVoteReachesBanThreshold(t *testing.T) {
	service := NewModerationService()
	openTestVote(t, service, "vm-1", "user-1")
	ctx := context.Background()

	outcome, err := service.CastVote(ctx, "vm-1", "voter-1", true)
	require.NoError(t, err)
	assert.False(t, outcome.Transitioned)
	assert.Equal(t, 1, outcome.Vote.ApproveCount())

	outcome, err = service.CastVote(ctx, "vm-1", "voter-2", true)
	require.NoError(t, err)
	assert.False(t, outcome.Transitioned)

	outcome, err = service.CastVote(ctx, "vm-1", "voter-3", true)
	require.NoError(t, err)
	assert.True(t, outcome.Transitioned)
	assert.Equal(t, models.ModerationVoteStateBanned, outcome.Vote.State)

	// Terminal vote is gone from the registry
	maybeVote, err := service.GetVoteByMessageID(ctx, "vm-1")
	require.NoError(t, err)
	assert.True(t, maybeVote.IsAbsent())

	hasVote, err := service.HasOpenVoteForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, hasVote)
}

func TestCastVoteReachesDismissThreshold(t *testing.T) {
	service := NewModerationService()
	openTestVote(t, service, "vm-1", "user-1")
	ctx := context.Background()

	for _, voter := range []string{"voter-1", "voter-2"} {
		outcome, err := service.CastVote(ctx, "vm-1", voter, false)
		require.NoError(t, err)
		assert.False(t, outcome.Transitioned)
	}

	outcome, err := service.CastVote(ctx, "vm-1", "voter-3", false)
	require.NoError(t, err)
	assert.True(t, outcome.Transitioned)
	assert.Equal(t, models.ModerationVoteStateDismissed, outcome.Vote.State)
}

func TestCastVoteIsIdempotentPerVoter(t *testing.T) {
	service := NewModerationService()
	openTestVote(t, service, "vm-1", "user-1")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		outcome, err := service.CastVote(ctx, "vm-1", "voter-1", true)
		require.NoError(t, err)
		assert.False(t, outcome.Transitioned)
		assert.Equal(t, 1, outcome.Vote.ApproveCount())
	}
}

func TestCastVoteSwitchesSides(t *testing.T) {
	service := NewModerationService()
	openTestVote(t, service, "vm-1", "user-1")
	ctx := context.Background()

	outcome, err := service.CastVote(ctx, "vm-1", "voter-1", true)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Vote.ApproveCount())
	assert.Equal(t, 0, outcome.Vote.DismissCount())

	outcome, err = service.CastVote(ctx, "vm-1", "voter-1", false)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Vote.ApproveCount())
	assert.Equal(t, 1, outcome.Vote.DismissCount())
}

func TestCastVoteUnknownMessage(t *testing.T) {
	service := NewModerationService()

	_, err := service.CastVote(context.Background(), "vm-missing", "voter-1", true)
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestCastVoteConcurrentFinalVotes(t *testing.T) {
	service := NewModerationService()
	openTestVote(t, service, "vm-1", "user-1")
	ctx := context.Background()

	_, err := service.CastVote(ctx, "vm-1", "voter-1", true)
	require.NoError(t, err)
	_, err = service.CastVote(ctx, "vm-1", "voter-2", true)
	require.NoError(t, err)

	// Two racing third votes: exactly one may observe the transition
	var wg sync.WaitGroup
	transitions := make(chan bool, 2)
	for _, voter := range []string{"voter-3", "voter-4"} {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()
			outcome, err := service.CastVote(ctx, "vm-1", voter, true)
			if err == nil && outcome.Transitioned {
				transitions <- true
			}
		}(voter)
	}
	wg.Wait()
	close(transitions)

	count := 0
	for range transitions {
		count++
	}
	assert.Equal(t, 1, count)
}
