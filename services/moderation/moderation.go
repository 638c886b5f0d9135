package moderation

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/samber/mo"

	"gridbot/core"
	"gridbot/models"
	"gridbot/services"
)

// VoteThreshold is the number of distinct voters on one side needed to
// close a vote. The bot's own auto-approve counts toward it.
const VoteThreshold = 3

// ModerationServiceImpl keeps pending ban votes in memory. Every vote
// reaches a terminal state within one process lifetime, so there is no
// durable table behind this registry.
type ModerationServiceImpl struct {
	mu            sync.Mutex
	votesByMsgID  map[string]*models.PendingModerationVote
	votesByTarget map[string]string // target user ID -> vote message ID
}

func NewModerationService() *ModerationServiceImpl {
	return &ModerationServiceImpl{
		votesByMsgID:  make(map[string]*models.PendingModerationVote),
		votesByTarget: make(map[string]string),
	}
}

func (s *ModerationServiceImpl) OpenVote(ctx context.Context, vote *models.PendingModerationVote) error {
	log.Printf("📋 Starting to open moderation vote for user: %s", vote.TargetUserID)

	if vote.VoteMessageID == "" {
		return fmt.Errorf("vote message ID cannot be empty")
	}
	if vote.TargetUserID == "" {
		return fmt.Errorf("target user ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.votesByTarget[vote.TargetUserID]; exists {
		return fmt.Errorf("open vote already exists for user: %s", vote.TargetUserID)
	}

	if vote.Approvers == nil {
		vote.Approvers = make(map[string]struct{})
	}
	if vote.Dismissers == nil {
		vote.Dismissers = make(map[string]struct{})
	}
	vote.State = models.ModerationVoteStateOpen

	s.votesByMsgID[vote.VoteMessageID] = vote
	s.votesByTarget[vote.TargetUserID] = vote.VoteMessageID

	log.Printf("📋 Completed successfully - opened vote %s for user: %s", vote.ID, vote.TargetUserID)
	return nil
}

func (s *ModerationServiceImpl) GetVoteByMessageID(
	ctx context.Context,
	voteMessageID string,
) (mo.Option[*models.PendingModerationVote], error) {
	if voteMessageID == "" {
		return mo.None[*models.PendingModerationVote](), fmt.Errorf("vote message ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vote, ok := s.votesByMsgID[voteMessageID]
	if !ok {
		return mo.None[*models.PendingModerationVote](), nil
	}
	return mo.Some(vote), nil
}

// CastVote records one voter's side, switching sides if they voted
// before, and transitions the vote when either tally reaches the
// threshold. The check and transition run under one lock so two racing
// final votes cannot both close the vote.
func (s *ModerationServiceImpl) CastVote(
	ctx context.Context,
	voteMessageID, voterID string,
	approve bool,
) (*services.ModerationVoteOutcome, error) {
	log.Printf("📋 Starting to cast vote on message %s by voter %s (approve: %t)", voteMessageID, voterID, approve)

	if voteMessageID == "" {
		return nil, fmt.Errorf("vote message ID cannot be empty")
	}
	if voterID == "" {
		return nil, fmt.Errorf("voter ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vote, ok := s.votesByMsgID[voteMessageID]
	if !ok {
		return nil, core.ErrNotFound
	}
	if vote.State != models.ModerationVoteStateOpen {
		return nil, fmt.Errorf("vote is no longer open: %s", vote.State)
	}

	if approve {
		delete(vote.Dismissers, voterID)
		vote.Approvers[voterID] = struct{}{}
	} else {
		delete(vote.Approvers, voterID)
		vote.Dismissers[voterID] = struct{}{}
	}

	outcome := &services.ModerationVoteOutcome{Vote: vote}
	switch {
	case vote.ApproveCount() >= VoteThreshold:
		vote.State = models.ModerationVoteStateBanned
		outcome.Transitioned = true
	case vote.DismissCount() >= VoteThreshold:
		vote.State = models.ModerationVoteStateDismissed
		outcome.Transitioned = true
	}

	if outcome.Transitioned {
		// Terminal votes leave the registry immediately
		delete(s.votesByMsgID, voteMessageID)
		delete(s.votesByTarget, vote.TargetUserID)
		log.Printf("📋 Completed successfully - vote %s reached terminal state: %s", vote.ID, vote.State)
	} else {
		log.Printf("📋 Completed successfully - vote %s tally now %d approve / %d dismiss",
			vote.ID, vote.ApproveCount(), vote.DismissCount())
	}

	return outcome, nil
}

func (s *ModerationServiceImpl) HasOpenVoteForUser(ctx context.Context, targetUserID string) (bool, error) {
	if targetUserID == "" {
		return false, fmt.Errorf("target user ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.votesByTarget[targetUserID]
	return ok, nil
}
