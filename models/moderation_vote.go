package models

import (
	"time"
)

type ModerationVoteState string

const (
	ModerationVoteStateOpen      ModerationVoteState = "OPEN"
	ModerationVoteStateBanned    ModerationVoteState = "BANNED"
	ModerationVoteStateDismissed ModerationVoteState = "DISMISSED"
)

// PendingModerationVote is a community tally gating a ban. It is keyed
// by the vote announcement message so reaction events can find it.
// Approvers and Dismissers are disjoint per-user sets, so repeated
// reactions from the same user are idempotent.
type PendingModerationVote struct {
	ID              string
	VoteMessageID   string
	ChannelID       string
	GuildID         string
	TargetUserID    string
	TargetUserName  string
	Reason          string
	OriginMessageID string
	Approvers       map[string]struct{}
	Dismissers      map[string]struct{}
	State           ModerationVoteState
	CreatedAt       time.Time
}

// ApproveCount returns the number of distinct approve voters
func (v *PendingModerationVote) ApproveCount() int {
	return len(v.Approvers)
}

// DismissCount returns the number of distinct dismiss voters
func (v *PendingModerationVote) DismissCount() int {
	return len(v.Dismissers)
}
