package models

type ActionKind string

const (
	ActionKindSendText    ActionKind = "SEND_TEXT"
	ActionKindAddReaction ActionKind = "ADD_REACTION"
)

// Action is one concrete side effect produced by the action resolver.
type Action struct {
	Kind ActionKind
	// Text content for SEND_TEXT actions
	Text string
	// TargetMessageID is the platform message the reaction applies to
	TargetMessageID string
	Emoji           string
}

func NewSendTextAction(text string) Action {
	return Action{Kind: ActionKindSendText, Text: text}
}

func NewAddReactionAction(targetMessageID, emoji string) Action {
	return Action{Kind: ActionKindAddReaction, TargetMessageID: targetMessageID, Emoji: emoji}
}
