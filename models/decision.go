package models

import (
	"time"
)

// RetrievedSnippet is one ranked document fragment returned by the
// external retrieval service.
type RetrievedSnippet struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// DecisionRequest is the ephemeral payload handed to the prompt builder.
// It is constructed fresh per inbound message and never persisted.
type DecisionRequest struct {
	PersonaName    string
	Timestamp      time.Time
	ChannelName    string
	ChannelTopic   string
	HistoryText    string
	MoodText       string
	MemoryText     string
	HappeningsText string
	Snippets       []RetrievedSnippet
	CryptoContext  string
	MessageAuthor  string
	MessageText    string
}

// Decision is the structured outcome parsed from an LLM completion.
// When Respond is true at least one of Message/React should be set;
// a decision violating that is resolved as a no-op, not an error.
type Decision struct {
	Respond bool    `json:"respond"`
	Message *string `json:"message,omitempty"`
	React   *string `json:"react,omitempty"`
}

// HasMessage returns true if the decision carries response text
func (d Decision) HasMessage() bool {
	return d.Message != nil && *d.Message != ""
}

// HasReact returns true if the decision carries a reaction emoji
func (d Decision) HasReact() bool {
	return d.React != nil && *d.React != ""
}

// IsNoop returns true if resolving this decision produces no actions
func (d Decision) IsNoop() bool {
	return !d.Respond || (!d.HasMessage() && !d.HasReact())
}
