package decision

import (
	"log"

	"gridbot/clients"
	"gridbot/models"
)

// Back-reference offsets are pattern-matched from English phrasing, not
// load-bearing invariants, so they stay as named constants.
const (
	// ReactionScanLimit is how many recent platform messages the target
	// search walks backward through.
	ReactionScanLimit = 20

	// genericBackOffset is how far back "messages ago" points without a
	// qualifier; the qualified variant reaches one further.
	genericBackOffset          = 2
	genericBackOffsetQualified = 3
)

// ResolveInput carries the triggering message and the platform history
// the reaction target search runs over.
type ResolveInput struct {
	Decision models.Decision

	TriggerMessageID string
	TriggerAuthorID  string
	TriggerText      string

	// RecentMessages is newest-first platform history for the channel,
	// as returned by the chat API. May be nil when no reaction is needed.
	RecentMessages []clients.DiscordMessage

	// BotUserID excludes the bot's own messages from the target search
	BotUserID string
}

// ResolveActions turns a parsed decision into concrete side effects. A
// respond:true decision with neither message nor react resolves to no
// actions and is logged as an anomaly.
func ResolveActions(in ResolveInput) []models.Action {
	if !in.Decision.Respond {
		return nil
	}
	if !in.Decision.HasMessage() && !in.Decision.HasReact() {
		log.Printf("⚠️ Decision had respond=true but neither message nor react - treating as no-op")
		return nil
	}

	var actions []models.Action
	if in.Decision.HasMessage() {
		actions = append(actions, models.NewSendTextAction(*in.Decision.Message))
	}
	if in.Decision.HasReact() {
		target := resolveReactionTarget(in)
		actions = append(actions, models.NewAddReactionAction(target, *in.Decision.React))
	}
	return actions
}

// resolveReactionTarget picks the message a reaction applies to. The
// default is the triggering message; back-reference phrasing redirects
// it at an earlier one.
func resolveReactionTarget(in ResolveInput) string {
	ref, ok := DetectBackReference(in.TriggerText).Get()
	if !ok {
		return in.TriggerMessageID
	}

	// Newest-first candidates, excluding the bot's own messages and the
	// trigger itself.
	var candidates []clients.DiscordMessage
	for _, msg := range in.RecentMessages {
		if len(candidates) == ReactionScanLimit {
			break
		}
		if msg.ID == in.TriggerMessageID || msg.IsBot || msg.AuthorID == in.BotUserID {
			continue
		}
		candidates = append(candidates, msg)
	}

	if ref.OwnMessage {
		var own []clients.DiscordMessage
		for _, msg := range candidates {
			if msg.AuthorID == in.TriggerAuthorID {
				own = append(own, msg)
			}
		}
		idx := 0
		if ref.Qualified {
			// "my message from a few messages ago" skips the most
			// recent own message and takes the next one back
			idx = 1
		}
		if idx < len(own) {
			return own[idx].ID
		}
		return in.TriggerMessageID
	}

	offset := genericBackOffset
	if ref.Qualified {
		offset = genericBackOffsetQualified
	}
	if offset < len(candidates) {
		return candidates[offset].ID
	}
	return in.TriggerMessageID
}
