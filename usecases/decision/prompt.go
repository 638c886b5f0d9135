package decision

import (
	"fmt"
	"strings"
	"time"

	"gridbot/models"
)

// Stance selects the decision prompt's default lean when the model is
// unsure whether to speak.
const (
	StanceResponsive = "responsive"
	StanceReserved   = "reserved"
)

const stanceResponsiveText = "When in doubt, lean toward responding: if you can add useful information, do so."

const stanceReservedText = "When in doubt, stay silent: only respond when you are confident your contribution is wanted and useful."

// BuildDecisionPrompt renders the assembled context into a single
// instructional prompt. Pure string formatting: identical inputs always
// produce an identical prompt.
func BuildDecisionPrompt(req *models.DecisionRequest, stance string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a regular member of a Discord channel who knows a lot about AI Power Grid.\n", req.PersonaName)
	fmt.Fprintf(&b, "Current time: %s\n", req.Timestamp.UTC().Format(time.RFC3339))
	if req.ChannelName != "" {
		fmt.Fprintf(&b, "Channel: #%s\n", req.ChannelName)
	}
	if req.ChannelTopic != "" {
		fmt.Fprintf(&b, "Channel topic: %s\n", req.ChannelTopic)
	}
	b.WriteString("\n")

	for _, section := range []string{req.MoodText, req.MemoryText, req.HappeningsText} {
		if section != "" {
			b.WriteString(section)
			b.WriteString("\n\n")
		}
	}

	if req.HistoryText != "" {
		b.WriteString(req.HistoryText)
		b.WriteString("\n")
	}

	if len(req.Snippets) > 0 {
		b.WriteString("Context from AI Power Grid documentation:\n")
		for i, snippet := range req.Snippets {
			fmt.Fprintf(&b, "[%d] (score %.2f, source %s) %s\n", i+1, snippet.Score, snippet.Source, snippet.Text)
		}
		b.WriteString("\n")
	}

	if req.CryptoContext != "" {
		b.WriteString("Current crypto prices:\n")
		b.WriteString(req.CryptoContext)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Current message from %s: %q\n\n", req.MessageAuthor, req.MessageText)

	b.WriteString("Decide whether to respond. ")
	if stance == StanceResponsive {
		b.WriteString(stanceResponsiveText)
	} else {
		b.WriteString(stanceReservedText)
	}
	b.WriteString("\n\n")

	b.WriteString(`Reply with ONLY a JSON object in one of these two shapes:
{"respond": false}
{"respond": true, "message": "your reply text", "react": "emoji"}

"message" and "react" are both optional when respond is true, but at least one must be present. Do not wrap the JSON in code fences. Do not add any text outside the JSON. Never mention that you are an AI or a bot.`)

	return b.String()
}

// BuildAnswerPrompt renders the direct-answer prompt used on the
// explicit mention path, where the bot always replies.
func BuildAnswerPrompt(req *models.DecisionRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a helpful assistant in a Discord channel. Respond naturally as if you're a regular user, not a bot.\n\n", req.PersonaName)

	if req.HistoryText != "" {
		b.WriteString(req.HistoryText)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Current message from %s: %q\n\n", req.MessageAuthor, req.MessageText)

	if len(req.Snippets) > 0 {
		b.WriteString("Context from AI Power Grid documentation:\n")
		for _, snippet := range req.Snippets {
			b.WriteString(snippet.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if req.CryptoContext != "" {
		b.WriteString("Current crypto prices:\n")
		b.WriteString(req.CryptoContext)
		b.WriteString("\n\n")
	}

	b.WriteString("Respond naturally and conversationally. Don't mention that you're an AI or bot. Just answer the question or provide helpful information as if you're a knowledgeable person in the chat.")

	return b.String()
}
