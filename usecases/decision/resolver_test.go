package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbot/clients"
	"gridbot/models"
)

func strPtr(s string) *string { return &s }

func TestResolveActions(t *testing.T) {
	t.Run("silent decision resolves to nothing", func(t *testing.T) {
		actions := ResolveActions(ResolveInput{
			Decision:         models.Decision{Respond: false},
			TriggerMessageID: "trigger",
		})

		assert.Empty(t, actions)
	})

	t.Run("positive decision without payload resolves to nothing", func(t *testing.T) {
		actions := ResolveActions(ResolveInput{
			Decision:         models.Decision{Respond: true},
			TriggerMessageID: "trigger",
		})

		assert.Empty(t, actions)
	})

	t.Run("message-only decision resolves to one send action", func(t *testing.T) {
		actions := ResolveActions(ResolveInput{
			Decision:         models.Decision{Respond: true, Message: strPtr("hello")},
			TriggerMessageID: "trigger",
		})

		require.Len(t, actions, 1)
		assert.Equal(t, models.ActionKindSendText, actions[0].Kind)
		assert.Equal(t, "hello", actions[0].Text)
	})

	t.Run("message and reaction resolve in order", func(t *testing.T) {
		actions := ResolveActions(ResolveInput{
			Decision:         models.Decision{Respond: true, Message: strPtr("nice"), React: strPtr("🎉")},
			TriggerMessageID: "trigger",
			TriggerText:      "we shipped it!",
		})

		require.Len(t, actions, 2)
		assert.Equal(t, models.ActionKindSendText, actions[0].Kind)
		assert.Equal(t, models.ActionKindAddReaction, actions[1].Kind)
		assert.Equal(t, "trigger", actions[1].TargetMessageID)
	})
}

func TestResolveReactionTarget(t *testing.T) {
	const (
		botID  = "bot"
		userU1 = "u1"
		userU2 = "u2"
	)

	// Newest-first platform history: the trigger on top, then the bot's
	// message, then alternating authors going back in time.
	history := []clients.DiscordMessage{
		{ID: "trigger", AuthorID: userU1, Content: "trigger"},
		{ID: "m-bot", AuthorID: botID, IsBot: true, Content: "bot reply"},
		{ID: "m4", AuthorID: userU2, Content: "fourth"},
		{ID: "m3", AuthorID: userU1, Content: "third"},
		{ID: "m2", AuthorID: userU2, Content: "second"},
		{ID: "m1", AuthorID: userU1, Content: "first"},
	}

	baseInput := func(triggerText string) ResolveInput {
		return ResolveInput{
			Decision:         models.Decision{Respond: true, React: strPtr("🔥")},
			TriggerMessageID: "trigger",
			TriggerAuthorID:  userU1,
			TriggerText:      triggerText,
			RecentMessages:   history,
			BotUserID:        botID,
		}
	}

	resolve := func(in ResolveInput) string {
		actions := ResolveActions(in)
		require.Len(t, actions, 1)
		return actions[0].TargetMessageID
	}

	t.Run("no back-reference targets the trigger", func(t *testing.T) {
		assert.Equal(t, "trigger", resolve(baseInput("just react to this")))
	})

	t.Run("my message targets the author's most recent other message", func(t *testing.T) {
		assert.Equal(t, "m3", resolve(baseInput("react to my message")))
	})

	t.Run("qualified my message reaches one further back", func(t *testing.T) {
		assert.Equal(t, "m1", resolve(baseInput("react to my message from a few messages ago")))
	})

	t.Run("generic messages ago offsets into the candidate list", func(t *testing.T) {
		// Candidates newest first excluding trigger and bot: m4 m3 m2 m1
		assert.Equal(t, "m2", resolve(baseInput("react to the one from 2 messages ago")))
	})

	t.Run("qualified generic reference reaches one further", func(t *testing.T) {
		assert.Equal(t, "m1", resolve(baseInput("react to the one from a few messages ago")))	})

	t.Run("falls back to the trigger when history is too short", func(t *testing.T) {
		in := baseInput("react to my message from a few messages ago")
		in.RecentMessages = []clients.DiscordMessage{
			{ID: "trigger", AuthorID: userU1, Content: "trigger"},
		}
		assert.Equal(t, "trigger", resolve(in))
	})

	t.Run("falls back to the trigger when history is missing", func(t *testing.T) {
		in := baseInput("react to that message")
		in.RecentMessages = nil
		assert.Equal(t, "trigger", resolve(in))
	})

	t.Run("own message search ignores other authors", func(t *testing.T) {
		in := baseInput("react to my message")
		in.TriggerAuthorID = userU2
		assert.Equal(t, "m4", resolve(in))
	})
}
