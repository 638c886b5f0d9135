package decision

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gridbot/clients/coingecko"
	"gridbot/clients/retriever"
	"gridbot/models"
	"gridbot/services/botstate"
	"gridbot/services/conversation"
)

type assemblerFixture struct {
	ctx                 context.Context
	conversationService *conversation.MockConversationService
	botStateService     *botstate.MockBotStateService
	retrieverClient     *retriever.MockRetrieverClient
	coingeckoClient     *coingecko.MockCoinGeckoClient
	assembler           *Assembler
}

func newAssemblerFixture(t *testing.T) *assemblerFixture {
	t.Helper()

	f := &assemblerFixture{
		ctx:                 context.Background(),
		conversationService: new(conversation.MockConversationService),
		botStateService:     new(botstate.MockBotStateService),
		retrieverClient:     new(retriever.MockRetrieverClient),
		coingeckoClient:     new(coingecko.MockCoinGeckoClient),
	}
	f.assembler = NewAssembler(
		f.conversationService,
		f.botStateService,
		f.retrieverClient,
		f.coingeckoClient,
		"GridBot",
		25,
		5,
	)
	return f
}

func sampleAssembleInput() AssembleInput {
	authorID := "user-1"
	return AssembleInput{
		ChannelID:    "channel-1",
		ChannelName:  "general",
		ChannelTopic: "grid talk",
		AuthorName:   "alice",
		AuthorID:     &authorID,
		MessageText:  "how does mining work?",
	}
}

func (f *assemblerFixture) expectRecord() {
	f.conversationService.On("RecordUserMessage",
		mock.Anything, "channel-1", "alice", mock.Anything, "how does mining work?").
		Return(&models.ChannelMessage{ID: "msg_1"}, nil)
}

func TestAssemble(t *testing.T) {
	t.Run("gathers every context source", func(t *testing.T) {
		fixture := newAssemblerFixture(t)
		fixture.expectRecord()
		history := []*models.ChannelMessage{{ID: "msg_0", AuthorName: "bob", Content: "yo"}}
		fixture.conversationService.On("GetRecentHistory", mock.Anything, "channel-1", 25, false).Return(history, nil)
		fixture.conversationService.On("FormatHistory", history).Return("Recent chat (last messages):\nbob: yo\n")
		fixture.botStateService.On("FormatMood", mock.Anything).Return("Current mood: chill (Default relaxed mood, intensity: 0.5)", nil)
		fixture.botStateService.On("FormatMemories", mock.Anything).Return("Memory Bank (important things to remember):\n- k: v (from s)", nil)
		fixture.botStateService.On("FormatHappenings", mock.Anything).Return("Recent happenings across the server:\nquiet week", nil)
		fixture.retrieverClient.On("RelevantContext", mock.Anything, "how does mining work?", 5).
			Return([]models.RetrievedSnippet{{Text: "mining overview", Score: 0.8, Source: "docs.md"}}, nil)

		req, err := fixture.assembler.Assemble(fixture.ctx, sampleAssembleInput())

		require.NoError(t, err)
		assert.Equal(t, "GridBot", req.PersonaName)
		assert.Equal(t, "general", req.ChannelName)
		assert.Equal(t, "grid talk", req.ChannelTopic)
		assert.Equal(t, "alice", req.MessageAuthor)
		assert.Equal(t, "how does mining work?", req.MessageText)
		assert.Contains(t, req.HistoryText, "bob: yo")
		assert.Contains(t, req.MoodText, "chill")
		assert.Contains(t, req.MemoryText, "k: v")
		assert.Contains(t, req.HappeningsText, "quiet week")
		require.Len(t, req.Snippets, 1)
		assert.Equal(t, "mining overview", req.Snippets[0].Text)
		assert.Empty(t, req.CryptoContext)
		assert.False(t, req.Timestamp.IsZero())
	})

	t.Run("record failure is fatal", func(t *testing.T) {
		fixture := newAssemblerFixture(t)
		fixture.conversationService.On("RecordUserMessage",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("db unavailable"))

		_, err := fixture.assembler.Assemble(fixture.ctx, sampleAssembleInput())

		assert.Error(t, err)
		fixture.botStateService.AssertNotCalled(t, "FormatMood", mock.Anything)
	})

	t.Run("every sub-fetch failure degrades to empty", func(t *testing.T) {
		fixture := newAssemblerFixture(t)
		fixture.expectRecord()
		fixture.conversationService.On("GetRecentHistory", mock.Anything, "channel-1", 25, false).
			Return(nil, errors.New("history down"))
		fixture.botStateService.On("FormatMood", mock.Anything).Return("", errors.New("mood down"))
		fixture.botStateService.On("FormatMemories", mock.Anything).Return("", errors.New("memory down"))
		fixture.botStateService.On("FormatHappenings", mock.Anything).Return("", errors.New("happenings down"))
		fixture.retrieverClient.On("RelevantContext", mock.Anything, mock.Anything, 5).
			Return(nil, errors.New("retriever down"))

		req, err := fixture.assembler.Assemble(fixture.ctx, sampleAssembleInput())

		require.NoError(t, err)
		assert.Empty(t, req.HistoryText)
		assert.Empty(t, req.MoodText)
		assert.Empty(t, req.MemoryText)
		assert.Empty(t, req.HappeningsText)
		assert.Empty(t, req.Snippets)
	})

	t.Run("nil retriever skips document retrieval", func(t *testing.T) {
		fixture := newAssemblerFixture(t)
		fixture.assembler = NewAssembler(
			fixture.conversationService,
			fixture.botStateService,
			nil,
			fixture.coingeckoClient,
			"GridBot",
			25,
			5,
		)
		fixture.expectRecord()
		fixture.conversationService.On("GetRecentHistory", mock.Anything, "channel-1", 25, false).
			Return([]*models.ChannelMessage{}, nil)
		fixture.conversationService.On("FormatHistory", mock.Anything).Return("")
		fixture.botStateService.On("FormatMood", mock.Anything).Return("", nil)
		fixture.botStateService.On("FormatMemories", mock.Anything).Return("", nil)
		fixture.botStateService.On("FormatHappenings", mock.Anything).Return("", nil)

		req, err := fixture.assembler.Assemble(fixture.ctx, sampleAssembleInput())

		require.NoError(t, err)
		assert.Empty(t, req.Snippets)
	})

	t.Run("price questions pull in crypto context", func(t *testing.T) {
		fixture := newAssemblerFixture(t)
		input := sampleAssembleInput()
		input.MessageText = "what's the price of btc?"
		fixture.conversationService.On("RecordUserMessage",
			mock.Anything, "channel-1", "alice", mock.Anything, input.MessageText).
			Return(&models.ChannelMessage{ID: "msg_1"}, nil)
		fixture.conversationService.On("GetRecentHistory", mock.Anything, "channel-1", 25, false).
			Return([]*models.ChannelMessage{}, nil)
		fixture.conversationService.On("FormatHistory", mock.Anything).Return("")
		fixture.botStateService.On("FormatMood", mock.Anything).Return("", nil)
		fixture.botStateService.On("FormatMemories", mock.Anything).Return("", nil)
		fixture.botStateService.On("FormatHappenings", mock.Anything).Return("", nil)
		fixture.retrieverClient.On("RelevantContext", mock.Anything, input.MessageText, 5).
			Return([]models.RetrievedSnippet{}, nil)
		fixture.coingeckoClient.On("GetPrice", mock.Anything, "bitcoin").
			Return(mo.Some("bitcoin: $67,312.13"), nil)

		req, err := fixture.assembler.Assemble(fixture.ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "bitcoin: $67,312.13", req.CryptoContext)
	})
}
