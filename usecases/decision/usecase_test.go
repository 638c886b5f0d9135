package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gridbot/clients"
	"gridbot/clients/coingecko"
	"gridbot/clients/discord"
	"gridbot/clients/grid"
	"gridbot/clients/retriever"
	"gridbot/config"
	"gridbot/models"
	"gridbot/services/botstate"
	"gridbot/services/conversation"
)

const (
	testBotUserID   = "200300400500"
	testChannelID   = "channel-1"
	testUserID      = "user-1"
	testPersonaName = "GridBot"
)

type decisionFixture struct {
	ctx                 context.Context
	discordClient       *discord.MockDiscordClient
	completionClient    *grid.MockCompletionClient
	conversationService *conversation.MockConversationService
	botStateService     *botstate.MockBotStateService
	retrieverClient     *retriever.MockRetrieverClient
	coingeckoClient     *coingecko.MockCoinGeckoClient
	useCase             *DecisionUseCase
}

func newDecisionFixture(t *testing.T, pipelineCfg config.PipelineConfig) *decisionFixture {
	t.Helper()

	f := &decisionFixture{
		ctx:                 context.Background(),
		discordClient:       new(discord.MockDiscordClient),
		completionClient:    new(grid.MockCompletionClient),
		conversationService: new(conversation.MockConversationService),
		botStateService:     new(botstate.MockBotStateService),
		retrieverClient:     new(retriever.MockRetrieverClient),
		coingeckoClient:     new(coingecko.MockCoinGeckoClient),
	}

	assembler := NewAssembler(
		f.conversationService,
		f.botStateService,
		f.retrieverClient,
		f.coingeckoClient,
		testPersonaName,
		25,
		5,
	)
	f.useCase = NewDecisionUseCase(
		f.discordClient,
		f.completionClient,
		f.conversationService,
		assembler,
		config.DiscordConfig{BotToken: "token"},
		pipelineCfg,
	)
	return f
}

func defaultPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		PersonaName:       testPersonaName,
		Stance:            StanceReserved,
		HistoryLimit:      25,
		TypingDelay:       0,
		CompletionTimeout: 5 * time.Second,
	}
}

func (f *decisionFixture) expectBotUser() {
	f.discordClient.On("GetBotUser").Return(&clients.DiscordBotUser{ID: testBotUserID, Username: testPersonaName}, nil)
}

// expectAssembly stubs out every context sub-fetch with benign values
func (f *decisionFixture) expectAssembly() {
	f.conversationService.On("RecordUserMessage", mock.Anything, testChannelID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.ChannelMessage{ID: "msg_recorded"}, nil)
	f.conversationService.On("GetRecentHistory", mock.Anything, testChannelID, 25, false).
		Return([]*models.ChannelMessage{}, nil)
	f.conversationService.On("FormatHistory", mock.Anything).Return("")
	f.botStateService.On("FormatMood", mock.Anything).Return("Current mood: chill (Default relaxed mood, intensity: 0.5)", nil)
	f.botStateService.On("FormatMemories", mock.Anything).Return("", nil)
	f.botStateService.On("FormatHappenings", mock.Anything).Return("", nil)
	f.retrieverClient.On("RelevantContext", mock.Anything, mock.Anything, 5).
		Return([]models.RetrievedSnippet{}, nil)
}

func userMessageEvent(content string) models.DiscordMessageEvent {
	return models.DiscordMessageEvent{
		GuildID:     "guild-1",
		ChannelID:   testChannelID,
		ChannelName: "general",
		MessageID:   "trigger-msg-1",
		UserID:      testUserID,
		UserName:    "alice",
		Content:     content,
	}
}

func TestProcessMessageEvent_Filtering(t *testing.T) {
	t.Run("ignores the bot's own messages", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()

		event := userMessageEvent("hello")
		event.UserID = testBotUserID

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, event)

		assert.NoError(t, err)
		fixture.conversationService.AssertNotCalled(t, "RecordUserMessage",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		fixture.completionClient.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("ignores messages outside the allowed channels", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.useCase.discordCfg.AllowedChannelIDs = []string{"some-other-channel"}
		fixture.expectBotUser()

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("hello"))

		assert.NoError(t, err)
		fixture.completionClient.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("records but does not decide when mention is required", func(t *testing.T) {
		cfg := defaultPipelineConfig()
		cfg.RequireMention = true
		fixture := newDecisionFixture(t, cfg)
		fixture.expectBotUser()
		fixture.conversationService.On("RecordUserMessage",
			mock.Anything, testChannelID, "alice", mock.Anything, "hello").
			Return(&models.ChannelMessage{ID: "msg_recorded"}, nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("hello"))

		assert.NoError(t, err)
		fixture.conversationService.AssertExpectations(t)
		fixture.completionClient.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("propagates bot user lookup failure", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.discordClient.On("GetBotUser").Return(nil, errors.New("gateway down"))

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("hello"))

		assert.Error(t, err)
	})
}

func TestProcessMessageEvent_DecisionPath(t *testing.T) {
	t.Run("silent decision produces no side effects", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return(`{"respond": false}`, nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("what a day"))

		assert.NoError(t, err)
		fixture.discordClient.AssertNotCalled(t, "SendChannelMessage", mock.Anything, mock.Anything, mock.Anything)
		fixture.discordClient.AssertNotCalled(t, "AddReaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("text decision sends the message and records it", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return(`{"respond": true, "message": "sure, here is the answer"}`, nil)
		fixture.discordClient.On("TriggerTyping", mock.Anything, testChannelID).Return(nil)
		fixture.discordClient.On("SendChannelMessage", mock.Anything, testChannelID, "sure, here is the answer").
			Return(&clients.DiscordPostMessageResponse{MessageID: "bot-msg-1"}, nil)
		fixture.conversationService.On("RecordBotMessage", mock.Anything, testChannelID, testPersonaName, "sure, here is the answer").
			Return(&models.ChannelMessage{ID: "msg_bot"}, nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("anyone know how this works?"))

		assert.NoError(t, err)
		fixture.discordClient.AssertExpectations(t)
		fixture.conversationService.AssertExpectations(t)
	})

	t.Run("reaction without back-reference targets the trigger message", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return(`{"respond": true, "react": "👍"}`, nil)
		fixture.discordClient.On("AddReaction", mock.Anything, testChannelID, "trigger-msg-1", "👍").Return(nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("great news everyone"))

		assert.NoError(t, err)
		fixture.discordClient.AssertExpectations(t)
		fixture.discordClient.AssertNotCalled(t, "FetchRecentMessages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("back-referenced reaction fetches history to find the target", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return(`{"respond": true, "react": "🔥"}`, nil)
		// Newest first, trigger included the way the platform returns it
		fixture.discordClient.On("FetchRecentMessages", mock.Anything, testChannelID, ReactionScanLimit).
			Return([]clients.DiscordMessage{
				{ID: "trigger-msg-1", AuthorID: testUserID, Content: "react to my message"},
				{ID: "older-1", AuthorID: "user-2", Content: "something else"},
				{ID: "older-2", AuthorID: testUserID, Content: "my earlier take"},
			}, nil)
		fixture.discordClient.On("AddReaction", mock.Anything, testChannelID, "older-2", "🔥").Return(nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("react to my message"))

		assert.NoError(t, err)
		fixture.discordClient.AssertExpectations(t)
	})

	t.Run("unparseable completion is a logged no-op", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return("I think I'll just answer in prose", nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("hello there"))

		assert.NoError(t, err)
		fixture.discordClient.AssertNotCalled(t, "SendChannelMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completion failure leaves the message unanswered", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return("", errors.New("generation timed out"))

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("hello there"))

		assert.NoError(t, err)
		fixture.discordClient.AssertNotCalled(t, "SendChannelMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("assembly failure is fatal", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.conversationService.On("RecordUserMessage",
			mock.Anything, testChannelID, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("db unavailable"))

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, userMessageEvent("hello there"))

		assert.Error(t, err)
		fixture.completionClient.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})
}

func TestProcessMessageEvent_MentionPath(t *testing.T) {
	mentionEvent := func(content string) models.DiscordMessageEvent {
		event := userMessageEvent(content)
		event.Mentions = []string{testBotUserID}
		return event
	}

	t.Run("empty question sends the help embed", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.discordClient.On("SendChannelEmbed", mock.Anything, testChannelID,
			mock.MatchedBy(func(embed *clients.DiscordEmbed) bool {
				return embed.Title == "GridBot Help"
			})).Return(nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, mentionEvent("<@200300400500>"))

		assert.NoError(t, err)
		fixture.discordClient.AssertExpectations(t)
		fixture.completionClient.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("question gets an answer embed", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.discordClient.On("TriggerTyping", mock.Anything, testChannelID).Return(nil)
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return("AI Power Grid is a decentralized compute network.", nil)
		fixture.discordClient.On("SendChannelEmbed", mock.Anything, testChannelID,
			mock.MatchedBy(func(embed *clients.DiscordEmbed) bool {
				return embed.Title == "Answer" &&
					embed.Description == "AI Power Grid is a decentralized compute network." &&
					len(embed.Fields) == 1 &&
					embed.Fields[0].Value == "what is AI Power Grid?"
			})).Return(nil)
		fixture.conversationService.On("RecordBotMessage",
			mock.Anything, testChannelID, testPersonaName, mock.Anything).
			Return(&models.ChannelMessage{ID: "msg_bot"}, nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, mentionEvent("<@200300400500> what is AI Power Grid?"))

		assert.NoError(t, err)
		fixture.discordClient.AssertExpectations(t)
	})

	t.Run("completion failure replies with an error message", func(t *testing.T) {
		fixture := newDecisionFixture(t, defaultPipelineConfig())
		fixture.expectBotUser()
		fixture.expectAssembly()
		fixture.discordClient.On("TriggerTyping", mock.Anything, testChannelID).Return(nil)
		fixture.completionClient.On("Complete", mock.Anything, mock.Anything).
			Return("", errors.New("generation failed"))
		fixture.discordClient.On("SendChannelMessage", mock.Anything, testChannelID,
			mock.MatchedBy(func(text string) bool {
				return len(text) > 7 && text[:7] == "Error: "
			})).Return(&clients.DiscordPostMessageResponse{MessageID: "err-msg"}, nil)

		err := fixture.useCase.ProcessMessageEvent(fixture.ctx, mentionEvent("<@200300400500> what is AI Power Grid?"))

		assert.NoError(t, err)
		fixture.discordClient.AssertExpectations(t)
	})
}
