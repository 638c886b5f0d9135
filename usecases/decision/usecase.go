package decision

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"gridbot/clients"
	"gridbot/config"
	"gridbot/models"
	"gridbot/services"
	"gridbot/utils"
)

const (
	helpEmbedColor   = 0x2ECC71
	answerEmbedColor = 0x3498DB
)

// DecisionUseCase runs the response-decision pipeline for inbound
// channel messages: assemble context, ask the LLM for a decision, parse
// it, and execute the resolved actions.
type DecisionUseCase struct {
	discordClient       clients.DiscordClient
	completionClient    clients.CompletionClient
	conversationService services.ConversationService
	assembler           *Assembler

	discordCfg  config.DiscordConfig
	pipelineCfg config.PipelineConfig
}

func NewDecisionUseCase(
	discordClient clients.DiscordClient,
	completionClient clients.CompletionClient,
	conversationService services.ConversationService,
	assembler *Assembler,
	discordCfg config.DiscordConfig,
	pipelineCfg config.PipelineConfig,
) *DecisionUseCase {
	return &DecisionUseCase{
		discordClient:       discordClient,
		completionClient:    completionClient,
		conversationService: conversationService,
		assembler:           assembler,
		discordCfg:          discordCfg,
		pipelineCfg:         pipelineCfg,
	}
}

func (d *DecisionUseCase) ProcessMessageEvent(ctx context.Context, event models.DiscordMessageEvent) error {
	log.Printf("📋 Starting to process message event from user %s in channel %s", event.UserID, event.ChannelID)

	botUser, err := d.discordClient.GetBotUser()
	if err != nil {
		log.Printf("❌ Failed to get bot user: %v", err)
		return err
	}

	if event.UserID == botUser.ID {
		log.Printf("🔍 Ignoring own message %s", event.MessageID)
		return nil
	}
	if !d.discordCfg.ChannelAllowed(event.ChannelID) {
		log.Printf("🔍 Channel %s not in allow-list - ignoring message", event.ChannelID)
		return nil
	}

	if slices.Contains(event.Mentions, botUser.ID) {
		return d.handleMention(ctx, event)
	}

	if d.pipelineCfg.RequireMention {
		// History stays gapless even for messages the pipeline skips
		if _, err := d.conversationService.RecordUserMessage(
			ctx, event.ChannelID, event.UserName, &event.UserID, event.Content,
		); err != nil {
			log.Printf("❌ Failed to record skipped message: %v", err)
		}
		log.Printf("🔍 Mention required and bot not mentioned - recorded message without deciding")
		return nil
	}

	return d.runDecision(ctx, event, botUser.ID)
}

// runDecision is the automatic path: the LLM decides whether the bot
// speaks at all. Every failure past assembly is a logged no-op.
func (d *DecisionUseCase) runDecision(ctx context.Context, event models.DiscordMessageEvent, botUserID string) error {
	req, err := d.assembler.Assemble(ctx, AssembleInput{
		ChannelID:    event.ChannelID,
		ChannelName:  event.ChannelName,
		ChannelTopic: event.ChannelTopic,
		AuthorName:   event.UserName,
		AuthorID:     &event.UserID,
		MessageText:  event.Content,
	})
	if err != nil {
		log.Printf("❌ Failed to assemble decision context: %v", err)
		return err
	}

	prompt := BuildDecisionPrompt(req, d.pipelineCfg.Stance)

	completionCtx, cancel := context.WithTimeout(ctx, d.pipelineCfg.CompletionTimeout)
	defer cancel()
	raw, err := d.completionClient.Complete(completionCtx, prompt)
	if err != nil {
		log.Printf("⚠️ Completion failed - leaving message unanswered: %v", err)
		return nil
	}

	decision, err := ParseDecision(raw)
	if err != nil {
		log.Printf("⚠️ %v", err)
		return nil
	}
	if decision.IsNoop() {
		if decision.Respond {
			log.Printf("⚠️ Decision had respond=true but no message or react for message %s", event.MessageID)
		} else {
			log.Printf("🤐 Decided not to respond to message %s", event.MessageID)
		}
		return nil
	}

	// The reaction target search needs platform history only when a
	// reaction might point at an earlier message.
	var recentMessages []clients.DiscordMessage
	if decision.HasReact() && DetectBackReference(event.Content).IsPresent() {
		recentMessages, err = d.discordClient.FetchRecentMessages(ctx, event.ChannelID, ReactionScanLimit)
		if err != nil {
			log.Printf("⚠️ Failed to fetch recent messages for reaction targeting: %v", err)
			recentMessages = nil
		}
	}

	actions := ResolveActions(ResolveInput{
		Decision:         *decision,
		TriggerMessageID: event.MessageID,
		TriggerAuthorID:  event.UserID,
		TriggerText:      event.Content,
		RecentMessages:   recentMessages,
		BotUserID:        botUserID,
	})

	d.executeActions(ctx, event.ChannelID, actions)

	log.Printf("📋 Completed successfully - processed message event %s (%d actions)", event.MessageID, len(actions))
	return nil
}

// executeActions applies resolved side effects in order. A failed
// action is logged and the rest still run.
func (d *DecisionUseCase) executeActions(ctx context.Context, channelID string, actions []models.Action) {
	for _, action := range actions {
		switch action.Kind {
		case models.ActionKindSendText:
			if err := d.sendText(ctx, channelID, action.Text); err != nil {
				log.Printf("❌ Failed to send text action: %v", err)
			}
		case models.ActionKindAddReaction:
			if err := d.discordClient.AddReaction(ctx, channelID, action.TargetMessageID, action.Emoji); err != nil {
				log.Printf("❌ Failed to add reaction %s to message %s: %v", action.Emoji, action.TargetMessageID, err)
			}
		}
	}
}

func (d *DecisionUseCase) sendText(ctx context.Context, channelID, text string) error {
	// Cosmetic composing pause before the reply lands
	if err := d.discordClient.TriggerTyping(ctx, channelID); err != nil {
		log.Printf("⚠️ Failed to trigger typing indicator: %v", err)
	}
	select {
	case <-time.After(d.pipelineCfg.TypingDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if _, err := d.discordClient.SendChannelMessage(ctx, channelID, text); err != nil {
		return fmt.Errorf("failed to send channel message: %w", err)
	}

	if _, err := d.conversationService.RecordBotMessage(ctx, channelID, d.pipelineCfg.PersonaName, text); err != nil {
		log.Printf("❌ Failed to record bot message in history: %v", err)
	}
	return nil
}

// handleMention is the explicit path: the user addressed the bot, so it
// always answers, with an "Error:" reply on failure instead of silence.
func (d *DecisionUseCase) handleMention(ctx context.Context, event models.DiscordMessageEvent) error {
	log.Printf("🤖 Bot mentioned by user %s in channel %s", event.UserID, event.ChannelID)

	question := utils.StripMentions(event.Content)
	if question == "" {
		return d.sendHelpEmbed(ctx, event.ChannelID)
	}

	if err := d.discordClient.TriggerTyping(ctx, event.ChannelID); err != nil {
		log.Printf("⚠️ Failed to trigger typing indicator: %v", err)
	}

	req, err := d.assembler.Assemble(ctx, AssembleInput{
		ChannelID:    event.ChannelID,
		ChannelName:  event.ChannelName,
		ChannelTopic: event.ChannelTopic,
		AuthorName:   event.UserName,
		AuthorID:     &event.UserID,
		MessageText:  question,
	})
	if err != nil {
		log.Printf("❌ Failed to assemble answer context: %v", err)
		return d.sendErrorReply(ctx, event.ChannelID, err)
	}

	completionCtx, cancel := context.WithTimeout(ctx, d.pipelineCfg.CompletionTimeout)
	defer cancel()
	answer, err := d.completionClient.Complete(completionCtx, BuildAnswerPrompt(req))
	if err != nil {
		log.Printf("❌ Completion failed on mention path: %v", err)
		return d.sendErrorReply(ctx, event.ChannelID, err)
	}

	embed := &clients.DiscordEmbed{
		Title:       "Answer",
		Description: answer,
		Color:       answerEmbedColor,
		Fields: []clients.DiscordEmbedField{
			{Name: "Question", Value: question, Inline: false},
		},
	}
	if err := d.discordClient.SendChannelEmbed(ctx, event.ChannelID, embed); err != nil {
		log.Printf("❌ Failed to send answer embed: %v", err)
		return d.sendErrorReply(ctx, event.ChannelID, err)
	}

	if _, err := d.conversationService.RecordBotMessage(ctx, event.ChannelID, d.pipelineCfg.PersonaName, answer); err != nil {
		log.Printf("❌ Failed to record bot answer in history: %v", err)
	}

	log.Printf("📋 Completed successfully - answered mention from user %s", event.UserID)
	return nil
}

func (d *DecisionUseCase) sendHelpEmbed(ctx context.Context, channelID string) error {
	embed := &clients.DiscordEmbed{
		Title:       fmt.Sprintf("%s Help", d.pipelineCfg.PersonaName),
		Description: "I can answer questions about AI Power Grid using stored documentation.",
		Color:       helpEmbedColor,
		Fields: []clients.DiscordEmbedField{
			{
				Name:   "How to use",
				Value:  "Mention me with your question: `@BotName What is AI Power Grid?`",
				Inline: false,
			},
			{
				Name:   "Example",
				Value:  "@BotName What security features does AI Power Grid offer?",
				Inline: false,
			},
		},
	}
	if err := d.discordClient.SendChannelEmbed(ctx, channelID, embed); err != nil {
		return fmt.Errorf("failed to send help embed: %w", err)
	}
	return nil
}

func (d *DecisionUseCase) sendErrorReply(ctx context.Context, channelID string, cause error) error {
	if _, err := d.discordClient.SendChannelMessage(ctx, channelID, fmt.Sprintf("Error: %v", cause)); err != nil {
		return fmt.Errorf("failed to send error reply: %w", err)
	}
	return nil
}
