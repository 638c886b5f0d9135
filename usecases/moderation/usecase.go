package moderation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gridbot/clients"
	"gridbot/core"
	"gridbot/models"
	"gridbot/services"
	moderationservice "gridbot/services/moderation"
	"gridbot/usecases/decision"
)

const (
	approveEmoji = "✅"
	dismissEmoji = "❌"

	// classifyTimeout bounds the LLM scam classification so a slow
	// completion never stalls the event loop.
	classifyTimeout = 30 * time.Second
)

// ModerationUseCase detects scam-like messages, opens community ban
// votes, and enacts the outcome once a vote closes.
type ModerationUseCase struct {
	discordClient     clients.DiscordClient
	completionClient  clients.CompletionClient
	moderationService services.ModerationService
}

func NewModerationUseCase(
	discordClient clients.DiscordClient,
	completionClient clients.CompletionClient,
	moderationService services.ModerationService,
) *ModerationUseCase {
	return &ModerationUseCase{
		discordClient:     discordClient,
		completionClient:  completionClient,
		moderationService: moderationService,
	}
}

// ProcessMessageEvent checks one inbound message for scam signals and
// opens a ban vote when it matches.
func (u *ModerationUseCase) ProcessMessageEvent(ctx context.Context, event models.DiscordMessageEvent) error {
	botUser, err := u.discordClient.GetBotUser()
	if err != nil {
		log.Printf("❌ Failed to get bot user: %v", err)
		return err
	}
	if event.UserID == botUser.ID {
		return nil
	}

	reason, suspicious := u.detectScam(ctx, event)
	if !suspicious {
		return nil
	}
	log.Printf("⚠️ Scam signal from user %s in channel %s: %s", event.UserID, event.ChannelID, reason)

	alreadyOpen, err := u.moderationService.HasOpenVoteForUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to check for open vote: %w", err)
	}
	if alreadyOpen {
		log.Printf("🔍 Vote already open for user %s - not opening another", event.UserID)
		return nil
	}

	announcement := fmt.Sprintf(
		"⚠️ Possible scam from <@%s>: %s\nReact with %s to approve a ban or %s to dismiss. %d votes on either side decide.",
		event.UserID, reason, approveEmoji, dismissEmoji, moderationservice.VoteThreshold,
	)
	resp, err := u.discordClient.SendChannelMessage(ctx, event.ChannelID, announcement)
	if err != nil {
		return fmt.Errorf("failed to announce moderation vote: %w", err)
	}

	// Seed both reactions so voters only have to click
	for _, emoji := range []string{approveEmoji, dismissEmoji} {
		if err := u.discordClient.AddReaction(ctx, event.ChannelID, resp.MessageID, emoji); err != nil {
			log.Printf("⚠️ Failed to seed %s reaction on vote message: %v", emoji, err)
		}
	}

	vote := &models.PendingModerationVote{
		ID:              core.NewID("vote"),
		VoteMessageID:   resp.MessageID,
		ChannelID:       event.ChannelID,
		GuildID:         event.GuildID,
		TargetUserID:    event.UserID,
		TargetUserName:  event.UserName,
		Reason:          reason,
		OriginMessageID: event.MessageID,
		// The bot's own approve counts toward the threshold
		Approvers: map[string]struct{}{botUser.ID: {}},
		CreatedAt: time.Now().UTC(),
	}
	if err := u.moderationService.OpenVote(ctx, vote); err != nil {
		return fmt.Errorf("failed to open moderation vote: %w", err)
	}

	log.Printf("📋 Completed successfully - opened ban vote %s for user %s", vote.ID, event.UserID)
	return nil
}

// detectScam returns a human-readable reason when the message looks
// like a scam. Forbidden link categories match without an LLM call; any
// other message carrying a URL goes through the classifier.
func (u *ModerationUseCase) detectScam(ctx context.Context, event models.DiscordMessageEvent) (string, bool) {
	if link, ok := decision.DetectForbiddenLink(event.Content).Get(); ok {
		return fmt.Sprintf("matched forbidden link category %q (%s)", link.Category, link.Match), true
	}

	if !decision.ContainsURL(event.Content) {
		return "", false
	}

	classifyCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()
	raw, err := u.completionClient.Complete(classifyCtx, buildClassificationPrompt(event.UserName, event.Content))
	if err != nil {
		log.Printf("⚠️ Scam classification failed - treating message as clean: %v", err)
		return "", false
	}

	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(raw)), "YES") {
		return "link flagged as a likely scam by the classifier", true
	}
	return "", false
}

func buildClassificationPrompt(authorName, content string) string {
	var b strings.Builder
	b.WriteString("You are a Discord moderation classifier. Decide whether the following message is a scam, phishing attempt, or malicious link drop.\n\n")
	fmt.Fprintf(&b, "Message from %s: %q\n\n", authorName, content)
	b.WriteString("Answer with exactly YES or NO. Answer YES only when you are confident the message is malicious.")
	return b.String()
}

// ProcessReactionEvent tallies one approve/dismiss reaction and enacts
// the ban when the vote closes. Reactions on non-vote messages are
// ignored.
func (u *ModerationUseCase) ProcessReactionEvent(ctx context.Context, event models.DiscordReactionEvent) error {
	var approve bool
	switch event.EmojiName {
	case approveEmoji:
		approve = true
	case dismissEmoji:
		approve = false
	default:
		return nil
	}

	botUser, err := u.discordClient.GetBotUser()
	if err != nil {
		log.Printf("❌ Failed to get bot user: %v", err)
		return err
	}
	if event.UserID == botUser.ID {
		return nil
	}

	maybeVote, err := u.moderationService.GetVoteByMessageID(ctx, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to look up vote: %w", err)
	}
	vote, ok := maybeVote.Get()
	if !ok {
		return nil
	}

	if event.UserID == vote.TargetUserID {
		log.Printf("🔍 Target user %s tried to vote on their own ban - ignoring", event.UserID)
		return nil
	}

	outcome, err := u.moderationService.CastVote(ctx, event.MessageID, event.UserID, approve)
	if err != nil {
		if core.IsNotFoundError(err) {
			// The vote closed between lookup and cast
			return nil
		}
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	if !outcome.Transitioned {
		return nil
	}

	switch outcome.Vote.State {
	case models.ModerationVoteStateBanned:
		return u.enactBan(ctx, outcome.Vote)
	case models.ModerationVoteStateDismissed:
		text := fmt.Sprintf("%s Ban vote for <@%s> was dismissed.", dismissEmoji, outcome.Vote.TargetUserID)
		if _, err := u.discordClient.SendChannelMessage(ctx, outcome.Vote.ChannelID, text); err != nil {
			log.Printf("⚠️ Failed to announce dismissed vote: %v", err)
		}
	}
	return nil
}

// enactBan executes a passed vote. A ban failure is reported in the
// channel and the vote stays closed; there is no retry.
func (u *ModerationUseCase) enactBan(ctx context.Context, vote *models.PendingModerationVote) error {
	if err := u.discordClient.BanGuildMember(ctx, vote.GuildID, vote.TargetUserID, vote.Reason); err != nil {
		log.Printf("❌ Failed to ban user %s: %v", vote.TargetUserID, err)
		text := fmt.Sprintf("⚠️ The vote passed but I could not ban <@%s>: %v", vote.TargetUserID, err)
		if _, sendErr := u.discordClient.SendChannelMessage(ctx, vote.ChannelID, text); sendErr != nil {
			log.Printf("⚠️ Failed to announce ban failure: %v", sendErr)
		}
		return nil
	}

	text := fmt.Sprintf("🔨 Banned <@%s>: %s", vote.TargetUserID, vote.Reason)
	if _, err := u.discordClient.SendChannelMessage(ctx, vote.ChannelID, text); err != nil {
		log.Printf("⚠️ Failed to announce ban: %v", err)
	}
	log.Printf("📋 Completed successfully - banned user %s after vote %s", vote.TargetUserID, vote.ID)
	return nil
}
