package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"gridbot/clients"
)

// DiscordClient implements the clients.DiscordClient interface on top of
// an established discordgo session.
type DiscordClient struct {
	session *discordgo.Session
}

func NewDiscordClient(session *discordgo.Session) *DiscordClient {
	return &DiscordClient{session: session}
}

func (c *DiscordClient) GetBotUser() (*clients.DiscordBotUser, error) {
	user, err := c.session.User("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return &clients.DiscordBotUser{
		ID:       user.ID,
		Username: user.Username,
	}, nil
}

func (c *DiscordClient) SendChannelMessage(
	ctx context.Context,
	channelID, content string,
) (*clients.DiscordPostMessageResponse, error) {
	msg, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return &clients.DiscordPostMessageResponse{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
	}, nil
}

func (c *DiscordClient) SendChannelEmbed(ctx context.Context, channelID string, embed *clients.DiscordEmbed) error {
	fields := make([]*discordgo.MessageEmbedField, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	_, err := c.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
		Fields:      fields,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send embed to channel %s: %w", channelID, err)
	}
	return nil
}

func (c *DiscordClient) FetchRecentMessages(
	ctx context.Context,
	channelID string,
	limit int,
) ([]clients.DiscordMessage, error) {
	msgs, err := c.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages from channel %s: %w", channelID, err)
	}

	// discordgo returns newest first, which is the order callers expect here.
	out := make([]clients.DiscordMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, convertMessage(m))
	}
	return out, nil
}

func (c *DiscordClient) FetchMessageByID(
	ctx context.Context,
	channelID, messageID string,
) (*clients.DiscordMessage, error) {
	msg, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}
	converted := convertMessage(msg)
	return &converted, nil
}

func (c *DiscordClient) TriggerTyping(ctx context.Context, channelID string) error {
	if err := c.session.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to trigger typing in channel %s: %w", channelID, err)
	}
	return nil
}

func (c *DiscordClient) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	if err := c.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction to message %s: %w", messageID, err)
	}
	return nil
}

func (c *DiscordClient) BanGuildMember(ctx context.Context, guildID, userID, reason string) error {
	log.Printf("⚠️ Banning user %s from guild %s (reason: %s)", userID, guildID, reason)
	if err := c.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to ban user %s from guild %s: %w", userID, guildID, err)
	}
	return nil
}

func convertMessage(m *discordgo.Message) clients.DiscordMessage {
	msg := clients.DiscordMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.IsBot = m.Author.Bot
	}
	return msg
}
