package decision

import (
	"context"
	"log"
	"time"

	"gridbot/clients"
	"gridbot/models"
	"gridbot/services"
)

// Assembler gathers everything the decision model needs for one inbound
// message. No sub-fetch failure is fatal: each one degrades to an empty
// contribution and is logged.
type Assembler struct {
	conversationService services.ConversationService
	botStateService     services.BotStateService
	retrieverClient     clients.RetrieverClient
	coingeckoClient     clients.CoinGeckoClient

	personaName   string
	historyLimit  int
	retrieverTopK int
}

func NewAssembler(
	conversationService services.ConversationService,
	botStateService services.BotStateService,
	retrieverClient clients.RetrieverClient,
	coingeckoClient clients.CoinGeckoClient,
	personaName string,
	historyLimit int,
	retrieverTopK int,
) *Assembler {
	return &Assembler{
		conversationService: conversationService,
		botStateService:     botStateService,
		retrieverClient:     retrieverClient,
		coingeckoClient:     coingeckoClient,
		personaName:         personaName,
		historyLimit:        historyLimit,
		retrieverTopK:       retrieverTopK,
	}
}

// AssembleInput identifies the inbound message being decided on
type AssembleInput struct {
	ChannelID    string
	ChannelName  string
	ChannelTopic string
	AuthorName   string
	AuthorID     *string
	MessageText  string
}

// Assemble records the inbound message and builds the decision request.
// The append happens regardless of whether a response is ultimately
// generated, so history is never gappy.
func (a *Assembler) Assemble(ctx context.Context, in AssembleInput) (*models.DecisionRequest, error) {
	if _, err := a.conversationService.RecordUserMessage(
		ctx, in.ChannelID, in.AuthorName, in.AuthorID, in.MessageText,
	); err != nil {
		// History durability is the one thing this pipeline depends on
		return nil, err
	}

	req := &models.DecisionRequest{
		PersonaName:   a.personaName,
		Timestamp:     time.Now().UTC(),
		ChannelName:   in.ChannelName,
		ChannelTopic:  in.ChannelTopic,
		MessageAuthor: in.AuthorName,
		MessageText:   in.MessageText,
	}

	if history, err := a.conversationService.GetRecentHistory(ctx, in.ChannelID, a.historyLimit, false); err != nil {
		log.Printf("⚠️ History fetch failed for channel %s: %v", in.ChannelID, err)
	} else {
		req.HistoryText = a.conversationService.FormatHistory(history)
	}

	if moodText, err := a.botStateService.FormatMood(ctx); err != nil {
		log.Printf("⚠️ Mood fetch failed: %v", err)
	} else {
		req.MoodText = moodText
	}

	if memoryText, err := a.botStateService.FormatMemories(ctx); err != nil {
		log.Printf("⚠️ Memory fetch failed: %v", err)
	} else {
		req.MemoryText = memoryText
	}

	if happeningsText, err := a.botStateService.FormatHappenings(ctx); err != nil {
		log.Printf("⚠️ Happenings fetch failed: %v", err)
	} else {
		req.HappeningsText = happeningsText
	}

	if a.retrieverClient != nil {
		if snippets, err := a.retrieverClient.RelevantContext(ctx, in.MessageText, a.retrieverTopK); err != nil {
			log.Printf("⚠️ Document retrieval failed: %v", err)
		} else {
			req.Snippets = snippets
		}
	}

	req.CryptoContext = BuildCryptoContext(ctx, a.coingeckoClient, in.MessageText)

	return req, nil
}
