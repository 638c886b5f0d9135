package decision

import (
	"context"
	"log"
	"strings"

	"gridbot/clients"
	"gridbot/clients/coingecko"
)

// knownCoinOrder fixes the scan order over the alias map so the
// rendered price lines are deterministic.
var knownCoinOrder = []string{"bitcoin", "btc", "ethereum", "eth", "aipg", "ai power grid"}

// BuildCryptoContext returns price lines for coins named in an explicit
// price question, or an empty string when the message is not one. Every
// lookup failure degrades to an empty contribution.
func BuildCryptoContext(ctx context.Context, client clients.CoinGeckoClient, messageText string) string {
	question, ok := DetectPriceQuestion(messageText).Get()
	if !ok {
		return ""
	}

	var coinIDs []string
	seen := make(map[string]bool)
	for _, keyword := range knownCoinOrder {
		coinID := coingecko.KnownCoins[keyword]
		if strings.Contains(question.NormalizedText, keyword) && !seen[coinID] {
			seen[coinID] = true
			coinIDs = append(coinIDs, coinID)
		}
	}

	// No known ticker in the text: try a free-text coin search
	if len(coinIDs) == 0 {
		if name, ok := ExtractCoinName(question.NormalizedText).Get(); ok {
			maybeID, err := client.SearchCoin(ctx, name)
			if err != nil {
				log.Printf("⚠️ Coin search failed for %q: %v", name, err)
			} else if id, ok := maybeID.Get(); ok {
				coinIDs = append(coinIDs, id)
			}
		}
	}

	var lines []string
	for _, coinID := range coinIDs {
		maybePrice, err := client.GetPrice(ctx, coinID)
		if err != nil {
			log.Printf("⚠️ Price lookup failed for %s: %v", coinID, err)
			continue
		}
		if price, ok := maybePrice.Get(); ok {
			lines = append(lines, price)
		}
	}

	return strings.Join(lines, "\n")
}
