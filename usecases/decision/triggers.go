package decision

import (
	"regexp"
	"strings"

	"github.com/samber/mo"
)

// Price questions gate an external API call, so the patterns are
// deliberately strict to avoid paying for a lookup on casual chatter.
var strictPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`what'?s?\s+the\s+price`),
	regexp.MustCompile(`what\s+is\s+the\s+price`),
	regexp.MustCompile(`how\s+much\s+is`),
	regexp.MustCompile(`current\s+price`),
	regexp.MustCompile(`price\s+of`),
	regexp.MustCompile(`show\s+me\s+(the\s+)?price`),
	regexp.MustCompile(`give\s+me\s+(the\s+)?price`),
	regexp.MustCompile(`tell\s+me\s+(the\s+)?price`),
	regexp.MustCompile(`what'?s?\s+it\s+worth`),
	regexp.MustCompile(`what\s+is\s+it\s+worth`),
}

// Coin ticker directly adjacent to "price" also qualifies.
var directPriceStrings = []string{
	"aipg price", "ai power grid price",
	"btc price", "bitcoin price",
	"eth price", "ethereum price",
}

// coinNamePatterns extract a candidate coin name from a price question
// when no known ticker appears in the text.
var coinNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`price\s+of\s+([a-z\s]+?)(?:\s|$)`),
	regexp.MustCompile(`how\s+much\s+is\s+([a-z\s]+?)(?:\s|$)`),
	regexp.MustCompile(`what'?s?\s+the\s+price\s+of\s+([a-z\s]+?)(?:\s|$)`),
	regexp.MustCompile(`([a-z\s]+?)\s+price(?:\s|$)`),
}

var coinFillerWords = regexp.MustCompile(`\b(coin|token|crypto|currency)\b`)

// PriceQuestion is a matched price-lookup trigger
type PriceQuestion struct {
	// NormalizedText is the lowercased message the match was found in
	NormalizedText string
}

// DetectPriceQuestion returns a match only for explicitly phrased price
// questions.
func DetectPriceQuestion(text string) mo.Option[PriceQuestion] {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, pattern := range strictPricePatterns {
		if pattern.MatchString(lower) {
			return mo.Some(PriceQuestion{NormalizedText: lower})
		}
	}
	for _, direct := range directPriceStrings {
		if strings.Contains(lower, direct) {
			return mo.Some(PriceQuestion{NormalizedText: lower})
		}
	}
	return mo.None[PriceQuestion]()
}

// ExtractCoinName pulls a candidate coin name out of a price question,
// for the search fallback when no known ticker matched.
func ExtractCoinName(normalizedText string) mo.Option[string] {
	for _, pattern := range coinNamePatterns {
		match := pattern.FindStringSubmatch(normalizedText)
		if match == nil {
			continue
		}
		candidate := strings.TrimSpace(coinFillerWords.ReplaceAllString(match[1], ""))
		if len(candidate) > 1 {
			return mo.Some(candidate)
		}
	}
	return mo.None[string]()
}

var urlRegex = regexp.MustCompile(`https?://\S+`)

// ContainsURL reports whether the text carries any http(s) link
func ContainsURL(text string) bool {
	return urlRegex.MatchString(text)
}

// forbiddenLinkPatterns map scam phrasings and domains to a category
// label. Listed most-specific first so the reported category is stable.
var forbiddenLinkPatterns = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{"nitro-scam", regexp.MustCompile(`discord(?:app)?\.(?:gift|click|ru)/\S+`)},
	{"nitro-scam", regexp.MustCompile(`(?:free|gift(?:ed)?)\s+(?:discord\s+)?nitro`)},
	{"steam-phishing", regexp.MustCompile(`steamcommun\w*\.(?:ru|cn|top|xyz)`)},
	{"crypto-giveaway", regexp.MustCompile(`(?:double|2x)\s+your\s+(?:crypto|btc|eth|coins?)`)},
	{"crypto-giveaway", regexp.MustCompile(`(?:free|claim)\s+(?:btc|eth|crypto|airdrop)`)},
}

// ForbiddenLink is a matched scam pattern
type ForbiddenLink struct {
	// Category is the forbidden-list label the message matched
	Category string
	// Match is the exact text fragment that triggered the category
	Match string
}

// DetectForbiddenLink matches the message against the forbidden link
// category list. A match opens a moderation vote without consulting the
// LLM classifier.
func DetectForbiddenLink(text string) mo.Option[ForbiddenLink] {
	lower := strings.ToLower(text)

	for _, entry := range forbiddenLinkPatterns {
		if match := entry.pattern.FindString(lower); match != "" {
			return mo.Some(ForbiddenLink{Category: entry.category, Match: match})
		}
	}
	return mo.None[ForbiddenLink]()
}

var (
	ownMessageRegex   = regexp.MustCompile(`\bmy\s+message\b`)
	messagesAgoRegex  = regexp.MustCompile(`\bmessages?\s+ago\b`)
	thatMessageRegex  = regexp.MustCompile(`\bthat\s+message\b`)
	fewQualifierRegex = regexp.MustCompile(`\b(a\s+)?(few|several)\b`)
)

// BackReference is a matched reference to an earlier message
type BackReference struct {
	// OwnMessage means the author referred to their own earlier message
	OwnMessage bool
	// Qualified means a "few"/"several" qualifier widens the lookback
	Qualified bool
}

// DetectBackReference matches phrasings that point a reaction at an
// earlier message instead of the triggering one.
func DetectBackReference(text string) mo.Option[BackReference] {
	lower := strings.ToLower(text)

	ref := BackReference{
		OwnMessage: ownMessageRegex.MatchString(lower),
		Qualified:  fewQualifierRegex.MatchString(lower),
	}
	if ref.OwnMessage || messagesAgoRegex.MatchString(lower) || thatMessageRegex.MatchString(lower) {
		return mo.Some(ref)
	}
	return mo.None[BackReference]()
}
