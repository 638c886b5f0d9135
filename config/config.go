package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DiscordConfig struct {
	BotToken string
	// AllowedChannelIDs restricts the bot to specific channels; empty means all
	AllowedChannelIDs []string
}

// IsConfigured returns true if all required Discord configuration is present
func (c DiscordConfig) IsConfigured() bool {
	return c.BotToken != ""
}

// ChannelAllowed reports whether the bot may operate in the given channel
func (c DiscordConfig) ChannelAllowed(channelID string) bool {
	if len(c.AllowedChannelIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

type GridConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// IsConfigured returns true if all required Grid configuration is present
func (c GridConfig) IsConfigured() bool {
	return c.APIKey != ""
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// IsConfigured returns true if all required Anthropic configuration is present
func (c AnthropicConfig) IsConfigured() bool {
	return c.APIKey != ""
}

type RetrieverConfig struct {
	BaseURL string
	TopK    int
}

// IsConfigured returns true if all required retriever configuration is present
func (c RetrieverConfig) IsConfigured() bool {
	return c.BaseURL != ""
}

type CoinGeckoConfig struct {
	// APIKey is optional; the public API works without one at lower rate limits
	APIKey string
}

type PipelineConfig struct {
	// PersonaName is the display identity used in prompts and history records
	PersonaName string
	// Stance selects the decision prompt's default: "responsive" leans toward
	// answering, "reserved" leans toward silence
	Stance string
	// HistoryLimit is how many recent messages feed the decision prompt
	HistoryLimit int
	// TypingDelay is the simulated composing pause before sending text
	TypingDelay time.Duration
	// CompletionTimeout bounds the total LLM wait including polling
	CompletionTimeout time.Duration
	// RequireMention gates the decision pipeline on an explicit bot mention
	RequireMention bool
	// PruneAfter is the message retention window
	PruneAfter time.Duration
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	AdminAPIToken      string
	AlertWebhookURL    string
	LLMProvider        string // "grid" (default) or "anthropic"
	UseStrictConfig    bool   // If true, error when any integration is not fully configured

	DiscordConfig   DiscordConfig
	GridConfig      GridConfig
	AnthropicConfig AnthropicConfig
	RetrieverConfig RetrieverConfig
	CoinGeckoConfig CoinGeckoConfig
	PipelineConfig  PipelineConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		AdminAPIToken:      os.Getenv("ADMIN_API_TOKEN"),
		AlertWebhookURL:    os.Getenv("ALERT_WEBHOOK_URL"),
		LLMProvider:        getEnvWithDefault("LLM_PROVIDER", "grid"),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "false") == "true",

		DiscordConfig: DiscordConfig{
			BotToken:          os.Getenv("DISCORD_BOT_TOKEN"),
			AllowedChannelIDs: splitCommaList(os.Getenv("DISCORD_CHANNELS")),
		},

		GridConfig: GridConfig{
			APIKey:  os.Getenv("GRID_API_KEY"),
			Model:   getEnvWithDefault("GRID_MODEL", "grid/meta-llama/llama-4-maverick-17b-128e-instruct"),
			BaseURL: getEnvWithDefault("GRID_BASE_URL", "https://api.aipowergrid.io"),
		},

		AnthropicConfig: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getEnvWithDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		},

		RetrieverConfig: RetrieverConfig{
			BaseURL: os.Getenv("RETRIEVER_URL"),
			TopK:    getEnvInt("RETRIEVER_TOP_K", 5),
		},

		CoinGeckoConfig: CoinGeckoConfig{
			APIKey: os.Getenv("COINGECKO_API_KEY"),
		},

		PipelineConfig: PipelineConfig{
			PersonaName:       getEnvWithDefault("BOT_NAME", "GridBot"),
			Stance:            getEnvWithDefault("PROMPT_STANCE", "reserved"),
			HistoryLimit:      getEnvInt("HISTORY_LIMIT", 25),
			TypingDelay:       time.Duration(getEnvInt("TYPING_DELAY_MS", 2000)) * time.Millisecond,
			CompletionTimeout: time.Duration(getEnvInt("COMPLETION_TIMEOUT_SECONDS", 120)) * time.Second,
			RequireMention:    getEnvWithDefault("REQUIRE_MENTION", "false") == "true",
			PruneAfter:        time.Duration(getEnvInt("PRUNE_DAYS", 30)) * 24 * time.Hour,
		},
	}

	// Log which integrations are configured
	if config.DiscordConfig.IsConfigured() {
		log.Printf("✅ Discord integration configured")
	} else {
		log.Printf("⚠️ Discord integration not configured - bot will not connect")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("discord integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.GridConfig.IsConfigured() {
		log.Printf("✅ Grid LLM configured with model %s", config.GridConfig.Model)
	} else {
		log.Printf("⚠️ GRID_API_KEY not set - Grid completions will return a configuration error")
		if config.UseStrictConfig && config.LLMProvider == "grid" {
			return nil, fmt.Errorf("grid LLM is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.LLMProvider == "anthropic" && !config.AnthropicConfig.IsConfigured() {
		log.Printf("⚠️ LLM_PROVIDER=anthropic but ANTHROPIC_API_KEY not set")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("anthropic LLM is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.RetrieverConfig.IsConfigured() {
		log.Printf("✅ Document retriever configured at %s", config.RetrieverConfig.BaseURL)
	} else {
		log.Printf("⚠️ RETRIEVER_URL not set - document retrieval disabled, prompts will carry no snippets")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("retriever is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.AdminAPIToken == "" {
		log.Printf("⚠️ ADMIN_API_TOKEN not set - admin API will reject all requests")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️ Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func splitCommaList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
