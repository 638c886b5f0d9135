package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"gridbot/clients"
	anthropicclient "gridbot/clients/anthropic"
	coingeckoclient "gridbot/clients/coingecko"
	discordclient "gridbot/clients/discord"
	gridclient "gridbot/clients/grid"
	retrieverclient "gridbot/clients/retriever"
	"gridbot/config"
	"gridbot/db"
	"gridbot/handlers"
	"gridbot/middleware"
	"gridbot/services/botstate"
	"gridbot/services/conversation"
	"gridbot/services/moderation"
	"gridbot/usecases/decision"
	moderationusecase "gridbot/usecases/moderation"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.AlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "gridbot",
	})

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	messagesRepo := db.NewPostgresMessagesRepository(dbConn, cfg.DatabaseSchema)
	botStateRepo := db.NewPostgresBotStateRepository(dbConn, cfg.DatabaseSchema)

	conversationService := conversation.NewConversationService(messagesRepo)
	botStateService := botstate.NewBotStateService(botStateRepo)
	moderationService := moderation.NewModerationService()

	// Select the completion backend
	var completionClient clients.CompletionClient
	if cfg.LLMProvider == "anthropic" {
		completionClient = anthropicclient.NewAnthropicClient(
			cfg.AnthropicConfig.APIKey,
			cfg.AnthropicConfig.Model,
		)
	} else {
		completionClient = gridclient.NewGridClient(
			&http.Client{Timeout: cfg.PipelineConfig.CompletionTimeout},
			cfg.GridConfig.APIKey,
			cfg.GridConfig.Model,
			cfg.GridConfig.BaseURL,
		)
	}

	// The retriever is optional; a nil client disables document context
	var retrieverClient clients.RetrieverClient
	if cfg.RetrieverConfig.IsConfigured() {
		retrieverClient = retrieverclient.NewRetrieverClient(cfg.RetrieverConfig.BaseURL)
	}

	coingeckoClient := coingeckoclient.NewCoinGeckoClient("", cfg.CoinGeckoConfig.APIKey)

	// Shared Discord session: the API client and the event handler reuse
	// one gateway connection
	session, err := discordgo.New("Bot " + cfg.DiscordConfig.BotToken)
	if err != nil {
		return err
	}
	discordClient := discordclient.NewDiscordClient(session)

	assembler := decision.NewAssembler(
		conversationService,
		botStateService,
		retrieverClient,
		coingeckoClient,
		cfg.PipelineConfig.PersonaName,
		cfg.PipelineConfig.HistoryLimit,
		cfg.RetrieverConfig.TopK,
	)
	decisionUseCase := decision.NewDecisionUseCase(
		discordClient,
		completionClient,
		conversationService,
		assembler,
		cfg.DiscordConfig,
		cfg.PipelineConfig,
	)
	moderationUseCase := moderationusecase.NewModerationUseCase(
		discordClient,
		completionClient,
		moderationService,
	)

	// Start the Discord bot when a token is present
	var eventsHandler *handlers.DiscordEventsHandler
	if cfg.DiscordConfig.IsConfigured() {
		eventsHandler = handlers.NewDiscordEventsHandler(
			session,
			decisionUseCase,
			moderationUseCase,
			alertMiddleware,
		)
		if err := eventsHandler.StartBot(); err != nil {
			return err
		}
		defer eventsHandler.StopBot()
	}

	adminHandler := handlers.NewAdminHTTPHandler(botStateService, conversationService)
	authMiddleware := middleware.NewTokenAuthMiddleware(cfg.AdminAPIToken)

	// Create a new router
	router := mux.NewRouter()
	adminHandler.SetupEndpoints(router, authMiddleware)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	// Periodic pruning keeps conversation history bounded
	pruneTicker := time.NewTicker(1 * time.Hour)
	go func() {
		for range pruneTicker.C {
			_ = alertMiddleware.WrapBackgroundTask("PruneOldMessages", func() error {
				cutoff := time.Now().Add(-cfg.PipelineConfig.PruneAfter)
				_, err := conversationService.PruneMessagesOlderThan(context.Background(), cutoff)
				return err
			})()
		}
	}()
	defer pruneTicker.Stop()

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
