package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/health-records/internal/api"
	"github.com/vladimiradmaev/health-records/internal/auth"
	"github.com/vladimiradmaev/health-records/internal/bot"
	"github.com/vladimiradmaev/health-records/internal/bot/handlers"
	"github.com/vladimiradmaev/health-records/internal/config"
	"github.com/vladimiradmaev/health-records/internal/database"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/realtime"
	"github.com/vladimiradmaev/health-records/internal/repository"
	"github.com/vladimiradmaev/health-records/internal/services"
	"github.com/vladimiradmaev/health-records/internal/state"
)

// conversationState is what both the bot and the services need from the state store
type conversationState interface {
	state.StateManager
	state.Guard
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to init logger", "error", err)
	}
	logger.Info("Starting Health Records...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	var wg sync.WaitGroup

	// Conversation state and change fan-out stay in process unless redis is configured
	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	var conversations conversationState = state.NewManager(cfg.Assist.InFlightTTL)
	if cfg.Redis.Enabled() {
		client, err := state.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		manager := state.NewRedisManager(client, cfg.Assist.InFlightTTL)
		defer manager.Close()
		conversations = manager

		broadcaster := realtime.NewRedisBroadcaster(client, hub)
		publisher = broadcaster
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := broadcaster.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change relay stopped", "error", err)
			}
		}()
		logger.Info("Using Redis for state and change events", "addr", cfg.Redis.Addr())
	}

	store := repository.NewLiveStore(repository.NewPostgresStore(db), hub, publisher)

	advisor, closeAI := newAdvisor(ctx, cfg.AI)
	defer closeAI()

	coordinator := services.NewAnalysisCoordinator(store, advisor, cfg.Assist.AnalysisDelay, cfg.Assist.AITimeout,
		services.WithSlotGuard(conversations))
	suggestionService := services.NewSuggestionService(store, advisor, conversations, cfg.Assist.SuggestionSettleDelay, cfg.Assist.AITimeout)
	vaccineService := services.NewVaccineService(store, conversations, cfg.Assist.UpcomingMonths)
	dietService := services.NewDietService(store, advisor, conversations, cfg.Assist.AITimeout)

	sessions := services.NewSessionManager(store, coordinator, suggestionService, cfg.Assist.SessionIdleTimeout)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.Run(ctx)
	}()

	authOptions := []services.AuthServiceOption{services.WithSessions(sessions)}
	if cfg.GoogleEnabled() {
		provider := services.NewGoogleProvider(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL)
		authOptions = append(authOptions, services.WithGoogle(provider, cfg.Auth.AuthorizedDomains))
	}
	authService := services.NewAuthService(store, auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), authOptions...)
	logger.Info("Services initialized successfully")

	app := api.NewApp(ctx, api.Dependencies{
		Auth:         authService,
		Vaccines:     vaccineService,
		Suggestions:  suggestionService,
		Diet:         dietService,
		Sessions:     sessions,
		Subscriber:   store,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		RateLimit:    cfg.HTTP.RateLimit,
		AccessLog:    cfg.Logger.Level == logger.LevelDebug,
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			logger.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	if cfg.TelegramToken != "" {
		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			Accounts:    store,
			Vaccines:    vaccineService,
			Suggestions: suggestionService,
			Diet:        dietService,
			Sessions:    sessions,
		}, conversations)
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Bot stopped with error", "error", err)
			}
		}()
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	logger.Info("Health Records is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	logger.Info("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	wg.Wait()
	logger.Info("Stopped")
}

// newAdvisor chains the configured AI providers, Gemini first
func newAdvisor(ctx context.Context, cfg config.AIConfig) (*services.AIService, func()) {
	var chain services.FallbackGenerator
	closeAI := func() {}

	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Gemini unavailable", "error", err)
		} else {
			chain = append(chain, gemini)
			closeAI = func() {
				if err := gemini.Close(); err != nil {
					logger.Warn("Failed to close Gemini client", "error", err)
				}
			}
		}
	}
	if cfg.OpenAIAPIKey != "" {
		chain = append(chain, services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}

	logger.Info("AI providers configured", "providers", chain.Name())
	return services.NewAIService(chain), closeAI
}
