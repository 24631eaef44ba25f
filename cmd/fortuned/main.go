package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/decks"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/image/replicate"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/line"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/linewebhook"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/llm/openrouter"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/store/memory"
	redisstore "github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/store/redis"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/app"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/config"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	deckStore := decks.NewEmbeddedStore()

	oracle := openrouter.NewClient(
		&http.Client{Timeout: cfg.LLMTimeout},
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterBaseURL,
		cfg.LLMModel,
		cfg.LLMFallbackModels,
		logger,
	)

	// Image generation is optional: without a token the bot stays
	// text-only.
	var imager ports.ImageOracle
	if cfg.ReplicateAPIToken != "" {
		imager = replicate.NewClient(cfg.ReplicateAPIToken, cfg.ReplicateBaseURL, cfg.ImageTimeout, logger)
	}

	var quotaStore ports.QuotaStore
	var sessionStore ports.SessionStore
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("redis unavailable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		quotaStore = redisstore.NewQuotaStore(client)
		sessionStore = redisstore.NewSessionStore(client)
		logger.Info("using redis state store", "addr", cfg.RedisAddr)
	} else {
		quotaStore = memory.NewQuotaStore()
		sessionStore = memory.NewSessionStore()
		logger.Info("using in-memory state store")
	}

	ledger := app.NewLedger(quotaStore, cfg.DailyLimit, cfg.VIPUserIDs, cfg.Location)

	dialogue := app.NewController(
		sessionStore,
		ledger,
		deckStore,
		decks.DefaultDeckID,
		stdRNG{},
		oracle,
		imager,
		logger,
	)

	replier, err := line.NewReplier(cfg.LineChannelToken, logger)
	if err != nil {
		slog.Error("failed to init line client", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(linewebhook.RequestIDMiddleware())
	e.Use(linewebhook.LoggingMiddleware(logger))

	handler := linewebhook.NewHandler(cfg.LineChannelSecret, dialogue, replier, logger)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
