package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	LogLevel slog.Level

	LineChannelSecret string
	LineChannelToken  string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	LLMModel          string
	LLMFallbackModels []string
	LLMTimeout        time.Duration

	ReplicateAPIToken string
	ReplicateBaseURL  string
	ImageTimeout      time.Duration

	DailyLimit int
	VIPUserIDs []string
	Location   *time.Location

	RedisAddr     string
	RedisPassword string
}

func Load() (Config, error) {
	c := Config{
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		LineChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		LineChannelToken:  os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:          envOr("LLM_MODEL", "openai/gpt-4o-mini"),
		LLMFallbackModels: splitList(os.Getenv("LLM_FALLBACK_MODELS")),
		LLMTimeout:        10 * time.Second,
		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:  envOr("REPLICATE_BASE_URL", "https://api.replicate.com"),
		ImageTimeout:      30 * time.Second,
		DailyLimit:        3,
		VIPUserIDs:        splitList(os.Getenv("VIP_USER_IDS")),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
		c.LLMTimeout = d
	}

	if v := os.Getenv("IMAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IMAGE_TIMEOUT %q: %w", v, err)
		}
		c.ImageTimeout = d
	}

	if v := os.Getenv("DAILY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid DAILY_LIMIT %q", v)
		}
		c.DailyLimit = n
	}

	loc, err := time.LoadLocation(envOr("TIMEZONE", "Asia/Taipei"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	c.Location = loc

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	if c.LineChannelSecret == "" {
		return Config{}, fmt.Errorf("LINE_CHANNEL_SECRET is required")
	}
	if c.LineChannelToken == "" {
		return Config{}, fmt.Errorf("LINE_CHANNEL_ACCESS_TOKEN is required")
	}
	if c.OpenRouterAPIKey == "" {
		return Config{}, fmt.Errorf("OPENROUTER_API_KEY is required")
	}

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
