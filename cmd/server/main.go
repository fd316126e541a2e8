package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/guessword/internal/api"
	"github.com/mcoot/guessword/internal/factory"
	"github.com/mcoot/guessword/internal/llm"
	"github.com/mcoot/guessword/internal/services/auth"
	"github.com/mcoot/guessword/internal/services/oracle"
	redisstorage "github.com/mcoot/guessword/internal/storage/redis"
	sqlitestorage "github.com/mcoot/guessword/internal/storage/sqlite"
)

// janitorInterval is how often revoked sessions and idle SSE hubs are swept
const janitorInterval = 5 * time.Minute

func main() {
	// A missing .env is fine; real environment variables still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	cfg, serverConfig, err := loadConfig(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	server := api.NewServer(app.Router(), serverConfig, logger)
	// Event streams never end on their own
	server.OnShutdown(app.HubManager.CloseAll)

	listener, err := server.Listen()
	if err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		return
	}

	go runJanitor(ctx, app, logger)

	if err := server.Run(ctx, listener); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
	}
}

// loadConfig builds the application and server configuration from the environment
func loadConfig(logger *slog.Logger) (factory.Config, api.ServerConfig, error) {
	cfg := factory.Config{
		Logger:       logger,
		StorageType:  os.Getenv("STORAGE_TYPE"),
		WordListPath: os.Getenv("WORD_LIST_PATH"),
		DailyZone:    os.Getenv("DAILY_ZONE"),
		OracleKind:   oracle.Kind(os.Getenv("ORACLE")),
	}
	serverConfig := api.DefaultServerConfig()

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return cfg, serverConfig, fmt.Errorf("PORT: %w", err)
		}
		serverConfig.Port = p
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, serverConfig, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypeSQLite:
		cfg.SQLiteConfig = &sqlitestorage.Config{Path: getEnvOrDefault("SQLITE_PATH", "guessword.db")}
	}

	if cfg.OracleKind == oracle.KindLLM {
		llmCfg := llm.DefaultConfig()
		llmCfg.BaseURL = getEnvOrDefault("LLM_BASE_URL", llmCfg.BaseURL)
		llmCfg.APIKey = os.Getenv("LLM_API_KEY")
		llmCfg.Model = getEnvOrDefault("LLM_MODEL", llmCfg.Model)
		if v := os.Getenv("LLM_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return cfg, serverConfig, fmt.Errorf("LLM_TIMEOUT: %w", err)
			}
			llmCfg.Timeout = d
		}
		if v := os.Getenv("LLM_RPS"); v != "" {
			rps, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, serverConfig, fmt.Errorf("LLM_RPS: %w", err)
			}
			llmCfg.RequestsPerSecond = rps
		}
		if llmCfg.APIKey == "" {
			logger.Warn("LLM_API_KEY is empty; oracle calls will likely be rejected")
		}
		cfg.LLMConfig = llmCfg
	}

	cfg.AuthConfig = auth.DefaultConfig()
	cfg.AuthConfig.Secret = os.Getenv("SESSION_SECRET")
	if cfg.AuthConfig.Secret == "" {
		logger.Warn("SESSION_SECRET is empty; sessions will not survive a restart")
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, serverConfig, fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.AuthConfig.SessionDuration = d
	}

	return cfg, serverConfig, nil
}

// runJanitor periodically drops expired revocations and hubs nobody watches
func runJanitor(ctx context.Context, app *factory.App, logger *slog.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.AuthService.CleanExpiredSessions()
			app.HubManager.CleanupEmptyHubs()
			logger.Debug("janitor sweep", slog.Int("revoked_sessions", app.AuthService.RevokedCount()))
		}
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
