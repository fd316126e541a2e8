package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/guessword/internal/api"
	"github.com/mcoot/guessword/internal/dependencies/clock"
	"github.com/mcoot/guessword/internal/dependencies/random"
	"github.com/mcoot/guessword/internal/llm"
	"github.com/mcoot/guessword/internal/services/auth"
	"github.com/mcoot/guessword/internal/services/daily"
	"github.com/mcoot/guessword/internal/services/game"
	"github.com/mcoot/guessword/internal/services/oracle"
	"github.com/mcoot/guessword/internal/services/wordlist"
	"github.com/mcoot/guessword/internal/sse"
	"github.com/mcoot/guessword/internal/storage"
	"github.com/mcoot/guessword/internal/storage/memory"
	redisstorage "github.com/mcoot/guessword/internal/storage/redis"
	sqlitestorage "github.com/mcoot/guessword/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	WordList       *wordlist.Service
	Selector       *daily.Selector
	Oracles        oracle.Set
	OracleKind     oracle.Kind
	GameController *game.Controller
	AuthService    *auth.Service
	HubManager     *sse.HubManager
	Broadcaster    *sse.Broadcaster

	logger *slog.Logger
	closer io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLiteConfig holds the database path (required if StorageType is "sqlite")
	SQLiteConfig *sqlitestorage.Config

	// WordListPath is a file of candidate secret words (optional)
	// If empty, the stored list or the built-in list is used
	WordListPath string
	// DailyZone names the time zone whose midnight starts a new word
	// If empty, defaults to daily.DefaultZone
	DailyZone string

	// OracleKind selects "pattern" or "llm" oracles; empty means pattern
	OracleKind oracle.Kind
	// LLMConfig is used when OracleKind is "llm"
	LLMConfig llm.Config

	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var store storage.Storage
	var closer io.Closer
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store, closer = redisStore, redisStore
	case StorageTypeSQLite:
		if cfg.SQLiteConfig == nil {
			return nil, errors.New("SQLiteConfig required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.New(*cfg.SQLiteConfig)
		if err != nil {
			return nil, err
		}
		store, closer = sqliteStore, sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	loc, err := daily.LoadLocation(cfg.DailyZone)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}

	var completer oracle.Completer
	if cfg.OracleKind == oracle.KindLLM {
		completer = llm.New(cfg.LLMConfig, logger)
	}
	oracles, err := oracle.NewSet(cfg.OracleKind, completer)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	app := newWithDependencies(store, clock.New(), random.New(), loc, oracles, authCfg, logger)
	app.StorageType = storageType
	app.OracleKind = cfg.OracleKind
	if app.OracleKind == "" {
		app.OracleKind = oracle.KindPattern
	}
	app.closer = closer

	if err := app.WordList.Load(ctx, cfg.WordListPath); err != nil {
		closeQuietly(closer)
		return nil, fmt.Errorf("loading word list: %w", err)
	}
	logger.Info("word list loaded",
		slog.Int("words", len(app.WordList.Words())),
		slog.String("zone", loc.String()),
		slog.String("storage", storageType),
		slog.String("oracle", string(app.OracleKind)))

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	loc *time.Location,
	oracles oracle.Set,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	words := wordlist.New(store)
	selector := daily.New(words, loc)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	gameController := game.NewController(store, selector, oracles, broadcaster, clk, rnd, logger)
	authService := auth.New(store, clk, rnd, authCfg)

	return &App{
		Storage:        store,
		StorageType:    StorageTypeMemory,
		Clock:          clk,
		Random:         rnd,
		WordList:       words,
		Selector:       selector,
		Oracles:        oracles,
		OracleKind:     oracle.KindPattern,
		GameController: gameController,
		AuthService:    authService,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		logger:         logger,
	}
}

// Router builds the HTTP API for this app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:         a.logger,
		AuthService:    a.AuthService,
		GameController: a.GameController,
		HubManager:     a.HubManager,
		StorageType:    a.StorageType,
		OracleKind:     string(a.OracleKind),
		Words:          a.WordList,
	})
}

// Close disconnects SSE clients and releases the storage backend
func (a *App) Close() error {
	a.HubManager.CloseAll()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
