package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/battleship-go/internal/api/sse"
	"github.com/mcoot/battleship-go/internal/dependencies/clock"
	"github.com/mcoot/battleship-go/internal/dependencies/random"
	"github.com/mcoot/battleship-go/internal/metrics"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/services/bot"
	"github.com/mcoot/battleship-go/internal/services/game"
	"github.com/mcoot/battleship-go/internal/services/sweeper"
	"github.com/mcoot/battleship-go/internal/services/view"
	"github.com/mcoot/battleship-go/internal/storage"
	"github.com/mcoot/battleship-go/internal/storage/memory"
	redisstorage "github.com/mcoot/battleship-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Metrics *metrics.Metrics

	// Services
	AuthService    *auth.Service
	GameController *game.Controller
	ViewService    *view.Service
	BotService     *bot.Service
	Sweeper        *sweeper.Sweeper
	HubManager     *sse.HubManager

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// GameTTL is how long an idle game is kept before the sweeper deletes it.
	// Zero uses sweeper.DefaultGameTTL.
	GameTTL time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closers []io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	app := newWithDependencies(store, clk, rnd, metrics.New(), cfg.AuthConfig, cfg.GameTTL, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	m *metrics.Metrics,
	authCfg auth.Config,
	gameTTL time.Duration,
	logger *slog.Logger,
) *App {
	// Create services
	authService := auth.New(store, clk, rnd, authCfg, logger)
	gameController := game.NewController(store, authService, m, clk, rnd, logger)
	viewService := view.New(store, authService, gameController, logger)
	botService := bot.NewService(gameController, viewService, bot.DefaultStrategies(rnd), logger)
	hubManager := sse.NewHubManager(logger)

	sw := sweeper.New(store, gameController, clk, gameTTL, logger)
	sw.OnDelete(botService.Forget)
	sw.OnDelete(sse.NewBroadcaster(hubManager, logger).GameDeleted)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Metrics:        m,
		AuthService:    authService,
		GameController: gameController,
		ViewService:    viewService,
		BotService:     botService,
		Sweeper:        sw,
		HubManager:     hubManager,
	}
}

// Close releases external resources held by the app
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
