package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"readinglist/internal/api"
	"readinglist/internal/bot"
	"readinglist/internal/collection"
	"readinglist/internal/config"
	"readinglist/internal/covers"
	"readinglist/internal/storage"
	"readinglist/internal/storage/ch"
	"readinglist/internal/storage/kv"
	"readinglist/internal/storage/lite"
	"readinglist/internal/storage/pg"
	"readinglist/internal/storage/rds"
)

// App represents the application
type App struct {
	config  *config.Config
	logger  *zap.Logger
	slot    storage.Slot
	library collection.Library
	covers  *covers.Service
	bot     *bot.Bot
	server  *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting reading list",
		zap.String("storage", cfg.StorageBackend),
		zap.String("covers", cfg.CoverBackend),
		zap.Bool("bot", cfg.BotEnabled()),
	)

	ctx := context.Background()

	if err := app.initStorage(ctx); err != nil {
		return nil, err
	}
	if err := app.initCovers(ctx); err != nil {
		app.slot.Close()
		return nil, err
	}
	if err := app.initBot(); err != nil {
		app.slot.Close()
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Env == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// openSlot connects the snapshot slot selected by STORAGE_BACKEND
func (a *App) openSlot(ctx context.Context) (storage.Slot, error) {
	cfg := a.config

	switch cfg.StorageBackend {
	case config.BackendMemory:
		a.logger.Warn("Using in-memory storage, the collection is lost on exit")
		return kv.NewBadgerSlot("", a.logger)
	case config.BackendBadger:
		return kv.NewBadgerSlot(cfg.BadgerDir, a.logger)
	case config.BackendSQLite:
		return lite.NewSQLiteSlot(cfg.SQLitePath)
	case config.BackendClickHouse:
		tlsStatus := "without TLS"
		if cfg.ClickHouseUseTLS {
			tlsStatus = "with TLS"
		}
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", cfg.ClickHouseHost),
			zap.Int("port", cfg.ClickHousePort),
			zap.String("database", cfg.ClickHouseDatabase),
			zap.String("user", cfg.ClickHouseUser),
			zap.String("tls", tlsStatus),
		)
		if err := ch.Migrate(cfg.ClickHouseHost, cfg.ClickHousePort, cfg.ClickHouseDatabase,
			cfg.ClickHouseUser, cfg.ClickHousePassword, cfg.ClickHouseUseTLS); err != nil {
			return nil, fmt.Errorf("failed to migrate ClickHouse: %w", err)
		}
		return ch.NewClickHouseSlot(cfg.ClickHouseHost, cfg.ClickHousePort, cfg.ClickHouseDatabase,
			cfg.ClickHouseUser, cfg.ClickHousePassword, cfg.ClickHouseUseTLS)
	case config.BackendRedis:
		return rds.NewRedisSlot(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.BackendPostgres:
		return pg.NewPostgresSlot(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// initStorage opens the slot and restores the collection from it
func (a *App) initStorage(ctx context.Context) error {
	slot, err := a.openSlot(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", a.config.StorageBackend, err)
	}

	store, err := collection.New(ctx, slot, a.logger)
	if err != nil {
		slot.Close()
		return fmt.Errorf("failed to restore collection: %w", err)
	}

	a.slot = slot
	a.library = collection.NewShared(store)

	stats := a.library.Stats()
	a.logger.Info("Collection restored",
		zap.Int("books", stats.Total),
		zap.Int("favorites", stats.Favorites),
	)
	return nil
}

func (a *App) initCovers(ctx context.Context) error {
	var store covers.Store
	switch a.config.CoverBackend {
	case config.CoversMinIO:
		minioStore, err := covers.NewMinIOStore(ctx, a.config.MinIOEndpoint, a.config.MinIOAccessKey,
			a.config.MinIOSecretKey, a.config.MinIOBucket, a.config.MinIOUseSSL)
		if err != nil {
			return fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		store = minioStore
	default:
		localStore, err := covers.NewLocalStore(a.config.CoverDir)
		if err != nil {
			return fmt.Errorf("failed to prepare cover directory: %w", err)
		}
		store = localStore
	}

	a.covers = covers.NewService(store, covers.NewProcessor(a.config.CoverMaxBytes), a.library, a.logger)
	return nil
}

// initBot creates the Telegram bot when a token is configured
func (a *App) initBot() error {
	if !a.config.BotEnabled() {
		a.logger.Info("TELEGRAM_BOT_TOKEN not set, running without the bot")
		return nil
	}

	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.library, a.covers, a.config.AllowedUserIDs, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully", zap.Int64s("allowed_users", a.config.AllowedUserIDs))

	a.bot = telegramBot
	return nil
}

// initHTTPServer builds the REST API and, in webhook mode, the Telegram endpoint
func (a *App) initHTTPServer() {
	if a.config.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(api.NewHandler(a.library, a.covers, a.logger), a.logger)
	if a.bot != nil && a.config.WebhookMode {
		router.POST(bot.WebhookPath, gin.WrapF(a.bot.WebhookHandler()))
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.Int("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if a.bot != nil {
		if a.config.WebhookMode {
			if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
				a.Shutdown()
				return fmt.Errorf("failed to setup webhook: %w", err)
			}
			a.logger.Info("Webhook configured", zap.String("path", bot.WebhookPath))
		} else {
			go func() {
				if err := a.bot.Start(ctx); err != nil {
					a.logger.Error("Bot polling stopped", zap.Error(err))
				}
			}()
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down...")
	case err := <-serverErr:
		runErr = fmt.Errorf("HTTP server error: %w", err)
	}

	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops the HTTP server, writes a final snapshot and closes the slot
func (a *App) Shutdown() error {
	defer a.logger.Sync()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.library.Flush(shutdownCtx); err != nil {
		a.logger.Error("Final flush failed", zap.Error(err))
	}

	if err := a.slot.Close(); err != nil {
		a.logger.Error("Error closing storage", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	return nil
}
