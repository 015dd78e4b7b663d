package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/analytics"
	"github.com/alexivanou/placefinder/internal/api"
	"github.com/alexivanou/placefinder/internal/catalog"
	"github.com/alexivanou/placefinder/internal/config"
	"github.com/alexivanou/placefinder/internal/database"
	"github.com/alexivanou/placefinder/internal/persist"
	"github.com/alexivanou/placefinder/internal/places"
	"github.com/alexivanou/placefinder/internal/repository"
	"github.com/alexivanou/placefinder/internal/retry"
	"github.com/alexivanou/placefinder/internal/service"
	"github.com/alexivanou/placefinder/internal/stats"
	"github.com/alexivanou/placefinder/internal/store"
	"github.com/alexivanou/placefinder/internal/suggest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	s := store.New(
		store.WithHistoryLimit(cfg.Search.HistoryLimit),
		store.WithInitialPlace(catalog.DefaultPlace()),
		store.WithLogger(logger),
	)

	var (
		repo           repository.StateRepository
		statsCollector *stats.Collector
	)
	if cfg.DB.IsSQL() {
		db, err := database.Connect(ctx, cfg.DB)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatal("Failed to ping database", zap.Error(err))
		}
		logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

		if err := runMigrations(db, cfg); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		repo = repository.NewStateRepository(db, cfg.DB.Type)
		statsCollector = stats.NewCollector(db, cfg.DB, stats.WithHistory(s))
	} else {
		kv, err := database.OpenBadger(cfg.DB.BadgerDir, logger)
		if err != nil {
			logger.Fatal("Failed to open badger", zap.Error(err))
		}
		defer kv.Close()
		logger.Info("Opened badger store", zap.String("dir", cfg.DB.BadgerDir))

		repo = repository.NewBadgerStateRepository(kv)
		statsCollector = stats.NewCollector(nil, cfg.DB, stats.WithBadger(kv), stats.WithHistory(s))
	}

	syncer := persist.NewSyncer(repo, s, persist.Decoder{
		Limit: cfg.Search.HistoryLimit,
		NewID: store.NewHistoryID,
	}, logger)
	if err := syncer.Restore(ctx); err != nil {
		logger.Warn("Starting with empty history", zap.Error(err))
	}

	syncCtx, stopSync := context.WithCancel(ctx)
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		syncer.Run(syncCtx)
	}()

	fallback := catalog.Fallback()
	if cfg.Catalog.Path != "" {
		fallback, err = catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			logger.Fatal("Failed to load fallback catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		}
		logger.Info("Loaded fallback catalog", zap.Int("places", fallback.Len()))
	}

	client := places.NewClient(newProvider(cfg, logger),
		places.WithLogger(logger),
		places.WithMinInput(cfg.Search.MinQueryLength),
		places.WithSearchRetry(retry.Policy{
			MaxRetries: cfg.Retry.SearchAttempts,
			BaseDelay:  cfg.Retry.BaseDelay,
			Multiplier: cfg.Retry.BackoffMultiplier,
		}),
	)
	logger.Info("Places provider ready", zap.String("provider", client.ProviderName()))

	blender := suggest.NewBlender(client, fallback, cfg.Search.MaxSuggestions, cfg.Search.MinQueryLength)
	svc := service.NewService(s, client, blender, service.Options{
		Map:           cfg.Map,
		DebounceDelay: cfg.Search.DebounceDelay,
		Tracker:       analytics.NewTracker(logger),
		Logger:        logger,
	})
	router := api.NewRouter(svc, statsCollector, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.Duration("write_timeout", cfg.Server.WriteTimeout),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	stopSync()
	<-syncDone

	logger.Info("Server exited")
}

// newProvider picks the live provider when an API key is configured and the
// offline catalog otherwise
func newProvider(cfg *config.Config, logger *zap.Logger) places.Provider {
	if !cfg.Provider.HasAPIKey() {
		logger.Warn("GOOGLE_MAPS_API_KEY is not set, using offline places")
		return places.NewOfflineProvider(nil)
	}
	return places.NewGoogleProvider(cfg.Provider.APIKey,
		places.WithBaseURL(cfg.Provider.BaseURL),
		places.WithHTTPClient(&http.Client{Timeout: cfg.Provider.Timeout}),
		places.WithRateLimit(cfg.Provider.RateLimit),
		places.WithFields(cfg.Provider.Fields),
		places.WithLanguage(cfg.Provider.Language),
		places.WithProviderLogger(logger),
	)
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	sourcePath := "file://migrations/postgres"

	if cfg.DB.IsSQLite() {
		sourcePath = "file://migrations/sqlite"
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(
			sourcePath,
			"sqlite3",
			driver,
		)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.New(sourcePath, cfg.DB.DSN())
		if err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
