package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/tender-portal/internal/db"
	"github.com/senyabanana/tender-portal/internal/events"
	"github.com/senyabanana/tender-portal/internal/handlers"
	"github.com/senyabanana/tender-portal/internal/lock"
	"github.com/senyabanana/tender-portal/internal/middleware"
	"github.com/senyabanana/tender-portal/internal/repository"
	"github.com/senyabanana/tender-portal/internal/router"
	"github.com/senyabanana/tender-portal/internal/router/config"
	"github.com/senyabanana/tender-portal/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type storage struct {
	tenders repository.TenderRepository
	bids    repository.BidRepository
	access  repository.AccessRepository
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.Fatal("cannot load config: ", err)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := initStorage(ctx, cfg, logger)
	defer closeStore()

	locker := initLocker(ctx, cfg, logger)
	publisher, closePublisher := initPublisher(cfg, logger)
	defer closePublisher()

	tenderService := services.NewTenderService(store.tenders, store.bids, publisher, logger)
	bidService := services.NewBidService(store.bids, store.tenders, locker, publisher, logger)
	accessService := services.NewAccessService(store.access, store.bids, store.tenders, publisher, logger)
	analysisService := services.NewAnalysisService(store.bids)

	tenderHandler := handlers.NewTenderHandler(tenderService, logger, cfg.RequestTimeout)
	bidHandler := handlers.NewBidHandler(bidService, analysisService, logger, cfg.RequestTimeout)
	accessHandler := handlers.NewAccessHandler(accessService, logger, cfg.RequestTimeout)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.InitRoutes(tenderHandler, bidHandler, accessHandler, limiter, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("server is listening on %s...", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func initStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage, func()) {
	if cfg.StorageBackend == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return storage{tenders: mem, bids: mem, access: mem}, func() {}
	}

	dbSource, err := db.ConnString(cfg)
	if err != nil {
		logger.Fatalf("error initializing database: %v", err)
	}

	runDBMigration(cfg.MigrationURL, dbSource, logger)

	dbPool, err := db.InitDb(ctx, dbSource)
	if err != nil {
		logger.Fatalf("error initializing database: %v", err)
	}

	return storage{
		tenders: repository.NewPostgresTenderRepository(dbPool, cfg.PersistenceRetries),
		bids:    repository.NewPostgresBidRepository(dbPool, cfg.PersistenceRetries),
		access:  repository.NewPostgresAccessRepository(dbPool, cfg.PersistenceRetries),
	}, dbPool.Close
}

func initLocker(ctx context.Context, cfg config.Config, logger *logrus.Logger) lock.Locker {
	if cfg.LockBackend != "redis" {
		return lock.NewLocal()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	locker, err := lock.NewRedis(ctx, client, cfg.LockTTL, logger)
	if err != nil {
		logger.Fatalf("error initializing lock: %v", err)
	}
	logger.Infof("using redis lot locks at %s", cfg.RedisAddr)
	return locker
}

func initPublisher(cfg config.Config, logger *logrus.Logger) (events.Publisher, func()) {
	if cfg.NatsURL == "" {
		return events.Noop{}, func() {}
	}

	publisher, err := events.NewNATS(cfg.NatsURL)
	if err != nil {
		logger.Fatalf("error initializing events: %v", err)
	}
	logger.Infof("publishing events to %s", cfg.NatsURL)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.WithError(err).Warn("failed to close NATS connection")
		}
	}
}

func runDBMigration(migrationURL string, dbSource string, logger *logrus.Logger) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		logger.Fatal("cannot create a new migrate instance: ", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Fatal("failed to run migrate up: ", err)
	}
	logger.Info("db migrated successfully")
}
