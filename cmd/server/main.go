package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/app"
	"github.com/nekogravitycat/civic-directory-backend/internal/config"
	"github.com/nekogravitycat/civic-directory-backend/internal/db"
	"github.com/nekogravitycat/civic-directory-backend/internal/logging"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/cache"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/storage"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Connect DB (postgres driver only)
	var pool *pgxpool.Pool
	if cfg.StorageDriver == config.StoragePostgres {
		pool, err = db.NewPool(ctx, db.PoolConfig{DSN: cfg.DBDSN, MaxConns: int32(cfg.DBMaxConns)}, logger)
		if err != nil {
			logger.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("failed to migrate db", zap.Error(err))
		}
	}

	// Cache: Redis when configured, in-process otherwise
	var listingCache cache.Cache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		listingCache = cache.NewRedisCache(rdb, "civic:")
	}

	store, err := storage.NewLocalStorage(filepath.Clean(cfg.UploadDir))
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	container, err := app.NewContainer(app.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         logger,
		DBPool:         pool,
		Cache:          listingCache,
		CacheTTL:       cfg.CacheTTL,
		Storage:        store,
		MaxUploadBytes: int64(cfg.MaxUploadBytes),
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTAccessTokenTTL,
		BcryptCost:     cfg.BcryptCost,
	})
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info("server running",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.StorageDriver),
			zap.Bool("redis", cfg.RedisAddr != ""),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
