package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flaggate/internal/api"
	"flaggate/internal/config"
	"flaggate/internal/metrics"
	"flaggate/internal/model"
	"flaggate/internal/repository"
	"flaggate/internal/service"
	"flaggate/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// Initialize logger
	logger.InitLogger(cfg.Server.Environment)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("application startup failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// 2. Initialize Infrastructure
	rdb := initRedis(cfg.Redis)
	defer rdb.Close()

	db, err := initDB(cfg.MySQL)
	if err != nil {
		return err
	}

	// 3. Initialize Repositories
	flagRepo := repository.NewFlagRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)

	// 4. Initialize Service
	observer := metrics.NewPrometheusObserver()
	svc := service.NewFlagService(flagRepo, overrideRepo, observer)

	// 5. Setup HTTP Server
	r := api.RegisterRoutes(
		api.NewFlagHandler(svc),
		api.NewOverrideHandler(svc),
		cfg.Auth.ServiceToken,
		rdb,
		cfg.RateLimit.RequestsPerSecond,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	// 6. Start Server
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen failed", zap.Error(err))
		}
	}()

	// 7. Graceful Shutdown Signal Wait
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

// -- Infrastructure Initializers --

func initRedis(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	// The rate limiter fails open, so an unreachable Redis degrades the
	// limiter rather than blocking startup.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable, rate limiting will use local fallback", zap.Error(err))
	}
	return rdb
}

// initDB connects to MySQL and migrates the two flag tables, retrying a
// bounded number of attempts with a fixed delay before giving up. The
// process must not come up without its store.
func initDB(cfg config.MySQLConfig) (*gorm.DB, error) {
	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	gap := cfg.ConnectRetryGap
	if gap <= 0 {
		gap = 2 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := openAndMigrate(cfg.DSN)
		if err == nil {
			logger.Info("database initialized", zap.Int("attempt", attempt))
			return db, nil
		}
		lastErr = err

		if attempt < attempts {
			logger.Warn("database connection failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("retry_in", gap),
				zap.Error(err))
			time.Sleep(gap)
		}
	}

	return nil, fmt.Errorf("failed to initialize database after %d attempts: %w", attempts, lastErr)
}

func openAndMigrate(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	if err := db.AutoMigrate(
		&model.FeatureFlag{},
		&model.UserFeatureOverride{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
