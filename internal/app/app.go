// Package app assembles the API server from configuration. Both the api
// binary and the taskboard CLI start the service through Run.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"taskboard-api/internal/config"
	"taskboard-api/internal/database"
	"taskboard-api/internal/job"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/router"
)

const (
	dbRetryInterval   = 5 * time.Second
	dbStatsInterval   = 15 * time.Second
	businessInterval  = time.Minute
	migrateMaxRetries = 3
)

// NewLogger initializes the zap logger with the specified level
func NewLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// OpenDatabase connects to the configured database. If the first attempt
// fails it keeps retrying in the background and blocks until a connection is
// made or ctx is done.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dbConfig := database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Warn("Failed to connect to database on startup, will retry in background", zap.Error(err))

		connected := make(chan *gorm.DB, 1)
		database.NewAsync(dbConfig, dbRetryInterval, logger, func(db *gorm.DB) {
			connected <- db
		})
		select {
		case db = <-connected:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		logger.Info("Database connected successfully",
			zap.String("driver", cfg.Database.Driver),
		)
	}
	database.SetDB(db)

	if cfg.Database.AutoMigrate {
		if err := database.SafeAutoMigrateWithRetry(db, logger, migrateMaxRetries); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	return db, nil
}

// Run starts the API server and blocks until ctx is cancelled, then shuts
// everything down gracefully
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Taskboard API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("realtime_broker", cfg.Realtime.Broker),
	)

	db, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	m := metrics.New()
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	statsStop := database.StartDBStatsCollector(db, m, dbStatsInterval)
	defer close(statsStop)

	collector := metrics.NewBusinessMetricsCollector(db, m, logger, businessInterval)
	collector.Start()
	defer collector.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := realtime.NewHub()
	var (
		publisher   realtime.Publisher
		redisClient *redis.Client
	)
	switch cfg.Realtime.Broker {
	case "redis":
		redisClient, err = database.InitRedis(cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		broker := realtime.NewRedisBroker(redisClient, hub, cfg.Realtime.ChannelPrefix, logger, m)
		go func() {
			if err := broker.Run(runCtx); err != nil {
				logger.Error("Realtime broker stopped", zap.Error(err))
			}
		}()
		publisher = broker
	default:
		publisher = realtime.NewLocalBroker(hub, m)
	}

	scheduler := job.NewScheduler(logger)
	if cfg.Jobs.ReconcileEnabled {
		reconcile := job.NewReconcileJob(repository.NewReconcileRepository(db), m, logger)
		if err := scheduler.Add("reconcile", cfg.Jobs.ReconcileSchedule, reconcile); err != nil {
			return err
		}
	}
	scheduler.Start()

	r := router.Setup(router.Config{
		DB:                    db,
		Logger:                logger,
		JWTSecret:             cfg.JWT.Secret,
		JWTIssuer:             cfg.JWT.Issuer,
		TokenTTL:              cfg.JWT.TokenTTL,
		BasePath:              cfg.Server.BasePath,
		Metrics:               m,
		Redis:                 redisClient,
		Hub:                   hub,
		Publisher:             publisher,
		AllowedOrigins:        cfg.Server.AllowedOrigins,
		SendBufferSize:        cfg.Realtime.SendBufferSize,
		AuthRequestsPerMinute: cfg.RateLimit.AuthRequestsPerMinute,
		AuthBurst:             cfg.RateLimit.AuthBurst,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Taskboard API started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)

	logger.Info("Server exited gracefully")
	return nil
}
