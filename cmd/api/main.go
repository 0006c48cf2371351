package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fittrack-api/internal/config"
	"fittrack-api/internal/database"
	"fittrack-api/internal/job"
	"fittrack-api/internal/metrics"
	"fittrack-api/internal/repository"
	"fittrack-api/internal/router"
	"fittrack-api/internal/service"
	"fittrack-api/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Env == "prod" || cfg.Server.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting FitTrack API",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	// Initialize database
	db, err := database.NewWithRetry(database.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}, 5*time.Second, 12, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	if err := database.Migrate(db); err != nil {
		logger.Warn("Failed to run database migrations", zap.Error(err))
	} else {
		logger.Info("Database migrations completed")
	}

	// Initialize metrics
	m := metrics.New()
	logger.Info("Metrics initialized")

	// Initialize blob storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage backend", zap.Error(err))
	}
	logger.Info("Storage backend initialized", zap.String("backend", cfg.Storage.Backend))

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:             db,
		Logger:         logger,
		JWTSecret:      cfg.Auth.SecretKey,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Store:          store,
		Metrics:        m,
		UploadLimits: service.Limits{
			MaxFileSize:        cfg.Upload.MaxFileSize,
			MaxImagesPerParent: int64(cfg.Upload.MaxImagesPerParent),
			MaxVideosPerParent: int64(cfg.Upload.MaxVideosPerParent),
		},
		UserStorageCap: cfg.Upload.UserStorageCap,
	})

	// Schedule the cleanup job for expired unlinked attachments
	attachmentRepo := repository.NewAttachmentRepository(db)
	cleanupJob := job.NewCleanupJob(attachmentRepo, store, m, logger)

	scheduler := cron.New()
	if _, err := scheduler.AddJob(cfg.Cleanup.Schedule, cleanupJob); err != nil {
		logger.Fatal("Failed to schedule cleanup job",
			zap.String("schedule", cfg.Cleanup.Schedule),
			zap.Error(err),
		)
	}
	scheduler.Start()
	logger.Info("Cleanup job scheduled", zap.String("schedule", cfg.Cleanup.Schedule))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("FitTrack API started successfully",
			zap.String("address", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Stop the scheduler and wait for a running cleanup pass to finish
	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// newStorage builds the configured blob backend. Local disk is the default;
// S3 requires at least a bucket and region.
func newStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		if cfg.Storage.Bucket == "" || cfg.Storage.Region == "" {
			return nil, fmt.Errorf("s3 backend requires bucket and region")
		}
		return storage.NewS3Storage(context.Background(), storage.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Endpoint:  cfg.Storage.Endpoint,
		})
	case "local", "":
		return storage.NewLocalStorage(cfg.Storage.LocalRoot, cfg.Storage.BaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
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
