package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fittrack-api/internal/database"
	"fittrack-api/internal/handler"
	"fittrack-api/internal/metrics"
	"fittrack-api/internal/middleware"
	"fittrack-api/internal/repository"
	"fittrack-api/internal/service"
	"fittrack-api/internal/storage"
)

// Config holds router configuration
type Config struct {
	DB             *gorm.DB
	Logger         *zap.Logger
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	Store          storage.Storage
	Metrics        *metrics.Metrics
	UploadLimits   service.Limits
	UserStorageCap int64
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(strings.Join(cfg.AllowedOrigins, ",")))
	r.Use(middleware.Metrics(cfg.Metrics))

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "fittrack-api"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := database.Ping(cfg.DB); err != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "fittrack-api"})
			return
		}
		c.JSON(200, gin.H{"status": "ready", "service": "fittrack-api"})
	})

	// Initialize repositories
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)
	trainingRepo := repository.NewTrainingRepository(cfg.DB)
	recordRepo := repository.NewRecordRepository(cfg.DB)

	// Initialize services
	quota := service.NewQuotaAccountant(attachmentRepo, cfg.UserStorageCap)
	uploadService := service.NewUploadService(attachmentRepo, trainingRepo, recordRepo, cfg.Store, quota, cfg.UploadLimits, cfg.Logger)
	trainingService := service.NewTrainingService(cfg.DB, trainingRepo, attachmentRepo, cfg.Store, cfg.Logger)
	recordService := service.NewRecordService(cfg.DB, recordRepo, attachmentRepo, cfg.Store, cfg.Logger)

	// Initialize handlers
	uploadHandler := handler.NewUploadHandler(uploadService, quota, cfg.Metrics, cfg.Logger)
	attachmentHandler := handler.NewAttachmentHandler(attachmentRepo, trainingRepo, recordRepo, cfg.Store, cfg.Metrics, cfg.Logger)
	trainingHandler := handler.NewTrainingHandler(trainingService, cfg.Store, cfg.Logger)
	recordHandler := handler.NewRecordHandler(recordService, cfg.Store, cfg.Logger)

	// API routes group (authenticated)
	api := r.Group(cfg.BasePath)
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		// Upload and storage accounting
		api.POST("/uploads", uploadHandler.Upload)
		api.GET("/storage/usage", uploadHandler.GetStorageUsage)

		// Attachments
		attachments := api.Group("/attachments")
		{
			attachments.GET("/:attachmentId/content", attachmentHandler.GetAttachmentContent)
			attachments.DELETE("/:attachmentId", attachmentHandler.DeleteAttachment)
		}

		// Trainings
		trainings := api.Group("/trainings")
		{
			trainings.POST("", trainingHandler.Create)
			trainings.GET("", trainingHandler.List)
			trainings.GET("/:trainingId", trainingHandler.Get)
			trainings.PUT("/:trainingId", trainingHandler.Update)
			trainings.DELETE("/:trainingId", trainingHandler.Delete)
			trainings.GET("/:trainingId/attachments", attachmentHandler.GetTrainingAttachments)
		}

		// Personal records
		records := api.Group("/records")
		{
			records.POST("", recordHandler.Create)
			records.GET("", recordHandler.List)
			records.GET("/:recordId", recordHandler.Get)
			records.PUT("/:recordId", recordHandler.Update)
			records.DELETE("/:recordId", recordHandler.Delete)
			records.GET("/:recordId/attachments", attachmentHandler.GetRecordAttachments)
		}
	}

	return r
}
