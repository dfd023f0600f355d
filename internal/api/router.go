package api

import (
	"time"

	"pantry-chef/internal/api/handlers/health"
	receiptHandler "pantry-chef/internal/api/handlers/receipt"
	recipeHandler "pantry-chef/internal/api/handlers/recipe"
	"pantry-chef/internal/api/middleware"
	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/image"
	"pantry-chef/internal/core/receipt"
	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求體上限：收據上限再加上 multipart 開銷
const multipartOverhead = 1 << 20

// Services 路由需要的已組裝服務
type Services struct {
	Recipes      *recipe.Service
	Receipts     *receipt.Service
	Images       *image.Service
	Models       provider.ModelLister
	DB           health.Pinger
	Queue        health.QueueStatuser
	Deduplicator *middleware.Deduplicator
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Receipt.MaxUploadBytes + multipartOverhead))
	if cfg.Server.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	healthHandler := health.NewHandler(cfg.App.Version, cfg.Tavily.APIKey, svc.DB, svc.Queue)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if svc.Deduplicator != nil {
		v1.Use(svc.Deduplicator.Middleware())
	}

	v1.GET("/health", healthHandler.HealthCheck)

	recipes := recipeHandler.NewHandler(svc.Recipes)
	recipeGroup := v1.Group("/recipes")
	{
		recipeGroup.GET("", recipes.HandleList)
		recipeGroup.POST("/generate", recipes.HandleGenerate)
	}

	receipts := receiptHandler.NewHandler(svc.Receipts, svc.Images, svc.Models, []string{"gemini", "openrouter"})
	itemGroup := v1.Group("/items")
	{
		itemGroup.POST("/parse", receipts.HandleParse)
		itemGroup.POST("/compare", receipts.HandleCompare)
		itemGroup.GET("/models", receipts.HandleModels)
		itemGroup.GET("/health", receipts.HandleHealth)
		itemGroup.GET("/:receiptId", receipts.HandleGet)
	}

	common.LogInfo("Router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("receipt_strategy", svc.Receipts.Strategy()),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
	)

	return router
}
