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

	"pantry-chef/internal/api"
	"pantry-chef/internal/api/middleware"
	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/gemini"
	"pantry-chef/internal/core/ai/openrouter"
	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/ai/queue"
	aiService "pantry-chef/internal/core/ai/service"
	"pantry-chef/internal/core/image"
	"pantry-chef/internal/core/receipt"
	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/search"
	"pantry-chef/internal/core/search/tavily"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"
	"pantry-chef/internal/repository/pantry"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx := context.Background()

	// 食材庫存資料庫
	db, err := pantry.NewDB(ctx, cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open pantry database", zap.Error(err))
	}
	defer db.Close()
	pantryStore := pantry.NewStore(db)

	// Redis 只在任一功能選用時才連線
	var redisClient *redis.Client
	if (cfg.Cache.Enabled && cfg.Cache.Backend == "redis") || cfg.Receipt.Store == "redis" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			common.LogFatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// 快取後端：搜尋回應與視覺模型輸出共用
	var backend cache.Backend
	if cfg.Cache.Enabled {
		if cfg.Cache.Backend == "redis" {
			backend = cache.NewService(redisClient, cfg.App.Name+":", cfg.Cache.TTL)
		} else {
			manager := cache.NewManager(cfg.Cache)
			defer manager.Close()
			backend = manager
		}
	}

	recipeSvc := recipe.NewService(buildSearcher(cfg, backend))

	// 視覺模型：隊列限制併發，快取相同圖片
	visionQueue := queue.NewManager(cfg.Queue)
	defer visionQueue.Close()

	model, candidates, lister := buildVisionModel(cfg)
	var vision provider.VisionModel
	if model != nil {
		vision = aiService.NewService(model, backend, visionQueue)
	}

	var receiptStore receipt.Store = receipt.NewMemoryStore()
	if cfg.Receipt.Store == "redis" {
		receiptStore = receipt.NewRedisStore(redisClient)
	}
	receiptSvc := receipt.NewService(vision, candidates, pantryStore, receiptStore, cfg.Gemini.IncludeRaw)

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	defer dedup.Close()

	router := api.SetupRouter(cfg, api.Services{
		Recipes:      recipeSvc,
		Receipts:     receiptSvc,
		Images:       image.NewService(cfg.Receipt.MaxUploadBytes),
		Models:       lister,
		DB:           pantryStore,
		Queue:        visionQueue,
		Deduplicator: dedup,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.String("tavily_key", config.MaskAPIKey(cfg.Tavily.APIKey)),
			zap.String("receipt_provider", cfg.Receipt.Provider),
			zap.Strings("model_candidates", candidates),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

// buildSearcher 沒有搜尋金鑰時回傳 nil，食譜服務直接使用備用食譜
func buildSearcher(cfg *config.Config, backend cache.Backend) search.Searcher {
	if cfg.Tavily.APIKey == "" {
		common.LogWarn("TAVILY_API_KEY not set, recipe generation will use the fallback catalog")
		return nil
	}

	var s search.Searcher = tavily.NewClient(cfg.Tavily)
	if backend != nil {
		s = cache.NewSearcher(s, backend)
	}
	return s
}

// buildVisionModel 依設定選擇收據解析供應商與候選模型
func buildVisionModel(cfg *config.Config) (provider.VisionModel, []string, provider.ModelLister) {
	switch cfg.Receipt.Provider {
	case "openrouter":
		if cfg.OpenRouter.APIKey == "" {
			common.LogWarn("OPENROUTER_API_KEY not set, receipt parsing is disabled")
			return nil, nil, nil
		}
		return openrouter.NewClient(cfg.OpenRouter), []string{cfg.OpenRouter.Model}, nil
	default:
		if cfg.Gemini.APIKey == "" {
			common.LogWarn("GEMINI_API_KEY not set, receipt parsing is disabled")
			return nil, nil, nil
		}
		client := gemini.NewClient(cfg.Gemini)
		return client, receipt.BuildCandidates(cfg.Gemini.Model, receipt.DefaultModelCandidates), client
	}
}
