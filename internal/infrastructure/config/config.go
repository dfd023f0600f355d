package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Tavily      TavilyConfig     `mapstructure:"tavily"`
	Gemini      GeminiConfig     `mapstructure:"gemini"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Receipt     ReceiptConfig    `mapstructure:"receipt"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env         string `mapstructure:"env"`
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
	Name        string `mapstructure:"name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// TavilyConfig 食譜搜尋供應商
type TavilyConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxResults  int           `mapstructure:"max_results"`
	SearchDepth string        `mapstructure:"search_depth"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// GeminiConfig 收據辨識視覺模型
type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	IncludeRaw bool          `mapstructure:"include_raw"`
}

// OpenRouterConfig OpenRouter 配置（替代視覺模型供應商）
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ReceiptConfig 收據上傳與解析設定
type ReceiptConfig struct {
	Provider       string `mapstructure:"provider"`
	Store          string `mapstructure:"store"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig 食材庫存資料庫
type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	MaxOpen int    `mapstructure:"max_open"`
	MaxIdle int    `mapstructure:"max_idle"`
}

// RedisConfig Redis 連線
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig 搜尋結果快取
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig 視覺模型呼叫的併發限制
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定：預設值 → .env → 環境變數
func LoadConfig() (*Config, error) {
	// .env 可有可無
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 視覺模型覆寫值可能帶空白
	cfg.Gemini.Model = strings.TrimSpace(cfg.Gemini.Model)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fmt.Println("Loading configuration",
		"tavily_api_key:", MaskAPIKey(cfg.Tavily.APIKey),
		"gemini_api_key:", MaskAPIKey(cfg.Gemini.APIKey),
		"gemini_model:", cfg.Gemini.Model,
		"database_driver:", cfg.Database.Driver,
	)

	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"server.port":            "PORT",
		"app.frontend_url":       "FRONTEND_URL",
		"app.env":                "NODE_ENV",
		"log_level":              "LOG_LEVEL",
		"tavily.api_key":         "TAVILY_API_KEY",
		"tavily.base_url":        "TAVILY_BASE_URL",
		"gemini.api_key":         "GEMINI_API_KEY",
		"gemini.model":           "GEMINI_MODEL",
		"gemini.base_url":        "GEMINI_BASE_URL",
		"gemini.include_raw":     "INCLUDE_MODEL_RAW",
		"openrouter.api_key":     "OPENROUTER_API_KEY",
		"openrouter.model":       "OPENROUTER_MODEL",
		"receipt.provider":       "RECEIPT_PROVIDER",
		"receipt.store":          "RECEIPT_STORE",
		"database.driver":        "DATABASE_DRIVER",
		"database.dsn":           "DATABASE_URL",
		"redis.addr":             "REDIS_ADDR",
		"redis.password":         "REDIS_PASSWORD",
		"redis.db":               "REDIS_DB",
		"cache.enabled":          "CACHE_ENABLED",
		"cache.backend":          "CACHE_BACKEND",
		"queue.workers":          "VISION_WORKERS",
		"queue.max_size":         "VISION_QUEUE_SIZE",
		"rate_limit.enabled":     "RATE_LIMIT_ENABLED",
		"rate_limit.requests":    "RATE_LIMIT_REQUESTS",
		"rate_limit.window":      "RATE_LIMIT_WINDOW",
		"dedup_window":           "DEDUP_WINDOW",
		"server.request_timeout": "REQUEST_TIMEOUT",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "pantry-chef")
	v.SetDefault("app.frontend_url", "http://localhost:3000")
	v.SetDefault("log_level", "info")

	// 伺服器設定
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")

	// 搜尋供應商
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("tavily.max_results", 5)
	v.SetDefault("tavily.search_depth", "basic")
	v.SetDefault("tavily.timeout", "15s")

	// 視覺模型
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", "30s")
	v.SetDefault("gemini.include_raw", false)
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.max_tokens", 1000)
	v.SetDefault("openrouter.timeout", "30s")

	// 收據
	v.SetDefault("receipt.provider", "gemini")
	v.SetDefault("receipt.store", "memory")
	v.SetDefault("receipt.max_upload_bytes", 5*1024*1024) // 5MB

	// 資料庫
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "file:pantry.db?_foreign_keys=on")
	v.SetDefault("database.max_open", 10)
	v.SetDefault("database.max_idle", 5)

	// Redis
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl", "6h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 視覺模型併發
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 20)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
}

// Validate 驗證設定
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	switch cfg.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	switch cfg.Receipt.Provider {
	case "gemini", "openrouter":
	default:
		return fmt.Errorf("unsupported receipt provider %q", cfg.Receipt.Provider)
	}

	switch cfg.Receipt.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported receipt store %q", cfg.Receipt.Store)
	}

	if cfg.Receipt.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid receipt max upload bytes")
	}

	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "memory", "redis":
		default:
			return fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
		}
		if cfg.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if cfg.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if cfg.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if cfg.Queue.Workers <= 0 || cfg.Queue.MaxSize < 0 {
		return fmt.Errorf("invalid vision queue settings")
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
