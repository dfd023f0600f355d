package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"pantry-chef/internal/core/ai/queue"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線的依賴（食材資料庫）
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueStatuser 視覺模型隊列狀態
type QueueStatuser interface {
	GetQueueStatus() *queue.Status
}

// SearchKeyStatus 搜尋金鑰診斷，只回報是否存在與長度
type SearchKeyStatus struct {
	Present bool `json:"present"`
	Length  int  `json:"length"`
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	SearchKey SearchKeyStatus        `json:"tavilyKey"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// Handler 健康檢查
type Handler struct {
	version   string
	searchKey string
	db        Pinger
	queue     QueueStatuser
}

// NewHandler 創建健康檢查處理器；db 與 queue 可為 nil
func NewHandler(version, searchKey string, db Pinger, q QueueStatuser) *Handler {
	return &Handler{version: version, searchKey: searchKey, db: db, queue: q}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		SearchKey: SearchKeyStatus{Present: h.searchKey != "", Length: len(h.searchKey)},
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
	}
	if h.queue != nil {
		resp.Queue = h.queue.GetQueueStatus()
	}

	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck 就緒檢查：資料庫可連線才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"database": "unavailable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "database": "ok"})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
