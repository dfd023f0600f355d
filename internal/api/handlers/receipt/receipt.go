package receipt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/ai/queue"
	"pantry-chef/internal/core/image"
	receiptService "pantry-chef/internal/core/receipt"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// formField 上傳欄位名稱
const formField = "receipt"

// Ingester 收據解析與紀錄查詢
type Ingester interface {
	Ingest(ctx context.Context, image []byte, mimeType string) (*receiptService.IngestResult, error)
	Get(ctx context.Context, id string) (*receiptService.Record, error)
	Strategy() string
	Candidates() []string
}

// UploadValidator 上傳圖片驗證
type UploadValidator interface {
	Validate(filename string, data []byte) (*image.Upload, error)
	MaxSizeBytes() int64
}

// Handler 收據路由
type Handler struct {
	ingester   Ingester
	validator  UploadValidator
	lister     provider.ModelLister
	strategies []string
}

// NewHandler 創建收據處理器；lister 為 nil 時 /models 回 503
func NewHandler(ingester Ingester, validator UploadValidator, lister provider.ModelLister, strategies []string) *Handler {
	return &Handler{ingester: ingester, validator: validator, lister: lister, strategies: strategies}
}

// ParseResponse POST /items/parse 回應
type ParseResponse struct {
	ReceiptID string              `json:"receiptId"`
	Items     []string            `json:"items"`
	Meta      receiptService.Meta `json:"meta"`
	RawText   string              `json:"rawText,omitempty"`
}

// HandleParse 上傳收據圖片，解析後寫入食材庫存
func (h *Handler) HandleParse(c *gin.Context) {
	reqID := requestid.Get(c)

	file, header, err := c.Request.FormFile(formField)
	if err != nil {
		common.LogWarn("Receipt upload missing", zap.Error(err), zap.String("request_id", reqID))
		writeError(c, common.ErrInvalidRequest.Wrap(errors.New("multipart field \"receipt\" is required")))
		return
	}
	defer file.Close()

	// 多讀一個位元組，交給 Validate 判斷是否超過上限
	data, err := io.ReadAll(io.LimitReader(file, h.validator.MaxSizeBytes()+1))
	if err != nil {
		writeError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	upload, err := h.validator.Validate(header.Filename, data)
	if err != nil {
		common.LogWarn("Receipt upload rejected",
			zap.Error(err),
			zap.String("filename", header.Filename),
			zap.String("request_id", reqID),
		)
		writeError(c, err)
		return
	}

	res, err := h.ingester.Ingest(c.Request.Context(), upload.Data, upload.MimeType)
	if err != nil {
		common.LogError("Receipt parse failed", zap.Error(err), zap.String("request_id", reqID))
		writeError(c, mapIngestError(err))
		return
	}

	meta := receiptService.NewMeta(res.Record)
	meta.TimingMs = res.TimingMs
	persisted := res.Persisted
	meta.Persisted = &persisted

	common.LogInfo("Receipt ingested",
		zap.String("receipt_id", res.Record.ID),
		zap.Int("items", len(res.Record.Items)),
		zap.Int("persisted", persisted),
		zap.String("model", res.Record.Model),
		zap.String("request_id", reqID),
	)

	c.JSON(http.StatusOK, ParseResponse{
		ReceiptID: res.Record.ID,
		Items:     nonNil(res.Record.Items),
		Meta:      meta,
		RawText:   res.Record.RawText,
	})
}

// HandleGet GET /items/:receiptId
func (h *Handler) HandleGet(c *gin.Context) {
	rec, err := h.ingester.Get(c.Request.Context(), c.Param("receiptId"))
	if err != nil {
		if errors.Is(err, receiptService.ErrNotFound) {
			writeError(c, common.ErrNotFound.Wrap(err))
			return
		}
		common.LogError("Failed to load receipt", zap.Error(err))
		writeError(c, err)
		return
	}

	meta := receiptService.NewMeta(rec)
	meta.CreatedAt = rec.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00")
	c.JSON(http.StatusOK, gin.H{
		"receiptId": rec.ID,
		"items":     nonNil(rec.Items),
		"meta":      meta,
	})
}

// compareRequest POST /items/compare
type compareRequest struct {
	Manual *[]string `json:"manual"`
	LLM    *[]string `json:"llm"`
}

// HandleCompare 比較手動輸入與模型解析的清單
func (h *Handler) HandleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Manual == nil || req.LLM == nil {
		writeError(c, common.ErrInvalidRequest.Wrap(errors.New("manual and llm must be string arrays")))
		return
	}

	cmp := receiptService.Compare(*req.Manual, *req.LLM)
	c.JSON(http.StatusOK, gin.H{
		"comparison": cmp,
		"meta": gin.H{
			"manualCount": len(common.UniqueNormalized(*req.Manual)),
			"llmCount":    len(common.UniqueNormalized(*req.LLM)),
			"agreedCount": len(cmp.Agreed),
		},
	})
}

// HandleModels GET /items/models?contains=flash
func (h *Handler) HandleModels(c *gin.Context) {
	if h.lister == nil {
		writeError(c, common.ErrServiceUnavailable.Wrap(errors.New("model listing is not configured")))
		return
	}

	models, err := h.lister.ListModels(c.Request.Context())
	if err != nil {
		common.LogError("Failed to list models", zap.Error(err))
		writeError(c, common.ErrProviderFailure.Wrap(err))
		return
	}

	needle := strings.ToLower(strings.TrimSpace(c.Query("contains")))
	out := make([]provider.ModelInfo, 0, len(models))
	for _, m := range models {
		if needle == "" ||
			strings.Contains(strings.ToLower(m.Name), needle) ||
			strings.Contains(strings.ToLower(m.DisplayName), needle) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	c.JSON(http.StatusOK, gin.H{"count": len(out), "models": out})
}

// HandleHealth GET /items/health
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"strategy":            h.ingester.Strategy(),
		"availableStrategies": h.strategies,
		"candidates":          h.ingester.Candidates(),
	})
}

func mapIngestError(err error) error {
	var perr *receiptService.ParseError
	switch {
	case errors.Is(err, receiptService.ErrParserUnavailable):
		return common.ErrServiceUnavailable.Wrap(err)
	case errors.Is(err, queue.ErrQueueFull):
		return common.ErrTooManyRequests.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	case errors.As(err, &perr):
		return common.ErrReceiptParseFailed.Wrap(err)
	default:
		return err
	}
}

func writeError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	c.JSON(ce.Status, ce.Response())
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
