package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/pkg/common"
	"pantry-chef/internal/pkg/fallback"
	"pantry-chef/internal/repository/pantry"

	"go.uber.org/zap"
)

const (
	defaultQuantity = "1"
	schemaVersion   = "1.0"
)

// ErrParserUnavailable 沒有設定視覺模型或候選清單為空
var ErrParserUnavailable = errors.New("receipt parser is not configured")

// PantryWriter 新增食材庫存列
type PantryWriter interface {
	Create(ctx context.Context, in pantry.NewItem) (*pantry.Item, error)
}

// ParseError 所有候選模型失敗，或遇到換模型也無法解決的錯誤。
// 兩種情況的訊息格式相同，Aborted 只用於日誌
type ParseError struct {
	Provider string
	Tried    []string
	Last     error
	Aborted  bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("All %s model candidates failed (tried: %s). Last error: %v",
		providerLabel(e.Provider), strings.Join(e.Tried, ", "), e.Last)
}

func (e *ParseError) Unwrap() error {
	return e.Last
}

// ParseResult 成功解析的結果
type ParseResult struct {
	Items   []string
	Model   string
	RawText string
}

// IngestResult 解析並寫入庫存後的結果
type IngestResult struct {
	Record    *Record
	Persisted int
	TimingMs  int64
}

// Meta 回應中的 meta 欄位
type Meta struct {
	Count         int    `json:"count"`
	SchemaVersion string `json:"schemaVersion"`
	Strategy      string `json:"strategy"`
	TimingMs      int64  `json:"timingMs,omitempty"`
	Model         string `json:"model,omitempty"`
	Persisted     *int   `json:"persisted,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// Service 收據解析流程：依序嘗試候選模型、解析 JSON、寫入食材庫存、保存紀錄
type Service struct {
	model      provider.VisionModel
	candidates []string
	pantry     PantryWriter
	store      Store
	includeRaw bool

	seq uint64
	now func() time.Time
}

// NewService 創建收據服務；model 為 nil 時 Parse 回傳 ErrParserUnavailable
func NewService(model provider.VisionModel, candidates []string, pantryWriter PantryWriter, store Store, includeRaw bool) *Service {
	return &Service{
		model:      model,
		candidates: append([]string(nil), candidates...),
		pantry:     pantryWriter,
		store:      store,
		includeRaw: includeRaw,
		now:        time.Now,
	}
}

// Strategy 目前使用的解析供應商
func (s *Service) Strategy() string {
	if s.model == nil {
		return "none"
	}
	return s.model.Name()
}

// Candidates 候選模型（複本）
func (s *Service) Candidates() []string {
	return append([]string(nil), s.candidates...)
}

// Parse 依序嘗試候選模型；模型不存在時換下一個，其他錯誤立即中止
func (s *Service) Parse(ctx context.Context, image []byte, mimeType string) (*ParseResult, error) {
	if s.model == nil || len(s.candidates) == 0 {
		return nil, ErrParserUnavailable
	}

	name := s.model.Name()
	label := providerLabel(name)

	attempts := make([]fallback.Attempt[*ParseResult], len(s.candidates))
	for i, model := range s.candidates {
		attempts[i] = fallback.Attempt[*ParseResult]{
			Name: model,
			Run: func(ctx context.Context) (*ParseResult, error) {
				text, err := s.model.GenerateFromImage(ctx, provider.ImageRequest{
					Model:    model,
					Prompt:   ExtractionPrompt,
					Image:    image,
					MimeType: mimeType,
				})
				if err != nil {
					return nil, err
				}

				items, err := ParseModelOutput(text)
				switch {
				case errors.Is(err, ErrNoJSON):
					return nil, fmt.Errorf("%s did not return JSON for model %s", label, model)
				case err != nil:
					return nil, fmt.Errorf("failed to parse JSON from %s output for model %s", label, model)
				}
				return &ParseResult{Items: items, Model: model, RawText: text}, nil
			},
		}
	}

	res, err := fallback.Run(ctx, attempts, classifyModelError)
	if err != nil {
		var ex *fallback.ExhaustedError
		if errors.As(err, &ex) {
			perr := &ParseError{Provider: name, Tried: ex.Tried(), Last: ex.Last(), Aborted: ex.Aborted}
			common.LogError("Receipt parsing failed",
				zap.String("provider", name),
				zap.Strings("tried", perr.Tried),
				zap.Bool("aborted", perr.Aborted),
				zap.Error(perr.Last),
			)
			return nil, perr
		}
		return nil, err
	}

	for _, f := range res.Failures {
		common.LogWarn("Receipt model candidate unavailable",
			zap.String("model", f.Name),
			zap.Error(f.Err),
		)
	}
	common.LogInfo("Receipt parsed",
		zap.String("provider", name),
		zap.String("model", res.Name),
		zap.Int("items", len(res.Value.Items)),
	)
	return res.Value, nil
}

// Ingest 解析收據、逐項寫入食材庫存（單項失敗只記錄），並保存收據紀錄
func (s *Service) Ingest(ctx context.Context, image []byte, mimeType string) (*IngestResult, error) {
	start := s.now()

	parsed, err := s.Parse(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	persisted := s.persist(ctx, parsed.Items)

	rec := &Record{
		ID:        s.nextID(),
		CreatedAt: s.now().UTC(),
		Items:     parsed.Items,
		Strategy:  s.Strategy(),
		Model:     parsed.Model,
	}
	if s.includeRaw {
		rec.RawText = parsed.RawText
	}

	if s.store != nil {
		if err := s.store.Put(ctx, rec); err != nil {
			common.LogWarn("Failed to store receipt record", zap.String("receipt_id", rec.ID), zap.Error(err))
		}
	}

	return &IngestResult{
		Record:    rec,
		Persisted: persisted,
		TimingMs:  s.now().Sub(start).Milliseconds(),
	}, nil
}

// Get 讀取收據紀錄
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if s.store == nil {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) persist(ctx context.Context, items []string) int {
	if s.pantry == nil {
		return 0
	}

	count := 0
	for _, name := range items {
		if _, err := s.pantry.Create(ctx, pantry.NewItem{Name: name, Quantity: defaultQuantity}); err != nil {
			common.LogWarn("Failed to insert pantry item",
				zap.String("item", name),
				zap.Error(err),
			)
			continue
		}
		count++
	}
	return count
}

// nextID r_<unix 毫秒>_<序號>
func (s *Service) nextID() string {
	n := atomic.AddUint64(&s.seq, 1)
	return fmt.Sprintf("r_%d_%d", s.now().UnixMilli(), n)
}

// NewMeta 組合回應 meta
func NewMeta(rec *Record) Meta {
	return Meta{
		Count:         len(rec.Items),
		SchemaVersion: schemaVersion,
		Strategy:      rec.Strategy,
		Model:         rec.Model,
	}
}

func classifyModelError(err error) fallback.Decision {
	if provider.Classify(err) == provider.OutcomeNotFound {
		return fallback.Continue
	}
	return fallback.Abort
}

func providerLabel(name string) string {
	switch name {
	case "gemini":
		return "Gemini"
	case "openrouter":
		return "OpenRouter"
	case "":
		return "Vision"
	default:
		return name
	}
}
