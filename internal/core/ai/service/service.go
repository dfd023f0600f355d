package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/ai/queue"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 包裝視覺模型：相同圖片與提示詞直接取快取，實際呼叫前先取得隊列名額
type Service struct {
	model provider.VisionModel
	cache cache.Backend
	queue *queue.Manager
}

// NewService 創建視覺模型服務；cache 與 queue 皆可為 nil
func NewService(model provider.VisionModel, backend cache.Backend, q *queue.Manager) *Service {
	return &Service{
		model: model,
		cache: backend,
		queue: q,
	}
}

// Name 底層供應商名稱
func (s *Service) Name() string {
	return s.model.Name()
}

// GenerateFromImage 實作 provider.VisionModel
func (s *Service) GenerateFromImage(ctx context.Context, req provider.ImageRequest) (string, error) {
	key := s.cacheKey(req)

	if s.cache != nil {
		val, err := s.cache.Get(ctx, key)
		if err == nil {
			common.LogDebug("vision cache hit", zap.String("model", req.Model))
			return val, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			common.LogWarn("vision cache lookup failed", zap.String("model", req.Model), zap.Error(err))
		}
	}

	if s.queue != nil {
		release, err := s.queue.Acquire(ctx)
		if err != nil {
			return "", err
		}
		defer release()
	}

	text, err := s.model.GenerateFromImage(ctx, req)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text); err != nil {
			common.LogWarn("vision cache store failed", zap.String("model", req.Model), zap.Error(err))
		}
	}

	return text, nil
}

// cacheKey 供應商、模型、提示詞與圖片內容共同決定
func (s *Service) cacheKey(req provider.ImageRequest) string {
	h := sha256.New()
	for _, part := range []string{s.model.Name(), req.Model, req.Prompt, req.MimeType} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(req.Image)
	return "vision:" + hex.EncodeToString(h.Sum(nil))
}
