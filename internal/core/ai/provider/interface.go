package provider

import (
	"context"
)

// ImageRequest 一次視覺模型呼叫
type ImageRequest struct {
	Model    string
	Prompt   string
	Image    []byte
	MimeType string
}

// VisionModel 視覺語言模型供應商；回傳模型的原始文字輸出
type VisionModel interface {
	// Name 供應商名稱，例如 gemini
	Name() string

	// GenerateFromImage 以指定模型對圖片與提示詞產生文字
	GenerateFromImage(ctx context.Context, req ImageRequest) (string, error)
}

// ModelInfo 供應商可用模型
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	Description                string   `json:"description,omitempty"`
	InputTokenLimit            int      `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit           int      `json:"outputTokenLimit,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
}

// ModelLister 列出目前金鑰可用的模型
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
