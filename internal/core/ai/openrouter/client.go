package openrouter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	providerName   = "openrouter"
	defaultBaseURL = "https://openrouter.ai/api/v1"
)

// Client OpenRouter chat completions 客戶端（圖片以 data URI 傳送）
type Client struct {
	client    *resty.Client
	maxTokens int
}

// Message 消息結構，content 為文字與圖片片段
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart 文字或圖片片段
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL 圖片網址（data URI）
type ImageURL struct {
	URL string `json:"url"`
}

// Request 表示 API 請求
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error 表示 API 錯誤
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("HTTP-Referer", "https://pantry-chef.app").
		SetHeader("X-Title", "Pantry Chef")

	return &Client{client: client, maxTokens: cfg.MaxTokens}
}

// Name 供應商名稱
func (c *Client) Name() string { return providerName }

// GenerateFromImage 送出一則包含提示詞與圖片的使用者訊息
func (c *Client) GenerateFromImage(ctx context.Context, req provider.ImageRequest) (string, error) {
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(req.Image))

	body := Request{
		Model: req.Model,
		Messages: []Message{{
			Role: "user",
			Content: []ContentPart{
				{Type: "text", Text: req.Prompt},
				{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}},
			},
		}},
		MaxTokens: c.maxTokens,
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	common.LogProviderCall(providerName, req.Model, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if !resp.IsSuccess() {
		message := common.Truncate(strings.TrimSpace(resp.String()), 300)
		var apiErr Error
		if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		se := &provider.StatusError{
			Provider:   providerName,
			Model:      req.Model,
			StatusCode: resp.StatusCode(),
			Message:    message,
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			se.RetryAfter = provider.ParseRetryAfter(resp.Header().Get("Retry-After"))
		}
		return "", se
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	content := out.Choices[0].Message.Content
	common.LogDebug("OpenRouter response received",
		zap.String("model", req.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)
	return content, nil
}
