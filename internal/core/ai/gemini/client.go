// Package gemini 以 REST 呼叫 Google Gemini generateContent 與模型列表
package gemini

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
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	maxModelPages  = 10
)

// Client Gemini REST 客戶端
type Client struct {
	client *resty.Client
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type listModelsResponse struct {
	Models        []provider.ModelInfo `json:"models"`
	NextPageToken string               `json:"nextPageToken"`
}

// NewClient 創建 Gemini 客戶端
func NewClient(cfg config.GeminiConfig) *Client {
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
		SetHeader("x-goog-api-key", cfg.APIKey)

	return &Client{client: client}
}

// Name 供應商名稱
func (c *Client) Name() string { return providerName }

// GenerateFromImage 呼叫 {model}:generateContent，回傳第一個候選的全部文字
func (c *Client) GenerateFromImage(ctx context.Context, req provider.ImageRequest) (string, error) {
	model := strings.TrimPrefix(req.Model, "models/")
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	body := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: req.Prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(req.Image),
				}},
			},
		}},
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/models/" + model + ":generateContent")
	common.LogProviderCall(providerName, model, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("calling gemini model %s: %w", model, err)
	}

	if !resp.IsSuccess() {
		return "", statusError(model, resp)
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("unmarshaling gemini response for model %s: %w", model, err)
	}

	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked the request for model %s: %s", model, out.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("empty response from gemini model %s: no candidates", model)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// ListModels 列出金鑰可用的模型（跟隨分頁）
func (c *Client) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	var models []provider.ModelInfo
	pageToken := ""

	for page := 0; page < maxModelPages; page++ {
		req := c.client.R().
			SetContext(ctx).
			SetQueryParam("pageSize", "1000")
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}

		resp, err := req.Get("/models")
		if err != nil {
			return nil, fmt.Errorf("listing gemini models: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, statusError("", resp)
		}

		var out listModelsResponse
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return nil, fmt.Errorf("unmarshaling gemini model list: %w", err)
		}
		models = append(models, out.Models...)

		if out.NextPageToken == "" {
			break
		}
		pageToken = out.NextPageToken
	}

	return models, nil
}

func statusError(model string, resp *resty.Response) *provider.StatusError {
	message := common.Truncate(strings.TrimSpace(resp.String()), 300)

	var apiErr apiError
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	se := &provider.StatusError{
		Provider:   providerName,
		Model:      model,
		StatusCode: resp.StatusCode(),
		Message:    message,
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		se.RetryAfter = provider.ParseRetryAfter(resp.Header().Get("Retry-After"))
	}
	return se
}
