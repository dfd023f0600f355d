// Package tavily 封裝 Tavily 搜尋 API
package tavily

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pantry-chef/internal/core/search"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.tavily.com"
	// rawBodyLimit 解析失敗時保留的原文長度
	rawBodyLimit = 500
)

// Client Tavily 搜尋客戶端
type Client struct {
	client      *resty.Client
	apiKey      string
	maxResults  int
	searchDepth string
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeImages bool   `json:"include_images"`
	SearchDepth   string `json:"search_depth"`
}

// NewClient 創建 Tavily 客戶端
func NewClient(cfg config.TavilyConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	depth := cfg.SearchDepth
	if depth == "" {
		depth = "basic"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:      client,
		apiKey:      cfg.APIKey,
		maxResults:  maxResults,
		searchDepth: depth,
	}
}

// Search 發送一次查詢。網路錯誤以 error 返回；HTTP 錯誤碼與無法解析的回應都放在 Response 中
func (c *Client) Search(ctx context.Context, query string) (*search.Response, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(searchRequest{
			APIKey:        c.apiKey,
			Query:         query,
			MaxResults:    c.maxResults,
			IncludeImages: true,
			SearchDepth:   c.searchDepth,
		}).
		Post("/search")

	common.LogProviderCall("tavily", query, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}

	body := resp.Body()
	out := &search.Response{
		OK:      resp.IsSuccess(),
		Status:  resp.StatusCode(),
		Payload: decodePayload(body),
		Raw:     common.Truncate(string(body), rawBodyLimit),
	}

	if out.Payload.ParseError {
		common.LogWarn("Tavily response is not valid JSON",
			zap.Int("status", out.Status),
			zap.String("query", query),
		)
	}

	common.LogDebug("Tavily search finished",
		zap.String("query", query),
		zap.Int("status", out.Status),
		zap.Int("results", len(out.Payload.Results)),
	)

	return out, nil
}

// decodePayload 解析回應本文；不是 JSON 物件時標記 ParseError 而不是報錯
func decodePayload(body []byte) search.Payload {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope == nil {
		return search.Payload{ParseError: true, Raw: common.Truncate(string(body), rawBodyLimit)}
	}
	return search.Payload{Results: search.DecodeResults(envelope["results"])}
}
