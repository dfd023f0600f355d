package search

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoUsableResults 查詢有回應，但過濾後沒有可用結果
var ErrNoUsableResults = errors.New("no usable results after filtering")

// Searcher 外部搜尋供應商
type Searcher interface {
	Search(ctx context.Context, query string) (*Response, error)
}

// Response 單次搜尋呼叫的結果；傳輸錯誤以 error 返回，不會出現在這裡
type Response struct {
	OK      bool    `json:"ok"`
	Status  int     `json:"status"`
	Payload Payload `json:"json"`
	Raw     string  `json:"raw,omitempty"`
}

// Payload 供應商回傳的內容。回應無法解析時 ParseError 為 true，Raw 保留截斷的原文
type Payload struct {
	Results    []RawResult `json:"results"`
	ParseError bool        `json:"parseError,omitempty"`
	Raw        string      `json:"raw,omitempty"`
}

// RawResult 單筆搜尋結果，所有欄位都可能缺漏
type RawResult struct {
	URL        string   `json:"url,omitempty"`
	Title      string   `json:"title,omitempty"`
	Content    string   `json:"content,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Images     []string `json:"images,omitempty"`
	RawContent string   `json:"raw_content,omitempty"`
}

// UnmarshalJSON 容錯解析：型別不符的欄位視為缺漏，images 可為字串或 {url} 物件
func (r *RawResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = RawResult{
		URL:        stringField(fields["url"]),
		Title:      stringField(fields["title"]),
		Content:    stringField(fields["content"]),
		ImageURL:   stringField(fields["image_url"]),
		RawContent: stringField(fields["raw_content"]),
		Images:     imageList(fields["images"]),
	}
	return nil
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func imageList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	var images []string
	for _, entry := range entries {
		if s := stringField(entry); s != "" {
			images = append(images, s)
			continue
		}
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil && obj.URL != "" {
			images = append(images, obj.URL)
		}
	}
	return images
}

// DecodeResults 逐筆解析 results 陣列，非物件的項目直接略過
func DecodeResults(raw json.RawMessage) []RawResult {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	results := make([]RawResult, 0, len(entries))
	for _, entry := range entries {
		var r RawResult
		if err := json.Unmarshal(entry, &r); err != nil {
			continue
		}
		results = append(results, r)
	}
	return results
}
