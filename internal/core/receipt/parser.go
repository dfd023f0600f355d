package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"pantry-chef/internal/pkg/common"
)

var (
	// ErrNoJSON 模型輸出中找不到 {...}
	ErrNoJSON = errors.New("model output contains no JSON object")
	// ErrInvalidJSON 找到 {...} 但無法解析
	ErrInvalidJSON = errors.New("model output JSON could not be parsed")
)

// ParseModelOutput 解析模型文字輸出為食材清單。
// 先整段解析，失敗再取第一個 { 到最後一個 } 之間的內容。
// items 不是陣列時視為空清單；字串保留，數字與布林轉字串，其他型別略過。
func ParseModelOutput(text string) ([]string, error) {
	doc, err := decodeObject(text)
	if err != nil {
		block, ok := common.ExtractJSONObject(text)
		if !ok {
			return nil, ErrNoJSON
		}
		doc, err = decodeObject(block)
		if err != nil {
			return nil, ErrInvalidJSON
		}
	}

	var entries []interface{}
	if raw, ok := doc["items"]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&entries); err != nil {
			entries = nil
		}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case string:
			names = append(names, v)
		case json.Number:
			names = append(names, v.String())
		case bool:
			names = append(names, strconv.FormatBool(v))
		}
	}

	return common.UniqueNormalized(names), nil
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrInvalidJSON
	}
	return doc, nil
}
