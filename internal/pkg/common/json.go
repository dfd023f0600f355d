package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// firstObjectPattern 從第一個 { 貪婪匹配到最後一個 }
var firstObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSONObject 從模型輸出的自由文字中取出 {...} 區塊
func ExtractJSONObject(text string) (string, bool) {
	match := firstObjectPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}

// Truncate 截斷字串（以 rune 計），超過時附加 "..."
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
