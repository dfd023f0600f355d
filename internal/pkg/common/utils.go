package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NormalizeName 統一食材名稱：去除前後空白並轉小寫
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// UniqueNormalized 正規化後去除空值與重複，保留首次出現順序，不修改輸入
func UniqueNormalized(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
