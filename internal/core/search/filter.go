package search

import (
	"net/url"
	"sort"
	"strings"
)

// MaxRankedResults 排序後保留的結果數
const MaxRankedResults = 3

// Hostname 取出小寫主機名稱，無法解析或沒有主機時返回 false
func Hostname(rawURL string) (string, bool) {
	if strings.TrimSpace(rawURL) == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return host, true
}

// IsBlockedHost 主機是封鎖網域本身或其子網域
func IsBlockedHost(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range BlockedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Score 標題加內容中出現的食材數（不分大小寫子字串比對）
func Score(r RawResult, ingredients []string) int {
	haystack := strings.ToLower(r.Title + " " + r.Content)
	score := 0
	for _, name := range ingredients {
		if name != "" && strings.Contains(haystack, name) {
			score++
		}
	}
	return score
}

// FilterAndRank 移除無法解析或被封鎖的網址，依食材命中數穩定排序後取前 MaxRankedResults 筆。
// 不修改輸入。
func FilterAndRank(results []RawResult, ingredients []string) []RawResult {
	names := NormalizeIngredients(ingredients)

	type scored struct {
		result RawResult
		score  int
	}
	kept := make([]scored, 0, len(results))
	for _, r := range results {
		host, ok := Hostname(r.URL)
		if !ok || IsBlockedHost(host) {
			continue
		}
		kept = append(kept, scored{result: r, score: Score(r, names)})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	if len(kept) > MaxRankedResults {
		kept = kept[:MaxRankedResults]
	}

	out := make([]RawResult, len(kept))
	for i, k := range kept {
		out[i] = k.result
	}
	return out
}
