package search

import (
	"fmt"
	"strings"

	"pantry-chef/internal/pkg/common"
)

const (
	// MaxIngredients 參與查詢產生的食材上限
	MaxIngredients = 8
	// MaxTripleQueries 三食材組合查詢上限
	MaxTripleQueries = 5
	// MaxPairQueries 雙食材組合查詢上限
	MaxPairQueries = 6
)

// RecipeSites 限定搜尋的食譜網站
var RecipeSites = []string{
	"allrecipes.com",
	"foodnetwork.com",
	"seriouseats.com",
	"bbcgoodfood.com",
	"epicurious.com",
	"simplyrecipes.com",
}

// BlockedDomains 不當作食譜來源的社群與影音平台
var BlockedDomains = []string{
	"instagram.com",
	"tiktok.com",
	"facebook.com",
	"pinterest.com",
	"youtube.com",
	"twitter.com",
	"x.com",
	"reddit.com",
}

var singleTemplates = []string{
	"easy %s recipe",
	"quick %s recipe",
	"healthy %s recipe",
}

// NormalizeIngredients 小寫、去空白、去重（保留首次出現順序），最多 MaxIngredients 個
func NormalizeIngredients(names []string) []string {
	unique := common.UniqueNormalized(names)
	if len(unique) > MaxIngredients {
		unique = unique[:MaxIngredients]
	}
	return unique
}

// BuildTieredQueries 由食材產生由嚴到寬的查詢序列。
// 順序：三食材組合、雙食材組合、單食材模板、不限網站的單食材查詢、全部食材合併查詢。
func BuildTieredQueries(ingredients []string) []string {
	names := NormalizeIngredients(ingredients)
	if len(names) == 0 {
		return nil
	}

	sites := siteClause()
	exclude := excludeClause()

	var queries []string
	restricted := func(terms string) string {
		return fmt.Sprintf("%s (%s) %s", terms, sites, exclude)
	}

	for _, combo := range combinations(names, 3, MaxTripleQueries) {
		queries = append(queries, restricted("recipe "+strings.Join(combo, " ")))
	}
	for _, combo := range combinations(names, 2, MaxPairQueries) {
		queries = append(queries, restricted("recipe "+strings.Join(combo, " ")))
	}

	first := names[0]
	for _, tmpl := range singleTemplates {
		queries = append(queries, restricted(fmt.Sprintf(tmpl, first)))
	}
	if len(names) > 1 {
		second := names[1]
		queries = append(queries,
			restricted(fmt.Sprintf("%s and %s recipe", first, second)),
			restricted(fmt.Sprintf("%s with %s", first, second)),
		)
	}
	queries = append(queries, fmt.Sprintf("%s recipe %s", first, exclude))

	// 最後手段：所有食材 AND 在一起，很少有結果
	queries = append(queries, fmt.Sprintf("recipe %s %s", strings.Join(names, " "), exclude))

	return dedupe(queries)
}

func siteClause() string {
	parts := make([]string, len(RecipeSites))
	for i, site := range RecipeSites {
		parts[i] = "site:" + site
	}
	return strings.Join(parts, " OR ")
}

func excludeClause() string {
	parts := make([]string, len(BlockedDomains))
	for i, domain := range BlockedDomains {
		parts[i] = "-site:" + domain
	}
	return strings.Join(parts, " ")
}

// combinations 以索引回溯列舉 C(n,k)，達到 limit 即停止
func combinations(items []string, k, limit int) [][]string {
	if k <= 0 || k > len(items) || limit <= 0 {
		return nil
	}

	var out [][]string
	current := make([]string, 0, k)

	var walk func(start int) bool
	walk = func(start int) bool {
		if len(current) == k {
			out = append(out, append([]string(nil), current...))
			return len(out) >= limit
		}
		for i := start; i < len(items); i++ {
			current = append(current, items[i])
			if walk(i + 1) {
				return true
			}
			current = current[:len(current)-1]
		}
		return false
	}
	walk(0)

	return out
}

func dedupe(queries []string) []string {
	seen := make(map[string]struct{}, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
