package recipe

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"pantry-chef/internal/core/search"
)

const (
	descriptionLimit   = 150
	defaultDescription = "Delicious recipe"
	defaultSource      = "Recipe Source"
)

// fallbackImages 依 index 取用，讓沒有圖片的卡片看起來不重複
var fallbackImages = []string{
	"https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1621996346565-e3dbc353d2e5?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1603133872878-684f208fb84b?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1574323347407-f5e1ad6d020b?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1512621776951-a57141f2eefd?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1565958011703-44f9829ba187?w=400&h=300&fit=crop",
	"https://images.unsplash.com/photo-1567620905732-2d1ec7ab7445?w=400&h=300&fit=crop",
}

var (
	imageExtPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|webp|gif|avif|bmp|svg)([?#]|$)`)

	imageHosts = []string{
		"unsplash.com",
		"cloudinary.com",
		"imgix.net",
		"imagekit.io",
		"googleusercontent.com",
		"ggpht.com",
		"twimg.com",
		"staticflickr.com",
		"imgur.com",
		"media-amazon.com",
		"wp.com",
		"dotdashmeredith.com",
	}

	// 依序嘗試；每個 pattern 的第一個 group 是圖片網址
	rawContentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<img[^>]+src="([^"]+)"`),
		regexp.MustCompile(`(?i)<img[^>]+src='([^']+)'`),
		regexp.MustCompile(`(?i)<img[^>]+data-src=["']([^"']+)["']`),
		regexp.MustCompile(`(?i)<img[^>]+data-lazy(?:-src)?=["']([^"']+)["']`),
		regexp.MustCompile(`(?i)<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']+)["']`),
		regexp.MustCompile(`(?i)<meta[^>]+name=["']twitter:image["'][^>]+content=["']([^"']+)["']`),
	}
)

// MapResults 將過濾後的搜尋結果轉為 Recipe
func MapResults(results []search.RawResult) []Recipe {
	recipes := make([]Recipe, len(results))
	for i, r := range results {
		recipes[i] = ToRecipe(r, i)
	}
	return recipes
}

// ToRecipe 轉換單筆結果，index 從 0 開始
func ToRecipe(r search.RawResult, index int) Recipe {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = fmt.Sprintf("Recipe %d", index+1)
	}

	description := defaultDescription
	if r.Content != "" {
		runes := []rune(r.Content)
		if len(runes) > descriptionLimit {
			runes = runes[:descriptionLimit]
		}
		description = string(runes) + "..."
	}

	return Recipe{
		Title:       title,
		URL:         r.URL,
		Image:       ResolveImage(r, index),
		Source:      SourceFromURL(r.URL),
		Description: description,
	}
}

// SourceFromURL 取主機名稱去掉 www. 後的第一段，例如 foodnetwork.com → foodnetwork
func SourceFromURL(rawURL string) string {
	host, ok := search.Hostname(rawURL)
	if !ok {
		return defaultSource
	}
	host = strings.TrimPrefix(host, "www.")
	if first, _, _ := strings.Cut(host, "."); first != "" {
		return first
	}
	return defaultSource
}

// ResolveImage image_url → images[] → raw_content → 固定備用圖
func ResolveImage(r search.RawResult, index int) string {
	if IsValidImageURL(r.ImageURL) {
		return r.ImageURL
	}

	for _, img := range r.Images {
		if IsValidImageURL(img) {
			return img
		}
	}

	if r.RawContent != "" {
		for _, pattern := range rawContentPatterns {
			for _, m := range pattern.FindAllStringSubmatch(r.RawContent, -1) {
				if IsValidImageURL(m[1]) {
					return m[1]
				}
			}
		}
	}

	return FallbackImage(index)
}

// FallbackImage 依 index mod 9 取備用圖
func FallbackImage(index int) string {
	if index < 0 {
		index = -index
	}
	return fallbackImages[index%len(fallbackImages)]
}

// IsValidImageURL 必須是 http(s) 網址，且有圖片副檔名、已知圖床，或包含 image/photo 字樣
func IsValidImageURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	lower := strings.ToLower(raw)
	if imageExtPattern.MatchString(u.Path) {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range imageHosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return strings.Contains(lower, "image") || strings.Contains(lower, "photo")
}
