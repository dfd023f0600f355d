package recipe

import (
	"strings"
)

const maxCatalogMatches = 3

var catalog = []Recipe{
	{
		Title:       "Chicken and Rice Bowl",
		URL:         "https://example.com/recipe1",
		Image:       "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=400&h=300&fit=crop",
		Source:      "Food Network",
		Description: "A delicious one-pot meal with chicken and rice",
	},
	{
		Title:       "Tomato Pasta with Garlic",
		URL:         "https://example.com/recipe2",
		Image:       "https://images.unsplash.com/photo-1621996346565-e3dbc353d2e5?w=400&h=300&fit=crop",
		Source:      "AllRecipes",
		Description: "Simple pasta dish with fresh tomatoes and garlic",
	},
	{
		Title:       "Garlic Chicken Stir-Fry",
		URL:         "https://example.com/recipe3",
		Image:       "https://images.unsplash.com/photo-1603133872878-684f208fb84b?w=400&h=300&fit=crop",
		Source:      "Serious Eats",
		Description: "Quick and healthy chicken stir-fry with garlic",
	},
	{
		Title:       "Cheesy Rice Casserole",
		URL:         "https://example.com/recipe4",
		Image:       "https://images.unsplash.com/photo-1574323347407-f5e1ad6d020b?w=400&h=300&fit=crop",
		Source:      "BBC Good Food",
		Description: "Comforting rice casserole with cheese",
	},
}

// Catalog 內建備用食譜（複本）
func Catalog() []Recipe {
	return append([]Recipe(nil), catalog...)
}

// MatchCatalog 以食材比對備用食譜：標題包含食材，或食材包含標題第一個字。
// 沒有任何符合時回傳前三筆，不回傳空清單。
func MatchCatalog(ingredients []string) []Recipe {
	var matches []Recipe
	for _, r := range catalog {
		title := strings.ToLower(r.Title)
		firstWord, _, _ := strings.Cut(title, " ")
		for _, name := range ingredients {
			if name == "" {
				continue
			}
			if strings.Contains(title, name) || strings.Contains(name, firstWord) {
				matches = append(matches, r)
				break
			}
		}
		if len(matches) == maxCatalogMatches {
			break
		}
	}

	if len(matches) == 0 {
		return append([]Recipe(nil), catalog[:maxCatalogMatches]...)
	}
	return matches
}
