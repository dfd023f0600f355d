package recipe

import (
	"strings"
	"testing"

	"pantry-chef/internal/core/search"

	"github.com/stretchr/testify/assert"
)

func TestToRecipe_Defaults(t *testing.T) {
	r := ToRecipe(search.RawResult{URL: "::bad"}, 1)

	assert.Equal(t, "Recipe 2", r.Title)
	assert.Equal(t, "Delicious recipe", r.Description)
	assert.Equal(t, "Recipe Source", r.Source)
	assert.Equal(t, fallbackImages[1], r.Image)
}

func TestToRecipe_BlankTitleUsesIndex(t *testing.T) {
	r := ToRecipe(search.RawResult{URL: "https://a.com", Title: "   "}, 0)
	assert.Equal(t, "Recipe 1", r.Title)

	r = ToRecipe(search.RawResult{URL: "https://a.com", Title: "  Fried Rice "}, 0)
	assert.Equal(t, "Fried Rice", r.Title)
}

func TestToRecipe_Description(t *testing.T) {
	long := strings.Repeat("é", 200)
	r := ToRecipe(search.RawResult{URL: "https://a.com", Title: "T", Content: long}, 0)
	assert.Equal(t, strings.Repeat("é", 150)+"...", r.Description)

	short := ToRecipe(search.RawResult{URL: "https://a.com", Content: "Tasty"}, 0)
	assert.Equal(t, "Tasty...", short.Description)
}

func TestSourceFromURL(t *testing.T) {
	cases := map[string]string{
		"https://www.foodnetwork.com/recipes/x": "foodnetwork",
		"https://allrecipes.com/recipe/1":       "allrecipes",
		"https://cooking.nytimes.com/r":         "cooking",
		"not a url":                             "Recipe Source",
		"":                                      "Recipe Source",
	}
	for in, want := range cases {
		assert.Equal(t, want, SourceFromURL(in), in)
	}
}

func TestIsValidImageURL(t *testing.T) {
	valid := []string{
		"https://cdn.site.com/a/b.JPG",
		"https://cdn.site.com/a/b.webp?w=400",
		"https://images.unsplash.com/photo-123",
		"https://res.cloudinary.com/x/upload/abc",
		"https://site.com/media/image/123",
		"http://site.com/photos/9",
	}
	invalid := []string{
		"",
		"/relative/path.jpg",
		"data:image/png;base64,AAAA",
		"ftp://site.com/a.jpg",
		"https://site.com/recipe/123",
		"https://site.com/script.js",
	}
	for _, u := range valid {
		assert.True(t, IsValidImageURL(u), u)
	}
	for _, u := range invalid {
		assert.False(t, IsValidImageURL(u), u)
	}
}

func TestResolveImage_Order(t *testing.T) {
	raw := `<div><img src="https://site.com/logo"><img data-src='https://site.com/a/dish.png'></div>`

	t.Run("image_url wins", func(t *testing.T) {
		r := search.RawResult{
			ImageURL: "https://site.com/a.jpg",
			Images:   []string{"https://site.com/b.jpg"},
		}
		assert.Equal(t, "https://site.com/a.jpg", ResolveImage(r, 0))
	})

	t.Run("invalid image_url falls to images", func(t *testing.T) {
		r := search.RawResult{
			ImageURL: "https://site.com/page",
			Images:   []string{"nope", "https://site.com/b.jpg"},
		}
		assert.Equal(t, "https://site.com/b.jpg", ResolveImage(r, 0))
	})

	t.Run("raw content patterns", func(t *testing.T) {
		r := search.RawResult{RawContent: raw}
		assert.Equal(t, "https://site.com/a/dish.png", ResolveImage(r, 0))
	})

	t.Run("single quoted src", func(t *testing.T) {
		r := search.RawResult{RawContent: `<IMG class='x' src='https://site.com/c.jpeg'>`}
		assert.Equal(t, "https://site.com/c.jpeg", ResolveImage(r, 0))
	})

	t.Run("open graph", func(t *testing.T) {
		r := search.RawResult{RawContent: `<meta property="og:image" content="https://site.com/og.jpg">`}
		assert.Equal(t, "https://site.com/og.jpg", ResolveImage(r, 0))
	})

	t.Run("twitter card", func(t *testing.T) {
		r := search.RawResult{RawContent: `<meta name="twitter:image" content="https://site.com/tw.png">`}
		assert.Equal(t, "https://site.com/tw.png", ResolveImage(r, 0))
	})

	t.Run("fallback by index", func(t *testing.T) {
		r := search.RawResult{RawContent: "<p>no images</p>"}
		assert.Equal(t, fallbackImages[0], ResolveImage(r, 9))
		assert.Equal(t, fallbackImages[4], ResolveImage(r, 4))
	})
}

func TestFallbackImagesAreValid(t *testing.T) {
	assert.Len(t, fallbackImages, 9)
	for _, img := range fallbackImages {
		assert.True(t, IsValidImageURL(img), img)
	}
}

func TestMapResults(t *testing.T) {
	recipes := MapResults([]search.RawResult{
		{URL: "https://www.seriouseats.com/x", Title: "Fried Rice", Content: "rice"},
		{URL: "https://bbcgoodfood.com/y"},
	})

	assert.Equal(t, []Recipe{
		{
			Title:       "Fried Rice",
			URL:         "https://www.seriouseats.com/x",
			Image:       fallbackImages[0],
			Source:      "seriouseats",
			Description: "rice...",
		},
		{
			Title:       "Recipe 2",
			URL:         "https://bbcgoodfood.com/y",
			Image:       fallbackImages[1],
			Source:      "bbcgoodfood",
			Description: "Delicious recipe",
		},
	}, recipes)
}
