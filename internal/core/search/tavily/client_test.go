package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pantry-chef/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.TavilyConfig{
		APIKey:      "tvly-test",
		BaseURL:     url,
		MaxResults:  5,
		SearchDepth: "basic",
		Timeout:     2 * time.Second,
	})
}

func TestSearch_SendsRequestAndParsesResults(t *testing.T) {
	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"url":"https://allrecipes.com/a","title":"A","content":"chicken"},"junk"]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Search(context.Background(), "recipe chicken")
	require.NoError(t, err)

	assert.Equal(t, searchRequest{
		APIKey:        "tvly-test",
		Query:         "recipe chicken",
		MaxResults:    5,
		IncludeImages: true,
		SearchDepth:   "basic",
	}, got)

	assert.True(t, resp.OK)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.False(t, resp.Payload.ParseError)
	require.Len(t, resp.Payload.Results, 1)
	assert.Equal(t, "https://allrecipes.com/a", resp.Payload.Results[0].URL)
}

func TestSearch_HTTPErrorIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Empty(t, resp.Payload.Results)
}

func TestSearch_UnparseableBody(t *testing.T) {
	body := "<html>" + strings.Repeat("x", 2000) + "</html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.True(t, resp.Payload.ParseError)
	assert.True(t, strings.HasPrefix(resp.Payload.Raw, "<html>"))
	assert.Len(t, []rune(resp.Payload.Raw), rawBodyLimit+3)
}

func TestSearch_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tavily request failed")
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(config.TavilyConfig{})
	assert.Equal(t, 5, c.maxResults)
	assert.Equal(t, "basic", c.searchDepth)
	assert.Equal(t, defaultBaseURL, c.client.BaseURL)
}
