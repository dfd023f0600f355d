package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"pantry-chef/internal/core/search"
	"pantry-chef/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearcher_CachesSuccessfulResponses(t *testing.T) {
	m, _ := newTestManager(t, 10, time.Hour)
	next := new(mocks.MockSearcher)
	resp := &search.Response{
		OK:     true,
		Status: 200,
		Payload: search.Payload{Results: []search.RawResult{
			{URL: "https://allrecipes.com/a", Title: "A", Images: []string{"https://img.com/a.jpg"}},
		}},
	}
	next.On("Search", mock.Anything, "q").Return(resp, nil).Once()

	s := NewSearcher(next, m)

	first, err := s.Search(context.Background(), "q")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, resp, first)
	assert.Equal(t, resp.Payload.Results, second.Payload.Results)
	next.AssertExpectations(t)
}

func TestSearcher_DoesNotCacheFailures(t *testing.T) {
	m, _ := newTestManager(t, 10, time.Hour)
	next := new(mocks.MockSearcher)
	failed := &search.Response{OK: false, Status: 500}
	next.On("Search", mock.Anything, "q").Return(failed, nil).Twice()
	next.On("Search", mock.Anything, "down").Return(nil, errors.New("connection refused")).Once()

	s := NewSearcher(next, m)

	for i := 0; i < 2; i++ {
		got, err := s.Search(context.Background(), "q")
		require.NoError(t, err)
		assert.False(t, got.OK)
	}

	_, err := s.Search(context.Background(), "down")
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 0, m.GetStats()["size"])
	next.AssertExpectations(t)
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, searchKey("a"), searchKey("a"))
	assert.NotEqual(t, searchKey("a"), searchKey("b"))
	assert.Contains(t, searchKey("a"), "search:")
}
