package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pantry-chef/internal/core/search"
)

// MockSearcher is a mock implementation of search.Searcher.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) (*search.Response, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Response), args.Error(1)
}
