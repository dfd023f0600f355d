package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pantry-chef/internal/repository/pantry"
)

// MockPantryWriter is a mock implementation of receipt.PantryWriter.
type MockPantryWriter struct {
	mock.Mock
}

func (m *MockPantryWriter) Create(ctx context.Context, in pantry.NewItem) (*pantry.Item, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pantry.Item), args.Error(1)
}
