package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pantry-chef/internal/core/ai/provider"
)

// MockVisionModel is a mock implementation of provider.VisionModel.
type MockVisionModel struct {
	mock.Mock
}

func (m *MockVisionModel) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockVisionModel) GenerateFromImage(ctx context.Context, req provider.ImageRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockModelLister is a mock implementation of provider.ModelLister.
type MockModelLister struct {
	mock.Mock
}

func (m *MockModelLister) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.ModelInfo), args.Error(1)
}
