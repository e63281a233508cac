package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tiku/internal/domain"
)

// MockTagRepo is a mock implementation of port.TagRepository.
type MockTagRepo struct {
	mock.Mock
}

func (m *MockTagRepo) List(ctx context.Context, limit int) ([]domain.Tag, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tag), args.Error(1)
}

func (m *MockTagRepo) Upsert(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockTagRepo) IncrementUsage(ctx context.Context, names []string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}
