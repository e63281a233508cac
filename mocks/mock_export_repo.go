package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tiku/internal/domain"
)

// MockExportRepo is a mock implementation of port.ExportRepository.
type MockExportRepo struct {
	mock.Mock
}

func (m *MockExportRepo) Create(ctx context.Context, rec *domain.ExportRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockExportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExportRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportRecord), args.Error(1)
}

func (m *MockExportRepo) List(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExportRecord), args.Error(1)
}
