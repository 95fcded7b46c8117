// Package mocks provides testify mocks for the service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/zephyr/internal/service"
	"github.com/shaharia-lab/zephyr/internal/storage"
)

// MockDispatchService is a mock implementation of service.DispatchService.
type MockDispatchService struct {
	mock.Mock
}

//nolint:revive
func (m *MockDispatchService) Emit(ctx context.Context, req service.EmitRequest) (*service.EmitResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EmitResult), args.Error(1)
}

//nolint:revive
func (m *MockDispatchService) ListListeners(ctx context.Context) ([]service.ListenerInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ListenerInfo), args.Error(1)
}

//nolint:revive
func (m *MockDispatchService) RegisterListener(ctx context.Context, req service.RegisterRequest) (*service.ListenerInfo, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListenerInfo), args.Error(1)
}

//nolint:revive
func (m *MockDispatchService) UnregisterListener(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

//nolint:revive
func (m *MockDispatchService) ListDeliveries(ctx context.Context, limit int) ([]storage.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.DeliveryLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockDispatchService) ListDeliveriesForEvent(ctx context.Context, eventID string) ([]storage.DeliveryLogEntry, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.DeliveryLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockDispatchService) Drain(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
