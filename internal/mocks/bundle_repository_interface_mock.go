// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/bundle-service/internal/domain/model"
)

type MockBundleRepositoryInterface struct {
	mock.Mock
}

func (m *MockBundleRepositoryInterface) Get(ctx context.Context, bundleID int64) (*model.BundleDefinition, error) {
	args := m.Called(ctx, bundleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BundleDefinition), args.Error(1)
}

func (m *MockBundleRepositoryInterface) Upsert(ctx context.Context, def *model.BundleDefinition) (*model.BundleDefinition, error) {
	args := m.Called(ctx, def)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BundleDefinition), args.Error(1)
}

func (m *MockBundleRepositoryInterface) List(ctx context.Context, limit int) ([]model.BundleDefinition, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BundleDefinition), args.Error(1)
}

func (m *MockBundleRepositoryInterface) Delete(ctx context.Context, bundleID int64) error {
	args := m.Called(ctx, bundleID)
	return args.Error(0)
}
