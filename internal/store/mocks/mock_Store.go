// Package mocks provides test doubles for the store.
package mocks

import (
	context "context"

	model "github.com/sells-group/dish-catalog/internal/model"
	store "github.com/sells-group/dish-catalog/internal/store"
	mock "github.com/stretchr/testify/mock"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// CreateRun provides a mock function with given fields: ctx, prefix
func (_m *MockStore) CreateRun(ctx context.Context, prefix string) (*model.SyncRun, error) {
	ret := _m.Called(ctx, prefix)

	if len(ret) == 0 {
		panic("no return value specified for CreateRun")
	}

	var r0 *model.SyncRun
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.SyncRun, error)); ok {
		return rf(ctx, prefix)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.SyncRun); ok {
		r0 = rf(ctx, prefix)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.SyncRun)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, prefix)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CompleteRun provides a mock function with given fields: ctx, runID, report, runErr
func (_m *MockStore) CompleteRun(ctx context.Context, runID string, report *model.RunReport, runErr error) error {
	ret := _m.Called(ctx, runID, report, runErr)

	if len(ret) == 0 {
		panic("no return value specified for CompleteRun")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, *model.RunReport, error) error); ok {
		r0 = rf(ctx, runID, report, runErr)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetRun provides a mock function with given fields: ctx, runID
func (_m *MockStore) GetRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	ret := _m.Called(ctx, runID)

	if len(ret) == 0 {
		panic("no return value specified for GetRun")
	}

	var r0 *model.SyncRun
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.SyncRun, error)); ok {
		return rf(ctx, runID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.SyncRun); ok {
		r0 = rf(ctx, runID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.SyncRun)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, runID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListRuns provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.SyncRun, error) {
	ret := _m.Called(ctx, filter)

	if len(ret) == 0 {
		panic("no return value specified for ListRuns")
	}

	var r0 []model.SyncRun
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, store.RunFilter) ([]model.SyncRun, error)); ok {
		return rf(ctx, filter)
	}
	if rf, ok := ret.Get(0).(func(context.Context, store.RunFilter) []model.SyncRun); ok {
		r0 = rf(ctx, filter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.SyncRun)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, store.RunFilter) error); ok {
		r1 = rf(ctx, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpsertDishes provides a mock function with given fields: ctx, runID, dishes
func (_m *MockStore) UpsertDishes(ctx context.Context, runID string, dishes []*model.DishRecord) (int64, error) {
	ret := _m.Called(ctx, runID, dishes)

	if len(ret) == 0 {
		panic("no return value specified for UpsertDishes")
	}

	var r0 int64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []*model.DishRecord) (int64, error)); ok {
		return rf(ctx, runID, dishes)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, []*model.DishRecord) int64); ok {
		r0 = rf(ctx, runID, dishes)
	} else {
		r0 = ret.Get(0).(int64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, []*model.DishRecord) error); ok {
		r1 = rf(ctx, runID, dishes)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DeleteDishes provides a mock function with given fields: ctx, keys
func (_m *MockStore) DeleteDishes(ctx context.Context, keys []model.DishKey) (int64, error) {
	ret := _m.Called(ctx, keys)

	if len(ret) == 0 {
		panic("no return value specified for DeleteDishes")
	}

	var r0 int64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, []model.DishKey) (int64, error)); ok {
		return rf(ctx, keys)
	}
	if rf, ok := ret.Get(0).(func(context.Context, []model.DishKey) int64); ok {
		r0 = rf(ctx, keys)
	} else {
		r0 = ret.Get(0).(int64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, []model.DishKey) error); ok {
		r1 = rf(ctx, keys)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListDishes provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListDishes(ctx context.Context, filter store.DishFilter) ([]*model.DishRecord, error) {
	ret := _m.Called(ctx, filter)

	if len(ret) == 0 {
		panic("no return value specified for ListDishes")
	}

	var r0 []*model.DishRecord
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, store.DishFilter) ([]*model.DishRecord, error)); ok {
		return rf(ctx, filter)
	}
	if rf, ok := ret.Get(0).(func(context.Context, store.DishFilter) []*model.DishRecord); ok {
		r0 = rf(ctx, filter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*model.DishRecord)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, store.DishFilter) error); ok {
		r1 = rf(ctx, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetDish provides a mock function with given fields: ctx, key
func (_m *MockStore) GetDish(ctx context.Context, key model.DishKey) (*model.DishRecord, error) {
	ret := _m.Called(ctx, key)

	if len(ret) == 0 {
		panic("no return value specified for GetDish")
	}

	var r0 *model.DishRecord
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.DishKey) (*model.DishRecord, error)); ok {
		return rf(ctx, key)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.DishKey) *model.DishRecord); ok {
		r0 = rf(ctx, key)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.DishRecord)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.DishKey) error); ok {
		r1 = rf(ctx, key)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockStore creates a new instance of MockStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	mock := &MockStore{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

var _ store.Store = (*MockStore)(nil)
