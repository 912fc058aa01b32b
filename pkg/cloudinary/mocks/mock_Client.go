// Package mocks provides test doubles for the cloudinary client.
package mocks

import (
	"context"

	cloudinary "github.com/sells-group/dish-catalog/pkg/cloudinary"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ListResources provides a mock function with given fields: ctx, req
func (_m *MockClient) ListResources(ctx context.Context, req cloudinary.ListRequest) (*cloudinary.ListResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for ListResources")
	}

	var r0 *cloudinary.ListResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, cloudinary.ListRequest) (*cloudinary.ListResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, cloudinary.ListRequest) *cloudinary.ListResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*cloudinary.ListResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, cloudinary.ListRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DeleteResources provides a mock function with given fields: ctx, ids
func (_m *MockClient) DeleteResources(ctx context.Context, ids []string) (*cloudinary.DeleteResponse, error) {
	ret := _m.Called(ctx, ids)

	if len(ret) == 0 {
		panic("no return value specified for DeleteResources")
	}

	var r0 *cloudinary.DeleteResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, []string) (*cloudinary.DeleteResponse, error)); ok {
		return rf(ctx, ids)
	}
	if rf, ok := ret.Get(0).(func(context.Context, []string) *cloudinary.DeleteResponse); ok {
		r0 = rf(ctx, ids)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*cloudinary.DeleteResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, []string) error); ok {
		r1 = rf(ctx, ids)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
