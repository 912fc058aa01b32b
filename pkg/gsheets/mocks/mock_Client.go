// Package mocks provides test doubles for the gsheets client.
package mocks

import (
	"context"

	gsheets "github.com/sells-group/dish-catalog/pkg/gsheets"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ReadRows provides a mock function with given fields: ctx, spreadsheetID, rangeSpec
func (_m *MockClient) ReadRows(ctx context.Context, spreadsheetID string, rangeSpec string) ([][]string, error) {
	ret := _m.Called(ctx, spreadsheetID, rangeSpec)

	if len(ret) == 0 {
		panic("no return value specified for ReadRows")
	}

	var r0 [][]string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) ([][]string, error)); ok {
		return rf(ctx, spreadsheetID, rangeSpec)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) [][]string); ok {
		r0 = rf(ctx, spreadsheetID, rangeSpec)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([][]string)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, spreadsheetID, rangeSpec)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListSpreadsheets provides a mock function with given fields: ctx, folderID
func (_m *MockClient) ListSpreadsheets(ctx context.Context, folderID string) ([]gsheets.File, error) {
	ret := _m.Called(ctx, folderID)

	if len(ret) == 0 {
		panic("no return value specified for ListSpreadsheets")
	}

	var r0 []gsheets.File
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]gsheets.File, error)); ok {
		return rf(ctx, folderID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []gsheets.File); ok {
		r0 = rf(ctx, folderID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]gsheets.File)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, folderID)
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
