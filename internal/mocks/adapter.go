package mocks

import (
	"context"
	"io"

	"github.com/brettbedarf/vft"
	"github.com/brettbedarf/vft/filesystem"
	"github.com/stretchr/testify/mock"
)

// MockStorageAdapter implements vft.StorageAdapter for testing across packages
type MockStorageAdapter struct {
	mock.Mock
}

func (m *MockStorageAdapter) Mount(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStorageAdapter) Unmount(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStorageAdapter) Sync(ctx context.Context, upserts []filesystem.Entry, deletes []string) error {
	return m.Called(ctx, upserts, deletes).Error(0)
}

func (m *MockStorageAdapter) Upload(ctx context.Context, inode string, r io.Reader, size int64) error {
	return m.Called(ctx, inode, r, size).Error(0)
}

func (m *MockStorageAdapter) Download(ctx context.Context, inode string) (io.ReadCloser, error) {
	args := m.Called(ctx, inode)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(context.Context, string) io.ReadCloser); ok {
		return fn(ctx, inode), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorageAdapter) History(ctx context.Context, inode string) ([]vft.Version, error) {
	args := m.Called(ctx, inode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vft.Version), args.Error(1)
}

func (m *MockStorageAdapter) Restore(ctx context.Context, inode, version string) error {
	return m.Called(ctx, inode, version).Error(0)
}

func (m *MockStorageAdapter) Info(ctx context.Context) (*vft.StorageInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vft.StorageInfo), args.Error(1)
}

var _ vft.StorageAdapter = (*MockStorageAdapter)(nil)
