package storage

import (
	"context"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockStorageBackend mocks interfaces.StorageBackend
type MockStorageBackend struct {
	mock.Mock
	BackendName string
}

// Store mocks the Store method
func (m *MockStorageBackend) Store(ctx context.Context, data []byte, filename string) (interfaces.ContentID, error) {
	args := m.Called(ctx, data, filename)
	return args.Get(0).(interfaces.ContentID), args.Error(1)
}

// Available mocks the Available method
func (m *MockStorageBackend) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// Name returns the configured backend name
func (m *MockStorageBackend) Name() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

// LocationURI returns a fixed mock URI
func (m *MockStorageBackend) LocationURI() string {
	return "mock:" + m.Name()
}
