package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMultiStorageBackend_Available(t *testing.T) {
	tests := []struct {
		name     string
		backends []bool
		expected bool
	}{
		{
			name:     "all backends available",
			backends: []bool{true, true, true},
			expected: true,
		},
		{
			name:     "some backends available",
			backends: []bool{false, true, false},
			expected: true,
		},
		{
			name:     "no backends available",
			backends: []bool{false, false, false},
			expected: false,
		},
		{
			name:     "no backends",
			backends: []bool{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var backends []interfaces.StorageBackend
			for i, available := range tt.backends {
				mockStorage := &MockStorageBackend{BackendName: fmt.Sprintf("mock-A%x", i)}
				mockStorage.On("Available", mock.Anything).Return(available).Maybe()
				backends = append(backends, mockStorage)
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			multi := NewMultiStorageBackend(backends, logger)

			result := multi.Available(context.Background())
			assert.Equal(t, tt.expected, result)

			for _, backend := range backends {
				mockStorage := backend.(*MockStorageBackend)
				mockStorage.AssertExpectations(t)
			}
		})
	}
}

func TestMultiStorageBackend_Store(t *testing.T) {
	testID := interfaces.ContentID("bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku")
	otherID := interfaces.ContentID("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")
	testData := []byte("test data")
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.StorageBackend
		expectedID    interfaces.ContentID
		expectedError error
	}{
		{
			name: "all backends successful",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{BackendName: "mock-A"}
				mock1.On("Store", mock.Anything, testData, "a.txt").Return(testID, nil)

				mock2 := &MockStorageBackend{BackendName: "mock-B"}
				mock2.On("Store", mock.Anything, testData, "a.txt").Return(testID, nil)

				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedID: testID,
		},
		{
			name: "some backends fail",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{BackendName: "mock-A"}
				mock1.On("Store", mock.Anything, testData, "a.txt").Return(interfaces.ContentID(""), testErr)

				mock2 := &MockStorageBackend{BackendName: "mock-B"}
				mock2.On("Store", mock.Anything, testData, "a.txt").Return(testID, nil)

				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedID: testID,
		},
		{
			name: "first success wins",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{BackendName: "mock-A"}
				mock1.On("Store", mock.Anything, testData, "a.txt").Return(testID, nil)

				mock2 := &MockStorageBackend{BackendName: "mock-B"}
				mock2.On("Store", mock.Anything, testData, "a.txt").Return(otherID, nil)

				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedID: testID,
		},
		{
			name: "all backends fail",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{BackendName: "mock-A"}
				mock1.On("Store", mock.Anything, testData, "a.txt").Return(interfaces.ContentID(""), testErr)

				mock2 := &MockStorageBackend{BackendName: "mock-B"}
				mock2.On("Store", mock.Anything, testData, "a.txt").Return(interfaces.ContentID(""), interfaces.ErrBackendUnavailable)

				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedError: interfaces.ErrBackendUnavailable,
		},
		{
			name: "missing credential is reported",
			setupMocks: func() []interfaces.StorageBackend {
				return []interfaces.StorageBackend{NewUnconfiguredBackend("ipfs://pinning.example.com")}
			},
			expectedError: interfaces.ErrPinningNotConfigured,
		},
		{
			name: "no backends",
			setupMocks: func() []interfaces.StorageBackend {
				return nil
			},
			expectedError: interfaces.ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends := tt.setupMocks()
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			multi := NewMultiStorageBackend(backends, logger)

			id, err := multi.Store(context.Background(), testData, "a.txt")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedID, id)

			for _, backend := range backends {
				if m, ok := backend.(*MockStorageBackend); ok {
					m.AssertExpectations(t)
				}
			}
		})
	}
}
