package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// MultiStorageBackend pins content on several backends for redundancy.
type MultiStorageBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

// NewMultiStorageBackend creates a new multi-storage backend.
func NewMultiStorageBackend(backends []interfaces.StorageBackend, logger *slog.Logger) *MultiStorageBackend {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStorageBackend{
		backends: backends,
		log:      logger,
	}
}

// Store pins data on every backend and returns the CID of the first
// success. Each backend reports its own unavailability from Store, so the
// cause of a total failure (for example a missing credential) is preserved
// in the returned error.
func (m *MultiStorageBackend) Store(ctx context.Context, data []byte, filename string) (interfaces.ContentID, error) {
	start := time.Now()
	var result interfaces.ContentID
	var errs []error

	for _, backend := range m.backends {
		id, err := backend.Store(ctx, data, filename)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Debug("Failed to store to backend",
				slog.String("backend_name", backend.Name()),
				"err", err)
			continue
		}

		if result == "" {
			result = id
			m.log.Info("Successfully stored content",
				slog.String("backend_name", backend.Name()),
				slog.String("cid", id.String()),
				slog.Duration("duration", time.Since(start)))
		} else if result != id {
			// Backends may chunk differently; the first CID is authoritative.
			m.log.Warn("Inconsistent CIDs from backends",
				slog.String("backend_name", backend.Name()),
				slog.String("expected_cid", result.String()),
				slog.String("actual_cid", id.String()))
		}
	}

	if result == "" {
		m.log.Error("All backends failed to store data",
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		if len(errs) == 0 {
			return "", fmt.Errorf("no storage backends configured: %w", interfaces.ErrBackendUnavailable)
		}
		return "", fmt.Errorf("all backends failed to store data: %w", errors.Join(errs...))
	}

	return result, nil
}

// Available checks if any backend is available
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this backend
func (m *MultiStorageBackend) Name() string {
	return "multi-storage"
}

// LocationURI returns the URIs of all wrapped backends.
func (m *MultiStorageBackend) LocationURI() string {
	var locations []string
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
