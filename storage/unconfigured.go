package storage

import (
	"context"
	"fmt"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// UnconfiguredBackend stands in for a backend whose credential is missing.
// The server can start without it; every Store fails with ErrPinningNotConfigured.
type UnconfiguredBackend struct {
	locationURI string
}

// NewUnconfiguredBackend returns a placeholder for the backend at locationURI.
func NewUnconfiguredBackend(locationURI string) *UnconfiguredBackend {
	return &UnconfiguredBackend{locationURI: locationURI}
}

func (b *UnconfiguredBackend) Store(ctx context.Context, data []byte, filename string) (interfaces.ContentID, error) {
	return "", fmt.Errorf("%s: %w", b.locationURI, interfaces.ErrPinningNotConfigured)
}

func (b *UnconfiguredBackend) Available(ctx context.Context) bool {
	return false
}

func (b *UnconfiguredBackend) Name() string {
	return "unconfigured"
}

func (b *UnconfiguredBackend) LocationURI() string {
	return b.locationURI
}
