package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", fmt.Errorf("%w: invalid Ethereum address", interfaces.ErrValidation), http.StatusBadRequest, "invalid Ethereum address"},
		{"too large", interfaces.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "file exceeds maximum upload size"},
		{"no credential", interfaces.ErrAuthenticationRequired, http.StatusUnauthorized, "authentication required"},
		{"bad token", fmt.Errorf("%w: token is expired", interfaces.ErrInvalidOrExpiredToken), http.StatusForbidden, "invalid or expired token"},
		{"unknown identity", interfaces.ErrUnknownIdentity, http.StatusUnauthorized, "authentication failed"},
		{"nonce mismatch", interfaces.ErrNonceMismatch, http.StatusUnauthorized, "authentication failed"},
		{"invalid signature", interfaces.ErrInvalidSignature, http.StatusUnauthorized, "authentication failed"},
		{"not admin", interfaces.ErrAdminAccessRequired, http.StatusForbidden, "admin access required"},
		{"not owner", interfaces.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"missing", interfaces.ErrNotFound, http.StatusNotFound, "file not found"},
		{"pinning", fmt.Errorf("%w: %w", interfaces.ErrUpstreamStorage, interfaces.ErrPinningNotConfigured), http.StatusInternalServerError, "upstream storage failure"},
		{"request error", &RequestError{StatusCode: http.StatusTeapot, Err: errors.New("short and stout")}, http.StatusTeapot, "short and stout"},
		{"unexpected", errors.New("db error: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := statusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}
