package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ruteri/web3-dashboard-backend/api"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// RequestError carries an explicit status code for an error that should be
// reported to the client as is.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// errorMessageAuthenticationFailed is the single message returned for any
// failed signature verification.
const errorMessageAuthenticationFailed = "authentication failed"

// statusFor maps an error onto the response status and the message shown to
// the client. Unrecognised errors become an opaque 500.
func statusFor(err error) (int, string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode, reqErr.Err.Error()
	}

	switch {
	case errors.Is(err, interfaces.ErrValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), interfaces.ErrValidation.Error()+": ")
	case errors.Is(err, interfaces.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "file exceeds maximum upload size"
	case errors.Is(err, interfaces.ErrAuthenticationRequired):
		return http.StatusUnauthorized, interfaces.ErrAuthenticationRequired.Error()
	case errors.Is(err, interfaces.ErrInvalidOrExpiredToken):
		return http.StatusForbidden, interfaces.ErrInvalidOrExpiredToken.Error()
	case interfaces.IsAuthenticationFailure(err):
		return http.StatusUnauthorized, errorMessageAuthenticationFailed
	case errors.Is(err, interfaces.ErrAdminAccessRequired):
		return http.StatusForbidden, interfaces.ErrAdminAccessRequired.Error()
	case errors.Is(err, interfaces.ErrForbidden):
		return http.StatusForbidden, interfaces.ErrForbidden.Error()
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, interfaces.ErrUpstreamStorage):
		return http.StatusInternalServerError, interfaces.ErrUpstreamStorage.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeError logs err and writes the JSON error body. Details of server
// side failures stay in the log.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, message := statusFor(err)

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "status", status, "err", err)
	} else {
		log.Debug("Request rejected", "status", status, "err", err)
	}

	writeJSON(w, log, status, api.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}
