package interfaces

import "errors"

var (
	// ErrValidation is returned for malformed client input.
	ErrValidation = errors.New("validation error")

	// ErrPayloadTooLarge is returned when an upload exceeds the size limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrAuthenticationRequired is returned when a protected request carries no credential.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidOrExpiredToken is returned when a credential fails signature, structure or expiry checks.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrUnknownIdentity is returned when no user exists for a wallet address.
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrNonceMismatch is returned when the submitted nonce is not the user's pending nonce.
	ErrNonceMismatch = errors.New("nonce mismatch")

	// ErrInvalidSignature is returned when the signature does not recover to the claimed address.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAdminAccessRequired is returned when a non-admin requests an admin route.
	ErrAdminAccessRequired = errors.New("admin access required")

	// ErrForbidden is returned when the requester does not own the record.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamStorage is returned when the pinning service fails.
	ErrUpstreamStorage = errors.New("upstream storage failure")
)

// IsAuthenticationFailure reports whether err is one of the verification
// failures that clients must not be able to tell apart.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrUnknownIdentity) ||
		errors.Is(err, ErrNonceMismatch) ||
		errors.Is(err, ErrInvalidSignature)
}
