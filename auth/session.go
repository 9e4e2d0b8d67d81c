package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"golang.org/x/crypto/hkdf"
)

// DefaultSessionValidity is the lifetime of a session credential.
const DefaultSessionValidity = 7 * 24 * time.Hour

const (
	tokenIssuer   = "web3-dashboard"
	hkdfInfo      = "web3-dashboard session token v1"
	signingKeyLen = 32
)

// Claims carries the authenticated user id. Admin status is deliberately
// absent: it is resolved from the repository on every admin request.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// SessionIssuer mints and validates HS256 session tokens.
type SessionIssuer struct {
	key      []byte
	validity time.Duration
	now      func() time.Time
}

// NewSessionIssuer derives the HMAC key from secret with HKDF-SHA256.
// A non-positive validity selects DefaultSessionValidity.
func NewSessionIssuer(secret []byte, validity time.Duration) (*SessionIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is empty")
	}
	if validity <= 0 {
		validity = DefaultSessionValidity
	}

	key := make([]byte, signingKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("could not derive signing key: %w", err)
	}

	return &SessionIssuer{
		key:      key,
		validity: validity,
		now:      time.Now,
	}, nil
}

// Validity returns the lifetime of minted tokens.
func (s *SessionIssuer) Validity() time.Duration {
	return s.validity
}

// Mint returns a signed token for userID and its expiry time.
func (s *SessionIssuer) Mint(userID string) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate checks signature, algorithm, issuer and expiry and returns the
// claims. All failures wrap interfaces.ErrInvalidOrExpiredToken.
func (s *SessionIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidOrExpiredToken, err)
	}

	if !token.Valid || claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, interfaces.ErrInvalidOrExpiredToken
	}

	return claims, nil
}
