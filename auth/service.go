// Package auth implements the wallet challenge/response login: nonce
// issuance, signature verification against the pending nonce, and session
// token minting.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/web3-dashboard-backend/cryptoutils"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// LoginResult is returned by a successful verification. IsAdmin is a UI
// hint only; the token carries no privilege claims.
type LoginResult struct {
	UserID    string
	Token     string
	IsAdmin   bool
	ExpiresAt time.Time
}

// Service runs the login protocol against a user repository.
type Service struct {
	users         interfaces.UserRepository
	sessions      *SessionIssuer
	log           *slog.Logger
	generateNonce func() (string, error)
}

// NewService creates a login service.
func NewService(users interfaces.UserRepository, sessions *SessionIssuer, log *slog.Logger) *Service {
	return &Service{
		users:         users,
		sessions:      sessions,
		log:           log,
		generateNonce: GenerateNonce,
	}
}

// Sessions returns the issuer used to mint and validate tokens.
func (s *Service) Sessions() *SessionIssuer {
	return s.sessions
}

// IssueNonce creates the user for walletAddress if needed and replaces its
// pending nonce with a fresh one. Any earlier unfinished login attempt for
// the address is invalidated.
func (s *Service) IssueNonce(ctx context.Context, walletAddress string) (string, error) {
	addr, err := interfaces.NewWalletAddressFromHex(walletAddress)
	if err != nil {
		return "", err
	}

	nonce, err := s.generateNonce()
	if err != nil {
		return "", fmt.Errorf("could not generate nonce: %w", err)
	}

	user, err := s.users.UpsertNonce(ctx, addr, nonce)
	if err != nil {
		return "", fmt.Errorf("could not store nonce: %w", err)
	}

	s.log.Debug("Issued login nonce", "userID", user.ID, "walletAddress", addr.String())
	return nonce, nil
}

// VerifyAndLogin checks that nonce is the pending nonce of walletAddress
// and that signature over the challenge recovers to walletAddress. On
// success the nonce is consumed and a session token is minted.
//
// Failures wrap ErrUnknownIdentity, ErrNonceMismatch or ErrInvalidSignature
// and leave the stored nonce untouched.
func (s *Service) VerifyAndLogin(ctx context.Context, walletAddress, signature, nonce string) (*LoginResult, error) {
	addr, err := interfaces.NewWalletAddressFromHex(walletAddress)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByWallet(ctx, addr)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, interfaces.ErrUnknownIdentity
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	if !user.HasPendingNonce(nonce) {
		return nil, interfaces.ErrNonceMismatch
	}

	if !cryptoutils.VerifySignature(cryptoutils.AuthMessage(nonce), signature, walletAddress) {
		return nil, interfaces.ErrInvalidSignature
	}

	consumed, err := s.users.ConsumeNonce(ctx, user.ID, nonce)
	if err != nil {
		return nil, fmt.Errorf("could not consume nonce: %w", err)
	}
	if !consumed {
		// A concurrent verification or a newer nonce request got there first.
		return nil, interfaces.ErrNonceMismatch
	}

	token, expiresAt, err := s.sessions.Mint(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Wallet login succeeded", "userID", user.ID, "walletAddress", addr.String())

	return &LoginResult{
		UserID:    user.ID,
		Token:     token,
		IsAdmin:   user.IsAdmin,
		ExpiresAt: expiresAt,
	}, nil
}
