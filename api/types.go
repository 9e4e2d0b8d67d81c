package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// maxJSONBodyBytes bounds authentication request bodies.
const maxJSONBodyBytes = 64 << 10

// NonceRequest asks for a login challenge for a wallet.
type NonceRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// Validate checks the wallet address format.
func (r *NonceRequest) Validate() error {
	if r.WalletAddress == "" {
		return fmt.Errorf("%w: walletAddress is required", interfaces.ErrValidation)
	}
	if !interfaces.IsValidWalletAddress(r.WalletAddress) {
		return fmt.Errorf("%w: invalid Ethereum address", interfaces.ErrValidation)
	}
	return nil
}

// NonceResponse carries the challenge nonce.
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// VerifyRequest submits a signed challenge.
type VerifyRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Nonce         string `json:"nonce"`
}

// Validate checks that all fields are present and the address is well formed.
func (r *VerifyRequest) Validate() error {
	var missing []string
	if r.WalletAddress == "" {
		missing = append(missing, "walletAddress")
	}
	if r.Signature == "" {
		missing = append(missing, "signature")
	}
	if r.Nonce == "" {
		missing = append(missing, "nonce")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", interfaces.ErrValidation, strings.Join(missing, ", "))
	}
	if !interfaces.IsValidWalletAddress(r.WalletAddress) {
		return fmt.Errorf("%w: invalid Ethereum address", interfaces.ErrValidation)
	}
	return nil
}

// VerifyResponse carries the session credential. IsAdmin is informational
// only; admin routes re-check the flag server side on every request.
type VerifyResponse struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"isAdmin"`
}

// DeleteResponse acknowledges a file deletion.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadMetadata is stored as the audit metadata of an upload.
type UploadMetadata struct {
	Filename string `json:"filename"`
	CID      string `json:"cid"`
}

// DeleteMetadata is stored as the audit metadata of a deletion.
type DeleteMetadata struct {
	Filename string `json:"filename"`
}

// Validator is implemented by request bodies.
type Validator interface {
	Validate() error
}

// DecodeRequest strictly decodes a JSON body into v and validates it.
// Unknown fields, trailing data and oversized bodies are rejected with
// ErrValidation.
func DecodeRequest(body io.Reader, v Validator) error {
	data, err := io.ReadAll(io.LimitReader(body, maxJSONBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: failed to read request body", interfaces.ErrValidation)
	}
	if len(data) > maxJSONBodyBytes {
		return fmt.Errorf("%w: request body too large", interfaces.ErrValidation)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", interfaces.ErrValidation, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request body: unexpected trailing data", interfaces.ErrValidation)
	}

	return v.Validate()
}
