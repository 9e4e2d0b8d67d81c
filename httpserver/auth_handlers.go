package httpserver

import (
	"errors"
	"net/http"

	"github.com/ruteri/web3-dashboard-backend/api"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/ruteri/web3-dashboard-backend/metrics"
)

// HandleNonce issues a fresh login nonce for a wallet address.
func (h *Handler) HandleNonce(w http.ResponseWriter, r *http.Request) {
	var req api.NonceRequest
	if err := api.DecodeRequest(r.Body, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	nonce, err := h.auth.IssueNonce(r.Context(), req.WalletAddress)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.metrics.IncNonceIssued()
	writeJSON(w, h.log, http.StatusOK, api.NonceResponse{Nonce: nonce})
}

func loginFailureReason(err error) string {
	switch {
	case errors.Is(err, interfaces.ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, interfaces.ErrNonceMismatch):
		return "nonce_mismatch"
	case errors.Is(err, interfaces.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "error"
	}
}

// HandleVerify checks a signed challenge and returns a session token.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyRequest
	if err := api.DecodeRequest(r.Body, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := h.auth.VerifyAndLogin(r.Context(), req.WalletAddress, req.Signature, req.Nonce)
	if err != nil {
		reason := loginFailureReason(err)
		h.metrics.IncLogin(metrics.ResultFailure, reason)
		if interfaces.IsAuthenticationFailure(err) {
			h.log.Info("Wallet login rejected", "walletAddress", req.WalletAddress, "reason", reason)
		}
		writeError(w, h.log, err)
		return
	}

	h.metrics.IncLogin(metrics.ResultSuccess, "")
	writeJSON(w, h.log, http.StatusOK, api.VerifyResponse{
		Token:   result.Token,
		IsAdmin: result.IsAdmin,
	})
}
