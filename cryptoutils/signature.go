package cryptoutils

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// AuthMessagePrefix is the fixed banner of the login challenge. The nonce
// is appended to it verbatim.
const AuthMessagePrefix = "Sign this message to authenticate with Web3 Dashboard.\n\nNonce: "

var (
	errSignatureLength   = errors.New("invalid signature length")
	errSignatureRecovery = errors.New("invalid signature recovery id")
)

// AuthMessage returns the exact message a wallet signs to log in with nonce.
func AuthMessage(nonce string) string {
	return AuthMessagePrefix + nonce
}

// DecodeSignature decodes a hex signature with or without the 0x prefix.
func DecodeSignature(signature string) ([]byte, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(signature, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return nil, errSignatureLength
	}
	return sig, nil
}

// RecoverAddress recovers the address that produced an EIP-191
// personal_sign signature over message. The recovery id may be encoded as
// 0/1 or as 27/28.
func RecoverAddress(message string, signature []byte) (interfaces.WalletAddress, error) {
	if len(signature) != crypto.SignatureLength {
		return interfaces.WalletAddress{}, errSignatureLength
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return interfaces.WalletAddress{}, errSignatureRecovery
	}

	pubkey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return interfaces.WalletAddress{}, fmt.Errorf("could not recover public key: %w", err)
	}

	return interfaces.WalletAddress(crypto.PubkeyToAddress(*pubkey)), nil
}

// VerifySignature reports whether signature (hex) over message recovers to
// claimedAddress. Addresses compare case-insensitively. Any malformed input
// or recovery failure yields false.
func VerifySignature(message string, signature string, claimedAddress string) bool {
	claimed, err := interfaces.NewWalletAddressFromHex(claimedAddress)
	if err != nil {
		return false
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return false
	}

	recovered, err := RecoverAddress(message, sig)
	if err != nil {
		return false
	}

	return recovered.Equal(claimed)
}

// SignMessage produces a personal_sign signature over message, with the
// recovery id encoded as 27/28 the way wallets return it.
func SignMessage(message string, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// SignAuthMessage signs the login challenge for nonce and returns the hex signature.
func SignAuthMessage(nonce string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := SignMessage(AuthMessage(nonce), key)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

// AddressOf returns the wallet address controlled by key.
func AddressOf(key *ecdsa.PrivateKey) interfaces.WalletAddress {
	return interfaces.WalletAddress(crypto.PubkeyToAddress(key.PublicKey))
}
