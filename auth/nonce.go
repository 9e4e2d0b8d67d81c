package auth

import (
	"crypto/rand"
	"math/big"
)

// nonceRange bounds generated nonces to [0, 10^18).
var nonceRange = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// GenerateNonce returns a uniformly random decimal nonce.
func GenerateNonce() (string, error) {
	n, err := rand.Int(rand.Reader, nonceRange)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}
