package cryptoutils

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMessage(t *testing.T) {
	assert.Equal(t,
		"Sign this message to authenticate with Web3 Dashboard.\n\nNonce: 482910333",
		AuthMessage("482910333"))
}

func TestVerifySignature_RoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := AddressOf(key).String()

	signature, err := SignAuthMessage("482910333", key)
	require.NoError(t, err)

	assert.True(t, VerifySignature(AuthMessage("482910333"), signature, address))

	// Deterministic
	assert.True(t, VerifySignature(AuthMessage("482910333"), signature, address))
}

func TestVerifySignature_CaseInsensitiveAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	checksummed := AddressOf(key).String()

	signature, err := SignAuthMessage("1", key)
	require.NoError(t, err)

	lower := "0x" + strings.ToLower(checksummed[2:])
	upper := "0x" + strings.ToUpper(checksummed[2:])

	assert.True(t, VerifySignature(AuthMessage("1"), signature, lower))
	assert.True(t, VerifySignature(AuthMessage("1"), signature, upper))
	assert.True(t, VerifySignature(AuthMessage("1"), signature, checksummed))
}

func TestVerifySignature_RecoveryIDEncodings(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := AddressOf(key).String()

	sig, err := SignMessage(AuthMessage("42"), key)
	require.NoError(t, err)
	require.True(t, sig[64] == 27 || sig[64] == 28)

	// Raw 0/1 recovery id as produced by crypto.Sign
	raw := append([]byte(nil), sig...)
	raw[64] -= 27
	assert.True(t, VerifySignature(AuthMessage("42"), hexutil.Encode(raw), address))

	// Without 0x prefix
	assert.True(t, VerifySignature(AuthMessage("42"), hexutil.Encode(sig)[2:], address))

	// Out of range recovery id
	bad := append([]byte(nil), sig...)
	bad[64] = 35
	assert.False(t, VerifySignature(AuthMessage("42"), hexutil.Encode(bad), address))
}

func TestVerifySignature_TamperedSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := AddressOf(key).String()

	sig, err := SignMessage(AuthMessage("7"), key)
	require.NoError(t, err)

	// Flipping any byte of R or S must break verification.
	for i := 0; i < 64; i++ {
		tampered := append([]byte(nil), sig...)
		tampered[i] ^= 0x01
		assert.False(t, VerifySignature(AuthMessage("7"), hexutil.Encode(tampered), address), "byte %d", i)
	}
}

func TestVerifySignature_WrongMessageOrAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	signature, err := SignAuthMessage("100", key)
	require.NoError(t, err)

	assert.False(t, VerifySignature(AuthMessage("101"), signature, AddressOf(key).String()))
	assert.False(t, VerifySignature(AuthMessage("100"), signature, AddressOf(other).String()))
}

func TestVerifySignature_MalformedInput(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := AddressOf(key).String()
	signature, err := SignAuthMessage("5", key)
	require.NoError(t, err)

	tests := []struct {
		name      string
		signature string
		address   string
	}{
		{name: "empty signature", signature: "", address: address},
		{name: "non hex signature", signature: "0xzz", address: address},
		{name: "short signature", signature: signature[:40], address: address},
		{name: "long signature", signature: signature + "00", address: address},
		{name: "zero signature", signature: hexutil.Encode(make([]byte, 65)), address: address},
		{name: "malformed address", signature: signature, address: "0x1234"},
		{name: "address without prefix", signature: signature, address: address[2:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifySignature(AuthMessage("5"), tt.signature, tt.address))
		})
	}
}

func TestRecoverAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := SignMessage("hello", key)
	require.NoError(t, err)

	recovered, err := RecoverAddress("hello", sig)
	require.NoError(t, err)
	assert.Equal(t, AddressOf(key), recovered)

	_, err = RecoverAddress("hello", sig[:64])
	assert.Error(t, err)
}
