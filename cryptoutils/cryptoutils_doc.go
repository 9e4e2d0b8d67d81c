// Package cryptoutils implements wallet signature verification for the
// login challenge.
//
// Wallets sign with EIP-191 personal_sign: the message is prefixed with
// "\x19Ethereum Signed Message:\n<len>" and hashed with Keccak-256 before
// the secp256k1 signature is produced. Verification recovers the public
// key from the 65 byte [R || S || V] signature, derives the address, and
// compares it to the claimed address as 20-byte values, which makes the
// comparison case-insensitive with respect to the hex text.
//
// # Key Functions
//
//   - AuthMessage: the fixed challenge template with the nonce appended
//   - VerifySignature: pure boolean check, never returns an error
//   - RecoverAddress: the underlying recovery, used by VerifySignature
//   - SignMessage / SignAuthMessage: client side signing for the SDK and tests
//
// # Usage Example
//
//	message := cryptoutils.AuthMessage(nonce)
//	if !cryptoutils.VerifySignature(message, req.Signature, req.WalletAddress) {
//	    return interfaces.ErrInvalidSignature
//	}
package cryptoutils
