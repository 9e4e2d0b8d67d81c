package interfaces

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// walletAddressPattern is the only accepted textual form of a wallet address.
var walletAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// WalletAddress represents an Ethereum account address.
type WalletAddress [20]byte

// NewWalletAddressFromHex parses a 0x-prefixed, 40 hex character address.
// Mixed case is accepted without checksum validation.
func NewWalletAddressFromHex(addr string) (WalletAddress, error) {
	if !walletAddressPattern.MatchString(addr) {
		return WalletAddress{}, fmt.Errorf("%w: invalid Ethereum address", ErrValidation)
	}

	addrBytes, err := hex.DecodeString(addr[2:])
	if err != nil {
		return WalletAddress{}, fmt.Errorf("%w: invalid hex format: %v", ErrValidation, err)
	}

	var res WalletAddress
	copy(res[:], addrBytes)
	return res, nil
}

// IsValidWalletAddress reports whether addr matches the accepted address format.
func IsValidWalletAddress(addr string) bool {
	return walletAddressPattern.MatchString(addr)
}

// String returns the EIP-55 checksummed representation.
func (addr WalletAddress) String() string {
	return common.Address(addr).Hex()
}

// Key returns the lower-cased representation used for case-insensitive lookups.
func (addr WalletAddress) Key() string {
	return strings.ToLower(addr.String())
}

// Bytes returns the raw 20-byte address.
func (addr WalletAddress) Bytes() []byte {
	return addr[:]
}

// Equal compares two addresses for equality.
func (addr WalletAddress) Equal(other WalletAddress) bool {
	return addr == other
}

func (addr WalletAddress) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

func (addr *WalletAddress) UnmarshalText(text []byte) error {
	parsed, err := NewWalletAddressFromHex(string(text))
	if err != nil {
		return err
	}
	*addr = parsed
	return nil
}

// User is a wallet identity.
//
// Nonce is non-nil only between nonce issuance and a successful
// verification (or until overwritten by a newer nonce request).
type User struct {
	ID            string        `json:"id"`
	WalletAddress WalletAddress `json:"walletAddress"`
	Nonce         *string       `json:"-"`
	IsAdmin       bool          `json:"isAdmin"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// HasPendingNonce reports whether nonce equals the user's pending nonce.
func (u *User) HasPendingNonce(nonce string) bool {
	return u.Nonce != nil && *u.Nonce == nonce
}

// File is the metadata of an upload pinned on the storage network.
type File struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CID        string    `json:"cid"`
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"fileSize"`
	FileType   string    `json:"fileType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UnknownOwner is reported for files whose owner record cannot be resolved.
const UnknownOwner = "Unknown"

// FileWithOwner is a File joined with the wallet address of its owner.
type FileWithOwner struct {
	File
	WalletAddress string `json:"walletAddress"`
}

// AuditAction names a file-affecting action.
type AuditAction string

const (
	AuditFileUpload AuditAction = "FILE_UPLOAD"
	AuditFileDelete AuditAction = "FILE_DELETE"
)

// AuditLog is an append-only event record. Metadata, when present, is a JSON document.
type AuditLog struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Action    AuditAction `json:"action"`
	FileID    *string     `json:"fileId"`
	Timestamp time.Time   `json:"timestamp"`
	Metadata  *string     `json:"metadata"`
}
