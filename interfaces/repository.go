package interfaces

import "context"

// UserRepository maps wallet addresses to users.
//
// Implementations must make ConsumeNonce an atomic compare-and-clear: for a
// given (userID, nonce) pair at most one call may ever return true.
type UserRepository interface {
	// GetUser returns the user with the given id, or ErrNotFound.
	GetUser(ctx context.Context, id string) (*User, error)

	// GetUserByWallet returns the user for addr, or ErrNotFound.
	GetUserByWallet(ctx context.Context, addr WalletAddress) (*User, error)

	// UpsertNonce creates the user for addr if none exists and sets its
	// pending nonce, replacing any previous one.
	UpsertNonce(ctx context.Context, addr WalletAddress, nonce string) (*User, error)

	// ConsumeNonce clears the pending nonce only if it still equals nonce.
	// It reports whether the nonce was cleared by this call.
	ConsumeNonce(ctx context.Context, userID string, nonce string) (bool, error)

	// EnsureAdmin creates the user for addr if none exists and sets its admin flag.
	EnsureAdmin(ctx context.Context, addr WalletAddress) (*User, error)
}

// FileRepository stores file records. Mutations write their audit record
// in the same transaction.
type FileRepository interface {
	// GetFile returns the file with the given id, or ErrNotFound.
	GetFile(ctx context.Context, id string) (*File, error)

	// ListFilesByUser returns the files owned by userID, newest first.
	ListFilesByUser(ctx context.Context, userID string) ([]File, error)

	// ListFilesWithOwners returns all files joined with their owner's wallet address, newest first.
	ListFilesWithOwners(ctx context.Context) ([]FileWithOwner, error)

	// CreateFile assigns the file id and upload time, persists the file and
	// appends audit with its FileID set to the new id.
	CreateFile(ctx context.Context, file File, audit AuditLog) (*File, error)

	// DeleteFile removes the file and appends audit. Returns ErrNotFound if
	// the file does not exist.
	DeleteFile(ctx context.Context, id string, audit AuditLog) error
}

// AuditRepository is the read side of the audit log.
type AuditRepository interface {
	// ListAuditLogs returns at most limit records, newest first.
	ListAuditLogs(ctx context.Context, limit int) ([]AuditLog, error)
}

// Repository is the persistence handle shared by all request handlers.
type Repository interface {
	UserRepository
	FileRepository
	AuditRepository

	Close() error
}
