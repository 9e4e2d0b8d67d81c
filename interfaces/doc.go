// Package interfaces defines the core types and contracts of the dashboard
// backend, separating them from their implementations.
//
// # Identity
//
//   - WalletAddress: 20-byte Ethereum account address, compared case-insensitively
//   - User: wallet identity with its pending login nonce and admin flag
//
// # Files and audit
//
//   - File: metadata of a pinned upload, owned by exactly one user
//   - FileWithOwner: File joined with the owner's wallet address (admin view)
//   - AuditLog: append-only record of file-affecting actions
//
// # Repositories
//
//   - UserRepository: wallet to user mapping with an atomic conditional nonce clear
//   - FileRepository: file records; creation and deletion write their audit record
//     in the same transaction
//   - AuditRepository: read side of the audit log
//
// # Storage
//
//   - StorageBackend: pins bytes on a content-addressed network, returning a CID
//   - StorageBackendFactory: creates backends from location URIs
//
// # Errors
//
// Every failure mode surfaced to clients has a sentinel error in errors.go.
// Implementations wrap them with fmt.Errorf("...: %w", ...) and callers match
// them with errors.Is.
package interfaces
