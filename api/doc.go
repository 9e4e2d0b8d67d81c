/*
Package api defines the wire types and server configuration of the dashboard
backend.

Request bodies (NonceRequest, VerifyRequest) are explicit structs with a
Validate method; DecodeRequest decodes them strictly, rejecting unknown
fields. Response bodies use camelCase field names. Every error response is
an ErrorResponse.

The clients subpackage contains a Go client for the HTTP API, including the
wallet login flow.

# Endpoints

	POST   /api/auth/nonce     {walletAddress}             -> {nonce}
	POST   /api/auth/verify    {walletAddress, signature, nonce} -> {token, isAdmin}
	GET    /api/files          (session)                   -> [File]
	POST   /api/files/upload   (session, multipart "file") -> File
	DELETE /api/files/{id}     (session)                   -> {success}
	GET    /api/admin/files    (session, admin)            -> [FileWithOwner]
	GET    /api/admin/audit    (session, admin)            -> [AuditLog]
*/
package api
