/*
Package httpserver implements the HTTP API of the dashboard backend.

It exposes wallet login, per-user file management and admin views under
the /api prefix, plus health and drain endpoints for load balancers.

# Authentication

A client first requests a nonce for its wallet address, signs the
challenge message with the wallet key (EIP-191 personal_sign) and submits
the signature to /api/auth/verify. A valid signature consumes the nonce
and returns a bearer token. Every verification failure is reported as the
same 401 "authentication failed" response; the real reason is only
logged and counted in metrics.

Protected routes require "Authorization: Bearer <token>". A missing
credential is rejected with 401, a bad or expired one with 403. Admin
routes additionally re-read the user from the repository and require its
admin flag.

# Files

Uploads are pinned to the configured storage backends before the file
record and its audit entry are written in one transaction. Deletion is
restricted to the owner and is audited the same way.

# Health

  - /livez reports process liveness
  - /readyz reports readiness, 503 while draining
  - /drain and /undrain toggle readiness
*/
package httpserver
