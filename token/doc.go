// Package token implements credential persistence and access-token claim
// inspection for the goIdentity client.
//
// # Fail-closed contract
//
// Every read degrades to "no credential" instead of failing: backend errors
// are logged and swallowed, malformed tokens decode to nil claims, and a
// token whose expiry cannot be established is always reported as expired.
// Callers never see a storage or decode error cross this boundary.
//
// # Architecture boundaries
//
// This package owns the storage key layout (access_token, refresh_token and
// the logout broadcast flag) and claim extraction. Refresh orchestration,
// request authorization, and session termination are handled by the root
// package.
//
// # What this package must NOT do
//
//   - Issue network requests to the identity API.
//   - Verify token signatures (the client is not the token audience's
//     validator; it only inspects expiry and display claims).
//   - Import goIdentity or guard (no import cycles).
package token
