// Package goIdentity is a client for a remote identity service. It owns the
// bearer-token lifecycle of outgoing requests (attachment, de-duplicated
// refresh on 401, bounded retry of transient failures, and session
// termination when recovery is impossible) and exposes typed operations for
// login, registration, email confirmation, password reset, two-factor
// authentication, and session management.
//
// The package is designed for concurrent callers: Client methods are safe to
// call from multiple goroutines after initialization through [Builder.Build],
// and any number of in-flight requests hitting 401 at once coalesce into a
// single refresh network call.
//
// # Architecture boundaries
//
// goIdentity is the public surface. It exposes [Client], [Builder], [Config],
// and value types (AuthResult, SessionInfo, MetricsSnapshot, etc.). Credential
// persistence and claim decoding live in the token sub-package; navigation
// guards in guard. The remote identity API is a black box reached over an
// injected *http.Client.
//
// # What this package must NOT do
//
//   - Verify token signatures or implement any server-side identity logic.
//   - Render UI, display notifications, or perform navigation beyond calling
//     the injected [Navigator].
//   - Start more than one refresh network call at a time, ever.
package goIdentity
