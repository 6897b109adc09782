// Package guard evaluates route access for an identity-aware frontend. A
// guard answers one question per navigation: may this session enter this
// route, and if not, where does it go instead.
//
// # Architecture boundaries
//
// Guards are local and synchronous. They read decoded claims from the
// credential store and never call the network; the server remains the
// authority and will reject requests from a session a guard wrongly
// admitted. Guards produce a [Decision]; applying it (navigating) is the
// caller's concern, or [Apply]'s when a navigator is at hand.
//
// # What this package must NOT do
//
//   - Perform network calls or block on I/O.
//   - Mutate credentials or terminate sessions.
//   - Trust a returnUrl without the open-redirect check.
package guard
