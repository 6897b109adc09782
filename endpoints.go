package goIdentity

import (
	"strings"
)

// endpoints resolves identity API paths from the configured base. The
// excluded set lists the endpoint families that must never receive a bearer
// token and must never trigger refresh-on-401; the refresh endpoint itself is
// on the list, which is what prevents an infinite refresh loop.
type endpoints struct {
	base     string // BaseURL without trailing slash
	identity string // IdentityPath without trailing slash
}

func newEndpoints(cfg APIConfig) endpoints {
	return endpoints{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		identity: strings.TrimRight(cfg.IdentityPath, "/"),
	}
}

func (e endpoints) url(path string) string {
	return e.base + path
}

func (e endpoints) authentication() string { return e.identity + "/authentication" }
func (e endpoints) refreshToken() string   { return e.identity + "/refresh-token" }
func (e endpoints) revokeToken() string    { return e.identity + "/revoke-token" }
func (e endpoints) register() string       { return e.identity }
func (e endpoints) forgotPassword() string { return e.identity + "/forgot-password" }
func (e endpoints) resetPassword() string  { return e.identity + "/reset-password" }
func (e endpoints) confirmEmail() string   { return e.identity + "/confirm-email" }
func (e endpoints) resendEmailConfirmation() string {
	return e.identity + "/resend-email-confirmation"
}

func (e endpoints) sessions() string           { return e.identity + "/sessions" }
func (e endpoints) session(id string) string   { return e.identity + "/sessions/" + id }
func (e endpoints) sessionsAll() string        { return e.identity + "/sessions/all" }
func (e endpoints) twoFactor(op string) string { return e.identity + "/2fa/" + op }
func (e endpoints) twoFactorBackupCodesRegenerate() string {
	return e.twoFactor("backup-codes") + "/regenerate"
}

// excludedPrefixes returns the path prefixes that are exempt from bearer
// attachment and refresh-on-401.
func (e endpoints) excludedPrefixes() []string {
	return []string{
		e.authentication(),
		e.refreshToken(),
		e.revokeToken(),
		e.forgotPassword(),
		e.resetPassword(),
		e.confirmEmail(),
		e.resendEmailConfirmation(),
	}
}

// isExcluded matches by path prefix, not substring containment: an unrelated
// endpoint that merely contains an excluded fragment somewhere in its path
// must not be excluded. The registration root is matched exactly because
// every identity endpoint is beneath it.
func (e endpoints) isExcluded(path string) bool {
	path = normalizePath(path)
	if path == e.register() {
		return true
	}
	for _, prefix := range e.excludedPrefixes() {
		if pathHasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isSessionEndpoint reports whether path belongs to the session-management
// family, which carries the refresh token in a dedicated header.
func (e endpoints) isSessionEndpoint(path string) bool {
	return pathHasPrefix(normalizePath(path), e.sessions())
}

func normalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.TrimRight(path, "/")
}

// pathHasPrefix is a segment-aware prefix match: /v1/identity/sessions
// matches /v1/identity/sessions/42 but not /v1/identity/sessionsummary.
func pathHasPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/'
}
