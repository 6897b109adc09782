package goIdentity

import (
	"time"
)

// LoginRequest defines a public type used by goIdentity APIs.
//
// LoginRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// RegisterRequest defines a public type used by goIdentity APIs.
//
// RegisterRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// ConfirmEmailRequest carries the confirmation token a user received by
// email.
type ConfirmEmailRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// ResetPasswordRequest carries the reset token a user received by email and
// the replacement password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UserSummary is the user projection the identity API returns alongside a
// token pair.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthResult is returned by [Client.Login] and the two-factor authentication
// step. When RequiresTwoFactor is set the token fields are empty and the
// caller must complete [Client.AuthenticateTwoFactor].
type AuthResult struct {
	Succeeded         bool   `json:"succeeded"`
	Message           string `json:"message,omitempty"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor,omitempty"`

	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    int64        `json:"expiresIn,omitempty"`
	User         *UserSummary `json:"user,omitempty"`
}

// SessionInfo describes one active session of the current account.
type SessionInfo struct {
	ID           int64     `json:"id"`
	Device       string    `json:"device,omitempty"`
	IP           string    `json:"ip,omitempty"`
	UserAgent    string    `json:"userAgent,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt,omitempty"`
	Current      bool      `json:"current,omitempty"`
}

// TwoFactorSetup is returned when enabling two-factor authentication. The
// backup codes are shown exactly once; the client never persists them.
type TwoFactorSetup struct {
	Secret         string   `json:"secret,omitempty"`
	QRCode         string   `json:"qrCode,omitempty"`
	BackupCodes    []string `json:"backupCodes,omitempty"`
	RemainingCodes int      `json:"remainingCodes,omitempty"`
}

// apiEnvelope is the response wrapper the identity API uses across endpoint
// families: a succeeded flag, an optional user-displayable message, and
// whatever payload fields the operation carries.
type apiEnvelope struct {
	Succeeded    bool   `json:"succeeded"`
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
