package domain

import "time"

// ResetNotification is handed to the notifier when a password reset is
// requested. Token is the plaintext single-use reset token.
type ResetNotification struct {
	AccountID string
	Username  string
	Email     string
	Token     string
	ExpiresAt time.Time
}
