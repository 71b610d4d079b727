// Package notify delivers password reset notifications.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/accountd/account-service/internal/core/domain"
)

var errNoRecipient = errors.New("reset notification has no recipient address")

// LogNotifier records reset mail in the structured log instead of sending it.
// The token itself is never written; operators see who was notified and when
// the link expires.
type LogNotifier struct {
	from string
	log  zerolog.Logger
}

func NewLogNotifier(from string, log zerolog.Logger) *LogNotifier {
	return &LogNotifier{from: from, log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg domain.ResetNotification) error {
	if msg.Email == "" {
		return errNoRecipient
	}
	n.log.Info().
		Str("from", n.from).
		Str("to", msg.Email).
		Str("account_id", msg.AccountID).
		Str("username", msg.Username).
		Time("expires_at", msg.ExpiresAt).
		Msg("password reset mail queued")
	return nil
}
