package account

import (
	"context"
	"log/slog"
	"net/url"
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, userName, resetURL string) error
}

// LogMailer writes reset links to the log instead of sending mail. It is the
// default until an SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a LogMailer writing to logger, or slog.Default.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, userName, resetURL string) error {
	m.logger.InfoContext(ctx, "password reset requested",
		slog.String("to", to),
		slog.String("user_name", userName),
		slog.String("reset_url", resetURL),
	)
	return nil
}

// resetLink appends the email and token to base as query parameters.
func resetLink(base, email, token string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		u = &url.URL{Path: "/reset-password"}
	}
	q := u.Query()
	q.Set("email", email)
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
