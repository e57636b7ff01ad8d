// Package notify delivers out-of-band messages to customers.
package notify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// LogSender writes signup codes to the application log. It stands in for an
// email provider; codes are masked unless RevealCodes is set.
type LogSender struct {
	logger      *zap.Logger
	revealCodes bool
}

// NewLogSender creates a sender. revealCodes should only be true outside
// production, where the log is the only way to read the code.
func NewLogSender(logger *zap.Logger, revealCodes bool) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger.Named("otp"), revealCodes: revealCodes}
}

// SendOTP logs the code for email
func (s *LogSender) SendOTP(ctx context.Context, email, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if email == "" || code == "" {
		return errors.New("notify: email and code are required")
	}

	shown := code
	if !s.revealCodes {
		shown = strings.Repeat("*", len(code))
	}
	s.logger.Info("signup code issued",
		zap.String("to", maskEmail(email)),
		zap.String("name", name),
		zap.String("code", shown),
	)
	return nil
}

// maskEmail keeps the first character of the local part
func maskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
