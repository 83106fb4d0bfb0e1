package auth

import (
	"context"

	"github.com/medirush/medirush-backend/pkg/logger"
)

// SMSSender delivers one-time codes to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSender writes outbound SMS to the log instead of a carrier. Used in
// dev and test environments.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds the dev SMS sender.
func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

// Send logs the message. The code itself is not logged.
func (s *LogSender) Send(ctx context.Context, phone, message string) error {
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "phone", phone)
		s.logg.Info(ctx, "sms dispatched")
	}
	return nil
}
