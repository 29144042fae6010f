package services

import (
	"context"
	"log/slog"

	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/mailer"
)

type EmailService struct {
	mailer mailer.Mailer
	logger *slog.Logger
}

func NewEmailService(m mailer.Mailer, logger *slog.Logger) *EmailService {
	return &EmailService{mailer: m, logger: logger}
}

// Send delivers a single transactional email and returns the provider
// message id. Provider failures come back as an ExternalServiceError.
func (s *EmailService) Send(ctx context.Context, in validation.EmailInput) (string, error) {
	var id string
	err := callExternal("email", func() error {
		var sendErr error
		id, sendErr = s.mailer.Send(ctx, mailer.Message{
			To:      []string{in.To},
			Subject: in.Subject,
			HTML:    in.HTML,
		})
		return sendErr
	})
	if err != nil {
		s.logger.Error("email delivery failed", "to", in.To, "error", err)
		return "", err
	}
	return id, nil
}
