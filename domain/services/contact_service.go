package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"apploto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// contactService forwards contact form messages to the administrator mailbox
type contactService struct {
	mailer     interfaces.Mailer
	adminEmail string
}

// NewContactService creates a new contact service
func NewContactService(mailer interfaces.Mailer, adminEmail string) interfaces.ContactService {
	return &contactService{
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

// ContactUs forwards a visitor message to the administrators
func (s *contactService) ContactUs(ctx context.Context, email, message string) error {
	email = normalizeEmail(email)
	message = strings.TrimSpace(message)

	verr := NewValidationError()
	validateEmail(verr, "email", email)
	if n := utf8.RuneCountInString(message); n == 0 || n > maxMessageLength {
		verr.Add("message", fmt.Sprintf("must be between 1 and %d characters", maxMessageLength))
	}
	if err := verr.ErrOrNil(); err != nil {
		return err
	}

	err := s.mailer.Send(ctx, interfaces.MailMessage{
		To:      []string{s.adminEmail},
		ReplyTo: email,
		Subject: "New contact form message",
		Body:    fmt.Sprintf("From: %s\n\n%s", email, message),
	})
	if err != nil {
		return fmt.Errorf("failed to forward contact message: %w", err)
	}

	log.WithField("from", email).Info("Forwarded contact message")
	return nil
}
