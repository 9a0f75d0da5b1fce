package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"apploto/domain/interfaces"
	"apploto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContactService_ContactUs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		email       string
		message     string
		mailErr     error
		wantField   string
		errContains string
	}{
		{name: "forwards message", email: "Visitor@Example.com", message: "  When is the next draw?  "},
		{name: "invalid email", email: "visitor", message: "hello", wantField: "email"},
		{name: "empty message", email: "visitor@example.com", message: "   ", wantField: "message"},
		{name: "message too long", email: "visitor@example.com", message: strings.Repeat("a", 1001), wantField: "message"},
		{name: "mailer failure", email: "visitor@example.com", message: "hello", mailErr: errors.New("connection reset"), errContains: "failed to forward contact message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mailer := new(testhelpers.MockMailer)
			if tt.wantField == "" {
				mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg interfaces.MailMessage) bool {
					return len(msg.To) == 1 && msg.To[0] == "admin@apploto.test" &&
						msg.ReplyTo == strings.ToLower(strings.TrimSpace(tt.email)) &&
						strings.HasSuffix(msg.Body, strings.TrimSpace(tt.message))
				})).Return(tt.mailErr)
			}

			svc := NewContactService(mailer, "admin@apploto.test")
			err := svc.ContactUs(context.Background(), tt.email, tt.message)

			switch {
			case tt.wantField != "":
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.wantField)
				mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			case tt.errContains != "":
				assert.ErrorContains(t, err, tt.errContains)
			default:
				require.NoError(t, err)
			}
			mailer.AssertExpectations(t)
		})
	}
}
