package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailNotifier sends pass reminders as e-mail through the Gmail API
type GmailNotifier struct {
	gmailService *gmail.Service
	sender       *mail.Address
	logger       logger.Logger
}

// NewGmailNotifier creates a Gmail notifier authorised by tokenSource
func NewGmailNotifier(ctx context.Context, tokenSource oauth2.TokenSource, sender string, logger logger.Logger) (repository.Notifier, error) {
	return NewGmailNotifierWithOptions(ctx, sender, logger, option.WithTokenSource(tokenSource))
}

// NewGmailNotifierWithOptions creates a Gmail notifier with explicit client options
func NewGmailNotifierWithOptions(ctx context.Context, sender string, logger logger.Logger, opts ...option.ClientOption) (*GmailNotifier, error) {
	var from *mail.Address
	if sender != "" {
		addr, err := parseAddress(sender)
		if err != nil {
			return nil, fmt.Errorf("invalid sender address: %w", err)
		}
		from = addr
	}

	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GmailNotifier{
		gmailService: service,
		sender:       from,
		logger:       logger,
	}, nil
}

// Channel returns the e-mail channel
func (s *GmailNotifier) Channel() entity.NotificationChannel {
	return entity.ChannelEmail
}

// CanNotify requires a single well-formed e-mail address
func (s *GmailNotifier) CanNotify(reminder *entity.PassReminder) bool {
	_, err := parseAddress(reminder.Email)
	return err == nil
}

// Send delivers the reminder from the authorised mailbox
func (s *GmailNotifier) Send(ctx context.Context, reminder *entity.PassReminder) error {
	to, err := parseAddress(reminder.Email)
	if err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	raw := buildMessage(s.sender, to, reminder.Subject, reminder.Text)

	sent, err := s.gmailService.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send reminder mail: %w", err)
	}

	s.logger.Info("Pass reminder mailed",
		"messageId", sent.Id,
		"passId", reminder.PassID,
		"email", reminder.Email)

	return nil
}

// parseAddress accepts one bare or named address and drops the display name
func parseAddress(raw string) (*mail.Address, error) {
	if strings.ContainsAny(raw, "\r\n") {
		return nil, fmt.Errorf("address contains a line break")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return &mail.Address{Address: addr.Address}, nil
}

// buildMessage renders a plain text RFC 2822 message, base64url encoded as the Gmail API expects
func buildMessage(from, to *mail.Address, subject, body string) string {
	var b strings.Builder
	if from != nil {
		b.WriteString("From: " + from.String() + "\r\n")
	}
	b.WriteString("To: " + to.String() + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
