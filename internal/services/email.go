package services

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/sethu45/social-network/internal/config"
	"github.com/sethu45/social-network/internal/logging"
)

type EmailServiceInterface interface {
	SendFriendRequestAccepted(ctx context.Context, to, toUsername, accepterUsername string) error
}

// EmailService sends transactional mail through the configured provider.
// The "console" provider logs instead of sending and is the dev default.
type EmailService struct {
	cfg    *config.EmailConfig
	client *resend.Client
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	if cfg.Provider == "resend" {
		s.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return s
}

func (s *EmailService) SendFriendRequestAccepted(ctx context.Context, to, toUsername, accepterUsername string) error {
	subject := fmt.Sprintf("%s accepted your friend request", accepterUsername)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p><strong>%s</strong> accepted your friend request. You are now friends.</p><p><a href="%s">Open %s</a></p>`,
		toUsername, accepterUsername, s.cfg.BaseURL, s.cfg.FromName,
	)
	text := fmt.Sprintf("Hi %s,\n\n%s accepted your friend request. You are now friends.\n\n%s\n", toUsername, accepterUsername, s.cfg.BaseURL)

	return s.send(ctx, to, subject, html, text)
}

func (s *EmailService) send(ctx context.Context, to, subject, html, text string) error {
	switch s.cfg.Provider {
	case "resend":
		params := &resend.SendEmailRequest{
			From:    fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress),
			To:      []string{to},
			Subject: subject,
			Html:    html,
			Text:    text,
		}
		if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
			return fmt.Errorf("sending email via resend: %w", err)
		}
		return nil
	default:
		logging.Info("Email (console provider)", map[string]interface{}{
			"to":      to,
			"subject": subject,
			"body":    text,
		})
		return nil
	}
}
