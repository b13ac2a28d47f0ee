// Package managers contains the stateless building blocks of the account core: credential hashing,
// session tokens, authorization lookups, outgoing mail and database access.
package managers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"account-core/internal/config"
	"account-core/internal/goerrors"
)

const sendTimeout = 5 * time.Second

// MailMgr is the notification sender of the account core.
type MailMgr interface {
	Send(ctx context.Context, from string, to, cc []string, subject, text, html string) error
	SendActivationMail(ctx context.Context, email, activationURL string) error
	SendPasswordResetMail(ctx context.Context, email, resetURL string) error
}

// mailSender is the part of the Mailgun client the manager depends on.
type mailSender interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailManager sends mails through Mailgun and formats them with Hermes.
// Outside production every mail is logged and dropped.
type MailManager struct {
	hermes     *hermes.Hermes
	sender     mailSender
	from       string
	production bool
}

// NewMailManager creates a MailManager from the mail section of the configuration.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	if !cfg.IsProduction() {
		log.Info("Running in development mode, mails will not be sent to users")
	}

	mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunEU {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}

	mm := newMailManager(mg, cfg.ContactEmail, cfg.BaseWebClientURL, cfg.IsProduction())
	log.Info("Initialized mail manager")
	return mm
}

func newMailManager(sender mailSender, from, productLink string, production bool) *MailManager {
	return &MailManager{
		hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Account Core",
				Link:        productLink,
				Copyright:   "Account Core",
				TroubleText: "If you're having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		sender:     sender,
		from:       from,
		production: production,
	}
}

// Send delivers a single mail. Delivery failures are reported as goerrors.ErrDependencyFailure.
func (mm *MailManager) Send(ctx context.Context, from string, to, cc []string, subject, text, html string) error {
	if len(to) == 0 {
		return errors.New("mail has no recipients")
	}

	if !mm.production {
		log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Skipping mail in development mode")
		return nil
	}

	message := mm.sender.NewMessage(from, subject, text, to...)
	if html != "" {
		message.SetHtml(html)
	}
	for _, recipient := range cc {
		message.AddCC(recipient)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, _, err := mm.sender.Send(ctx, message); err != nil {
		log.Warn("Error sending mail: ", err)
		return fmt.Errorf("%w: send mail: %v", goerrors.ErrDependencyFailure, err)
	}
	log.Debug("Mail sent to ", to)

	return nil
}

// SendActivationMail sends the link that activates a freshly registered account.
func (mm *MailManager) SendActivationMail(ctx context.Context, email, activationURL string) error {
	body := hermes.Email{
		Body: hermes.Body{
			Name: email,
			Intros: []string{
				"Welcome! We're very excited to have you on board.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To activate your account, please click here:",
					Button: hermes.Button{
						Text: "Activate your account",
						Link: activationURL,
					},
				},
			},
			Outros: []string{
				"If you did not create an account, no further action is required.",
			},
		},
	}

	return mm.sendFormatted(ctx, email, "Activate your account", body)
}

// SendPasswordResetMail sends the link that completes a password reset.
func (mm *MailManager) SendPasswordResetMail(ctx context.Context, email, resetURL string) error {
	body := hermes.Email{
		Body: hermes.Body{
			Name: email,
			Intros: []string{
				"You have received this email because a password reset request for your account was received.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to choose a new password:",
					Button: hermes.Button{
						Color: "#DC4D2F",
						Text:  "Reset your password",
						Link:  resetURL,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required on your part.",
			},
		},
	}

	return mm.sendFormatted(ctx, email, "Reset your password", body)
}

func (mm *MailManager) sendFormatted(ctx context.Context, email, subject string, body hermes.Email) error {
	html, err := mm.hermes.GenerateHTML(body)
	if err != nil {
		return fmt.Errorf("generate mail html: %w", err)
	}
	text, err := mm.hermes.GeneratePlainText(body)
	if err != nil {
		return fmt.Errorf("generate mail text: %w", err)
	}

	return mm.Send(ctx, mm.from, []string{email}, nil, subject, text, html)
}
