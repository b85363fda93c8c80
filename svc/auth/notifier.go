package auth

import (
	"context"
	"errors"

	"github.com/dmitrymomot/fintrack/pkg/email"
	"github.com/dmitrymomot/fintrack/pkg/email/templates"
)

// Notifier delivers a message to an address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, to, subject, body string) error

func (f NotifierFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// EmailNotifier sends messages as email, with an HTML alternative rendered from the text body.
type EmailNotifier struct {
	sender  email.EmailSender
	appName string
}

func NewEmailNotifier(sender email.EmailSender, appName string) *EmailNotifier {
	return &EmailNotifier{sender: sender, appName: appName}
}

func (n *EmailNotifier) Send(ctx context.Context, to, subject, body string) error {
	html, err := templates.Render(ctx, templates.Message(templates.MessageData{
		AppName: n.appName,
		Subject: subject,
		Body:    body,
	}))
	if err != nil {
		return errors.Join(ErrNotificationFailed, err)
	}

	if err := n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: html,
		BodyText: body,
		Tag:      "otp",
	}); err != nil {
		return errors.Join(ErrNotificationFailed, err)
	}
	return nil
}
