package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailSender delivers a single transactional message.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html,omitempty"`
	BodyText string `json:"body_text,omitempty"`
	Tag      string `json:"tag,omitempty"` // Optional, for provider analytics
}

// Validate checks the recipient, subject and that at least one body is present.
func (p SendEmailParams) Validate() error {
	switch {
	case !emailRegex.MatchString(strings.TrimSpace(p.SendTo)):
		return fmt.Errorf("%w: invalid recipient address", ErrInvalidParams)
	case strings.TrimSpace(p.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	case p.BodyHTML == "" && p.BodyText == "":
		return fmt.Errorf("%w: message body is required", ErrInvalidParams)
	}
	return nil
}

// New returns the sender selected by cfg.Driver.
func New(cfg Config) (EmailSender, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverPostmark:
		return NewPostmarkClient(cfg)
	case DriverDev, "":
		if cfg.DevDir == "" {
			return nil, fmt.Errorf("%w: EMAIL_DEV_DIR is required for the dev driver", ErrInvalidConfig)
		}
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
