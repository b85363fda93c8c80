package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrymomot/fintrack/pkg/sanitizer"
)

// DevSender implements EmailSender for local development by writing each
// message to dir as <timestamp>_<tag>.{json,html,txt} instead of delivering it.
type DevSender struct {
	dir string
	now func() time.Time
}

// NewDevSender creates a sender that saves messages under dir.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

type devMessage struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
	BodyText  string `json:"body_text,omitempty"`
}

// SendEmail writes the message files.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", ErrFailedToSendEmail, err)
	}

	now := d.now()
	identifier := params.Tag
	if identifier == "" {
		identifier = params.Subject
	}
	identifier = strings.ToLower(strings.ReplaceAll(identifier, " ", "_"))
	base := now.Format("2006_01_02_150405.000000") + "_" + sanitizer.SanitizeFilename(identifier, "email")

	meta, err := json.MarshalIndent(devMessage{
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
		BodyText:  params.BodyText,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %w", ErrFailedToSendEmail, err)
	}

	files := map[string][]byte{base + ".json": meta}
	if params.BodyHTML != "" {
		files[base+".html"] = []byte(params.BodyHTML)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
			return fmt.Errorf("%w: failed to write %s: %w", ErrFailedToSendEmail, name, err)
		}
	}
	return nil
}
