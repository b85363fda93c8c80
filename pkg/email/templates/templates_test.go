package templates_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/email/templates"
)

func TestMessage(t *testing.T) {
	t.Parallel()
	html, err := templates.Render(context.Background(), templates.Message(templates.MessageData{
		AppName: "Fin<Track>",
		Subject: templates.OTPSubject,
		Body:    "Your code: 042042\n\nSecond <para>\nnext line\n\n\n",
	}))
	require.NoError(t, err)
	assert.Contains(t, html, "<p>Your code: 042042</p>")
	assert.Contains(t, html, "Fin&lt;Track&gt;")
	assert.Contains(t, html, "<p>Second &lt;para&gt;<br>next line</p>")
	assert.Equal(t, 2, strings.Count(html, "<p>"))
	assert.Contains(t, html, "<title>Your 2FA Code</title>")
}

func TestOTPText(t *testing.T) {
	t.Parallel()
	text := templates.OTPText(templates.OTPData{Code: "123456", TTL: 10 * time.Minute})
	assert.Contains(t, text, "Your verification code is: 123456")
	assert.Contains(t, text, "10 minutes")
}
