package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions_CredentialsOnlyWhenBothSet(t *testing.T) {
	cfg := emailConfig(587, true)
	base := len(clientOptions(cfg, ModeStartTLS, time.Second))

	cfg.Username = "monitor"
	assert.Len(t, clientOptions(cfg, ModeStartTLS, time.Second), base, "username alone adds no auth")

	cfg.Password = "secret"
	assert.Len(t, clientOptions(cfg, ModeStartTLS, time.Second), base+3)
}

func TestBuildMsg(t *testing.T) {
	m, err := buildMsg(&Message{
		From:    "monitor@example.com",
		To:      []string{"sec@example.com", "ops@example.com"},
		Subject: "CVE Vulnerability Report - 2024-01-01",
		Body:    "body",
		Attachments: []Attachment{
			{Name: "2024-01-01-000005-pull6.md", Content: []byte("# report")},
		},
	})
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sec@example.com", "ops@example.com"}, rcpts)
	assert.Len(t, m.GetAttachments(), 1)
}

func TestBuildMsg_InvalidAddress(t *testing.T) {
	_, err := buildMsg(&Message{From: "not an address", To: []string{"sec@example.com"}})
	assert.Error(t, err)
}
