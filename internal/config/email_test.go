package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEmail_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "email.json", `{
		"from": "monitor@example.com",
		"to": ["sec@example.com", "ops@example.com"],
		"smtp_server": "smtp.example.com",
		"smtp_port": 587,
		"use_tls": true,
		"username": "monitor",
		"password": "hunter2"
	}`)

	e, err := LoadEmail(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor@example.com", e.From)
	assert.Equal(t, []string{"sec@example.com", "ops@example.com"}, e.To)
	assert.Equal(t, "smtp.example.com", e.SMTPServer)
	assert.Equal(t, 587, e.SMTPPort)
	assert.True(t, e.UseTLS)
	assert.True(t, e.HasCredentials())
}

func TestLoadEmail_OptionalFieldsDefault(t *testing.T) {
	path := writeFile(t, t.TempDir(), "email.json", `{
		"from": "monitor@example.com",
		"to": ["sec@example.com"],
		"smtp_server": "smtp.example.com",
		"smtp_port": 25
	}`)

	e, err := LoadEmail(path)
	require.NoError(t, err)

	assert.False(t, e.UseTLS)
	assert.False(t, e.HasCredentials())
}

func TestLoadEmail_NoExtensionParsedAsJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "email", `{
		"from": "a@example.com", "to": ["b@example.com"],
		"smtp_server": "smtp.example.com", "smtp_port": 465
	}`)

	e, err := LoadEmail(path)
	require.NoError(t, err)
	assert.Equal(t, 465, e.SMTPPort)
}

func TestLoadEmail_PasswordFromEnv(t *testing.T) {
	t.Setenv("SMTP_PASSWORD", "from-env")
	path := writeFile(t, t.TempDir(), "email.json", `{
		"from": "a@example.com", "to": ["b@example.com"],
		"smtp_server": "smtp.example.com", "smtp_port": 587,
		"username": "user", "password": "from-file"
	}`)

	e, err := LoadEmail(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", e.Password)
}

func TestLoadEmail_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.json")},
		{"malformed json", writeFile(t, dir, "bad.json", `{"from": `)},
		{"missing recipients", writeFile(t, dir, "noto.json",
			`{"from": "a@example.com", "smtp_server": "smtp.example.com", "smtp_port": 25}`)},
		{"missing server", writeFile(t, dir, "noserver.json",
			`{"from": "a@example.com", "to": ["b@example.com"], "smtp_port": 25}`)},
		{"bad port", writeFile(t, dir, "badport.json",
			`{"from": "a@example.com", "to": ["b@example.com"], "smtp_server": "s", "smtp_port": 0}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := LoadEmail(tt.path)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestHasCredentials_RequiresBoth(t *testing.T) {
	assert.False(t, (&Email{Username: "u"}).HasCredentials())
	assert.False(t, (&Email{Password: "p"}).HasCredentials())
	assert.True(t, (&Email{Username: "u", Password: "p"}).HasCredentials())
}
