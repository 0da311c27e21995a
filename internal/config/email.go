package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// ErrConfig marks an email configuration that could not be used.
var ErrConfig = errors.New("invalid email configuration")

// Email describes the SMTP transport used for the daily digest.
type Email struct {
	From       string   `mapstructure:"from"`
	To         []string `mapstructure:"to"`
	SMTPServer string   `mapstructure:"smtp_server"`
	SMTPPort   int      `mapstructure:"smtp_port"`
	UseTLS     bool     `mapstructure:"use_tls"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
}

// HasCredentials reports whether SMTP authentication should be attempted.
func (e *Email) HasCredentials() bool {
	return e.Username != "" && e.Password != ""
}

func (e *Email) validate() error {
	switch {
	case e.From == "":
		return fmt.Errorf("%w: missing from", ErrConfig)
	case len(e.To) == 0:
		return fmt.Errorf("%w: missing to", ErrConfig)
	case e.SMTPServer == "":
		return fmt.Errorf("%w: missing smtp_server", ErrConfig)
	case e.SMTPPort <= 0 || e.SMTPPort > 65535:
		return fmt.Errorf("%w: smtp_port %d out of range", ErrConfig, e.SMTPPort)
	}
	return nil
}

// LoadEmail reads the email configuration file at path. Files without an
// extension are parsed as JSON. SMTP_PASSWORD overrides the password key.
func LoadEmail(path string) (*Email, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.BindEnv("password", "SMTP_PASSWORD"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, path, err)
	}

	var e Email
	if err := v.Unmarshal(&e); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrConfig, path, err)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
