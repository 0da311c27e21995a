package digest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/andres10976/cve-monitor/internal/config"
)

// Mode is the connection security used to reach the SMTP server.
type Mode int

const (
	// ModePlain sends without encryption.
	ModePlain Mode = iota
	// ModeStartTLS connects in plaintext and upgrades with STARTTLS.
	ModeStartTLS
	// ModeImplicitTLS negotiates TLS from the first byte (SMTPS, port 465).
	ModeImplicitTLS
)

const implicitTLSPort = 465

func (m Mode) String() string {
	switch m {
	case ModeStartTLS:
		return "starttls"
	case ModeImplicitTLS:
		return "implicit_tls"
	default:
		return "plain"
	}
}

// SelectMode picks the transport security for cfg: port 465 always means
// implicit TLS, otherwise use_tls selects STARTTLS.
func SelectMode(cfg *config.Email) Mode {
	switch {
	case cfg.SMTPPort == implicitTLSPort:
		return ModeImplicitTLS
	case cfg.UseTLS:
		return ModeStartTLS
	default:
		return ModePlain
	}
}

// Attachment is a file carried by a digest message.
type Attachment struct {
	Name    string
	Content []byte
}

// Message is a transport-neutral digest email.
type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers a message over the given transport mode.
type Sender interface {
	Send(ctx context.Context, cfg *config.Email, mode Mode, msg *Message) error
}

// SMTPSender delivers digests with go-mail.
type SMTPSender struct {
	timeout time.Duration
}

func NewSMTPSender(timeout time.Duration) *SMTPSender {
	return &SMTPSender{timeout: timeout}
}

func (s *SMTPSender) Send(ctx context.Context, cfg *config.Email, mode Mode, msg *Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(cfg.SMTPServer, clientOptions(cfg, mode, s.timeout)...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send via %s:%d (%s): %w", cfg.SMTPServer, cfg.SMTPPort, mode, err)
	}
	return nil
}

func clientOptions(cfg *config.Email, mode Mode, timeout time.Duration) []mail.Option {
	var opts []mail.Option
	switch mode {
	case ModeImplicitTLS:
		opts = append(opts, mail.WithSSL())
	case ModeStartTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	opts = append(opts, mail.WithPort(cfg.SMTPPort))
	if timeout > 0 {
		opts = append(opts, mail.WithTimeout(timeout))
	}
	if cfg.HasCredentials() {
		auth := mail.SMTPAuthPlain
		if mode == ModePlain {
			auth = mail.SMTPAuthPlainNoEnc
		}
		opts = append(opts,
			mail.WithSMTPAuth(auth),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return opts
}

func buildMsg(msg *Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, a := range msg.Attachments {
		err := m.AttachReader(a.Name, bytes.NewReader(a.Content),
			mail.WithFileContentType(mail.TypeAppOctetStream))
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Name, err)
		}
	}
	return m, nil
}
