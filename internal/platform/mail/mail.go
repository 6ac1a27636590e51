// Package mail sends notification jobs over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// TLS modes accepted by MailConfig.TLSMode.
const (
	TLSImplicit = "implicit"
	TLSStartTLS = "starttls"
	TLSNone     = "none"
)

const commandTimeout = 30 * time.Second

// client is the part of *smtp.Client the Sender drives.
type client interface {
	Auth(a sasl.Client) error
	SendMail(from string, to []string, r io.Reader) error
	Quit() error
	Close() error
}

type dialFunc func(addr, mode string, tlsConfig *tls.Config) (client, error)

// Sender delivers jobs through one SMTP session per message.
type Sender struct {
	addr      string
	username  string
	password  string
	tlsMode   string
	tlsConfig *tls.Config
	dial      dialFunc
	logger    *slog.Logger
}

// NewSender creates a Sender for the configured relay.
func NewSender(cfg config.MailConfig, logger *slog.Logger) (*Sender, error) {
	switch cfg.TLSMode {
	case TLSImplicit, TLSStartTLS, TLSNone:
	default:
		return nil, fmt.Errorf("unsupported smtp tls mode %q", cfg.TLSMode)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sender{
		addr:      net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		username:  cfg.Username,
		password:  cfg.Password,
		tlsMode:   cfg.TLSMode,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		dial:      dialSMTP,
		logger:    logger.With(slog.String("component", "mail_sender")),
	}, nil
}

func dialSMTP(addr, mode string, tlsConfig *tls.Config) (client, error) {
	var (
		c   *smtp.Client
		err error
	)
	switch mode {
	case TLSImplicit:
		c, err = smtp.DialTLS(addr, tlsConfig)
	case TLSStartTLS:
		c, err = smtp.DialStartTLS(addr, tlsConfig)
	default:
		c, err = smtp.Dial(addr)
	}
	if err != nil {
		return nil, err
	}
	c.CommandTimeout = commandTimeout
	c.SubmissionTimeout = commandTimeout
	return c, nil
}

// Send composes job as a plain-text message and submits it.
func (s *Sender) Send(ctx context.Context, job domain.NotificationJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return err
	}

	msg, err := Compose(job, time.Now())
	if err != nil {
		return err
	}

	c, err := s.dial(s.addr, s.tlsMode, s.tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer func() { _ = c.Close() }()

	if s.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return fmt.Errorf("smtp authentication failed: %w", err)
		}
	}

	if err := c.SendMail(job.From, []string{job.To}, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	if err := c.Quit(); err != nil {
		log.Debug("smtp quit failed after successful send", "error", err)
	}
	return nil
}

// Compose renders job as an RFC 5322 text/plain message.
func Compose(job domain.NotificationJob, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Address: job.From}})
	h.SetAddressList("To", []*mail.Address{{Address: job.To}})
	h.SetSubject(job.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := io.WriteString(w, job.Text); err != nil {
		return nil, fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}
