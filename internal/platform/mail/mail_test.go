package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob() domain.NotificationJob {
	return domain.NotificationJob{
		From:    "noreply@example.com",
		To:      "boss@example.com",
		Subject: domain.TaskCreatedSubject,
		Text:    "The tech with id 2 performed the task with id 7 on date 2024-01-02T03:04:05Z.",
	}
}

func TestCompose(t *testing.T) {
	raw, err := Compose(testJob(), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	r, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCreatedSubject, subject)

	from, err := r.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "noreply@example.com", from[0].Address)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "boss@example.com", to[0].Address)

	assert.Equal(t, testJob().Text, readBody(t, r))
}

// readBody returns the decoded text of the first part, undoing any
// transfer encoding applied on the wire.
func readBody(t *testing.T, r *mail.Reader) string {
	t.Helper()
	part, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	return string(body)
}

type fakeClient struct {
	authed  sasl.Client
	from    string
	to      []string
	body    []byte
	sendErr error
	authErr error
	quit    bool
	closed  bool
}

func (c *fakeClient) Auth(a sasl.Client) error {
	c.authed = a
	return c.authErr
}

func (c *fakeClient) SendMail(from string, to []string, r io.Reader) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.from, c.to = from, to
	c.body, _ = io.ReadAll(r)
	return nil
}

func (c *fakeClient) Quit() error  { c.quit = true; return nil }
func (c *fakeClient) Close() error { c.closed = true; return nil }

func newFakeSender(t *testing.T, cfg config.MailConfig, fc *fakeClient, dialErr error) (*Sender, *string) {
	t.Helper()
	s, err := NewSender(cfg, nil)
	require.NoError(t, err)
	var mode string
	s.dial = func(_, m string, _ *tls.Config) (client, error) {
		mode = m
		if dialErr != nil {
			return nil, dialErr
		}
		return fc, nil
	}
	return s, &mode
}

func TestSender_SendWithAuth(t *testing.T) {
	fc := &fakeClient{}
	s, mode := newFakeSender(t, config.MailConfig{
		Host: "smtp.example.com", Port: 465, Username: "mailer", Password: "pw", TLSMode: TLSImplicit,
	}, fc, nil)

	require.NoError(t, s.Send(context.Background(), testJob()))

	assert.Equal(t, TLSImplicit, *mode)
	require.NotNil(t, fc.authed)
	mech, ir, err := fc.authed.Start()
	require.NoError(t, err)
	assert.Equal(t, sasl.Plain, mech)
	assert.Equal(t, "\x00mailer\x00pw", string(ir))

	assert.Equal(t, "noreply@example.com", fc.from)
	assert.Equal(t, []string{"boss@example.com"}, fc.to)
	assert.Contains(t, string(fc.body), "Subject: A new Task has started!")
	assert.True(t, fc.quit)
	assert.True(t, fc.closed)
}

func TestSender_SendWithoutAuth(t *testing.T) {
	fc := &fakeClient{}
	s, _ := newFakeSender(t, config.MailConfig{Host: "localhost", Port: 25, TLSMode: TLSNone}, fc, nil)

	require.NoError(t, s.Send(context.Background(), testJob()))
	assert.Nil(t, fc.authed)
}

func TestSender_Failures(t *testing.T) {
	cfg := config.MailConfig{Host: "localhost", Port: 25, Username: "u", Password: "p", TLSMode: TLSStartTLS}

	s, _ := newFakeSender(t, cfg, nil, errors.New("refused"))
	assert.ErrorContains(t, s.Send(context.Background(), testJob()), "failed to connect")

	fc := &fakeClient{authErr: errors.New("535 bad credentials")}
	s, _ = newFakeSender(t, cfg, fc, nil)
	assert.ErrorContains(t, s.Send(context.Background(), testJob()), "authentication failed")
	assert.True(t, fc.closed)

	fc = &fakeClient{sendErr: errors.New("550 mailbox unavailable")}
	s, _ = newFakeSender(t, cfg, fc, nil)
	assert.ErrorContains(t, s.Send(context.Background(), testJob()), "failed to send mail")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, testJob()), context.Canceled)
}

func TestNewSender_RejectsUnknownTLSMode(t *testing.T) {
	_, err := NewSender(config.MailConfig{Host: "localhost", Port: 25, TLSMode: "ssl"}, nil)
	assert.Error(t, err)
}

// memoryBackend is an in-process SMTP server backend that stores received mail.
type memoryBackend struct {
	mu       sync.Mutex
	received []receivedMail
}

type receivedMail struct {
	from string
	to   []string
	data []byte
}

func (b *memoryBackend) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &memorySession{backend: b}, nil
}

type memorySession struct {
	backend *memoryBackend
	current receivedMail
}

func (s *memorySession) Mail(from string, _ *smtp.MailOptions) error {
	s.current.from = from
	return nil
}

func (s *memorySession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.current.to = append(s.current.to, to)
	return nil
}

func (s *memorySession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.current.data = data
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.received = append(s.backend.received, s.current)
	return nil
}

func (s *memorySession) Reset()        { s.current = receivedMail{} }
func (s *memorySession) Logout() error { return nil }

func TestSender_DeliversToSMTPServer(t *testing.T) {
	backend := &memoryBackend{}
	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	server.AllowInsecureAuth = true

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = server.Serve(l) }()
	t.Cleanup(func() { _ = server.Close() })

	port := l.Addr().(*net.TCPAddr).Port
	s, err := NewSender(config.MailConfig{
		Host:    "127.0.0.1",
		Port:    port,
		TLSMode: TLSNone,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:"+strconv.Itoa(port), s.addr)

	require.NoError(t, s.Send(context.Background(), testJob()))

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.received, 1)
	got := backend.received[0]
	assert.Equal(t, "noreply@example.com", got.from)
	assert.Equal(t, []string{"boss@example.com"}, got.to)

	r, err := mail.CreateReader(bytes.NewReader(got.data))
	require.NoError(t, err)
	assert.Equal(t, testJob().Text, readBody(t, r))
}
