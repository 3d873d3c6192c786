package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/contact-relay/internal/core"
	"go.uber.org/zap"
)

// TLS modes for the relay connection
const (
	TLSModeStartTLS = "starttls"
	TLSModeImplicit = "implicit"
	TLSModeNone     = "none"
)

// SMTPMailer relays outbound email through an authenticated SMTP submission server
type SMTPMailer struct {
	host      string
	port      int
	tlsMode   string
	username  string
	password  string
	timeout   time.Duration
	tlsConfig *tls.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(
	host string,
	port int,
	tlsMode string,
	username string,
	password string,
	timeout time.Duration,
	logger *zap.Logger,
) (*SMTPMailer, error) {
	switch tlsMode {
	case TLSModeStartTLS, TLSModeImplicit, TLSModeNone:
	default:
		return nil, fmt.Errorf("unsupported mail TLS mode: %s", tlsMode)
	}
	if host == "" {
		return nil, fmt.Errorf("mail host is required")
	}

	return &SMTPMailer{
		host:      host,
		port:      port,
		tlsMode:   tlsMode,
		username:  username,
		password:  password,
		timeout:   timeout,
		tlsConfig: &tls.Config{ServerName: host},
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Send delivers a single email. The call blocks until the relay accepts the
// DATA or an error occurs; there are no retries.
func (m *SMTPMailer) Send(ctx context.Context, email *core.OutboundEmail) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	data, err := composeMessage(email, m.now())
	if err != nil {
		return err
	}

	c, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if m.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", m.username, m.password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(email.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	for _, rcpt := range email.To {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return fmt.Errorf("RCPT TO %s failed: %w", rcpt, err)
		}
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("relay rejected message: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Already accepted by the relay
		m.logger.Warn("QUIT command failed", zap.Error(err))
	}

	m.logger.Debug("Email accepted by relay",
		zap.String("relay", m.host),
		zap.Strings("to", email.To),
		zap.Int("size", len(data)))

	return nil
}

func (m *SMTPMailer) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mail relay: %w", err)
	}

	var deadline time.Time
	if m.timeout > 0 {
		deadline = time.Now().Add(m.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set connection deadline: %w", err)
		}
	}

	if m.tlsMode == TLSModeImplicit {
		tlsConn := tls.Client(conn, m.tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("TLS handshake failed: %w", err)
		}
		conn = tlsConn
	}

	c := smtp.NewClient(conn)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	if err := c.Hello(hostname); err != nil {
		c.Close()
		return nil, fmt.Errorf("EHLO failed: %w", err)
	}

	if m.tlsMode == TLSModeStartTLS {
		if err := c.StartTLS(m.tlsConfig); err != nil {
			c.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	return c, nil
}
