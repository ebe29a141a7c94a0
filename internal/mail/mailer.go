// Package mail sends transactional email over SMTP with implicit TLS.
package mail

import (
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dieginin/hubsync/internal/config"
)

// Mailer delivers account email. When the SMTP host is unset the mailer is
// disabled and Send calls report an error without dialing anything.
type Mailer struct {
	cfg config.MailConfig
	log *zap.Logger
}

func New(cfg config.MailConfig, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.Port > 0
}

// SendPasswordReset emails a reset link built from the configured base URL.
// The token is the raw value handed out by the store.
func (m *Mailer) SendPasswordReset(to, token string) error {
	link := strings.TrimRight(m.cfg.BaseURL, "/") + "/reset_password/" + token
	subject := "Password Reset"

	text := "Click this link to reset your password: " + link

	html := fmt.Sprintf("<html><body>"+
		"<h2>Reset Your Password</h2>"+
		"<p>Hello,</p>"+
		"<p>We received a request to reset your password. Click the button below to continue:</p>"+
		"<p><a href=%q>Reset Password</a></p>"+
		"<p>If you didn't request a password reset, you can safely ignore this email.</p>"+
		"<p>This link will expire in 30 minutes.</p>"+
		"</body></html>", link)

	return m.send(to, subject, text, html)
}

// send delivers a multipart/alternative message over an implicit-TLS SMTP
// connection (port 465 style, matching providers like Gmail SSL).
func (m *Mailer) send(to, subject, text, html string) error {
	if !m.Enabled() {
		return fmt.Errorf("mail disabled: SMTP not configured")
	}

	var body strings.Builder
	mw := multipart.NewWriter(&body)

	from := m.cfg.Sender
	if m.cfg.Author != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.Author, m.cfg.Sender)
	}

	fmt.Fprintf(&body, "From: %s\r\n", from)
	fmt.Fprintf(&body, "To: %s\r\n", to)
	fmt.Fprintf(&body, "Subject: %s\r\n", subject)
	fmt.Fprintf(&body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	body.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&body, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	body.WriteString("\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=UTF-8"}})
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte(text)); err != nil {
		return err
	}
	part, err = mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=UTF-8"}})
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte(html)); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("mail dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	defer client.Close()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mail auth: %w", err)
		}
	}
	if err := client.Mail(m.cfg.Sender); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("mail rcpt: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail data: %w", err)
	}
	if _, err := wc.Write([]byte(body.String())); err != nil {
		wc.Close()
		return fmt.Errorf("mail write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("mail close: %w", err)
	}
	if err := client.Quit(); err != nil {
		m.log.Debug("smtp quit", zap.Error(err))
	}
	return nil
}
