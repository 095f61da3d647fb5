// Package email delivers generated will documents over SMTP as a multipart
// message with the will and execution checklist attached.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"willforge/internal/submission/models"
)

const (
	willAttachmentName      = "Last_Will_and_Testament.pdf"
	checklistAttachmentName = "Execution_Checklist.pdf"
	messageSubject          = "Your Last Will and Testament"
)

// Config holds SMTP settings, typically loaded from the environment.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	From     string
}

// Configured reports whether enough settings are present to send mail.
func (c Config) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// Sender transports a fully built RFC 5322 message.
type Sender interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// SMTPSender delivers messages over SMTP with optional STARTTLS.
type SMTPSender struct {
	cfg Config
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	defer client.Close()

	if s.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}

// Dispatcher builds and sends the will package email. It satisfies the
// submission service's Mailer interface.
type Dispatcher struct {
	cfg    Config
	sender Sender
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Dispatcher)

func WithSender(sender Sender) Option {
	return func(d *Dispatcher) {
		if sender != nil {
			d.sender = sender
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		sender: NewSMTPSender(cfg),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendWillPackage emails the compiled will and checklist to the recipient.
func (d *Dispatcher) SendWillPackage(ctx context.Context, recipient string, sub *models.Submission) error {
	if !d.cfg.Configured() {
		return fmt.Errorf("email service not configured")
	}
	if !sub.HasDocuments() {
		return fmt.Errorf("submission %s has no generated documents", sub.ID)
	}

	msg, err := d.buildMessage(recipient, willMakerName(sub), sub)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	if err := d.sender.Send(ctx, d.cfg.From, []string{recipient}, msg); err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "will package emailed",
		"submission_id", sub.ID.String(),
		"recipient", recipient)
	return nil
}

// willMakerName extracts the will maker's name from the stored payload for
// personalization.
func willMakerName(sub *models.Submission) string {
	payload, err := sub.Payload()
	if err != nil {
		return "Will Maker"
	}
	if maker, ok := payload["will_maker"].(map[string]any); ok {
		if name, ok := maker["full_name"].(string); ok && name != "" {
			return name
		}
	}
	return "Will Maker"
}

func (d *Dispatcher) buildMessage(recipient, makerName string, sub *models.Submission) ([]byte, error) {
	now := d.now().UTC()
	shortHash := sub.PDFSHA256
	if len(shortHash) > 16 {
		shortHash = shortHash[:16]
	}
	replacer := strings.NewReplacer(
		"{{will_maker_name}}", makerName,
		"{{generated_at}}", now.Format("02 January 2006 at 15:04 UTC"),
		"{{document_hash}}", shortHash,
	)

	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", d.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", messageSubject)
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	// Body: text and HTML alternatives.
	alt := multipart.NewWriter(nil)
	altPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	altWriter := multipart.NewWriter(altPart)
	if err := altWriter.SetBoundary(alt.Boundary()); err != nil {
		return nil, err
	}
	textPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(replacer.Replace(textTemplate))); err != nil {
		return nil, err
	}
	htmlPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(replacer.Replace(htmlTemplate))); err != nil {
		return nil, err
	}
	if err := altWriter.Close(); err != nil {
		return nil, err
	}

	if err := attachPDF(mixed, willAttachmentName, sub.PDF); err != nil {
		return nil, err
	}
	if err := attachPDF(mixed, checklistAttachmentName, sub.Checklist); err != nil {
		return nil, err
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attachPDF(w *multipart.Writer, filename string, content []byte) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
