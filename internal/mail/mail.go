// Package mail delivers account e-mails (activation, password reset).
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var ErrNotConfigured = errors.New("smtp relay is not configured")

type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through an SMTP relay. Repeated failures open a circuit
// breaker so requests stop waiting on a dead relay.
type SMTPMailer struct {
	cfg     SMTPConfig
	auth    smtp.Auth
	breaker *gobreaker.CircuitBreaker
	send    sendFunc
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	var a smtp.Auth
	if cfg.Username != "" {
		a = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("mail circuit breaker state changed")
		},
	})

	return &SMTPMailer{cfg: cfg, auth: a, breaker: breaker, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	body := compose(m.cfg.From, msg)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(addr, m.auth, m.cfg.From, msg.To, body)
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	}).Info("email sent")
	return nil
}

func compose(from string, msg Message) []byte {
	var b bytes.Buffer
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	return b.Bytes()
}

// LogMailer writes messages to the log instead of sending them. Used when
// no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logging.Logger.WithFields(logrus.Fields{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	}).Info(msg.HTML)
	return nil
}

var (
	activationTmpl = template.Must(template.New("activation").Parse(
		`<p>Hi {{.Username}},</p>
<p>Please activate your account by clicking the link below:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>Thank you!</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>Hi {{.Username}},</p>
<p>You requested a password reset. Use the link below to choose a new password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request this, you can ignore this e-mail.</p>`))
)

type linkData struct {
	Username string
	Link     string
}

func ActivationMessage(to, username, link string) (Message, error) {
	return render(activationTmpl, to, "Activate Your Account", linkData{username, link})
}

func PasswordResetMessage(to, username, link string) (Message, error) {
	return render(resetTmpl, to, "Reset Your Password", linkData{username, link})
}

func render(t *template.Template, to, subject string, data linkData) (Message, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %q email: %w", t.Name(), err)
	}
	return Message{To: []string{to}, Subject: subject, HTML: b.String()}, nil
}
