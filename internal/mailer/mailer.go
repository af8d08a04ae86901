// Package mailer renders outgoing mail. Delivery is stubbed: messages are
// logged after a simulated latency instead of being sent.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"
)

//go:embed templates/*.html
var templates embed.FS

type Credentials struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
}

type LogMailer struct {
	from    string
	latency time.Duration
	tmpl    *template.Template
	logger  *slog.Logger
}

func NewLogMailer(from string, latency time.Duration, logger *slog.Logger) (*LogMailer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &LogMailer{
		from:    from,
		latency: latency,
		tmpl:    tmpl,
		logger:  logger,
	}, nil
}

// SendCredentials renders the welcome message and "delivers" it. The
// password never reaches the log in clear.
func (m *LogMailer) SendCredentials(ctx context.Context, c Credentials) error {
	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, "credentials.html", c); err != nil {
		return fmt.Errorf("render credentials mail: %w", err)
	}

	if m.latency > 0 {
		t := time.NewTimer(m.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	m.logger.Info("mail sent",
		"from", m.from,
		"to", c.Email,
		"subject", "Your "+c.CompanyName+" account",
		"password", Mask(c.Password),
		"bytes", body.Len())
	return nil
}

// Mask keeps the first and last character of s.
func Mask(s string) string {
	if len(s) <= 2 {
		return strings.Repeat("*", len(s))
	}
	return s[:1] + strings.Repeat("*", len(s)-2) + s[len(s)-1:]
}
