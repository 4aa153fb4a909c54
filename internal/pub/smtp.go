package pub

import (
	"banco/internal/config"
	"banco/internal/types"
	"context"
	"crypto/tls"
	"fmt"
	"sort"
	"strings"

	mail "github.com/go-mail/mail"
)

type smtpPub struct {
	cfg    config.SMTPConfig
	dialer *mail.Dialer
}

// NewSMTP mails every event as plain text to cfg.To.
func NewSMTP(cfg config.SMTPConfig) *smtpPub {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return &smtpPub{cfg: cfg, dialer: d}
}

func (s *smtpPub) Notify(ctx context.Context, ev types.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}
	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Subject", subject(ev))
	m.SetBody("text/plain", body(ev))
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func body(ev types.Event) string {
	var b strings.Builder
	b.WriteString(ev.Message)
	b.WriteString("\n\n")
	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, ev.Fields[k])
	}
	fmt.Fprintf(&b, "fecha: %s\n", ev.At.Format("2006-01-02 15:04:05 MST"))
	return b.String()
}
