// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends verification codes over SMTP.
package email

import (
	"fmt"
	"regexp"
	"strings"

	"codeberg.org/oliverandrich/dreamride/internal/config"
	"github.com/wneessen/go-mail"
)

const (
	verificationSubject  = "Your verification code"
	verificationBodyText = "Your 4-digit verification code is: %s"
	verificationBodyHTML = "<p>Your 4-digit verification code is: <strong>%s</strong></p>"
)

// Fallback identity when the configured from address cannot be parsed.
const (
	defaultFromAddress = "noreply@example.com"
	defaultFromName    = "Dreamride"
)

// Service sends verification emails.
type Service struct {
	cfg      *config.SMTPConfig
	fromName string
	fromAddr string
}

// NewService creates a new email service. The configured from value may be
// given in several human-entered formats; it is resolved once here.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}

	name, addr := ParseFromAddress(cfg.From)
	return &Service{
		cfg:      cfg,
		fromName: name,
		fromAddr: addr,
	}, nil
}

var (
	bracketRe   = regexp.MustCompile(`^(.+?)\s*<(.+@.+)>$`)
	addrOnlyRe  = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.[a-zA-Z]{2,}$`)
	nameAddrRe  = regexp.MustCompile(`^(.+?)\s+([\w.+-]+@[\w.-]+\.[a-zA-Z]{2,})$`)
	anyAddrRe   = regexp.MustCompile(`([\w.+-]+@[\w.-]+\.[a-zA-Z]{2,})`)
)

// ParseFromAddress resolves a human-entered from identity. It tries, in
// order: "Name <addr>", a bare address, "Name addr", and any embedded
// address, falling back to the default identity when nothing matches.
func ParseFromAddress(from string) (name, addr string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return defaultFromName, defaultFromAddress
	}

	if m := bracketRe.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if addrOnlyRe.MatchString(from) {
		return "", from
	}
	if m := nameAddrRe.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	if m := anyAddrRe.FindStringSubmatch(from); m != nil {
		name := strings.TrimSpace(strings.Replace(from, m[1], "", 1))
		return name, m[1]
	}

	return defaultFromName, defaultFromAddress
}

// SendCode sends the 4-digit verification code to the given address.
// The code never appears in logs; a returned error wraps the SMTP cause so
// the caller can roll back the pending registration.
func (s *Service) SendCode(to, code string) error {
	msg := mail.NewMsg()

	if s.fromName != "" {
		if err := msg.FromFormat(s.fromName, s.fromAddr); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.fromAddr); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(verificationSubject)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(verificationBodyText, code))
	msg.AddAlternativeString(mail.TypeTextHTML, fmt.Sprintf(verificationBodyHTML, code))

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
