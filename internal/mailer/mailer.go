// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer sends transactional email over SMTP. It is optional
// infrastructure: when SMTP is not configured the mailer is nil and
// callers skip sending.
package mailer

import (
	"fmt"
	"strconv"

	mail "gopkg.in/mail.v2"
)

// Mailer sends plain-text email through a configured SMTP relay.
type Mailer struct {
	dialer *mail.Dialer
	from   string
}

// New creates a mailer for the given SMTP settings. Returns (nil, nil)
// when host or from are empty so the application can run without email.
func New(host, port, username, password, from string) (*Mailer, error) {
	if host == "" || from == "" {
		return nil, nil
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("smtp port %q: %w", port, err)
	}

	return &Mailer{
		dialer: mail.NewDialer(host, p, username, password),
		from:   from,
	}, nil
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
