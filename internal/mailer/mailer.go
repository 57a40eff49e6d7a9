// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer delivers outbound account mail (confirmation links,
// password resets, email change links). Delivery failure never aborts the
// triggering operation; callers log and continue.
package mailer

import (
	"fmt"
	"log/slog"

	mail "gopkg.in/mail.v2"
)

// Mailer sends a single HTML message to one recipient.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	host          string
	port          int
	username      string
	password      string
	sender        string
	subjectPrefix string
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, username, password, sender, subjectPrefix string) *SMTPMailer {
	return &SMTPMailer{
		host:          host,
		port:          port,
		username:      username,
		password:      password,
		sender:        sender,
		subjectPrefix: subjectPrefix,
	}
}

// Send delivers one message.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", m.subjectPrefix+" "+subject)
	msg.SetBody("text/html", htmlBody)

	d := mail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes mail to the log instead of sending it. Used in
// development and whenever SMTP is not configured.
type LogMailer struct {
	subjectPrefix string
}

// NewLogMailer creates a log-backed mailer.
func NewLogMailer(subjectPrefix string) *LogMailer {
	return &LogMailer{subjectPrefix: subjectPrefix}
}

// Send logs the message instead of delivering it.
func (m *LogMailer) Send(to, subject, htmlBody string) error {
	slog.Info("outbound mail (SMTP not configured)",
		"to", to,
		"subject", m.subjectPrefix+" "+subject,
		"body", htmlBody,
	)
	return nil
}
