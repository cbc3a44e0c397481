package services

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Mailer delivers HTML e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

const resetEmailSubject = "Password Reset Request"

func resetEmailBody(name, resetURL string) string {
	u := html.EscapeString(resetURL)
	return fmt.Sprintf("<h1>Hello %s</h1>"+
		"<p>Please use the URL below to reset your password</p>"+
		"<p>The reset link is valid only for 30 minutes</p>"+
		"<a href=\"%s\" clicktracking=off>%s</a>"+
		"<p>Regards...</p>"+
		"<p>Pinvent Team</p>", html.EscapeString(name), u, u)
}
