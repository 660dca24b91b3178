// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

/*
Package mail delivers transactional notifications over SMTP.

Every outbound message the platform sends goes through this package:
account activation codes, reset-password codes, new-signup notices to the
support inbox, and payment confirmations.

Delivery is best-effort by design: a failed mail send is logged but never
fails the request that triggered it, because the account flows have their
own retry surface (the "resend code" endpoints).
*/
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Config carries the SMTP connection settings and addressing defaults.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// AdminEmail receives operational notices (new signups, payments).
	AdminEmail string
	// SiteURL is the public base URL embedded in activation links.
	SiteURL string
}

// Mailer sends transactional mail through a shared SMTP client.
type Mailer struct {
	client *gomail.Client
	cfg    Config
	logger *slog.Logger
}

// NewMailer builds the SMTP client. The connection itself is established
// per send, so a broken SMTP host degrades mail delivery without blocking
// startup.
func NewMailer(cfg Config, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: smtp host must be configured")
	}

	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSSLPort(false),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to build smtp client: %w", err)
	}

	return &Mailer{client: client, cfg: cfg, logger: logger}, nil
}

// # Outbound Messages

// SendActivationCode mails the numeric code plus a one-click activation link.
func (m *Mailer) SendActivationCode(ctx context.Context, to, firstName, code, envelope string) {
	link := fmt.Sprintf("%s/activate?hash=%s", m.cfg.SiteURL, envelope)
	m.send(ctx, to, "Confirm your email", activationTemplate, map[string]string{
		"FirstName": firstName,
		"Code":      code,
		"Link":      link,
	})
}

// SendResetCode mails the reset-password code.
func (m *Mailer) SendResetCode(ctx context.Context, to, firstName, code string) {
	m.send(ctx, to, "Reset your password", resetTemplate, map[string]string{
		"FirstName": firstName,
		"Code":      code,
	})
}

// SendJoinNotice informs the support inbox that a new account signed up.
func (m *Mailer) SendJoinNotice(ctx context.Context, username, email string) {
	m.send(ctx, m.cfg.AdminEmail, "New member joined", joinTemplate, map[string]string{
		"Username": username,
		"Email":    email,
	})
}

// SendPaymentNotice confirms a completed one-time purchase to the payer.
func (m *Mailer) SendPaymentNotice(ctx context.Context, to, firstName string) {
	m.send(ctx, to, "Payment received", paymentTemplate, map[string]string{
		"FirstName": firstName,
	})
}

// SendSubscribeNotice confirms a started subscription to the payer.
func (m *Mailer) SendSubscribeNotice(ctx context.Context, to, firstName, planName string) {
	m.send(ctx, to, "Subscription confirmed", subscribeTemplate, map[string]string{
		"FirstName": firstName,
		"PlanName":  planName,
	})
}

// send renders the template and dispatches the message, swallowing failures.
func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data map[string]string) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		m.logger.ErrorContext(ctx, "mail_template_render_failed",
			slog.String("subject", subject), slog.Any("error", err))
		return
	}

	message := gomail.NewMsg()
	if err := message.From(m.cfg.From); err != nil {
		m.logger.ErrorContext(ctx, "mail_from_invalid", slog.Any("error", err))
		return
	}
	if err := message.To(to); err != nil {
		m.logger.ErrorContext(ctx, "mail_recipient_invalid",
			slog.String("to", to), slog.Any("error", err))
		return
	}
	message.Subject(subject)
	message.SetBodyString(gomail.TypeTextHTML, body.String())

	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		m.logger.ErrorContext(ctx, "mail_send_failed",
			slog.String("to", to), slog.String("subject", subject), slog.Any("error", err))
		return
	}

	m.logger.InfoContext(ctx, "mail_sent", slog.String("subject", subject))
}

// # Templates

var (
	activationTemplate = template.Must(template.New("activation").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Your confirmation code is <strong>{{.Code}}</strong>.</p>
<p>You can also confirm your email by clicking <a href="{{.Link}}">this link</a>.</p>
<p>The code expires in 24 hours.</p>`))

	resetTemplate = template.Must(template.New("reset").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Your password reset code is <strong>{{.Code}}</strong>.</p>
<p>If you did not request a reset, you can ignore this message.</p>`))

	joinTemplate = template.Must(template.New("join").Parse(`
<p>A new member just joined:</p>
<p>{{.Username}} ({{.Email}})</p>`))

	paymentTemplate = template.Must(template.New("payment").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Thanks! Your payment was received and your consultation is unlocked.</p>`))

	subscribeTemplate = template.Must(template.New("subscribe").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Your {{.PlanName}} subscription is now active.</p>`))
)
