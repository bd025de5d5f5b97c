// Package mailer delivers playlist reports over SMTP as a fallback to
// the Telegram transport.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"playlistwatch/lib/telemetry"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("lib/mailer")

type Config struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Mailer struct {
	config Config
}

func NewMailer(config Config) Mailer {
	return Mailer{config: config}
}

// Send mails the report text to the target address. A chat id is not a
// mail address, so when the mailer is used as a transport the targets in
// the store are expected to be addresses instead.
func (m Mailer) Send(ctx context.Context, target string, text string) error {
	_, span := tracer.Start(ctx, "Send")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Playlist Watch <%s>", m.config.EmailAddress)
	mail.To = []string{target}
	mail.Subject = "Reporte de artist.tools"
	mail.Text = []byte(text)

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send report email")
		return err
	}
	return nil
}
