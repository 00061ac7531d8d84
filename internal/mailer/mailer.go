// Package mailer delivers rendered quote documents over SMTP.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"

	mailyak "github.com/domodwyer/mailyak/v3"
)

var ErrNotConfigured = errors.New("smtp_not_configured")

type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// New builds a mailer. An empty host yields a disabled mailer whose Send
// returns ErrNotConfigured.
func New(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *Mailer) Enabled() bool { return m.host != "" }

// SendQuote emails the PDF to the customer.
func (m *Mailer) SendQuote(to, quoteNumber string, pdf []byte) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	mail := mailyak.New(fmt.Sprintf("%s:%d", m.host, m.port), auth)
	mail.From(m.from)
	mail.To(to)
	mail.Subject("Cotización " + quoteNumber)
	mail.Plain().Set("Adjunto encontrará la cotización " + quoteNumber + ".")
	mail.Attach("cotizacion-"+quoteNumber+".pdf", bytes.NewReader(pdf))
	return mail.Send()
}
