// Package mail envía correos transaccionales mediante Resend.
package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/pkg/config"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

var _ ports.Mailer = (*ResendMailer)(nil)

// ResendMailer adaptador de ports.Mailer sobre el SDK de Resend.
// Sin API key no envía nada: registra el correo en el log y devuelve nil.
type ResendMailer struct {
	client *resend.Client
	from   string
	testTo string
	log    *logger.Logger
}

// NewResendMailer construye el adaptador desde la configuración de correo.
func NewResendMailer(cfg config.MailConfig, log *logger.Logger) *ResendMailer {
	if log == nil {
		log = logger.Nop()
	}
	m := &ResendMailer{
		from:   cfg.FromEmail,
		testTo: cfg.TestEmail,
		log:    log.Component("mail"),
	}
	if cfg.ResendAPIKey != "" {
		m.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return m
}

// withBaseURL apunta el cliente a otro host (tests con httptest).
func (m *ResendMailer) withBaseURL(raw string) error {
	if m.client == nil {
		return nil
	}
	u, err := url.Parse(strings.TrimSuffix(raw, "/") + "/")
	if err != nil {
		return err
	}
	m.client.BaseURL = u
	return nil
}

// Send envía el correo. Con TestEmail configurado todo se redirige a esa casilla.
func (m *ResendMailer) Send(ctx context.Context, msg ports.Mail) error {
	to := msg.To
	if m.testTo != "" {
		to = m.testTo
	}
	if m.client == nil {
		m.log.Warn().Str("to", to).Str("subject", msg.Subject).Msg("RESEND_API_KEY no configurado; correo no enviado")
		return nil
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("mail: destinatario vacío")
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("mail: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("mail: resend: %w", err)
	}
	m.log.Info().Str("to", to).Str("subject", msg.Subject).Str("resend_id", sent.Id).Msg("correo enviado")
	return nil
}
