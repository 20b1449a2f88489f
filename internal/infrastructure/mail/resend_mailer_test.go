package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/pkg/config"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ─────────────────────────────────────────────────────────────────────────────

func newTestMailer(t *testing.T, cfg config.MailConfig, h http.HandlerFunc) *ResendMailer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	m := NewResendMailer(cfg, logger.Nop())
	require.NoError(t, m.withBaseURL(srv.URL))
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestSend_EnviaConBearer(t *testing.T) {
	var got resend.SendEmailRequest
	var auth, path string
	m := newTestMailer(t, config.MailConfig{ResendAPIKey: "re_123", FromEmail: "no-reply@lilis.cl"},
		func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"abc"}`))
		})

	err := m.Send(context.Background(), ports.Mail{To: "ana@lilis.cl", Subject: "Hola", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer re_123", auth)
	assert.Equal(t, "/emails", path)
	assert.Equal(t, []string{"ana@lilis.cl"}, got.To)
	assert.Equal(t, "no-reply@lilis.cl", got.From)
	assert.Equal(t, "Hola", got.Subject)
}

func TestSend_RedirigeACasillaDePrueba(t *testing.T) {
	var got resend.SendEmailRequest
	m := newTestMailer(t, config.MailConfig{ResendAPIKey: "k", TestEmail: "qa@lilis.cl"},
		func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
		})

	require.NoError(t, m.Send(context.Background(), ports.Mail{To: "cliente@x.cl", Subject: "s"}))
	assert.Equal(t, []string{"qa@lilis.cl"}, got.To)
}

func TestSend_ErrorDelProveedor(t *testing.T) {
	m := newTestMailer(t, config.MailConfig{ResendAPIKey: "k"},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"name":"validation_error","message":"dominio no verificado"}`))
		})

	err := m.Send(context.Background(), ports.Mail{To: "a@b.cl", Subject: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dominio no verificado")
}

func TestSend_SinAPIKeyNoLlama(t *testing.T) {
	llamado := false
	m := newTestMailer(t, config.MailConfig{}, func(w http.ResponseWriter, r *http.Request) { llamado = true })

	require.NoError(t, m.Send(context.Background(), ports.Mail{To: "a@b.cl", Subject: "s"}))
	assert.False(t, llamado)
}
