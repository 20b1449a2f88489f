package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, err) })
	return app
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteError_MapeaEstados(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Invalid("quantity", "debe ser mayor que cero"), http.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("%w: json", domain.ErrBadRequest), http.StatusBadRequest, "BAD_REQUEST"},
		{domain.ErrTokenExpired, http.StatusBadRequest, "TOKEN_EXPIRED"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.Forbidden("productos", "ver"), http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("%w: producto", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrEmailAlreadyExists, http.StatusConflict, "DUPLICATE"},
		{domain.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{domain.StateConflict("movimiento %s", "ANULADO"), http.StatusConflict, "CONFLICT"},
		{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{fmt.Errorf("conexión rechazada"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		resp, err := errorApp(tc.err).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		assert.Equal(t, tc.code, decodeError(t, resp).Code, tc.err.Error())
	}
}

func TestWriteError_ValidacionIncluyeCampo(t *testing.T) {
	resp, err := errorApp(domain.Invalid("sku", "es requerido")).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body := decodeError(t, resp)
	assert.Equal(t, "sku", body.Field)
	assert.Equal(t, "es requerido", body.Message)
}

func TestValidateStruct_UsaNombreJSON(t *testing.T) {
	err := validateStruct(&dto.LoginRequest{Password: "x"})
	require.Error(t, err)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "login", verr.Field)
	assert.Equal(t, "es requerido", verr.Message)
}

func TestValidateStruct_Oneof(t *testing.T) {
	err := validateStruct(&dto.OrderStatusRequest{Status: "RECIBIDA"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
	assert.Contains(t, verr.Message, "ENVIADA, CONFIRMADA, CANCELADA")
}

func TestValidateStruct_Valido(t *testing.T) {
	assert.NoError(t, validateStruct(&dto.PasswordResetRequest{Email: "ana@lilis.cl"}))
}

func TestParseBody_JSONMalFormado(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in dto.LoginRequest
		if err := parseBody(c, &in); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"login":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Code)
}

func TestSendFile_AdjuntoConNombre(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return sendFile(c, []byte("PK"), "productos_20261019.xlsx", xlsxContentType)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="productos_20261019.xlsx"`)
}

func TestErrorHandler_RutaInexistente(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/existe", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/no-existe", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ROUTE_NOT_FOUND", decodeError(t, resp).Code)
}
