package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	apphttp "github.com/dulcerialilis/lilis-api/internal/interfaces/http"
	pkgjwt "github.com/dulcerialilis/lilis-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testSessionID = "00000000-0000-0000-0000-0000000000aa"
	testIssuer    = "lilis-api-test"
	testExpMin    = 60
)

// fakeSessions acepta solo las sesiones abiertas.
type fakeSessions struct {
	open map[string]bool
}

func (f *fakeSessions) CheckSession(_ context.Context, id pkgjwt.Identity) error {
	if !f.open[id.SessionID] {
		return fmt.Errorf("%w: sesión cerrada", domain.ErrUnauthorized)
	}
	return nil
}

// fakeChecker concede permisos según un mapa por rol, como haría el autorizador real.
type fakeChecker struct {
	perms map[string]access.PermissionMap // userID → permisos
	err   error
}

func (f *fakeChecker) Require(_ context.Context, userID string, mod access.Module, act access.Action) error {
	if f.err != nil {
		return f.err
	}
	perms, ok := f.perms[userID]
	if !ok {
		return domain.ErrUnauthorized
	}
	if !access.Can(access.Subject{Permissions: perms}, mod, act) {
		return domain.Forbidden(string(mod), string(act))
	}
	return nil
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y validar la sesión
//   - RequirePermission para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(checker *fakeChecker, mod access.Module, act access.Action) *fiber.App {
	app := fiber.New()
	sessions := &fakeSessions{open: map[string]bool{testSessionID: true}}
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret, sessions),
		apphttp.RequirePermission(mod, act, checker),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenFor genera un JWT con el rol y la sesión indicados.
func tokenFor(t *testing.T, role, sessionID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, pkgjwt.Identity{
		UserID: testUserID, SessionID: sessionID, Role: role,
	}, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func checkerWith(perms access.PermissionMap) *fakeChecker {
	return &fakeChecker{perms: map[string]access.PermissionMap{testUserID: perms}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_BodegueroVeInventario(t *testing.T) {
	app := buildTestApp(checkerWith(access.DefaultPermissions("BODEGUERO")), access.ModuleInventory, access.ActionView)
	resp := doRequest(t, app, tokenFor(t, "BODEGUERO", testSessionID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "BODEGUERO", body["role"])
}

func TestRequirePermission_AccionNoConcedida_Retorna403(t *testing.T) {
	perms := access.PermissionMap{access.ModuleProducts: {View: true}}
	app := buildTestApp(checkerWith(perms), access.ModuleProducts, access.ActionDelete)
	resp := doRequest(t, app, tokenFor(t, "VENTAS", testSessionID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequirePermission_ModuloAusente_Retorna403(t *testing.T) {
	perms := access.PermissionMap{access.ModuleProducts: {View: true}}
	app := buildTestApp(checkerWith(perms), access.ModuleUsers, access.ActionView)
	resp := doRequest(t, app, tokenFor(t, "VENTAS", testSessionID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequirePermission_FalloDeConsulta_Retorna503(t *testing.T) {
	app := buildTestApp(&fakeChecker{err: errors.New("db caída")}, access.ModuleProducts, access.ActionView)
	resp := doRequest(t, app, tokenFor(t, "ADMIN", testSessionID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(checkerWith(nil), access.ModuleProducts, access.ActionView)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(checkerWith(nil), access.ModuleProducts, access.ActionView)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_SesionCerrada_Retorna401(t *testing.T) {
	app := buildTestApp(checkerWith(access.DefaultPermissions("ADMIN")), access.ModuleProducts, access.ActionView)
	resp := doRequest(t, app, tokenFor(t, "ADMIN", "sesion-cerrada"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "SESSION_CLOSED")
}

func TestAuthMiddleware_ExtraeIdentidad(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret, nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"session_id": apphttp.GetSessionID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, "COMPRAS", testSessionID))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testSessionID, body["session_id"])
	assert.Equal(t, "COMPRAS", body["role"])
}
