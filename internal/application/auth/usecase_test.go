package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dulcerialilis/lilis-api/internal/application/auth"
	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/memory"
	"github.com/dulcerialilis/lilis-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSecret = "test-secret-key-for-unit-tests"
	password   = "caramelo-123"
	roleID     = "role-bodeguero"
)

type fakeMailer struct {
	sent []ports.Mail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m ports.Mail) error {
	f.sent = append(f.sent, m)
	return f.err
}

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Roles().Upsert(ctx, &entity.Role{ID: roleID, Name: access.RoleWarehouse, Permissions: access.DefaultPermissions(access.RoleWarehouse)}))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	rid := roleID
	require.NoError(t, s.Users().Create(ctx, &entity.User{
		ID: "u-1", Username: "bodega", Email: "bodega@lilis.cl", PasswordHash: string(hash),
		FirstName: "Pedro", RoleID: &rid, Status: entity.UserStatusActive,
	}))
	require.NoError(t, s.Users().Create(ctx, &entity.User{
		ID: "u-2", Username: "bloqueado", Email: "bloqueado@lilis.cl", PasswordHash: string(hash),
		RoleID: &rid, Status: entity.UserStatusBlocked,
	}))
	require.NoError(t, s.Users().Create(ctx, &entity.User{
		ID: "root", Username: "admin", Email: "admin@lilis.cl", PasswordHash: string(hash),
		Status: entity.UserStatusActive, IsSuperuser: true,
	}))
	return s
}

func newAuth(s *memory.Store, mailer ports.Mailer) *auth.AuthUseCase {
	return auth.NewAuthUseCase(auth.Deps{
		Users:    s.Users(),
		Roles:    s.Roles(),
		Sessions: s.Sessions(),
		Resets:   s.Resets(),
		Mailer:   mailer,
		JWT:      auth.JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "lilis-test"},
		Reset:    auth.ResetConfig{URL: "https://app.lilis.cl/reset", TTL: 30 * time.Minute},
	})
}

func resetToken(t *testing.T, m ports.Mail) string {
	t.Helper()
	i := strings.Index(m.Text, "token=")
	require.GreaterOrEqual(t, i, 0)
	return strings.Fields(m.Text[i+len("token="):])[0]
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_PorUsernameYEmail(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	uc := newAuth(s, nil)

	for _, login := range []string{"bodega", "Bodega@Lilis.cl"} {
		res, err := uc.Login(ctx, dto.LoginRequest{Login: login, Password: password}, auth.LoginMeta{IP: "10.0.0.1"})
		require.NoError(t, err, login)
		assert.Equal(t, "u-1", res.User.ID)
		require.NotNil(t, res.User.LastLogin)

		id, err := jwt.Parse(testSecret, res.Token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", id.UserID)
		assert.Equal(t, access.RoleWarehouse, id.Role)
		require.NoError(t, uc.CheckSession(ctx, id))
	}
}

func TestLogin_Rechazos(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(seed(t), nil)

	_, err := uc.Login(ctx, dto.LoginRequest{Login: "bodega", Password: "otra-clave"}, auth.LoginMeta{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Login: "fantasma", Password: password}, auth.LoginMeta{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Login: "bloqueado", Password: password}, auth.LoginMeta{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogout_InvalidaSesion(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(seed(t), nil)
	res, err := uc.Login(ctx, dto.LoginRequest{Login: "bodega", Password: password}, auth.LoginMeta{})
	require.NoError(t, err)
	id, err := jwt.Parse(testSecret, res.Token)
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, id.SessionID))
	assert.ErrorIs(t, uc.CheckSession(ctx, id), domain.ErrUnauthorized)

	id.SessionID = ""
	assert.ErrorIs(t, uc.CheckSession(ctx, id), domain.ErrUnauthorized)
}

func TestPasswordReset_FlujoCompleto(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	mailer := &fakeMailer{}
	uc := newAuth(s, mailer)

	login, err := uc.Login(ctx, dto.LoginRequest{Login: "bodega", Password: password}, auth.LoginMeta{})
	require.NoError(t, err)
	id, err := jwt.Parse(testSecret, login.Token)
	require.NoError(t, err)

	require.NoError(t, uc.RequestReset(ctx, dto.PasswordResetRequest{Email: "bodega@lilis.cl"}))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "bodega@lilis.cl", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTML, "https://app.lilis.cl/reset?token=")
	token := resetToken(t, mailer.sent[0])

	require.NoError(t, uc.ConfirmReset(ctx, dto.PasswordResetConfirmRequest{Token: token, Password: "nueva-clave-99"}))
	assert.ErrorIs(t, uc.CheckSession(ctx, id), domain.ErrUnauthorized, "el reseteo cierra las sesiones")

	_, err = uc.Login(ctx, dto.LoginRequest{Login: "bodega", Password: "nueva-clave-99"}, auth.LoginMeta{})
	require.NoError(t, err)

	err = uc.ConfirmReset(ctx, dto.PasswordResetConfirmRequest{Token: token, Password: "otra-clave-100"})
	assert.ErrorIs(t, err, domain.ErrTokenExpired, "el token es de un solo uso")
}

func TestPasswordReset_SinEnumeracion(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	uc := newAuth(seed(t), mailer)

	require.NoError(t, uc.RequestReset(ctx, dto.PasswordResetRequest{Email: "nadie@lilis.cl"}))
	require.NoError(t, uc.RequestReset(ctx, dto.PasswordResetRequest{Email: "bloqueado@lilis.cl"}))
	assert.Empty(t, mailer.sent)

	mailer.err = errors.New("resend caído")
	require.NoError(t, uc.RequestReset(ctx, dto.PasswordResetRequest{Email: "bodega@lilis.cl"}), "un fallo de correo no se expone")
}

func TestPasswordReset_TokenExpirado(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	require.NoError(t, s.Resets().Create(ctx, &entity.PasswordResetToken{
		Token: "viejo", UserID: "u-1", ExpiresAt: time.Now().Add(-time.Minute),
	}))
	uc := newAuth(s, nil)

	err := uc.ConfirmReset(ctx, dto.PasswordResetConfirmRequest{Token: "viejo", Password: "nueva-clave-99"})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	err = uc.ConfirmReset(ctx, dto.PasswordResetConfirmRequest{Token: "no-existe", Password: "nueva-clave-99"})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestAuthorizer_RequireYPermisosEfectivos(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	az := auth.NewAuthorizer(s.Users(), s.Roles())

	assert.NoError(t, az.Require(ctx, "u-1", access.ModuleInventory, access.ActionCreate))
	err := az.Require(ctx, "u-1", access.ModuleInventory, access.ActionDelete)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.EqualError(t, err, "acceso denegado: se requiere permiso 'eliminar' en 'inventario'")
	assert.ErrorIs(t, az.Require(ctx, "u-1", access.ModuleUsers, access.ActionView), domain.ErrForbidden)
	assert.NoError(t, az.Require(ctx, "root", access.ModuleUsers, access.ActionDelete), "superusuario tiene todo")
	assert.ErrorIs(t, az.Require(ctx, "u-2", access.ModuleInventory, access.ActionView), domain.ErrForbidden, "usuario bloqueado")
	assert.ErrorIs(t, az.Require(ctx, "fantasma", access.ModuleInventory, access.ActionView), domain.ErrUnauthorized)

	perms, err := az.EffectivePermissions(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleWarehouse, perms.Role)
	assert.Len(t, perms.Permissions, len(access.Modules))
	assert.True(t, perms.Permissions[access.ModuleSuppliers].View)
	assert.False(t, perms.Permissions[access.ModuleSuppliers].Edit)
}
