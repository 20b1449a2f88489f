package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/memory"
)

const (
	roleSeller    = "role-vendedor"
	roleWarehouse = "role-bodeguero"
)

func seedRoles(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Roles().Upsert(ctx, &entity.Role{ID: roleSeller, Name: access.RoleSeller, Permissions: access.DefaultPermissions(access.RoleSeller)}))
	require.NoError(t, s.Roles().Upsert(ctx, &entity.Role{ID: roleWarehouse, Name: access.RoleWarehouse, Permissions: access.DefaultPermissions(access.RoleWarehouse)}))
	return s
}

func newUserUseCase(s *memory.Store, sheets *fakeSheets) *usecase.UserUseCase {
	return usecase.NewUserUseCase(usecase.UserDeps{
		Users:    s.Users(),
		Roles:    s.Roles(),
		Sessions: s.Sessions(),
		Storage:  &fakeStorage{},
		Sheets:   sheets,
	}).WithClock(func() time.Time { return fixedNow })
}

func userRequest(username, email string) dto.CreateUserRequest {
	return dto.CreateUserRequest{
		Username: username, Email: email, Password: "dulces-2026", FirstName: "Ana", LastName: "Rojas", RoleID: roleSeller,
	}
}

func TestUserCreate_HashYUnicidad(t *testing.T) {
	ctx := context.Background()
	s := seedRoles(t)
	uc := newUserUseCase(s, &fakeSheets{})

	u, err := uc.Create(ctx, userRequest("arojas", "Ana@Lilis.cl"))
	require.NoError(t, err)
	assert.Equal(t, "ana@lilis.cl", u.Email)
	assert.Equal(t, access.RoleSeller, u.RoleName)
	assert.Equal(t, entity.UserStatusActive, u.Status)

	stored, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("dulces-2026")))

	_, err = uc.Create(ctx, userRequest("otro", "ana@lilis.cl"))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Create(ctx, userRequest("arojas", "otra@lilis.cl"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	noRole := userRequest("sinrol", "sinrol@lilis.cl")
	noRole.RoleID = ""
	_, err = uc.Create(ctx, noRole)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	badRole := userRequest("malrol", "malrol@lilis.cl")
	badRole.RoleID = "role-x"
	_, err = uc.Create(ctx, badRole)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	short := userRequest("corta", "corta@lilis.cl")
	short.Password = "1234"
	_, err = uc.Create(ctx, short)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserUpdate_RolYEmail(t *testing.T) {
	ctx := context.Background()
	s := seedRoles(t)
	uc := newUserUseCase(s, &fakeSheets{})
	a, err := uc.Create(ctx, userRequest("a", "a@lilis.cl"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, userRequest("b", "b@lilis.cl"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, a.ID, dto.UpdateUserRequest{Email: strPtr("b@lilis.cl")})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	res, err := uc.Update(ctx, a.ID, dto.UpdateUserRequest{RoleID: strPtr(roleWarehouse), Area: strPtr("Bodega")})
	require.NoError(t, err)
	assert.Equal(t, access.RoleWarehouse, res.RoleName)
	assert.Equal(t, "Bodega", res.Area)

	_, err = uc.Update(ctx, "nope", dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserStatus_BloqueoCierraSesiones(t *testing.T) {
	ctx := context.Background()
	s := seedRoles(t)
	uc := newUserUseCase(s, &fakeSheets{})
	u, err := uc.Create(ctx, userRequest("a", "a@lilis.cl"))
	require.NoError(t, err)
	require.NoError(t, s.Sessions().Create(ctx, &entity.Session{ID: "sess-1", UserID: u.ID, ExpiresAt: fixedNow.Add(time.Hour)}))

	res, err := uc.ChangeStatus(ctx, u.ID, entity.UserStatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusBlocked, res.Status)
	sess, err := s.Sessions().Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, uc.Deactivate(ctx, u.ID))
	require.NoError(t, uc.Deactivate(ctx, u.ID))

	_, err = uc.ChangeStatus(ctx, u.ID, entity.UserStatusBlocked)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "INACTIVO solo puede volver a ACTIVO")
}

func TestUserList_FiltrosYExport(t *testing.T) {
	ctx := context.Background()
	s := seedRoles(t)
	sheets := &fakeSheets{}
	uc := newUserUseCase(s, sheets)
	_, err := uc.Create(ctx, userRequest("zeta", "z@lilis.cl"))
	require.NoError(t, err)
	b := userRequest("bodega", "bodega@lilis.cl")
	b.RoleID = roleWarehouse
	b.FirstName = "José"
	_, err = uc.Create(ctx, b)
	require.NoError(t, err)

	page, err := uc.List(ctx, listing.Query{}, dto.UserFilterRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 25, page.PerPage)
	assert.Equal(t, "bodega", page.Items[0].Username)

	page, err = uc.List(ctx, listing.Query{Search: "jose"}, dto.UserFilterRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	page, err = uc.List(ctx, listing.Query{}, dto.UserFilterRequest{RoleID: roleWarehouse, Status: "CUALQUIERA"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total, "estado desconocido se ignora")

	_, name, err := uc.Export(ctx, listing.Query{}, dto.UserFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, "usuarios_20260402_093000.xlsx", name)
	assert.Len(t, sheets.last.Headers, 9)
	assert.Len(t, sheets.last.Rows, 2)
}

func TestRole_ActualizarPermisos(t *testing.T) {
	ctx := context.Background()
	s := seedRoles(t)
	uc := usecase.NewRoleUseCase(s.Roles(), nil)

	roles, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, access.RoleWarehouse, roles[0].Name)
	assert.False(t, roles[0].Permissions[access.ModuleUsers].View, "módulo ausente queda en false")

	_, err = uc.UpdatePermissions(ctx, roleSeller, dto.UpdatePermissionsRequest{
		Permissions: json.RawMessage(`{"productos":{"ver":true,"volar":true}}`),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	res, err := uc.UpdatePermissions(ctx, roleSeller, dto.UpdatePermissionsRequest{
		Permissions: json.RawMessage(`{"compras":{"ver":true,"exportar":true}}`),
	})
	require.NoError(t, err)
	assert.True(t, res.Permissions[access.ModulePurchases].Export)
	assert.False(t, res.Permissions[access.ModuleProducts].View, "el mapa se reemplaza completo")

	_, err = uc.UpdatePermissions(ctx, "nope", dto.UpdatePermissionsRequest{Permissions: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
