package access

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/domain"
)

func TestParsePermissionMap_ClaveAusenteEsFalse(t *testing.T) {
	m, err := ParsePermissionMap([]byte(`{"productos":{"ver":true}}`))
	require.NoError(t, err)

	got := Evaluate(Subject{Permissions: m}, ModuleProducts)
	assert.True(t, got.View)
	assert.False(t, got.Create, "una acción ausente nunca se concede")
	assert.False(t, got.Edit)
	assert.False(t, got.Delete)
	assert.False(t, got.Export)
}

func TestEvaluate_ModuloAusenteDenegado(t *testing.T) {
	m, err := ParsePermissionMap([]byte(`{"productos":{"ver":true}}`))
	require.NoError(t, err)

	assert.Equal(t, PermissionSet{}, Evaluate(Subject{Permissions: m}, ModuleUsers))
	assert.Equal(t, PermissionSet{}, Evaluate(Subject{}, ModuleInventory), "sin rol no hay permisos")
}

func TestEvaluate_SuperusuarioTodo(t *testing.T) {
	s := Subject{Superuser: true}
	for _, mod := range Modules {
		assert.Equal(t, All(), Evaluate(s, mod))
	}
	assert.True(t, Can(s, ModulePurchases, ActionExport))
}

func TestEvaluate_ModuloDesconocido(t *testing.T) {
	s := Subject{Permissions: PermissionMap{"ventas": All()}}
	assert.Equal(t, PermissionSet{}, Evaluate(s, Module("ventas")))
}

func TestParsePermissionMap_Invalidos(t *testing.T) {
	cases := map[string]string{
		"módulo desconocido": `{"ventas":{"ver":true}}`,
		"acción desconocida": `{"productos":{"aprobar":true}}`,
		"no booleano":        `{"productos":{"ver":"si"}}`,
		"forma incorrecta":   `["productos"]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePermissionMap([]byte(raw))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestParsePermissionMap_Vacio(t *testing.T) {
	m, err := ParsePermissionMap(nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestPermissionMap_JSONCompleto(t *testing.T) {
	m := PermissionMap{ModuleInventory: {View: true, Create: true}}
	raw, err := m.JSON()
	require.NoError(t, err)

	var decoded map[string]map[string]bool
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded, len(Modules))
	assert.True(t, decoded["inventario"]["crear"])
	assert.False(t, decoded["usuarios"]["ver"])

	back, err := ParsePermissionMap(raw)
	require.NoError(t, err)
	assert.Equal(t, m[ModuleInventory], back[ModuleInventory])
}

func TestDefaultPermissions_Roles(t *testing.T) {
	bodeguero := Subject{Permissions: DefaultPermissions(RoleWarehouse)}
	assert.True(t, Can(bodeguero, ModuleInventory, ActionCreate))
	assert.False(t, Can(bodeguero, ModuleInventory, ActionDelete))
	assert.False(t, Can(bodeguero, ModuleUsers, ActionView))

	vendedor := Subject{Permissions: DefaultPermissions(RoleSeller)}
	assert.True(t, Can(vendedor, ModuleProducts, ActionView))
	assert.False(t, Can(vendedor, ModuleProducts, ActionCreate))

	admin := Subject{Permissions: DefaultPermissions(RoleAdmin)}
	assert.True(t, Can(admin, ModuleUsers, ActionDelete))

	assert.Empty(t, DefaultPermissions("OTRO"))
	assert.Equal(t, []string{"ADMIN", "BODEGUERO", "FINANZAS", "JEFE_VENTAS", "VENDEDOR"}, RoleNames())
}

func TestDefaultPermissions_CopiaIndependiente(t *testing.T) {
	m := DefaultPermissions(RoleSeller)
	m[ModuleUsers] = All()
	assert.False(t, Can(Subject{Permissions: DefaultPermissions(RoleSeller)}, ModuleUsers, ActionView))
}
