// Package access resuelve los permisos efectivos de un usuario por módulo.
//
// El mapa de permisos de un rol se guarda como JSON ({"productos":{"ver":true}}) pero
// se valida al escribir y se maneja tipado. Una clave ausente siempre vale false.
package access

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dulcerialilis/lilis-api/internal/domain"
)

// Module nombre de un módulo funcional de la aplicación.
type Module string

const (
	ModuleUsers     Module = "usuarios"
	ModuleSuppliers Module = "proveedores"
	ModuleProducts  Module = "productos"
	ModulePurchases Module = "compras"
	ModuleInventory Module = "inventario"
)

// Action capacidad dentro de un módulo.
type Action string

const (
	ActionView   Action = "ver"
	ActionCreate Action = "crear"
	ActionEdit   Action = "editar"
	ActionDelete Action = "eliminar"
	ActionExport Action = "exportar"
)

// Modules conjunto cerrado de módulos, en orden de presentación.
var Modules = []Module{ModuleUsers, ModuleSuppliers, ModuleProducts, ModulePurchases, ModuleInventory}

// Actions conjunto cerrado de acciones.
var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionExport}

// PermissionSet capacidades de un módulo.
type PermissionSet struct {
	View   bool `json:"ver"`
	Create bool `json:"crear"`
	Edit   bool `json:"editar"`
	Delete bool `json:"eliminar"`
	Export bool `json:"exportar"`
}

// All conjunto con todas las capacidades.
func All() PermissionSet {
	return PermissionSet{View: true, Create: true, Edit: true, Delete: true, Export: true}
}

// Allows indica si la acción está concedida.
func (p PermissionSet) Allows(a Action) bool {
	switch a {
	case ActionView:
		return p.View
	case ActionCreate:
		return p.Create
	case ActionEdit:
		return p.Edit
	case ActionDelete:
		return p.Delete
	case ActionExport:
		return p.Export
	}
	return false
}

func (p *PermissionSet) set(a Action, v bool) {
	switch a {
	case ActionView:
		p.View = v
	case ActionCreate:
		p.Create = v
	case ActionEdit:
		p.Edit = v
	case ActionDelete:
		p.Delete = v
	case ActionExport:
		p.Export = v
	}
}

// PermissionMap permisos de un rol por módulo.
type PermissionMap map[Module]PermissionSet

// defaults tabla explícita para módulos sin entrada en el rol: todo denegado.
var defaults = map[Module]PermissionSet{
	ModuleUsers:     {},
	ModuleSuppliers: {},
	ModuleProducts:  {},
	ModulePurchases: {},
	ModuleInventory: {},
}

// IsModule indica si el nombre pertenece al conjunto de módulos.
func IsModule(name string) bool {
	_, ok := defaults[Module(name)]
	return ok
}

func isAction(name string) bool {
	for _, a := range Actions {
		if string(a) == name {
			return true
		}
	}
	return false
}

// ParsePermissionMap valida y convierte el JSON almacenado en el rol.
// Módulos o acciones desconocidos y valores no booleanos son ValidationError.
// Las acciones ausentes quedan en false.
func ParsePermissionMap(raw []byte) (PermissionMap, error) {
	out := PermissionMap{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var blob map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, domain.Invalid("permisos", "formato inválido: se espera {modulo: {accion: bool}}")
	}
	for mod, actions := range blob {
		if !IsModule(mod) {
			return nil, domain.Invalid("permisos", fmt.Sprintf("módulo desconocido '%s'", mod))
		}
		var set PermissionSet
		for act, v := range actions {
			if !isAction(act) {
				return nil, domain.Invalid("permisos", fmt.Sprintf("acción desconocida '%s' en '%s'", act, mod))
			}
			var b bool
			if err := json.Unmarshal(v, &b); err != nil {
				return nil, domain.Invalid("permisos", fmt.Sprintf("'%s.%s' debe ser booleano", mod, act))
			}
			set.set(Action(act), b)
		}
		out[Module(mod)] = set
	}
	return out, nil
}

// JSON serializa el mapa completo (todos los módulos y acciones) de forma determinista.
func (m PermissionMap) JSON() ([]byte, error) {
	full := make(map[string]PermissionSet, len(defaults))
	for _, mod := range Modules {
		full[string(mod)] = m.lookup(mod)
	}
	return json.Marshal(full)
}

func (m PermissionMap) lookup(mod Module) PermissionSet {
	if set, ok := m[mod]; ok {
		return set
	}
	return defaults[mod]
}

// Subject datos del usuario necesarios para evaluar permisos.
type Subject struct {
	Superuser   bool
	Permissions PermissionMap // nil si el usuario no tiene rol
}

// Evaluate devuelve los permisos efectivos del sujeto en el módulo.
// Superusuario: todo permitido. Módulo desconocido: todo denegado.
func Evaluate(s Subject, mod Module) PermissionSet {
	if s.Superuser {
		return All()
	}
	if _, known := defaults[mod]; !known {
		return PermissionSet{}
	}
	return s.Permissions.lookup(mod)
}

// EvaluateAll permisos efectivos para todos los módulos.
func EvaluateAll(s Subject) PermissionMap {
	out := make(PermissionMap, len(Modules))
	for _, mod := range Modules {
		out[mod] = Evaluate(s, mod)
	}
	return out
}

// Can atajo para Evaluate(...).Allows(a).
func Can(s Subject, mod Module, a Action) bool {
	return Evaluate(s, mod).Allows(a)
}

// Nombres de roles.
const (
	RoleAdmin      = "ADMIN"
	RoleSeller     = "VENDEDOR"
	RoleWarehouse  = "BODEGUERO"
	RoleFinance    = "FINANZAS"
	RoleSalesChief = "JEFE_VENTAS"
)

// RoleNames roles conocidos ordenados.
func RoleNames() []string {
	names := make([]string, 0, len(roleDefaults))
	for n := range roleDefaults {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var viewOnly = PermissionSet{View: true}

var roleDefaults = map[string]PermissionMap{
	RoleAdmin: {
		ModuleUsers:     All(),
		ModuleSuppliers: All(),
		ModuleProducts:  All(),
		ModulePurchases: All(),
		ModuleInventory: All(),
	},
	RoleSeller: {
		ModuleProducts:  viewOnly,
		ModuleInventory: viewOnly,
	},
	RoleWarehouse: {
		ModuleSuppliers: viewOnly,
		ModuleProducts:  viewOnly,
		ModulePurchases: viewOnly,
		ModuleInventory: {View: true, Create: true, Edit: true},
	},
	RoleSalesChief: {
		ModuleSuppliers: {View: true, Export: true},
		ModuleProducts:  {View: true, Create: true, Edit: true},
		ModulePurchases: viewOnly,
		ModuleInventory: viewOnly,
	},
	RoleFinance: {
		ModuleSuppliers: {View: true, Export: true},
		ModuleProducts:  {View: true, Export: true},
		ModulePurchases: {View: true, Export: true},
		ModuleInventory: {View: true, Export: true},
	},
}

// DefaultPermissions mapa inicial de un rol conocido (usado por el seed). Rol desconocido: mapa vacío.
func DefaultPermissions(role string) PermissionMap {
	src := roleDefaults[role]
	out := make(PermissionMap, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
