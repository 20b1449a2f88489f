package entity

import "time"

// Tipos de bodega.
const (
	WarehouseTypeMain    = "PRINCIPAL"
	WarehouseTypeBranch  = "SUCURSAL"
	WarehouseTypeTransit = "TRANSITO"
)

// Warehouse representa una bodega o sucursal donde se almacena inventario.
type Warehouse struct {
	ID        string
	Code      string // único
	Name      string
	Type      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsWarehouseType valida el tipo de bodega.
func IsWarehouseType(t string) bool {
	switch t {
	case WarehouseTypeMain, WarehouseTypeBranch, WarehouseTypeTransit:
		return true
	}
	return false
}
