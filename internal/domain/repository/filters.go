package repository

import "time"

// Page ventana de resultados. Limit 0 = sin límite (exportaciones).
type Page struct {
	Limit  int
	Offset int
}

// Sort orden solicitado. Field es una clave lógica ya validada por la capa de aplicación;
// cada adaptador la traduce a su columna y usa su orden por defecto si no la conoce.
type Sort struct {
	Field string
	Desc  bool
}

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search       string
	CategoryID   string
	BrandID      string
	Status       string
	LowStock     bool
	NeedsReorder bool // stock en o bajo el punto de reorden (o el mínimo si no hay punto)
	Sort         Sort
	Page         Page
}

// SupplierFilter filtros del listado de proveedores.
type SupplierFilter struct {
	Search  string
	Status  string
	Country string
	Sort    Sort
	Page    Page
}

// UserFilter filtros del listado de usuarios.
type UserFilter struct {
	Search string
	RoleID string
	Status string
	Sort   Sort
	Page   Page
}

// MovementFilter filtros del listado de movimientos. To es inclusivo hasta el fin del día.
type MovementFilter struct {
	Search      string
	Type        string
	Status      string
	WarehouseID string // origen o destino
	ProductID   string
	From        *time.Time
	To          *time.Time
	Sort        Sort
	Page        Page
}

// OrderFilter filtros del listado de órdenes de compra.
type OrderFilter struct {
	Search     string
	Status     string
	SupplierID string
	From       *time.Time
	To         *time.Time
	Page       Page
}

// AlertFilter filtros de alertas.
type AlertFilter struct {
	Status    string
	Type      string
	ProductID string
	Page      Page
}

// MovementStats contadores del encabezado del listado de movimientos.
type MovementStats struct {
	Total        int `json:"total"`
	Today        int `json:"hoy"`
	Pending      int `json:"pendientes"`
	MonthIngress int `json:"ingresos_mes"`
	MonthEgress  int `json:"salidas_mes"`
}
