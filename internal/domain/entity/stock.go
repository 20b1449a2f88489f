package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseStock stock de un producto en una bodega. Complementa el stock agregado del
// producto; lo mantienen los movimientos confirmados.
type WarehouseStock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time

	// Solo lectura (JOIN).
	ProductSKU    string
	ProductName   string
	WarehouseCode string
	WarehouseName string
}

// Estados de lote.
const (
	LotStatusOK      = "OK"
	LotStatusBlocked = "BLOQUEADO"
	LotStatusExpired = "VENCIDO"
)

// Lot lote de un producto con control de vencimiento.
type Lot struct {
	ID                string
	Code              string // único por producto
	ProductID         string
	WarehouseID       string
	SupplierID        *string
	ProductionDate    *time.Time
	ExpiryDate        *time.Time
	QuantityInitial   decimal.Decimal
	QuantityAvailable decimal.Decimal
	QuantityReserved  decimal.Decimal
	UnitCost          decimal.Decimal
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Solo lectura (JOIN).
	ProductName   string
	WarehouseName string
}

// Tipos, prioridades y estados de alerta.
const (
	AlertTypeLowStock = "BAJO_STOCK"
	AlertTypeExpiring = "POR_VENCER"
	AlertTypeExpired  = "VENCIDO"

	AlertPriorityHigh   = "ALTA"
	AlertPriorityMedium = "MEDIA"

	AlertStatusActive   = "ACTIVA"
	AlertStatusResolved = "RESUELTA"
)

// StockAlert alerta de inventario (bajo stock o vencimiento de lote).
type StockAlert struct {
	ID          string
	Type        string
	ProductID   string
	WarehouseID *string
	LotID       *string
	Message     string
	CurrentQty  decimal.Decimal
	Threshold   decimal.Decimal
	Priority    string
	Status      string
	GeneratedAt time.Time
	ResolvedAt  *time.Time

	// Solo lectura (JOIN).
	ProductSKU  string
	ProductName string
	LotCode     string
}
