package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIngress    = "INGRESO"
	MovementTypeEgress     = "SALIDA"
	MovementTypeTransfer   = "TRANSFERENCIA"
	MovementTypeAdjustment = "AJUSTE"
	MovementTypeReturn     = "DEVOLUCION"
)

// Estados de movimiento.
const (
	MovementStatusPending   = "PENDIENTE"
	MovementStatusConfirmed = "CONFIRMADO"
	MovementStatusCancelled = "ANULADO"
)

// Tipos de documento padre.
const (
	ParentDocPurchaseOrder = "ORDEN_COMPRA"
)

// InventoryMovement representa un evento de inventario sobre un producto.
// Una vez CONFIRMADO o ANULADO no se modifica.
type InventoryMovement struct {
	ID                string
	Type              string
	MovedAt           time.Time
	ProductID         string
	Quantity          decimal.Decimal // siempre positiva; el signo lo da el tipo
	UnitID            string
	SourceWarehouseID *string
	DestWarehouseID   *string
	SupplierID        *string
	LotID             *string
	Serial            string
	UnitCost          decimal.NullDecimal
	TotalCost         decimal.NullDecimal
	ReferenceDoc      string
	AdjustmentReason  string
	Notes             string
	ParentDocType     string
	ParentDocID       *string
	Status            string
	CreatedBy         string
	ConfirmedBy       *string
	ConfirmedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Solo lectura (JOIN).
	ProductSKU          string
	ProductName         string
	UnitCode            string
	SourceWarehouseName string
	DestWarehouseName   string
	SupplierName        string
	LotCode             string
	CreatedByName       string
}

// IsMovementType valida el tipo.
func IsMovementType(t string) bool {
	switch t {
	case MovementTypeIngress, MovementTypeEgress, MovementTypeTransfer, MovementTypeAdjustment, MovementTypeReturn:
		return true
	}
	return false
}

// NeedsSupplier tipos que exigen proveedor.
func NeedsSupplier(t string) bool {
	return t == MovementTypeIngress || t == MovementTypeReturn
}

// NeedsSource tipos que exigen bodega de origen.
func NeedsSource(t string) bool {
	return t == MovementTypeEgress || t == MovementTypeAdjustment || t == MovementTypeTransfer
}

// NeedsDestination tipos que exigen bodega de destino.
func NeedsDestination(t string) bool {
	return t == MovementTypeIngress || t == MovementTypeTransfer
}

// IsPending indica si el movimiento aún puede editarse.
func (m *InventoryMovement) IsPending() bool {
	return m.Status == MovementStatusPending
}
