package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de orden de compra.
const (
	OrderStatusDraft             = "BORRADOR"
	OrderStatusSent              = "ENVIADA"
	OrderStatusConfirmed         = "CONFIRMADA"
	OrderStatusPartiallyReceived = "RECIBIDA_PARCIAL"
	OrderStatusFullyReceived     = "RECIBIDA_COMPLETA"
	OrderStatusCancelled         = "CANCELADA"
)

// PurchaseOrder orden de compra a un proveedor. Subtotal, Tax y Total se derivan de las líneas.
type PurchaseOrder struct {
	ID           string
	Number       string // único, OC-YYYYMMDD-XXXXXX
	SupplierID   string
	WarehouseID  *string // bodega de recepción por defecto
	OrderDate    time.Time
	ExpectedDate *time.Time
	Status       string
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Notes        string
	CreatedBy    string
	AuthorizedBy *string
	AuthorizedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Lines []PurchaseOrderLine

	// Solo lectura (JOIN).
	SupplierName  string
	SupplierRut   string
	WarehouseName string
}

// PurchaseOrderLine línea de una orden. TaxRate es el IVA del producto al momento de agregar la línea.
type PurchaseOrderLine struct {
	ID           string
	OrderID      string
	ProductID    string
	RequestedQty decimal.Decimal
	ReceivedQty  decimal.Decimal
	UnitPrice    decimal.Decimal
	DiscountPct  decimal.Decimal
	TaxRate      decimal.Decimal
	Subtotal     decimal.Decimal
	CreatedAt    time.Time

	// Solo lectura (JOIN).
	ProductSKU  string
	ProductName string
}

// Pending cantidad aún por recibir.
func (l *PurchaseOrderLine) Pending() decimal.Decimal {
	p := l.RequestedQty.Sub(l.ReceivedQty)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// LinesEditable las líneas solo cambian antes de confirmar.
func (o *PurchaseOrder) LinesEditable() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusSent
}

// CanReceive la recepción requiere orden confirmada o parcialmente recibida.
func (o *PurchaseOrder) CanReceive() bool {
	return o.Status == OrderStatusConfirmed || o.Status == OrderStatusPartiallyReceived
}

// IsOpen orden aún en curso (para el dashboard).
func (o *PurchaseOrder) IsOpen() bool {
	switch o.Status {
	case OrderStatusDraft, OrderStatusSent, OrderStatusConfirmed:
		return true
	}
	return false
}
