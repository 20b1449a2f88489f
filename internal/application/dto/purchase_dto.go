package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest entrada para crear una orden de compra (nace en BORRADOR).
type CreateOrderRequest struct {
	Number       string             `json:"number" validate:"omitempty,max=30"`
	SupplierID   string             `json:"supplier_id" validate:"required"`
	WarehouseID  string             `json:"warehouse_id"`
	OrderDate    string             `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedDate string             `json:"expected_date" validate:"omitempty,datetime=2006-01-02"`
	Notes        string             `json:"notes"`
	Lines        []OrderLineRequest `json:"lines" validate:"dive"`
}

// OrderLineRequest línea a agregar o reemplazar.
type OrderLineRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	RequestedQty decimal.Decimal  `json:"requested_qty"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	DiscountPct  *decimal.Decimal `json:"discount_pct"`
}

// OrderStatusRequest cambio de estado de la orden.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ENVIADA CONFIRMADA CANCELADA"`
}

// ReceiveOrderRequest recepción de mercadería.
type ReceiveOrderRequest struct {
	WarehouseID string               `json:"warehouse_id"`
	Lines       []ReceiveLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiveLineRequest cantidad recibida de una línea.
type ReceiveLineRequest struct {
	LineID   string          `json:"line_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	LotID    string          `json:"lot_id"`
}

// OrderFilterRequest filtros del listado de órdenes.
type OrderFilterRequest struct {
	Status     string `query:"estado"`
	SupplierID string `query:"proveedor"`
	DateFrom   string `query:"fecha_desde"`
	DateTo     string `query:"fecha_hasta"`
}

// OrderLineResponse salida de una línea.
type OrderLineResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductSKU   string          `json:"product_sku"`
	ProductName  string          `json:"product_name"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	ReceivedQty  decimal.Decimal `json:"received_qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountPct  decimal.Decimal `json:"discount_pct"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	SupplierID    string              `json:"supplier_id"`
	SupplierName  string              `json:"supplier_name,omitempty"`
	WarehouseID   *string             `json:"warehouse_id"`
	WarehouseName string              `json:"warehouse_name,omitempty"`
	OrderDate     time.Time           `json:"order_date"`
	ExpectedDate  *time.Time          `json:"expected_date"`
	Status        string              `json:"status"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	Notes         string              `json:"notes,omitempty"`
	CreatedBy     string              `json:"created_by"`
	AuthorizedBy  *string             `json:"authorized_by"`
	AuthorizedAt  *time.Time          `json:"authorized_at"`
	Lines         []OrderLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}
