package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// CreateMovementRequest body para POST /api/inventory/movements.
// Los campos requeridos según el tipo se validan en el caso de uso.
type CreateMovementRequest struct {
	Type              string           `json:"type" validate:"required,oneof=INGRESO SALIDA TRANSFERENCIA AJUSTE DEVOLUCION"`
	MovedAt           *time.Time       `json:"moved_at"`
	ProductID         string           `json:"product_id" validate:"required"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitID            string           `json:"unit_id" validate:"required"`
	SourceWarehouseID string           `json:"source_warehouse_id,omitempty"`
	DestWarehouseID   string           `json:"dest_warehouse_id,omitempty"`
	SupplierID        string           `json:"supplier_id,omitempty"`
	LotID             string           `json:"lot_id,omitempty"`
	Serial            string           `json:"serial,omitempty" validate:"max=100"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost         *decimal.Decimal `json:"total_cost,omitempty"`
	ReferenceDoc      string           `json:"reference_doc,omitempty" validate:"max=100"`
	AdjustmentReason  string           `json:"adjustment_reason,omitempty" validate:"max=255"`
	Notes             string           `json:"notes,omitempty"`
	Status            string           `json:"status,omitempty" validate:"omitempty,oneof=PENDIENTE CONFIRMADO"`
}

// UpdateMovementRequest body para PUT /api/inventory/movements/:id (solo PENDIENTE).
type UpdateMovementRequest struct {
	Quantity         *decimal.Decimal `json:"quantity"`
	UnitCost         *decimal.Decimal `json:"unit_cost"`
	TotalCost        *decimal.Decimal `json:"total_cost"`
	ReferenceDoc     *string          `json:"reference_doc" validate:"omitempty,max=100"`
	AdjustmentReason *string          `json:"adjustment_reason" validate:"omitempty,max=255"`
	Notes            *string          `json:"notes"`
	Status           string           `json:"status,omitempty" validate:"omitempty,oneof=PENDIENTE CONFIRMADO ANULADO"`
}

// MovementFilterRequest filtros específicos del listado de movimientos.
type MovementFilterRequest struct {
	Type        string `query:"tipo"`
	Status      string `query:"estado"`
	WarehouseID string `query:"bodega"`
	ProductID   string `query:"producto"`
	DateFrom    string `query:"fecha_desde"`
	DateTo      string `query:"fecha_hasta"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                  string           `json:"id"`
	Type                string           `json:"type"`
	MovedAt             time.Time        `json:"moved_at"`
	ProductID           string           `json:"product_id"`
	ProductSKU          string           `json:"product_sku"`
	ProductName         string           `json:"product_name"`
	Quantity            decimal.Decimal  `json:"quantity"`
	UnitID              string           `json:"unit_id"`
	UnitCode            string           `json:"unit_code"`
	SourceWarehouseID   *string          `json:"source_warehouse_id"`
	SourceWarehouseName string           `json:"source_warehouse_name,omitempty"`
	DestWarehouseID     *string          `json:"dest_warehouse_id"`
	DestWarehouseName   string           `json:"dest_warehouse_name,omitempty"`
	SupplierID          *string          `json:"supplier_id"`
	SupplierName        string           `json:"supplier_name,omitempty"`
	LotID               *string          `json:"lot_id"`
	LotCode             string           `json:"lot_code,omitempty"`
	Serial              string           `json:"serial,omitempty"`
	UnitCost            *decimal.Decimal `json:"unit_cost"`
	TotalCost           *decimal.Decimal `json:"total_cost"`
	ReferenceDoc        string           `json:"reference_doc,omitempty"`
	AdjustmentReason    string           `json:"adjustment_reason,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	ParentDocType       string           `json:"parent_doc_type,omitempty"`
	ParentDocID         *string          `json:"parent_doc_id,omitempty"`
	Status              string           `json:"status"`
	CreatedBy           string           `json:"created_by"`
	CreatedByName       string           `json:"created_by_name,omitempty"`
	ConfirmedBy         *string          `json:"confirmed_by"`
	ConfirmedAt         *time.Time       `json:"confirmed_at"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// MovementListResponse página de movimientos con los contadores del encabezado.
type MovementListResponse struct {
	listing.Result[MovementResponse]
	Stats repository.MovementStats `json:"stats"`
}

// WarehouseStockResponse stock de un producto en una bodega.
type WarehouseStockResponse struct {
	ProductID     string          `json:"product_id"`
	ProductSKU    string          `json:"product_sku"`
	ProductName   string          `json:"product_name"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseCode string          `json:"warehouse_code"`
	WarehouseName string          `json:"warehouse_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AlertResponse salida de una alerta de stock.
type AlertResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	ProductID   string          `json:"product_id"`
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	WarehouseID *string         `json:"warehouse_id"`
	LotID       *string         `json:"lot_id"`
	LotCode     string          `json:"lot_code,omitempty"`
	Message     string          `json:"message"`
	CurrentQty  decimal.Decimal `json:"current_qty"`
	Threshold   decimal.Decimal `json:"threshold"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	GeneratedAt time.Time       `json:"generated_at"`
	ResolvedAt  *time.Time      `json:"resolved_at"`
}

// AlertFilterRequest filtros de alertas.
type AlertFilterRequest struct {
	Status    string `query:"estado"`
	Type      string `query:"tipo"`
	ProductID string `query:"producto"`
}

// ExpiryScanResponse resultado del barrido de vencimientos.
type ExpiryScanResponse struct {
	LotsChecked    int `json:"lots_checked"`
	ExpiredLots    int `json:"expired_lots"`
	ExpiringLots   int `json:"expiring_lots"`
	AlertsCreated  int `json:"alerts_created"`
	ProductsMarked int `json:"products_marked"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición de un producto.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	StockMin           decimal.Decimal `json:"stock_min"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	MarginPct          decimal.Decimal `json:"margin_pct"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
