package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicial siempre es cero;
// se carga con movimientos de INGRESO.
type CreateProductRequest struct {
	SKU              string           `json:"sku" validate:"required,min=1,max=50"`
	EAN              string           `json:"ean" validate:"omitempty,max=50"`
	Name             string           `json:"name" validate:"required,min=1,max=200"`
	Description      string           `json:"description"`
	CategoryID       string           `json:"category_id" validate:"required"`
	BrandID          string           `json:"brand_id"`
	Model            string           `json:"model" validate:"max=100"`
	PurchaseUnitID   string           `json:"purchase_unit_id" validate:"required"`
	SaleUnitID       string           `json:"sale_unit_id" validate:"required"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor"`
	StandardCost     decimal.Decimal  `json:"standard_cost"`
	SalePrice        decimal.Decimal  `json:"sale_price"`
	TaxRate          *decimal.Decimal `json:"tax_rate"`
	StockMin         decimal.Decimal  `json:"stock_min"`
	StockMax         decimal.Decimal  `json:"stock_max"`
	ReorderPoint     decimal.Decimal  `json:"reorder_point"`
	Perishable       bool             `json:"perishable"`
	LotControl       bool             `json:"lot_control"`
	SerialControl    bool             `json:"serial_control"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock ni costo promedio).
type UpdateProductRequest struct {
	EAN              *string          `json:"ean" validate:"omitempty,max=50"`
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description      *string          `json:"description"`
	CategoryID       *string          `json:"category_id"`
	BrandID          *string          `json:"brand_id"`
	Model            *string          `json:"model" validate:"omitempty,max=100"`
	PurchaseUnitID   *string          `json:"purchase_unit_id"`
	SaleUnitID       *string          `json:"sale_unit_id"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor"`
	StandardCost     *decimal.Decimal `json:"standard_cost"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	TaxRate          *decimal.Decimal `json:"tax_rate"`
	StockMin         *decimal.Decimal `json:"stock_min"`
	StockMax         *decimal.Decimal `json:"stock_max"`
	ReorderPoint     *decimal.Decimal `json:"reorder_point"`
	Perishable       *bool            `json:"perishable"`
	LotControl       *bool            `json:"lot_control"`
	SerialControl    *bool            `json:"serial_control"`
}

// ProductFilterRequest filtros específicos del listado de productos.
type ProductFilterRequest struct {
	CategoryID string `query:"categoria"`
	BrandID    string `query:"marca"`
	Status     string `query:"estado"`
	LowStock   bool   `query:"bajo_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	SKU              string          `json:"sku"`
	EAN              string          `json:"ean,omitempty"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	CategoryID       string          `json:"category_id"`
	CategoryName     string          `json:"category_name,omitempty"`
	BrandID          *string         `json:"brand_id"`
	BrandName        string          `json:"brand_name,omitempty"`
	Model            string          `json:"model,omitempty"`
	PurchaseUnitID   string          `json:"purchase_unit_id"`
	PurchaseUnit     string          `json:"purchase_unit,omitempty"`
	SaleUnitID       string          `json:"sale_unit_id"`
	SaleUnit         string          `json:"sale_unit,omitempty"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	StandardCost     decimal.Decimal `json:"standard_cost"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	StockCurrent     decimal.Decimal `json:"stock_current"`
	StockMin         decimal.Decimal `json:"stock_min"`
	StockMax         decimal.Decimal `json:"stock_max"`
	ReorderPoint     decimal.Decimal `json:"reorder_point"`
	RequiresReorder  bool            `json:"requires_reorder"`
	Perishable       bool            `json:"perishable"`
	LotControl       bool            `json:"lot_control"`
	SerialControl    bool            `json:"serial_control"`
	LowStockFlag     bool            `json:"low_stock_flag"`
	ExpiringFlag     bool            `json:"expiring_flag"`
	ImageURL         string          `json:"image_url,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LookupItem elemento de autocompletado.
type LookupItem struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}
