package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de producto.
const (
	ProductStatusActive       = "ACTIVO"
	ProductStatusInactive     = "INACTIVO"
	ProductStatusDiscontinued = "DESCONTINUADO"
)

// Product representa un producto del catálogo con su stock agregado.
// StockCurrent y AverageCost solo cambian por movimientos confirmados.
type Product struct {
	ID               string
	SKU              string // único
	EAN              string // EAN/UPC opcional, único si viene
	Name             string
	Description      string
	CategoryID       string
	BrandID          *string
	Model            string
	PurchaseUnitID   string
	SaleUnitID       string
	ConversionFactor decimal.Decimal
	StandardCost     decimal.Decimal
	AverageCost      decimal.Decimal // costo promedio ponderado
	SalePrice        decimal.Decimal
	TaxRate          decimal.Decimal // IVA en porcentaje: 19 = 19%
	StockCurrent     decimal.Decimal
	StockMin         decimal.Decimal
	StockMax         decimal.Decimal
	ReorderPoint     decimal.Decimal
	Perishable       bool
	LotControl       bool
	SerialControl    bool
	LowStockFlag     bool // stock_current < stock_min
	ExpiringFlag     bool // algún lote por vencer
	ImageURL         string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Solo lectura (JOIN).
	CategoryName string
	BrandName    string
	PurchaseUnit string
	SaleUnit     string
}

// RecomputeAlerts recalcula las banderas derivadas. Se llama antes de cada persistencia.
func (p *Product) RecomputeAlerts() {
	p.LowStockFlag = p.StockCurrent.LessThan(p.StockMin)
}

// MarginPct margen sobre el precio de venta en porcentaje, usando el costo promedio
// o el estándar si no hay promedio. Cero si no hay precio.
func (p *Product) MarginPct() decimal.Decimal {
	if !p.SalePrice.IsPositive() {
		return decimal.Zero
	}
	cost := p.AverageCost
	if cost.IsZero() {
		cost = p.StandardCost
	}
	return p.SalePrice.Sub(cost).Div(p.SalePrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// RequiresReorder stock en o bajo el punto de reorden (o el mínimo si no hay punto).
func (p *Product) RequiresReorder() bool {
	limit := p.ReorderPoint
	if limit.IsZero() {
		limit = p.StockMin
	}
	return p.StockCurrent.LessThanOrEqual(limit)
}

// IsActive indica si el producto acepta movimientos y aparece en autocompletados.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
