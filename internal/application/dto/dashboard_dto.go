package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	ActiveProducts   int             `json:"active_products"`
	LowStockProducts int             `json:"low_stock_products"`
	ActiveAlerts     int             `json:"active_alerts"`
	OpenOrders       int             `json:"open_orders"`
	ActiveWarehouses int             `json:"active_warehouses"`
	InventoryValue   decimal.Decimal `json:"inventory_value"` // Σ stock × costo promedio

	// Movimientos confirmados del mes en curso por tipo.
	MonthMovements []MovementVolumeDTO `json:"month_movements"`

	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// MovementVolumeDTO volumen de un tipo de movimiento.
type MovementVolumeDTO struct {
	Type     string          `json:"type"`
	Count    int             `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
}
