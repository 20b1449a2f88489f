package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MovementVolume cantidad movida por tipo en un período (solo confirmados).
type MovementVolume struct {
	Type     string
	Count    int
	Quantity decimal.Decimal
}

// AnalyticsRepository consultas de lectura para el dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	CountActiveProducts(ctx context.Context) (int, error)
	CountLowStockProducts(ctx context.Context) (int, error)
	CountActiveAlerts(ctx context.Context) (int, error)
	// CountOpenOrders órdenes en BORRADOR, ENVIADA o CONFIRMADA.
	CountOpenOrders(ctx context.Context) (int, error)
	CountActiveWarehouses(ctx context.Context) (int, error)
	MovementVolumes(ctx context.Context, from, to time.Time) ([]MovementVolume, error)
	// InventoryValue Σ stock_current × costo promedio de productos activos.
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
}
