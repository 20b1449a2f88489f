package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

func (r *AnalyticsRepo) scalar(ctx context.Context, op, query string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *AnalyticsRepo) CountActiveProducts(ctx context.Context) (int, error) {
	return r.scalar(ctx, "count active products", `SELECT count(*) FROM products WHERE status = 'ACTIVO'`)
}

func (r *AnalyticsRepo) CountLowStockProducts(ctx context.Context) (int, error) {
	return r.scalar(ctx, "count low stock products",
		`SELECT count(*) FROM products WHERE status = 'ACTIVO' AND low_stock_flag`)
}

func (r *AnalyticsRepo) CountActiveAlerts(ctx context.Context) (int, error) {
	return r.scalar(ctx, "count active alerts", `SELECT count(*) FROM stock_alerts WHERE status = 'ACTIVA'`)
}

func (r *AnalyticsRepo) CountOpenOrders(ctx context.Context) (int, error) {
	return r.scalar(ctx, "count open orders",
		`SELECT count(*) FROM purchase_orders WHERE status IN ('BORRADOR', 'ENVIADA', 'CONFIRMADA')`)
}

func (r *AnalyticsRepo) CountActiveWarehouses(ctx context.Context) (int, error) {
	return r.scalar(ctx, "count active warehouses", `SELECT count(*) FROM warehouses WHERE active`)
}

// MovementVolumes agrupa los movimientos confirmados del período [from, to) por tipo.
func (r *AnalyticsRepo) MovementVolumes(ctx context.Context, from, to time.Time) ([]repository.MovementVolume, error) {
	const query = `
	SELECT
	    type,
	    count(*)                    AS movements,
	    COALESCE(sum(quantity), 0)  AS quantity
	FROM inventory_movements
	WHERE status = 'CONFIRMADO'
	  AND moved_at >= $1
	  AND moved_at <  $2
	GROUP BY type
	ORDER BY type`

	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("movement volumes: %w", err)
	}
	defer rows.Close()
	out := []repository.MovementVolume{}
	for rows.Next() {
		var v repository.MovementVolume
		if err := rows.Scan(&v.Type, &v.Count, &v.Quantity); err != nil {
			return nil, fmt.Errorf("scan movement volume: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// InventoryValue Σ stock_current × average_cost de productos activos con stock positivo.
func (r *AnalyticsRepo) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(sum(stock_current * average_cost), 0)
	FROM products
	WHERE status = 'ACTIVO' AND stock_current > 0`

	var v decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&v); err != nil {
		return decimal.Zero, fmt.Errorf("inventory value: %w", err)
	}
	return v.Round(2), nil
}
