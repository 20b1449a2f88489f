package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock y vencimiento.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

const alertColumns = `
	a.id, a.type, a.product_id, a.warehouse_id, a.lot_id, a.message, a.current_qty, a.threshold,
	a.priority, a.status, a.generated_at, a.resolved_at,
	COALESCE(p.sku, ''), COALESCE(p.name, ''), COALESCE(l.code, '')`

const alertFrom = `
	FROM stock_alerts a
	LEFT JOIN products p ON p.id = a.product_id
	LEFT JOIN lots l ON l.id = a.lot_id`

func scanAlert(row rowScanner) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := row.Scan(
		&a.ID, &a.Type, &a.ProductID, &a.WarehouseID, &a.LotID, &a.Message, &a.CurrentQty, &a.Threshold,
		&a.Priority, &a.Status, &a.GeneratedAt, &a.ResolvedAt,
		&a.ProductSKU, &a.ProductName, &a.LotCode,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_alerts (id, type, product_id, warehouse_id, lot_id, message, current_qty, threshold,
			priority, status, generated_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.Type, a.ProductID, a.WarehouseID, a.LotID, a.Message, a.CurrentQty, a.Threshold,
		a.Priority, a.Status, a.GeneratedAt, a.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock alert: %w", err)
	}
	return nil
}

func (r *StockAlertRepo) getOne(ctx context.Context, cond string, args ...any) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, "SELECT "+alertColumns+alertFrom+" WHERE "+cond, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock alert: %w", err)
	}
	return a, nil
}

func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	return r.getOne(ctx, "a.id = $1", id)
}

// FindActive alerta ACTIVA del tipo para el producto; con lotID se restringe a ese lote.
func (r *StockAlertRepo) FindActive(ctx context.Context, productID, alertType string, lotID *string) (*entity.StockAlert, error) {
	return r.getOne(ctx,
		"a.status = 'ACTIVA' AND a.product_id = $1 AND a.type = $2 AND ($3::text IS NULL OR a.lot_id = $3) "+
			"ORDER BY a.generated_at DESC LIMIT 1",
		productID, alertType, lotID)
}

func (r *StockAlertRepo) Resolve(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock_alerts SET status = 'RESUELTA', resolved_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("resolve stock alert: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *StockAlertRepo) ResolveActive(ctx context.Context, productID, alertType string, at time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts SET status = 'RESUELTA', resolved_at = $3
		WHERE status = 'ACTIVA' AND product_id = $1 AND type = $2`,
		productID, alertType, at)
	if err != nil {
		return 0, fmt.Errorf("resolve active stock alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *StockAlertRepo) ResolveActiveForLot(ctx context.Context, lotID, alertType string, at time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts SET status = 'RESUELTA', resolved_at = $3
		WHERE status = 'ACTIVA' AND lot_id = $1 AND type = $2`,
		lotID, alertType, at)
	if err != nil {
		return 0, fmt.Errorf("resolve active lot alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List alertas más recientes primero.
func (r *StockAlertRepo) List(ctx context.Context, f repository.AlertFilter) ([]*entity.StockAlert, int, error) {
	w := &where{}
	if f.Status != "" {
		w.and("a.status = " + w.arg(f.Status))
	}
	if f.Type != "" {
		w.and("a.type = " + w.arg(f.Type))
	}
	if f.ProductID != "" {
		w.and("a.product_id = " + w.arg(f.ProductID))
	}
	total, err := count(ctx, r.q, alertFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count stock alerts: %w", err)
	}
	rows, err := r.q.Query(ctx,
		"SELECT "+alertColumns+alertFrom+w.sql()+" ORDER BY a.generated_at DESC, a.id"+w.window(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock alerts: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockAlert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock alert: %w", err)
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}
