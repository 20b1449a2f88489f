package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo lotes de producto.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotSelect = `
	SELECT l.id, l.code, l.product_id, l.warehouse_id, l.supplier_id, l.production_date, l.expiry_date,
		l.quantity_initial, l.quantity_available, l.quantity_reserved, l.unit_cost, l.status,
		l.created_at, l.updated_at, COALESCE(p.name, ''), COALESCE(w.name, '')
	FROM lots l
	LEFT JOIN products p ON p.id = l.product_id
	LEFT JOIN warehouses w ON w.id = l.warehouse_id`

func scanLot(row rowScanner) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.Code, &l.ProductID, &l.WarehouseID, &l.SupplierID, &l.ProductionDate, &l.ExpiryDate,
		&l.QuantityInitial, &l.QuantityAvailable, &l.QuantityReserved, &l.UnitCost, &l.Status,
		&l.CreatedAt, &l.UpdatedAt, &l.ProductName, &l.WarehouseName,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lote; código repetido para el mismo producto → ErrDuplicate.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO lots (id, code, product_id, warehouse_id, supplier_id, production_date, expiry_date,
			quantity_initial, quantity_available, quantity_reserved, unit_cost, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		l.ID, l.Code, l.ProductID, l.WarehouseID, l.SupplierID, l.ProductionDate, l.ExpiryDate,
		l.QuantityInitial, l.QuantityAvailable, l.QuantityReserved, l.UnitCost, l.Status, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (r *LotRepo) getOne(ctx context.Context, cond string, args ...any) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, lotSelect+" WHERE "+cond, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, "l.id = $1", id)
}

func (r *LotRepo) GetByCode(ctx context.Context, productID, code string) (*entity.Lot, error) {
	return r.getOne(ctx, "l.product_id = $1 AND upper(l.code) = upper($2)", productID, code)
}

// ListByProduct lotes del producto, primero los que vencen antes.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.query(ctx, lotSelect+" WHERE l.product_id = $1 ORDER BY l.expiry_date NULLS LAST, l.code", productID)
}

// ListExpiring lotes OK con saldo que vencen en o antes de until.
func (r *LotRepo) ListExpiring(ctx context.Context, until time.Time) ([]*entity.Lot, error) {
	return r.query(ctx, lotSelect+`
		WHERE l.status = 'OK' AND l.quantity_available > 0
		  AND l.expiry_date IS NOT NULL AND l.expiry_date <= $1
		ORDER BY l.expiry_date, l.code`, until)
}

func (r *LotRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE lots SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update lot status: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *LotRepo) AdjustAvailable(ctx context.Context, id string, delta decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE lots SET quantity_available = GREATEST(quantity_available + $2, 0), updated_at = now()
		WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("adjust lot quantity: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *LotRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	list := []*entity.Lot{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
