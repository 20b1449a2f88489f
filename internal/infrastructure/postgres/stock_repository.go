package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo stock por producto y bodega (tabla warehouse_stock).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate obtiene y bloquea la fila; si no existe devuelve cantidad cero (Upsert la crea).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	s := entity.WarehouseStock{ProductID: productID, WarehouseID: warehouseID}
	err := r.q.QueryRow(ctx, `
		SELECT quantity, updated_at FROM warehouse_stock
		WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`,
		productID, warehouseID,
	).Scan(&s.Quantity, &s.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get warehouse stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o reemplaza la cantidad de la combinación producto/bodega.
func (r *StockRepo) Upsert(ctx context.Context, s *entity.WarehouseStock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouse_stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		s.ProductID, s.WarehouseID, s.Quantity, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert warehouse stock: %w", err)
	}
	return nil
}

// List filtra por producto y/o bodega (vacío = todos).
func (r *StockRepo) List(ctx context.Context, productID, warehouseID string) ([]*entity.WarehouseStock, error) {
	w := &where{}
	if productID != "" {
		w.and("s.product_id = " + w.arg(productID))
	}
	if warehouseID != "" {
		w.and("s.warehouse_id = " + w.arg(warehouseID))
	}
	rows, err := r.q.Query(ctx, `
		SELECT s.product_id, s.warehouse_id, s.quantity, s.updated_at, p.sku, p.name, wh.code, wh.name
		FROM warehouse_stock s
		JOIN products p ON p.id = s.product_id
		JOIN warehouses wh ON wh.id = s.warehouse_id`+w.sql()+`
		ORDER BY p.sku, wh.code`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list warehouse stock: %w", err)
	}
	defer rows.Close()
	list := []*entity.WarehouseStock{}
	for rows.Next() {
		var s entity.WarehouseStock
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt,
			&s.ProductSKU, &s.ProductName, &s.WarehouseCode, &s.WarehouseName); err != nil {
			return nil, fmt.Errorf("scan warehouse stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
