package repository

import (
	"context"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// StockRepository stock por producto y bodega.
type StockRepository interface {
	// GetForUpdate obtiene y bloquea la fila; si no existe devuelve cantidad cero.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error)
	Upsert(ctx context.Context, s *entity.WarehouseStock) error
	List(ctx context.Context, productID, warehouseID string) ([]*entity.WarehouseStock, error)
}

// Tx repositorios atados a una misma transacción.
type Tx struct {
	Movements InventoryMovementRepository
	Products  ProductRepository
	Stock     StockRepository
	Alerts    StockAlertRepository
	Lots      LotRepository
	Orders    PurchaseOrderRepository
}
