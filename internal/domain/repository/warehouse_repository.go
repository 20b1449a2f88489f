package repository

import (
	"context"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, w *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	GetByCode(ctx context.Context, code string) (*entity.Warehouse, error)
	Update(ctx context.Context, w *entity.Warehouse) error
	List(ctx context.Context, activeOnly bool) ([]*entity.Warehouse, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Warehouse, error)
}

// SupplierRepository define el puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetByRut(ctx context.Context, rut string) (*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, f SupplierFilter) ([]*entity.Supplier, int, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Supplier, error)
}
