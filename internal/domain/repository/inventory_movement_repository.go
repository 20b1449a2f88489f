package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// InventoryMovementRepository persistencia de movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, m *entity.InventoryMovement) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	// GetForUpdate bloquea la fila; la verificación de estado se hace sobre esta lectura.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryMovement, error)
	// Update persiste los campos editables y el estado/confirmación.
	Update(ctx context.Context, m *entity.InventoryMovement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.InventoryMovement, int, error)
	Stats(ctx context.Context, now time.Time) (MovementStats, error)
}

// LotRepository persistencia de lotes.
type LotRepository interface {
	Create(ctx context.Context, l *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetByCode(ctx context.Context, productID, code string) (*entity.Lot, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListExpiring lotes OK con cantidad disponible y vencimiento en o antes de until.
	ListExpiring(ctx context.Context, until time.Time) ([]*entity.Lot, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// AdjustAvailable suma delta al saldo disponible; nunca baja de cero.
	AdjustAvailable(ctx context.Context, id string, delta decimal.Decimal) error
}

// StockAlertRepository persistencia de alertas.
type StockAlertRepository interface {
	Create(ctx context.Context, a *entity.StockAlert) error
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	// FindActive alerta ACTIVA del tipo para el producto (y lote si se indica).
	FindActive(ctx context.Context, productID, alertType string, lotID *string) (*entity.StockAlert, error)
	Resolve(ctx context.Context, id string, at time.Time) error
	// ResolveActive resuelve todas las alertas ACTIVAS del tipo para el producto.
	ResolveActive(ctx context.Context, productID, alertType string, at time.Time) (int64, error)
	// ResolveActiveForLot igual que ResolveActive pero restringido a un lote.
	ResolveActiveForLot(ctx context.Context, lotID, alertType string, at time.Time) (int64, error)
	List(ctx context.Context, f AlertFilter) ([]*entity.StockAlert, int, error)
}
