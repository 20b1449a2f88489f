package repository

import (
	"context"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// PurchaseOrderRepository persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, o *entity.PurchaseOrder) error
	// GetByID incluye las líneas.
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la orden e incluye las líneas.
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// Update persiste cabecera: estado, autorización, totales, notas y fechas.
	Update(ctx context.Context, o *entity.PurchaseOrder) error
	List(ctx context.Context, f OrderFilter) ([]*entity.PurchaseOrder, int, error)

	AddLine(ctx context.Context, l *entity.PurchaseOrderLine) error
	UpdateLine(ctx context.Context, l *entity.PurchaseOrderLine) error
	DeleteLine(ctx context.Context, orderID, lineID string) error
}
