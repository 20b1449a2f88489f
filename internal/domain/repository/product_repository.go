package repository

import (
	"context"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByEAN(ctx context.Context, ean string) (*entity.Product, error)
	// Update no toca stock ni costo promedio.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock persiste stock, costo promedio y banderas derivadas.
	UpdateStock(ctx context.Context, product *entity.Product) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	// SyncExpiringFlags deja expiring_flag en true solo para los productos indicados.
	SyncExpiringFlags(ctx context.Context, productIDs []string) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, int, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Product, error)
}
