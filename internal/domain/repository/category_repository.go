package repository

import (
	"context"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// CategoryRepository persistencia de categorías.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Category, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// BrandRepository persistencia de marcas.
type BrandRepository interface {
	Create(ctx context.Context, b *entity.Brand) error
	GetByID(ctx context.Context, id string) (*entity.Brand, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Brand, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// UnitRepository persistencia de unidades de medida.
type UnitRepository interface {
	Create(ctx context.Context, u *entity.UnitOfMeasure) error
	GetByID(ctx context.Context, id string) (*entity.UnitOfMeasure, error)
	GetByCode(ctx context.Context, code string) (*entity.UnitOfMeasure, error)
	List(ctx context.Context) ([]*entity.UnitOfMeasure, error)
}
