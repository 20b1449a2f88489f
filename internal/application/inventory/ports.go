package inventory

import (
	"context"

	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: confirmación, stock y alertas se
// confirman juntos o no se aplican.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Tx) error) error
}
