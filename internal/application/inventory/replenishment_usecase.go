package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// ReplenishmentUseCase arma la lista de reposición a partir de los productos activos
// que quedaron en o bajo su punto de reorden.
type ReplenishmentUseCase struct {
	products repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(products repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products}
}

// Suggest devuelve los productos a reponer con la cantidad sugerida y un ranking de prioridad.
// Stock ideal: el máximo si está definido, si no 1.5 veces el punto de reorden (o el mínimo).
func (uc *ReplenishmentUseCase) Suggest(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, _, err := uc.products.List(ctx, repository.ProductFilter{
		Status:       entity.ProductStatusActive,
		NeedsReorder: true,
	})
	if err != nil {
		return nil, err
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, p := range items {
		reorder := p.ReorderPoint
		if reorder.IsZero() {
			reorder = p.StockMin
		}
		ideal := p.StockMax
		if !ideal.IsPositive() {
			ideal = reorder.Mul(factor)
		}
		qty := ideal.Sub(p.StockCurrent)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		cost := p.AverageCost
		if cost.IsZero() {
			cost = p.StandardCost
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			CurrentStock:       p.StockCurrent,
			StockMin:           p.StockMin,
			ReorderPoint:       reorder,
			IdealStock:         ideal,
			SuggestedOrderQty:  qty,
			UnitCost:           cost,
			EstimatedOrderCost: qty.Mul(cost).Round(2),
			MarginPct:          p.MarginPct(),
		})
	}

	// Sin stock primero, luego mayor déficit bajo el reorden, luego mayor margen.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		outA, outB := !a.CurrentStock.IsPositive(), !b.CurrentStock.IsPositive()
		if outA != outB {
			return outA
		}
		defA := a.ReorderPoint.Sub(a.CurrentStock)
		defB := b.ReorderPoint.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.MarginPct.GreaterThan(b.MarginPct)
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
