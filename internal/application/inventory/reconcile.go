package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/inventory"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// reconcile aplica un movimiento ya CONFIRMADO dentro de la transacción del caller:
// bloquea el producto (SELECT FOR UPDATE), ajusta stock y costo, actualiza el stock por
// bodega y mantiene la alerta de bajo stock.
func reconcile(ctx context.Context, tx repository.Tx, m *entity.InventoryMovement, now time.Time, log *logger.Logger) error {
	p, err := tx.Products.GetForUpdate(ctx, m.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, m.ProductID)
	}
	before := p.StockCurrent
	if err := inventory.Reconcile(p, m); err != nil {
		return err
	}
	p.UpdatedAt = now
	if err := tx.Products.UpdateStock(ctx, p); err != nil {
		return err
	}

	for _, d := range inventory.WarehouseDeltas(m) {
		s, err := tx.Stock.GetForUpdate(ctx, m.ProductID, d.WarehouseID)
		if err != nil {
			return err
		}
		s.Quantity = s.Quantity.Add(d.Delta)
		s.UpdatedAt = now
		if err := tx.Stock.Upsert(ctx, s); err != nil {
			return err
		}
	}

	if d := inventory.LotDelta(m); !d.IsZero() {
		if err := tx.Lots.AdjustAvailable(ctx, *m.LotID, d); err != nil {
			return err
		}
	}

	log.Info().
		Str("movement_id", m.ID).
		Str("type", m.Type).
		Str("product_id", p.ID).
		Str("stock_before", before.String()).
		Str("stock_after", p.StockCurrent.String()).
		Bool("low_stock", p.LowStockFlag).
		Msg("movimiento conciliado")

	return SyncLowStockAlert(ctx, tx.Alerts, p, now, log)
}

// SyncLowStockAlert mantiene una única alerta BAJO_STOCK ACTIVA por producto:
// la crea si el producto quedó bajo el mínimo y resuelve las activas si ya no lo está.
func SyncLowStockAlert(ctx context.Context, alerts repository.StockAlertRepository, p *entity.Product, now time.Time, log *logger.Logger) error {
	if !p.LowStockFlag {
		n, err := alerts.ResolveActive(ctx, p.ID, entity.AlertTypeLowStock, now)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Str("product_id", p.ID).Int64("resolved", n).Msg("alertas de bajo stock resueltas")
		}
		return nil
	}

	existing, err := alerts.FindActive(ctx, p.ID, entity.AlertTypeLowStock, nil)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	priority := entity.AlertPriorityMedium
	if p.StockCurrent.LessThanOrEqual(decimal.Zero) {
		priority = entity.AlertPriorityHigh
	}
	a := &entity.StockAlert{
		ID:          uuid.New().String(),
		Type:        entity.AlertTypeLowStock,
		ProductID:   p.ID,
		Message:     fmt.Sprintf("Stock de %s (%s) bajo el mínimo: %s < %s", p.Name, p.SKU, p.StockCurrent, p.StockMin),
		CurrentQty:  p.StockCurrent,
		Threshold:   p.StockMin,
		Priority:    priority,
		Status:      entity.AlertStatusActive,
		GeneratedAt: now,
	}
	if err := alerts.Create(ctx, a); err != nil {
		return err
	}
	log.Warn().Str("product_id", p.ID).Str("sku", p.SKU).Str("priority", priority).Msg("alerta de bajo stock generada")
	return nil
}

// RecordConfirmedInTx registra un movimiento directamente CONFIRMADO usando los repositorios
// del caller (misma transacción) y lo concilia. Lo usa la recepción de órdenes de compra.
// Si retorna error, el caller debe hacer rollback.
func (uc *MovementUseCase) RecordConfirmedInTx(ctx context.Context, tx repository.Tx, m *entity.InventoryMovement, userID string) error {
	now := uc.now()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.MovedAt.IsZero() {
		m.MovedAt = now
	}
	if !m.Quantity.IsPositive() {
		return domain.Invalid("quantity", "debe ser mayor a cero")
	}
	m.Status = entity.MovementStatusConfirmed
	m.CreatedBy = userID
	m.ConfirmedBy = &userID
	m.ConfirmedAt = &now
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.UnitCost.Valid && !m.TotalCost.Valid {
		m.TotalCost = decimal.NewNullDecimal(m.Quantity.Mul(m.UnitCost.Decimal))
	}
	if err := tx.Movements.Create(ctx, m); err != nil {
		return err
	}
	return reconcile(ctx, tx, m, now, uc.log)
}

// confirmLocked transiciona a CONFIRMADO un movimiento ya bloqueado y lo concilia.
func (uc *MovementUseCase) confirmLocked(ctx context.Context, tx repository.Tx, m *entity.InventoryMovement, userID string) error {
	if err := entity.CheckMovementTransition(m.Status, entity.MovementStatusConfirmed); err != nil {
		return domain.StateConflict("el movimiento está %s y no puede confirmarse", m.Status)
	}
	now := uc.now()
	m.Status = entity.MovementStatusConfirmed
	m.ConfirmedBy = &userID
	m.ConfirmedAt = &now
	m.UpdatedAt = now
	if err := tx.Movements.Update(ctx, m); err != nil {
		return err
	}
	return reconcile(ctx, tx, m, now, uc.log)
}
