// Package inventory contiene las reglas puras del motor de inventario:
// efecto de un movimiento sobre el stock y costo promedio.
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// Delta variación del stock agregado del producto según el tipo de movimiento.
// INGRESO/DEVOLUCION suman, SALIDA/AJUSTE restan, TRANSFERENCIA no cambia el total.
func Delta(movType string, qty decimal.Decimal) decimal.Decimal {
	switch movType {
	case entity.MovementTypeIngress, entity.MovementTypeReturn:
		return qty
	case entity.MovementTypeEgress, entity.MovementTypeAdjustment:
		return qty.Neg()
	}
	return decimal.Zero
}

// ApplyMovement devuelve el nuevo stock agregado.
func ApplyMovement(stock decimal.Decimal, movType string, qty decimal.Decimal) decimal.Decimal {
	return stock.Add(Delta(movType, qty))
}

// LotWarehouse bodega donde debe estar el lote del movimiento: la de origen para
// salidas, ajustes y transferencias; la de destino (u origen si falta) para entradas.
func LotWarehouse(movType string, src, dst *string) *string {
	switch movType {
	case entity.MovementTypeIngress, entity.MovementTypeReturn:
		if dst != nil {
			return dst
		}
		return src
	}
	return src
}

// LotDelta variación del saldo disponible del lote. La TRANSFERENCIA no lo toca:
// el lote queda registrado en su bodega.
func LotDelta(m *entity.InventoryMovement) decimal.Decimal {
	if m.LotID == nil {
		return decimal.Zero
	}
	return Delta(m.Type, m.Quantity)
}

// WarehouseDelta variación de stock en una bodega.
type WarehouseDelta struct {
	WarehouseID string
	Delta       decimal.Decimal
}

// WarehouseDeltas efecto del movimiento sobre el stock por bodega.
// La TRANSFERENCIA resta en origen y suma en destino; el resto usa la bodega que corresponda.
func WarehouseDeltas(m *entity.InventoryMovement) []WarehouseDelta {
	var out []WarehouseDelta
	switch m.Type {
	case entity.MovementTypeIngress, entity.MovementTypeReturn:
		if m.DestWarehouseID != nil {
			out = append(out, WarehouseDelta{*m.DestWarehouseID, m.Quantity})
		} else if m.SourceWarehouseID != nil {
			out = append(out, WarehouseDelta{*m.SourceWarehouseID, m.Quantity})
		}
	case entity.MovementTypeEgress, entity.MovementTypeAdjustment:
		if m.SourceWarehouseID != nil {
			out = append(out, WarehouseDelta{*m.SourceWarehouseID, m.Quantity.Neg()})
		}
	case entity.MovementTypeTransfer:
		if m.SourceWarehouseID != nil {
			out = append(out, WarehouseDelta{*m.SourceWarehouseID, m.Quantity.Neg()})
		}
		if m.DestWarehouseID != nil {
			out = append(out, WarehouseDelta{*m.DestWarehouseID, m.Quantity})
		}
	}
	return out
}

// Reconcile aplica un movimiento confirmado al producto: stock, costo promedio en ingresos
// con costo unitario y bandera de bajo stock. No persiste nada.
func Reconcile(p *entity.Product, m *entity.InventoryMovement) error {
	if p.ID != m.ProductID {
		return fmt.Errorf("reconcile: movimiento %s no corresponde al producto %s", m.ID, p.ID)
	}
	if m.Status != entity.MovementStatusConfirmed {
		return domain.StateConflict("solo se concilian movimientos confirmados (estado %s)", m.Status)
	}
	if m.Type == entity.MovementTypeIngress && m.UnitCost.Valid {
		p.AverageCost = CostCalculator(p.StockCurrent, p.AverageCost, m.Quantity, m.UnitCost.Decimal)
	}
	p.StockCurrent = ApplyMovement(p.StockCurrent, m.Type, m.Quantity)
	p.RecomputeAlerts()
	return nil
}
