// Package purchasing calcula los totales de las órdenes de compra.
package purchasing

import (
	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// LineSubtotal = cantidad × precio × (1 − descuento/100), redondeado a 2 decimales.
func LineSubtotal(qty, unitPrice, discountPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	return qty.Mul(unitPrice).Mul(factor).Round(moneyPlaces)
}

// LineTax IVA de la línea redondeado a 2 decimales.
func LineTax(subtotal, taxRate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Div(hundred).Round(moneyPlaces)
}

// Totals totales de una orden.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals suma las líneas. Sin líneas todo queda en cero.
// Total siempre es exactamente Subtotal + Tax.
func ComputeTotals(lines []entity.PurchaseOrderLine) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		s := LineSubtotal(l.RequestedQty, l.UnitPrice, l.DiscountPct)
		subtotal = subtotal.Add(s)
		tax = tax.Add(LineTax(s, l.TaxRate))
	}
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// Apply recalcula el subtotal de cada línea y los totales de la orden.
func Apply(o *entity.PurchaseOrder) {
	for i := range o.Lines {
		l := &o.Lines[i]
		l.Subtotal = LineSubtotal(l.RequestedQty, l.UnitPrice, l.DiscountPct)
	}
	t := ComputeTotals(o.Lines)
	o.Subtotal, o.Tax, o.Total = t.Subtotal, t.Tax, t.Total
}

// ReceivedStatus estado resultante tras una recepción: completa si todas las líneas
// alcanzaron lo solicitado, parcial en otro caso.
func ReceivedStatus(lines []entity.PurchaseOrderLine) string {
	for i := range lines {
		if lines[i].ReceivedQty.LessThan(lines[i].RequestedQty) {
			return entity.OrderStatusPartiallyReceived
		}
	}
	return entity.OrderStatusFullyReceived
}
