package purchasing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(qty, price, disc, tax string) entity.PurchaseOrderLine {
	return entity.PurchaseOrderLine{RequestedQty: dec(qty), UnitPrice: dec(price), DiscountPct: dec(disc), TaxRate: dec(tax)}
}

func TestComputeTotals_LineaConDescuento(t *testing.T) {
	got := ComputeTotals([]entity.PurchaseOrderLine{line("10", "100", "10", "19")})
	assert.True(t, got.Subtotal.Equal(dec("900")), "subtotal %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("171")), "tax %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("1071")), "total %s", got.Total)
}

func TestComputeTotals_SinLineas(t *testing.T) {
	got := ComputeTotals(nil)
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestComputeTotals_TotalEsSubtotalMasIVA(t *testing.T) {
	lines := []entity.PurchaseOrderLine{
		line("3", "33.33", "0", "19"),
		line("7", "1.15", "12.5", "5"),
		line("1", "999.99", "0", "0"),
		line("2.5", "10", "100", "19"),
	}
	got := ComputeTotals(lines)
	assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax)))

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineSubtotal(l.RequestedQty, l.UnitPrice, l.DiscountPct))
	}
	assert.True(t, got.Subtotal.Equal(sum))
}

func TestLineSubtotal_Redondeo(t *testing.T) {
	assert.True(t, LineSubtotal(dec("3"), dec("33.333"), dec("0")).Equal(dec("100")))
	assert.True(t, LineSubtotal(dec("1"), dec("10.005"), dec("0")).Equal(dec("10.01")))
}

func TestApply_ActualizaLineasYOrden(t *testing.T) {
	o := &entity.PurchaseOrder{Lines: []entity.PurchaseOrderLine{line("10", "100", "10", "19"), line("1", "50", "0", "0")}}
	Apply(o)
	assert.True(t, o.Lines[0].Subtotal.Equal(dec("900")))
	assert.True(t, o.Lines[1].Subtotal.Equal(dec("50")))
	assert.True(t, o.Subtotal.Equal(dec("950")))
	assert.True(t, o.Tax.Equal(dec("171")))
	assert.True(t, o.Total.Equal(dec("1121")))
}

func TestReceivedStatus(t *testing.T) {
	lines := []entity.PurchaseOrderLine{
		{RequestedQty: dec("10"), ReceivedQty: dec("10")},
		{RequestedQty: dec("5"), ReceivedQty: dec("2")},
	}
	assert.Equal(t, entity.OrderStatusPartiallyReceived, ReceivedStatus(lines))
	lines[1].ReceivedQty = dec("5")
	assert.Equal(t, entity.OrderStatusFullyReceived, ReceivedStatus(lines))
}
