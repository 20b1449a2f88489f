package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

func TestRender_GeneraPDF(t *testing.T) {
	order := &entity.PurchaseOrder{
		Number:    "OC-20261019-ABC123",
		OrderDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Status:    entity.OrderStatusDraft,
		Subtotal:  decimal.NewFromInt(10000),
		Tax:       decimal.NewFromInt(1900),
		Total:     decimal.NewFromInt(11900),
		Lines: []entity.PurchaseOrderLine{{
			ProductSKU: "CHO-001", ProductName: "Chocolate", RequestedQty: decimal.NewFromInt(10),
			UnitPrice: decimal.NewFromInt(1000), Subtotal: decimal.NewFromInt(10000),
		}},
	}
	sup := &entity.Supplier{LegalName: "Dulces del Sur SpA", RutNif: "76.123.456-7", PaymentTerms: entity.Payment30Days}

	data, err := NewMarotoPDFGenerator().Render(order, sup, "Dulcería Lilis")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRender_SinProveedor(t *testing.T) {
	_, err := NewMarotoPDFGenerator().Render(&entity.PurchaseOrder{}, nil, "x")
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "0",
		"999":      "999",
		"25000":    "25.000",
		"1000000":  "1.000.000",
		"-4500":    "-4.500",
		"1234.567": "1.235",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestPaymentLabel(t *testing.T) {
	assert.Equal(t, "30 días", paymentLabel(&entity.Supplier{PaymentTerms: entity.Payment30Days}))
	assert.Equal(t, "45 días fecha factura", paymentLabel(&entity.Supplier{PaymentTerms: entity.PaymentOther, PaymentTermsOther: "45 días fecha factura"}))
}
