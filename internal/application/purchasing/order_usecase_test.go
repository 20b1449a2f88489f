package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/purchasing"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	productID = "prod-gomitas"
	unitID    = "unit-kg"
	whID      = "wh-central"
	supActive = "sup-activo"
	supBlock  = "sup-bloqueado"
	buyerID   = "user-compras"
	chiefID   = "user-jefe"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fakePDF struct{ number, supplier, company string }

func (f *fakePDF) Render(o *entity.PurchaseOrder, s *entity.Supplier, company string) ([]byte, error) {
	f.number, f.supplier, f.company = o.Number, s.LegalName, company
	return []byte("%PDF-1.4"), nil
}

type fixture struct {
	store *memory.Store
	uc    *purchasing.OrderUseCase
	pdf   *fakePDF
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Units().Create(ctx, &entity.UnitOfMeasure{ID: unitID, Code: "KG", Name: "Kilogramo", Type: entity.UnitTypeWeight}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: productID, SKU: "GOM-010", Name: "Gomitas ácidas", PurchaseUnitID: unitID, SaleUnitID: unitID,
		TaxRate: dec("19"), StockMin: dec("5"), Status: entity.ProductStatusActive,
	}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: whID, Code: "B01", Name: "Bodega Central", Active: true}))
	require.NoError(t, s.Suppliers().Create(ctx, &entity.Supplier{ID: supActive, RutNif: "77.777.777-7", LegalName: "Confites Andinos Ltda", Status: entity.SupplierStatusActive}))
	require.NoError(t, s.Suppliers().Create(ctx, &entity.Supplier{ID: supBlock, RutNif: "78.888.888-8", LegalName: "Proveedor Moroso", Status: entity.SupplierStatusBlocked}))

	// Reloj que avanza un segundo por llamada para que las líneas queden ordenadas.
	tick := 0
	clock := func() time.Time {
		tick++
		return fixedNow.Add(time.Duration(tick) * time.Second)
	}
	movements := inventory.NewMovementUseCase(inventory.MovementDeps{
		Tx: s, Movements: s.Movements(), Products: s.Products(), Warehouses: s.Warehouses(),
		Suppliers: s.Suppliers(), Units: s.Units(), Lots: s.Lots(), Stock: s.Stock(),
	}).WithClock(clock)
	pdf := &fakePDF{}
	uc := purchasing.NewOrderUseCase(purchasing.OrderDeps{
		Tx: s, Orders: s.Orders(), Suppliers: s.Suppliers(), Products: s.Products(),
		Warehouses: s.Warehouses(), Lots: s.Lots(), Movements: movements,
		PDF: pdf, CompanyName: "Dulcería Lilis",
	}).WithClock(clock)
	return fixture{store: s, uc: uc, pdf: pdf}
}

func line(qty, price, disc string) dto.OrderLineRequest {
	return dto.OrderLineRequest{ProductID: productID, RequestedQty: dec(qty), UnitPrice: dec(price), DiscountPct: decPtr(disc)}
}

// confirmedOrder crea una orden de una línea (10 × 100 con 10% de descuento) y la deja CONFIRMADA.
func confirmedOrder(t *testing.T, f fixture) *dto.OrderResponse {
	t.Helper()
	ctx := context.Background()
	o, err := f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{
		SupplierID: supActive, WarehouseID: whID, Lines: []dto.OrderLineRequest{line("10", "100", "10")},
	})
	require.NoError(t, err)
	_, err = f.uc.ChangeStatus(ctx, o.ID, buyerID, entity.OrderStatusSent)
	require.NoError(t, err)
	o, err = f.uc.ChangeStatus(ctx, o.ID, chiefID, entity.OrderStatusConfirmed)
	require.NoError(t, err)
	return o
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_CalculaTotalesYNumero(t *testing.T) {
	f := setup(t)
	o, err := f.uc.Create(context.Background(), buyerID, dto.CreateOrderRequest{
		SupplierID: supActive,
		Lines:      []dto.OrderLineRequest{line("10", "100", "10")},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^OC-20260504-[0-9A-F]{6}$`, o.Number)
	assert.Equal(t, entity.OrderStatusDraft, o.Status)
	assert.Equal(t, "Confites Andinos Ltda", o.SupplierName)
	assert.True(t, o.Subtotal.Equal(dec("900")), "subtotal = %s", o.Subtotal)
	assert.True(t, o.Tax.Equal(dec("171")), "iva = %s", o.Tax)
	assert.True(t, o.Total.Equal(dec("1071")), "total = %s", o.Total)
	require.Len(t, o.Lines, 1)
	assert.True(t, o.Lines[0].TaxRate.Equal(dec("19")))
	assert.Equal(t, "GOM-010", o.Lines[0].ProductSKU)
}

func TestCreate_SinLineasTotalesEnCero(t *testing.T) {
	f := setup(t)
	o, err := f.uc.Create(context.Background(), buyerID, dto.CreateOrderRequest{SupplierID: supActive, Number: "OC-MANUAL-1"})
	require.NoError(t, err)
	assert.Equal(t, "OC-MANUAL-1", o.Number)
	assert.True(t, o.Total.IsZero())
	assert.Empty(t, o.Lines)

	_, err = f.uc.Create(context.Background(), buyerID, dto.CreateOrderRequest{SupplierID: supActive, Number: "OC-MANUAL-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_ProveedorInvalido(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{SupplierID: supBlock})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{SupplierID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{
		SupplierID: supActive, OrderDate: "2026-05-10", ExpectedDate: "2026-05-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{
		SupplierID: supActive, Lines: []dto.OrderLineRequest{line("1", "100", "120")},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines[0].discount_pct", ve.Field)
}

func TestLineas_RecalculanTotales(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o, err := f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{SupplierID: supActive})
	require.NoError(t, err)

	o, err = f.uc.AddLine(ctx, o.ID, line("10", "100", "10"))
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(dec("1071")))

	o, err = f.uc.AddLine(ctx, o.ID, line("3", "33.33", "0"))
	require.NoError(t, err)
	require.Len(t, o.Lines, 2)
	// 99.99 + IVA 19.00 (18.9981 redondeado)
	assert.True(t, o.Subtotal.Equal(dec("999.99")), "subtotal = %s", o.Subtotal)
	assert.True(t, o.Tax.Equal(dec("190")), "iva = %s", o.Tax)
	assert.True(t, o.Total.Equal(o.Subtotal.Add(o.Tax)))

	o, err = f.uc.UpdateLine(ctx, o.ID, o.Lines[1].ID, line("1", "50", "0"))
	require.NoError(t, err)
	assert.True(t, o.Subtotal.Equal(dec("950")))

	o, err = f.uc.RemoveLine(ctx, o.ID, o.Lines[0].ID)
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.True(t, o.Subtotal.Equal(dec("50")))
	assert.True(t, o.Tax.Equal(dec("9.5")))

	_, err = f.uc.RemoveLine(ctx, o.ID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLineas_NoEditablesTrasConfirmar(t *testing.T) {
	f := setup(t)
	o := confirmedOrder(t, f)

	_, err := f.uc.AddLine(context.Background(), o.ID, line("1", "10", "0"))
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestChangeStatus_Transiciones(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	empty, err := f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{SupplierID: supActive})
	require.NoError(t, err)
	_, err = f.uc.ChangeStatus(ctx, empty.ID, buyerID, entity.OrderStatusSent)
	assert.ErrorIs(t, err, domain.ErrStateConflict, "no se envía una orden sin líneas")

	o, err := f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{SupplierID: supActive, Lines: []dto.OrderLineRequest{line("1", "10", "0")}})
	require.NoError(t, err)
	_, err = f.uc.ChangeStatus(ctx, o.ID, buyerID, entity.OrderStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.uc.ChangeStatus(ctx, o.ID, buyerID, entity.OrderStatusFullyReceived)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	confirmed := confirmedOrder(t, f)
	require.NotNil(t, confirmed.AuthorizedBy)
	assert.Equal(t, chiefID, *confirmed.AuthorizedBy)
	require.NotNil(t, confirmed.AuthorizedAt)

	cancelled, err := f.uc.ChangeStatus(ctx, confirmed.ID, chiefID, entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
}

func TestReceive_ParcialYCompleta(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := confirmedOrder(t, f)
	lineID := o.Lines[0].ID

	o, err := f.uc.Receive(ctx, o.ID, buyerID, dto.ReceiveOrderRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: lineID, Quantity: dec("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPartiallyReceived, o.Status)
	assert.True(t, o.Lines[0].ReceivedQty.Equal(dec("4")))

	p, _ := f.store.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("4")))
	assert.True(t, p.AverageCost.Equal(dec("90")), "costo neto de descuento = %s", p.AverageCost)

	movs, _, err := f.store.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIngress, movs[0].Type)
	assert.Equal(t, entity.MovementStatusConfirmed, movs[0].Status)
	assert.Equal(t, entity.ParentDocPurchaseOrder, movs[0].ParentDocType)
	require.NotNil(t, movs[0].ParentDocID)
	assert.Equal(t, o.ID, *movs[0].ParentDocID)
	assert.Equal(t, o.Number, movs[0].ReferenceDoc)

	_, err = f.uc.Receive(ctx, o.ID, buyerID, dto.ReceiveOrderRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: lineID, Quantity: dec("7")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se recibe más de lo pendiente")

	o, err = f.uc.Receive(ctx, o.ID, buyerID, dto.ReceiveOrderRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: lineID, Quantity: dec("6")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusFullyReceived, o.Status)

	p, _ = f.store.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("10")))

	_, err = f.uc.Receive(ctx, o.ID, buyerID, dto.ReceiveOrderRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: lineID, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestReceive_ErrorRevierteTodo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := confirmedOrder(t, f)
	lineID := o.Lines[0].ID

	// La primera recepción es válida; la segunda excede lo pendiente y anula ambas.
	_, err := f.uc.Receive(ctx, o.ID, buyerID, dto.ReceiveOrderRequest{
		Lines: []dto.ReceiveLineRequest{
			{LineID: lineID, Quantity: dec("8")},
			{LineID: lineID, Quantity: dec("5")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, _ := f.store.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.IsZero())
	got, err := f.uc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)
	assert.True(t, got.Lines[0].ReceivedQty.IsZero())
}

func TestReceive_OrdenEnBorrador(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o, err := f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{SupplierID: supActive, WarehouseID: whID, Lines: []dto.OrderLineRequest{line("1", "10", "0")}})
	require.NoError(t, err)

	_, err = f.uc.Receive(ctx, o.ID, buyerID, dto.ReceiveOrderRequest{
		Lines: []dto.ReceiveLineRequest{{LineID: o.Lines[0].ID, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestList_YPDF(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := confirmedOrder(t, f)
	_, err := f.uc.Create(ctx, buyerID, dto.CreateOrderRequest{SupplierID: supActive})
	require.NoError(t, err)

	page, err := f.uc.List(ctx, listing.Query{PerPage: "25"}, dto.OrderFilterRequest{Status: entity.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, 20, page.PerPage)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, o.ID, page.Items[0].ID)

	page, err = f.uc.List(ctx, listing.Query{Search: "andinos"}, dto.OrderFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	data, name, err := f.uc.PDF(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Equal(t, o.Number+".pdf", name)
	assert.Equal(t, "Confites Andinos Ltda", f.pdf.supplier)
	assert.Equal(t, "Dulcería Lilis", f.pdf.company)
}
