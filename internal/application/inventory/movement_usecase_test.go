package inventory_test

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
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	productID = "prod-calugas"
	unitID    = "unit-un"
	whMain    = "wh-principal"
	whBranch  = "wh-sucursal"
	supplier  = "sup-dulces"
	userID    = "user-bodega"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// fakeSheets guarda la última tabla escrita.
type fakeSheets struct{ last ports.Table }

func (f *fakeSheets) Write(t ports.Table) ([]byte, error) {
	f.last = t
	return []byte("xlsx"), nil
}

// seedStore arma un catálogo mínimo: un producto con stock 60 y mínimo 50, dos bodegas activas,
// un proveedor y un usuario.
func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Units().Create(ctx, &entity.UnitOfMeasure{ID: unitID, Code: "UN", Name: "Unidad", Type: entity.UnitTypeUnit}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: productID, SKU: "CAL-001", Name: "Calugas de leche", PurchaseUnitID: unitID, SaleUnitID: unitID,
		StockCurrent: dec("60"), StockMin: dec("50"), AverageCost: dec("100"), Status: entity.ProductStatusActive,
	}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: whMain, Code: "B01", Name: "Bodega Central", Type: entity.WarehouseTypeMain, Active: true}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: whBranch, Code: "B02", Name: "Sucursal Centro", Type: entity.WarehouseTypeBranch, Active: true}))
	require.NoError(t, s.Suppliers().Create(ctx, &entity.Supplier{ID: supplier, RutNif: "76.123.456-7", LegalName: "Dulces del Sur SpA", Status: entity.SupplierStatusActive}))
	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: userID, Username: "bodega", Email: "bodega@lilis.cl", Status: entity.UserStatusActive}))
	return s
}

func newMovementUseCase(s *memory.Store, sheets ports.SpreadsheetWriter) *inventory.MovementUseCase {
	return inventory.NewMovementUseCase(inventory.MovementDeps{
		Tx:         s,
		Movements:  s.Movements(),
		Products:   s.Products(),
		Warehouses: s.Warehouses(),
		Suppliers:  s.Suppliers(),
		Units:      s.Units(),
		Lots:       s.Lots(),
		Stock:      s.Stock(),
		Sheets:     sheets,
	}).WithClock(func() time.Time { return fixedNow })
}

func egress(qty string, status string) dto.CreateMovementRequest {
	return dto.CreateMovementRequest{
		Type:              entity.MovementTypeEgress,
		ProductID:         productID,
		UnitID:            unitID,
		Quantity:          dec(qty),
		SourceWarehouseID: whMain,
		Status:            status,
	}
}

func ingress(qty, cost string) dto.CreateMovementRequest {
	return dto.CreateMovementRequest{
		Type:            entity.MovementTypeIngress,
		ProductID:       productID,
		UnitID:          unitID,
		Quantity:        dec(qty),
		DestWarehouseID: whMain,
		SupplierID:      supplier,
		UnitCost:        decPtr(cost),
		Status:          entity.MovementStatusConfirmed,
	}
}

func activeAlerts(t *testing.T, s *memory.Store) []*entity.StockAlert {
	t.Helper()
	items, _, err := s.Alerts().List(context.Background(), repository.AlertFilter{Status: entity.AlertStatusActive})
	require.NoError(t, err)
	return items
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SalidaConfirmadaDejaBajoStock(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	res, err := uc.Create(ctx, userID, egress("15", entity.MovementStatusConfirmed))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusConfirmed, res.Status)
	assert.Equal(t, "CAL-001", res.ProductSKU)
	require.NotNil(t, res.ConfirmedBy)
	assert.Equal(t, userID, *res.ConfirmedBy)

	p, err := s.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, p.StockCurrent.Equal(dec("45")), "stock = %s", p.StockCurrent)
	assert.True(t, p.LowStockFlag)

	alerts := activeAlerts(t, s)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertTypeLowStock, alerts[0].Type)
	assert.Equal(t, entity.AlertPriorityMedium, alerts[0].Priority)

	ws, err := s.Stock().GetForUpdate(ctx, productID, whMain)
	require.NoError(t, err)
	assert.True(t, ws.Quantity.Equal(dec("-15")))
}

func TestCreate_PendienteNoTocaStock(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	res, err := uc.Create(ctx, userID, egress("15", ""))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, res.Status)
	assert.Nil(t, res.ConfirmedAt)

	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("60")))
	assert.Empty(t, activeAlerts(t, s))
}

func TestConfirm_SoloUnaVez(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	created, err := uc.Create(ctx, userID, egress("15", ""))
	require.NoError(t, err)

	_, err = uc.Confirm(ctx, created.ID, userID)
	require.NoError(t, err)

	_, err = uc.Confirm(ctx, created.ID, userID)
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("45")), "el stock se descuenta una sola vez")
	assert.Len(t, activeAlerts(t, s), 1)
}

func TestUpdate_MovimientoConfirmadoEsInmutable(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	created, err := uc.Create(ctx, userID, egress("15", entity.MovementStatusConfirmed))
	require.NoError(t, err)

	_, err = uc.Update(ctx, created.ID, userID, dto.UpdateMovementRequest{Quantity: decPtr("5")})
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	_, err = uc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestUpdate_PendienteRecalculaCostoYConfirma(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	in := ingress("10", "200")
	in.Status = ""
	created, err := uc.Create(ctx, userID, in)
	require.NoError(t, err)
	require.NotNil(t, created.TotalCost)
	assert.True(t, created.TotalCost.Equal(dec("2000")))

	updated, err := uc.Update(ctx, created.ID, userID, dto.UpdateMovementRequest{
		Quantity: decPtr("20"),
		Status:   entity.MovementStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusConfirmed, updated.Status)
	assert.True(t, updated.TotalCost.Equal(dec("4000")))

	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("80")))
	// (60×100 + 20×200) / 80 = 125
	assert.True(t, p.AverageCost.Equal(dec("125")), "costo = %s", p.AverageCost)
}

func TestCancel_Pendiente(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	created, err := uc.Create(ctx, userID, egress("5", ""))
	require.NoError(t, err)

	res, err := uc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, res.Status)

	_, err = uc.Confirm(ctx, created.ID, userID)
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	_, err = uc.Cancel(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngreso_ResuelveAlertaDeBajoStock(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	_, err := uc.Create(ctx, userID, egress("15", entity.MovementStatusConfirmed))
	require.NoError(t, err)
	require.Len(t, activeAlerts(t, s), 1)

	_, err = uc.Create(ctx, userID, ingress("20", "100"))
	require.NoError(t, err)

	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("65")))
	assert.False(t, p.LowStockFlag)
	assert.Empty(t, activeAlerts(t, s))
}

func TestSalidaSinStock_AlertaAlta(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	_, err := uc.Create(ctx, userID, egress("60", entity.MovementStatusConfirmed))
	require.NoError(t, err)

	alerts := activeAlerts(t, s)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertPriorityHigh, alerts[0].Priority)
}

func TestTransferencia_MueveStockEntreBodegas(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	_, err := uc.Create(ctx, userID, ingress("10", "100"))
	require.NoError(t, err)

	_, err = uc.Create(ctx, userID, dto.CreateMovementRequest{
		Type:              entity.MovementTypeTransfer,
		ProductID:         productID,
		UnitID:            unitID,
		Quantity:          dec("4"),
		SourceWarehouseID: whMain,
		DestWarehouseID:   whBranch,
		Status:            entity.MovementStatusConfirmed,
	})
	require.NoError(t, err)

	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("70")), "la transferencia no cambia el stock total")

	stock, err := uc.Stock(ctx, productID, "")
	require.NoError(t, err)
	require.Len(t, stock, 2)
	assert.Equal(t, "B01", stock[0].WarehouseCode)
	assert.True(t, stock[0].Quantity.Equal(dec("6")))
	assert.Equal(t, "B02", stock[1].WarehouseCode)
	assert.True(t, stock[1].Quantity.Equal(dec("4")))
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "prod-lote", SKU: "LOT-001", Name: "Chocolate en lote", LotControl: true, Status: entity.ProductStatusActive,
	}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-off", Code: "B99", Name: "Cerrada", Active: false}))
	uc := newMovementUseCase(s, nil)

	cases := []struct {
		name   string
		mutate func(in *dto.CreateMovementRequest)
		want   error
	}{
		{"tipo inválido", func(in *dto.CreateMovementRequest) { in.Type = "REGALO" }, domain.ErrInvalidInput},
		{"cantidad cero", func(in *dto.CreateMovementRequest) { in.Quantity = decimal.Zero }, domain.ErrInvalidInput},
		{"cantidad negativa", func(in *dto.CreateMovementRequest) { in.Quantity = dec("-1") }, domain.ErrInvalidInput},
		{"salida sin origen", func(in *dto.CreateMovementRequest) { in.SourceWarehouseID = "" }, domain.ErrInvalidInput},
		{"ingreso sin proveedor", func(in *dto.CreateMovementRequest) {
			in.Type = entity.MovementTypeIngress
			in.DestWarehouseID = whMain
		}, domain.ErrInvalidInput},
		{"transferencia misma bodega", func(in *dto.CreateMovementRequest) {
			in.Type = entity.MovementTypeTransfer
			in.DestWarehouseID = whMain
		}, domain.ErrInvalidInput},
		{"costo negativo", func(in *dto.CreateMovementRequest) { in.UnitCost = decPtr("-3") }, domain.ErrInvalidInput},
		{"estado anulado", func(in *dto.CreateMovementRequest) { in.Status = entity.MovementStatusCancelled }, domain.ErrInvalidInput},
		{"producto inexistente", func(in *dto.CreateMovementRequest) { in.ProductID = "nada" }, domain.ErrNotFound},
		{"unidad inexistente", func(in *dto.CreateMovementRequest) { in.UnitID = "nada" }, domain.ErrNotFound},
		{"bodega inexistente", func(in *dto.CreateMovementRequest) { in.SourceWarehouseID = "nada" }, domain.ErrNotFound},
		{"bodega inactiva", func(in *dto.CreateMovementRequest) { in.SourceWarehouseID = "wh-off" }, domain.ErrInvalidInput},
		{"lote requerido", func(in *dto.CreateMovementRequest) { in.ProductID = "prod-lote" }, domain.ErrInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := egress("5", entity.MovementStatusConfirmed)
			c.mutate(&in)
			_, err := uc.Create(ctx, userID, in)
			assert.ErrorIs(t, err, c.want)
		})
	}

	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.StockCurrent.Equal(dec("60")), "ningún caso inválido toca el stock")
}

func TestList_FiltrosOrdenYContadores(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	uc := newMovementUseCase(s, nil)

	_, err := uc.Create(ctx, userID, ingress("10", "100"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, userID, egress("3", entity.MovementStatusConfirmed))
	require.NoError(t, err)
	_, err = uc.Create(ctx, userID, egress("2", ""))
	require.NoError(t, err)

	res, err := uc.List(ctx, listing.Query{PerPage: "7", Sort: "cantidad"}, dto.MovementFilterRequest{Type: entity.MovementTypeEgress})
	require.NoError(t, err)
	assert.Equal(t, 25, res.PerPage, "per_page fuera de la lista usa el default")
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].Quantity.Equal(dec("2")))
	assert.Equal(t, "bodega", res.Items[0].CreatedByName)

	assert.Equal(t, 3, res.Stats.Total)
	assert.Equal(t, 3, res.Stats.Today)
	assert.Equal(t, 1, res.Stats.Pending)
	assert.Equal(t, 1, res.Stats.MonthIngress)
	assert.Equal(t, 1, res.Stats.MonthEgress)

	res, err = uc.List(ctx, listing.Query{Search: "cal-0", Page: "9"}, dto.MovementFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Items, "página fuera de rango devuelve lista vacía")

	_, err = uc.List(ctx, listing.Query{}, dto.MovementFilterRequest{DateFrom: "10/03/2026"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestExport_EncabezadosFijos(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	sheets := &fakeSheets{}
	uc := newMovementUseCase(s, sheets)

	_, err := uc.Create(ctx, userID, ingress("10", "100"))
	require.NoError(t, err)

	data, name, err := uc.Export(ctx, listing.Query{}, dto.MovementFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, "movimientos_20260310_120000.xlsx", name)
	assert.Len(t, sheets.last.Headers, 19)
	assert.Equal(t, "Fecha Movimiento", sheets.last.Headers[1])
	require.Len(t, sheets.last.Rows, 1)
	assert.Len(t, sheets.last.Rows[0], 19)
	assert.Equal(t, "Dulces del Sur SpA", sheets.last.Rows[0][10])
}

func TestCreate_LoteDeOtraBodega(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	exp := fixedNow.AddDate(0, 2, 0)
	require.NoError(t, s.Lots().Create(ctx, &entity.Lot{
		ID: "lot-sucursal", Code: "L-SUC", ProductID: productID, WarehouseID: whBranch,
		ExpiryDate: &exp, QuantityInitial: dec("5"), QuantityAvailable: dec("5"), Status: entity.LotStatusOK,
	}))

	in := egress("2", entity.MovementStatusConfirmed)
	in.LotID = "lot-sucursal"
	_, err := newMovementUseCase(s, nil).Create(ctx, userID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lot_id", verr.Field)
}

func TestConfirm_DescuentaSaldoDelLote(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	addLot(t, s, "lot-1", "L-1", fixedNow.AddDate(0, 0, 10), "6")
	uc := newMovementUseCase(s, nil)

	in := egress("6", entity.MovementStatusConfirmed)
	in.LotID = "lot-1"
	_, err := uc.Create(ctx, userID, in)
	require.NoError(t, err)

	lot, err := s.Lots().GetByID(ctx, "lot-1")
	require.NoError(t, err)
	assert.True(t, lot.QuantityAvailable.IsZero(), "saldo = %s", lot.QuantityAvailable)

	res, err := newAlertUseCase(s).ScanLotExpiry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.LotsChecked, "un lote agotado no genera avisos")
}
