package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/memory"
)

func addLot(t *testing.T, s *memory.Store, id, code string, expiry time.Time, qty string) {
	t.Helper()
	require.NoError(t, s.Lots().Create(context.Background(), &entity.Lot{
		ID: id, Code: code, ProductID: productID, WarehouseID: whMain,
		ExpiryDate: &expiry, QuantityInitial: dec(qty), QuantityAvailable: dec(qty),
		Status: entity.LotStatusOK,
	}))
}

func newAlertUseCase(s *memory.Store) *inventory.AlertUseCase {
	return inventory.NewAlertUseCase(s, s.Alerts(), 30, nil).WithClock(func() time.Time { return fixedNow })
}

func TestScanLotExpiry_VencidosYPorVencer(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	addLot(t, s, "lot-1", "L-VENCIDO", fixedNow.AddDate(0, 0, -1), "5")
	addLot(t, s, "lot-2", "L-PRONTO", fixedNow.AddDate(0, 0, 10), "8")
	addLot(t, s, "lot-3", "L-LEJOS", fixedNow.AddDate(0, 0, 90), "8")
	addLot(t, s, "lot-4", "L-VACIO", fixedNow.AddDate(0, 0, -3), "0")
	uc := newAlertUseCase(s)

	res, err := uc.ScanLotExpiry(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.ExpiryScanResponse{
		LotsChecked: 2, ExpiredLots: 1, ExpiringLots: 1, AlertsCreated: 2, ProductsMarked: 1,
	}, *res)

	lot, _ := s.Lots().GetByID(ctx, "lot-1")
	assert.Equal(t, entity.LotStatusExpired, lot.Status)

	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.ExpiringFlag)

	page, err := uc.List(ctx, listing.Query{}, dto.AlertFilterRequest{Type: entity.AlertTypeExpired})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, entity.AlertPriorityHigh, page.Items[0].Priority)
	assert.Equal(t, "L-VENCIDO", page.Items[0].LotCode)

	// Un segundo barrido no duplica alertas.
	res, err = uc.ScanLotExpiry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.AlertsCreated)
	assert.Equal(t, 1, res.LotsChecked)
}

func TestScanLotExpiry_LoteQueVenceResuelveAviso(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	addLot(t, s, "lot-x", "L-X", fixedNow.AddDate(0, 0, 5), "6")
	clock := fixedNow
	uc := inventory.NewAlertUseCase(s, s.Alerts(), 30, nil).WithClock(func() time.Time { return clock })

	_, err := uc.ScanLotExpiry(ctx)
	require.NoError(t, err)
	p, _ := s.Products().GetByID(ctx, productID)
	assert.True(t, p.ExpiringFlag)

	clock = fixedNow.AddDate(0, 0, 10)
	res, err := uc.ScanLotExpiry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExpiredLots)
	assert.Equal(t, 0, res.ProductsMarked)

	page, err := uc.List(ctx, listing.Query{}, dto.AlertFilterRequest{Status: entity.AlertStatusActive})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, entity.AlertTypeExpired, page.Items[0].Type)
	assert.Equal(t, "L-X", page.Items[0].LotCode)

	resolved, err := uc.List(ctx, listing.Query{}, dto.AlertFilterRequest{
		Status: entity.AlertStatusResolved, Type: entity.AlertTypeExpiring,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resolved.Total)

	p, _ = s.Products().GetByID(ctx, productID)
	assert.False(t, p.ExpiringFlag, "sin lotes por vencer la bandera se limpia")
}

func TestScanLotExpiry_SoloVencidosNoMarcaProducto(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	addLot(t, s, "lot-v", "L-V", fixedNow.AddDate(0, 0, -2), "4")

	res, err := newAlertUseCase(s).ScanLotExpiry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExpiredLots)
	assert.Equal(t, 0, res.ProductsMarked)

	p, _ := s.Products().GetByID(ctx, productID)
	assert.False(t, p.ExpiringFlag)
}

func TestResolve_Alerta(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	_, err := newMovementUseCase(s, nil).Create(ctx, userID, egress("15", entity.MovementStatusConfirmed))
	require.NoError(t, err)
	uc := newAlertUseCase(s)

	page, err := uc.List(ctx, listing.Query{}, dto.AlertFilterRequest{Status: entity.AlertStatusActive})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	res, err := uc.Resolve(ctx, page.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusResolved, res.Status)
	require.NotNil(t, res.ResolvedAt)

	_, err = uc.Resolve(ctx, page.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	_, err = uc.Resolve(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplenishment_SugerenciasPorPrioridad(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "prod-agotado", SKU: "CHO-002", Name: "Chocolate amargo",
		StockCurrent: dec("0"), StockMin: dec("10"), StockMax: dec("40"), StandardCost: dec("500"),
		Status: entity.ProductStatusActive,
	}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "prod-ok", SKU: "MEN-003", Name: "Menta", StockCurrent: dec("100"), StockMin: dec("10"),
		Status: entity.ProductStatusActive,
	}))
	// Calugas: stock 60 con mínimo 50 y punto de reorden 70.
	p, _ := s.Products().GetByID(ctx, productID)
	p.ReorderPoint = dec("70")
	require.NoError(t, s.Products().Update(ctx, p))

	list, err := inventory.NewReplenishmentUseCase(s.Products()).Suggest(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "CHO-002", list[0].SKU)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedOrderQty.Equal(dec("40")))
	assert.True(t, list[0].EstimatedOrderCost.Equal(dec("20000")))

	assert.Equal(t, "CAL-001", list[1].SKU)
	// 70 × 1.5 − 60
	assert.True(t, list[1].SuggestedOrderQty.Equal(dec("45")), "qty = %s", list[1].SuggestedOrderQty)
}
