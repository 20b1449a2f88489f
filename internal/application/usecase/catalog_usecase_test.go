package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/memory"
)

func newCatalogUseCase(s *memory.Store) *usecase.CatalogUseCase {
	return usecase.NewCatalogUseCase(usecase.CatalogDeps{
		Categories: s.Categories(),
		Brands:     s.Brands(),
		Units:      s.Units(),
		Lots:       s.Lots(),
		Products:   s.Products(),
		Warehouses: s.Warehouses(),
		Suppliers:  s.Suppliers(),
	})
}

func TestWarehouse_CrearBuscarDesactivar(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWarehouseUseCase(memory.NewStore().Warehouses())

	w, err := uc.Create(ctx, dto.CreateWarehouseRequest{Code: "b01", Name: "Bodega Central", Type: entity.WarehouseTypeMain})
	require.NoError(t, err)
	assert.Equal(t, "B01", w.Code)
	assert.True(t, w.Active)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: "B01", Name: "Otra", Type: entity.WarehouseTypeBranch})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: "B02", Name: "Otra", Type: "GALPON"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	items, err := uc.Search(ctx, "central")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B01", items[0].Code)

	inactive := false
	_, err = uc.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Active: &inactive})
	require.NoError(t, err)

	items, err = uc.Search(ctx, "central")
	require.NoError(t, err)
	assert.Empty(t, items, "bodegas inactivas no aparecen en el autocompletado")

	all, err := uc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = uc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_CategoriasMarcasUnidades(t *testing.T) {
	ctx := context.Background()
	uc := newCatalogUseCase(memory.NewStore())

	c, err := uc.CreateCategory(ctx, dto.NamedRequest{Name: "Chocolates"})
	require.NoError(t, err)
	_, err = uc.CreateCategory(ctx, dto.NamedRequest{Name: "chocolates"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, uc.SetCategoryActive(ctx, c.ID, false))
	active, err := uc.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.ErrorIs(t, uc.SetCategoryActive(ctx, "nope", true), domain.ErrNotFound)

	_, err = uc.CreateBrand(ctx, dto.NamedRequest{Name: "Lilis"})
	require.NoError(t, err)
	brands, err := uc.ListBrands(ctx, true)
	require.NoError(t, err)
	assert.Len(t, brands, 1)

	u, err := uc.CreateUnit(ctx, dto.UnitRequest{Code: "kg", Name: "Kilogramo", Type: entity.UnitTypeWeight})
	require.NoError(t, err)
	assert.Equal(t, "KG", u.Code)
	_, err = uc.CreateUnit(ctx, dto.UnitRequest{Code: "KG", Name: "Kilo", Type: entity.UnitTypeWeight})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.CreateUnit(ctx, dto.UnitRequest{Code: "X", Name: "X", Type: "OTRO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_Lotes(t *testing.T) {
	ctx := context.Background()
	s := seedCatalog(t)
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", Code: "B01", Name: "Central", Type: entity.WarehouseTypeMain, Active: true}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "p-lote", SKU: "CHO-001", Name: "Chocolate", CategoryID: catID, PurchaseUnitID: unitUN, SaleUnitID: unitUN,
		Perishable: true, LotControl: true, Status: entity.ProductStatusActive,
	}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: "p-simple", SKU: "BOL-001", Name: "Bolsa", CategoryID: catID, PurchaseUnitID: unitUN, SaleUnitID: unitUN,
		Status: entity.ProductStatusActive,
	}))
	uc := newCatalogUseCase(s)

	req := dto.CreateLotRequest{
		Code: "l-2026-01", ProductID: "p-lote", WarehouseID: "wh-1",
		ProductionDate: "2026-01-10", ExpiryDate: "2026-07-10", Quantity: dec("100"), UnitCost: dec("350"),
	}
	lot, err := uc.CreateLot(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "L-2026-01", lot.Code)
	assert.Equal(t, entity.LotStatusOK, lot.Status)
	assert.True(t, lot.QuantityAvailable.Equal(dec("100")))
	assert.Equal(t, "Chocolate", lot.ProductName)

	_, err = uc.CreateLot(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	tests := []struct {
		name   string
		mutate func(*dto.CreateLotRequest)
		want   error
	}{
		{"producto sin control de lote", func(r *dto.CreateLotRequest) { r.ProductID = "p-simple" }, domain.ErrInvalidInput},
		{"perecedero sin vencimiento", func(r *dto.CreateLotRequest) { r.ExpiryDate = "" }, domain.ErrInvalidInput},
		{"vence antes de producirse", func(r *dto.CreateLotRequest) { r.ExpiryDate = "2025-12-31" }, domain.ErrInvalidInput},
		{"fecha mal formada", func(r *dto.CreateLotRequest) { r.ExpiryDate = "10/07/2026" }, domain.ErrInvalidInput},
		{"bodega inexistente", func(r *dto.CreateLotRequest) { r.WarehouseID = "nope" }, domain.ErrNotFound},
		{"proveedor inexistente", func(r *dto.CreateLotRequest) { r.SupplierID = "nope" }, domain.ErrNotFound},
		{"cantidad negativa", func(r *dto.CreateLotRequest) { r.Quantity = dec("-1") }, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := req
			in.Code = "L-OTRO"
			tt.mutate(&in)
			_, err := uc.CreateLot(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	lots, err := uc.ListLots(ctx, "p-lote")
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}
