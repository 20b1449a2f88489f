package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/memory"
)

func supplierRequest(rut, name string) dto.SupplierRequest {
	return dto.SupplierRequest{
		RutNif:       rut,
		LegalName:    name,
		Email:        "Ventas@Proveedor.cl",
		City:         "Santiago",
		Country:      "Chile",
		PaymentTerms: entity.Payment30Days,
	}
}

func newSupplierUseCase(s *memory.Store, sheets *fakeSheets) *usecase.SupplierUseCase {
	return usecase.NewSupplierUseCase(s.Suppliers(), sheets, nil).WithClock(func() time.Time { return fixedNow })
}

func TestSupplierCreate_NormalizaYDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newSupplierUseCase(memory.NewStore(), &fakeSheets{})

	sp, err := uc.Create(ctx, supplierRequest("76123451-k", "Dulces del Sur SpA"))
	require.NoError(t, err)
	assert.Equal(t, "76.123.451-K", sp.RutNif)
	assert.Equal(t, "ventas@proveedor.cl", sp.Email)
	assert.Equal(t, usecase.DefaultCurrency, sp.Currency)
	assert.Equal(t, entity.SupplierStatusActive, sp.Status)

	_, err = uc.Create(ctx, supplierRequest("76.123.451-K", "Otro"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSupplierCreate_OtroRequiereDetalle(t *testing.T) {
	ctx := context.Background()
	uc := newSupplierUseCase(memory.NewStore(), &fakeSheets{})

	in := supplierRequest("1-9", "Proveedor")
	in.PaymentTerms = entity.PaymentOther
	_, err := uc.Create(ctx, in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment_terms_other", verr.Field)

	in.PaymentTermsOther = "45 días fecha factura"
	sp, err := uc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "45 días fecha factura", sp.PaymentTermsOther)

	in = supplierRequest("2-7", "Proveedor 2")
	in.PaymentTerms = "120_DIAS"
	_, err = uc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSupplierCreate_RutInvalidoYNIFExtranjero(t *testing.T) {
	ctx := context.Background()
	uc := newSupplierUseCase(memory.NewStore(), &fakeSheets{})

	_, err := uc.Create(ctx, supplierRequest("76.123.456-K", "Mal digitado"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rut_nif", verr.Field)

	in := supplierRequest("b-12345678", "Cacao Ibérico SL")
	in.Country = "España"
	sp, err := uc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "B-12345678", sp.RutNif)
}

func TestSupplierUpdate_RutDeOtroProveedor(t *testing.T) {
	ctx := context.Background()
	uc := newSupplierUseCase(memory.NewStore(), &fakeSheets{})
	a, err := uc.Create(ctx, supplierRequest("1-9", "A"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, supplierRequest("2-7", "B"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, a.ID, supplierRequest("2-7", "A"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	upd, err := uc.Update(ctx, a.ID, supplierRequest("1-9", "A Limitada"))
	require.NoError(t, err)
	assert.Equal(t, "A Limitada", upd.LegalName)
}

func TestSupplierStatus_BloqueoYBaja(t *testing.T) {
	ctx := context.Background()
	uc := newSupplierUseCase(memory.NewStore(), &fakeSheets{})
	sp, err := uc.Create(ctx, supplierRequest("1-9", "A"))
	require.NoError(t, err)

	require.NoError(t, uc.Block(ctx, sp.ID))
	require.NoError(t, uc.Block(ctx, sp.ID))

	res, err := uc.ChangeStatus(ctx, sp.ID, entity.SupplierStatusActive)
	require.NoError(t, err)
	assert.Equal(t, entity.SupplierStatusActive, res.Status)

	_, err = uc.ChangeStatus(ctx, sp.ID, entity.SupplierStatusActive)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.ErrorIs(t, uc.Block(ctx, "nope"), domain.ErrNotFound)
}

func TestSupplierList_BusquedaYExport(t *testing.T) {
	ctx := context.Background()
	sheets := &fakeSheets{}
	uc := newSupplierUseCase(memory.NewStore(), sheets)
	_, err := uc.Create(ctx, supplierRequest("1-9", "Chocolates Peñaflor"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, supplierRequest("2-7", "Azúcar del Norte"))
	require.NoError(t, err)

	page, err := uc.List(ctx, listing.Query{Search: "azucar"}, dto.SupplierFilterRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Azúcar del Norte", page.Items[0].LegalName)
	assert.Equal(t, 10, page.PerPage)

	page, err = uc.List(ctx, listing.Query{}, dto.SupplierFilterRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Azúcar del Norte", page.Items[0].LegalName, "orden por razón social")

	_, name, err := uc.Export(ctx, listing.Query{}, dto.SupplierFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, "proveedores_20260402_093000.xlsx", name)
	assert.Equal(t, usecase.SupplierExportHeaders, sheets.last.Headers)
	assert.Len(t, sheets.last.Rows, 2)

	items, err := uc.Search(ctx, "choco")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1-9", items[0].Code)
}
