package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// CatalogDeps repositorios de los maestros auxiliares.
type CatalogDeps struct {
	Categories repository.CategoryRepository
	Brands     repository.BrandRepository
	Units      repository.UnitRepository
	Lots       repository.LotRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Suppliers  repository.SupplierRepository
}

// CatalogUseCase categorías, marcas, unidades de medida y lotes.
type CatalogUseCase struct {
	d   CatalogDeps
	now func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(d CatalogDeps) *CatalogUseCase {
	return &CatalogUseCase{d: d, now: time.Now}
}

// CreateCategory nombre único.
func (uc *CatalogUseCase) CreateCategory(ctx context.Context, in dto.NamedRequest) (*dto.NamedResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es obligatorio")
	}
	c := &entity.Category{ID: uuid.New().String(), Name: name, Description: in.Description, Active: true, CreatedAt: uc.now()}
	if err := uc.d.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.NamedResponse{ID: c.ID, Name: c.Name, Description: c.Description, Active: c.Active, CreatedAt: c.CreatedAt}, nil
}

// ListCategories lista categorías.
func (uc *CatalogUseCase) ListCategories(ctx context.Context, activeOnly bool) ([]dto.NamedResponse, error) {
	list, err := uc.d.Categories.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NamedResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.NamedResponse{ID: c.ID, Name: c.Name, Description: c.Description, Active: c.Active, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

// SetCategoryActive activa o desactiva una categoría.
func (uc *CatalogUseCase) SetCategoryActive(ctx context.Context, id string, active bool) error {
	c, err := uc.d.Categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return uc.d.Categories.SetActive(ctx, id, active)
}

// CreateBrand nombre único.
func (uc *CatalogUseCase) CreateBrand(ctx context.Context, in dto.NamedRequest) (*dto.NamedResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es obligatorio")
	}
	b := &entity.Brand{ID: uuid.New().String(), Name: name, Description: in.Description, Active: true, CreatedAt: uc.now()}
	if err := uc.d.Brands.Create(ctx, b); err != nil {
		return nil, err
	}
	return &dto.NamedResponse{ID: b.ID, Name: b.Name, Description: b.Description, Active: b.Active, CreatedAt: b.CreatedAt}, nil
}

// ListBrands lista marcas.
func (uc *CatalogUseCase) ListBrands(ctx context.Context, activeOnly bool) ([]dto.NamedResponse, error) {
	list, err := uc.d.Brands.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NamedResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.NamedResponse{ID: b.ID, Name: b.Name, Description: b.Description, Active: b.Active, CreatedAt: b.CreatedAt})
	}
	return out, nil
}

// SetBrandActive activa o desactiva una marca.
func (uc *CatalogUseCase) SetBrandActive(ctx context.Context, id string, active bool) error {
	b, err := uc.d.Brands.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrNotFound
	}
	return uc.d.Brands.SetActive(ctx, id, active)
}

// CreateUnit código único (UN, KG, LT...).
func (uc *CatalogUseCase) CreateUnit(ctx context.Context, in dto.UnitRequest) (*dto.UnitResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.Invalid("code", "es obligatorio")
	}
	if !entity.IsUnitType(in.Type) {
		return nil, domain.Invalid("type", fmt.Sprintf("tipo de unidad desconocido '%s'", in.Type))
	}
	if dup, err := uc.d.Units.GetByCode(ctx, code); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, fmt.Errorf("%w: unidad %s", domain.ErrDuplicate, code)
	}
	u := &entity.UnitOfMeasure{ID: uuid.New().String(), Code: code, Name: strings.TrimSpace(in.Name), Type: in.Type}
	if err := uc.d.Units.Create(ctx, u); err != nil {
		return nil, err
	}
	return &dto.UnitResponse{ID: u.ID, Code: u.Code, Name: u.Name, Type: u.Type}, nil
}

// ListUnits lista unidades de medida.
func (uc *CatalogUseCase) ListUnits(ctx context.Context) ([]dto.UnitResponse, error) {
	list, err := uc.d.Units.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnitResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.UnitResponse{ID: u.ID, Code: u.Code, Name: u.Name, Type: u.Type})
	}
	return out, nil
}

// CreateLot registra un lote para un producto con control de lote en una bodega.
// El código es único por producto; la cantidad entra al stock solo vía movimientos.
func (uc *CatalogUseCase) CreateLot(ctx context.Context, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.Invalid("code", "es obligatorio")
	}
	if in.Quantity.IsNegative() {
		return nil, domain.Invalid("quantity", "no puede ser negativa")
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	prod, err := uc.d.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if !prod.LotControl {
		return nil, domain.Invalid("product_id", "el producto no maneja lotes")
	}
	wh, err := uc.d.Warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
	}
	supplierID := dto.OptionalID(in.SupplierID)
	if supplierID != nil {
		sp, err := uc.d.Suppliers.GetByID(ctx, *supplierID)
		if err != nil {
			return nil, err
		}
		if sp == nil {
			return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, *supplierID)
		}
	}
	production, err := parseOptionalDate("production_date", in.ProductionDate)
	if err != nil {
		return nil, err
	}
	expiry, err := parseOptionalDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if prod.Perishable && expiry == nil {
		return nil, domain.Invalid("expiry_date", "es obligatoria para productos perecederos")
	}
	if production != nil && expiry != nil && expiry.Before(*production) {
		return nil, domain.Invalid("expiry_date", "no puede ser anterior a la fecha de producción")
	}
	if dup, err := uc.d.Lots.GetByCode(ctx, prod.ID, code); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrDuplicate, code)
	}

	now := uc.now()
	lot := &entity.Lot{
		ID:                uuid.New().String(),
		Code:              code,
		ProductID:         prod.ID,
		WarehouseID:       wh.ID,
		SupplierID:        supplierID,
		ProductionDate:    production,
		ExpiryDate:        expiry,
		QuantityInitial:   in.Quantity,
		QuantityAvailable: in.Quantity,
		UnitCost:          in.UnitCost,
		Status:            entity.LotStatusOK,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.d.Lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	lot.ProductName = prod.Name
	lot.WarehouseName = wh.Name
	out := toLotResponse(lot)
	return &out, nil
}

// ListLots lotes de un producto.
func (uc *CatalogUseCase) ListLots(ctx context.Context, productID string) ([]dto.LotResponse, error) {
	list, err := uc.d.Lots.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLotResponse(l))
	}
	return out, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dto.DateLayout, s, time.Local)
	if err != nil {
		return nil, domain.Invalid(field, "formato esperado YYYY-MM-DD")
	}
	return &t, nil
}

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:                l.ID,
		Code:              l.Code,
		ProductID:         l.ProductID,
		ProductName:       l.ProductName,
		WarehouseID:       l.WarehouseID,
		WarehouseName:     l.WarehouseName,
		SupplierID:        l.SupplierID,
		ProductionDate:    l.ProductionDate,
		ExpiryDate:        l.ExpiryDate,
		QuantityInitial:   l.QuantityInitial,
		QuantityAvailable: l.QuantityAvailable,
		QuantityReserved:  l.QuantityReserved,
		UnitCost:          l.UnitCost,
		Status:            l.Status,
		CreatedAt:         l.CreatedAt,
	}
}
