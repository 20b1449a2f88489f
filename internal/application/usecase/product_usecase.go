package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// DefaultTaxRate IVA por defecto de un producto nuevo.
var DefaultTaxRate = decimal.NewFromInt(19)

// ProductListOptions reglas del listado de productos.
var ProductListOptions = listing.Options{
	PerPageAllowed: []int{10, 20, 50, 100},
	PerPageDefault: 20,
	SortFields:     []string{"sku", "nombre", "categoria", "stock", "precio", "estado", "created_at"},
	DefaultSort:    "nombre",
}

// ProductExportHeaders columnas fijas del .xlsx de productos.
var ProductExportHeaders = []string{
	"SKU", "EAN/UPC", "Nombre", "Descripción", "Categoría", "Marca", "Modelo", "UOM Compra",
	"UOM Venta", "Factor Conv.", "Costo Estándar", "Costo Promedio", "Precio Venta", "IVA %",
	"Stock Actual", "Stock Mínimo", "Stock Máximo", "Punto Reorden", "Perecedero", "Control Lote",
	"Control Serie", "Estado",
}

// ProductDeps dependencias del caso de uso de productos.
type ProductDeps struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Brands     repository.BrandRepository
	Units      repository.UnitRepository
	Alerts     repository.StockAlertRepository
	Tx         inventory.TxRunner
	Storage    ports.ObjectStorage
	Sheets     ports.SpreadsheetWriter
	Log        *logger.Logger
}

// ProductUseCase casos de uso del catálogo de productos. Stock y costo promedio se manejan vía movimientos.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	brands     repository.BrandRepository
	units      repository.UnitRepository
	alerts     repository.StockAlertRepository
	tx         inventory.TxRunner
	storage    ports.ObjectStorage
	sheets     ports.SpreadsheetWriter
	log        *logger.Logger
	now        func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(d ProductDeps) *ProductUseCase {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		repo:       d.Products,
		categories: d.Categories,
		brands:     d.Brands,
		units:      d.Units,
		alerts:     d.Alerts,
		tx:         d.Tx,
		storage:    d.Storage,
		sheets:     d.Sheets,
		log:        log.Component("products"),
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ProductUseCase) WithClock(now func() time.Time) *ProductUseCase {
	uc.now = now
	return uc
}

// Create crea un producto ACTIVO con stock cero.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if sku == "" {
		return nil, domain.Invalid("sku", "es obligatorio")
	}
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, sku)
	}
	ean := strings.TrimSpace(in.EAN)
	if ean != "" {
		if dup, err := uc.repo.GetByEAN(ctx, ean); err != nil {
			return nil, err
		} else if dup != nil {
			return nil, fmt.Errorf("%w: ean %s", domain.ErrDuplicate, ean)
		}
	}

	now := uc.now()
	p := &entity.Product{
		ID:               uuid.New().String(),
		SKU:              sku,
		EAN:              ean,
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		CategoryID:       in.CategoryID,
		BrandID:          dto.OptionalID(in.BrandID),
		Model:            in.Model,
		PurchaseUnitID:   in.PurchaseUnitID,
		SaleUnitID:       in.SaleUnitID,
		ConversionFactor: decimal.NewFromInt(1),
		StandardCost:     in.StandardCost,
		SalePrice:        in.SalePrice,
		TaxRate:          DefaultTaxRate,
		StockMin:         in.StockMin,
		StockMax:         in.StockMax,
		ReorderPoint:     in.ReorderPoint,
		Perishable:       in.Perishable,
		LotControl:       in.LotControl,
		SerialControl:    in.SerialControl,
		Status:           entity.ProductStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.ConversionFactor != nil {
		p.ConversionFactor = *in.ConversionFactor
	}
	if in.TaxRate != nil {
		p.TaxRate = *in.TaxRate
	}
	if err := uc.validate(ctx, p); err != nil {
		return nil, err
	}
	p.RecomputeAlerts()
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", p.ID).Str("sku", p.SKU).Msg("producto creado")
	return uc.Get(ctx, p.ID)
}

// validate reglas numéricas y referencias del producto.
func (uc *ProductUseCase) validate(ctx context.Context, p *entity.Product) error {
	if p.Name == "" {
		return domain.Invalid("name", "es obligatorio")
	}
	nonNegative := map[string]decimal.Decimal{
		"standard_cost": p.StandardCost,
		"sale_price":    p.SalePrice,
		"stock_min":     p.StockMin,
		"stock_max":     p.StockMax,
		"reorder_point": p.ReorderPoint,
	}
	for _, field := range []string{"standard_cost", "sale_price", "stock_min", "stock_max", "reorder_point"} {
		if nonNegative[field].IsNegative() {
			return domain.Invalid(field, "no puede ser negativo")
		}
	}
	if !p.ConversionFactor.IsPositive() {
		return domain.Invalid("conversion_factor", "debe ser mayor a cero")
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return domain.Invalid("tax_rate", "debe estar entre 0 y 100")
	}
	if p.StockMax.IsPositive() && p.StockMax.LessThan(p.StockMin) {
		return domain.Invalid("stock_max", "no puede ser menor al stock mínimo")
	}

	cat, err := uc.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, p.CategoryID)
	}
	if p.BrandID != nil {
		b, err := uc.brands.GetByID(ctx, *p.BrandID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: marca %s", domain.ErrNotFound, *p.BrandID)
		}
	}
	for _, id := range []string{p.PurchaseUnitID, p.SaleUnitID} {
		u, err := uc.units.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: unidad de medida %s", domain.ErrNotFound, id)
		}
	}
	return nil
}

// Get obtiene un producto.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(p), nil
}

// Update actualiza un producto. No toca stock ni costo promedio; si cambia el mínimo
// se sincroniza la alerta de bajo stock. Todo ocurre en una transacción con la fila bloqueada.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	err := uc.runTx(ctx, func(tx repository.Tx) error {
		p, err := tx.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		wasLow := p.LowStockFlag

		if in.EAN != nil {
			ean := strings.TrimSpace(*in.EAN)
			if ean != "" && ean != p.EAN {
				dup, err := tx.Products.GetByEAN(ctx, ean)
				if err != nil {
					return err
				}
				if dup != nil && dup.ID != p.ID {
					return fmt.Errorf("%w: ean %s", domain.ErrDuplicate, ean)
				}
			}
			p.EAN = ean
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.CategoryID != nil {
			p.CategoryID = *in.CategoryID
		}
		if in.BrandID != nil {
			p.BrandID = dto.OptionalID(*in.BrandID)
		}
		if in.Model != nil {
			p.Model = *in.Model
		}
		if in.PurchaseUnitID != nil {
			p.PurchaseUnitID = *in.PurchaseUnitID
		}
		if in.SaleUnitID != nil {
			p.SaleUnitID = *in.SaleUnitID
		}
		if in.ConversionFactor != nil {
			p.ConversionFactor = *in.ConversionFactor
		}
		if in.StandardCost != nil {
			p.StandardCost = *in.StandardCost
		}
		if in.SalePrice != nil {
			p.SalePrice = *in.SalePrice
		}
		if in.TaxRate != nil {
			p.TaxRate = *in.TaxRate
		}
		if in.StockMin != nil {
			p.StockMin = *in.StockMin
		}
		if in.StockMax != nil {
			p.StockMax = *in.StockMax
		}
		if in.ReorderPoint != nil {
			p.ReorderPoint = *in.ReorderPoint
		}
		if in.Perishable != nil {
			p.Perishable = *in.Perishable
		}
		if in.LotControl != nil {
			p.LotControl = *in.LotControl
		}
		if in.SerialControl != nil {
			p.SerialControl = *in.SerialControl
		}
		if err := uc.validate(ctx, p); err != nil {
			return err
		}
		p.RecomputeAlerts()
		p.UpdatedAt = uc.now()
		if err := tx.Products.Update(ctx, p); err != nil {
			return err
		}
		if p.LowStockFlag != wasLow && tx.Alerts != nil {
			return inventory.SyncLowStockAlert(ctx, tx.Alerts, p, p.UpdatedAt, uc.log)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// runTx usa el TxRunner configurado; sin él opera directo sobre los repositorios.
func (uc *ProductUseCase) runTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if uc.tx == nil {
		return fn(repository.Tx{Products: uc.repo, Alerts: uc.alerts})
	}
	return uc.tx.Run(ctx, fn)
}

// ChangeStatus aplica la tabla de transiciones de producto.
func (uc *ProductUseCase) ChangeStatus(ctx context.Context, id, status string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := entity.CheckProductTransition(p.Status, status); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Str("from", p.Status).Str("to", status).Msg("estado de producto actualizado")
	return uc.Get(ctx, id)
}

// Deactivate baja lógica: pasa a INACTIVO. Idempotente si ya lo está.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if p.Status == entity.ProductStatusInactive {
		return nil
	}
	_, err = uc.ChangeStatus(ctx, id, entity.ProductStatusInactive)
	return err
}

// UploadImage guarda la imagen del producto y actualiza su URL.
func (uc *ProductUseCase) UploadImage(ctx context.Context, id string, up Upload) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	url, err := storeImage(ctx, uc.storage, "products", id, up)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateImage(ctx, id, url); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

func (uc *ProductUseCase) filter(p listing.Params, f dto.ProductFilterRequest) repository.ProductFilter {
	out := repository.ProductFilter{
		Search:     p.Search,
		CategoryID: strings.TrimSpace(f.CategoryID),
		BrandID:    strings.TrimSpace(f.BrandID),
		LowStock:   f.LowStock,
		Sort:       p.Sort,
		Page:       p.Window(),
	}
	if entity.IsProductStatus(f.Status) {
		out.Status = f.Status
	}
	return out
}

// List listado paginado con búsqueda por sku, nombre y EAN.
func (uc *ProductUseCase) List(ctx context.Context, q listing.Query, f dto.ProductFilterRequest) (listing.Result[dto.ProductResponse], error) {
	p := listing.Parse(q, ProductListOptions)
	items, total, err := uc.repo.List(ctx, uc.filter(p, f))
	if err != nil {
		return listing.Result[dto.ProductResponse]{}, err
	}
	out := make([]dto.ProductResponse, 0, len(items))
	for _, it := range items {
		out = append(out, *ToProductResponse(it))
	}
	return listing.NewResult(out, total, p), nil
}

// Search autocompletado: productos activos, máximo 20.
func (uc *ProductUseCase) Search(ctx context.Context, term string) ([]dto.LookupItem, error) {
	items, err := uc.repo.Search(ctx, listing.Fold(term), 20)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LookupItem, 0, len(items))
	for _, p := range items {
		out = append(out, dto.LookupItem{ID: p.ID, Code: p.SKU, Label: p.Name})
	}
	return out, nil
}

// Export .xlsx con los filtros del listado, sin paginar.
func (uc *ProductUseCase) Export(ctx context.Context, q listing.Query, f dto.ProductFilterRequest) ([]byte, string, error) {
	p := listing.Parse(q, ProductListOptions)
	filter := uc.filter(p, f)
	filter.Page = repository.Page{}
	items, _, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.SKU, it.EAN, it.Name, it.Description, it.CategoryName, it.BrandName, it.Model,
			it.PurchaseUnit, it.SaleUnit, it.ConversionFactor.InexactFloat64(),
			it.StandardCost.InexactFloat64(), it.AverageCost.InexactFloat64(), it.SalePrice.InexactFloat64(),
			it.TaxRate.InexactFloat64(), it.StockCurrent.InexactFloat64(), it.StockMin.InexactFloat64(),
			it.StockMax.InexactFloat64(), it.ReorderPoint.InexactFloat64(),
			yesNo(it.Perishable), yesNo(it.LotControl), yesNo(it.SerialControl), it.Status,
		})
	}
	data, err := uc.sheets.Write(ports.Table{SheetName: "Productos", Headers: ProductExportHeaders, Rows: rows})
	if err != nil {
		return nil, "", fmt.Errorf("export productos: %w", err)
	}
	return data, "productos_" + uc.now().Format("20060102_150405") + ".xlsx", nil
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// ToProductResponse convierte la entidad en DTO con los derivados calculados.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		EAN:              p.EAN,
		Name:             p.Name,
		Description:      p.Description,
		CategoryID:       p.CategoryID,
		CategoryName:     p.CategoryName,
		BrandID:          p.BrandID,
		BrandName:        p.BrandName,
		Model:            p.Model,
		PurchaseUnitID:   p.PurchaseUnitID,
		PurchaseUnit:     p.PurchaseUnit,
		SaleUnitID:       p.SaleUnitID,
		SaleUnit:         p.SaleUnit,
		ConversionFactor: p.ConversionFactor,
		StandardCost:     p.StandardCost,
		AverageCost:      p.AverageCost,
		SalePrice:        p.SalePrice,
		TaxRate:          p.TaxRate,
		MarginPct:        p.MarginPct(),
		StockCurrent:     p.StockCurrent,
		StockMin:         p.StockMin,
		StockMax:         p.StockMax,
		ReorderPoint:     p.ReorderPoint,
		RequiresReorder:  p.RequiresReorder(),
		Perishable:       p.Perishable,
		LotControl:       p.LotControl,
		SerialControl:    p.SerialControl,
		LowStockFlag:     p.LowStockFlag,
		ExpiringFlag:     p.ExpiringFlag,
		ImageURL:         p.ImageURL,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
