package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `
	p.id, p.sku, p.ean, p.name, p.description, p.category_id, p.brand_id, p.model,
	p.purchase_unit_id, p.sale_unit_id, p.conversion_factor, p.standard_cost, p.average_cost,
	p.sale_price, p.tax_rate, p.stock_current, p.stock_min, p.stock_max, p.reorder_point,
	p.perishable, p.lot_control, p.serial_control, p.low_stock_flag, p.expiring_flag,
	p.image_url, p.status, p.created_at, p.updated_at,
	COALESCE(c.name, ''), COALESCE(b.name, ''), COALESCE(pu.code, ''), COALESCE(su.code, '')`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id
	LEFT JOIN units pu ON pu.id = p.purchase_unit_id
	LEFT JOIN units su ON su.id = p.sale_unit_id`

var productSortColumns = map[string]string{
	"sku":        "p.sku",
	"nombre":     "p.name",
	"categoria":  "c.name",
	"stock":      "p.stock_current",
	"precio":     "p.sale_price",
	"estado":     "p.status",
	"created_at": "p.created_at",
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.EAN, &p.Name, &p.Description, &p.CategoryID, &p.BrandID, &p.Model,
		&p.PurchaseUnitID, &p.SaleUnitID, &p.ConversionFactor, &p.StandardCost, &p.AverageCost,
		&p.SalePrice, &p.TaxRate, &p.StockCurrent, &p.StockMin, &p.StockMax, &p.ReorderPoint,
		&p.Perishable, &p.LotControl, &p.SerialControl, &p.LowStockFlag, &p.ExpiringFlag,
		&p.ImageURL, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.BrandName, &p.PurchaseUnit, &p.SaleUnit,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, cond string, arg any, suffix string) (*entity.Product, error) {
	query := "SELECT " + productColumns + productFrom + " WHERE " + cond + suffix
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, ean, name, description, category_id, brand_id, model,
			purchase_unit_id, sale_unit_id, conversion_factor, standard_cost, average_cost, sale_price,
			tax_rate, stock_current, stock_min, stock_max, reorder_point, perishable, lot_control,
			serial_control, low_stock_flag, expiring_flag, image_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.EAN, p.Name, p.Description, p.CategoryID, p.BrandID, p.Model,
		p.PurchaseUnitID, p.SaleUnitID, p.ConversionFactor, p.StandardCost, p.AverageCost, p.SalePrice,
		p.TaxRate, p.StockCurrent, p.StockMin, p.StockMax, p.ReorderPoint, p.Perishable, p.LotControl,
		p.SerialControl, p.LowStockFlag, p.ExpiringFlag, p.ImageURL, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "p.id = $1", id, "")
}

// GetForUpdate bloquea solo la fila de products; los joins no se bloquean.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "p.id = $1", id, " FOR UPDATE OF p")
}

// GetBySKU búsqueda exacta sin distinguir mayúsculas.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "upper(p.sku) = upper($1)", sku, "")
}

func (r *ProductRepo) GetByEAN(ctx context.Context, ean string) (*entity.Product, error) {
	if ean == "" {
		return nil, nil
	}
	return r.getOne(ctx, "p.ean = $1", ean, "")
}

// Update actualiza datos maestros. Stock, costo promedio, imagen y estado tienen su propio camino;
// la bandera de bajo stock se recalcula con el nuevo mínimo.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, ean = $3, name = $4, description = $5, category_id = $6, brand_id = $7,
			model = $8, purchase_unit_id = $9, sale_unit_id = $10, conversion_factor = $11, standard_cost = $12,
			sale_price = $13, tax_rate = $14, stock_min = $15, stock_max = $16, reorder_point = $17,
			perishable = $18, lot_control = $19, serial_control = $20,
			low_stock_flag = stock_current < $15, updated_at = $21
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.EAN, p.Name, p.Description, p.CategoryID, p.BrandID,
		p.Model, p.PurchaseUnitID, p.SaleUnitID, p.ConversionFactor, p.StandardCost,
		p.SalePrice, p.TaxRate, p.StockMin, p.StockMax, p.ReorderPoint,
		p.Perishable, p.LotControl, p.SerialControl, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

// UpdateStock persiste el resultado de la conciliación (motor de inventario).
func (r *ProductRepo) UpdateStock(ctx context.Context, p *entity.Product) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock_current = $2, average_cost = $3, low_stock_flag = $4, updated_at = $5 WHERE id = $1`,
		p.ID, p.StockCurrent, p.AverageCost, p.LowStockFlag, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *ProductRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *ProductRepo) UpdateImage(ctx context.Context, id, imageURL string) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET image_url = $2, updated_at = now() WHERE id = $1`, id, imageURL)
	if err != nil {
		return fmt.Errorf("update product image: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *ProductRepo) SyncExpiringFlags(ctx context.Context, productIDs []string) error {
	if productIDs == nil {
		productIDs = []string{}
	}
	_, err := r.q.Exec(ctx, `
		UPDATE products SET expiring_flag = (id::text = ANY($1::text[]))
		WHERE expiring_flag <> (id::text = ANY($1::text[]))`, productIDs)
	if err != nil {
		return fmt.Errorf("sync product expiring flags: %w", err)
	}
	return nil
}

// List listado filtrado y paginado; devuelve también el total sin paginar.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	w := &where{}
	w.search(f.Search, "p.sku", "p.name", "p.ean", "c.name", "COALESCE(b.name, '')")
	if f.CategoryID != "" {
		w.and("p.category_id = " + w.arg(f.CategoryID))
	}
	if f.BrandID != "" {
		w.and("p.brand_id = " + w.arg(f.BrandID))
	}
	if f.Status != "" {
		w.and("p.status = " + w.arg(f.Status))
	}
	if f.LowStock {
		w.and("p.low_stock_flag")
	}
	if f.NeedsReorder {
		w.and("p.stock_current <= CASE WHEN p.reorder_point = 0 THEN p.stock_min ELSE p.reorder_point END")
	}

	total, err := count(ctx, r.q, productFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	query := "SELECT " + productColumns + productFrom + w.sql() +
		orderBy(productSortColumns, f.Sort, "p.name", "p.id") + w.window(f.Page)
	list, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Search autocompletado de productos activos.
func (r *ProductRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Product, error) {
	list, _, err := r.List(ctx, repository.ProductFilter{
		Search: term,
		Status: entity.ProductStatusActive,
		Page:   repository.Page{Limit: limit},
	})
	return list, err
}

func (r *ProductRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
