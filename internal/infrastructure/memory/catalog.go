package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// ── Productos ────────────────────────────────────────────────────────────────

type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

var productSort = map[string]comparator[entity.Product]{
	"sku":        func(a, b *entity.Product) int { return strings.Compare(a.SKU, b.SKU) },
	"nombre":     func(a, b *entity.Product) int { return strings.Compare(a.Name, b.Name) },
	"categoria":  func(a, b *entity.Product) int { return strings.Compare(a.CategoryName, b.CategoryName) },
	"stock":      func(a, b *entity.Product) int { return a.StockCurrent.Cmp(b.StockCurrent) },
	"precio":     func(a, b *entity.Product) int { return a.SalePrice.Cmp(b.SalePrice) },
	"estado":     func(a, b *entity.Product) int { return strings.Compare(a.Status, b.Status) },
	"created_at": func(a, b *entity.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r *ProductRepo) joined(p *entity.Product) *entity.Product {
	cp := *p
	if c, ok := r.s.categories[cp.CategoryID]; ok {
		cp.CategoryName = c.Name
	}
	if cp.BrandID != nil {
		if b, ok := r.s.brands[*cp.BrandID]; ok {
			cp.BrandName = b.Name
		}
	}
	if u, ok := r.s.units[cp.PurchaseUnitID]; ok {
		cp.PurchaseUnit = u.Code
	}
	if u, ok := r.s.units[cp.SaleUnitID]; ok {
		cp.SaleUnit = u.Code
	}
	return &cp
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.products {
		if strings.EqualFold(o.SKU, p.SKU) || (p.EAN != "" && o.EAN == p.EAN) {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return r.joined(p), nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) find(pred func(*entity.Product) bool) *entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if pred(p) {
			return r.joined(p)
		}
	}
	return nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	return r.find(func(p *entity.Product) bool { return strings.EqualFold(p.SKU, sku) }), nil
}

func (r *ProductRepo) GetByEAN(_ context.Context, ean string) (*entity.Product, error) {
	return r.find(func(p *entity.Product) bool { return ean != "" && p.EAN == ean }), nil
}

func (r *ProductRepo) modify(id string, fn func(p *entity.Product)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *cur
	fn(&cp)
	r.s.products[id] = &cp
	return nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.RLock()
	for _, o := range r.s.products {
		if o.ID != p.ID && (strings.EqualFold(o.SKU, p.SKU) || (p.EAN != "" && o.EAN == p.EAN)) {
			r.s.mu.RUnlock()
			return domain.ErrDuplicate
		}
	}
	r.s.mu.RUnlock()
	return r.modify(p.ID, func(cur *entity.Product) {
		keep := *cur
		*cur = *p
		cur.StockCurrent = keep.StockCurrent
		cur.AverageCost = keep.AverageCost
		cur.ExpiringFlag = keep.ExpiringFlag
		cur.ImageURL = keep.ImageURL
		cur.Status = keep.Status
		cur.CreatedAt = keep.CreatedAt
		cur.RecomputeAlerts()
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, p *entity.Product) error {
	return r.modify(p.ID, func(cur *entity.Product) {
		cur.StockCurrent = p.StockCurrent
		cur.AverageCost = p.AverageCost
		cur.LowStockFlag = p.LowStockFlag
		cur.UpdatedAt = p.UpdatedAt
	})
}

func (r *ProductRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.modify(id, func(cur *entity.Product) { cur.Status = status; cur.UpdatedAt = time.Now() })
}

func (r *ProductRepo) UpdateImage(_ context.Context, id, url string) error {
	return r.modify(id, func(cur *entity.Product) { cur.ImageURL = url; cur.UpdatedAt = time.Now() })
}

func (r *ProductRepo) SyncExpiringFlags(_ context.Context, productIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.products {
		flag := slices.Contains(productIDs, id)
		if p.ExpiringFlag == flag {
			continue
		}
		cp := *p
		cp.ExpiringFlag = flag
		r.s.products[id] = &cp
	}
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Product{}
	for _, p := range r.s.products {
		j := r.joined(p)
		switch {
		case !matches(f.Search, j.SKU, j.Name, j.EAN, j.CategoryName, j.BrandName):
		case f.CategoryID != "" && j.CategoryID != f.CategoryID:
		case f.BrandID != "" && !ptrEq(j.BrandID, f.BrandID):
		case f.Status != "" && j.Status != f.Status:
		case f.LowStock && !j.LowStockFlag:
		case f.NeedsReorder && !j.RequiresReorder():
		default:
			out = append(out, j)
		}
	}
	sortBy(out, productSort, f.Sort, "nombre", false)
	return page(out, f.Page), len(out), nil
}

func (r *ProductRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Product, error) {
	items, _, err := r.List(ctx, repository.ProductFilter{
		Search: listing.Fold(term),
		Status: entity.ProductStatusActive,
		Page:   repository.Page{Limit: limit},
	})
	return items, err
}

// ── Categorías, marcas y unidades ───────────────────────────────────────────

type CategoryRepo struct{ s *Store }

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.categories {
		if strings.EqualFold(o.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) List(_ context.Context, activeOnly bool) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Category{}
	for _, c := range r.s.categories {
		if activeOnly && !c.Active {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *entity.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *CategoryRepo) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *c
	cp.Active = active
	r.s.categories[id] = &cp
	return nil
}

type BrandRepo struct{ s *Store }

var _ repository.BrandRepository = (*BrandRepo)(nil)

func (s *Store) Brands() *BrandRepo { return &BrandRepo{s: s} }

func (r *BrandRepo) Create(_ context.Context, b *entity.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.brands {
		if strings.EqualFold(o.Name, b.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *b
	r.s.brands[b.ID] = &cp
	return nil
}

func (r *BrandRepo) GetByID(_ context.Context, id string) (*entity.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.brands[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BrandRepo) List(_ context.Context, activeOnly bool) ([]*entity.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Brand{}
	for _, b := range r.s.brands {
		if activeOnly && !b.Active {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *entity.Brand) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *BrandRepo) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.brands[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *b
	cp.Active = active
	r.s.brands[id] = &cp
	return nil
}

type UnitRepo struct{ s *Store }

var _ repository.UnitRepository = (*UnitRepo)(nil)

func (s *Store) Units() *UnitRepo { return &UnitRepo{s: s} }

func (r *UnitRepo) Create(_ context.Context, u *entity.UnitOfMeasure) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.units {
		if strings.EqualFold(o.Code, u.Code) {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.s.units[u.ID] = &cp
	return nil
}

func (r *UnitRepo) GetByID(_ context.Context, id string) (*entity.UnitOfMeasure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.units[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UnitRepo) GetByCode(_ context.Context, code string) (*entity.UnitOfMeasure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.units {
		if strings.EqualFold(u.Code, code) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UnitRepo) List(_ context.Context) ([]*entity.UnitOfMeasure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.UnitOfMeasure{}
	for _, u := range r.s.units {
		cp := *u
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *entity.UnitOfMeasure) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

// ── Bodegas y proveedores ───────────────────────────────────────────────────

type WarehouseRepo struct{ s *Store }

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.warehouses {
		if strings.EqualFold(o.Code, w.Code) {
			return domain.ErrDuplicate
		}
	}
	cp := *w
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *WarehouseRepo) GetByCode(_ context.Context, code string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.warehouses {
		if strings.EqualFold(w.Code, code) {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.warehouses[w.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.warehouses {
		if o.ID != w.ID && strings.EqualFold(o.Code, w.Code) {
			return domain.ErrDuplicate
		}
	}
	cp := *w
	cp.CreatedAt = cur.CreatedAt
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r *WarehouseRepo) List(_ context.Context, activeOnly bool) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Warehouse{}
	for _, w := range r.s.warehouses {
		if activeOnly && !w.Active {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *entity.Warehouse) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

func (r *WarehouseRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Warehouse, error) {
	all, err := r.List(ctx, true)
	if err != nil {
		return nil, err
	}
	term = listing.Fold(term)
	out := []*entity.Warehouse{}
	for _, w := range all {
		if matches(term, w.Code, w.Name) {
			out = append(out, w)
		}
	}
	return page(out, repository.Page{Limit: limit}), nil
}

type SupplierRepo struct{ s *Store }

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

var supplierSort = map[string]comparator[entity.Supplier]{
	"rut":          func(a, b *entity.Supplier) int { return strings.Compare(a.RutNif, b.RutNif) },
	"razon_social": func(a, b *entity.Supplier) int { return strings.Compare(a.LegalName, b.LegalName) },
	"ciudad":       func(a, b *entity.Supplier) int { return strings.Compare(a.City, b.City) },
	"estado":       func(a, b *entity.Supplier) int { return strings.Compare(a.Status, b.Status) },
	"created_at":   func(a, b *entity.Supplier) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r *SupplierRepo) Create(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.suppliers {
		if strings.EqualFold(o.RutNif, sp.RutNif) {
			return domain.ErrDuplicate
		}
	}
	cp := *sp
	r.s.suppliers[sp.ID] = &cp
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *sp
	return &cp, nil
}

func (r *SupplierRepo) GetByRut(_ context.Context, rut string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sp := range r.s.suppliers {
		if strings.EqualFold(sp.RutNif, rut) {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) Update(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[sp.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.suppliers {
		if o.ID != sp.ID && strings.EqualFold(o.RutNif, sp.RutNif) {
			return domain.ErrDuplicate
		}
	}
	cp := *sp
	cp.Status = cur.Status
	cp.CreatedAt = cur.CreatedAt
	r.s.suppliers[sp.ID] = &cp
	return nil
}

func (r *SupplierRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *cur
	cp.Status = status
	cp.UpdatedAt = time.Now()
	r.s.suppliers[id] = &cp
	return nil
}

func (r *SupplierRepo) List(_ context.Context, f repository.SupplierFilter) ([]*entity.Supplier, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Supplier{}
	for _, sp := range r.s.suppliers {
		switch {
		case !matches(f.Search, sp.RutNif, sp.LegalName, sp.TradeName, sp.Email, sp.City):
		case f.Status != "" && sp.Status != f.Status:
		case f.Country != "" && !strings.EqualFold(sp.Country, f.Country):
		default:
			cp := *sp
			out = append(out, &cp)
		}
	}
	sortBy(out, supplierSort, f.Sort, "razon_social", false)
	return page(out, f.Page), len(out), nil
}

func (r *SupplierRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Supplier, error) {
	items, _, err := r.List(ctx, repository.SupplierFilter{
		Search: listing.Fold(term),
		Status: entity.SupplierStatusActive,
		Page:   repository.Page{Limit: limit},
	})
	return items, err
}

func cmpTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(a.UnixNano(), b.UnixNano())
}
