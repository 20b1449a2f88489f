package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

type OrderRepo struct{ s *Store }

var _ repository.PurchaseOrderRepository = (*OrderRepo)(nil)

func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

func (r *OrderRepo) joined(o *entity.PurchaseOrder, withLines bool) *entity.PurchaseOrder {
	cp := *o
	cp.Lines = nil
	if sp, ok := r.s.suppliers[cp.SupplierID]; ok {
		cp.SupplierName, cp.SupplierRut = sp.LegalName, sp.RutNif
	}
	if cp.WarehouseID != nil {
		if w, ok := r.s.warehouses[*cp.WarehouseID]; ok {
			cp.WarehouseName = w.Name
		}
	}
	if !withLines {
		return &cp
	}
	cp.Lines = []entity.PurchaseOrderLine{}
	for _, l := range r.s.lines {
		if l.OrderID != cp.ID {
			continue
		}
		line := *l
		if p, ok := r.s.products[line.ProductID]; ok {
			line.ProductSKU, line.ProductName = p.SKU, p.Name
		}
		cp.Lines = append(cp.Lines, line)
	}
	slices.SortStableFunc(cp.Lines, func(a, b entity.PurchaseOrderLine) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return &cp
}

func (r *OrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.orders {
		if e.Number == o.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *o
	cp.Lines = nil
	r.s.orders[o.ID] = &cp
	for i := range o.Lines {
		l := o.Lines[i]
		l.OrderID = o.ID
		r.s.lines[l.ID] = &l
	}
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return r.joined(o, true), nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(_ context.Context, o *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *o
	cp.Lines = nil
	cp.Number = cur.Number
	cp.CreatedAt = cur.CreatedAt
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.PurchaseOrder, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.PurchaseOrder{}
	for _, o := range r.s.orders {
		j := r.joined(o, false)
		switch {
		case !matches(f.Search, j.Number, j.SupplierName, j.SupplierRut):
		case f.Status != "" && j.Status != f.Status:
		case f.SupplierID != "" && j.SupplierID != f.SupplierID:
		case f.From != nil && j.OrderDate.Before(*f.From):
		case f.To != nil && j.OrderDate.After(*f.To):
		default:
			out = append(out, j)
		}
	}
	slices.SortStableFunc(out, func(a, b *entity.PurchaseOrder) int {
		if c := b.OrderDate.Compare(a.OrderDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(out, f.Page), len(out), nil
}

func (r *OrderRepo) AddLine(_ context.Context, l *entity.PurchaseOrderLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[l.OrderID]; !ok {
		return domain.ErrNotFound
	}
	cp := *l
	r.s.lines[l.ID] = &cp
	return nil
}

func (r *OrderRepo) UpdateLine(_ context.Context, l *entity.PurchaseOrderLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.lines[l.ID]
	if !ok || cur.OrderID != l.OrderID {
		return domain.ErrNotFound
	}
	cp := *l
	cp.CreatedAt = cur.CreatedAt
	r.s.lines[l.ID] = &cp
	return nil
}

func (r *OrderRepo) DeleteLine(_ context.Context, orderID, lineID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.lines[lineID]
	if !ok || cur.OrderID != orderID {
		return domain.ErrNotFound
	}
	delete(r.s.lines, lineID)
	return nil
}
