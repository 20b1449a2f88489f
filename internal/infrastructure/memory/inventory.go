package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// ── Movimientos ─────────────────────────────────────────────────────────────

type MovementRepo struct{ s *Store }

var _ repository.InventoryMovementRepository = (*MovementRepo)(nil)

func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

var movementSort = map[string]comparator[entity.InventoryMovement]{
	"fecha_movimiento": func(a, b *entity.InventoryMovement) int {
		if c := a.MovedAt.Compare(b.MovedAt); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	"tipo_movimiento": func(a, b *entity.InventoryMovement) int { return strings.Compare(a.Type, b.Type) },
	"producto":        func(a, b *entity.InventoryMovement) int { return strings.Compare(a.ProductName, b.ProductName) },
	"cantidad":        func(a, b *entity.InventoryMovement) int { return a.Quantity.Cmp(b.Quantity) },
	"estado":          func(a, b *entity.InventoryMovement) int { return strings.Compare(a.Status, b.Status) },
	"bodega_origen": func(a, b *entity.InventoryMovement) int {
		return strings.Compare(a.SourceWarehouseName, b.SourceWarehouseName)
	},
	"bodega_destino": func(a, b *entity.InventoryMovement) int {
		return strings.Compare(a.DestWarehouseName, b.DestWarehouseName)
	},
	"usuario":    func(a, b *entity.InventoryMovement) int { return strings.Compare(a.CreatedByName, b.CreatedByName) },
	"created_at": func(a, b *entity.InventoryMovement) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r *MovementRepo) joined(m *entity.InventoryMovement) *entity.InventoryMovement {
	cp := *m
	if p, ok := r.s.products[cp.ProductID]; ok {
		cp.ProductSKU, cp.ProductName = p.SKU, p.Name
	}
	if u, ok := r.s.units[cp.UnitID]; ok {
		cp.UnitCode = u.Code
	}
	if cp.SourceWarehouseID != nil {
		if w, ok := r.s.warehouses[*cp.SourceWarehouseID]; ok {
			cp.SourceWarehouseName = w.Name
		}
	}
	if cp.DestWarehouseID != nil {
		if w, ok := r.s.warehouses[*cp.DestWarehouseID]; ok {
			cp.DestWarehouseName = w.Name
		}
	}
	if cp.SupplierID != nil {
		if sp, ok := r.s.suppliers[*cp.SupplierID]; ok {
			cp.SupplierName = sp.LegalName
		}
	}
	if cp.LotID != nil {
		if l, ok := r.s.lots[*cp.LotID]; ok {
			cp.LotCode = l.Code
		}
	}
	if u, ok := r.s.users[cp.CreatedBy]; ok {
		cp.CreatedByName = u.Username
	}
	return &cp
}

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *m
	r.s.movements[m.ID] = &cp
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return r.joined(m), nil
}

func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) Update(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *m
	r.s.movements[m.ID] = &cp
	return nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.InventoryMovement{}
	for _, m := range r.s.movements {
		j := r.joined(m)
		switch {
		case !matches(f.Search, j.ProductSKU, j.ProductName, j.ReferenceDoc, j.Serial, j.LotCode):
		case f.Type != "" && j.Type != f.Type:
		case f.Status != "" && j.Status != f.Status:
		case f.WarehouseID != "" && !ptrEq(j.SourceWarehouseID, f.WarehouseID) && !ptrEq(j.DestWarehouseID, f.WarehouseID):
		case f.ProductID != "" && j.ProductID != f.ProductID:
		case f.From != nil && j.MovedAt.Before(*f.From):
		case f.To != nil && j.MovedAt.After(*f.To):
		default:
			out = append(out, j)
		}
	}
	sortBy(out, movementSort, f.Sort, "fecha_movimiento", true)
	return page(out, f.Page), len(out), nil
}

func (r *MovementRepo) Stats(_ context.Context, now time.Time) (repository.MovementStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	y, mo, d := now.Date()
	dayStart := time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
	monthStart := time.Date(y, mo, 1, 0, 0, 0, 0, now.Location())

	var st repository.MovementStats
	for _, m := range r.s.movements {
		st.Total++
		if !m.MovedAt.Before(dayStart) && m.MovedAt.Before(dayStart.AddDate(0, 0, 1)) {
			st.Today++
		}
		if m.Status == entity.MovementStatusPending {
			st.Pending++
		}
		if m.Status != entity.MovementStatusConfirmed || m.MovedAt.Before(monthStart) || !m.MovedAt.Before(monthStart.AddDate(0, 1, 0)) {
			continue
		}
		switch m.Type {
		case entity.MovementTypeIngress:
			st.MonthIngress++
		case entity.MovementTypeEgress:
			st.MonthEgress++
		}
	}
	return st, nil
}

// ── Lotes ───────────────────────────────────────────────────────────────────

type LotRepo struct{ s *Store }

var _ repository.LotRepository = (*LotRepo)(nil)

func (s *Store) Lots() *LotRepo { return &LotRepo{s: s} }

func (r *LotRepo) joined(l *entity.Lot) *entity.Lot {
	cp := *l
	if p, ok := r.s.products[cp.ProductID]; ok {
		cp.ProductName = p.Name
	}
	if w, ok := r.s.warehouses[cp.WarehouseID]; ok {
		cp.WarehouseName = w.Name
	}
	return &cp
}

func (r *LotRepo) Create(_ context.Context, l *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.lots {
		if o.ProductID == l.ProductID && strings.EqualFold(o.Code, l.Code) {
			return domain.ErrDuplicate
		}
	}
	cp := *l
	r.s.lots[l.ID] = &cp
	return nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	return r.joined(l), nil
}

func (r *LotRepo) GetByCode(_ context.Context, productID, code string) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.lots {
		if l.ProductID == productID && strings.EqualFold(l.Code, code) {
			return r.joined(l), nil
		}
	}
	return nil, nil
}

func (r *LotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Lot{}
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			out = append(out, r.joined(l))
		}
	}
	slices.SortFunc(out, func(a, b *entity.Lot) int { return cmpTimePtr(a.ExpiryDate, b.ExpiryDate) })
	return out, nil
}

func (r *LotRepo) ListExpiring(_ context.Context, until time.Time) ([]*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Lot{}
	for _, l := range r.s.lots {
		if l.Status != entity.LotStatusOK || !l.QuantityAvailable.IsPositive() {
			continue
		}
		if l.ExpiryDate == nil || l.ExpiryDate.After(until) {
			continue
		}
		out = append(out, r.joined(l))
	}
	slices.SortFunc(out, func(a, b *entity.Lot) int { return cmpTimePtr(a.ExpiryDate, b.ExpiryDate) })
	return out, nil
}

func (r *LotRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *l
	cp.Status = status
	cp.UpdatedAt = time.Now()
	r.s.lots[id] = &cp
	return nil
}

func (r *LotRepo) AdjustAvailable(_ context.Context, id string, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *l
	cp.QuantityAvailable = decimal.Max(cp.QuantityAvailable.Add(delta), decimal.Zero)
	cp.UpdatedAt = time.Now()
	r.s.lots[id] = &cp
	return nil
}

// ── Alertas ─────────────────────────────────────────────────────────────────

type AlertRepo struct{ s *Store }

var _ repository.StockAlertRepository = (*AlertRepo)(nil)

func (s *Store) Alerts() *AlertRepo { return &AlertRepo{s: s} }

func (r *AlertRepo) joined(a *entity.StockAlert) *entity.StockAlert {
	cp := *a
	if p, ok := r.s.products[cp.ProductID]; ok {
		cp.ProductSKU, cp.ProductName = p.SKU, p.Name
	}
	if cp.LotID != nil {
		if l, ok := r.s.lots[*cp.LotID]; ok {
			cp.LotCode = l.Code
		}
	}
	return &cp
}

func (r *AlertRepo) Create(_ context.Context, a *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r *AlertRepo) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, nil
	}
	return r.joined(a), nil
}

func (r *AlertRepo) FindActive(_ context.Context, productID, alertType string, lotID *string) (*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.alerts {
		if a.Status != entity.AlertStatusActive || a.ProductID != productID || a.Type != alertType {
			continue
		}
		if lotID != nil && !ptrEq(a.LotID, *lotID) {
			continue
		}
		return r.joined(a), nil
	}
	return nil, nil
}

func (r *AlertRepo) Resolve(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *a
	cp.Status = entity.AlertStatusResolved
	cp.ResolvedAt = &at
	r.s.alerts[id] = &cp
	return nil
}

func (r *AlertRepo) ResolveActive(_ context.Context, productID, alertType string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.alerts {
		if a.Status != entity.AlertStatusActive || a.ProductID != productID || a.Type != alertType {
			continue
		}
		cp := *a
		cp.Status = entity.AlertStatusResolved
		cp.ResolvedAt = &at
		r.s.alerts[id] = &cp
		n++
	}
	return n, nil
}

func (r *AlertRepo) ResolveActiveForLot(_ context.Context, lotID, alertType string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.alerts {
		if a.Status != entity.AlertStatusActive || a.Type != alertType || !ptrEq(a.LotID, lotID) {
			continue
		}
		cp := *a
		cp.Status = entity.AlertStatusResolved
		cp.ResolvedAt = &at
		r.s.alerts[id] = &cp
		n++
	}
	return n, nil
}

func (r *AlertRepo) List(_ context.Context, f repository.AlertFilter) ([]*entity.StockAlert, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.StockAlert{}
	for _, a := range r.s.alerts {
		switch {
		case f.Status != "" && a.Status != f.Status:
		case f.Type != "" && a.Type != f.Type:
		case f.ProductID != "" && a.ProductID != f.ProductID:
		default:
			out = append(out, r.joined(a))
		}
	}
	slices.SortStableFunc(out, func(a, b *entity.StockAlert) int { return b.GeneratedAt.Compare(a.GeneratedAt) })
	return page(out, f.Page), len(out), nil
}

// ── Stock por bodega ────────────────────────────────────────────────────────

type StockRepo struct{ s *Store }

var _ repository.StockRepository = (*StockRepo)(nil)

func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

func (r *StockRepo) joined(ws *entity.WarehouseStock) *entity.WarehouseStock {
	cp := *ws
	if p, ok := r.s.products[cp.ProductID]; ok {
		cp.ProductSKU, cp.ProductName = p.SKU, p.Name
	}
	if w, ok := r.s.warehouses[cp.WarehouseID]; ok {
		cp.WarehouseCode, cp.WarehouseName = w.Code, w.Name
	}
	return &cp
}

func (r *StockRepo) GetForUpdate(_ context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if ws, ok := r.s.stock[stockKey(productID, warehouseID)]; ok {
		return r.joined(ws), nil
	}
	return &entity.WarehouseStock{ProductID: productID, WarehouseID: warehouseID}, nil
}

func (r *StockRepo) Upsert(_ context.Context, ws *entity.WarehouseStock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := entity.WarehouseStock{
		ProductID:   ws.ProductID,
		WarehouseID: ws.WarehouseID,
		Quantity:    ws.Quantity,
		UpdatedAt:   ws.UpdatedAt,
	}
	r.s.stock[stockKey(ws.ProductID, ws.WarehouseID)] = &cp
	return nil
}

func (r *StockRepo) List(_ context.Context, productID, warehouseID string) ([]*entity.WarehouseStock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.WarehouseStock{}
	for _, ws := range r.s.stock {
		if productID != "" && ws.ProductID != productID {
			continue
		}
		if warehouseID != "" && ws.WarehouseID != warehouseID {
			continue
		}
		out = append(out, r.joined(ws))
	}
	slices.SortFunc(out, func(a, b *entity.WarehouseStock) int {
		if c := strings.Compare(a.ProductSKU, b.ProductSKU); c != 0 {
			return c
		}
		return strings.Compare(a.WarehouseCode, b.WarehouseCode)
	})
	return out, nil
}
