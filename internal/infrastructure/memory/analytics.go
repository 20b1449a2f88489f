package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

type AnalyticsRepo struct{ s *Store }

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

func (r *AnalyticsRepo) CountActiveProducts(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, p := range r.s.products {
		if p.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *AnalyticsRepo) CountLowStockProducts(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, p := range r.s.products {
		if p.IsActive() && p.LowStockFlag {
			n++
		}
	}
	return n, nil
}

func (r *AnalyticsRepo) CountActiveAlerts(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, a := range r.s.alerts {
		if a.Status == entity.AlertStatusActive {
			n++
		}
	}
	return n, nil
}

func (r *AnalyticsRepo) CountOpenOrders(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, o := range r.s.orders {
		switch o.Status {
		case entity.OrderStatusDraft, entity.OrderStatusSent, entity.OrderStatusConfirmed:
			n++
		}
	}
	return n, nil
}

func (r *AnalyticsRepo) CountActiveWarehouses(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, w := range r.s.warehouses {
		if w.Active {
			n++
		}
	}
	return n, nil
}

func (r *AnalyticsRepo) MovementVolumes(_ context.Context, from, to time.Time) ([]repository.MovementVolume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byType := map[string]*repository.MovementVolume{}
	for _, m := range r.s.movements {
		if m.Status != entity.MovementStatusConfirmed || m.MovedAt.Before(from) || !m.MovedAt.Before(to) {
			continue
		}
		v, ok := byType[m.Type]
		if !ok {
			v = &repository.MovementVolume{Type: m.Type}
			byType[m.Type] = v
		}
		v.Count++
		v.Quantity = v.Quantity.Add(m.Quantity)
	}
	out := make([]repository.MovementVolume, 0, len(byType))
	for _, v := range byType {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b repository.MovementVolume) int { return strings.Compare(a.Type, b.Type) })
	return out, nil
}

func (r *AnalyticsRepo) InventoryValue(_ context.Context) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, p := range r.s.products {
		if p.IsActive() && p.StockCurrent.IsPositive() {
			total = total.Add(p.StockCurrent.Mul(p.AverageCost))
		}
	}
	return total.Round(2), nil
}
