// Package analytics contiene los casos de uso de lectura para el dashboard de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen del inventario y los movimientos del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO. Las consultas corren en paralelo;
// la primera que falla cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	var (
		out     = dto.DashboardSummaryDTO{DateLabel: monthLabel(now)}
		value   decimal.Decimal
		volumes []repository.MovementVolume
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(name string, dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("dashboard: %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}
	count("productos activos", &out.ActiveProducts, uc.analyticsRepo.CountActiveProducts)
	count("bajo stock", &out.LowStockProducts, uc.analyticsRepo.CountLowStockProducts)
	count("alertas", &out.ActiveAlerts, uc.analyticsRepo.CountActiveAlerts)
	count("órdenes abiertas", &out.OpenOrders, uc.analyticsRepo.CountOpenOrders)
	count("bodegas", &out.ActiveWarehouses, uc.analyticsRepo.CountActiveWarehouses)
	g.Go(func() error {
		v, err := uc.analyticsRepo.InventoryValue(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: valor de inventario: %w", err)
		}
		value = v
		return nil
	})
	g.Go(func() error {
		v, err := uc.analyticsRepo.MovementVolumes(gctx, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("dashboard: movimientos del mes: %w", err)
		}
		volumes = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.InventoryValue = value.Round(2)
	out.MonthMovements = make([]dto.MovementVolumeDTO, 0, len(volumes))
	for _, v := range volumes {
		out.MonthMovements = append(out.MonthMovements, dto.MovementVolumeDTO{Type: v.Type, Count: v.Count, Quantity: v.Quantity})
	}
	return &out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
