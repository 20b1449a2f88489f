package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

var alertListOptions = listing.Options{
	PerPageAllowed: []int{10, 25, 50, 100},
	PerPageDefault: 25,
}

// AlertUseCase consulta, resuelve y genera alertas de stock y vencimiento.
type AlertUseCase struct {
	tx          TxRunner
	alerts      repository.StockAlertRepository
	warningDays int
	log         *logger.Logger
	now         func() time.Time
}

// NewAlertUseCase construye el caso de uso. warningDays <= 0 usa 30 días.
func NewAlertUseCase(tx TxRunner, alerts repository.StockAlertRepository, warningDays int, log *logger.Logger) *AlertUseCase {
	if warningDays <= 0 {
		warningDays = 30
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AlertUseCase{
		tx:          tx,
		alerts:      alerts,
		warningDays: warningDays,
		log:         log.Component("alerts"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *AlertUseCase) WithClock(now func() time.Time) *AlertUseCase {
	uc.now = now
	return uc
}

// List alertas paginadas, más recientes primero.
func (uc *AlertUseCase) List(ctx context.Context, q listing.Query, f dto.AlertFilterRequest) (listing.Result[dto.AlertResponse], error) {
	p := listing.Parse(q, alertListOptions)
	filter := repository.AlertFilter{ProductID: f.ProductID, Page: p.Window()}
	if f.Status == entity.AlertStatusActive || f.Status == entity.AlertStatusResolved {
		filter.Status = f.Status
	}
	switch f.Type {
	case entity.AlertTypeLowStock, entity.AlertTypeExpiring, entity.AlertTypeExpired:
		filter.Type = f.Type
	}
	items, total, err := uc.alerts.List(ctx, filter)
	if err != nil {
		return listing.Result[dto.AlertResponse]{}, err
	}
	out := make([]dto.AlertResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ToAlertResponse(a))
	}
	return listing.NewResult(out, total, p), nil
}

// Resolve marca una alerta ACTIVA como RESUELTA. Resolver una ya resuelta es conflicto.
func (uc *AlertUseCase) Resolve(ctx context.Context, id string) (*dto.AlertResponse, error) {
	a, err := uc.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.Status != entity.AlertStatusActive {
		return nil, domain.StateConflict("la alerta ya está %s", a.Status)
	}
	now := uc.now()
	if err := uc.alerts.Resolve(ctx, id, now); err != nil {
		return nil, err
	}
	a.Status = entity.AlertStatusResolved
	a.ResolvedAt = &now
	out := ToAlertResponse(a)
	return &out, nil
}

// ScanLotExpiry recorre los lotes OK con saldo que vencen dentro de la ventana de aviso.
// Vencidos: alerta VENCIDO (ALTA), lote VENCIDO y se resuelve su POR_VENCER activa.
// Por vencer: alerta POR_VENCER (MEDIA). No duplica alertas activas del mismo lote.
// expiring_flag queda en true solo para productos con lotes por vencer.
func (uc *AlertUseCase) ScanLotExpiry(ctx context.Context) (*dto.ExpiryScanResponse, error) {
	now := uc.now()
	until := now.AddDate(0, 0, uc.warningDays)
	res := &dto.ExpiryScanResponse{}

	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		lots, err := tx.Lots.ListExpiring(ctx, until)
		if err != nil {
			return err
		}
		marked := map[string]bool{}
		flagged := []string{}
		for _, lot := range lots {
			if lot.ExpiryDate == nil {
				continue
			}
			res.LotsChecked++

			alertType := entity.AlertTypeExpiring
			priority := entity.AlertPriorityMedium
			msg := fmt.Sprintf("El lote %s vence el %s", lot.Code, lot.ExpiryDate.Format(dto.DateLayout))
			if !lot.ExpiryDate.After(now) {
				alertType = entity.AlertTypeExpired
				priority = entity.AlertPriorityHigh
				msg = fmt.Sprintf("El lote %s venció el %s", lot.Code, lot.ExpiryDate.Format(dto.DateLayout))
				if err := tx.Lots.UpdateStatus(ctx, lot.ID, entity.LotStatusExpired); err != nil {
					return err
				}
				if _, err := tx.Alerts.ResolveActiveForLot(ctx, lot.ID, entity.AlertTypeExpiring, now); err != nil {
					return err
				}
				res.ExpiredLots++
			} else {
				res.ExpiringLots++
				if !marked[lot.ProductID] {
					marked[lot.ProductID] = true
					flagged = append(flagged, lot.ProductID)
				}
			}

			existing, err := tx.Alerts.FindActive(ctx, lot.ProductID, alertType, &lot.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			lotID := lot.ID
			whID := lot.WarehouseID
			a := &entity.StockAlert{
				ID:          uuid.New().String(),
				Type:        alertType,
				ProductID:   lot.ProductID,
				WarehouseID: &whID,
				LotID:       &lotID,
				Message:     msg,
				CurrentQty:  lot.QuantityAvailable,
				Priority:    priority,
				Status:      entity.AlertStatusActive,
				GeneratedAt: now,
			}
			if err := tx.Alerts.Create(ctx, a); err != nil {
				return err
			}
			res.AlertsCreated++
		}
		res.ProductsMarked = len(flagged)
		return tx.Products.SyncExpiringFlags(ctx, flagged)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int("lots", res.LotsChecked).
		Int("expired", res.ExpiredLots).
		Int("expiring", res.ExpiringLots).
		Int("alerts_created", res.AlertsCreated).
		Msg("barrido de vencimientos")
	return res, nil
}

// ToAlertResponse convierte la entidad en DTO.
func ToAlertResponse(a *entity.StockAlert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:          a.ID,
		Type:        a.Type,
		ProductID:   a.ProductID,
		ProductSKU:  a.ProductSKU,
		ProductName: a.ProductName,
		WarehouseID: a.WarehouseID,
		LotID:       a.LotID,
		LotCode:     a.LotCode,
		Message:     a.Message,
		CurrentQty:  a.CurrentQty,
		Threshold:   a.Threshold,
		Priority:    a.Priority,
		Status:      a.Status,
		GeneratedAt: a.GeneratedAt,
		ResolvedAt:  a.ResolvedAt,
	}
}
