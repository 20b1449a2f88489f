package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/inventory"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// MovementListOptions reglas del listado de movimientos.
var MovementListOptions = listing.Options{
	PerPageAllowed: []int{10, 25, 50, 100},
	PerPageDefault: 25,
	SortFields: []string{
		"fecha_movimiento", "tipo_movimiento", "producto", "cantidad", "estado",
		"bodega_origen", "bodega_destino", "usuario", "created_at",
	},
	DefaultSort: "fecha_movimiento",
	DefaultDesc: true,
}

// MovementExportHeaders columnas fijas del .xlsx de movimientos.
var MovementExportHeaders = []string{
	"ID", "Fecha Movimiento", "Tipo", "Estado", "Producto SKU", "Producto Nombre", "Cantidad",
	"Unidad", "Bodega Origen", "Bodega Destino", "Proveedor", "Lote", "Serie", "Costo Unitario",
	"Costo Total", "Doc. Referencia", "Motivo/Observaciones", "Usuario", "Fecha Registro",
}

// MovementDeps dependencias del caso de uso de movimientos.
type MovementDeps struct {
	Tx         TxRunner
	Movements  repository.InventoryMovementRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Suppliers  repository.SupplierRepository
	Units      repository.UnitRepository
	Lots       repository.LotRepository
	Stock      repository.StockRepository
	Sheets     ports.SpreadsheetWriter
	Log        *logger.Logger
}

// MovementUseCase registra, edita, confirma y anula movimientos de inventario.
// Confirmar y actualizar el stock ocurren en una sola transacción con bloqueo de fila.
type MovementUseCase struct {
	tx         TxRunner
	movements  repository.InventoryMovementRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	suppliers  repository.SupplierRepository
	units      repository.UnitRepository
	lots       repository.LotRepository
	stock      repository.StockRepository
	sheets     ports.SpreadsheetWriter
	log        *logger.Logger
	now        func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(d MovementDeps) *MovementUseCase {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &MovementUseCase{
		tx:         d.Tx,
		movements:  d.Movements,
		products:   d.Products,
		warehouses: d.Warehouses,
		suppliers:  d.Suppliers,
		units:      d.Units,
		lots:       d.Lots,
		stock:      d.Stock,
		sheets:     d.Sheets,
		log:        log.Component("inventory"),
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *MovementUseCase) WithClock(now func() time.Time) *MovementUseCase {
	uc.now = now
	return uc
}

// Create valida y registra un movimiento en PENDIENTE o directamente CONFIRMADO.
// Si es CONFIRMADO se concilia en la misma transacción.
func (uc *MovementUseCase) Create(ctx context.Context, userID string, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	m, err := uc.buildMovement(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(tx repository.Tx) error {
		if err := tx.Movements.Create(ctx, m); err != nil {
			return err
		}
		if m.Status == entity.MovementStatusConfirmed {
			return reconcile(ctx, tx, m, m.CreatedAt, uc.log)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, m.ID)
}

func (uc *MovementUseCase) buildMovement(ctx context.Context, userID string, in dto.CreateMovementRequest) (*entity.InventoryMovement, error) {
	if !entity.IsMovementType(in.Type) {
		return nil, domain.Invalid("type", fmt.Sprintf("tipo de movimiento inválido '%s'", in.Type))
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser mayor a cero")
	}
	status := in.Status
	if status == "" {
		status = entity.MovementStatusPending
	}
	if status != entity.MovementStatusPending && status != entity.MovementStatusConfirmed {
		return nil, domain.Invalid("status", "un movimiento nuevo solo puede quedar PENDIENTE o CONFIRMADO")
	}

	src := dto.OptionalID(in.SourceWarehouseID)
	dst := dto.OptionalID(in.DestWarehouseID)
	sup := dto.OptionalID(in.SupplierID)
	lotID := dto.OptionalID(in.LotID)

	if entity.NeedsSupplier(in.Type) && sup == nil {
		return nil, domain.Invalid("supplier_id", "el proveedor es obligatorio para "+in.Type)
	}
	if entity.NeedsSource(in.Type) && src == nil {
		return nil, domain.Invalid("source_warehouse_id", "la bodega de origen es obligatoria para "+in.Type)
	}
	if entity.NeedsDestination(in.Type) && dst == nil {
		return nil, domain.Invalid("dest_warehouse_id", "la bodega de destino es obligatoria para "+in.Type)
	}
	if in.Type == entity.MovementTypeTransfer && *src == *dst {
		return nil, domain.Invalid("dest_warehouse_id", "la bodega de destino debe ser distinta a la de origen")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	if in.TotalCost != nil && in.TotalCost.IsNegative() {
		return nil, domain.Invalid("total_cost", "no puede ser negativo")
	}

	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	unit, err := uc.units.GetByID(ctx, in.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: unidad de medida %s", domain.ErrNotFound, in.UnitID)
	}
	for _, whID := range []*string{src, dst} {
		if whID == nil {
			continue
		}
		wh, err := uc.warehouses.GetByID(ctx, *whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, *whID)
		}
		if !wh.Active {
			return nil, domain.Invalid("warehouse", fmt.Sprintf("la bodega %s está inactiva", wh.Code))
		}
	}
	if sup != nil {
		s, err := uc.suppliers.GetByID(ctx, *sup)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, *sup)
		}
	}
	if product.LotControl && lotID == nil {
		return nil, domain.Invalid("lot_id", "el producto requiere control de lote")
	}
	if lotID != nil {
		lot, err := uc.lots.GetByID(ctx, *lotID)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, *lotID)
		}
		if lot.ProductID != product.ID {
			return nil, domain.Invalid("lot_id", "el lote no corresponde al producto")
		}
		if wh := inventory.LotWarehouse(in.Type, src, dst); wh != nil && *wh != lot.WarehouseID {
			return nil, domain.Invalid("lot_id", "el lote pertenece a otra bodega")
		}
	}
	serial := strings.TrimSpace(in.Serial)
	if product.SerialControl && serial == "" {
		return nil, domain.Invalid("serial", "el producto requiere número de serie")
	}

	now := uc.now()
	m := &entity.InventoryMovement{
		ID:                uuid.New().String(),
		Type:              in.Type,
		MovedAt:           now,
		ProductID:         product.ID,
		Quantity:          in.Quantity,
		UnitID:            unit.ID,
		SourceWarehouseID: src,
		DestWarehouseID:   dst,
		SupplierID:        sup,
		LotID:             lotID,
		Serial:            serial,
		ReferenceDoc:      strings.TrimSpace(in.ReferenceDoc),
		AdjustmentReason:  strings.TrimSpace(in.AdjustmentReason),
		Notes:             in.Notes,
		Status:            status,
		CreatedBy:         userID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if in.MovedAt != nil && !in.MovedAt.IsZero() {
		m.MovedAt = *in.MovedAt
	}
	if in.UnitCost != nil {
		m.UnitCost = decimal.NewNullDecimal(*in.UnitCost)
	}
	if in.TotalCost != nil {
		m.TotalCost = decimal.NewNullDecimal(*in.TotalCost)
	} else if in.UnitCost != nil {
		m.TotalCost = decimal.NewNullDecimal(in.Quantity.Mul(*in.UnitCost))
	}
	if status == entity.MovementStatusConfirmed {
		m.ConfirmedBy = &userID
		m.ConfirmedAt = &now
	}
	return m, nil
}

// Get obtiene un movimiento con sus etiquetas (producto, bodegas, usuario).
func (uc *MovementUseCase) Get(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	out := ToMovementResponse(m)
	return &out, nil
}

// Update edita un movimiento PENDIENTE. Un movimiento CONFIRMADO o ANULADO es inmutable.
// Pasar a CONFIRMADO concilia el stock en la misma transacción.
func (uc *MovementUseCase) Update(ctx context.Context, id, userID string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		m, err := tx.Movements.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if !m.IsPending() {
			return domain.StateConflict("no se puede editar un movimiento %s", m.Status)
		}

		if in.Quantity != nil {
			if !in.Quantity.IsPositive() {
				return domain.Invalid("quantity", "debe ser mayor a cero")
			}
			m.Quantity = *in.Quantity
		}
		if in.UnitCost != nil {
			if in.UnitCost.IsNegative() {
				return domain.Invalid("unit_cost", "no puede ser negativo")
			}
			m.UnitCost = decimal.NewNullDecimal(*in.UnitCost)
		}
		switch {
		case in.TotalCost != nil:
			if in.TotalCost.IsNegative() {
				return domain.Invalid("total_cost", "no puede ser negativo")
			}
			m.TotalCost = decimal.NewNullDecimal(*in.TotalCost)
		case (in.Quantity != nil || in.UnitCost != nil) && m.UnitCost.Valid:
			m.TotalCost = decimal.NewNullDecimal(m.Quantity.Mul(m.UnitCost.Decimal))
		}
		if in.ReferenceDoc != nil {
			m.ReferenceDoc = strings.TrimSpace(*in.ReferenceDoc)
		}
		if in.AdjustmentReason != nil {
			m.AdjustmentReason = strings.TrimSpace(*in.AdjustmentReason)
		}
		if in.Notes != nil {
			m.Notes = *in.Notes
		}

		switch in.Status {
		case "", entity.MovementStatusPending:
			m.UpdatedAt = uc.now()
			return tx.Movements.Update(ctx, m)
		case entity.MovementStatusConfirmed:
			return uc.confirmLocked(ctx, tx, m, userID)
		case entity.MovementStatusCancelled:
			m.Status = entity.MovementStatusCancelled
			m.UpdatedAt = uc.now()
			return tx.Movements.Update(ctx, m)
		default:
			return domain.Invalid("status", fmt.Sprintf("estado inválido '%s'", in.Status))
		}
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Confirm PENDIENTE -> CONFIRMADO y conciliación, todo en una transacción.
// El estado se verifica sobre la fila bloqueada: un movimiento se concilia a lo sumo una vez.
func (uc *MovementUseCase) Confirm(ctx context.Context, id, userID string) (*dto.MovementResponse, error) {
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		m, err := tx.Movements.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		return uc.confirmLocked(ctx, tx, m, userID)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Cancel PENDIENTE -> ANULADO. No toca el stock.
func (uc *MovementUseCase) Cancel(ctx context.Context, id string) (*dto.MovementResponse, error) {
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		m, err := tx.Movements.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if err := entity.CheckMovementTransition(m.Status, entity.MovementStatusCancelled); err != nil {
			return domain.StateConflict("el movimiento está %s y no puede anularse", m.Status)
		}
		m.Status = entity.MovementStatusCancelled
		m.UpdatedAt = uc.now()
		return tx.Movements.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

func (uc *MovementUseCase) filter(p listing.Params, f dto.MovementFilterRequest) (repository.MovementFilter, error) {
	from, to, err := dto.ParseDateRange(f.DateFrom, f.DateTo, nil)
	if err != nil {
		return repository.MovementFilter{}, fmt.Errorf("%w: %s", domain.ErrBadRequest, err.Error())
	}
	out := repository.MovementFilter{
		Search:      p.Search,
		WarehouseID: strings.TrimSpace(f.WarehouseID),
		ProductID:   strings.TrimSpace(f.ProductID),
		From:        from,
		To:          to,
		Sort:        p.Sort,
		Page:        p.Window(),
	}
	// Valores desconocidos en filtros se ignoran.
	if entity.IsMovementType(f.Type) {
		out.Type = f.Type
	}
	if entity.IsMovementStatus(f.Status) {
		out.Status = f.Status
	}
	return out, nil
}

// List listado paginado con búsqueda, filtros, orden y contadores.
func (uc *MovementUseCase) List(ctx context.Context, q listing.Query, f dto.MovementFilterRequest) (*dto.MovementListResponse, error) {
	p := listing.Parse(q, MovementListOptions)
	filter, err := uc.filter(p, f)
	if err != nil {
		return nil, err
	}
	items, total, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats, err := uc.movements.Stats(ctx, uc.now())
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{Result: listing.NewResult(out, total, p), Stats: stats}, nil
}

// Export genera el .xlsx con los mismos filtros del listado, sin paginar.
func (uc *MovementUseCase) Export(ctx context.Context, q listing.Query, f dto.MovementFilterRequest) ([]byte, string, error) {
	p := listing.Parse(q, MovementListOptions)
	filter, err := uc.filter(p, f)
	if err != nil {
		return nil, "", err
	}
	filter.Page = repository.Page{}
	items, _, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	rows := make([][]any, 0, len(items))
	for _, m := range items {
		rows = append(rows, movementRow(m))
	}
	data, err := uc.sheets.Write(ports.Table{SheetName: "Movimientos", Headers: MovementExportHeaders, Rows: rows})
	if err != nil {
		return nil, "", fmt.Errorf("export movimientos: %w", err)
	}
	uc.log.Info().Int("rows", len(rows)).Msg("exportación de movimientos")
	return data, "movimientos_" + uc.now().Format("20060102_150405") + ".xlsx", nil
}

func movementRow(m *entity.InventoryMovement) []any {
	var unitCost, totalCost any = "", ""
	if m.UnitCost.Valid {
		unitCost = m.UnitCost.Decimal.InexactFloat64()
	}
	if m.TotalCost.Valid {
		totalCost = m.TotalCost.Decimal.InexactFloat64()
	}
	notes := m.AdjustmentReason
	if m.Notes != "" {
		if notes != "" {
			notes += " / "
		}
		notes += m.Notes
	}
	return []any{
		m.ID,
		m.MovedAt.Format("2006-01-02 15:04"),
		m.Type,
		m.Status,
		m.ProductSKU,
		m.ProductName,
		m.Quantity.InexactFloat64(),
		m.UnitCode,
		m.SourceWarehouseName,
		m.DestWarehouseName,
		m.SupplierName,
		m.LotCode,
		m.Serial,
		unitCost,
		totalCost,
		m.ReferenceDoc,
		notes,
		m.CreatedByName,
		m.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// Stock stock por bodega; ambos filtros opcionales.
func (uc *MovementUseCase) Stock(ctx context.Context, productID, warehouseID string) ([]dto.WarehouseStockResponse, error) {
	list, err := uc.stock.List(ctx, strings.TrimSpace(productID), strings.TrimSpace(warehouseID))
	if err != nil {
		return nil, err
	}
	out := make([]dto.WarehouseStockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.WarehouseStockResponse{
			ProductID:     s.ProductID,
			ProductSKU:    s.ProductSKU,
			ProductName:   s.ProductName,
			WarehouseID:   s.WarehouseID,
			WarehouseCode: s.WarehouseCode,
			WarehouseName: s.WarehouseName,
			Quantity:      s.Quantity,
			UpdatedAt:     s.UpdatedAt,
		})
	}
	return out, nil
}

// ToMovementResponse convierte la entidad en DTO.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:                  m.ID,
		Type:                m.Type,
		MovedAt:             m.MovedAt,
		ProductID:           m.ProductID,
		ProductSKU:          m.ProductSKU,
		ProductName:         m.ProductName,
		Quantity:            m.Quantity,
		UnitID:              m.UnitID,
		UnitCode:            m.UnitCode,
		SourceWarehouseID:   m.SourceWarehouseID,
		SourceWarehouseName: m.SourceWarehouseName,
		DestWarehouseID:     m.DestWarehouseID,
		DestWarehouseName:   m.DestWarehouseName,
		SupplierID:          m.SupplierID,
		SupplierName:        m.SupplierName,
		LotID:               m.LotID,
		LotCode:             m.LotCode,
		Serial:              m.Serial,
		ReferenceDoc:        m.ReferenceDoc,
		AdjustmentReason:    m.AdjustmentReason,
		Notes:               m.Notes,
		ParentDocType:       m.ParentDocType,
		ParentDocID:         m.ParentDocID,
		Status:              m.Status,
		CreatedBy:           m.CreatedBy,
		CreatedByName:       m.CreatedByName,
		ConfirmedBy:         m.ConfirmedBy,
		ConfirmedAt:         m.ConfirmedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.UnitCost.Valid {
		v := m.UnitCost.Decimal
		out.UnitCost = &v
	}
	if m.TotalCost.Valid {
		v := m.TotalCost.Decimal
		out.TotalCost = &v
	}
	return out
}
