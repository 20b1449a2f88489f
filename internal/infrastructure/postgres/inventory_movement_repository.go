package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación del puerto InventoryMovementRepository sobre PostgreSQL.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `
	m.id, m.type, m.moved_at, m.product_id, m.quantity, m.unit_id, m.source_warehouse_id, m.dest_warehouse_id,
	m.supplier_id, m.lot_id, m.serial, m.unit_cost, m.total_cost, m.reference_doc, m.adjustment_reason,
	m.notes, m.parent_doc_type, m.parent_doc_id, m.status, m.created_by, m.confirmed_by, m.confirmed_at,
	m.created_at, m.updated_at,
	COALESCE(p.sku, ''), COALESCE(p.name, ''), COALESCE(un.code, ''), COALESCE(ws.name, ''),
	COALESCE(wd.name, ''), COALESCE(s.legal_name, ''), COALESCE(l.code, ''), COALESCE(u.username, '')`

const movementFrom = `
	FROM inventory_movements m
	LEFT JOIN products p ON p.id = m.product_id
	LEFT JOIN units un ON un.id = m.unit_id
	LEFT JOIN warehouses ws ON ws.id = m.source_warehouse_id
	LEFT JOIN warehouses wd ON wd.id = m.dest_warehouse_id
	LEFT JOIN suppliers s ON s.id = m.supplier_id
	LEFT JOIN lots l ON l.id = m.lot_id
	LEFT JOIN users u ON u.id = m.created_by`

var movementSortColumns = map[string]string{
	"fecha_movimiento": "m.moved_at",
	"tipo_movimiento":  "m.type",
	"producto":         "p.name",
	"cantidad":         "m.quantity",
	"estado":           "m.status",
	"bodega_origen":    "ws.name",
	"bodega_destino":   "wd.name",
	"usuario":          "u.username",
	"created_at":       "m.created_at",
}

func scanMovement(row rowScanner) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	err := row.Scan(
		&m.ID, &m.Type, &m.MovedAt, &m.ProductID, &m.Quantity, &m.UnitID, &m.SourceWarehouseID, &m.DestWarehouseID,
		&m.SupplierID, &m.LotID, &m.Serial, &m.UnitCost, &m.TotalCost, &m.ReferenceDoc, &m.AdjustmentReason,
		&m.Notes, &m.ParentDocType, &m.ParentDocID, &m.Status, &m.CreatedBy, &m.ConfirmedBy, &m.ConfirmedAt,
		&m.CreatedAt, &m.UpdatedAt,
		&m.ProductSKU, &m.ProductName, &m.UnitCode, &m.SourceWarehouseName,
		&m.DestWarehouseName, &m.SupplierName, &m.LotCode, &m.CreatedByName,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create registra un movimiento.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_movements (id, type, moved_at, product_id, quantity, unit_id, source_warehouse_id,
			dest_warehouse_id, supplier_id, lot_id, serial, unit_cost, total_cost, reference_doc, adjustment_reason,
			notes, parent_doc_type, parent_doc_id, status, created_by, confirmed_by, confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24)`,
		m.ID, m.Type, m.MovedAt, m.ProductID, m.Quantity, m.UnitID, m.SourceWarehouseID,
		m.DestWarehouseID, m.SupplierID, m.LotID, m.Serial, m.UnitCost, m.TotalCost, m.ReferenceDoc, m.AdjustmentReason,
		m.Notes, m.ParentDocType, m.ParentDocID, m.Status, m.CreatedBy, m.ConfirmedBy, m.ConfirmedAt, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory movement: %w", err)
	}
	return nil
}

func (r *InventoryMovementRepo) get(ctx context.Context, id, suffix string) (*entity.InventoryMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, "SELECT "+movementColumns+movementFrom+" WHERE m.id = $1"+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory movement: %w", err)
	}
	return m, nil
}

func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la fila del movimiento para que se concilie una sola vez.
func (r *InventoryMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	return r.get(ctx, id, " FOR UPDATE OF m")
}

// Update persiste los campos editables y el estado/confirmación.
func (r *InventoryMovementRepo) Update(ctx context.Context, m *entity.InventoryMovement) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_movements SET quantity = $2, unit_cost = $3, total_cost = $4, reference_doc = $5,
			adjustment_reason = $6, notes = $7, status = $8, confirmed_by = $9, confirmed_at = $10, updated_at = $11
		WHERE id = $1`,
		m.ID, m.Quantity, m.UnitCost, m.TotalCost, m.ReferenceDoc,
		m.AdjustmentReason, m.Notes, m.Status, m.ConfirmedBy, m.ConfirmedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory movement: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

// List listado filtrado; To ya llega ajustado al fin del día.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	w := &where{}
	w.search(f.Search, "COALESCE(p.sku, '')", "COALESCE(p.name, '')", "m.reference_doc", "m.serial", "COALESCE(l.code, '')")
	if f.Type != "" {
		w.and("m.type = " + w.arg(f.Type))
	}
	if f.Status != "" {
		w.and("m.status = " + w.arg(f.Status))
	}
	if f.WarehouseID != "" {
		p := w.arg(f.WarehouseID)
		w.and("(m.source_warehouse_id = " + p + " OR m.dest_warehouse_id = " + p + ")")
	}
	if f.ProductID != "" {
		w.and("m.product_id = " + w.arg(f.ProductID))
	}
	if f.From != nil {
		w.and("m.moved_at >= " + w.arg(*f.From))
	}
	if f.To != nil {
		w.and("m.moved_at <= " + w.arg(*f.To))
	}

	total, err := count(ctx, r.q, movementFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count inventory movements: %w", err)
	}
	query := "SELECT " + movementColumns + movementFrom + w.sql() +
		orderBy(movementSortColumns, f.Sort, "m.moved_at DESC, m.created_at DESC", "m.id") + w.window(f.Page)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.InventoryMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Stats contadores del encabezado: total, hoy, pendientes, ingresos y salidas confirmados del mes.
func (r *InventoryMovementRepo) Stats(ctx context.Context, now time.Time) (repository.MovementStats, error) {
	y, mo, d := now.Date()
	dayStart := time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
	monthStart := time.Date(y, mo, 1, 0, 0, 0, 0, now.Location())

	var st repository.MovementStats
	err := r.q.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE moved_at >= $1 AND moved_at < $2),
			count(*) FILTER (WHERE status = 'PENDIENTE'),
			count(*) FILTER (WHERE status = 'CONFIRMADO' AND type = 'INGRESO' AND moved_at >= $3 AND moved_at < $4),
			count(*) FILTER (WHERE status = 'CONFIRMADO' AND type = 'SALIDA' AND moved_at >= $3 AND moved_at < $4)
		FROM inventory_movements`,
		dayStart, dayStart.AddDate(0, 0, 1), monthStart, monthStart.AddDate(0, 1, 0),
	).Scan(&st.Total, &st.Today, &st.Pending, &st.MonthIngress, &st.MonthEgress)
	if err != nil {
		return st, fmt.Errorf("inventory movement stats: %w", err)
	}
	return st, nil
}
