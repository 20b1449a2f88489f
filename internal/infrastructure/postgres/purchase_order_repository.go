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

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra y sus líneas sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const orderColumns = `
	o.id, o.number, o.supplier_id, o.warehouse_id, o.order_date, o.expected_date, o.status,
	o.subtotal, o.tax, o.total, o.notes, o.created_by, o.authorized_by, o.authorized_at,
	o.created_at, o.updated_at, COALESCE(s.legal_name, ''), COALESCE(s.rut_nif, ''), COALESCE(w.name, '')`

const orderFrom = `
	FROM purchase_orders o
	LEFT JOIN suppliers s ON s.id = o.supplier_id
	LEFT JOIN warehouses w ON w.id = o.warehouse_id`

func scanOrder(row rowScanner) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := row.Scan(
		&o.ID, &o.Number, &o.SupplierID, &o.WarehouseID, &o.OrderDate, &o.ExpectedDate, &o.Status,
		&o.Subtotal, &o.Tax, &o.Total, &o.Notes, &o.CreatedBy, &o.AuthorizedBy, &o.AuthorizedAt,
		&o.CreatedAt, &o.UpdatedAt, &o.SupplierName, &o.SupplierRut, &o.WarehouseName,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta la cabecera y sus líneas. Llamar dentro de una tx si hay líneas.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, number, supplier_id, warehouse_id, order_date, expected_date, status,
			subtotal, tax, total, notes, created_by, authorized_by, authorized_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.ID, o.Number, o.SupplierID, o.WarehouseID, o.OrderDate, o.ExpectedDate, o.Status,
		o.Subtotal, o.Tax, o.Total, o.Notes, o.CreatedBy, o.AuthorizedBy, o.AuthorizedAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
		if err := r.AddLine(ctx, &o.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id, suffix string) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, "SELECT "+orderColumns+orderFrom+" WHERE o.id = $1"+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	lines, err := r.lines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, "")
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, " FOR UPDATE OF o")
}

func (r *PurchaseOrderRepo) lines(ctx context.Context, orderID string) ([]entity.PurchaseOrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.order_id, l.product_id, l.requested_qty, l.received_qty, l.unit_price, l.discount_pct,
			l.tax_rate, l.subtotal, l.created_at, COALESCE(p.sku, ''), COALESCE(p.name, '')
		FROM purchase_order_lines l
		LEFT JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.created_at, l.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	lines := []entity.PurchaseOrderLine{}
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.RequestedQty, &l.ReceivedQty, &l.UnitPrice,
			&l.DiscountPct, &l.TaxRate, &l.Subtotal, &l.CreatedAt, &l.ProductSKU, &l.ProductName); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Update persiste la cabecera; número y fecha de creación no cambian.
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET supplier_id = $2, warehouse_id = $3, order_date = $4, expected_date = $5,
			status = $6, subtotal = $7, tax = $8, total = $9, notes = $10, authorized_by = $11,
			authorized_at = $12, updated_at = $13
		WHERE id = $1`,
		o.ID, o.SupplierID, o.WarehouseID, o.OrderDate, o.ExpectedDate,
		o.Status, o.Subtotal, o.Tax, o.Total, o.Notes, o.AuthorizedBy,
		o.AuthorizedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

// List sin líneas; las trae GetByID.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.PurchaseOrder, int, error) {
	w := &where{}
	w.search(f.Search, "o.number", "COALESCE(s.legal_name, '')", "COALESCE(s.rut_nif, '')")
	if f.Status != "" {
		w.and("o.status = " + w.arg(f.Status))
	}
	if f.SupplierID != "" {
		w.and("o.supplier_id = " + w.arg(f.SupplierID))
	}
	if f.From != nil {
		w.and("o.order_date >= " + w.arg(*f.From))
	}
	if f.To != nil {
		w.and("o.order_date <= " + w.arg(*f.To))
	}
	total, err := count(ctx, r.q, orderFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}
	rows, err := r.q.Query(ctx,
		"SELECT "+orderColumns+orderFrom+w.sql()+" ORDER BY o.order_date DESC, o.created_at DESC, o.id"+w.window(f.Page),
		w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	list := []*entity.PurchaseOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

func (r *PurchaseOrderRepo) AddLine(ctx context.Context, l *entity.PurchaseOrderLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_order_lines (id, order_id, product_id, requested_qty, received_qty, unit_price,
			discount_pct, tax_rate, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.OrderID, l.ProductID, l.RequestedQty, l.ReceivedQty, l.UnitPrice,
		l.DiscountPct, l.TaxRate, l.Subtotal, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase order line: %w", err)
	}
	return nil
}

// UpdateLine la línea debe pertenecer a la orden indicada.
func (r *PurchaseOrderRepo) UpdateLine(ctx context.Context, l *entity.PurchaseOrderLine) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET requested_qty = $3, received_qty = $4, unit_price = $5,
			discount_pct = $6, tax_rate = $7, subtotal = $8
		WHERE id = $1 AND order_id = $2`,
		l.ID, l.OrderID, l.RequestedQty, l.ReceivedQty, l.UnitPrice, l.DiscountPct, l.TaxRate, l.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("update purchase order line: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *PurchaseOrderRepo) DeleteLine(ctx context.Context, orderID, lineID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_order_lines WHERE id = $1 AND order_id = $2`, lineID, orderID)
	if err != nil {
		return fmt.Errorf("delete purchase order line: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}
