// Package purchasing casos de uso de órdenes de compra: armado, aprobación y recepción.
package purchasing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	dompurchasing "github.com/dulcerialilis/lilis-api/internal/domain/purchasing"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// OrderListOptions reglas del listado de órdenes.
var OrderListOptions = listing.Options{
	PerPageAllowed: []int{10, 20, 50},
	PerPageDefault: 20,
}

var hundred = decimal.NewFromInt(100)

// OrderDeps dependencias del caso de uso de órdenes.
type OrderDeps struct {
	Tx          inventory.TxRunner
	Orders      repository.PurchaseOrderRepository
	Suppliers   repository.SupplierRepository
	Products    repository.ProductRepository
	Warehouses  repository.WarehouseRepository
	Lots        repository.LotRepository
	Movements   *inventory.MovementUseCase
	PDF         ports.OrderPDFRenderer
	CompanyName string
	Log         *logger.Logger
}

// OrderUseCase arma, aprueba y recibe órdenes de compra. Los totales se recalculan
// en la misma transacción que modifica las líneas.
type OrderUseCase struct {
	tx          inventory.TxRunner
	orders      repository.PurchaseOrderRepository
	suppliers   repository.SupplierRepository
	products    repository.ProductRepository
	warehouses  repository.WarehouseRepository
	lots        repository.LotRepository
	movements   *inventory.MovementUseCase
	pdf         ports.OrderPDFRenderer
	companyName string
	log         *logger.Logger
	now         func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(d OrderDeps) *OrderUseCase {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		tx:          d.Tx,
		orders:      d.Orders,
		suppliers:   d.Suppliers,
		products:    d.Products,
		warehouses:  d.Warehouses,
		lots:        d.Lots,
		movements:   d.Movements,
		pdf:         d.PDF,
		companyName: d.CompanyName,
		log:         log.Component("purchasing"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *OrderUseCase) WithClock(now func() time.Time) *OrderUseCase {
	uc.now = now
	return uc
}

// NewOrderNumber genera OC-YYYYMMDD-XXXXXX.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return "OC-" + at.Format("20060102") + "-" + suffix
}

// Create crea una orden en BORRADOR. El proveedor debe existir y estar ACTIVO.
func (uc *OrderUseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	sup, err := uc.suppliers.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, in.SupplierID)
	}
	if !sup.IsActive() {
		return nil, domain.Invalid("supplier_id", "el proveedor está "+sup.Status)
	}
	whID := dto.OptionalID(in.WarehouseID)
	if whID != nil {
		wh, err := uc.warehouses.GetByID(ctx, *whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, *whID)
		}
	}

	now := uc.now()
	orderDate := now
	if s := strings.TrimSpace(in.OrderDate); s != "" {
		d, err := time.ParseInLocation(dto.DateLayout, s, now.Location())
		if err != nil {
			return nil, domain.Invalid("order_date", "formato esperado YYYY-MM-DD")
		}
		orderDate = d
	}
	var expected *time.Time
	if s := strings.TrimSpace(in.ExpectedDate); s != "" {
		d, err := time.ParseInLocation(dto.DateLayout, s, now.Location())
		if err != nil {
			return nil, domain.Invalid("expected_date", "formato esperado YYYY-MM-DD")
		}
		if d.Before(truncateDay(orderDate)) {
			return nil, domain.Invalid("expected_date", "no puede ser anterior a la fecha de la orden")
		}
		expected = &d
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		number = NewOrderNumber(now)
	}
	o := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		Number:       number,
		SupplierID:   sup.ID,
		WarehouseID:  whID,
		OrderDate:    orderDate,
		ExpectedDate: expected,
		Status:       entity.OrderStatusDraft,
		Notes:        in.Notes,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, l := range in.Lines {
		line, err := uc.buildLine(ctx, o.ID, l)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("lines[%d].%s", i, ve.Field)
			}
			return nil, err
		}
		line.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		o.Lines = append(o.Lines, *line)
	}
	dompurchasing.Apply(o)

	err = uc.tx.Run(ctx, func(tx repository.Tx) error {
		return tx.Orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", o.ID).Str("number", o.Number).Int("lines", len(o.Lines)).Msg("orden de compra creada")
	return uc.Get(ctx, o.ID)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// buildLine valida una línea y toma el IVA vigente del producto.
func (uc *OrderUseCase) buildLine(ctx context.Context, orderID string, in dto.OrderLineRequest) (*entity.PurchaseOrderLine, error) {
	if !in.RequestedQty.IsPositive() {
		return nil, domain.Invalid("requested_qty", "debe ser mayor a cero")
	}
	if in.UnitPrice.IsNegative() {
		return nil, domain.Invalid("unit_price", "no puede ser negativo")
	}
	discount := decimal.Zero
	if in.DiscountPct != nil {
		discount = *in.DiscountPct
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return nil, domain.Invalid("discount_pct", "debe estar entre 0 y 100")
	}
	p, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if !p.IsActive() {
		return nil, domain.Invalid("product_id", fmt.Sprintf("el producto %s no está activo", p.SKU))
	}
	return &entity.PurchaseOrderLine{
		ID:           uuid.New().String(),
		OrderID:      orderID,
		ProductID:    p.ID,
		RequestedQty: in.RequestedQty,
		UnitPrice:    in.UnitPrice,
		DiscountPct:  discount,
		TaxRate:      p.TaxRate,
		Subtotal:     dompurchasing.LineSubtotal(in.RequestedQty, in.UnitPrice, discount),
		ProductSKU:   p.SKU,
		ProductName:  p.Name,
	}, nil
}

// lockEditable bloquea la orden y verifica que sus líneas aún se puedan modificar.
func lockEditable(ctx context.Context, tx repository.Tx, id string) (*entity.PurchaseOrder, error) {
	o, err := tx.Orders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if !o.LinesEditable() {
		return nil, domain.StateConflict("la orden está %s y sus líneas no se pueden modificar", o.Status)
	}
	return o, nil
}

// saveTotals recalcula y persiste los totales de la cabecera.
func (uc *OrderUseCase) saveTotals(ctx context.Context, tx repository.Tx, o *entity.PurchaseOrder) error {
	dompurchasing.Apply(o)
	o.UpdatedAt = uc.now()
	return tx.Orders.Update(ctx, o)
}

// AddLine agrega una línea y recalcula los totales en la misma transacción.
func (uc *OrderUseCase) AddLine(ctx context.Context, orderID string, in dto.OrderLineRequest) (*dto.OrderResponse, error) {
	line, err := uc.buildLine(ctx, orderID, in)
	if err != nil {
		return nil, err
	}
	line.CreatedAt = uc.now()
	err = uc.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := lockEditable(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := tx.Orders.AddLine(ctx, line); err != nil {
			return err
		}
		o.Lines = append(o.Lines, *line)
		return uc.saveTotals(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, orderID)
}

// UpdateLine reemplaza producto, cantidad, precio y descuento de una línea.
func (uc *OrderUseCase) UpdateLine(ctx context.Context, orderID, lineID string, in dto.OrderLineRequest) (*dto.OrderResponse, error) {
	built, err := uc.buildLine(ctx, orderID, in)
	if err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := lockEditable(ctx, tx, orderID)
		if err != nil {
			return err
		}
		idx := findLine(o, lineID)
		if idx < 0 {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
		}
		cur := &o.Lines[idx]
		cur.ProductID = built.ProductID
		cur.RequestedQty = built.RequestedQty
		cur.UnitPrice = built.UnitPrice
		cur.DiscountPct = built.DiscountPct
		cur.TaxRate = built.TaxRate
		cur.Subtotal = built.Subtotal
		if err := tx.Orders.UpdateLine(ctx, cur); err != nil {
			return err
		}
		return uc.saveTotals(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, orderID)
}

// RemoveLine elimina una línea y recalcula los totales.
func (uc *OrderUseCase) RemoveLine(ctx context.Context, orderID, lineID string) (*dto.OrderResponse, error) {
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := lockEditable(ctx, tx, orderID)
		if err != nil {
			return err
		}
		idx := findLine(o, lineID)
		if idx < 0 {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
		}
		if err := tx.Orders.DeleteLine(ctx, orderID, lineID); err != nil {
			return err
		}
		o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
		return uc.saveTotals(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, orderID)
}

func findLine(o *entity.PurchaseOrder, lineID string) int {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// ChangeStatus aplica la tabla de transiciones. Las recepciones cambian el estado vía Receive.
func (uc *OrderUseCase) ChangeStatus(ctx context.Context, orderID, userID, status string) (*dto.OrderResponse, error) {
	if status == entity.OrderStatusPartiallyReceived || status == entity.OrderStatusFullyReceived {
		return nil, domain.Invalid("status", "el estado de recepción lo asigna la recepción de mercadería")
	}
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := tx.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if err := entity.CheckOrderTransition(o.Status, status); err != nil {
			return err
		}
		if (status == entity.OrderStatusSent || status == entity.OrderStatusConfirmed) && len(o.Lines) == 0 {
			return domain.StateConflict("la orden %s no tiene líneas", o.Number)
		}
		now := uc.now()
		if status == entity.OrderStatusConfirmed {
			o.AuthorizedBy = &userID
			o.AuthorizedAt = &now
		}
		prev := o.Status
		o.Status = status
		o.UpdatedAt = now
		if err := tx.Orders.Update(ctx, o); err != nil {
			return err
		}
		uc.log.Info().Str("order_id", o.ID).Str("from", prev).Str("to", status).Str("user_id", userID).Msg("estado de orden actualizado")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, orderID)
}

// Receive registra la mercadería recibida: por cada línea suma la cantidad recibida y genera
// un INGRESO CONFIRMADO vinculado a la orden, todo en una transacción.
func (uc *OrderUseCase) Receive(ctx context.Context, orderID, userID string, in dto.ReceiveOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "debe indicar al menos una línea")
	}
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := tx.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.CanReceive() {
			return domain.StateConflict("la orden está %s y no puede recibirse", o.Status)
		}
		whID := dto.OptionalID(in.WarehouseID)
		if whID == nil {
			whID = o.WarehouseID
		}
		if whID == nil {
			return domain.Invalid("warehouse_id", "indique la bodega de recepción")
		}
		wh, err := uc.warehouses.GetByID(ctx, *whID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, *whID)
		}

		for i, r := range in.Lines {
			field := fmt.Sprintf("lines[%d]", i)
			idx := findLine(o, r.LineID)
			if idx < 0 {
				return fmt.Errorf("%w: línea %s", domain.ErrNotFound, r.LineID)
			}
			line := &o.Lines[idx]
			if !r.Quantity.IsPositive() {
				return domain.Invalid(field+".quantity", "debe ser mayor a cero")
			}
			if r.Quantity.GreaterThan(line.Pending()) {
				return domain.Invalid(field+".quantity", fmt.Sprintf("excede lo pendiente (%s)", line.Pending()))
			}
			p, err := uc.products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
			}
			lotID := dto.OptionalID(r.LotID)
			if p.LotControl && lotID == nil {
				return domain.Invalid(field+".lot_id", "el producto requiere control de lote")
			}
			if lotID != nil {
				lot, err := uc.lots.GetByID(ctx, *lotID)
				if err != nil {
					return err
				}
				if lot == nil || lot.ProductID != p.ID {
					return fmt.Errorf("%w: lote %s", domain.ErrNotFound, *lotID)
				}
				if lot.WarehouseID != *whID {
					return domain.Invalid(field+".lot_id", "el lote pertenece a otra bodega")
				}
			}

			unitCost := line.UnitPrice.Mul(decimal.NewFromInt(1).Sub(line.DiscountPct.Div(hundred))).Round(4)
			parentID := o.ID
			m := &entity.InventoryMovement{
				Type:            entity.MovementTypeIngress,
				ProductID:       p.ID,
				Quantity:        r.Quantity,
				UnitID:          p.PurchaseUnitID,
				DestWarehouseID: whID,
				SupplierID:      &o.SupplierID,
				LotID:           lotID,
				UnitCost:        decimal.NewNullDecimal(unitCost),
				ReferenceDoc:    o.Number,
				Notes:           "Recepción de " + o.Number,
				ParentDocType:   entity.ParentDocPurchaseOrder,
				ParentDocID:     &parentID,
			}
			if err := uc.movements.RecordConfirmedInTx(ctx, tx, m, userID); err != nil {
				return err
			}
			line.ReceivedQty = line.ReceivedQty.Add(r.Quantity)
			if err := tx.Orders.UpdateLine(ctx, line); err != nil {
				return err
			}
		}

		next := dompurchasing.ReceivedStatus(o.Lines)
		if next != o.Status {
			if err := entity.CheckOrderTransition(o.Status, next); err != nil {
				return err
			}
			o.Status = next
		}
		o.UpdatedAt = uc.now()
		if err := tx.Orders.Update(ctx, o); err != nil {
			return err
		}
		uc.log.Info().Str("order_id", o.ID).Str("status", o.Status).Int("lines", len(in.Lines)).Msg("recepción registrada")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, orderID)
}

// Get obtiene una orden con sus líneas.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	out := ToOrderResponse(o)
	return &out, nil
}

// List listado paginado (sin líneas).
func (uc *OrderUseCase) List(ctx context.Context, q listing.Query, f dto.OrderFilterRequest) (listing.Result[dto.OrderResponse], error) {
	p := listing.Parse(q, OrderListOptions)
	from, to, err := dto.ParseDateRange(f.DateFrom, f.DateTo, nil)
	if err != nil {
		return listing.Result[dto.OrderResponse]{}, fmt.Errorf("%w: %s", domain.ErrBadRequest, err.Error())
	}
	filter := repository.OrderFilter{
		Search:     p.Search,
		SupplierID: strings.TrimSpace(f.SupplierID),
		From:       from,
		To:         to,
		Page:       p.Window(),
	}
	if entity.IsOrderStatus(f.Status) {
		filter.Status = f.Status
	}
	items, total, err := uc.orders.List(ctx, filter)
	if err != nil {
		return listing.Result[dto.OrderResponse]{}, err
	}
	out := make([]dto.OrderResponse, 0, len(items))
	for _, o := range items {
		out = append(out, ToOrderResponse(o))
	}
	return listing.NewResult(out, total, p), nil
}

// PDF documento imprimible de la orden. Devuelve el contenido y el nombre de archivo.
func (uc *OrderUseCase) PDF(ctx context.Context, id string) ([]byte, string, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if o == nil {
		return nil, "", domain.ErrNotFound
	}
	sup, err := uc.suppliers.GetByID(ctx, o.SupplierID)
	if err != nil {
		return nil, "", err
	}
	if sup == nil {
		return nil, "", fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, o.SupplierID)
	}
	data, err := uc.pdf.Render(o, sup, uc.companyName)
	if err != nil {
		return nil, "", fmt.Errorf("pdf orden %s: %w", o.Number, err)
	}
	return data, o.Number + ".pdf", nil
}

// ToOrderResponse convierte la entidad en DTO.
func ToOrderResponse(o *entity.PurchaseOrder) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:            o.ID,
		Number:        o.Number,
		SupplierID:    o.SupplierID,
		SupplierName:  o.SupplierName,
		WarehouseID:   o.WarehouseID,
		WarehouseName: o.WarehouseName,
		OrderDate:     o.OrderDate,
		ExpectedDate:  o.ExpectedDate,
		Status:        o.Status,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Total:         o.Total,
		Notes:         o.Notes,
		CreatedBy:     o.CreatedBy,
		AuthorizedBy:  o.AuthorizedBy,
		AuthorizedAt:  o.AuthorizedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductSKU:   l.ProductSKU,
			ProductName:  l.ProductName,
			RequestedQty: l.RequestedQty,
			ReceivedQty:  l.ReceivedQty,
			UnitPrice:    l.UnitPrice,
			DiscountPct:  l.DiscountPct,
			TaxRate:      l.TaxRate,
			Subtotal:     l.Subtotal,
		})
	}
	return out
}
