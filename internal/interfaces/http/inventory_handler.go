package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
)

// InventoryHandler movimientos, existencias y reposición.
type InventoryHandler struct {
	movements     *inventory.MovementUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements, replenishment: replenishment}
}

// CreateMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  INGRESO, SALIDA, TRANSFERENCIA, AJUSTE o DEVOLUCION. Con status CONFIRMADO se aplica al stock en la misma transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.movements.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.movements.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateMovement godoc
// @Summary      Editar movimiento pendiente
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [put]
func (h *InventoryHandler) UpdateMovement(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.movements.Update(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ConfirmMovement godoc
// @Summary      Confirmar movimiento (aplica al stock)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/confirm [post]
func (h *InventoryHandler) ConfirmMovement(c *fiber.Ctx) error {
	out, err := h.movements.Confirm(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CancelMovement godoc
// @Summary      Anular movimiento
// @Description  Si estaba confirmado se revierte su efecto en el stock.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Router       /api/inventory/movements/{id}/cancel [post]
func (h *InventoryHandler) CancelMovement(c *fiber.Ctx) error {
	out, err := h.movements.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        search       query  string  false  "Producto, documento de referencia, lote o serie"
// @Param        tipo         query  string  false  "Tipo de movimiento"
// @Param        estado       query  string  false  "PENDIENTE | CONFIRMADO | ANULADO"
// @Param        bodega       query  string  false  "ID de bodega (origen o destino)"
// @Param        producto     query  string  false  "ID de producto"
// @Param        fecha_desde  query  string  false  "AAAA-MM-DD"
// @Param        fecha_hasta  query  string  false  "AAAA-MM-DD"
// @Param        page         query  int     false  "Página"  default(1)
// @Param        per_page     query  int     false  "Por página"  default(25)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var f dto.MovementFilterRequest
	q, err := listQuery(c, &f)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.movements.List(c.UserContext(), q, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportMovements godoc
// @Summary      Exportar movimientos a Excel
// @Tags         inventory
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router       /api/inventory/movements/export [get]
func (h *InventoryHandler) ExportMovements(c *fiber.Ctx) error {
	var f dto.MovementFilterRequest
	q, err := listQuery(c, &f)
	if err != nil {
		return writeError(c, err)
	}
	data, filename, err := h.movements.Export(c.UserContext(), q, f)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, data, filename, xlsxContentType)
}

// Stock godoc
// @Summary      Existencias por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        producto  query  string  false  "ID de producto"
// @Param        bodega    query  string  false  "ID de bodega"
// @Success      200  {array}  dto.WarehouseStockResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	out, err := h.movements.Stock(c.UserContext(), c.Query("producto"), c.Query("bodega"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Sugerencias de reposición
// @Description  Productos con stock bajo el mínimo y la cantidad sugerida para volver al máximo.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.replenishment.Suggest(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
