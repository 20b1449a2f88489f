package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
)

// AlertHandler alertas de stock y vencimiento.
type AlertHandler struct {
	uc *inventory.AlertUseCase
}

func NewAlertHandler(uc *inventory.AlertUseCase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// List godoc
// @Summary      Listar alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        estado    query  string  false  "ACTIVA | RESUELTA"
// @Param        tipo      query  string  false  "Tipo de alerta"
// @Param        producto  query  string  false  "ID de producto"
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var f dto.AlertFilterRequest
	q, err := listQuery(c, &f)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), q, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Resolver alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la alerta"
// @Success      200  {object}  dto.AlertResponse
// @Router       /api/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	out, err := h.uc.Resolve(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Scan godoc
// @Summary      Revisar vencimiento de lotes
// @Description  Marca lotes vencidos y genera alertas de vencimiento próximo.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExpiryScanResponse
// @Router       /api/alerts/scan [post]
func (h *AlertHandler) Scan(c *fiber.Ctx) error {
	out, err := h.uc.ScanLotExpiry(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
