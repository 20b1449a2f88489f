package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/dulcerialilis/lilis-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los indicadores del inventario y los movimientos del día y del mes.
// GET /api/dashboard
//
// Respuesta: DashboardSummaryDTO (active_products, low_stock_products, active_alerts,
// open_orders, inventory_value, today_movements, month_movements, date_label).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
