package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain"
)

// CatalogHandler categorías, marcas, unidades de medida y lotes.
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) create(c *fiber.Ctx, fn func(*fiber.Ctx, dto.NamedRequest) (*dto.NamedResponse, error)) error {
	var in dto.NamedRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := fn(c, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// statusActive traduce ACTIVO/INACTIVO del body a booleano.
func statusActive(c *fiber.Ctx) (bool, error) {
	var in dto.StatusRequest
	if err := parseBody(c, &in); err != nil {
		return false, err
	}
	switch in.Status {
	case "ACTIVO":
		return true, nil
	case "INACTIVO":
		return false, nil
	}
	return false, domain.Invalid("status", "debe ser ACTIVO o INACTIVO")
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NamedRequest  true  "name, description"
// @Success      201   {object}  dto.NamedResponse
// @Router       /api/categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	return h.create(c, func(c *fiber.Ctx, in dto.NamedRequest) (*dto.NamedResponse, error) {
		return h.uc.CreateCategory(c.UserContext(), in)
	})
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        activos  query  bool  false  "Solo activas"  default(true)
// @Success      200  {array}  dto.NamedResponse
// @Router       /api/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.uc.ListCategories(c.UserContext(), activeOnly(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetCategoryStatus godoc
// @Summary      Activar o desactivar categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Param        id    path  string             true  "ID de la categoría"
// @Param        body  body  dto.StatusRequest  true  "ACTIVO | INACTIVO"
// @Success      204
// @Router       /api/categories/{id}/status [patch]
func (h *CatalogHandler) SetCategoryStatus(c *fiber.Ctx) error {
	active, err := statusActive(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.SetCategoryActive(c.UserContext(), c.Params("id"), active); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateBrand godoc
// @Summary      Crear marca
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NamedRequest  true  "name, description"
// @Success      201   {object}  dto.NamedResponse
// @Router       /api/brands [post]
func (h *CatalogHandler) CreateBrand(c *fiber.Ctx) error {
	return h.create(c, func(c *fiber.Ctx, in dto.NamedRequest) (*dto.NamedResponse, error) {
		return h.uc.CreateBrand(c.UserContext(), in)
	})
}

// ListBrands godoc
// @Summary      Listar marcas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NamedResponse
// @Router       /api/brands [get]
func (h *CatalogHandler) ListBrands(c *fiber.Ctx) error {
	out, err := h.uc.ListBrands(c.UserContext(), activeOnly(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetBrandStatus godoc
// @Summary      Activar o desactivar marca
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Param        id    path  string             true  "ID de la marca"
// @Param        body  body  dto.StatusRequest  true  "ACTIVO | INACTIVO"
// @Success      204
// @Router       /api/brands/{id}/status [patch]
func (h *CatalogHandler) SetBrandStatus(c *fiber.Ctx) error {
	active, err := statusActive(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.SetBrandActive(c.UserContext(), c.Params("id"), active); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateUnit godoc
// @Summary      Crear unidad de medida
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UnitRequest  true  "code, name"
// @Success      201   {object}  dto.UnitResponse
// @Router       /api/units [post]
func (h *CatalogHandler) CreateUnit(c *fiber.Ctx) error {
	var in dto.UnitRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateUnit(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListUnits godoc
// @Summary      Listar unidades de medida
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UnitResponse
// @Router       /api/units [get]
func (h *CatalogHandler) ListUnits(c *fiber.Ctx) error {
	out, err := h.uc.ListUnits(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateLot godoc
// @Summary      Registrar lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "Datos del lote"
// @Success      201   {object}  dto.LotResponse
// @Router       /api/lots [post]
func (h *CatalogHandler) CreateLot(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateLot(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListLots godoc
// @Summary      Listar lotes de un producto
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        producto  query  string  true  "ID del producto"
// @Success      200  {array}  dto.LotResponse
// @Router       /api/lots [get]
func (h *CatalogHandler) ListLots(c *fiber.Ctx) error {
	productID := c.Query("producto")
	if productID == "" {
		return writeError(c, domain.Invalid("producto", "es requerido"))
	}
	out, err := h.uc.ListLots(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
