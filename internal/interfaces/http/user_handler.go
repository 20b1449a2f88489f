package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
)

// UserHandler maneja usuarios y roles.
type UserHandler struct {
	uc    *usecase.UserUseCase
	roles *usecase.RoleUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, roles *usecase.RoleUseCase) *UserHandler {
	return &UserHandler{uc: uc, roles: roles}
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        search    query  string  false  "Texto libre (username, nombre, email)"
// @Param        rol       query  string  false  "Nombre del rol"
// @Param        estado    query  string  false  "ACTIVO | INACTIVO | BLOQUEADO"
// @Param        page      query  int     false  "Página"  default(1)
// @Param        per_page  query  int     false  "5 | 25 | 50 | 100"  default(25)
// @Param        sort      query  string  false  "Campo de orden"
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var f dto.UserFilterRequest
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

// Update godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado del usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del usuario"
// @Param        body  body  dto.StatusRequest  true  "ACTIVO | INACTIVO | BLOQUEADO"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/status [patch]
func (h *UserHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar usuario
// @Description  Baja lógica: el usuario queda INACTIVO.
// @Tags         users
// @Security     Bearer
// @Success      204
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadPhoto godoc
// @Summary      Subir foto de perfil
// @Tags         users
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "ID del usuario"
// @Param        photo  formData  file    true  "JPEG, PNG o WEBP (máx. 5 MB)"
// @Success      200    {object}  dto.UserResponse
// @Router       /api/users/{id}/photo [post]
func (h *UserHandler) UploadPhoto(c *fiber.Ctx) error {
	up, closeFn, err := formUpload(c, "photo")
	if err != nil {
		return writeError(c, err)
	}
	defer closeFn()
	out, err := h.uc.UploadPhoto(c.UserContext(), c.Params("id"), up)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar usuarios a Excel
// @Tags         users
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router       /api/users/export [get]
func (h *UserHandler) Export(c *fiber.Ctx) error {
	var f dto.UserFilterRequest
	q, err := listQuery(c, &f)
	if err != nil {
		return writeError(c, err)
	}
	data, filename, err := h.uc.Export(c.UserContext(), q, f)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, data, filename, xlsxContentType)
}

// ListRoles godoc
// @Summary      Listar roles con sus permisos
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/roles [get]
func (h *UserHandler) ListRoles(c *fiber.Ctx) error {
	out, err := h.roles.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateRolePermissions godoc
// @Summary      Reemplazar el mapa de permisos de un rol
// @Tags         roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del rol"
// @Param        body  body  dto.UpdatePermissionsRequest  true  "{\"permissions\":{\"productos\":{\"ver\":true}}}"
// @Success      200   {object}  dto.RoleResponse
// @Router       /api/roles/{id}/permissions [put]
func (h *UserHandler) UpdateRolePermissions(c *fiber.Ctx) error {
	var in dto.UpdatePermissionsRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.roles.UpdatePermissions(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
