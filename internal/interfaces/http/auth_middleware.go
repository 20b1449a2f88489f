package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/pkg/jwt"
)

// Locals keys para la identidad del token en Fiber.
const (
	LocalUserID    = "user_id"
	LocalSessionID = "session_id"
	LocalRole      = "role"
)

// sessionChecker lo implementa *auth.AuthUseCase.
type sessionChecker interface {
	CheckSession(ctx context.Context, id jwt.Identity) error
}

// permissionChecker lo implementa *auth.Authorizer.
type permissionChecker interface {
	Require(ctx context.Context, userID string, mod access.Module, act access.Action) error
}

// AuthMiddleware valida el Bearer Token JWT, verifica que la sesión siga abierta
// y deja la identidad en c.Locals. sessions puede ser nil (solo firma).
func AuthMiddleware(jwtSecret string, sessions sessionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if sessions != nil {
			if err := sessions.CheckSession(c.UserContext(), id); err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "SESSION_CLOSED", Message: "la sesión fue cerrada o expiró"})
				}
				return writeError(c, err)
			}
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalSessionID, id.SessionID)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// RequirePermission verifica que el usuario autenticado tenga la acción en el módulo.
// Debe usarse DESPUÉS de AuthMiddleware.
//
//   - 401 si no hay usuario en el contexto.
//   - 403 si el rol no concede la acción (o el usuario no está activo).
//   - 503 si falla la consulta de permisos.
func RequirePermission(mod access.Module, act access.Action, checker permissionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no encontrado en el token"})
		}
		err := checker.Require(c.UserContext(), userID, mod, act)
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "no tiene permiso '" + string(act) + "' en el módulo '" + string(mod) + "'",
			})
		case errors.Is(err, domain.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario inexistente"})
		default:
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudieron verificar los permisos, intente más tarde",
			})
		}
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetSessionID devuelve el id de sesión del token.
func GetSessionID(c *fiber.Ctx) string { return localString(c, LocalSessionID) }

// GetRole devuelve el nombre del rol incluido en el token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }
