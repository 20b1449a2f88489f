package dto

import (
	"encoding/json"
	"time"

	"github.com/dulcerialilis/lilis-api/internal/domain/access"
)

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Phone     string `json:"phone" validate:"max=30"`
	Area      string `json:"area" validate:"max=100"`
	RoleID    string `json:"role_id" validate:"required"`
}

// UpdateUserRequest entrada para actualizar perfil y rol.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Area      *string `json:"area" validate:"omitempty,max=100"`
	RoleID    *string `json:"role_id"`
}

// UserFilterRequest filtros específicos del listado de usuarios.
type UserFilterRequest struct {
	RoleID string `query:"rol"`
	Status string `query:"estado"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone,omitempty"`
	Area        string     `json:"area,omitempty"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	RoleID      *string    `json:"role_id"`
	RoleName    string     `json:"role_name,omitempty"`
	Status      string     `json:"status"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RoleResponse salida de un rol con su mapa completo de permisos.
type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Permissions access.PermissionMap `json:"permissions"`
}

// UpdatePermissionsRequest mapa de permisos tal como se guarda ({"productos":{"ver":true}}).
type UpdatePermissionsRequest struct {
	Permissions json.RawMessage `json:"permissions" validate:"required"`
}

// LoginRequest acepta username o email en el mismo campo.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// PasswordResetRequest solicitud de restablecimiento.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest confirmación con token y nueva contraseña.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// PermissionsResponse permisos efectivos del usuario autenticado.
type PermissionsResponse struct {
	UserID      string               `json:"user_id"`
	Role        string               `json:"role,omitempty"`
	Superuser   bool                 `json:"superuser"`
	Permissions access.PermissionMap `json:"permissions"`
}
