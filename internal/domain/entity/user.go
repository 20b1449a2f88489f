package entity

import (
	"strings"
	"time"

	"github.com/dulcerialilis/lilis-api/internal/domain/access"
)

// Estados de usuario.
const (
	UserStatusActive   = "ACTIVO"
	UserStatusBlocked  = "BLOQUEADO"
	UserStatusInactive = "INACTIVO"
)

// Role rol con su mapa de permisos por módulo.
type Role struct {
	ID          string
	Name        string // ADMIN, VENDEDOR, BODEGUERO, FINANZAS, JEFE_VENTAS
	Description string
	Permissions access.PermissionMap
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User representa un usuario del sistema con su perfil.
type User struct {
	ID           string
	Username     string // único
	Email        string // único
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName    string
	LastName     string
	Phone        string
	Area         string
	PhotoURL     string
	RoleID       *string
	Status       string
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Solo lectura (JOIN).
	RoleName string
}

// FullName nombre para listados; username si no hay nombre.
func (u *User) FullName() string {
	n := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if n == "" {
		return u.Username
	}
	return n
}

// Session sesión de acceso; su ID viaja en el JWT (claim sid).
type Session struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// PasswordResetToken token de un solo uso para restablecer contraseña.
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable token sin usar y sin expirar.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
