package repository

import (
	"context"
	"time"

	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update perfil y rol; no toca contraseña, estado ni foto.
	Update(ctx context.Context, user *entity.User) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdatePhoto(ctx context.Context, id, url string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f UserFilter) ([]*entity.User, int, error)
}

// RoleRepository persistencia de roles.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	UpdatePermissions(ctx context.Context, id string, perms access.PermissionMap) error
	// Upsert crea o actualiza por nombre (seed).
	Upsert(ctx context.Context, r *entity.Role) error
}

// SessionRepository sesiones activas.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PasswordResetRepository tokens de restablecimiento.
type PasswordResetRepository interface {
	Create(ctx context.Context, t *entity.PasswordResetToken) error
	Get(ctx context.Context, token string) (*entity.PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string, at time.Time) error
}
