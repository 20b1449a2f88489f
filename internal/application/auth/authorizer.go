package auth

import (
	"context"
	"fmt"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// Authorizer es el único punto de la aplicación que decide si un usuario puede
// ejecutar una acción sobre un módulo.
type Authorizer struct {
	users repository.UserRepository
	roles repository.RoleRepository
}

// NewAuthorizer construye el autorizador.
func NewAuthorizer(users repository.UserRepository, roles repository.RoleRepository) *Authorizer {
	return &Authorizer{users: users, roles: roles}
}

// subject carga usuario y rol. Un usuario que no está ACTIVO no tiene permisos.
func (a *Authorizer) subject(ctx context.Context, userID string) (*entity.User, access.Subject, error) {
	if userID == "" {
		return nil, access.Subject{}, fmt.Errorf("authorizer: userID es obligatorio")
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, access.Subject{}, err
	}
	if user == nil {
		return nil, access.Subject{}, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return user, access.Subject{}, nil
	}
	s := access.Subject{Superuser: user.IsSuperuser}
	if user.RoleID != nil {
		role, err := a.roles.GetByID(ctx, *user.RoleID)
		if err != nil {
			return nil, access.Subject{}, err
		}
		if role != nil {
			s.Permissions = role.Permissions
		}
	}
	return user, s, nil
}

// Require devuelve ErrForbidden si el usuario no tiene la acción en el módulo.
func (a *Authorizer) Require(ctx context.Context, userID string, mod access.Module, act access.Action) error {
	_, s, err := a.subject(ctx, userID)
	if err != nil {
		return err
	}
	if !access.Can(s, mod, act) {
		return domain.Forbidden(string(mod), string(act))
	}
	return nil
}

// EffectivePermissions mapa completo de permisos efectivos del usuario.
func (a *Authorizer) EffectivePermissions(ctx context.Context, userID string) (*dto.PermissionsResponse, error) {
	user, s, err := a.subject(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.PermissionsResponse{
		UserID:      user.ID,
		Role:        user.RoleName,
		Superuser:   s.Superuser,
		Permissions: access.EvaluateAll(s),
	}, nil
}
