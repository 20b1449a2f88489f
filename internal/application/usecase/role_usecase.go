package usecase

import (
	"context"
	"sort"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// RoleUseCase consulta de roles y edición de su mapa de permisos.
type RoleUseCase struct {
	repo repository.RoleRepository
	log  *logger.Logger
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(repo repository.RoleRepository, log *logger.Logger) *RoleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RoleUseCase{repo: repo, log: log.Component("roles")}
}

// List roles ordenados por nombre con su mapa completo.
func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out, nil
}

// Get un rol.
func (uc *RoleUseCase) Get(ctx context.Context, id string) (*dto.RoleResponse, error) {
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	out := toRoleResponse(r)
	return &out, nil
}

// UpdatePermissions valida el JSON recibido y reemplaza el mapa del rol.
func (uc *RoleUseCase) UpdatePermissions(ctx context.Context, id string, in dto.UpdatePermissionsRequest) (*dto.RoleResponse, error) {
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	perms, err := access.ParsePermissionMap(in.Permissions)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdatePermissions(ctx, id, perms); err != nil {
		return nil, err
	}
	uc.log.Info().Str("role", r.Name).Msg("permisos de rol actualizados")
	return uc.Get(ctx, id)
}

// toRoleResponse expone todos los módulos, con false donde el rol no tiene entrada.
func toRoleResponse(r *entity.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: access.EvaluateAll(access.Subject{Permissions: r.Permissions}),
	}
}
