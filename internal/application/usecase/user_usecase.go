package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// MinPasswordLen largo mínimo de contraseña.
const MinPasswordLen = 8

// UserListOptions reglas del listado de usuarios.
var UserListOptions = listing.Options{
	PerPageAllowed: []int{10, 25, 50, 100},
	PerPageDefault: 25,
	SortFields:     []string{"username", "nombre", "email", "rol", "estado", "ultimo_acceso", "created_at"},
	DefaultSort:    "username",
}

// UserExportHeaders columnas del .xlsx de usuarios.
var UserExportHeaders = []string{
	"Usuario", "Nombre", "Apellido", "Email", "Teléfono", "Rol", "Área", "Estado", "Último Acceso",
}

// UserDeps dependencias del caso de uso de usuarios.
type UserDeps struct {
	Users    repository.UserRepository
	Roles    repository.RoleRepository
	Sessions repository.SessionRepository
	Storage  ports.ObjectStorage
	Sheets   ports.SpreadsheetWriter
	Log      *logger.Logger
}

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo     repository.UserRepository
	roles    repository.RoleRepository
	sessions repository.SessionRepository
	storage  ports.ObjectStorage
	sheets   ports.SpreadsheetWriter
	log      *logger.Logger
	now      func() time.Time
}

// NewUserUseCase construye el caso de uso con sus puertos.
func NewUserUseCase(d UserDeps) *UserUseCase {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{
		repo:     d.Users,
		roles:    d.Roles,
		sessions: d.Sessions,
		storage:  d.Storage,
		sheets:   d.Sheets,
		log:      log.Component("users"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UserUseCase) WithClock(now func() time.Time) *UserUseCase {
	uc.now = now
	return uc
}

// HashPassword bcrypt con el costo por defecto.
func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLen {
		return "", domain.Invalid("password", fmt.Sprintf("debe tener al menos %d caracteres", MinPasswordLen))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (uc *UserUseCase) requireRole(ctx context.Context, roleID string) (*entity.Role, error) {
	if strings.TrimSpace(roleID) == "" {
		return nil, domain.Invalid("role_id", "es obligatorio")
	}
	role, err := uc.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol %s", domain.ErrNotFound, roleID)
	}
	return role, nil
}

// Create crea un usuario ACTIVO. Username y email son únicos; el rol es obligatorio.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, domain.Invalid("username", "es obligatorio")
	}
	if email == "" {
		return nil, domain.Invalid("email", "es obligatorio")
	}
	if _, err := uc.requireRole(ctx, in.RoleID); err != nil {
		return nil, err
	}
	if existing, err := uc.repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if existing, err := uc.repo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: username %s", domain.ErrDuplicate, username)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	roleID := in.RoleID
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        in.Phone,
		Area:         in.Area,
		RoleID:       &roleID,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("username", username).Msg("usuario creado")
	return uc.Get(ctx, user.ID)
}

// Get obtiene un usuario por ID.
func (uc *UserUseCase) Get(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// Update perfil y rol.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, domain.Invalid("email", "es obligatorio")
		}
		if email != user.Email {
			other, err := uc.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, domain.ErrEmailAlreadyExists
			}
		}
		user.Email = email
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Area != nil {
		user.Area = *in.Area
	}
	if in.RoleID != nil {
		if _, err := uc.requireRole(ctx, *in.RoleID); err != nil {
			return nil, err
		}
		roleID := *in.RoleID
		user.RoleID = &roleID
	}
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// ChangeStatus aplica la tabla de transiciones. Un usuario que deja de estar ACTIVO
// pierde sus sesiones abiertas.
func (uc *UserUseCase) ChangeStatus(ctx context.Context, id, status string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := entity.CheckUserTransition(user.Status, status); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	if status != entity.UserStatusActive && uc.sessions != nil {
		if err := uc.sessions.DeleteByUser(ctx, id); err != nil {
			return nil, err
		}
	}
	uc.log.Info().Str("user_id", id).Str("from", user.Status).Str("to", status).Msg("estado de usuario actualizado")
	return uc.Get(ctx, id)
}

// Deactivate baja lógica (INACTIVO). Idempotente.
func (uc *UserUseCase) Deactivate(ctx context.Context, id string) error {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.Status == entity.UserStatusInactive {
		return nil
	}
	_, err = uc.ChangeStatus(ctx, id, entity.UserStatusInactive)
	return err
}

// UploadPhoto guarda la foto de perfil.
func (uc *UserUseCase) UploadPhoto(ctx context.Context, id string, up Upload) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	url, err := storeImage(ctx, uc.storage, "profiles", id, up)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdatePhoto(ctx, id, url); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

func (uc *UserUseCase) filter(p listing.Params, f dto.UserFilterRequest) repository.UserFilter {
	out := repository.UserFilter{
		Search: p.Search,
		RoleID: strings.TrimSpace(f.RoleID),
		Sort:   p.Sort,
		Page:   p.Window(),
	}
	if entity.IsUserStatus(f.Status) {
		out.Status = f.Status
	}
	return out
}

// List listado paginado con búsqueda por username, nombre y email.
func (uc *UserUseCase) List(ctx context.Context, q listing.Query, f dto.UserFilterRequest) (listing.Result[dto.UserResponse], error) {
	p := listing.Parse(q, UserListOptions)
	items, total, err := uc.repo.List(ctx, uc.filter(p, f))
	if err != nil {
		return listing.Result[dto.UserResponse]{}, err
	}
	out := make([]dto.UserResponse, 0, len(items))
	for _, u := range items {
		out = append(out, *ToUserResponse(u))
	}
	return listing.NewResult(out, total, p), nil
}

// Export .xlsx con los filtros del listado.
func (uc *UserUseCase) Export(ctx context.Context, q listing.Query, f dto.UserFilterRequest) ([]byte, string, error) {
	p := listing.Parse(q, UserListOptions)
	filter := uc.filter(p, f)
	filter.Page = repository.Page{}
	items, _, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	rows := make([][]any, 0, len(items))
	for _, u := range items {
		last := ""
		if u.LastLogin != nil {
			last = u.LastLogin.Format("2006-01-02 15:04")
		}
		rows = append(rows, []any{u.Username, u.FirstName, u.LastName, u.Email, u.Phone, u.RoleName, u.Area, u.Status, last})
	}
	data, err := uc.sheets.Write(ports.Table{SheetName: "Usuarios", Headers: UserExportHeaders, Rows: rows})
	if err != nil {
		return nil, "", fmt.Errorf("export usuarios: %w", err)
	}
	return data, "usuarios_" + uc.now().Format("20060102_150405") + ".xlsx", nil
}

// ToUserResponse convierte la entidad en DTO, sin hash de contraseña.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Area:        u.Area,
		PhotoURL:    u.PhotoURL,
		RoleID:      u.RoleID,
		RoleName:    u.RoleName,
		Status:      u.Status,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
