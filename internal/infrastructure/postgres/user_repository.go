package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `
	u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.phone, u.area, u.photo_url,
	u.role_id, u.status, u.is_superuser, u.last_login, u.created_at, u.updated_at, COALESCE(r.name, '')`

const userFrom = `
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id`

var userSortColumns = map[string]string{
	"username":      "lower(u.username)",
	"nombre":        "lower(u.first_name || ' ' || u.last_name)",
	"email":         "lower(u.email)",
	"rol":           "r.name",
	"estado":        "u.status",
	"ultimo_acceso": "u.last_login",
	"created_at":    "u.created_at",
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.Area, &u.PhotoURL,
		&u.RoleID, &u.Status, &u.IsSuperuser, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt, &u.RoleName,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// userConflict traduce la violación de unicidad al error de dominio según el índice.
func userConflict(err error) error {
	if violatedConstraint(err) == "users_email_key" {
		return domain.ErrEmailAlreadyExists
	}
	return domain.ErrDuplicate
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, phone, area, photo_url,
			role_id, status, is_superuser, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Area, u.PhotoURL,
		u.RoleID, u.Status, u.IsSuperuser, u.LastLogin, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userConflict(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, cond, arg string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, "SELECT "+userColumns+userFrom+" WHERE "+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "u.id = $1", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "lower(u.username) = lower($1)", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "lower(u.email) = lower($1)", email)
}

// Update actualiza perfil y rol.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users SET username = $2, email = $3, first_name = $4, last_name = $5, phone = $6, area = $7,
			role_id = $8, is_superuser = $9, updated_at = $10
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Phone, u.Area,
		u.RoleID, u.IsSuperuser, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userConflict(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return affected(tag, domain.ErrUserNotFound)
}

func (r *UserRepo) set(ctx context.Context, op, column string, id string, v any) error {
	tag, err := r.q.Exec(ctx, "UPDATE users SET "+column+" = $2, updated_at = now() WHERE id = $1", id, v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(tag, domain.ErrUserNotFound)
}

func (r *UserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.set(ctx, "update user status", "status", id, status)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.set(ctx, "update user password", "password_hash", id, hash)
}

func (r *UserRepo) UpdatePhoto(ctx context.Context, id, url string) error {
	return r.set(ctx, "update user photo", "photo_url", id, url)
}

// TouchLastLogin registra el último acceso sin alterar updated_at.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return affected(tag, domain.ErrUserNotFound)
}

// List lista usuarios con filtros y paginación.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, int, error) {
	w := &where{}
	w.search(f.Search, "u.username", "u.email", "u.first_name", "u.last_name")
	if f.RoleID != "" {
		w.and("u.role_id = " + w.arg(f.RoleID))
	}
	if f.Status != "" {
		w.and("u.status = " + w.arg(f.Status))
	}
	total, err := count(ctx, r.q, userFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	query := "SELECT " + userColumns + userFrom + w.sql() +
		orderBy(userSortColumns, f.Sort, "lower(u.username)", "u.id") + w.window(f.Page)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	list := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// ── Roles ───────────────────────────────────────────────────────────────────

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo roles con su mapa de permisos en JSONB.
type RoleRepo struct {
	q Querier
}

func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

const roleSelect = `SELECT id, name, description, permissions, created_at, updated_at FROM roles`

func scanRole(row rowScanner) (*entity.Role, error) {
	var (
		role entity.Role
		raw  []byte
	)
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &raw, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	perms, err := access.ParsePermissionMap(raw)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", role.Name, err)
	}
	role.Permissions = perms
	return &role, nil
}

func (r *RoleRepo) findOne(ctx context.Context, cond, arg string) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx, roleSelect+" WHERE "+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.findOne(ctx, "name = $1", name)
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, roleSelect+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	list := []*entity.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

func (r *RoleRepo) UpdatePermissions(ctx context.Context, id string, perms access.PermissionMap) error {
	raw, err := perms.JSON()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `UPDATE roles SET permissions = $2, updated_at = now() WHERE id = $1`, id, raw)
	if err != nil {
		return fmt.Errorf("update role permissions: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

// Upsert crea o actualiza por nombre; deja en role.ID el id persistido.
func (r *RoleRepo) Upsert(ctx context.Context, role *entity.Role) error {
	raw, err := role.Permissions.JSON()
	if err != nil {
		return err
	}
	now := time.Now()
	err = r.q.QueryRow(ctx, `
		INSERT INTO roles (id, name, description, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description,
			permissions = EXCLUDED.permissions, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		role.ID, role.Name, role.Description, raw, now,
	).Scan(&role.ID)
	if err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}
	return nil
}

// ── Sesiones ────────────────────────────────────────────────────────────────

var _ repository.SessionRepository = (*SessionRepo)(nil)

type SessionRepo struct {
	q Querier
}

func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

func (r *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sessions (id, user_id, ip, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.IP, s.UserAgent, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*entity.Session, error) {
	var s entity.Session
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, ip, user_agent, created_at, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.IP, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Delete no falla si la sesión ya no existe.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// ── Restablecimiento de contraseña ──────────────────────────────────────────

var _ repository.PasswordResetRepository = (*PasswordResetRepo)(nil)

type PasswordResetRepo struct {
	q Querier
}

func NewPasswordResetRepository(q Querier) *PasswordResetRepo {
	return &PasswordResetRepo{q: q}
}

func (r *PasswordResetRepo) Create(ctx context.Context, t *entity.PasswordResetToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO password_reset_tokens (token, user_id, expires_at, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.Token, t.UserID, t.ExpiresAt, t.UsedAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert password reset token: %w", err)
	}
	return nil
}

func (r *PasswordResetRepo) Get(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	var t entity.PasswordResetToken
	err := r.q.QueryRow(ctx, `
		SELECT token, user_id, expires_at, used_at, created_at FROM password_reset_tokens WHERE token = $1`, token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get password reset token: %w", err)
	}
	return &t, nil
}

func (r *PasswordResetRepo) MarkUsed(ctx context.Context, token string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE password_reset_tokens SET used_at = $2 WHERE token = $1`, token, at)
	if err != nil {
		return fmt.Errorf("mark password reset token used: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}
