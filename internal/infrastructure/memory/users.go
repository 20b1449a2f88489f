package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// ── Usuarios ────────────────────────────────────────────────────────────────

type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

var userSort = map[string]comparator[entity.User]{
	"username":      func(a, b *entity.User) int { return strings.Compare(a.Username, b.Username) },
	"nombre":        func(a, b *entity.User) int { return strings.Compare(a.FullName(), b.FullName()) },
	"email":         func(a, b *entity.User) int { return strings.Compare(a.Email, b.Email) },
	"rol":           func(a, b *entity.User) int { return strings.Compare(a.RoleName, b.RoleName) },
	"estado":        func(a, b *entity.User) int { return strings.Compare(a.Status, b.Status) },
	"ultimo_acceso": func(a, b *entity.User) int { return cmpTimePtr(a.LastLogin, b.LastLogin) },
	"created_at":    func(a, b *entity.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r *UserRepo) joined(u *entity.User) *entity.User {
	cp := *u
	if cp.RoleID != nil {
		if role, ok := r.s.roles[*cp.RoleID]; ok {
			cp.RoleName = role.Name
		}
	}
	return &cp
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.users {
		if strings.EqualFold(o.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
		if strings.EqualFold(o.Username, u.Username) {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return r.joined(u), nil
}

func (r *UserRepo) find(pred func(*entity.User) bool) *entity.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if pred(u) {
			return r.joined(u)
		}
	}
	return nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Username, username) }), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepo) modify(id string, fn func(u *entity.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	cp := *cur
	fn(&cp)
	r.s.users[id] = &cp
	return nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.RLock()
	for _, o := range r.s.users {
		if o.ID == u.ID {
			continue
		}
		if strings.EqualFold(o.Email, u.Email) {
			r.s.mu.RUnlock()
			return domain.ErrEmailAlreadyExists
		}
		if strings.EqualFold(o.Username, u.Username) {
			r.s.mu.RUnlock()
			return domain.ErrDuplicate
		}
	}
	r.s.mu.RUnlock()
	return r.modify(u.ID, func(cur *entity.User) {
		cur.Username = u.Username
		cur.Email = u.Email
		cur.FirstName = u.FirstName
		cur.LastName = u.LastName
		cur.Phone = u.Phone
		cur.Area = u.Area
		cur.RoleID = u.RoleID
		cur.IsSuperuser = u.IsSuperuser
		cur.UpdatedAt = u.UpdatedAt
	})
}

func (r *UserRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.modify(id, func(u *entity.User) { u.Status = status; u.UpdatedAt = time.Now() })
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return r.modify(id, func(u *entity.User) { u.PasswordHash = hash; u.UpdatedAt = time.Now() })
}

func (r *UserRepo) UpdatePhoto(_ context.Context, id, url string) error {
	return r.modify(id, func(u *entity.User) { u.PhotoURL = url; u.UpdatedAt = time.Now() })
}

func (r *UserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.modify(id, func(u *entity.User) { u.LastLogin = &at })
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]*entity.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.User{}
	for _, u := range r.s.users {
		j := r.joined(u)
		switch {
		case !matches(f.Search, j.Username, j.Email, j.FirstName, j.LastName):
		case f.RoleID != "" && !ptrEq(j.RoleID, f.RoleID):
		case f.Status != "" && j.Status != f.Status:
		default:
			out = append(out, j)
		}
	}
	sortBy(out, userSort, f.Sort, "username", false)
	return page(out, f.Page), len(out), nil
}

// ── Roles ───────────────────────────────────────────────────────────────────

type RoleRepo struct{ s *Store }

var _ repository.RoleRepository = (*RoleRepo)(nil)

func (s *Store) Roles() *RoleRepo { return &RoleRepo{s: s} }

func copyRole(r *entity.Role) *entity.Role {
	cp := *r
	cp.Permissions = maps.Clone(r.Permissions)
	return &cp
}

func (r *RoleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, nil
	}
	return copyRole(role), nil
}

func (r *RoleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if strings.EqualFold(role.Name, name) {
			return copyRole(role), nil
		}
	}
	return nil, nil
}

func (r *RoleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Role{}
	for _, role := range r.s.roles {
		out = append(out, copyRole(role))
	}
	slices.SortFunc(out, func(a, b *entity.Role) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *RoleRepo) UpdatePermissions(_ context.Context, id string, perms access.PermissionMap) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := copyRole(role)
	cp.Permissions = maps.Clone(perms)
	cp.UpdatedAt = time.Now()
	r.s.roles[id] = cp
	return nil
}

func (r *RoleRepo) Upsert(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, o := range r.s.roles {
		if strings.EqualFold(o.Name, role.Name) {
			cp := copyRole(role)
			cp.ID = id
			cp.CreatedAt = o.CreatedAt
			role.ID = id
			r.s.roles[id] = cp
			return nil
		}
	}
	r.s.roles[role.ID] = copyRole(role)
	return nil
}

// ── Sesiones y tokens ───────────────────────────────────────────────────────

type SessionRepo struct{ s *Store }

var _ repository.SessionRepository = (*SessionRepo)(nil)

func (s *Store) Sessions() *SessionRepo { return &SessionRepo{s: s} }

func (r *SessionRepo) Create(_ context.Context, sess *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sess
	r.s.sessions[sess.ID] = &cp
	return nil
}

func (r *SessionRepo) Get(_ context.Context, id string) (*entity.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (r *SessionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r *SessionRepo) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	maps.DeleteFunc(r.s.sessions, func(_ string, sess *entity.Session) bool { return sess.UserID == userID })
	return nil
}

type ResetRepo struct{ s *Store }

var _ repository.PasswordResetRepository = (*ResetRepo)(nil)

func (s *Store) Resets() *ResetRepo { return &ResetRepo{s: s} }

func (r *ResetRepo) Create(_ context.Context, t *entity.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.resets[t.Token] = &cp
	return nil
}

func (r *ResetRepo) Get(_ context.Context, token string) (*entity.PasswordResetToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.resets[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *ResetRepo) MarkUsed(_ context.Context, token string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.resets[token]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *t
	cp.UsedAt = &at
	r.s.resets[token] = &cp
	return nil
}
