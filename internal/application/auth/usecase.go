// Package auth contiene login, sesiones, restablecimiento de contraseña y la
// evaluación de permisos por módulo.
package auth

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
	"github.com/dulcerialilis/lilis-api/pkg/jwt"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// ResetConfig parámetros del flujo de restablecimiento de contraseña.
type ResetConfig struct {
	URL         string // el link agrega ?token=...
	TTL         time.Duration
	CompanyName string
}

// Deps dependencias del caso de uso de autenticación.
type Deps struct {
	Users    repository.UserRepository
	Roles    repository.RoleRepository
	Sessions repository.SessionRepository
	Resets   repository.PasswordResetRepository
	Mailer   ports.Mailer
	JWT      JWTConfig
	Reset    ResetConfig
	Log      *logger.Logger
}

// AuthUseCase casos de uso de autenticación: login, logout y restablecimiento.
type AuthUseCase struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	sessions repository.SessionRepository
	resets   repository.PasswordResetRepository
	mailer   ports.Mailer
	jwtCfg   JWTConfig
	reset    ResetConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(d Deps) *AuthUseCase {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	if d.Reset.TTL <= 0 {
		d.Reset.TTL = time.Hour
	}
	return &AuthUseCase{
		users:    d.Users,
		roles:    d.Roles,
		sessions: d.Sessions,
		resets:   d.Resets,
		mailer:   d.Mailer,
		jwtCfg:   d.JWT,
		reset:    d.Reset,
		log:      log.Component("auth"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// LoginMeta datos del cliente que se guardan en la sesión.
type LoginMeta struct {
	IP        string
	UserAgent string
}

func (uc *AuthUseCase) findLogin(ctx context.Context, login string) (*entity.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return uc.users.GetByEmail(ctx, strings.ToLower(login))
	}
	return uc.users.GetByUsername(ctx, login)
}

// Login verifica usuario (username o email) y contraseña, abre una sesión y emite el JWT.
// Credenciales incorrectas y usuario inexistente responden igual.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, meta LoginMeta) (*dto.LoginResponse, error) {
	user, err := uc.findLogin(ctx, in.Login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("user_id", user.ID).Msg("login rechazado: contraseña incorrecta")
		return nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	if user.Status != entity.UserStatusActive {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrForbidden, strings.ToLower(user.Status))
	}

	now := uc.now()
	expires := now.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute)
	sess := &entity.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := uc.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	if err := uc.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, jwt.Identity{
		UserID:    user.ID,
		SessionID: sess.ID,
		Role:      user.RoleName,
		Superuser: user.IsSuperuser,
	}, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("session_id", sess.ID).Msg("login")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      *usecase.ToUserResponse(user),
	}, nil
}

// Logout elimina la sesión; el token deja de ser aceptado.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// CheckSession valida que la sesión del token siga abierta y pertenezca al usuario.
func (uc *AuthUseCase) CheckSession(ctx context.Context, id jwt.Identity) error {
	if id.SessionID == "" {
		return fmt.Errorf("%w: token sin sesión", domain.ErrUnauthorized)
	}
	sess, err := uc.sessions.Get(ctx, id.SessionID)
	if err != nil {
		return err
	}
	if sess == nil || sess.UserID != id.UserID || !uc.now().Before(sess.ExpiresAt) {
		return fmt.Errorf("%w: sesión cerrada o expirada", domain.ErrUnauthorized)
	}
	return nil
}

// RequestReset crea un token y envía el link por correo. Siempre responde OK:
// un email desconocido no se distingue de uno registrado.
func (uc *AuthUseCase) RequestReset(ctx context.Context, in dto.PasswordResetRequest) error {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return err
	}
	if user == nil || user.Status != entity.UserStatusActive {
		uc.log.Info().Msg("reset solicitado para email sin usuario activo")
		return nil
	}
	now := uc.now()
	tok := &entity.PasswordResetToken{
		Token:     strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		UserID:    user.ID,
		ExpiresAt: now.Add(uc.reset.TTL),
		CreatedAt: now,
	}
	if err := uc.resets.Create(ctx, tok); err != nil {
		return err
	}
	if uc.mailer == nil {
		return nil
	}
	if err := uc.mailer.Send(ctx, uc.resetMail(user, tok.Token)); err != nil {
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("no se pudo enviar el correo de restablecimiento")
	}
	return nil
}

func (uc *AuthUseCase) resetMail(user *entity.User, token string) ports.Mail {
	link := uc.reset.URL
	sep := "?"
	if strings.Contains(link, "?") {
		sep = "&"
	}
	link += sep + "token=" + url.QueryEscape(token)
	company := uc.reset.CompanyName
	if company == "" {
		company = "Dulcería Lilis"
	}
	minutes := int(uc.reset.TTL / time.Minute)
	return ports.Mail{
		To:      user.Email,
		Subject: "Restablecer contraseña - " + company,
		HTML: fmt.Sprintf(
			`<p>Hola %s,</p><p>Para restablecer tu contraseña ingresa a <a href="%s">este enlace</a>. `+
				`El enlace vence en %d minutos.</p><p>Si no lo solicitaste, ignora este correo.</p>`,
			html.EscapeString(user.FullName()), html.EscapeString(link), minutes),
		Text: fmt.Sprintf("Hola %s,\n\nRestablece tu contraseña en: %s\nEl enlace vence en %d minutos.\n",
			user.FullName(), link, minutes),
	}
}

// ConfirmReset fija la nueva contraseña, consume el token y cierra todas las sesiones del usuario.
func (uc *AuthUseCase) ConfirmReset(ctx context.Context, in dto.PasswordResetConfirmRequest) error {
	tok, err := uc.resets.Get(ctx, strings.TrimSpace(in.Token))
	if err != nil {
		return err
	}
	now := uc.now()
	if tok == nil || !tok.Usable(now) {
		return domain.ErrTokenExpired
	}
	hash, err := usecase.HashPassword(in.Password)
	if err != nil {
		return err
	}
	if err := uc.users.UpdatePassword(ctx, tok.UserID, hash); err != nil {
		return err
	}
	if err := uc.resets.MarkUsed(ctx, tok.Token, now); err != nil {
		return err
	}
	if err := uc.sessions.DeleteByUser(ctx, tok.UserID); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", tok.UserID).Msg("contraseña restablecida")
	return nil
}
