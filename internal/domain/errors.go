package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrBadRequest         = errors.New("solicitud mal formada")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrStateConflict      = errors.New("el estado actual no permite la operación")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrTokenExpired       = errors.New("token expirado o ya utilizado")
)

// ValidationError describe un campo inválido. errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid construye un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StateConflict envuelve ErrStateConflict con el detalle del estado encontrado.
func StateConflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStateConflict, fmt.Sprintf(format, args...))
}

// Forbidden envuelve ErrForbidden indicando el módulo y la acción requeridos.
func Forbidden(module, action string) error {
	return fmt.Errorf("%w: se requiere permiso '%s' en '%s'", ErrForbidden, action, module)
}
