package dto

import (
	"fmt"
	"strings"
	"time"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusRequest cambio de estado genérico (PATCH .../status).
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DateLayout formato de fechas en filtros (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ParseDateRange interpreta desde/hasta. Hasta es inclusivo: se extiende al fin del día.
// Cadenas vacías devuelven nil.
func ParseDateRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	var f, t *time.Time
	if s := strings.TrimSpace(from); s != "" {
		v, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("fecha desde inválida '%s'", s)
		}
		f = &v
	}
	if s := strings.TrimSpace(to); s != "" {
		v, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("fecha hasta inválida '%s'", s)
		}
		end := v.Add(24*time.Hour - time.Nanosecond)
		t = &end
	}
	return f, t, nil
}

// OptionalID convierte "" en nil.
func OptionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref devuelve "" para nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
