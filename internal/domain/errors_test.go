package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsErrInvalidInput(t *testing.T) {
	err := Invalid("cantidad", "debe ser mayor a cero")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "cantidad: debe ser mayor a cero", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "cantidad", ve.Field)
}

func TestStateConflict_Wraps(t *testing.T) {
	err := StateConflict("movimiento en estado %s", "CONFIRMADO")
	assert.ErrorIs(t, err, ErrStateConflict)
	assert.Contains(t, err.Error(), "CONFIRMADO")
}

func TestForbidden_Wraps(t *testing.T) {
	err := Forbidden("productos", "crear")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "crear")
}
