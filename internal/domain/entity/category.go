package entity

import "time"

// Category categoría de productos.
type Category struct {
	ID          string
	Name        string // único
	Description string
	Active      bool
	CreatedAt   time.Time
}

// Brand marca de productos.
type Brand struct {
	ID          string
	Name        string // único
	Description string
	Active      bool
	CreatedAt   time.Time
}

// Tipos de unidad de medida.
const (
	UnitTypeWeight = "PESO"
	UnitTypeVolume = "VOLUMEN"
	UnitTypeLength = "LONGITUD"
	UnitTypeUnit   = "UNIDAD"
	UnitTypeTime   = "TIEMPO"
)

// UnitOfMeasure unidad de medida (UN, KG, LT...).
type UnitOfMeasure struct {
	ID   string
	Code string // único
	Name string
	Type string
}

// IsUnitType valida el tipo de unidad.
func IsUnitType(t string) bool {
	switch t {
	case UnitTypeWeight, UnitTypeVolume, UnitTypeLength, UnitTypeUnit, UnitTypeTime:
		return true
	}
	return false
}
