package entity

import "time"

// Estados de proveedor.
const (
	SupplierStatusActive  = "ACTIVO"
	SupplierStatusBlocked = "BLOQUEADO"
)

// Condiciones de pago.
const (
	PaymentCash   = "CONTADO"
	Payment30Days = "30_DIAS"
	Payment60Days = "60_DIAS"
	Payment90Days = "90_DIAS"
	PaymentOther  = "OTRO"
)

// Supplier proveedor.
type Supplier struct {
	ID                string
	RutNif            string // único
	LegalName         string // razón social
	TradeName         string // nombre de fantasía
	Email             string
	Phone             string
	Website           string
	Address           string
	City              string
	Country           string
	PaymentTerms      string
	PaymentTermsOther string // obligatorio si PaymentTerms = OTRO
	Currency          string
	ContactName       string
	ContactEmail      string
	ContactPhone      string
	Notes             string
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsPaymentTerms valida la condición de pago.
func IsPaymentTerms(s string) bool {
	switch s {
	case PaymentCash, Payment30Days, Payment60Days, Payment90Days, PaymentOther:
		return true
	}
	return false
}

// IsActive proveedor habilitado para nuevas órdenes.
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}
