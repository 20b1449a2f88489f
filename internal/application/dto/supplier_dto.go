package dto

import "time"

// SupplierRequest entrada para crear o reemplazar un proveedor.
type SupplierRequest struct {
	RutNif            string `json:"rut_nif" validate:"required,min=3,max=20"`
	LegalName         string `json:"legal_name" validate:"required,min=1,max=255"`
	TradeName         string `json:"trade_name" validate:"max=255"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"max=30"`
	Website           string `json:"website" validate:"omitempty,url"`
	Address           string `json:"address" validate:"max=255"`
	City              string `json:"city" validate:"max=128"`
	Country           string `json:"country" validate:"max=64"`
	PaymentTerms      string `json:"payment_terms" validate:"required,oneof=CONTADO 30_DIAS 60_DIAS 90_DIAS OTRO"`
	PaymentTermsOther string `json:"payment_terms_other" validate:"max=100"`
	Currency          string `json:"currency" validate:"omitempty,len=3"`
	ContactName       string `json:"contact_name" validate:"max=120"`
	ContactEmail      string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone      string `json:"contact_phone" validate:"max=30"`
	Notes             string `json:"notes"`
}

// SupplierFilterRequest filtros específicos del listado de proveedores.
type SupplierFilterRequest struct {
	Status  string `query:"estado"`
	Country string `query:"pais"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID                string    `json:"id"`
	RutNif            string    `json:"rut_nif"`
	LegalName         string    `json:"legal_name"`
	TradeName         string    `json:"trade_name,omitempty"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Website           string    `json:"website,omitempty"`
	Address           string    `json:"address,omitempty"`
	City              string    `json:"city,omitempty"`
	Country           string    `json:"country,omitempty"`
	PaymentTerms      string    `json:"payment_terms"`
	PaymentTermsOther string    `json:"payment_terms_other,omitempty"`
	Currency          string    `json:"currency"`
	ContactName       string    `json:"contact_name,omitempty"`
	ContactEmail      string    `json:"contact_email,omitempty"`
	ContactPhone      string    `json:"contact_phone,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
