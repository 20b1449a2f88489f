package entity

import (
	"fmt"

	"github.com/dulcerialilis/lilis-api/internal/domain"
)

// transitions tabla de transiciones permitidas: estado origen -> destinos válidos.
type transitions map[string][]string

func (t transitions) has(status string) bool {
	_, ok := t[status]
	return ok
}

func (t transitions) check(kind, from, to string) error {
	if !t.has(to) {
		return domain.Invalid("estado", fmt.Sprintf("estado de %s desconocido '%s'", kind, to))
	}
	for _, s := range t[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s -> %s", domain.ErrInvalidTransition, kind, from, to)
}

var productTransitions = transitions{
	ProductStatusActive:       {ProductStatusInactive, ProductStatusDiscontinued},
	ProductStatusInactive:     {ProductStatusActive, ProductStatusDiscontinued},
	ProductStatusDiscontinued: nil,
}

var supplierTransitions = transitions{
	SupplierStatusActive:  {SupplierStatusBlocked},
	SupplierStatusBlocked: {SupplierStatusActive},
}

var userTransitions = transitions{
	UserStatusActive:   {UserStatusBlocked, UserStatusInactive},
	UserStatusBlocked:  {UserStatusActive, UserStatusInactive},
	UserStatusInactive: {UserStatusActive},
}

var movementTransitions = transitions{
	MovementStatusPending:   {MovementStatusConfirmed, MovementStatusCancelled},
	MovementStatusConfirmed: nil,
	MovementStatusCancelled: nil,
}

var orderTransitions = transitions{
	OrderStatusDraft:             {OrderStatusSent, OrderStatusCancelled},
	OrderStatusSent:              {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:         {OrderStatusPartiallyReceived, OrderStatusFullyReceived, OrderStatusCancelled},
	OrderStatusPartiallyReceived: {OrderStatusFullyReceived},
	OrderStatusFullyReceived:     nil,
	OrderStatusCancelled:         nil,
}

// CheckProductTransition valida un cambio de estado de producto.
func CheckProductTransition(from, to string) error {
	return productTransitions.check("producto", from, to)
}

// CheckSupplierTransition valida un cambio de estado de proveedor.
func CheckSupplierTransition(from, to string) error {
	return supplierTransitions.check("proveedor", from, to)
}

// CheckUserTransition valida un cambio de estado de usuario.
func CheckUserTransition(from, to string) error {
	return userTransitions.check("usuario", from, to)
}

// CheckMovementTransition valida un cambio de estado de movimiento.
func CheckMovementTransition(from, to string) error {
	return movementTransitions.check("movimiento", from, to)
}

// CheckOrderTransition valida un cambio de estado de orden de compra.
func CheckOrderTransition(from, to string) error {
	return orderTransitions.check("orden", from, to)
}

// IsProductStatus etc. validan valores de filtros y entradas.
func IsProductStatus(s string) bool  { return productTransitions.has(s) }
func IsSupplierStatus(s string) bool { return supplierTransitions.has(s) }
func IsUserStatus(s string) bool     { return userTransitions.has(s) }
func IsMovementStatus(s string) bool { return movementTransitions.has(s) }
func IsOrderStatus(s string) bool    { return orderTransitions.has(s) }
