package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Code    string `json:"code" validate:"required,min=1,max=20"`
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Type    string `json:"type" validate:"required,oneof=PRINCIPAL SUCURSAL TRANSITO"`
	Address string `json:"address" validate:"max=255"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Type    *string `json:"type" validate:"omitempty,oneof=PRINCIPAL SUCURSAL TRANSITO"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Active  *bool   `json:"active"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NamedRequest entrada para categorías y marcas.
type NamedRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description"`
}

// NamedResponse salida de categorías y marcas.
type NamedResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnitRequest entrada para crear una unidad de medida.
type UnitRequest struct {
	Code string `json:"code" validate:"required,min=1,max=10"`
	Name string `json:"name" validate:"required,min=1,max=50"`
	Type string `json:"type" validate:"required,oneof=PESO VOLUMEN LONGITUD UNIDAD TIEMPO"`
}

// UnitResponse salida de una unidad de medida.
type UnitResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateLotRequest entrada para registrar un lote.
type CreateLotRequest struct {
	Code           string          `json:"code" validate:"required,min=1,max=50"`
	ProductID      string          `json:"product_id" validate:"required"`
	WarehouseID    string          `json:"warehouse_id" validate:"required"`
	SupplierID     string          `json:"supplier_id"`
	ProductionDate string          `json:"production_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate     string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	WarehouseID       string          `json:"warehouse_id"`
	WarehouseName     string          `json:"warehouse_name,omitempty"`
	SupplierID        *string         `json:"supplier_id"`
	ProductionDate    *time.Time      `json:"production_date"`
	ExpiryDate        *time.Time      `json:"expiry_date"`
	QuantityInitial   decimal.Decimal `json:"quantity_initial"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}
