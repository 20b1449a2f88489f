// Package memory implementa los repositorios en memoria para los tests de los casos de uso.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios en memoria.
// Las entidades se guardan como copias y nunca se mutan en sitio: cada escritura reemplaza el puntero.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products   map[string]*entity.Product
	categories map[string]*entity.Category
	brands     map[string]*entity.Brand
	units      map[string]*entity.UnitOfMeasure
	warehouses map[string]*entity.Warehouse
	suppliers  map[string]*entity.Supplier
	movements  map[string]*entity.InventoryMovement
	lots       map[string]*entity.Lot
	alerts     map[string]*entity.StockAlert
	stock      map[string]*entity.WarehouseStock // productID|warehouseID
	orders     map[string]*entity.PurchaseOrder  // sin líneas
	lines      map[string]*entity.PurchaseOrderLine
	users      map[string]*entity.User
	roles      map[string]*entity.Role
	sessions   map[string]*entity.Session
	resets     map[string]*entity.PasswordResetToken
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:   map[string]*entity.Product{},
		categories: map[string]*entity.Category{},
		brands:     map[string]*entity.Brand{},
		units:      map[string]*entity.UnitOfMeasure{},
		warehouses: map[string]*entity.Warehouse{},
		suppliers:  map[string]*entity.Supplier{},
		movements:  map[string]*entity.InventoryMovement{},
		lots:       map[string]*entity.Lot{},
		alerts:     map[string]*entity.StockAlert{},
		stock:      map[string]*entity.WarehouseStock{},
		orders:     map[string]*entity.PurchaseOrder{},
		lines:      map[string]*entity.PurchaseOrderLine{},
		users:      map[string]*entity.User{},
		roles:      map[string]*entity.Role{},
		sessions:   map[string]*entity.Session{},
		resets:     map[string]*entity.PasswordResetToken{},
	}
}

// Run ejecuta fn en una "transacción": las transacciones se serializan y si fn falla
// el estado vuelve a la foto tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.Tx()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Tx repositorios del store agrupados.
func (s *Store) Tx() repository.Tx {
	return repository.Tx{
		Movements: s.Movements(),
		Products:  s.Products(),
		Stock:     s.Stock(),
		Alerts:    s.Alerts(),
		Lots:      s.Lots(),
		Orders:    s.Orders(),
	}
}

type snapshot struct {
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	brands     map[string]*entity.Brand
	units      map[string]*entity.UnitOfMeasure
	warehouses map[string]*entity.Warehouse
	suppliers  map[string]*entity.Supplier
	movements  map[string]*entity.InventoryMovement
	lots       map[string]*entity.Lot
	alerts     map[string]*entity.StockAlert
	stock      map[string]*entity.WarehouseStock
	orders     map[string]*entity.PurchaseOrder
	lines      map[string]*entity.PurchaseOrderLine
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		products:   maps.Clone(s.products),
		categories: maps.Clone(s.categories),
		brands:     maps.Clone(s.brands),
		units:      maps.Clone(s.units),
		warehouses: maps.Clone(s.warehouses),
		suppliers:  maps.Clone(s.suppliers),
		movements:  maps.Clone(s.movements),
		lots:       maps.Clone(s.lots),
		alerts:     maps.Clone(s.alerts),
		stock:      maps.Clone(s.stock),
		orders:     maps.Clone(s.orders),
		lines:      maps.Clone(s.lines),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.categories = snap.categories
	s.brands = snap.brands
	s.units = snap.units
	s.warehouses = snap.warehouses
	s.suppliers = snap.suppliers
	s.movements = snap.movements
	s.lots = snap.lots
	s.alerts = snap.alerts
	s.stock = snap.stock
	s.orders = snap.orders
	s.lines = snap.lines
}

// matches búsqueda insensible a mayúsculas y acentos (como unaccent + ILIKE).
func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(listing.Fold(f)), term) {
			return true
		}
	}
	return false
}

// page aplica la ventana; Limit 0 devuelve todo.
func page[T any](items []T, p repository.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

type comparator[T any] func(a, b *T) int

// sortBy ordena por la clave pedida o por def si la clave no existe.
func sortBy[T any](items []*T, keys map[string]comparator[T], s repository.Sort, def string, defDesc bool) {
	cmp, ok := keys[s.Field]
	desc := s.Desc
	if !ok {
		cmp = keys[def]
		desc = defDesc
	}
	if cmp == nil {
		return
	}
	slices.SortStableFunc(items, func(a, b *T) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
}

func ptrEq(p *string, v string) bool {
	return p != nil && *p == v
}
