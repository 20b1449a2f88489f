package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, code, name, type, address, active, created_at, updated_at`

func scanWarehouse(row rowScanner) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Type, &w.Address, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouses (id, code, name, type, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.Code, w.Name, w.Type, w.Address, w.Active, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) get(ctx context.Context, cond, arg string) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.q.QueryRow(ctx, "SELECT "+warehouseColumns+" FROM warehouses WHERE "+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*entity.Warehouse, error) {
	return r.get(ctx, "upper(code) = upper($1)", code)
}

// Update actualiza una bodega existente (incluye la baja lógica vía active).
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE warehouses SET code = $2, name = $3, type = $4, address = $5, active = $6, updated_at = $7
		WHERE id = $1`,
		w.ID, w.Code, w.Name, w.Type, w.Address, w.Active, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update warehouse: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

// List lista las bodegas ordenadas por código.
func (r *WarehouseRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Warehouse, error) {
	w := &where{}
	if activeOnly {
		w.and("active")
	}
	return r.query(ctx, "SELECT "+warehouseColumns+" FROM warehouses"+w.sql()+" ORDER BY code", w.args...)
}

// Search autocompletado por código o nombre; solo bodegas activas.
func (r *WarehouseRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Warehouse, error) {
	w := &where{}
	w.and("active")
	w.search(term, "code", "name")
	query := "SELECT " + warehouseColumns + " FROM warehouses" + w.sql() + " ORDER BY code" +
		w.window(repository.Page{Limit: limit})
	return r.query(ctx, query, w.args...)
}

func (r *WarehouseRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	list := []*entity.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}
