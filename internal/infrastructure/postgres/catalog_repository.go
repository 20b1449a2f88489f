package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.BrandRepository    = (*BrandRepo)(nil)
	_ repository.UnitRepository     = (*UnitRepo)(nil)
)

// namedTable categorías y marcas comparten forma; solo cambia la tabla.
type namedTable struct {
	q     Querier
	table string
}

func (t namedTable) create(ctx context.Context, id, name, description string, active bool, createdAt time.Time) error {
	_, err := t.q.Exec(ctx,
		"INSERT INTO "+t.table+" (id, name, description, active, created_at) VALUES ($1, $2, $3, $4, $5)",
		id, name, description, active, createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", t.table, err)
	}
	return nil
}

func (t namedTable) setActive(ctx context.Context, id string, active bool) error {
	tag, err := t.q.Exec(ctx, "UPDATE "+t.table+" SET active = $2 WHERE id = $1", id, active)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.table, err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (t namedTable) query(ctx context.Context, activeOnly bool, id string, scan func(rowScanner) error) error {
	query := "SELECT id, name, description, active, created_at FROM " + t.table
	var args []any
	switch {
	case id != "":
		query += " WHERE id = $1"
		args = append(args, id)
	case activeOnly:
		query += " WHERE active"
	}
	rows, err := t.q.Query(ctx, query+" ORDER BY name", args...)
	if err != nil {
		return fmt.Errorf("list %s: %w", t.table, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s: %w", t.table, err)
		}
	}
	return rows.Err()
}

// ── Categorías ──────────────────────────────────────────────────────────────

// CategoryRepo categorías de producto.
type CategoryRepo struct{ t namedTable }

// NewCategoryRepository construye el adaptador de categorías.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{t: namedTable{q: q, table: "categories"}}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	return r.t.create(ctx, c.ID, c.Name, c.Description, c.Active, c.CreatedAt)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	list, err := r.list(ctx, false, id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	return r.list(ctx, activeOnly, "")
}

func (r *CategoryRepo) list(ctx context.Context, activeOnly bool, id string) ([]*entity.Category, error) {
	list := []*entity.Category{}
	err := r.t.query(ctx, activeOnly, id, func(row rowScanner) error {
		var c entity.Category
		if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt); err != nil {
			return err
		}
		list = append(list, &c)
		return nil
	})
	return list, err
}

func (r *CategoryRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.t.setActive(ctx, id, active)
}

// ── Marcas ──────────────────────────────────────────────────────────────────

// BrandRepo marcas.
type BrandRepo struct{ t namedTable }

// NewBrandRepository construye el adaptador de marcas.
func NewBrandRepository(q Querier) *BrandRepo {
	return &BrandRepo{t: namedTable{q: q, table: "brands"}}
}

func (r *BrandRepo) Create(ctx context.Context, b *entity.Brand) error {
	return r.t.create(ctx, b.ID, b.Name, b.Description, b.Active, b.CreatedAt)
}

func (r *BrandRepo) GetByID(ctx context.Context, id string) (*entity.Brand, error) {
	list, err := r.list(ctx, false, id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *BrandRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Brand, error) {
	return r.list(ctx, activeOnly, "")
}

func (r *BrandRepo) list(ctx context.Context, activeOnly bool, id string) ([]*entity.Brand, error) {
	list := []*entity.Brand{}
	err := r.t.query(ctx, activeOnly, id, func(row rowScanner) error {
		var b entity.Brand
		if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Active, &b.CreatedAt); err != nil {
			return err
		}
		list = append(list, &b)
		return nil
	})
	return list, err
}

func (r *BrandRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.t.setActive(ctx, id, active)
}

// ── Unidades de medida ──────────────────────────────────────────────────────

// UnitRepo unidades de medida.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de unidades.
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

func (r *UnitRepo) Create(ctx context.Context, u *entity.UnitOfMeasure) error {
	_, err := r.q.Exec(ctx, `INSERT INTO units (id, code, name, type) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Code, u.Name, u.Type)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

func (r *UnitRepo) get(ctx context.Context, cond string, arg string) (*entity.UnitOfMeasure, error) {
	var u entity.UnitOfMeasure
	err := r.q.QueryRow(ctx, `SELECT id, code, name, type FROM units WHERE `+cond, arg).
		Scan(&u.ID, &u.Code, &u.Name, &u.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

func (r *UnitRepo) GetByID(ctx context.Context, id string) (*entity.UnitOfMeasure, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *UnitRepo) GetByCode(ctx context.Context, code string) (*entity.UnitOfMeasure, error) {
	return r.get(ctx, "upper(code) = upper($1)", code)
}

func (r *UnitRepo) List(ctx context.Context) ([]*entity.UnitOfMeasure, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, name, type FROM units ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	list := []*entity.UnitOfMeasure{}
	for rows.Next() {
		var u entity.UnitOfMeasure
		if err := rows.Scan(&u.ID, &u.Code, &u.Name, &u.Type); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
