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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `
	id, rut_nif, legal_name, trade_name, email, phone, website, address, city, country,
	payment_terms, payment_terms_other, currency, contact_name, contact_email, contact_phone,
	notes, status, created_at, updated_at`

var supplierSortColumns = map[string]string{
	"rut":          "rut_nif",
	"razon_social": "legal_name",
	"ciudad":       "city",
	"estado":       "status",
	"created_at":   "created_at",
}

func scanSupplier(row rowScanner) (*entity.Supplier, error) {
	var s entity.Supplier
	err := row.Scan(
		&s.ID, &s.RutNif, &s.LegalName, &s.TradeName, &s.Email, &s.Phone, &s.Website, &s.Address, &s.City, &s.Country,
		&s.PaymentTerms, &s.PaymentTermsOther, &s.Currency, &s.ContactName, &s.ContactEmail, &s.ContactPhone,
		&s.Notes, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un proveedor; RUT repetido → ErrDuplicate.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (id, rut_nif, legal_name, trade_name, email, phone, website, address, city, country,
			payment_terms, payment_terms_other, currency, contact_name, contact_email, contact_phone,
			notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		s.ID, s.RutNif, s.LegalName, s.TradeName, s.Email, s.Phone, s.Website, s.Address, s.City, s.Country,
		s.PaymentTerms, s.PaymentTermsOther, s.Currency, s.ContactName, s.ContactEmail, s.ContactPhone,
		s.Notes, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) get(ctx context.Context, cond, arg string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, "SELECT "+supplierColumns+" FROM suppliers WHERE "+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *SupplierRepo) GetByRut(ctx context.Context, rut string) (*entity.Supplier, error) {
	return r.get(ctx, "upper(rut_nif) = upper($1)", rut)
}

// Update actualiza la ficha; el estado cambia solo por UpdateStatus.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE suppliers SET rut_nif = $2, legal_name = $3, trade_name = $4, email = $5, phone = $6, website = $7,
			address = $8, city = $9, country = $10, payment_terms = $11, payment_terms_other = $12, currency = $13,
			contact_name = $14, contact_email = $15, contact_phone = $16, notes = $17, updated_at = $18
		WHERE id = $1`,
		s.ID, s.RutNif, s.LegalName, s.TradeName, s.Email, s.Phone, s.Website,
		s.Address, s.City, s.Country, s.PaymentTerms, s.PaymentTermsOther, s.Currency,
		s.ContactName, s.ContactEmail, s.ContactPhone, s.Notes, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *SupplierRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE suppliers SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update supplier status: %w", err)
	}
	return affected(tag, domain.ErrNotFound)
}

func (r *SupplierRepo) List(ctx context.Context, f repository.SupplierFilter) ([]*entity.Supplier, int, error) {
	w := &where{}
	w.search(f.Search, "rut_nif", "legal_name", "trade_name", "email", "city")
	if f.Status != "" {
		w.and("status = " + w.arg(f.Status))
	}
	if f.Country != "" {
		w.and("lower(country) = lower(" + w.arg(f.Country) + ")")
	}
	total, err := count(ctx, r.q, "FROM suppliers", w)
	if err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}
	query := "SELECT " + supplierColumns + " FROM suppliers" + w.sql() +
		orderBy(supplierSortColumns, f.Sort, "legal_name", "id") + w.window(f.Page)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	list := []*entity.Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// Search autocompletado de proveedores activos.
func (r *SupplierRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Supplier, error) {
	list, _, err := r.List(ctx, repository.SupplierFilter{
		Search: term,
		Status: entity.SupplierStatusActive,
		Page:   repository.Page{Limit: limit},
	})
	return list, err
}
