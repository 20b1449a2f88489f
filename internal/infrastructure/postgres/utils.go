package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx; los repos aceptan cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner cubre pgx.Row y pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// violatedConstraint nombre del constraint que provocó el error, o "".
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// where arma la cláusula WHERE con placeholders numerados.
type where struct {
	conds []string
	args  []any
}

// arg agrega un argumento y devuelve su placeholder ($n).
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) and(cond string) {
	w.conds = append(w.conds, cond)
}

// search busca el término en las columnas, sin distinguir mayúsculas ni acentos.
func (w *where) search(term string, cols ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return
	}
	p := w.arg("%" + term + "%")
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "unaccent(" + c + ") ILIKE unaccent(" + p + ")"
	}
	w.and("(" + strings.Join(parts, " OR ") + ")")
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// window LIMIT/OFFSET; Limit 0 = sin límite.
func (w *where) window(p repository.Page) string {
	var b strings.Builder
	if p.Limit > 0 {
		b.WriteString(" LIMIT " + w.arg(p.Limit))
	}
	if p.Offset > 0 {
		b.WriteString(" OFFSET " + w.arg(p.Offset))
	}
	return b.String()
}

// orderBy traduce la clave lógica a columna; si no la conoce usa def.
// tie se agrega siempre para que la paginación sea estable.
func orderBy(cols map[string]string, s repository.Sort, def, tie string) string {
	col, ok := cols[s.Field]
	if !ok {
		return " ORDER BY " + def + ", " + tie
	}
	dir := " ASC"
	if s.Desc {
		dir = " DESC"
	}
	return " ORDER BY " + col + dir + ", " + tie
}

// count ejecuta el SELECT count(*) con los mismos filtros del listado.
func count(ctx context.Context, q Querier, from string, w *where) (int, error) {
	var n int
	err := q.QueryRow(ctx, "SELECT count(*) "+from+w.sql(), w.args...).Scan(&n)
	return n, err
}

// affected traduce 0 filas afectadas al error indicado.
func affected(tag pgconn.CommandTag, notFound error) error {
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
