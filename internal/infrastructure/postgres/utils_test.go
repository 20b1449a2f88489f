package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

func TestWhere_PlaceholdersYBusqueda(t *testing.T) {
	w := &where{}
	w.and("p.status = " + w.arg("ACTIVO"))
	w.search("  choco ", "p.sku", "p.name")
	w.search("")

	assert.Equal(t,
		" WHERE p.status = $1 AND (unaccent(p.sku) ILIKE unaccent($2) OR unaccent(p.name) ILIKE unaccent($2))",
		w.sql())
	assert.Equal(t, []any{"ACTIVO", "%choco%"}, w.args)

	assert.Equal(t, " LIMIT $3 OFFSET $4", w.window(repository.Page{Limit: 20, Offset: 40}))
	assert.Equal(t, "", (&where{}).window(repository.Page{}), "sin límite en exportaciones")
	assert.Equal(t, "", (&where{}).sql())
}

func TestOrderBy_ClaveDesconocidaUsaDefault(t *testing.T) {
	cols := map[string]string{"nombre": "p.name"}
	assert.Equal(t, " ORDER BY p.name DESC, p.id", orderBy(cols, repository.Sort{Field: "nombre", Desc: true}, "p.name", "p.id"))
	assert.Equal(t, " ORDER BY p.name, p.id", orderBy(cols, repository.Sort{Field: "p.name; DROP TABLE"}, "p.name", "p.id"))
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/lilis?sslmode=disable", pgx5URL("postgres://u:p@db:5432/lilis?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/lilis", pgx5URL("postgresql://u@db/lilis"))
}

func TestMigracionesEmbebidas(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(up), "CREATE EXTENSION IF NOT EXISTS unaccent")
	_, err = migrationsFS.ReadFile("migrations/000001_init.down.sql")
	assert.NoError(t, err)
}
