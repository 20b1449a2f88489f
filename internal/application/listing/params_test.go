package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

var movementOpts = Options{
	PerPageAllowed: []int{10, 25, 50, 100},
	PerPageDefault: 25,
	SortFields:     []string{"fecha_movimiento", "cantidad", "producto"},
	DefaultSort:    "fecha_movimiento",
	DefaultDesc:    true,
}

func TestParse_Defaults(t *testing.T) {
	p := Parse(Query{}, movementOpts)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, repository.Sort{Field: "fecha_movimiento", Desc: true}, p.Sort)
	assert.Equal(t, repository.Page{Limit: 25, Offset: 0}, p.Window())
}

func TestParse_ValoresInvalidosCaenAlDefault(t *testing.T) {
	p := Parse(Query{Page: "-3", PerPage: "33", Sort: "password", Order: "desc"}, movementOpts)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, "fecha_movimiento", p.Sort.Field)

	p = Parse(Query{Page: "abc", PerPage: "x"}, movementOpts)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.PerPage)
}

func TestParse_SortYOrden(t *testing.T) {
	p := Parse(Query{Page: "3", PerPage: "50", Sort: "cantidad", Order: "asc"}, movementOpts)
	assert.Equal(t, repository.Sort{Field: "cantidad"}, p.Sort)
	assert.Equal(t, repository.Page{Limit: 50, Offset: 100}, p.Window())

	p = Parse(Query{Sort: "-producto"}, movementOpts)
	assert.Equal(t, repository.Sort{Field: "producto", Desc: true}, p.Sort)

	p = Parse(Query{Sort: "cantidad", Order: "DESC"}, movementOpts)
	assert.True(t, p.Sort.Desc)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "Calugas de leche", Fold("  Calugás de leche "))
	assert.Equal(t, "Dulceria Lilis", Fold("Dulcería Lilis"))
	assert.Equal(t, "nandu", Fold("ñandú"))
	assert.Equal(t, "", Fold("   "))
}

func TestNewResult(t *testing.T) {
	p := Params{Page: 2, PerPage: 10}
	r := NewResult[int](nil, 21, p)
	assert.NotNil(t, r.Items)
	assert.Equal(t, 3, r.Pages)
	assert.Equal(t, 21, r.Total)
	assert.Equal(t, 2, r.Page)
}
