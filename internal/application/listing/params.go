// Package listing interpreta los parámetros comunes de los listados
// (search, page, per_page, sort, order) contra listas blancas por endpoint.
package listing

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dulcerialilis/lilis-api/internal/domain/repository"
)

// Query parámetros crudos tal como llegan en la URL.
type Query struct {
	Search  string `query:"search"`
	Page    string `query:"page"`
	PerPage string `query:"per_page"`
	Sort    string `query:"sort"`
	Order   string `query:"order"`
}

// Options reglas de un endpoint.
type Options struct {
	PerPageAllowed []int
	PerPageDefault int
	SortFields     []string // claves lógicas aceptadas
	DefaultSort    string   // vacío = orden por defecto del repositorio
	DefaultDesc    bool
}

// Params parámetros ya validados.
type Params struct {
	Search  string
	Page    int
	PerPage int
	Sort    repository.Sort
}

// Parse valida la consulta. Valores inválidos caen a sus defaults, nunca fallan.
// sort acepta "campo" con order=asc|desc o "-campo".
func Parse(q Query, opt Options) Params {
	p := Params{
		Search:  Fold(q.Search),
		Page:    1,
		PerPage: opt.PerPageDefault,
		Sort:    repository.Sort{Field: opt.DefaultSort, Desc: opt.DefaultDesc},
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.Page)); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.PerPage)); err == nil && containsInt(opt.PerPageAllowed, n) {
		p.PerPage = n
	}

	field := strings.TrimSpace(q.Sort)
	desc := strings.EqualFold(strings.TrimSpace(q.Order), "desc")
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		desc = true
	}
	if field != "" && containsString(opt.SortFields, field) {
		p.Sort = repository.Sort{Field: field, Desc: desc}
	}
	return p
}

// Window ventana para el repositorio.
func (p Params) Window() repository.Page {
	return repository.Page{Limit: p.PerPage, Offset: (p.Page - 1) * p.PerPage}
}

// Result página de resultados.
type Result[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

// NewResult arma la página. Items nunca es nil para serializar [] en JSON.
func NewResult[T any](items []T, total int, p Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.PerPage > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	return Result[T]{Items: items, Total: total, Page: p.Page, PerPage: p.PerPage, Pages: pages}
}

// Fold quita acentos y espacios extremos: "Calugás  " -> "Calugas".
// Las consultas comparan contra unaccent(columna) con ILIKE.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return out
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
