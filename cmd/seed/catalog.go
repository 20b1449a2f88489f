package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow fila del catálogo inicial.
// Columnas: sku;nombre;categoria;unidad;costo;precio;stock_min;stock_max
type catalogRow struct {
	Line     int
	SKU      string
	Name     string
	Category string
	Unit     string
	Cost     decimal.Decimal
	Price    decimal.Decimal
	StockMin decimal.Decimal
	StockMax decimal.Decimal
}

// latin1Reader decodifica ISO-8859-1 salvo que el contenido ya sea UTF-8 válido.
func latin1Reader(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return strings.NewReader(string(raw))
	}
	return transform.NewReader(strings.NewReader(string(raw)), charmap.ISO8859_1.NewDecoder())
}

// parseCatalog lee el CSV (separador ';', primera fila de encabezados).
func parseCatalog(raw []byte) ([]catalogRow, error) {
	r := csv.NewReader(latin1Reader(raw))
	r.Comma = ';'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]catalogRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 4 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 4 columnas", line)
		}
		row := catalogRow{
			Line:     line,
			SKU:      strings.ToUpper(strings.TrimSpace(rec[0])),
			Name:     strings.TrimSpace(rec[1]),
			Category: strings.TrimSpace(rec[2]),
			Unit:     strings.ToUpper(strings.TrimSpace(rec[3])),
		}
		if row.SKU == "" || row.Name == "" {
			return nil, fmt.Errorf("línea %d: sku y nombre son obligatorios", line)
		}
		nums := []*decimal.Decimal{&row.Cost, &row.Price, &row.StockMin, &row.StockMax}
		for j, dst := range nums {
			col := 4 + j
			if col >= len(rec) {
				break
			}
			v, err := parseAmount(rec[col])
			if err != nil {
				return nil, fmt.Errorf("línea %d, columna %d: %w", line, col+1, err)
			}
			*dst = v
		}
		out = append(out, row)
	}
	return out, nil
}

// parseAmount acepta "1.234,50", "1234.5" o vacío (cero).
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("número inválido '%s'", s)
	}
	return v, nil
}
