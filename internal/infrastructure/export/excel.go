// Package export genera archivos .xlsx para los listados exportables.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/ports"
)

var _ ports.SpreadsheetWriter = (*ExcelWriter)(nil)

// ExcelWriter implementa ports.SpreadsheetWriter con excelize.
type ExcelWriter struct {
	headerFill string
}

// NewExcelWriter construye el writer; encabezados en negrita blanca sobre el color corporativo.
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{headerFill: "#9C2760"}
}

// Write genera un libro de una hoja con encabezados en la fila 1 y los datos desde la fila 2.
func (w *ExcelWriter) Write(t ports.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.SheetName
	if sheet == "" {
		sheet = "Hoja1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("xlsx: nombrar hoja: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{w.headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: encabezados: %w", err)
	}
	if len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return nil, fmt.Errorf("xlsx: aplicar estilo: %w", err)
		}
	}

	for i, r := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := r
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	for i, h := range t.Headers {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, colName, colName, columnWidth(h, t.Rows, i)); err != nil {
			return nil, fmt.Errorf("xlsx: ancho columna: %w", err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("xlsx: fijar encabezado: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: serializar: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidth ancho según el contenido más largo, acotado a [10, 50].
func columnWidth(header string, rows [][]any, idx int) float64 {
	width := len([]rune(header))
	for _, r := range rows {
		if idx >= len(r) {
			continue
		}
		if n := len([]rune(fmt.Sprint(r[idx]))); n > width {
			width = n
		}
	}
	return float64(min(max(width+2, 10), 50))
}
