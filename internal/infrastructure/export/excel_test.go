package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/ports"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ─────────────────────────────────────────────────────────────────────────────

func abrir(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestExcelWriter_EncabezadosYFilas(t *testing.T) {
	w := NewExcelWriter()
	data, err := w.Write(ports.Table{
		SheetName: "Productos",
		Headers:   []string{"SKU", "Nombre", "Stock"},
		Rows: [][]any{
			{"CHO-001", "Chocolate amargo", 12.5},
			{"CAR-002", "Caramelo", 3},
		},
	})
	require.NoError(t, err)

	f := abrir(t, data)
	assert.Equal(t, []string{"Productos"}, f.GetSheetList())

	rows, err := f.GetRows("Productos")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"SKU", "Nombre", "Stock"}, rows[0])
	assert.Equal(t, "CHO-001", rows[1][0])
	assert.Equal(t, "12.5", rows[1][2])
	assert.Equal(t, "Caramelo", rows[2][1])
}

func TestExcelWriter_EncabezadoEnNegrita(t *testing.T) {
	data, err := NewExcelWriter().Write(ports.Table{SheetName: "Usuarios", Headers: []string{"Usuario"}})
	require.NoError(t, err)

	f := abrir(t, data)
	id, err := f.GetCellStyle("Usuarios", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestExcelWriter_SinFilas(t *testing.T) {
	data, err := NewExcelWriter().Write(ports.Table{Headers: []string{"A", "B"}})
	require.NoError(t, err)

	f := abrir(t, data)
	rows, err := f.GetRows("Hoja1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestColumnWidth_Acotado(t *testing.T) {
	assert.Equal(t, float64(10), columnWidth("ID", nil, 0))
	largo := make([]byte, 80)
	for i := range largo {
		largo[i] = 'x'
	}
	assert.Equal(t, float64(50), columnWidth("Nombre", [][]any{{string(largo)}}, 0))
}
