// Package ports define los puertos de salida hacia servicios externos (hojas de cálculo,
// almacenamiento de archivos, correo, PDF). La aplicación solo conoce estos contratos.
package ports

import (
	"context"
	"io"

	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
)

// Table hoja a exportar: encabezados fijos y filas con valores ya formateados o numéricos.
type Table struct {
	SheetName string
	Headers   []string
	Rows      [][]any
}

// SpreadsheetWriter genera un .xlsx de una sola hoja.
type SpreadsheetWriter interface {
	Write(t Table) ([]byte, error)
}

// ObjectStorage almacenamiento de archivos subidos (S3 o disco local).
// Put devuelve la URL pública o relativa del objeto.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Mail mensaje saliente.
type Mail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer envío de correos transaccionales.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// OrderPDFRenderer representación imprimible de una orden de compra.
type OrderPDFRenderer interface {
	Render(order *entity.PurchaseOrder, supplier *entity.Supplier, companyName string) ([]byte, error)
}
