package http

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// listQuery lee search/page/per_page/sort/order y los filtros propios del endpoint.
func listQuery(c *fiber.Ctx, filters any) (listing.Query, error) {
	var q listing.Query
	if err := c.QueryParser(&q); err != nil {
		return q, fmt.Errorf("%w: parámetros de consulta inválidos", domain.ErrBadRequest)
	}
	if filters != nil {
		if err := c.QueryParser(filters); err != nil {
			return q, fmt.Errorf("%w: filtros inválidos", domain.ErrBadRequest)
		}
	}
	return q, nil
}

// sendFile responde un adjunto descargable.
func sendFile(c *fiber.Ctx, data []byte, filename, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, filename, url.PathEscape(filename)))
	return c.Send(data)
}

// formUpload toma el archivo del campo field de un multipart/form-data.
// El caller debe cerrar el closer devuelto.
func formUpload(c *fiber.Ctx, field string) (usecase.Upload, func() error, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return usecase.Upload{}, nil, domain.Invalid(field, "archivo requerido (multipart/form-data)")
	}
	if fh.Size > usecase.MaxImageBytes {
		return usecase.Upload{}, nil, domain.Invalid(field, "la imagen no puede superar 5 MB")
	}
	f, err := fh.Open()
	if err != nil {
		return usecase.Upload{}, nil, fmt.Errorf("%w: no se pudo leer el archivo", domain.ErrBadRequest)
	}
	return usecase.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f.Close, nil
}

// activeOnly interpreta ?activos=true|false (por defecto solo activos).
func activeOnly(c *fiber.Ctx) bool {
	return c.QueryBool("activos", true)
}
