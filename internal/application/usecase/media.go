package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/internal/domain"
)

// MaxImageBytes tamaño máximo de imágenes subidas (fotos de perfil y de producto).
const MaxImageBytes = 5 << 20

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Upload archivo recibido por multipart.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// storeImage valida y guarda una imagen bajo prefix/ownerID/ y devuelve su URL.
func storeImage(ctx context.Context, store ports.ObjectStorage, prefix, ownerID string, up Upload) (string, error) {
	if store == nil {
		return "", fmt.Errorf("almacenamiento de archivos no configurado")
	}
	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	ext, ok := imageExt[ct]
	if !ok {
		return "", domain.Invalid("file", "formato no permitido (jpg, png o webp)")
	}
	if up.Size <= 0 || up.Size > MaxImageBytes {
		return "", domain.Invalid("file", "la imagen debe pesar como máximo 5 MB")
	}
	key := path.Join(prefix, ownerID, uuid.New().String()+ext)
	return store.Put(ctx, key, up.Body, up.Size, ct)
}
