package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/dulcerialilis/lilis-api/internal/application/ports"
	"github.com/dulcerialilis/lilis-api/pkg/config"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

var _ ports.ObjectStorage = (*LocalStorage)(nil)

// MediaPrefix ruta HTTP bajo la que se sirven los archivos locales.
const MediaPrefix = "/media"

// LocalStorage guarda los archivos bajo root y los expone en MediaPrefix.
type LocalStorage struct {
	fs   afero.Fs
	root string
	log  *logger.Logger
}

func NewLocalStorage(root string, log *logger.Logger) *LocalStorage {
	return newLocalStorage(afero.NewBasePathFs(afero.NewOsFs(), root), root, log)
}

func newLocalStorage(fs afero.Fs, root string, log *logger.Logger) *LocalStorage {
	if log == nil {
		log = logger.Nop()
	}
	return &LocalStorage{fs: fs, root: root, log: log.Component("media")}
}

// Root directorio base (para servir estáticos).
func (s *LocalStorage) Root() string { return s.root }

// path ruta dentro del fs, siempre absoluta respecto de root.
func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("storage: key inválida %q", key)
	}
	return filepath.FromSlash(clean), nil
}

func (s *LocalStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("storage: crear directorio: %w", err)
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return "", fmt.Errorf("storage: crear archivo: %w", err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return "", fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Int64("bytes", n).Msg("archivo guardado")
	return MediaPrefix + "/" + strings.TrimPrefix(key, "/"), nil
}

// Delete no falla si el archivo ya no existe.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: eliminar %s: %w", key, err)
	}
	return nil
}

// New elige S3 o disco local según la configuración.
func New(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (ports.ObjectStorage, error) {
	if cfg.UseS3 {
		return NewS3Storage(ctx, cfg, log)
	}
	return NewLocalStorage(cfg.MediaRoot, log), nil
}
