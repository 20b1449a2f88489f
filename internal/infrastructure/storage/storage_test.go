package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ─────────────────────────────────────────────────────────────────────────────

type fakeS3 struct {
	puts    map[string]string
	deleted []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestLocalStorage_PutYDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newLocalStorage(fs, "/srv/media", logger.Nop())

	url, err := s.Put(context.Background(), "products/p1/a.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/products/p1/a.png", url)

	data, err := afero.ReadFile(fs, filepath.FromSlash("/products/p1/a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, s.Delete(context.Background(), "products/p1/a.png"))
	require.NoError(t, s.Delete(context.Background(), "products/p1/a.png"))
	exists, err := afero.Exists(fs, filepath.FromSlash("/products/p1/a.png"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_EscribeBajoRoot(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, nil)

	_, err := s.Put(context.Background(), "profiles/u1/foto.jpg", strings.NewReader("jpg"), 3, "image/jpeg")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "profiles", "u1", "foto.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpg", string(data))
}

func TestLocalStorage_RechazaTraversal(t *testing.T) {
	s := newLocalStorage(afero.NewMemMapFs(), "/srv/media", nil)
	_, err := s.Put(context.Background(), "../fuera.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}

func TestS3Storage_PutDevuelveURLPublica(t *testing.T) {
	fake := &fakeS3{puts: map[string]string{}}
	s := newS3Storage(fake, "lilis", publicBaseURL("", "lilis", "sa-east-1"), logger.Nop())

	url, err := s.Put(context.Background(), "profiles/u1/x.jpg", strings.NewReader("jpg"), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://lilis.s3.sa-east-1.amazonaws.com/profiles/u1/x.jpg", url)
	assert.Equal(t, "jpg", fake.puts["profiles/u1/x.jpg"])

	require.NoError(t, s.Delete(context.Background(), "profiles/u1/x.jpg"))
	assert.Equal(t, []string{"profiles/u1/x.jpg"}, fake.deleted)
}

func TestS3Storage_PropagaError(t *testing.T) {
	fake := &fakeS3{puts: map[string]string{}, err: errors.New("timeout")}
	s := newS3Storage(fake, "lilis", publicBaseURL("http://minio:9000", "lilis", ""), logger.Nop())

	_, err := s.Put(context.Background(), "k", strings.NewReader(""), 0, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestPublicBaseURL_EndpointPropio(t *testing.T) {
	assert.Equal(t, "http://minio:9000/lilis", publicBaseURL("http://minio:9000", "lilis", "us-east-1"))
}
