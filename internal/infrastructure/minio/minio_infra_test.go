package minio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/cfg"
	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type memRepo struct {
	mu         sync.Mutex
	objects    map[string]*domain.Image
	deleteErrs int
	deletes    int
}

func newMemRepo() *memRepo {
	return &memRepo{objects: make(map[string]*domain.Image)}
}

func (r *memRepo) Upload(_ context.Context, img *domain.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[img.ObjectKey] = img
	return img.ObjectKey, nil
}

func (r *memRepo) ResolveURL(key string) (string, error) {
	return "http://minio:9000/insumos/" + key, nil
}

func (r *memRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.deleteErrs > 0 {
		r.deleteErrs--
		return errors.New("minio unavailable")
	}
	delete(r.objects, key)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newInfra(repo *memRepo) *MinioInfrastructure {
	m := NewMinioInfrastructure(repo, &cfg.MinIOCfg{MaxImageBytes: 1 << 20, MaxImageDimension: 100}, nopLogger{}, context.Background())
	m.baseBackoff = time.Millisecond
	return m
}

func TestUploadImage_ResizesAndReencodes(t *testing.T) {
	repo := newMemRepo()
	m := newInfra(repo)

	res, err := m.UploadImage(context.Background(), usecase.NewUploadImageReq("Guantes", usecase.ProductImage{
		Data:     pngBytes(t, 400, 200),
		MimeType: "image/png",
		Name:     "Guantes Nitrilo.png",
	}))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "images/"))
	assert.True(t, strings.HasSuffix(res.Key, "-guantes-nitrilo.jpg"))
	assert.Equal(t, "http://minio:9000/insumos/"+res.Key, res.URL)

	stored := repo.objects[res.Key]
	require.NotNil(t, stored)
	assert.Equal(t, "image/jpeg", stored.ContentType)

	decoded, err := imaging.Decode(bytes.NewReader(stored.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}

func TestUploadImage_Rejects(t *testing.T) {
	m := newInfra(newMemRepo())

	_, err := m.UploadImage(context.Background(), usecase.NewUploadImageReq("x", usecase.ProductImage{
		Data: []byte("%PDF"), MimeType: "application/pdf", Name: "doc.pdf",
	}))
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)

	_, err = m.UploadImage(context.Background(), usecase.NewUploadImageReq("x", usecase.ProductImage{
		Data: []byte("not an image"), MimeType: "image/png", Name: "broken.png",
	}))
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)

	_, err = m.UploadImage(context.Background(), usecase.NewUploadImageReq("x", usecase.ProductImage{
		Data: make([]byte, 2<<20), MimeType: "image/png", Name: "huge.png",
	}))
	assert.ErrorIs(t, err, e.ErrFileTooLarge)
}

func TestCleanupImages_RetriesThenSucceeds(t *testing.T) {
	repo := newMemRepo()
	repo.objects["images/a.jpg"] = &domain.Image{}
	repo.deleteErrs = 1
	m := newInfra(repo)

	m.CleanupImages([]string{"images/a.jpg"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.WaitForCleanup(ctx))

	assert.Empty(t, repo.objects)
	assert.Equal(t, 2, repo.deletes)
}

func TestCleanupImages_Empty(t *testing.T) {
	m := newInfra(newMemRepo())
	m.CleanupImages(nil)

	require.NoError(t, m.WaitForCleanup(context.Background()))
}
