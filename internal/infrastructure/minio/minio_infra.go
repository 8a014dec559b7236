package minio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/cfg"
	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/infrastructure"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/jitter"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	jpegQuality     = 85
	cleanupAttempts = 3
	outputMIME      = "image/jpeg"
)

// MinioInfrastructure готовит изображения товара и управляет их загрузкой и очисткой в MinIO.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	baseBackoff time.Duration
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		baseBackoff: time.Second,
	}
}

// UploadImage уменьшает изображение до MaxImageDimension по длинной стороне,
// перекодирует в JPEG и кладёт под ключом images/{uuid}-{name}.jpg.
func (m *MinioInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	const op = "MinioInfrastructure.UploadImage"

	if m.cfg.MaxImageBytes > 0 && int64(len(req.Image.Data)) > m.cfg.MaxImageBytes {
		return nil, e.Wrap(op, e.ErrFileTooLarge)
	}

	data, err := m.prepare(req.Image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	name := req.Image.Name
	if name == "" {
		name = req.Name
	}
	key := fmt.Sprintf("images/%s-%s.jpg", uuid.NewString(), infrastructure.SanitizeName(name))

	uploaded, err := m.minioRepo.Upload(ctx, domain.NewImage(key, data, outputMIME))
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("upload %s failed: %w", req.Image.Name, err))
	}

	url, err := m.minioRepo.ResolveURL(uploaded)
	if err != nil {
		m.CleanupImages([]string{uploaded})
		return nil, e.Wrap(op, err)
	}

	m.logger.Debugf("image uploaded: key=%s size=%d", uploaded, len(data))
	return usecase.NewUploadImageRes(uploaded, url), nil
}

// prepare декодирует, ресайзит и кодирует изображение в JPEG.
// Прозрачные области заливаются белым.
func (m *MinioInfrastructure) prepare(img usecase.ProductImage) ([]byte, error) {
	format, err := infrastructure.FormatFromMIME(img.MimeType)
	if err != nil {
		return nil, err
	}

	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(format == imaging.JPEG))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrUnsupportedMediaType, err)
	}

	bounds := src.Bounds()
	if limit := m.cfg.MaxImageDimension; limit > 0 && (bounds.Dx() > limit || bounds.Dy() > limit) {
		src = imaging.Fit(src, limit, limit, imaging.Lanczos)
		bounds = src.Bounds()
	}

	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	canvas = imaging.Overlay(canvas, src, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: cleaning up %d key(s)", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, 30*time.Second)
	defer cancel()

	for _, key := range keys {
		backoff := &jitter.Backoff{Base: m.baseBackoff, Max: 8 * m.baseBackoff}
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.minioRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(err, "%s: giving up on key=%s", op, key)
				break
			}

			select {
			case <-time.After(backoff.Next()):
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
