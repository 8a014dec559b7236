package minio

import (
	"bytes"
	"context"
	"net/url"

	"github.com/DRSN-tech/insumos-backend/internal/cfg"
	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ImageRepo реализует хранилище изображений поверх MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает изображение в MinIO и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	reader := bytes.NewReader(image.Data)

	info, err := i.mc.PutObject(ctx, i.cfg.BucketName, image.ObjectKey, reader, image.Size, minio.PutObjectOptions{
		ContentType: image.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// ResolveURL строит публичный URL объекта: от MINIO_PUBLIC_URL, если он задан, иначе от endpoint клиента.
func (i *ImageRepo) ResolveURL(key string) (string, error) {
	return resolveURL(i.cfg.PublicBaseURL, i.mc.EndpointURL(), i.cfg.BucketName, key)
}

// Delete удаляет объект из MinIO по указанному ключу.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	if err := i.mc.RemoveObject(ctx, i.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func resolveURL(publicBase string, endpoint *url.URL, bucket, key string) (string, error) {
	if publicBase != "" {
		base, err := url.Parse(publicBase)
		if err != nil {
			return "", e.Wrap(whereami.WhereAmI(), err)
		}
		return base.JoinPath(bucket, key).String(), nil
	}

	return endpoint.JoinPath(bucket, key).String(), nil
}
