package usecase

import (
	"context"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
)

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// TxManager выполняет fn в транзакции; репозитории берут её из ctx.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// CatalogFeed рассылает полный каталог при каждом изменении.
// Вызывающий обязан вызвать unsubscribe на любом пути выхода.
type CatalogFeed interface {
	SubscribeAll(callback func(products []domain.Product)) (unsubscribe func(), err error)
}
