package usecase

import (
	"context"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	FetchAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	ResolveURL(key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// CartRepository хранит корзины в рамках сессии покупателя.
// Update выполняет атомарный read-modify-write: если fn вернула ошибку, корзина не сохраняется.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(cart *domain.Cart) error) (*domain.Cart, error)
}

type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// CatalogCache хранит каталог вместе с поколением: Invalidate увеличивает поколение,
// а SetCatalog записывает каталог, только если поколение не менялось с момента чтения.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]domain.Product, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetCatalog(ctx context.Context, generation int64, products []domain.Product) error
	Invalidate(ctx context.Context) error
}
