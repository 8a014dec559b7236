package usecase

import (
	"context"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
)

type ProductUC interface {
	RegisterNewProduct(ctx context.Context, req *AddNewProductReq) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type CatalogUC interface {
	PublicCatalog(ctx context.Context, query string) ([]domain.Product, error)
	AdminTable(ctx context.Context, req *ProductTableReq) (*ProductTablePage, error)
	Subscribe(query string, callback func(products []domain.Product)) (unsubscribe func(), err error)
}

type CartUC interface {
	View(ctx context.Context, sessionID string) (*CartView, error)
	AddItem(ctx context.Context, sessionID, productID string) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*CartView, error)
	Checkout(ctx context.Context, sessionID string) (*Handoff, error)
}

type AuthUC interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, token string)
	Current(ctx context.Context, token string) (*domain.Session, error)
	RegisterAdmin(ctx context.Context, email, password string) (*domain.Admin, error)
	OnAuthChange(ctx context.Context, token string, callback func(session *domain.Session)) func()
}
