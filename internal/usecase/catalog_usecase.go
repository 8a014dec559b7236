package usecase

import (
	"context"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
)

// ProductLister отдаёт полный каталог.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CatalogUseCase отдаёт публичный каталог (без пагинации) и таблицу администратора (с пагинацией).
type CatalogUseCase struct {
	products ProductLister
	feed     CatalogFeed
	pageSize int
	policy   QueryResetPolicy
}

func NewCatalogUC(products ProductLister, feed CatalogFeed, pageSize int, policy QueryResetPolicy) *CatalogUseCase {
	return &CatalogUseCase{
		products: products,
		feed:     feed,
		pageSize: pageSize,
		policy:   policy,
	}
}

func (c *CatalogUseCase) PublicCatalog(ctx context.Context, query string) ([]domain.Product, error) {
	const op = "CatalogUseCase.PublicCatalog"

	products, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return FilterProducts(products, query), nil
}

// AdminTable возвращает запрошенную страницу отфильтрованной таблицы.
// Состояние таблицы восстанавливается по (PrevQuery, Page), затем применяется Query:
// при смене запроса страница сбрасывается или сохраняется согласно политике.
// Номер страницы зажимается в [1, PageCount], поэтому пустая страница за пределами диапазона невозможна.
func (c *CatalogUseCase) AdminTable(ctx context.Context, req *ProductTableReq) (*ProductTablePage, error) {
	const op = "CatalogUseCase.AdminTable"

	products, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	pager := NewPager(c.pageSize, c.policy)
	pager.SetItems(products)
	pager.SetQuery(req.PrevQuery)
	pager.Select(req.Page)
	pager.SetQuery(req.Query)

	return &ProductTablePage{
		Products:  pager.Items(),
		Query:     pager.Query(),
		Page:      pager.Page(),
		PageCount: pager.PageCount(),
		PageSize:  pager.PageSize(),
		Total:     pager.Total(),
		HasPrev:   pager.HasPrev(),
		HasNext:   pager.HasNext(),
	}, nil
}

// Subscribe подписывает callback на живые обновления каталога, отфильтрованные по query.
func (c *CatalogUseCase) Subscribe(query string, callback func(products []domain.Product)) (func(), error) {
	const op = "CatalogUseCase.Subscribe"

	unsubscribe, err := c.feed.SubscribeAll(func(products []domain.Product) {
		callback(FilterProducts(products, query))
	})
	if err != nil {
		return nil, e.Repository(op, err)
	}

	return unsubscribe, nil
}
