package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/shopspring/decimal"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func product(id, title, sku, price string) domain.Product {
	return domain.Product{
		ID:             id,
		Title:          title,
		SKU:            sku,
		Description:    "desc",
		TechnicalSheet: "sheet",
		Price:          decimal.RequireFromString(price),
		ImageURL:       "http://img/" + id + ".jpg",
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type fakeProductUC struct {
	mu       sync.Mutex
	products map[string]domain.Product
	created  *usecase.AddNewProductReq
	patched  *domain.ProductPatch
}

func newFakeProductUC(products ...domain.Product) *fakeProductUC {
	f := &fakeProductUC{products: make(map[string]domain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductUC) RegisterNewProduct(_ context.Context, req *usecase.AddNewProductReq) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = req
	p := domain.Product{
		ID:    "new",
		Title: req.Title,
		SKU:   req.SKU,
		Price: req.BasePrice.Mul(decimal.RequireFromString("1.8")).Round(2),
	}
	f.products[p.ID] = p
	return &p, nil
}

func (f *fakeProductUC) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProductUC) ListProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		res = append(res, p)
	}
	return res, nil
}

func (f *fakeProductUC) UpdateProduct(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	f.patched = &patch
	p = patch.Apply(p)
	f.products[id] = p
	return &p, nil
}

func (f *fakeProductUC) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return e.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeCatalogUC struct {
	products []domain.Product
	err      error
	lastReq  *usecase.ProductTableReq

	mu   sync.Mutex
	subs []func([]domain.Product)
}

func (f *fakeCatalogUC) PublicCatalog(_ context.Context, query string) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return usecase.FilterProducts(f.products, query), nil
}

func (f *fakeCatalogUC) AdminTable(_ context.Context, req *usecase.ProductTableReq) (*usecase.ProductTablePage, error) {
	f.lastReq = req
	pager := usecase.NewPager(2, usecase.ResetOnQueryChange)
	pager.SetItems(f.products)
	pager.SetQuery(req.Query)
	pager.Select(req.Page)
	return &usecase.ProductTablePage{
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

func (f *fakeCatalogUC) Subscribe(query string, callback func([]domain.Product)) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	cb := func(products []domain.Product) { callback(usecase.FilterProducts(products, query)) }
	f.mu.Lock()
	f.subs = append(f.subs, cb)
	f.mu.Unlock()
	cb(f.products)
	return func() {}, nil
}

func (f *fakeCatalogUC) publish(products []domain.Product) {
	f.mu.Lock()
	subs := append([]func([]domain.Product){}, f.subs...)
	f.mu.Unlock()
	for _, cb := range subs {
		cb(products)
	}
}

type fakeCartUC struct {
	mu       sync.Mutex
	products map[string]domain.Product
	carts    map[string]*domain.Cart
	checkout *usecase.CheckoutBuilder
}

func newFakeCartUC(products ...domain.Product) *fakeCartUC {
	f := &fakeCartUC{
		products: make(map[string]domain.Product),
		carts:    make(map[string]*domain.Cart),
		checkout: usecase.NewCheckoutBuilder("wa.me", "+542616862323"),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCartUC) cart(sessionID string) *domain.Cart {
	c, ok := f.carts[sessionID]
	if !ok {
		c = domain.NewCart()
		f.carts[sessionID] = c
	}
	return c
}

func (f *fakeCartUC) View(_ context.Context, sessionID string) (*usecase.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return usecase.NewCartView(f.cart(sessionID), time.Now()), nil
}

func (f *fakeCartUC) AddItem(_ context.Context, sessionID, productID string) (*usecase.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	c := f.cart(sessionID)
	c.Add(p, time.Now())
	return usecase.NewCartView(c, time.Now()), nil
}

func (f *fakeCartUC) RemoveItem(_ context.Context, sessionID, productID string) (*usecase.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.cart(sessionID)
	c.Remove(productID)
	return usecase.NewCartView(c, time.Now()), nil
}

func (f *fakeCartUC) SetQuantity(_ context.Context, sessionID, productID string, quantity int) (*usecase.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.cart(sessionID)
	if err := c.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	return usecase.NewCartView(c, time.Now()), nil
}

func (f *fakeCartUC) Checkout(_ context.Context, sessionID string) (*usecase.Handoff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.cart(sessionID)
	if c.IsEmpty() {
		return nil, e.ErrCartEmpty
	}
	return f.checkout.Checkout(c.Snapshot())
}

type fakeAuthUC struct {
	mu        sync.Mutex
	email     string
	password  string
	sessions  map[string]*domain.Session
	listeners map[string][]func(*domain.Session)
}

func newFakeAuthUC() *fakeAuthUC {
	return &fakeAuthUC{
		email:     "admin@insumos.test",
		password:  "secret1",
		sessions:  make(map[string]*domain.Session),
		listeners: make(map[string][]func(*domain.Session)),
	}
}

func (f *fakeAuthUC) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	if strings.ToLower(email) != f.email || password != f.password {
		return nil, e.ErrInvalidCredentials
	}
	s := domain.NewSession("tok-1", &domain.Admin{ID: "a1", Email: f.email}, time.Now(), time.Hour)
	f.mu.Lock()
	f.sessions[s.Token] = s
	f.mu.Unlock()
	return s, nil
}

func (f *fakeAuthUC) SignOut(_ context.Context, token string) {
	f.mu.Lock()
	delete(f.sessions, token)
	listeners := f.listeners[token]
	delete(f.listeners, token)
	f.mu.Unlock()

	for _, cb := range listeners {
		cb(nil)
	}
}

func (f *fakeAuthUC) OnAuthChange(_ context.Context, token string, callback func(*domain.Session)) func() {
	f.mu.Lock()
	s := f.sessions[token]
	if s != nil {
		f.listeners[token] = append(f.listeners[token], callback)
	}
	f.mu.Unlock()

	callback(s)
	return func() {}
}

func (f *fakeAuthUC) Current(_ context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, e.ErrUnauthenticated
	}
	return s, nil
}

func (f *fakeAuthUC) RegisterAdmin(context.Context, string, string) (*domain.Admin, error) {
	return nil, e.ErrStatusBadRequest
}
