package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/shopspring/decimal"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type fakeProductRepo struct {
	mu        sync.Mutex
	products  []domain.Product
	createErr error
	seq       int
	onFetch   func()
	lastPatch domain.ProductPatch
}

func (f *fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	created := *p
	created.ID = "p-" + strconv.Itoa(f.seq)
	f.products = append(f.products, created)
	return &created, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProductRepo) FetchAll(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	products := append([]domain.Product(nil), f.products...)
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return products, nil
}

func (f *fakeProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPatch = patch
	for i, p := range f.products {
		if p.ID == id {
			f.products[i] = patch.Apply(p)
			updated := f.products[i]
			return &updated, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return e.ErrProductNotFound
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []*OutboxEvent
}

func (f *fakeOutbox) Create(_ context.Context, ev *OutboxEvent) (*OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.ID = int64(len(f.events) + 1)
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeOutbox) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutbox) MarkAsPending(context.Context, int64) error { return nil }

// fakeTx выполняет fn без транзакции.
type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeImages struct {
	mu        sync.Mutex
	uploaded  []string
	cleaned   []string
	uploadErr error
}

func (f *fakeImages) UploadImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	key := "images/" + strconv.Itoa(len(f.uploaded)+1) + "-" + req.Name + ".jpg"
	f.uploaded = append(f.uploaded, key)
	return NewUploadImageRes(key, "http://blob/"+key), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, keys...)
}

type fakeCache struct {
	mu          sync.Mutex
	products    []domain.Product
	ok          bool
	generation  int64
	fills       int
	invalidated int
}

func (f *fakeCache) GetCatalog(context.Context) ([]domain.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products, f.ok, nil
}

func (f *fakeCache) Generation(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation, nil
}

func (f *fakeCache) SetCatalog(_ context.Context, generation int64, products []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills++
	if generation != f.generation {
		return nil
	}
	f.products, f.ok = products, true
	return nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products, f.ok = nil, false
	f.generation++
	f.invalidated++
	return nil
}

type fakeCarts struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: make(map[string]*domain.Cart)}
}

func (f *fakeCarts) Get(_ context.Context, sid string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[sid]
	if !ok {
		return domain.NewCart(), nil
	}
	snap := cart.Snapshot()
	return &snap, nil
}

func (f *fakeCarts) Update(_ context.Context, sid string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart := domain.NewCart()
	if stored, ok := f.carts[sid]; ok {
		snap := stored.Snapshot()
		cart = &snap
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	f.carts[sid] = cart
	snap := cart.Snapshot()
	return &snap, nil
}

type fakeAdmins struct {
	byEmail map[string]*domain.Admin
}

func (f *fakeAdmins) Create(_ context.Context, a *domain.Admin) (*domain.Admin, error) {
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, e.ErrAdminExists
	}
	created := *a
	created.ID = "admin-" + strconv.Itoa(len(f.byEmail)+1)
	f.byEmail[a.Email] = &created
	return &created, nil
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, e.Wrap("fakeAdmins.GetByEmail", e.ErrNotFound)
	}
	return a, nil
}

type fakeSessions struct {
	sessions  map[string]*domain.Session
	deleteErr error
}

func (f *fakeSessions) Save(_ context.Context, s *domain.Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (*domain.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, e.ErrUnauthenticated
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.sessions, token)
	return nil
}

type fakeFeed struct {
	mu        sync.Mutex
	callbacks map[int]func([]domain.Product)
	next      int
	err       error
}

func (f *fakeFeed) SubscribeAll(cb func([]domain.Product)) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callbacks == nil {
		f.callbacks = make(map[int]func([]domain.Product))
	}
	id := f.next
	f.next++
	f.callbacks[id] = cb
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.callbacks, id)
	}, nil
}

func (f *fakeFeed) publish(products []domain.Product) {
	f.mu.Lock()
	cbs := make([]func([]domain.Product), 0, len(f.callbacks))
	for _, cb := range f.callbacks {
		cbs = append(cbs, cb)
	}
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(products)
	}
}

func (f *fakeFeed) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks)
}

var errBoom = errors.New("boom")

func product(id, title, sku, price string) domain.Product {
	return domain.Product{
		ID:    id,
		Title: title,
		SKU:   sku,
		Price: decimal.RequireFromString(price),
	}
}
