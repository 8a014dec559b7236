package catalogfeed

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
)

// Channel — канал NOTIFY, в который пишет триггер таблицы products.
const Channel = "products_changed"

const fetchTimeout = 5 * time.Second

// Fetcher читает полный каталог из БД, минуя кэш.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]domain.Product, error)
}

// Notifier — источник уведомлений об изменениях (LISTEN products_changed).
type Notifier interface {
	Run(ctx context.Context, onConnect func(), onNotify func(payload string))
}

// Feed рассылает подписчикам полный каталог после каждого изменения таблицы products.
// Каждый подписчик получает снимки в своей горутине; медленный подписчик
// пропускает промежуточные снимки, но всегда получает последний.
type Feed struct {
	fetcher  Fetcher
	notifier Notifier
	logger   logger.Logger

	mu      sync.Mutex
	latest  *snapshot
	version uint64
	subs    map[int]*subscriber
	nextID  int
}

// snapshot — версия каталога; версии растут монотонно в пределах Feed.
type snapshot struct {
	version  uint64
	products []domain.Product
}

func NewFeed(fetcher Fetcher, notifier Notifier, logger logger.Logger) *Feed {
	return &Feed{
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger,
		subs:     make(map[int]*subscriber),
	}
}

// Run слушает изменения до отмены ctx, затем закрывает всех подписчиков.
func (f *Feed) Run(ctx context.Context) {
	defer f.closeAll()
	f.notifier.Run(ctx, func() { f.refresh(ctx) }, func(string) { f.refresh(ctx) })
}

// SubscribeAll регистрирует callback и сразу отправляет ему текущий каталог.
// Возвращённая функция отписки идемпотентна.
func (f *Feed) SubscribeAll(callback func(products []domain.Product)) (func(), error) {
	const op = "Feed.SubscribeAll"

	if err := f.ensureLoaded(); err != nil {
		return nil, e.Wrap(op, err)
	}

	s := newSubscriber(callback)

	// снимок читается в той же критической секции, что и регистрация:
	// всё, что refresh сохранит позже, дойдёт до подписчика отдельным push
	f.mu.Lock()
	snap := *f.latest
	id := f.nextID
	f.nextID++
	f.subs[id] = s
	f.mu.Unlock()

	s.push(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			s.close()
		})
	}, nil
}

// Subscribers возвращает число активных подписок.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// ensureLoaded читает каталог, если Run ещё не успел этого сделать.
// Снимок, сохранённый refresh во время чтения, не перезаписывается.
func (f *Feed) ensureLoaded() error {
	f.mu.Lock()
	loaded := f.latest != nil
	f.mu.Unlock()

	if loaded {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	products, err := f.fetcher.FetchAll(ctx)
	if err != nil {
		return e.Repository("Feed.ensureLoaded", err)
	}

	f.mu.Lock()
	if f.latest == nil {
		f.store(products)
	}
	f.mu.Unlock()

	return nil
}

// store сохраняет новый снимок; вызывается под f.mu.
func (f *Feed) store(products []domain.Product) snapshot {
	f.version++
	f.latest = &snapshot{version: f.version, products: products}
	return *f.latest
}

func (f *Feed) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	products, err := f.fetcher.FetchAll(ctx)
	if err != nil {
		f.logger.Warnf("catalog feed refresh failed: %v", err)
		return
	}

	f.mu.Lock()
	snap := f.store(products)
	subs := make([]*subscriber, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		s.push(snap)
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	subs := f.subs
	f.subs = make(map[int]*subscriber)
	f.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
}

type subscriber struct {
	callback func([]domain.Product)

	mu      sync.Mutex
	pending *snapshot
	seen    uint64

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newSubscriber(callback func([]domain.Product)) *subscriber {
	s := &subscriber{
		callback: callback,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

// push заменяет недоставленный снимок новым. Снимок не новее уже принятого отбрасывается.
func (s *subscriber) push(snap snapshot) {
	s.mu.Lock()
	if snap.version <= s.seen {
		s.mu.Unlock()
		return
	}
	s.seen = snap.version
	s.pending = &snap
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) loop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		s.mu.Lock()
		snap := s.pending
		s.pending = nil
		s.mu.Unlock()

		if snap == nil {
			continue
		}

		select {
		case <-s.done:
			return
		default:
		}
		s.callback(snap.products)
	}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}
