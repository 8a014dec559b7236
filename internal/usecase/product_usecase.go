package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/DRSN-tech/insumos-backend/pkg/money"
	"github.com/google/uuid"
)

// ProductUseCase реализует бизнес-логику управления товарами каталога.
type ProductUseCase struct {
	productRepo   ProductRepository
	outboxRepo    OutboxRepository
	trManager     TxManager
	imagesInfra   ImagesInfra
	cacheRepo     CatalogCache
	logger        logger.Logger
	cleanupOrphan bool
	now           func() time.Time
}

func NewProductUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	trManager TxManager,
	imagesInfra ImagesInfra,
	cacheRepo CatalogCache,
	logger logger.Logger,
	cleanupOrphan bool,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:   productRepo,
		outboxRepo:    outboxRepo,
		trManager:     trManager,
		imagesInfra:   imagesInfra,
		cacheRepo:     cacheRepo,
		logger:        logger,
		cleanupOrphan: cleanupOrphan,
		now:           time.Now,
	}
}

// RegisterNewProduct проверяет поля, применяет наценку, загружает изображение
// и затем записывает товар вместе с outbox-событием.
// Загрузка и запись не атомарны: если запись не удалась, объект в хранилище остаётся,
// пока не включена очистка осиротевших изображений.
func (p *ProductUseCase) RegisterNewProduct(ctx context.Context, req *AddNewProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.RegisterNewProduct"

	if err := p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	price := money.ApplyMarkup(req.BasePrice)

	image, err := p.imagesInfra.UploadImage(ctx, NewUploadImageReq(req.Title, *req.Image))
	if err != nil {
		return nil, e.Storage(op, err)
	}

	product := domain.NewProduct(
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.SKU),
		req.Description,
		req.TechnicalSheet,
		price,
		image.URL,
	)

	var created *domain.Product
	err = p.trManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductCreated, created.ID, created)
	})
	if err != nil {
		if p.cleanupOrphan {
			p.logger.Warnf("Cleaning up orphaned image after write failure. key: %s, error: %v", image.Key, err)
			p.imagesInfra.CleanupImages([]string{image.Key})
		} else {
			p.logger.Warnf("Product write failed after image upload, orphaned image left. key: %s, error: %v", image.Key, err)
		}

		return nil, e.Repository(op, err)
	}

	p.invalidateCache(ctx)
	p.logger.Infof("product registered: id=%s sku=%s price=%s", created.ID, created.SKU, created.Price.StringFixed(2))

	return created, nil
}

// GetProduct возвращает товар по идентификатору.
func (p *ProductUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Repository(op, err)
	}

	return product, nil
}

// ListProducts возвращает весь каталог: сначала из кэша, при промахе из БД
// с фоновым заполнением кэша. Заполнение пропускается, если каталог успел измениться.
func (p *ProductUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductUseCase.ListProducts"

	cached, ok, err := p.cacheRepo.GetCatalog(ctx)
	if err != nil {
		p.logger.Warnf("Catalog cache read failed: %v", e.Wrap(op, err))
	} else if ok {
		return cached, nil
	}

	// поколение читается до FetchAll: если между ними товар изменится,
	// SetCatalog не запишет устаревший каталог
	generation, genErr := p.cacheRepo.Generation(ctx)
	if genErr != nil {
		p.logger.Warnf("Catalog cache generation read failed: %v", e.Wrap(op, genErr))
	}

	products, err := p.productRepo.FetchAll(ctx)
	if err != nil {
		return nil, e.Repository(op, err)
	}

	if genErr != nil {
		return products, nil
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := p.cacheRepo.SetCatalog(bgCtx, generation, products); err != nil {
			p.logger.Warnf("Failed to cache catalog in background: %v", e.Wrap(op, err))
		}
	}()

	return products, nil
}

// UpdateProduct частично обновляет товар. Цена сохраняется как введена, наценка не пересчитывается.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	var updated *domain.Product
	err := p.trManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = p.productRepo.Update(ctx, id, patch)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductUpdated, updated.ID, updated)
	})
	if err != nil {
		return nil, e.Repository(op, err)
	}

	p.invalidateCache(ctx)
	return updated, nil
}

// DeleteProduct удаляет товар. Изображение в хранилище не трогается.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	const op = "ProductUseCase.DeleteProduct"

	err := p.trManager.Do(ctx, func(ctx context.Context) error {
		if err := p.productRepo.Delete(ctx, id); err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductDeleted, id, nil)
	})
	if err != nil {
		return e.Repository(op, err)
	}

	p.invalidateCache(ctx)
	return nil
}

// writeEvent сохраняет событие об изменении товара в outbox в текущей транзакции.
func (p *ProductUseCase) writeEvent(ctx context.Context, eventType OutboxEventType, productID string, product *domain.Product) error {
	now := p.now().UTC()
	payload := ProductEventPayload{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		ProductID:  productID,
		OccurredAt: now,
	}
	if product != nil {
		payload.Product = NewProductRecord(product)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, &OutboxEvent{
		EventID:   payload.EventID,
		EventType: eventType,
		ProductID: productID,
		Payload:   data,
		Status:    Pending,
		CreatedAt: now,
	})

	return err
}

// invalidateCache удаляет закэшированный каталог; ошибка только логируется.
func (p *ProductUseCase) invalidateCache(ctx context.Context) {
	if err := p.cacheRepo.Invalidate(ctx); err != nil {
		p.logger.Warnf("Failed to invalidate catalog cache: %v", err)
	}
}

// validateProduct проверяет, что заполнены все поля формы и приложено изображение.
func (p *ProductUseCase) validateProduct(req *AddNewProductReq) error {
	if strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.SKU) == "" ||
		strings.TrimSpace(req.Description) == "" ||
		strings.TrimSpace(req.TechnicalSheet) == "" {
		return e.ErrMissingFields
	}

	if req.BasePrice.IsNegative() {
		return e.ErrInvalidPrice
	}

	if req.Image == nil || len(req.Image.Data) == 0 {
		return e.ErrNoImages
	}

	return nil
}
