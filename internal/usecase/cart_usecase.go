package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
)

// ProductReader отдаёт снимки товаров для корзины.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// CartUseCase управляет корзиной сессии покупателя. Корзина живёт только в рамках сессии.
type CartUseCase struct {
	carts    CartRepository
	products ProductReader
	checkout *CheckoutBuilder
	logger   logger.Logger
	now      func() time.Time
}

func NewCartUC(carts CartRepository, products ProductReader, checkout *CheckoutBuilder, logger logger.Logger) *CartUseCase {
	return &CartUseCase{
		carts:    carts,
		products: products,
		checkout: checkout,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *CartUseCase) View(ctx context.Context, sessionID string) (*CartView, error) {
	const op = "CartUseCase.View"

	cart, err := c.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, e.Repository(op, err)
	}

	return NewCartView(cart, c.now()), nil
}

// AddItem добавляет снимок товара в корзину; повторное добавление ничего не меняет.
func (c *CartUseCase) AddItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	const op = "CartUseCase.AddItem"

	product, err := c.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	now := c.now()
	cart, err := c.carts.Update(ctx, sessionID, func(cart *domain.Cart) error {
		if !cart.Add(*product, now) {
			c.logger.Debugf("product %s already in cart, skipping", productID)
		}
		return nil
	})
	if err != nil {
		return nil, e.Repository(op, err)
	}

	return NewCartView(cart, now), nil
}

func (c *CartUseCase) RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	const op = "CartUseCase.RemoveItem"

	cart, err := c.carts.Update(ctx, sessionID, func(cart *domain.Cart) error {
		cart.Remove(productID)
		return nil
	})
	if err != nil {
		return nil, e.Repository(op, err)
	}

	return NewCartView(cart, c.now()), nil
}

// SetQuantity меняет количество; значения меньше 1 отклоняются, корзина не сохраняется.
func (c *CartUseCase) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*CartView, error) {
	const op = "CartUseCase.SetQuantity"

	if quantity < 1 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	cart, err := c.carts.Update(ctx, sessionID, func(cart *domain.Cart) error {
		return cart.SetQuantity(productID, quantity)
	})
	if err != nil {
		return nil, e.Repository(op, err)
	}

	return NewCartView(cart, c.now()), nil
}

// Checkout собирает сообщение и ссылку по текущему снимку корзины.
func (c *CartUseCase) Checkout(ctx context.Context, sessionID string) (*Handoff, error) {
	const op = "CartUseCase.Checkout"

	cart, err := c.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, e.Repository(op, err)
	}

	handoff, err := c.checkout.Checkout(cart.Snapshot())
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !handoff.Initiated {
		c.logger.Warnf("checkout handoff not initiated: %s", handoff.Reason)
	}

	return handoff, nil
}
