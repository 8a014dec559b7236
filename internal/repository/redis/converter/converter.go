package converter

import (
	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Converter преобразует корзину и товары между domain и JSON-моделями Redis.
type Converter interface {
	ToRedisModel(cart *domain.Cart) *CartRedisModel
	ToEntity(model *CartRedisModel) (*domain.Cart, error)
	ToArrProductModel(products []domain.Product) []ProductRedisModel
	ToArrProduct(models []ProductRedisModel) ([]domain.Product, error)
}

type ConverterImpl struct{}

func NewConverterImpl() *ConverterImpl {
	return &ConverterImpl{}
}

func (c ConverterImpl) ToRedisModel(cart *domain.Cart) *CartRedisModel {
	lines := make([]CartLineRedisModel, 0, cart.Len())
	for _, l := range cart.Lines {
		lines = append(lines, CartLineRedisModel{
			Product:  productToModel(l.Product),
			Quantity: l.Quantity,
		})
	}

	return &CartRedisModel{Lines: lines, LastAddedAt: cart.LastAddedAt}
}

func (c ConverterImpl) ToEntity(model *CartRedisModel) (*domain.Cart, error) {
	cart := domain.NewCart()
	if model == nil {
		return cart, nil
	}

	for _, l := range model.Lines {
		p, err := productToEntity(l.Product)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, domain.CartLine{Product: p, Quantity: l.Quantity})
	}
	cart.LastAddedAt = model.LastAddedAt

	return cart, nil
}

func (c ConverterImpl) ToArrProductModel(products []domain.Product) []ProductRedisModel {
	result := make([]ProductRedisModel, 0, len(products))
	for _, p := range products {
		result = append(result, productToModel(p))
	}

	return result
}

func (c ConverterImpl) ToArrProduct(models []ProductRedisModel) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(models))
	for _, m := range models {
		p, err := productToEntity(m)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	return result, nil
}

func productToModel(p domain.Product) ProductRedisModel {
	return ProductRedisModel{
		ID:             p.ID,
		Title:          p.Title,
		SKU:            p.SKU,
		Description:    p.Description,
		TechnicalSheet: p.TechnicalSheet,
		Price:          p.Price.String(),
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func productToEntity(m ProductRedisModel) (domain.Product, error) {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:             m.ID,
		Title:          m.Title,
		SKU:            m.SKU,
		Description:    m.Description,
		TechnicalSheet: m.TechnicalSheet,
		Price:          price,
		ImageURL:       m.ImageURL,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}
