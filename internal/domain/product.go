package domain

import (
	"strings"
	"time"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// Product описывает товар каталога. Для слоя корзины и каталога запись неизменяема,
// все изменения проходят через репозиторий.
type Product struct {
	ID             string // uuid, назначается репозиторием
	Title          string
	SKU            string
	Description    string
	TechnicalSheet string
	Price          decimal.Decimal // цена продажи, уже с наценкой
	ImageURL       string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func NewProduct(title, sku, description, technicalSheet string, price decimal.Decimal, imageURL string) *Product {
	return &Product{
		Title:          title,
		SKU:            sku,
		Description:    description,
		TechnicalSheet: technicalSheet,
		Price:          price,
		ImageURL:       imageURL,
	}
}

// Validate проверяет запись на границе репозитория: пустые обязательные поля
// и отрицательная цена считаются повреждённой записью.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" ||
		strings.TrimSpace(p.Title) == "" ||
		strings.TrimSpace(p.SKU) == "" {
		return e.ErrMalformedRecord
	}

	if p.Price.IsNegative() {
		return e.ErrMalformedRecord
	}

	return nil
}

// ProductPatch — частичное обновление товара; nil-поля не меняются.
type ProductPatch struct {
	Title          *string
	SKU            *string
	Description    *string
	TechnicalSheet *string
	Price          *decimal.Decimal
}

func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.SKU == nil && p.Description == nil &&
		p.TechnicalSheet == nil && p.Price == nil
}

func (p ProductPatch) Validate() error {
	if p.IsEmpty() {
		return e.ErrEmptyPatch
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return e.ErrMissingFields
	}
	if p.SKU != nil && strings.TrimSpace(*p.SKU) == "" {
		return e.ErrMissingFields
	}
	if p.Price != nil && p.Price.IsNegative() {
		return e.ErrInvalidPrice
	}

	return nil
}

// Normalize обрезает пробелы в названии и SKU, как при создании товара.
func (p ProductPatch) Normalize() ProductPatch {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.SKU != nil {
		sku := strings.TrimSpace(*p.SKU)
		p.SKU = &sku
	}

	return p
}

// Apply возвращает копию товара с применёнными (нормализованными) изменениями.
func (p ProductPatch) Apply(product Product) Product {
	p = p.Normalize()
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.SKU != nil {
		product.SKU = *p.SKU
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.TechnicalSheet != nil {
		product.TechnicalSheet = *p.TechnicalSheet
	}
	if p.Price != nil {
		product.Price = *p.Price
	}

	return product
}
