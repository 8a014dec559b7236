package converter

import (
	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует Product между domain и моделью PostgreSQL.
// ToEntity проверяет запись: повреждённая строка возвращает ErrMalformedRecord.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) (*domain.Product, error)
}

type AdminConverter interface {
	ToEntity(model *AdminModel) *domain.Admin
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}

	return &ProductModel{
		ID:             entity.ID,
		Title:          entity.Title,
		SKU:            entity.SKU,
		Description:    entity.Description,
		TechnicalSheet: entity.TechnicalSheet,
		Price:          entity.Price.StringFixed(2),
		ImageURL:       entity.ImageURL,
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) (*domain.Product, error) {
	const op = "ProductConverter.ToEntity"

	if model == nil {
		return nil, e.Wrap(op, e.ErrMalformedRecord)
	}

	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, e.Wrap(op, e.ErrMalformedRecord)
	}

	product := &domain.Product{
		ID:             model.ID,
		Title:          model.Title,
		SKU:            model.SKU,
		Description:    model.Description,
		TechnicalSheet: model.TechnicalSheet,
		Price:          price,
		ImageURL:       model.ImageURL,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
	if err := product.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

type AdminConverterImpl struct{}

func NewAdminConverterImpl() *AdminConverterImpl {
	return &AdminConverterImpl{}
}

func (AdminConverterImpl) ToEntity(model *AdminModel) *domain.Admin {
	if model == nil {
		return nil
	}

	return &domain.Admin{
		ID:           model.ID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
	}
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl {
	return &OutboxEventConverterImpl{}
}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}

	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}

	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		result = append(result, c.ToEntity(m))
	}

	return result
}
