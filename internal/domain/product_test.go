package domain_test

import (
	"testing"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestProduct_Validate(t *testing.T) {
	valid := domain.Product{ID: "1", Title: "Guantes", SKU: "G-1", Price: decimal.NewFromInt(10)}
	assert.NoError(t, valid.Validate())

	cases := map[string]func(p *domain.Product){
		"no id":          func(p *domain.Product) { p.ID = "" },
		"blank title":    func(p *domain.Product) { p.Title = "   " },
		"no sku":         func(p *domain.Product) { p.SKU = "" },
		"negative price": func(p *domain.Product) { p.Price = decimal.NewFromInt(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), e.ErrMalformedRecord)
		})
	}
}

func TestProductPatch(t *testing.T) {
	t.Run("empty patch is rejected", func(t *testing.T) {
		assert.ErrorIs(t, domain.ProductPatch{}.Validate(), e.ErrEmptyPatch)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		assert.ErrorIs(t, domain.ProductPatch{Title: ptr(" ")}.Validate(), e.ErrMissingFields)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		assert.ErrorIs(t, domain.ProductPatch{Price: ptr(decimal.NewFromInt(-5))}.Validate(), e.ErrInvalidPrice)
	})

	t.Run("apply changes only set fields", func(t *testing.T) {
		orig := domain.Product{ID: "1", Title: "A", SKU: "S", Description: "d", Price: decimal.NewFromInt(10)}
		got := domain.ProductPatch{Title: ptr("B"), Price: ptr(decimal.NewFromInt(99))}.Apply(orig)

		assert.Equal(t, "B", got.Title)
		assert.Equal(t, "S", got.SKU)
		assert.Equal(t, "d", got.Description)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(99)))
		assert.Equal(t, "A", orig.Title)
	})

	t.Run("title and sku are trimmed", func(t *testing.T) {
		patch := domain.ProductPatch{Title: ptr(" B "), SKU: ptr("\tS-2 ")}
		got := patch.Apply(domain.Product{Title: "A", SKU: "S"})

		assert.Equal(t, "B", got.Title)
		assert.Equal(t, "S-2", got.SKU)
		assert.Equal(t, " B ", *patch.Title)
		assert.Equal(t, "S-2", *patch.Normalize().SKU)
	})
}
