package e_test

import (
	"errors"
	"testing"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	assert.ErrorIs(t, e.ErrMissingFields, e.ErrValidation)
	assert.ErrorIs(t, e.ErrInvalidCredentials, e.ErrAuth)
	assert.ErrorIs(t, e.ErrProductNotFound, e.ErrNotFound)
	assert.ErrorIs(t, e.ErrCartEmpty, e.ErrConflict)
	assert.NotErrorIs(t, e.ErrCartEmpty, e.ErrValidation)
}

func TestRepository(t *testing.T) {
	cause := errors.New("connection refused")
	err := e.Repository("ProductRepo.Create", cause)

	assert.ErrorIs(t, err, e.ErrRepository)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ProductRepo.Create")

	twice := e.Repository("ProductUseCase.Create", err)
	assert.ErrorIs(t, twice, e.ErrRepository)
	assert.Equal(t, 1, countSubstr(twice.Error(), e.ErrRepository.Error()))
}

func TestRepository_KeepsClassifiedErrors(t *testing.T) {
	err := e.Repository("ProductUseCase.GetProduct", e.ErrProductNotFound)

	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.NotErrorIs(t, err, e.ErrRepository)
}

func TestStorage(t *testing.T) {
	cause := errors.New("bucket missing")
	err := e.Storage("ImageRepo.Upload", cause)

	assert.ErrorIs(t, err, e.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, e.ErrRepository)
}

func countSubstr(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
