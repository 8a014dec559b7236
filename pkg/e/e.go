package e

import (
	"errors"
	"fmt"
)

// Категории ошибок. Конкретные ошибки оборачивают одну из категорий,
// по ней delivery-слой выбирает HTTP-статус.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("auth error")
	ErrRepository = errors.New("repository error")
	ErrStorage    = errors.New("storage error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	// Внутренние ошибки
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrIncorrectEnvVariable = errors.New("incorrect env variable")
	ErrInternalServerError  = errors.New("internal server error")

	// 400 Bad Request
	ErrStatusBadRequest     = category(ErrValidation, "bad request")
	ErrExpectedMultipart    = category(ErrValidation, "expected multipart/form-data")
	ErrMissingFields        = category(ErrValidation, "missing required product fields")
	ErrInvalidPrice         = category(ErrValidation, "invalid price")
	ErrPricePrecision       = category(ErrValidation, "price must have at most 2 decimal places")
	ErrInvalidQuantity      = category(ErrValidation, "quantity must be at least 1")
	ErrFileTooLarge         = category(ErrValidation, "file too large")
	ErrNoImages             = category(ErrValidation, "no image provided")
	ErrUnsupportedMediaType = category(ErrValidation, "unsupported media type")
	ErrMalformedRecord      = category(ErrValidation, "malformed product record")
	ErrEmptyPatch           = category(ErrValidation, "nothing to update")

	// 401 Unauthorized
	ErrInvalidCredentials = category(ErrAuth, "invalid credentials")
	ErrUnauthenticated    = category(ErrAuth, "authentication required")

	// 404 Not Found
	ErrProductNotFound = category(ErrNotFound, "product not found")

	// 409 Conflict
	ErrCartEmpty    = category(ErrConflict, "cart is empty")
	ErrCartModified = category(ErrConflict, "cart was modified concurrently")
	ErrAdminExists  = category(ErrConflict, "admin already exists")
)

func category(cat error, msg string) error {
	return fmt.Errorf("%w: %s", cat, msg)
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Repository оборачивает ошибку внешнего хранилища документов, сохраняя исходную причину.
// Уже классифицированные ошибки (not found, валидация, конфликт) оборачиваются как есть.
func Repository(msg string, err error) error {
	if classified(err) {
		return Wrap(msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrRepository, err)
}

// Storage оборачивает ошибку blob-хранилища.
func Storage(msg string, err error) error {
	if classified(err) {
		return Wrap(msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrStorage, err)
}

func classified(err error) bool {
	for _, cat := range []error{ErrValidation, ErrAuth, ErrRepository, ErrStorage, ErrNotFound, ErrConflict} {
		if errors.Is(err, cat) {
			return true
		}
	}
	return false
}
